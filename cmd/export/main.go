package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"occupancy/internal/calendar"
	"occupancy/internal/config"
	"occupancy/internal/export"
	"occupancy/internal/layout"
	"occupancy/internal/logging"
	"occupancy/internal/models"
	"occupancy/internal/source"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	roomsPath := flag.String("rooms", "configs/rooms.yaml", "path to rooms file")
	month := flag.String("month", "", "month to render, YYYY-MM (default: current month)")
	room := flag.String("room", "", "room name or upstream id (default: all rooms)")
	format := flag.String("format", "xlsx", "output format: xlsx or svg")
	out := flag.String("out", "", "output file (default: exports path from config)")
	flag.Parse()

	if *format != "xlsx" && *format != "svg" {
		return fmt.Errorf("unknown format %q", *format)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	rooms, err := config.LoadRooms(*roomsPath, cfg.Rooms)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := layout.NewEngine(layout.Options{
		LaneHeightPx: cfg.Calendar.LaneHeightPx,
		RowPaddingPx: cfg.Calendar.RowPaddingPx,
	})
	svc := calendar.NewService(source.Select(ctx, cfg.Upstream, rooms, logger), rooms, engine, nil, logger, calendar.Options{
		DayWidthPx: cfg.Calendar.DayWidthPx,
	})

	snap, err := svc.Load(ctx, models.ViewState{Month: *month, Room: *room})
	if err != nil {
		return err
	}

	path := *out
	if path == "" && *format == "xlsx" {
		if path, err = export.SaveXLSX(cfg.Exports.Path, snap); err != nil {
			return err
		}
		logExported(logger, path, snap)
		return nil
	}
	if path == "" {
		path = filepath.Join(cfg.Exports.Path, export.FileName(snap, *format))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := writeFile(path, func(w io.Writer) error {
		if *format == "svg" {
			return export.RenderSVG(w, snap, export.SVGOptions{LaneHeightPx: cfg.Calendar.LaneHeightPx})
		}
		return export.WriteXLSX(w, snap)
	}); err != nil {
		return err
	}

	logExported(logger, path, snap)
	return nil
}

func logExported(logger *zerolog.Logger, path string, snap *calendar.Snapshot) {
	logger.Info().
		Str("path", path).
		Str("source", snap.Source).
		Int("bookings", len(snap.Bookings)).
		Int("rejected", snap.Rejected).
		Msg("calendar exported")
}

func writeFile(path string, render func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
