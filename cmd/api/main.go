package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"occupancy/internal/api"
	"occupancy/internal/calendar"
	"occupancy/internal/config"
	"occupancy/internal/domain"
	"occupancy/internal/events"
	"occupancy/internal/export"
	"occupancy/internal/layout"
	"occupancy/internal/logging"
	"occupancy/internal/metrics"
	"occupancy/internal/models"
	"occupancy/internal/repository"
	"occupancy/internal/source"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	rooms, err := loadRooms(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	viewRepo := initViewRepository(cfg, redisClient, logger)

	eventBus := events.NewEventBus()
	if sink := initKafka(cfg, eventBus, logger); sink != nil {
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Warn().Err(err).Msg("close kafka sink")
			}
		}()
	}

	bookingSource := source.Select(ctx, cfg.Upstream, rooms, logger)
	engine := layout.NewEngine(layout.Options{
		LaneHeightPx: cfg.Calendar.LaneHeightPx,
		RowPaddingPx: cfg.Calendar.RowPaddingPx,
	})
	svc := calendar.NewService(bookingSource, rooms, engine, eventBus, logger, calendar.Options{
		DayWidthPx: cfg.Calendar.DayWidthPx,
	})
	sessions := calendar.NewSessions(svc, viewRepo,
		time.Duration(cfg.Calendar.ResizeDebounceMs)*time.Millisecond, logger)
	sessions.SetIdleTimeout(time.Duration(cfg.Calendar.SessionIdleSecond) * time.Second)
	defer sessions.Shutdown()

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(&cfg.API, svc, logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}

	var httpServer *api.HTTPServer
	if cfg.API.HTTP.Enabled {
		httpServer = api.NewHTTPServer(&cfg.API, svc, sessions, export.SVGOptions{LaneHeightPx: cfg.Calendar.LaneHeightPx}, logger)
	}

	if grpcServer == nil && httpServer == nil {
		return errors.New("both HTTP and gRPC APIs are disabled")
	}

	startMetrics(ctx, cfg, logger)

	return startServers(ctx, grpcServer, httpServer, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, baseLogger, closer, nil
}

func loadRooms(cfg *config.Config, logger *zerolog.Logger) ([]models.Room, error) {
	roomsPath := os.Getenv("ROOMS_PATH")
	if roomsPath == "" {
		roomsPath = "configs/rooms.yaml"
	}

	rooms, err := config.LoadRooms(roomsPath, cfg.Rooms)
	if err != nil {
		logger.Error().Err(err).Str("rooms_path", roomsPath).Msg("load rooms")
		return nil, err
	}
	logger.Info().Int("rooms", len(rooms)).Msg("rooms loaded")
	return rooms, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initViewRepository(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.ViewStateRepository {
	ttl := time.Duration(cfg.Calendar.ViewStateTTLSecond) * time.Second
	memory := repository.NewMemoryViewStateRepository(ttl)
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisViewStateRepository(redisClient, ttl)
	return repository.NewFailoverViewStateRepository(primary, memory, logger)
}

func initKafka(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) *events.KafkaSink {
	if !cfg.Kafka.Enabled {
		return nil
	}
	sink := events.NewKafkaSink(cfg.Kafka, logging.Component(logger, "kafka"))
	sink.Attach(bus)
	logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka event sink enabled")
	return sink
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	logger *zerolog.Logger,
) error {
	if grpcServer != nil {
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	if httpServer != nil {
		go func() {
			if err := httpServer.Start(); err != nil {
				logger.Error().Err(err).Msg("http server stopped")
			}
		}()
	}

	logger.Info().Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
