// Package source fetches raw reservation records from upstream providers.
package source

import (
	"context"
	"errors"
	"time"

	"occupancy/internal/config"
	"occupancy/internal/domain"
	"occupancy/internal/logging"
	"occupancy/internal/models"

	"github.com/rs/zerolog"
)

// ErrUpstream marks a provider that answered with an error status.
var ErrUpstream = errors.New("upstream error")

// Select picks the configured provider: PMS when a base URL and key are set,
// Sheets when credentials and a spreadsheet are set, generated sample data
// otherwise. A provider that fails to initialize is skipped.
func Select(ctx context.Context, cfg config.UpstreamConfig, rooms []models.Room, logger *zerolog.Logger) domain.BookingSource {
	log := logging.Component(logger, "source")
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	if cfg.PMS.Configured() {
		log.Info().Str("base_url", cfg.PMS.BaseURL).Msg("using PMS booking source")
		return NewPMSClient(cfg.PMS, timeout, rooms)
	}

	if cfg.Sheets.Configured() {
		src, err := NewSheetsSource(ctx, cfg.Sheets)
		if err == nil {
			log.Info().Str("spreadsheet_id", cfg.Sheets.SpreadsheetID).Msg("using sheets booking source")
			return src
		}
		log.Warn().Err(err).Msg("google sheets init failed, continuing with sample data")
	}

	log.Warn().Msg("no upstream configured, serving sample bookings")
	return NewSampleSource(rooms)
}

func findRoom(rooms []models.Room, name string) (models.Room, bool) {
	for _, r := range rooms {
		if r.Matches(name) {
			return r, true
		}
	}
	return models.Room{}, false
}
