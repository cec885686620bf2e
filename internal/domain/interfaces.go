package domain

import (
	"context"

	"occupancy/internal/models"
)

// BookingSource fetches raw reservation records from an upstream provider.
type BookingSource interface {
	Name() string
	Fetch(ctx context.Context, q models.Query) (models.Batch, error)
}

// ViewStateRepository persists per-session calendar views.
type ViewStateRepository interface {
	GetView(ctx context.Context, sessionID string) (*models.ViewState, error)
	SaveView(ctx context.Context, view *models.ViewState) error
	DeleteView(ctx context.Context, sessionID string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
