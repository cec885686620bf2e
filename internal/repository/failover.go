package repository

import (
	"context"
	"sync/atomic"
	"time"

	"occupancy/internal/domain"
	"occupancy/internal/models"

	"github.com/rs/zerolog"
)

// retryPrimaryAfter is how long a failed primary is left alone.
const retryPrimaryAfter = time.Minute

// FailoverViewStateRepository serves from the primary until a call fails,
// then from the fallback, probing the primary again once a minute.
type FailoverViewStateRepository struct {
	primary   domain.ViewStateRepository
	fallback  domain.ViewStateRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverViewStateRepository(primary, fallback domain.ViewStateRepository, logger *zerolog.Logger) *FailoverViewStateRepository {
	return &FailoverViewStateRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverViewStateRepository) markDown(err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary view repository failed, falling back to memory")
	}
	r.lastCheck.Store(time.Now().UnixNano())
}

// usePrimary reports whether the primary should be tried for this call.
func (r *FailoverViewStateRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	return time.Since(time.Unix(0, r.lastCheck.Load())) > retryPrimaryAfter
}

func (r *FailoverViewStateRepository) recovered() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary view repository recovered")
	}
}

func (r *FailoverViewStateRepository) GetView(ctx context.Context, sessionID string) (*models.ViewState, error) {
	if r.usePrimary() {
		view, err := r.primary.GetView(ctx, sessionID)
		if err == nil {
			r.recovered()
			return view, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetView(ctx, sessionID)
}

func (r *FailoverViewStateRepository) SaveView(ctx context.Context, view *models.ViewState) error {
	if r.usePrimary() {
		err := r.primary.SaveView(ctx, view)
		if err == nil {
			r.recovered()
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SaveView(ctx, view)
}

func (r *FailoverViewStateRepository) DeleteView(ctx context.Context, sessionID string) error {
	// the view may live in either store
	_ = r.fallback.DeleteView(ctx, sessionID)
	if r.usePrimary() {
		err := r.primary.DeleteView(ctx, sessionID)
		if err == nil {
			r.recovered()
			return nil
		}
		r.markDown(err)
	}
	return nil
}
