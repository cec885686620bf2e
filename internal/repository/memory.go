package repository

import (
	"context"
	"sync"
	"time"

	"occupancy/internal/models"
)

type viewEntry struct {
	view      models.ViewState
	expiresAt time.Time
}

// MemoryViewStateRepository keeps views in process. Entries expire after ttl
// like their Redis counterparts; a zero ttl keeps them forever.
type MemoryViewStateRepository struct {
	views sync.Map
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryViewStateRepository(ttl time.Duration) *MemoryViewStateRepository {
	return &MemoryViewStateRepository{
		ttl: ttl,
		now: time.Now,
	}
}

func (r *MemoryViewStateRepository) GetView(_ context.Context, sessionID string) (*models.ViewState, error) {
	val, ok := r.views.Load(sessionID)
	if !ok {
		return nil, nil
	}
	entry := val.(viewEntry)
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		r.views.CompareAndDelete(sessionID, val)
		return nil, nil
	}
	view := entry.view
	return &view, nil
}

func (r *MemoryViewStateRepository) SaveView(_ context.Context, view *models.ViewState) error {
	entry := viewEntry{view: *view}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}
	r.views.Store(view.SessionID, entry)
	return nil
}

func (r *MemoryViewStateRepository) DeleteView(_ context.Context, sessionID string) error {
	r.views.Delete(sessionID)
	return nil
}
