package calendar

import (
	"context"
	"errors"
	"sync"
	"time"

	"occupancy/internal/domain"
	"occupancy/internal/metrics"
	"occupancy/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrSessionNotFound = errors.New("session not found")

// Sessions is the registry of live sessions. Views outlive the process in
// the repository; a known id is revived from there on first use. Sessions
// left unused for longer than the idle timeout are dropped from memory on
// the next insert.
type Sessions struct {
	svc      *Service
	repo     domain.ViewStateRepository
	debounce time.Duration
	logger   *zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	idle     time.Duration
	sessions map[string]*liveSession
}

type liveSession struct {
	sess     *Session
	lastUsed time.Time
}

func NewSessions(svc *Service, repo domain.ViewStateRepository, debounce time.Duration, logger *zerolog.Logger) *Sessions {
	if debounce <= 0 {
		debounce = models.DefaultResizeDebounceMs * time.Millisecond
	}
	return &Sessions{
		svc:      svc,
		repo:     repo,
		debounce: debounce,
		logger:   logger,
		now:      time.Now,
		idle:     models.DefaultSessionIdle * time.Second,
		sessions: make(map[string]*liveSession),
	}
}

// SetIdleTimeout changes how long an unused session stays in memory. Zero
// or less keeps sessions until they are closed.
func (r *Sessions) SetIdleTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idle = d
}

// Len reports how many sessions are held in memory.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Create starts a session on the current month with every room visible.
func (r *Sessions) Create(ctx context.Context) *Session {
	view := models.ViewState{
		SessionID: uuid.NewString(),
		Month:     r.svc.Now().UTC().Format(models.MonthLayout),
	}
	sess := newSession(view, r.svc, r.repo, r.debounce, r.logger)

	r.mu.Lock()
	r.insertLocked(sess)
	r.mu.Unlock()

	sess.persist(ctx)
	return sess
}

// Get returns a live session or revives a stored one.
func (r *Sessions) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	if live, ok := r.sessions[id]; ok {
		live.lastUsed = r.now()
		r.mu.Unlock()
		return live.sess, nil
	}
	r.mu.Unlock()

	if r.repo == nil {
		return nil, ErrSessionNotFound
	}
	view, err := r.repo.GetView(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, ErrSessionNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// another caller may have revived it meanwhile
	if live, ok := r.sessions[id]; ok {
		live.lastUsed = r.now()
		return live.sess, nil
	}
	view.SessionID = id
	sess := newSession(*view, r.svc, r.repo, r.debounce, r.logger)
	r.insertLocked(sess)
	r.logger.Debug().Str("session_id", id).Msg("session revived")
	return sess, nil
}

// Close stops a session and forgets its stored view.
func (r *Sessions) Close(ctx context.Context, id string) error {
	r.mu.Lock()
	live, ok := r.sessions[id]
	delete(r.sessions, id)
	metrics.SetLiveSessions(len(r.sessions))
	r.mu.Unlock()

	if ok {
		live.sess.stop()
	}
	if r.repo != nil {
		return r.repo.DeleteView(ctx, id)
	}
	return nil
}

// Shutdown stops every pending re-layout.
func (r *Sessions) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, live := range r.sessions {
		live.sess.stop()
		delete(r.sessions, id)
	}
	metrics.SetLiveSessions(0)
}

func (r *Sessions) insertLocked(sess *Session) {
	now := r.now()
	r.evictIdleLocked(now)
	r.sessions[sess.ID()] = &liveSession{sess: sess, lastUsed: now}
	metrics.SetLiveSessions(len(r.sessions))
}

// evictIdleLocked stops sessions unused since before now minus the idle
// timeout. Their stored views are kept, so Get can revive them.
func (r *Sessions) evictIdleLocked(now time.Time) {
	if r.idle <= 0 {
		return
	}
	cutoff := now.Add(-r.idle)
	for id, live := range r.sessions {
		if live.lastUsed.After(cutoff) {
			continue
		}
		live.sess.stop()
		delete(r.sessions, id)
		r.logger.Debug().Str("session_id", id).Msg("idle session evicted")
	}
}
