package calendar

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"occupancy/internal/domain"
	"occupancy/internal/layout"
	"occupancy/internal/metrics"
	"occupancy/internal/models"

	"github.com/rs/zerolog"
)

// Session owns one calendar view. Loads and re-layouts each carry a
// generation; a result whose generation has been superseded is dropped.
type Session struct {
	id       string
	svc      *Service
	repo     domain.ViewStateRepository
	debounce time.Duration
	logger   *zerolog.Logger

	mu        sync.Mutex
	view      models.ViewState
	snap      *Snapshot
	loadGen   uint64
	layoutGen uint64
	timer     *time.Timer
	onLayout  func(*Snapshot)
}

func newSession(view models.ViewState, svc *Service, repo domain.ViewStateRepository, debounce time.Duration, logger *zerolog.Logger) *Session {
	return &Session{
		id:       view.SessionID,
		svc:      svc,
		repo:     repo,
		debounce: debounce,
		logger:   logger,
		view:     view,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) View() models.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Snapshot returns the latest applied result, nil before the first load.
func (s *Session) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// OnLayout registers a callback run after every applied debounced re-layout.
func (s *Session) OnLayout(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLayout = fn
}

// Refresh reloads the current view from upstream. When a newer load has
// overtaken this one, the session's current snapshot is returned.
func (s *Session) Refresh(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	s.loadGen++
	gen := s.loadGen
	view := s.view
	s.mu.Unlock()

	snap, err := s.svc.Load(ctx, view)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if gen != s.loadGen {
		if s.snap != nil {
			snap = s.snap
		}
		s.mu.Unlock()
		s.logger.Debug().Uint64("generation", gen).Msg("load superseded, result dropped")
		return snap, nil
	}
	// width or selection may have moved while the fetch was in flight
	if cur := s.view; cur.DayWidthPx != view.DayWidthPx || cur.SelectedBookingID != view.SelectedBookingID {
		if again, err := s.svc.Relayout(snap, cur); err == nil {
			snap = again
		}
	}
	s.snap = snap
	s.view = snap.View
	s.mu.Unlock()

	s.persist(ctx)
	return snap, nil
}

// Navigate moves the view by delta months and reloads.
func (s *Session) Navigate(ctx context.Context, delta int) (*Snapshot, error) {
	if err := s.updateView(func(v *models.ViewState) error {
		shifted, err := v.ShiftMonth(delta, s.svc.Now())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidView, err)
		}
		*v = shifted
		return nil
	}); err != nil {
		return nil, err
	}
	return s.Refresh(ctx)
}

// Today resets the view to the current month and reloads.
func (s *Session) Today(ctx context.Context) (*Snapshot, error) {
	_ = s.updateView(func(v *models.ViewState) error {
		v.Month = s.svc.Now().UTC().Format(models.MonthLayout)
		return nil
	})
	return s.Refresh(ctx)
}

// SetRoom changes the room filter and reloads. Empty or "all" shows every room.
func (s *Session) SetRoom(ctx context.Context, room string) (*Snapshot, error) {
	room = strings.TrimSpace(room)
	if room != "" && !strings.EqualFold(room, models.RoomFilterAll) {
		if _, err := s.svc.visibleRooms(models.ViewState{Room: room}); err != nil {
			return nil, err
		}
	}
	_ = s.updateView(func(v *models.ViewState) error {
		v.Room = room
		return nil
	})
	return s.Refresh(ctx)
}

// SetView replaces month, room and day width at once and reloads. The
// selection is kept and reconciled against the new result.
func (s *Session) SetView(ctx context.Context, next models.ViewState) (*Snapshot, error) {
	if next.DayWidthPx < 0 {
		return nil, layout.ErrInvalidDayWidth
	}
	if _, err := next.MonthTime(s.svc.Now()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidView, err)
	}
	if _, err := s.svc.visibleRooms(next); err != nil {
		return nil, err
	}
	_ = s.updateView(func(v *models.ViewState) error {
		v.Month = next.Month
		v.Room = next.Room
		v.DayWidthPx = next.DayWidthPx
		if next.SelectedBookingID != "" {
			v.SelectedBookingID = next.SelectedBookingID
		}
		return nil
	})
	return s.Refresh(ctx)
}

// Select marks a booking as selected, or clears the selection for an empty
// id. It re-lays out the current snapshot without fetching; an id that is
// not visible ends up cleared.
func (s *Session) Select(ctx context.Context, bookingID string) (*Snapshot, error) {
	s.mu.Lock()
	s.view.SelectedBookingID = strings.TrimSpace(bookingID)
	snap := s.snap
	s.layoutGen++
	view := s.view
	s.mu.Unlock()

	if snap == nil {
		return s.Refresh(ctx)
	}

	out, err := s.svc.Relayout(snap, view)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.snap == snap {
		s.snap = out
		s.view.SelectedBookingID = out.View.SelectedBookingID
	}
	s.mu.Unlock()

	s.persist(ctx)
	return out, nil
}

// Resize records a new day width and schedules a re-layout. Bursts within
// the debounce interval collapse into one pass using the last width.
func (s *Session) Resize(dayWidthPx int) error {
	if dayWidthPx < 0 {
		return fmt.Errorf("%w: %d", layout.ErrInvalidDayWidth, dayWidthPx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.view.DayWidthPx = dayWidthPx
	s.layoutGen++
	gen := s.layoutGen

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.relayout(gen) })
	return nil
}

func (s *Session) relayout(gen uint64) {
	s.mu.Lock()
	if gen != s.layoutGen || s.snap == nil {
		s.mu.Unlock()
		metrics.IncRelayout(false)
		return
	}
	base := s.snap
	view := s.view
	s.mu.Unlock()

	out, err := s.svc.Relayout(base, view)
	if err != nil {
		s.logger.Error().Err(err).Msg("debounced relayout")
		return
	}

	s.mu.Lock()
	if gen != s.layoutGen || s.snap != base {
		s.mu.Unlock()
		metrics.IncRelayout(false)
		return
	}
	s.snap = out
	s.view.SelectedBookingID = out.View.SelectedBookingID
	hook := s.onLayout
	s.mu.Unlock()

	metrics.IncRelayout(true)
	s.persist(context.Background())
	if hook != nil {
		hook(out)
	}
}

func (s *Session) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.layoutGen++
}

func (s *Session) updateView(fn func(v *models.ViewState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	if err := fn(&v); err != nil {
		return err
	}
	s.view = v
	return nil
}

func (s *Session) persist(ctx context.Context) {
	if s.repo == nil {
		return
	}
	view := s.View()
	view.UpdatedAt = s.svc.Now()
	if err := s.repo.SaveView(ctx, &view); err != nil {
		s.logger.Warn().Err(err).Str("session_id", s.id).Msg("save view state")
	}
}
