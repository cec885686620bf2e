// Package calendar runs the occupancy pipeline: fetch, normalize, lay out.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"occupancy/internal/domain"
	"occupancy/internal/events"
	"occupancy/internal/layout"
	"occupancy/internal/logging"
	"occupancy/internal/metrics"
	"occupancy/internal/models"
	"occupancy/internal/normalize"

	"github.com/rs/zerolog"
)

var (
	// ErrFetchFailed means the upstream fetch failed and nothing was laid out.
	ErrFetchFailed = errors.New("booking fetch failed")
	ErrInvalidView = errors.New("invalid view")
	ErrUnknownRoom = errors.New("unknown room")
)

// Snapshot is the result of one load. It is never modified after it is
// returned; re-layouts produce a new snapshot sharing the bookings.
type Snapshot struct {
	Window     models.Window
	Rooms      []models.Room
	Bookings   []models.Booking
	Layouts    map[string]models.RoomLayout
	View       models.ViewState
	DayWidthPx int
	Source     string
	Rejected   int
	LoadedAt   time.Time
}

// Rows returns the room layouts in display order.
func (s *Snapshot) Rows() []models.RoomLayout {
	rows := make([]models.RoomLayout, 0, len(s.Rooms))
	for _, r := range s.Rooms {
		rows = append(rows, s.Layouts[r.Name])
	}
	return rows
}

// Booking finds a laid-out booking by id.
func (s *Snapshot) Booking(id string) (models.Booking, bool) {
	for _, rl := range s.Layouts {
		for _, bar := range rl.Bars {
			if bar.Booking.ID == id {
				return bar.Booking, true
			}
		}
	}
	return models.Booking{}, false
}

type Options struct {
	DayWidthPx int
	Now        func() time.Time
}

type Service struct {
	source     domain.BookingSource
	normalizer *normalize.Normalizer
	engine     *layout.Engine
	rooms      []models.Room
	events     domain.EventPublisher
	logger     *zerolog.Logger
	dayWidth   int
	now        func() time.Time
}

func NewService(
	source domain.BookingSource,
	rooms []models.Room,
	engine *layout.Engine,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
	opts Options,
) *Service {
	ordered := append([]models.Room(nil), rooms...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})

	if opts.DayWidthPx <= 0 {
		opts.DayWidthPx = models.DefaultDayWidthPx
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	log := logging.Component(logger, "calendar")
	return &Service{
		source:     source,
		normalizer: normalize.New(ordered, log),
		engine:     engine,
		rooms:      ordered,
		events:     eventBus,
		logger:     log,
		dayWidth:   opts.DayWidthPx,
		now:        opts.Now,
	}
}

// Rooms returns the configured rooms in display order.
func (s *Service) Rooms() []models.Room {
	return append([]models.Room(nil), s.rooms...)
}

func (s *Service) Now() time.Time { return s.now() }

// Load fetches and lays out the month the view points at.
func (s *Service) Load(ctx context.Context, view models.ViewState) (*Snapshot, error) {
	window, err := layout.ViewWindow(view, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidView, err)
	}
	return s.LoadWindow(ctx, view, window)
}

// LoadWindow is Load for an explicit window.
func (s *Service) LoadWindow(ctx context.Context, view models.ViewState, window models.Window) (*Snapshot, error) {
	rooms, err := s.visibleRooms(view)
	if err != nil {
		return nil, err
	}

	query := models.Query{From: window.Start, To: window.End}
	if !view.AllRooms() {
		query.Room = rooms[0].Name
	}

	started := time.Now()
	batch, err := s.source.Fetch(ctx, query)
	metrics.ObserveFetch(s.source.Name(), time.Since(started))
	if err != nil {
		metrics.ObserveLoad(s.source.Name(), false)
		s.logger.Error().Err(err).Str("source", s.source.Name()).Str("month", view.Month).Msg("fetch bookings")
		s.publish(events.EventCalendarFetchFailed, events.FetchFailedPayload{
			SessionID: view.SessionID,
			Month:     window.Start.Format(models.MonthLayout),
			Source:    s.source.Name(),
			Error:     err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	res := s.normalizer.NormalizeBatch(batch.Records, normalize.Hints{Room: batch.Room, Source: batch.Source})
	metrics.ObserveRecords(len(res.Bookings), res.Rejected, res.Duplicates)
	if res.Rejected > 0 || res.Duplicates > 0 {
		s.publish(events.EventRecordsRejected, events.RecordsRejectedPayload{
			Source:     s.source.Name(),
			Rejected:   res.Rejected,
			Duplicates: res.Duplicates,
		})
	}

	snap := &Snapshot{
		Window:   window,
		Rooms:    rooms,
		Bookings: filterRooms(res.Bookings, rooms),
		Source:   s.source.Name(),
		Rejected: res.Rejected,
		LoadedAt: s.now(),
	}

	out, err := s.Relayout(snap, view)
	if err != nil {
		return nil, err
	}
	metrics.ObserveLoad(s.source.Name(), true)

	s.publish(events.EventCalendarLoaded, events.CalendarLoadedPayload{
		SessionID: view.SessionID,
		Month:     window.Start.Format(models.MonthLayout),
		Room:      view.Room,
		Source:    out.Source,
		Bookings:  len(out.Bookings),
		Rooms:     len(out.Rooms),
		MaxLanes:  maxLanes(out.Layouts),
	})
	return out, nil
}

// Relayout recomputes geometry and selection for a changed view without
// fetching. A zero day width in the view means the configured default.
func (s *Service) Relayout(snap *Snapshot, view models.ViewState) (*Snapshot, error) {
	dayWidth := view.DayWidthPx
	if dayWidth == 0 {
		dayWidth = s.dayWidth
	}

	started := time.Now()
	layouts, err := s.engine.GetLayout(snap.Bookings, snap.Rooms, snap.Window, dayWidth)
	if err != nil {
		return nil, err
	}
	metrics.ObserveLayout(time.Since(started))

	selected, cleared := layout.ReconcileSelection(view.SelectedBookingID, layouts)
	if cleared {
		s.logger.Debug().Str("booking_id", view.SelectedBookingID).Msg("selection no longer visible")
		s.publish(events.EventSelectionCleared, events.SelectionClearedPayload{
			SessionID: view.SessionID,
			BookingID: view.SelectedBookingID,
		})
	}
	view.SelectedBookingID = selected

	out := *snap
	out.Layouts = layouts
	out.View = view
	out.DayWidthPx = dayWidth
	return &out, nil
}

func (s *Service) visibleRooms(view models.ViewState) ([]models.Room, error) {
	if view.AllRooms() {
		return s.rooms, nil
	}
	for _, r := range s.rooms {
		if r.Matches(view.Room) {
			return []models.Room{r}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownRoom, view.Room)
}

func (s *Service) publish(eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).Msg("publish event")
	}
}

func filterRooms(bookings []models.Booking, rooms []models.Room) []models.Booking {
	keep := make(map[string]bool, len(rooms))
	for _, r := range rooms {
		keep[models.RoomKey(r.Name)] = true
	}
	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if keep[models.RoomKey(b.Room)] {
			out = append(out, b)
		}
	}
	return out
}

func maxLanes(layouts map[string]models.RoomLayout) int {
	n := 0
	for _, rl := range layouts {
		n = max(n, rl.LaneCount)
	}
	return n
}
