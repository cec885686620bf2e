// Package layout turns date-ranged bookings into a lane-packed timeline grid.
//
// Every function here is pure: no I/O, no shared state, safe to call from any
// goroutine. Identical inputs always produce identical output.
package layout

import (
	"errors"
	"fmt"
	"sort"

	"occupancy/internal/models"
)

var (
	ErrInvalidDayWidth = errors.New("day width must not be negative")
	ErrInvalidWindow   = errors.New("window end is before window start")
	ErrWindowTooLong   = errors.New("window is too long")
)

// Options controls the vertical geometry of a room row.
type Options struct {
	LaneHeightPx int
	RowPaddingPx int
}

// Engine lays out room rows with fixed vertical geometry.
type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	if opts.LaneHeightPx <= 0 {
		opts.LaneHeightPx = models.DefaultLaneHeightPx
	}
	if opts.RowPaddingPx < 0 {
		opts.RowPaddingPx = 0
	}
	return &Engine{opts: opts}
}

// span is a booking already clipped to the window, in day offsets.
type span struct {
	booking      models.Booking
	startDay     int
	startOffset  int
	endOffset    int
	clippedStart bool
	clippedEnd   bool
}

// Layout computes the bars of one room for the window. Bookings outside the
// window, without dates, or shorter than one whole day after clipping are
// dropped. Only a negative day width or an inverted window is an error.
func (e *Engine) Layout(bookings []models.Booking, window models.Window, dayWidthPx int) (models.RoomLayout, error) {
	if err := validate(window, dayWidthPx); err != nil {
		return models.RoomLayout{}, err
	}

	totalDays := window.Days()
	spans := clip(bookings, window)

	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].startDay < spans[j].startDay
	})

	lanes, laneCount := assignLanes(spans)

	bars := make([]models.Bar, len(spans))
	for i, sp := range spans {
		duration := sp.endOffset - sp.startOffset
		bars[i] = models.Bar{
			Booking:         sp.booking,
			Lane:            lanes[i],
			StartOffsetDays: sp.startOffset,
			DurationDays:    duration,
			LeftPx:          sp.startOffset * dayWidthPx,
			WidthPx:         duration * dayWidthPx,
			TopPx:           e.opts.RowPaddingPx + lanes[i]*e.opts.LaneHeightPx,
			ClippedStart:    sp.clippedStart,
			ClippedEnd:      sp.clippedEnd,
		}
	}

	return models.RoomLayout{
		Bars:       bars,
		LaneCount:  laneCount,
		HeightPx:   e.RowHeight(laneCount),
		TotalDays:  totalDays,
		DayWidthPx: dayWidthPx,
	}, nil
}

// RowHeight is the vertical extent of a row with the given number of lanes.
// An empty row keeps the height of one lane.
func (e *Engine) RowHeight(laneCount int) int {
	if laneCount < 1 {
		laneCount = 1
	}
	return 2*e.opts.RowPaddingPx + laneCount*e.opts.LaneHeightPx
}

// GetLayout lays out every configured room. Bookings are grouped by room name
// (case-insensitive); bookings for rooms that are not configured are ignored.
// Every room gets an entry, empty rooms included.
func (e *Engine) GetLayout(
	bookings []models.Booking,
	rooms []models.Room,
	window models.Window,
	dayWidthPx int,
) (map[string]models.RoomLayout, error) {
	if err := validate(window, dayWidthPx); err != nil {
		return nil, err
	}

	byRoom := make(map[string][]models.Booking, len(rooms))
	for _, b := range bookings {
		key := models.RoomKey(b.Room)
		byRoom[key] = append(byRoom[key], b)
	}

	result := make(map[string]models.RoomLayout, len(rooms))
	for _, room := range rooms {
		rl, err := e.Layout(byRoom[models.RoomKey(room.Name)], window, dayWidthPx)
		if err != nil {
			return nil, fmt.Errorf("layout room %s: %w", room.Name, err)
		}
		rl.Room = room.Name
		result[room.Name] = rl
	}
	return result, nil
}

func validate(window models.Window, dayWidthPx int) error {
	if dayWidthPx < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDayWidth, dayWidthPx)
	}
	if models.DayNumber(window.End) < models.DayNumber(window.Start) {
		return ErrInvalidWindow
	}
	return nil
}

func clip(bookings []models.Booking, window models.Window) []span {
	windowStart := models.DayNumber(window.Start)
	totalDays := window.Days()
	windowEnd := windowStart + totalDays

	spans := make([]span, 0, len(bookings))
	for _, b := range bookings {
		if b.StartDate == nil || b.EndDate == nil {
			continue
		}
		start := models.DayNumber(*b.StartDate)
		end := models.DayNumber(*b.EndDate)

		clippedStart := max(start, windowStart)
		clippedEnd := min(end, windowEnd)
		if clippedEnd <= clippedStart {
			continue
		}

		startOffset := clamp(clippedStart-windowStart, 0, totalDays)
		endOffset := clamp(clippedEnd-windowStart, 0, totalDays)
		if endOffset-startOffset <= 0 {
			continue
		}

		spans = append(spans, span{
			booking:      b,
			startDay:     start,
			startOffset:  startOffset,
			endOffset:    endOffset,
			clippedStart: start < windowStart,
			clippedEnd:   end > windowEnd,
		})
	}
	return spans
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
