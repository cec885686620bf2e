package models

import (
	"fmt"
	"strings"
	"time"
)

// ViewState is the per-session calendar context: which month is shown, which
// room filter is active, which booking is selected and how wide a day is.
// It is passed explicitly to the pipeline instead of living in globals.
type ViewState struct {
	SessionID         string    `json:"session_id"`
	Month             string    `json:"month" validate:"omitempty,datetime=2006-01"`
	Room              string    `json:"room"`
	SelectedBookingID string    `json:"selected_booking_id,omitempty"`
	DayWidthPx        int       `json:"day_width_px" validate:"gte=0"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AllRooms reports whether the room filter is unset.
func (v ViewState) AllRooms() bool {
	r := strings.TrimSpace(strings.ToLower(v.Room))
	return r == "" || r == RoomFilterAll
}

// MonthTime returns the first day of the view's month, or the month of now
// when the view has none.
func (v ViewState) MonthTime(now time.Time) (time.Time, error) {
	if strings.TrimSpace(v.Month) == "" {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(MonthLayout, strings.TrimSpace(v.Month))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", v.Month)
	}
	return t, nil
}

// ShiftMonth returns a copy moved by delta months.
func (v ViewState) ShiftMonth(delta int, now time.Time) (ViewState, error) {
	first, err := v.MonthTime(now)
	if err != nil {
		return v, err
	}
	v.Month = first.AddDate(0, delta, 0).Format(MonthLayout)
	return v, nil
}
