package layout

import (
	"fmt"
	"strings"
	"time"

	"occupancy/internal/models"
)

// SnapDay returns midnight UTC of t's UTC calendar date.
func SnapDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthWindow covers every day of the given month.
func MonthWindow(year int, month time.Month) models.Window {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, month, daysIn(month, year), 0, 0, 0, 0, time.UTC)
	return models.Window{Start: start, End: end}
}

// ParseMonth parses YYYY-MM into the month's window.
func ParseMonth(s string) (models.Window, error) {
	t, err := time.Parse(models.MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return models.Window{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return MonthWindow(t.Year(), t.Month()), nil
}

// MaxWindowDays bounds an explicit date range.
const MaxWindowDays = 400

// WindowFromDates builds a window from two calendar dates, both inclusive.
// Ranges longer than MaxWindowDays are rejected.
func WindowFromDates(from, to time.Time) (models.Window, error) {
	w := models.Window{Start: SnapDay(from), End: SnapDay(to)}
	if w.End.Before(w.Start) {
		return models.Window{}, ErrInvalidWindow
	}
	if days := w.Days(); days > MaxWindowDays {
		return models.Window{}, fmt.Errorf("%w: %d days, at most %d", ErrWindowTooLong, days, MaxWindowDays)
	}
	return w, nil
}

// ViewWindow resolves the window a view is looking at.
func ViewWindow(view models.ViewState, now time.Time) (models.Window, error) {
	first, err := view.MonthTime(now)
	if err != nil {
		return models.Window{}, err
	}
	return MonthWindow(first.Year(), first.Month()), nil
}

func daysIn(m time.Month, year int) int {
	switch m {
	case time.February:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
