package layout

import (
	"testing"
	"time"

	"occupancy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthWindow(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		days  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}

	for _, tt := range tests {
		w := MonthWindow(tt.year, tt.month)
		assert.Equal(t, tt.days, w.Days(), "%d-%02d", tt.year, tt.month)
		assert.Equal(t, 1, w.Start.Day())
		assert.Equal(t, tt.days, w.End.Day())
	}
}

func TestParseMonth(t *testing.T) {
	w, err := ParseMonth("2024-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), w.End)

	_, err = ParseMonth("March")
	assert.Error(t, err)
}

func TestWindowFromDates(t *testing.T) {
	from := time.Date(2024, time.March, 3, 18, 30, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 9, 1, 0, 0, 0, time.UTC)

	w, err := WindowFromDates(from, to)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, 7, w.Days())

	single, err := WindowFromDates(from, from)
	require.NoError(t, err)
	assert.Equal(t, 1, single.Days())

	_, err = WindowFromDates(to, from)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestWindowFromDatesCapsLength(t *testing.T) {
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	w, err := WindowFromDates(from, from.AddDate(0, 0, MaxWindowDays-1))
	require.NoError(t, err)
	assert.Equal(t, MaxWindowDays, w.Days())

	_, err = WindowFromDates(from, from.AddDate(0, 0, MaxWindowDays))
	assert.ErrorIs(t, err, ErrWindowTooLong)

	_, err = WindowFromDates(time.Date(1000, time.January, 1, 0, 0, 0, 0, time.UTC), time.Date(9000, time.December, 31, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrWindowTooLong)
}

func TestViewWindow(t *testing.T) {
	now := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)

	w, err := ViewWindow(models.ViewState{}, now)
	require.NoError(t, err)
	assert.Equal(t, time.June, w.Start.Month())
	assert.Equal(t, 30, w.Days())

	w, err = ViewWindow(models.ViewState{Month: "2024-02"}, now)
	require.NoError(t, err)
	assert.Equal(t, 29, w.Days())

	_, err = ViewWindow(models.ViewState{Month: "2024/02"}, now)
	assert.Error(t, err)
}
