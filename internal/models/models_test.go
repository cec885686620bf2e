package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingJSON(t *testing.T) {
	start := CivilDate(2024, time.March, 15)
	end := CivilDate(2024, time.March, 18)
	adults := 2
	notes := "late arrival"

	t.Run("DatesAsCalendarDays", func(t *testing.T) {
		b := Booking{ID: "b1", Room: "Loft", GuestName: "Ann", Source: "airbnb", StartDate: &start, EndDate: &end, NumAdult: &adults, Notes: &notes}
		data, err := json.Marshal(b)
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, "2024-03-15", raw["startDate"])
		assert.Equal(t, "2024-03-18", raw["endDate"])
		assert.Equal(t, float64(2), raw["numAdult"])
		assert.Nil(t, raw["numChild"])
		assert.Nil(t, raw["price"])
		assert.NotContains(t, raw, "phone")
	})

	t.Run("NullDates", func(t *testing.T) {
		data, err := json.Marshal(Booking{ID: "b2", GuestName: "Guest", Source: "direct"})
		require.NoError(t, err)
		assert.Contains(t, string(data), `"startDate":null`)
		assert.Contains(t, string(data), `"endDate":null`)
	})

	t.Run("Decode", func(t *testing.T) {
		var b Booking
		err := json.Unmarshal([]byte(`{"id":"x","guestName":"Bo","startDate":"2024-03-15","endDate":"bogus","source":"direct","room":"Loft"}`), &b)
		require.NoError(t, err)
		require.NotNil(t, b.StartDate)
		assert.Equal(t, start, *b.StartDate)
		assert.Nil(t, b.EndDate)
	})
}

func TestDayNumber(t *testing.T) {
	noon := CivilDate(2024, time.January, 10)
	late := time.Date(2024, time.January, 10, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, DayNumber(noon), DayNumber(late))
	assert.Equal(t, 1, DayNumber(CivilDate(2024, time.January, 11))-DayNumber(noon))
	assert.Equal(t, time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC), DateFromDayNumber(DayNumber(noon)))
}

func TestBookingNights(t *testing.T) {
	start := CivilDate(2024, time.January, 1)
	end := CivilDate(2024, time.January, 10)
	b := Booking{StartDate: &start, EndDate: &end}
	assert.True(t, b.HasStay())
	assert.Equal(t, 9, b.Nights())

	inverted := Booking{StartDate: &end, EndDate: &start}
	assert.False(t, inverted.HasStay())
	assert.Equal(t, 0, inverted.Nights())
	assert.Equal(t, 0, Booking{}.Nights())
}

func TestWindow(t *testing.T) {
	w := Window{
		Start: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 29, w.Days())
	assert.True(t, w.Contains(CivilDate(2024, time.February, 29)))
	assert.False(t, w.Contains(CivilDate(2024, time.March, 1)))
}

func TestViewState(t *testing.T) {
	now := time.Date(2025, time.December, 20, 8, 0, 0, 0, time.UTC)

	t.Run("AllRooms", func(t *testing.T) {
		assert.True(t, ViewState{}.AllRooms())
		assert.True(t, ViewState{Room: " ALL "}.AllRooms())
		assert.False(t, ViewState{Room: "Loft"}.AllRooms())
	})

	t.Run("MonthDefaultsToNow", func(t *testing.T) {
		m, err := ViewState{}.MonthTime(now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), m)
	})

	t.Run("ShiftAcrossYear", func(t *testing.T) {
		v, err := ViewState{Month: "2025-12"}.ShiftMonth(1, now)
		require.NoError(t, err)
		assert.Equal(t, "2026-01", v.Month)

		v, err = v.ShiftMonth(-2, now)
		require.NoError(t, err)
		assert.Equal(t, "2025-11", v.Month)
	})

	t.Run("InvalidMonth", func(t *testing.T) {
		_, err := ViewState{Month: "12/2025"}.MonthTime(now)
		assert.Error(t, err)
	})
}
