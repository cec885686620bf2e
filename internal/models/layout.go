package models

import "time"

// Window is the visible date range. Start and End are midnight UTC and
// End is inclusive.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the number of day columns in the window.
func (w Window) Days() int {
	return DayNumber(w.End) - DayNumber(w.Start) + 1
}

// Contains reports whether the calendar day of t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	d := DayNumber(t)
	return d >= DayNumber(w.Start) && d <= DayNumber(w.End)
}

// Bar is one rendered booking in a room row.
type Bar struct {
	Booking         Booking `json:"booking"`
	Lane            int     `json:"lane"`
	StartOffsetDays int     `json:"startOffsetDays"`
	DurationDays    int     `json:"durationDays"`
	LeftPx          int     `json:"leftPx"`
	WidthPx         int     `json:"widthPx"`
	TopPx           int     `json:"topPx"`
	ClippedStart    bool    `json:"clippedStart"`
	ClippedEnd      bool    `json:"clippedEnd"`
}

// EndOffsetDays is the exclusive end column of the bar.
func (b Bar) EndOffsetDays() int {
	return b.StartOffsetDays + b.DurationDays
}

// RoomLayout is the layout of one room row for a window.
type RoomLayout struct {
	Room       string `json:"room"`
	Bars       []Bar  `json:"bars"`
	LaneCount  int    `json:"laneCount"`
	HeightPx   int    `json:"heightPx"`
	TotalDays  int    `json:"totalDays"`
	DayWidthPx int    `json:"dayWidthPx"`
}

// HasBooking reports whether a bar for the given booking id is present.
func (l RoomLayout) HasBooking(id string) bool {
	for _, bar := range l.Bars {
		if bar.Booking.ID == id {
			return true
		}
	}
	return false
}
