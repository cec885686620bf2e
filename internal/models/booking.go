package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// RawRecord is an upstream reservation as decoded from JSON or a sheet row.
// Field names vary between providers; the normalizer resolves them.
type RawRecord map[string]any

// Booking is the canonical reservation. It is not modified after normalization.
type Booking struct {
	ID        string
	Room      string
	GuestName string
	Source    string
	// StartDate and EndDate are pinned to 12:00 UTC; nil when unparseable.
	StartDate *time.Time
	EndDate   *time.Time
	NumAdult  *int
	NumChild  *int
	Price     *float64
	Notes     *string
	Phone     string
	Email     string
	Metadata  map[string]any
}

type bookingJSON struct {
	ID        string         `json:"id"`
	GuestName string         `json:"guestName"`
	StartDate *string        `json:"startDate"`
	EndDate   *string        `json:"endDate"`
	Source    string         `json:"source"`
	Room      string         `json:"room"`
	NumAdult  *int           `json:"numAdult"`
	NumChild  *int           `json:"numChild"`
	Price     *float64       `json:"price"`
	Notes     *string        `json:"notes"`
	Phone     string         `json:"phone,omitempty"`
	Email     string         `json:"email,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func (b Booking) MarshalJSON() ([]byte, error) {
	return json.Marshal(bookingJSON{
		ID:        b.ID,
		GuestName: b.GuestName,
		StartDate: formatDate(b.StartDate),
		EndDate:   formatDate(b.EndDate),
		Source:    b.Source,
		Room:      b.Room,
		NumAdult:  b.NumAdult,
		NumChild:  b.NumChild,
		Price:     b.Price,
		Notes:     b.Notes,
		Phone:     b.Phone,
		Email:     b.Email,
		Metadata:  b.Metadata,
	})
}

func (b *Booking) UnmarshalJSON(data []byte) error {
	var raw bookingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Booking{
		ID:        raw.ID,
		Room:      raw.Room,
		GuestName: raw.GuestName,
		Source:    raw.Source,
		StartDate: parseDate(raw.StartDate),
		EndDate:   parseDate(raw.EndDate),
		NumAdult:  raw.NumAdult,
		NumChild:  raw.NumChild,
		Price:     raw.Price,
		Notes:     raw.Notes,
		Phone:     raw.Phone,
		Email:     raw.Email,
		Metadata:  raw.Metadata,
	}
	return nil
}

// HasStay reports whether the booking has both dates and a positive length.
func (b Booking) HasStay() bool {
	return b.StartDate != nil && b.EndDate != nil && b.EndDate.After(*b.StartDate)
}

// Nights returns the number of nights, 0 when the stay is unknown.
func (b Booking) Nights() int {
	if !b.HasStay() {
		return 0
	}
	return DayNumber(*b.EndDate) - DayNumber(*b.StartDate)
}

// CivilDate pins a calendar date to noon UTC so that rendering it in any
// time zone between UTC-12 and UTC+11 still shows the same day.
func CivilDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

// DayNumber returns the whole-day index of t counted from the unix epoch,
// taken from t's UTC calendar date. Time of day is ignored.
func DayNumber(t time.Time) int {
	u := t.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return int(midnight.Unix() / 86400)
}

// DateFromDayNumber is the inverse of DayNumber, at midnight UTC.
func DateFromDayNumber(n int) time.Time {
	return time.Unix(int64(n)*86400, 0).UTC()
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(DateLayout)
	return &s
}

func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(DateLayout, *s)
	if err != nil {
		return nil
	}
	pinned := CivilDate(t.Year(), t.Month(), t.Day())
	return &pinned
}
