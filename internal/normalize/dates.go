package normalize

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"occupancy/internal/models"
)

// dateLayouts are tried in order. Layouts carrying an offset keep the date of
// that offset; the others are read as wall-clock dates.
var dateLayouts = []string{
	models.DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"02.01.2006",
	"01/02/2006",
	"20060102",
}

// millisThreshold separates unix seconds from unix milliseconds.
const millisThreshold = 1e11

// ParseDate reads a calendar date from text, a unix timestamp or a time.Time
// and pins it to 12:00 UTC. It returns nil when nothing parses.
func ParseDate(v any) *time.Time {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return pin(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return pin(*t)
	case string:
		return parseDateString(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return fromUnix(f)
		}
		return parseDateString(t.String())
	case float64:
		return fromUnix(t)
	case int64:
		return fromUnix(float64(t))
	case int:
		return fromUnix(float64(t))
	default:
		return nil
	}
}

func parseDateString(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		// time.Parse without an offset yields UTC wall-clock fields, so the
		// process time zone never moves the date.
		if t, err := time.Parse(layout, s); err == nil {
			return pin(t)
		}
	}
	return nil
}

func fromUnix(sec float64) *time.Time {
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec <= 0 {
		return nil
	}
	if sec >= millisThreshold {
		sec /= 1000
	}
	return pin(time.Unix(int64(sec), 0).UTC())
}

func pin(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	d := models.CivilDate(t.Year(), t.Month(), t.Day())
	return &d
}
