package normalize

import (
	"strings"

	"occupancy/internal/models"

	"golang.org/x/text/cases"
)

type platformKeyword struct {
	keyword string
	label   string
}

// platformKeywords are matched in order; "booking.com" precedes "booking" so
// the longer keyword claims the text first.
var platformKeywords = []platformKeyword{
	{"airbnb", models.SourceAirbnb},
	{"booking.com", models.SourceBookingCom},
	{"bookingcom", models.SourceBookingCom},
	{"booking", models.SourceBookingCom},
	{"vrbo", models.SourceVrbo},
	{"homeaway", models.SourceVrbo},
	{"expedia", models.SourceExpedia},
	{"google", models.SourceGoogle},
}

var directKeywords = []string{"direct", "website", "owner", "manual", "phone", "walk-in", "walkin"}

// ClassifySource maps channel, referrer and source text to a source label.
// Platform keywords win over direct keywords. Direct keywords are only
// looked for in channel and referrer. Failing both, the source text itself
// becomes the label, and an empty source is direct.
func ClassifySource(channel, referrer, source string) string {
	fold := cases.Fold()
	texts := []string{
		fold.String(channel),
		fold.String(referrer),
		fold.String(source),
	}

	for _, pk := range platformKeywords {
		for _, text := range texts {
			if strings.Contains(text, pk.keyword) {
				return pk.label
			}
		}
	}

	for _, kw := range directKeywords {
		if strings.Contains(texts[0], kw) || strings.Contains(texts[1], kw) {
			return models.SourceDirect
		}
	}

	if s := strings.ToLower(strings.TrimSpace(source)); s != "" {
		return s
	}
	return models.SourceDirect
}
