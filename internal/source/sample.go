package source

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"occupancy/internal/models"

	"github.com/google/uuid"
)

var sampleNamespace = uuid.MustParse("0b6f6a8e-51d2-4c1e-8f0a-7c3b9e2d4a15")

var (
	sampleGuests   = []string{"Ada Lovelace", "Grace Hopper", "Alan Turing", "Katherine Johnson", "Linus Torvalds", "Barbara Liskov", "Ken Thompson", "Margaret Hamilton"}
	sampleChannels = []string{"airbnbOfficial", "bookingcom", "vrbo", "direct", "website", "expedia", "google", ""}
)

// SampleSource generates believable bookings when no upstream is configured.
// Output depends only on the rooms and the query.
type SampleSource struct {
	rooms []models.Room
}

func NewSampleSource(rooms []models.Room) *SampleSource {
	return &SampleSource{rooms: rooms}
}

func (s *SampleSource) Name() string { return "sample" }

func (s *SampleSource) Fetch(_ context.Context, q models.Query) (models.Batch, error) {
	from := models.DayNumber(q.From)
	to := models.DayNumber(q.To)

	var records []models.RawRecord
	for i, room := range s.rooms {
		if q.Room != "" && !room.Matches(q.Room) {
			continue
		}
		rng := rand.New(rand.NewSource(seed(room.Name, from, to)))
		records = append(records, sampleRoom(rng, room, i, from, to)...)
	}
	return models.Batch{Records: records, Source: models.SourceDirect}, nil
}

func seed(room string, from, to int) int64 {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s|%d|%d", models.RoomKey(room), from, to)
	return int64(h.Sum64())
}

// sampleRoom walks the range leaving gaps of zero to three nights, so some
// stays touch, and now and then double-books a stay to force a second lane.
func sampleRoom(rng *rand.Rand, room models.Room, roomIdx, from, to int) []models.RawRecord {
	var out []models.RawRecord
	day := from - rng.Intn(4)
	for n := 0; day <= to; n++ {
		nights := 1 + rng.Intn(6)
		out = append(out, sampleRecord(rng, room, roomIdx, n, day, day+nights))

		if rng.Intn(6) == 0 {
			start := day + rng.Intn(nights)
			out = append(out, sampleRecord(rng, room, roomIdx, n+1000, start, start+1+rng.Intn(3)))
		}
		day += nights + rng.Intn(4)
	}
	return out
}

// sampleRecord varies field names between three provider shapes so the
// normalizer sees the same mix it would in production.
func sampleRecord(rng *rand.Rand, room models.Room, roomIdx, n, startDay, endDay int) models.RawRecord {
	start := models.DateFromDayNumber(startDay)
	end := models.DateFromDayNumber(endDay)
	id := uuid.NewSHA1(sampleNamespace, []byte(fmt.Sprintf("%s|%d|%d", room.Name, startDay, n))).String()
	guest := sampleGuests[rng.Intn(len(sampleGuests))]
	channel := sampleChannels[rng.Intn(len(sampleChannels))]
	adults := 1 + rng.Intn(4)
	price := float64(80+rng.Intn(120)) * float64(endDay-startDay)

	roomRef := room.Name
	if len(room.IDs) > 0 {
		roomRef = room.IDs[0]
	}

	switch (roomIdx + n) % 3 {
	case 0:
		return models.RawRecord{
			"id":             id,
			"listingMapId":   roomRef,
			"guestName":      guest,
			"arrivalDate":    start.Format(models.DateLayout),
			"departureDate":  end.Format(models.DateLayout),
			"channelName":    channel,
			"numberOfGuests": adults,
			"totalPrice":     price,
		}
	case 1:
		return models.RawRecord{
			"ID":        id,
			"Room":      room.Name,
			"Guest":     guest,
			"Check-in":  start.Format("02.01.2006"),
			"Check-out": end.Format("02.01.2006"),
			"Source":    channel,
			"Adults":    fmt.Sprint(adults),
			"Children":  fmt.Sprint(rng.Intn(3)),
			"Price":     fmt.Sprintf("%.2f", price),
		}
	default:
		return models.RawRecord{
			"bookingId": id,
			"room_name": room.Name,
			"firstName": guest,
			"startDate": start.Add(15 * time.Hour).Format(time.RFC3339),
			"endDate":   end.Add(10 * time.Hour).Format(time.RFC3339),
			"referrer":  channel,
			"charges": []any{
				map[string]any{"type": "rent", "amount": price},
				map[string]any{"type": "cleaning", "amount": 35},
			},
		}
	}
}
