// Package normalize converts heterogeneous upstream reservation records into
// canonical bookings.
package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"occupancy/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrUnknownRoom = errors.New("record matches no configured room")
	ErrEmptyRecord = errors.New("empty record")
)

// bookingNamespace seeds ids derived for records that carry none.
var bookingNamespace = uuid.MustParse("6f1c5a52-3b0e-4d8e-9a43-2c7d0b5e91a4")

var (
	idFields        = []string{"id", "reservationid", "bookingid", "hostawayreservationid", "confirmationcode", "uid"}
	nameFields      = []string{"guestname", "name", "fullname", "guestfullname"}
	firstNameFields = []string{"guestfirstname", "firstname", "givenname"}
	lastNameFields  = []string{"guestlastname", "lastname", "surname", "familyname"}
	startFields     = []string{"startdate", "arrivaldate", "checkin", "checkindate", "arrival", "start", "from"}
	endFields       = []string{"enddate", "departuredate", "checkout", "checkoutdate", "departure", "end", "to"}
	channelFields   = []string{"channelname", "channel"}
	referrerFields  = []string{"referrer", "referer", "referral"}
	sourceFields    = []string{"source", "sourcename", "origin"}
	adultFields     = []string{"numberofguests", "adults", "numadult", "guests", "guestcount"}
	childFields     = []string{"children", "numchild", "kids"}
	priceFields     = []string{"totalprice", "price", "total", "amount"}
	chargeFields    = []string{"charges", "financefields"}
	notesFields     = []string{"notes", "note", "comment", "comments", "guestnote", "guestnotes"}
	phoneFields     = []string{"phone", "guestphone", "phonenumber"}
	emailFields     = []string{"email", "guestemail"}

	// metadataFields are carried through untouched when present.
	metadataFields = map[string]string{
		"status":           "status",
		"currency":         "currency",
		"confirmationcode": "confirmationCode",
		"channelname":      "channelName",
	}
)

// Hints describe how a batch was fetched.
type Hints struct {
	// Room is the configured room the fetch was scoped to, if any.
	Room string
	// Source is the provider default used when a record names none.
	Source string
}

// Result is the outcome of normalizing one batch.
type Result struct {
	Bookings   []models.Booking
	Rejected   int
	Duplicates int
}

type Normalizer struct {
	rooms  *RoomResolver
	logger *zerolog.Logger
}

func New(rooms []models.Room, logger *zerolog.Logger) *Normalizer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Normalizer{rooms: NewRoomResolver(rooms), logger: logger}
}

// NormalizeRecord builds one booking. Missing or unparseable fields are left
// empty; only a record that matches no room is rejected.
func (n *Normalizer) NormalizeRecord(raw models.RawRecord, hints Hints) (models.Booking, error) {
	if len(raw) == 0 {
		return models.Booking{}, ErrEmptyRecord
	}
	f := index(raw)

	room, ok := n.rooms.resolveRecord(f, hints.Room)
	if !ok {
		return models.Booking{}, ErrUnknownRoom
	}

	source := f.str(sourceFields...)
	if source == "" {
		source = hints.Source
	}

	b := models.Booking{
		Room:      room,
		GuestName: guestName(f),
		Source:    ClassifySource(f.str(channelFields...), f.str(referrerFields...), source),
		NumAdult:  f.count(adultFields...),
		NumChild:  f.count(childFields...),
		Phone:     f.str(phoneFields...),
		Email:     f.str(emailFields...),
		Metadata:  metadata(f),
	}

	if v, ok := f.value(startFields...); ok {
		b.StartDate = ParseDate(v)
	}
	if v, ok := f.value(endFields...); ok {
		b.EndDate = ParseDate(v)
	}

	b.Price = f.amount(priceFields...)
	if b.Price == nil {
		b.Price = f.chargesTotal(chargeFields...)
	}

	if notes := f.str(notesFields...); notes != "" {
		b.Notes = &notes
	}

	b.ID = f.str(idFields...)
	if b.ID == "" {
		b.ID = derivedID(b)
	}

	return b, nil
}

// Normalize returns the bookings of a batch, skipping rejected records.
func (n *Normalizer) Normalize(records []models.RawRecord, hints Hints) []models.Booking {
	return n.NormalizeBatch(records, hints).Bookings
}

// NormalizeBatch normalizes every record. A rejected record never stops the
// batch; a repeated id keeps its first occurrence.
func (n *Normalizer) NormalizeBatch(records []models.RawRecord, hints Hints) Result {
	res := Result{Bookings: make([]models.Booking, 0, len(records))}
	seen := make(map[string]struct{}, len(records))

	for i, raw := range records {
		b, err := n.NormalizeRecord(raw, hints)
		if err != nil {
			res.Rejected++
			n.logger.Debug().Err(err).Int("index", i).Msg("Record rejected")
			continue
		}
		if _, dup := seen[b.ID]; dup {
			res.Duplicates++
			n.logger.Debug().Str("booking_id", b.ID).Msg("Duplicate booking id skipped")
			continue
		}
		seen[b.ID] = struct{}{}
		res.Bookings = append(res.Bookings, b)
	}

	if res.Rejected > 0 || res.Duplicates > 0 {
		n.logger.Info().
			Int("accepted", len(res.Bookings)).
			Int("rejected", res.Rejected).
			Int("duplicates", res.Duplicates).
			Msg("Normalized booking batch")
	}
	return res
}

func guestName(f fields) string {
	if name := f.str(nameFields...); name != "" {
		return name
	}

	guest, _ := f.value("guest")
	switch g := guest.(type) {
	case string:
		if s := strings.TrimSpace(g); s != "" {
			return s
		}
	case map[string]any:
		if name := guestName(index(g)); name != models.GuestPlaceholder {
			return name
		}
	}

	full := strings.TrimSpace(f.str(firstNameFields...) + " " + f.str(lastNameFields...))
	if full != "" {
		return full
	}
	return models.GuestPlaceholder
}

func metadata(f fields) map[string]any {
	var meta map[string]any
	for key, name := range metadataFields {
		v, ok := f[key]
		if !ok || v == nil {
			continue
		}
		if meta == nil {
			meta = make(map[string]any)
		}
		meta[name] = v
	}
	return meta
}

// derivedID is stable for the same room, stay and guest.
func derivedID(b models.Booking) string {
	key := fmt.Sprintf("%s|%s|%s|%s",
		models.RoomKey(b.Room), dateKey(b.StartDate), dateKey(b.EndDate), b.GuestName)
	return uuid.NewSHA1(bookingNamespace, []byte(key)).String()
}

func dateKey(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(models.DateLayout)
}
