package normalize

import (
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"occupancy/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRooms = []models.Room{
	{Name: "Loft", IDs: []string{"1001", "L-1"}},
	{Name: "Garden Suite", IDs: []string{"1002"}},
	{Name: "Attic"},
}

func newTestNormalizer() *Normalizer {
	logger := zerolog.New(io.Discard)
	return New(testRooms, &logger)
}

func decodeRecord(t *testing.T, s string) models.RawRecord {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var rec models.RawRecord
	require.NoError(t, dec.Decode(&rec))
	return rec
}

func TestNormalizeRecord_HostawayShape(t *testing.T) {
	n := newTestNormalizer()
	rec := decodeRecord(t, `{
		"id": 4711,
		"listingMapId": 1001,
		"guestName": "Ada Lovelace",
		"arrivalDate": "2024-03-05",
		"departureDate": "2024-03-09",
		"channelName": "airbnbOfficial",
		"numberOfGuests": 2,
		"children": "1",
		"totalPrice": "1,234.50",
		"comment": "late arrival",
		"phone": "+44 20 7946 0000",
		"guestEmail": "ada@example.com",
		"status": "new"
	}`)

	b, err := n.NormalizeRecord(rec, Hints{})
	require.NoError(t, err)

	assert.Equal(t, "4711", b.ID)
	assert.Equal(t, "Loft", b.Room)
	assert.Equal(t, "Ada Lovelace", b.GuestName)
	assert.Equal(t, models.SourceAirbnb, b.Source)
	require.NotNil(t, b.StartDate)
	require.NotNil(t, b.EndDate)
	assert.Equal(t, models.CivilDate(2024, time.March, 5), *b.StartDate)
	assert.Equal(t, models.CivilDate(2024, time.March, 9), *b.EndDate)
	require.NotNil(t, b.NumAdult)
	assert.Equal(t, 2, *b.NumAdult)
	require.NotNil(t, b.NumChild)
	assert.Equal(t, 1, *b.NumChild)
	require.NotNil(t, b.Price)
	assert.InDelta(t, 1234.50, *b.Price, 1e-9)
	require.NotNil(t, b.Notes)
	assert.Equal(t, "late arrival", *b.Notes)
	assert.Equal(t, "+44 20 7946 0000", b.Phone)
	assert.Equal(t, "ada@example.com", b.Email)
	assert.Equal(t, "new", b.Metadata["status"])
}

func TestNormalizeRecord_GuestName(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name string
		rec  models.RawRecord
		want string
	}{
		{"snake case", models.RawRecord{"room": "Attic", "guest_name": "Grace"}, "Grace"},
		{"guest string", models.RawRecord{"room": "Attic", "guest": "Linus"}, "Linus"},
		{"guest object", models.RawRecord{"room": "Attic", "guest": map[string]any{"firstName": "Ken", "lastName": "Thompson"}}, "Ken Thompson"},
		{"first and last", models.RawRecord{"room": "Attic", "guestFirstName": "Barbara", "guestLastName": "Liskov"}, "Barbara Liskov"},
		{"first only", models.RawRecord{"room": "Attic", "first_name": "Alan"}, "Alan"},
		{"blank", models.RawRecord{"room": "Attic", "guestName": "   "}, models.GuestPlaceholder},
		{"missing", models.RawRecord{"room": "Attic"}, models.GuestPlaceholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := n.NormalizeRecord(tt.rec, Hints{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.GuestName)
		})
	}
}

func TestNormalizeRecord_Rooms(t *testing.T) {
	n := newTestNormalizer()

	b, err := n.NormalizeRecord(models.RawRecord{"roomName": "garden suite"}, Hints{})
	require.NoError(t, err)
	assert.Equal(t, "Garden Suite", b.Room)

	b, err = n.NormalizeRecord(models.RawRecord{"property_id": "l-1"}, Hints{})
	require.NoError(t, err)
	assert.Equal(t, "Loft", b.Room)

	b, err = n.NormalizeRecord(models.RawRecord{"listingId": "9999", "guestName": "X"}, Hints{Room: "Attic"})
	require.NoError(t, err)
	assert.Equal(t, "Attic", b.Room)

	_, err = n.NormalizeRecord(models.RawRecord{"listingId": "9999"}, Hints{})
	assert.ErrorIs(t, err, ErrUnknownRoom)

	_, err = n.NormalizeRecord(models.RawRecord{}, Hints{})
	assert.ErrorIs(t, err, ErrEmptyRecord)
}

func TestNormalizeRecord_Numerics(t *testing.T) {
	n := newTestNormalizer()

	t.Run("absent stays nil", func(t *testing.T) {
		b, err := n.NormalizeRecord(models.RawRecord{"room": "Attic"}, Hints{})
		require.NoError(t, err)
		assert.Nil(t, b.NumAdult)
		assert.Nil(t, b.NumChild)
		assert.Nil(t, b.Price)
	})

	t.Run("garbage stays nil", func(t *testing.T) {
		b, err := n.NormalizeRecord(models.RawRecord{"room": "Attic", "adults": "many", "price": "n/a"}, Hints{})
		require.NoError(t, err)
		assert.Nil(t, b.NumAdult)
		assert.Nil(t, b.Price)
	})

	t.Run("decimal comma", func(t *testing.T) {
		b, err := n.NormalizeRecord(models.RawRecord{"room": "Attic", "amount": "€ 99,90"}, Hints{})
		require.NoError(t, err)
		require.NotNil(t, b.Price)
		assert.InDelta(t, 99.90, *b.Price, 1e-9)
	})

	t.Run("charges summed exactly", func(t *testing.T) {
		rec := decodeRecord(t, `{"room":"Attic","charges":[{"amount":"0.1"},{"amount":0.2},{"type":"fee"},35]}`)
		b, err := n.NormalizeRecord(rec, Hints{})
		require.NoError(t, err)
		require.NotNil(t, b.Price)
		assert.Equal(t, 35.3, *b.Price)
	})

	t.Run("explicit price wins over charges", func(t *testing.T) {
		b, err := n.NormalizeRecord(models.RawRecord{"room": "Attic", "price": 10.0, "charges": []any{5.0}}, Hints{})
		require.NoError(t, err)
		require.NotNil(t, b.Price)
		assert.Equal(t, 10.0, *b.Price)
	})

	t.Run("zero is kept", func(t *testing.T) {
		b, err := n.NormalizeRecord(models.RawRecord{"room": "Attic", "children": 0}, Hints{})
		require.NoError(t, err)
		require.NotNil(t, b.NumChild)
		assert.Equal(t, 0, *b.NumChild)
	})
}

func TestNormalizeRecord_SourceHint(t *testing.T) {
	n := newTestNormalizer()

	b, err := n.NormalizeRecord(models.RawRecord{"room": "Attic"}, Hints{Source: "Sheets"})
	require.NoError(t, err)
	assert.Equal(t, "sheets", b.Source)

	b, err = n.NormalizeRecord(models.RawRecord{"room": "Attic", "source": "VRBO"}, Hints{Source: "sheets"})
	require.NoError(t, err)
	assert.Equal(t, models.SourceVrbo, b.Source)
}

func TestNormalizeRecord_DerivedID(t *testing.T) {
	n := newTestNormalizer()
	rec := models.RawRecord{"room": "Loft", "guestName": "Ada", "startDate": "2024-03-01", "endDate": "2024-03-04"}

	a, err := n.NormalizeRecord(rec, Hints{})
	require.NoError(t, err)
	b, err := n.NormalizeRecord(rec, Hints{})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, a.ID, b.ID)

	rec["endDate"] = "2024-03-05"
	c, err := n.NormalizeRecord(rec, Hints{})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestNormalizeRecord_CollidingKeysStable(t *testing.T) {
	n := newTestNormalizer()
	rec := models.RawRecord{
		"room":       "Loft",
		"guest_name": "Alice",
		"guestName":  "Bob",
		"GUEST-NAME": "Carol",
		"startDate":  "2024-03-01",
		"endDate":    "2024-03-04",
	}

	first, err := n.NormalizeRecord(rec, Hints{})
	require.NoError(t, err)
	assert.Equal(t, "Carol", first.GuestName, "sorted key order picks GUEST-NAME")

	for i := 0; i < 50; i++ {
		b, err := n.NormalizeRecord(rec, Hints{})
		require.NoError(t, err)
		require.Equal(t, first.GuestName, b.GuestName)
		require.Equal(t, first.ID, b.ID)
	}
}

func TestNormalizeBatch(t *testing.T) {
	n := newTestNormalizer()
	records := []models.RawRecord{
		{"id": "a", "room": "Loft", "guestName": "First"},
		{"id": "b", "room": "Nowhere"},
		{"id": "a", "room": "Attic", "guestName": "Second"},
		nil,
		{"id": "c", "room": "Attic", "startDate": "not a date"},
	}

	res := n.NormalizeBatch(records, Hints{})

	require.Len(t, res.Bookings, 2)
	assert.Equal(t, "a", res.Bookings[0].ID)
	assert.Equal(t, "First", res.Bookings[0].GuestName)
	assert.Equal(t, "c", res.Bookings[1].ID)
	assert.Nil(t, res.Bookings[1].StartDate)
	assert.Equal(t, 2, res.Rejected)
	assert.Equal(t, 1, res.Duplicates)

	assert.Equal(t, res.Bookings, n.Normalize(records, Hints{}))
}

func TestNormalize_NilLogger(t *testing.T) {
	n := New(testRooms, nil)
	out := n.Normalize([]models.RawRecord{{"room": "Nowhere"}}, Hints{})
	assert.Empty(t, out)
}
