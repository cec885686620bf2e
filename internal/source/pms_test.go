package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"occupancy/internal/config"
	"occupancy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRooms = []models.Room{
	{Name: "Loft", IDs: []string{"1001", "1002"}},
	{Name: "Attic"},
}

func testQuery() models.Query {
	return models.Query{
		From: models.CivilDate(2024, time.March, 1),
		To:   models.CivilDate(2024, time.March, 31),
	}
}

func TestPMSClient_Fetch(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","result":[{"id":12345678901234567,"listingMapId":1001,"totalPrice":"99.5"}]}`))
	}))
	defer server.Close()

	c := NewPMSClient(config.PMSConfig{BaseURL: server.URL + "/", APIKey: "k", Provider: "hostaway"}, time.Second, testRooms)
	batch, err := c.Fetch(context.Background(), testQuery())
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/v1/reservations", got.URL.Path)
	assert.Equal(t, "2024-03-01", got.URL.Query().Get("departureStartDate"))
	assert.Equal(t, "2024-03-31", got.URL.Query().Get("arrivalEndDate"))
	assert.Empty(t, got.URL.Query().Get("listingId"))
	assert.Equal(t, "Bearer k", got.Header.Get("Authorization"))

	require.Len(t, batch.Records, 1)
	assert.Equal(t, "12345678901234567", stringOf(batch.Records[0]["id"]))
	assert.Equal(t, "hostaway", batch.Source)
	assert.Empty(t, batch.Room)
	assert.Equal(t, "pms", c.Name())
}

func TestPMSClient_FetchScopedToRoom(t *testing.T) {
	var mu sync.Mutex
	var listings []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		listings = append(listings, r.URL.Query().Get("listingId"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"reservations":[{"id":"` + r.URL.Query().Get("listingId") + `"}]}`))
	}))
	defer server.Close()

	c := NewPMSClient(config.PMSConfig{BaseURL: server.URL, APIKey: "k"}, time.Second, testRooms)
	q := testQuery()
	q.Room = "loft"

	batch, err := c.Fetch(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"1001", "1002"}, listings)
	assert.Equal(t, "Loft", batch.Room)
	assert.Len(t, batch.Records, 2)
}

func TestPMSClient_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadGateway)
		}))
		defer server.Close()

		c := NewPMSClient(config.PMSConfig{BaseURL: server.URL, APIKey: "k"}, time.Second, testRooms)
		_, err := c.Fetch(context.Background(), testQuery())
		assert.ErrorIs(t, err, ErrUpstream)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer server.Close()

		c := NewPMSClient(config.PMSConfig{BaseURL: server.URL, APIKey: "k"}, time.Second, testRooms)
		_, err := c.Fetch(context.Background(), testQuery())
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()

		c := NewPMSClient(config.PMSConfig{BaseURL: server.URL, APIKey: "k"}, time.Second, testRooms)
		_, err := c.Fetch(context.Background(), testQuery())
		assert.Error(t, err)
	})
}

func stringOf(v any) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
