package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"occupancy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func setupMockSheets(ctx context.Context, t *testing.T) (*http.ServeMux, *SheetsSource) {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	srv, err := sheets.NewService(ctx, option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)
	return mux, newSheetsSource(srv, "sheet_id", "Bookings!A:Z")
}

func TestSheetsSource_Fetch(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockSheets(ctx, t)
	mux.HandleFunc("/v4/spreadsheets/sheet_id/values/Bookings!A:Z", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{
			{"ID", "Room", "Guest", "Check-in", "Check-out"},
			{"1", "Loft", "Ada", "01.03.2024", "04.03.2024"},
			{"2", "Attic", "", "05.03.2024"},
			{"", "", ""},
		}})
	})

	batch, err := s.Fetch(ctx, models.Query{Room: "Loft"})
	require.NoError(t, err)
	require.Len(t, batch.Records, 2)
	assert.Equal(t, "Ada", batch.Records[0]["Guest"])
	assert.NotContains(t, batch.Records[1], "Guest")
	assert.NotContains(t, batch.Records[1], "Check-out")
	assert.Equal(t, "Loft", batch.Room)
	assert.Equal(t, models.SourceDirect, batch.Source)
	assert.Equal(t, "sheets", s.Name())
}

func TestSheetsSource_FetchError(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockSheets(ctx, t)
	mux.HandleFunc("/v4/spreadsheets/sheet_id/values/Bookings!A:Z", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	})

	_, err := s.Fetch(ctx, models.Query{})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestRowsToRecords(t *testing.T) {
	assert.Nil(t, rowsToRecords(nil))
	assert.Nil(t, rowsToRecords([][]interface{}{{"ID"}}))

	records := rowsToRecords([][]interface{}{
		{"ID", "", "Room"},
		{"7", "ignored", "Loft", "overflow"},
	})
	require.Len(t, records, 1)
	assert.Equal(t, models.RawRecord{"ID": "7", "Room": "Loft"}, records[0])
}
