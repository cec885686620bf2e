package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"occupancy/internal/config"
	"occupancy/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsSource reads bookings kept in a spreadsheet. The first row of the
// range names the fields.
type SheetsSource struct {
	service       *sheets.Service
	spreadsheetID string
	readRange     string
}

func NewSheetsSource(ctx context.Context, cfg config.SheetsConfig) (*SheetsSource, error) {
	credentialsJSON, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	jwt, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return newSheetsSource(srv, cfg.SpreadsheetID, cfg.Range), nil
}

func newSheetsSource(srv *sheets.Service, spreadsheetID, readRange string) *SheetsSource {
	return &SheetsSource{service: srv, spreadsheetID: spreadsheetID, readRange: readRange}
}

func (s *SheetsSource) Name() string { return "sheets" }

// Fetch returns every row of the range; the pipeline clips to the window.
func (s *SheetsSource) Fetch(ctx context.Context, q models.Query) (models.Batch, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return models.Batch{}, fmt.Errorf("%w: read sheet: %v", ErrUpstream, err)
	}
	return models.Batch{
		Records: rowsToRecords(resp.Values),
		Room:    q.Room,
		Source:  models.SourceDirect,
	}, nil
}

func rowsToRecords(values [][]interface{}) []models.RawRecord {
	if len(values) < 2 {
		return nil
	}

	header := make([]string, len(values[0]))
	for i, cell := range values[0] {
		header[i] = strings.TrimSpace(fmt.Sprint(cell))
	}

	records := make([]models.RawRecord, 0, len(values)-1)
	for _, row := range values[1:] {
		rec := models.RawRecord{}
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if s, ok := cell.(string); ok && strings.TrimSpace(s) == "" {
				continue
			}
			rec[header[i]] = cell
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records
}
