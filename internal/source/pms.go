package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"occupancy/internal/config"
	"occupancy/internal/models"
)

// PMSClient reads reservations from the property-management REST API.
type PMSClient struct {
	baseURL    string
	apiKey     string
	provider   string
	rooms      []models.Room
	httpClient *http.Client
}

type reservationsResponse struct {
	Result       []models.RawRecord `json:"result"`
	Reservations []models.RawRecord `json:"reservations"`
}

func NewPMSClient(cfg config.PMSConfig, timeout time.Duration, rooms []models.Room) *PMSClient {
	if timeout <= 0 {
		timeout = models.DefaultUpstreamTimeout * time.Second
	}
	return &PMSClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		provider:   cfg.Provider,
		rooms:      rooms,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *PMSClient) Name() string { return "pms" }

// Fetch asks for every stay touching the query range. A room-scoped query
// issues one request per upstream id of that room.
func (c *PMSClient) Fetch(ctx context.Context, q models.Query) (models.Batch, error) {
	batch := models.Batch{Source: c.provider}

	listingIDs := []string{""}
	if q.Room != "" {
		if room, ok := findRoom(c.rooms, q.Room); ok {
			batch.Room = room.Name
			if len(room.IDs) > 0 {
				listingIDs = room.IDs
			}
		}
	}

	for _, id := range listingIDs {
		records, err := c.listReservations(ctx, q.From, q.To, id)
		if err != nil {
			return models.Batch{}, err
		}
		batch.Records = append(batch.Records, records...)
	}
	return batch, nil
}

func (c *PMSClient) listReservations(ctx context.Context, from, to time.Time, listingID string) ([]models.RawRecord, error) {
	params := url.Values{}
	params.Set("departureStartDate", from.Format(models.DateLayout))
	params.Set("arrivalEndDate", to.Format(models.DateLayout))
	if listingID != "" {
		params.Set("listingId", listingID)
	}
	endpoint := fmt.Sprintf("%s/v1/reservations?%s", c.baseURL, params.Encode())

	var resp reservationsResponse
	if err := c.doGet(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Result != nil {
		return resp.Result, nil
	}
	return resp.Reservations, nil
}

func (c *PMSClient) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	c.addHeaders(req)
	return c.do(req, out)
}

func (c *PMSClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: http %d", ErrUpstream, resp.StatusCode)
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: decode reservations: %v", ErrUpstream, err)
	}
	return nil
}

func (c *PMSClient) addHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
