package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"occupancy/internal/calendar"
	"occupancy/internal/layout"
	"occupancy/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var errBadRequest = errors.New("bad request")

// layoutRequest is the query shared by the layout, bookings and export
// endpoints and by the gRPC GetLayout call. Either Month or From and To
// select the window.
type layoutRequest struct {
	Month     string `validate:"omitempty,datetime=2006-01"`
	From      string `validate:"omitempty,datetime=2006-01-02"`
	To        string `validate:"omitempty,datetime=2006-01-02"`
	Room      string `validate:"max=200"`
	DayWidth  int    `validate:"gte=0,lte=1000"`
	Selected  string `validate:"max=200"`
	hasWindow bool
}

func parseLayoutQuery(q url.Values) (layoutRequest, error) {
	req := layoutRequest{
		Month:    strings.TrimSpace(q.Get("month")),
		From:     strings.TrimSpace(q.Get("from")),
		To:       strings.TrimSpace(q.Get("to")),
		Room:     strings.TrimSpace(q.Get("room")),
		Selected: strings.TrimSpace(q.Get("selected")),
	}
	if raw := strings.TrimSpace(q.Get("day_width")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("%w: day_width must be an integer", errBadRequest)
		}
		req.DayWidth = n
	}
	err := req.check()
	return req, err
}

func (r *layoutRequest) check() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, validationMessage(err))
	}
	if (r.From == "") != (r.To == "") {
		return fmt.Errorf("%w: from and to must be given together", errBadRequest)
	}
	if r.From != "" && r.Month != "" {
		return fmt.Errorf("%w: month cannot be combined with from/to", errBadRequest)
	}
	r.hasWindow = r.From != ""
	return nil
}

func (r layoutRequest) view() models.ViewState {
	return models.ViewState{
		Month:             r.Month,
		Room:              r.Room,
		DayWidthPx:        r.DayWidth,
		SelectedBookingID: r.Selected,
	}
}

func (r layoutRequest) load(ctx context.Context, svc *calendar.Service) (*calendar.Snapshot, error) {
	view := r.view()
	if !r.hasWindow {
		return svc.Load(ctx, view)
	}

	from, _ := time.Parse(models.DateLayout, r.From)
	to, _ := time.Parse(models.DateLayout, r.To)
	window, err := layout.WindowFromDates(from, to)
	if err != nil {
		return nil, err
	}
	return svc.LoadWindow(ctx, view, window)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, calendar.ErrInvalidView),
		errors.Is(err, layout.ErrInvalidDayWidth),
		errors.Is(err, layout.ErrInvalidWindow),
		errors.Is(err, layout.ErrWindowTooLong):
		return http.StatusBadRequest
	case errors.Is(err, calendar.ErrUnknownRoom),
		errors.Is(err, calendar.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, calendar.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// snapshotResponse is the JSON form of a calendar snapshot.
type snapshotResponse struct {
	Window     models.Window       `json:"window"`
	Rooms      []models.Room       `json:"rooms"`
	Layouts    []models.RoomLayout `json:"layouts"`
	Bookings   []models.Booking    `json:"bookings"`
	View       models.ViewState    `json:"view"`
	Source     string              `json:"source"`
	Rejected   int                 `json:"rejected"`
	DayWidthPx int                 `json:"day_width_px"`
	LoadedAt   time.Time           `json:"loaded_at"`
}

func newSnapshotResponse(snap *calendar.Snapshot) snapshotResponse {
	return snapshotResponse{
		Window:     snap.Window,
		Rooms:      snap.Rooms,
		Layouts:    snap.Rows(),
		Bookings:   snap.Bookings,
		View:       snap.View,
		Source:     snap.Source,
		Rejected:   snap.Rejected,
		DayWidthPx: snap.DayWidthPx,
		LoadedAt:   snap.LoadedAt,
	}
}
