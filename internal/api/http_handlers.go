package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"occupancy/internal/calendar"
	"occupancy/internal/export"
	"occupancy/internal/models"

	"github.com/julienschmidt/httprouter"
)

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleRooms(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]any{"rooms": s.svc.Rooms()})
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, err := parseLayoutQuery(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	snap, err := req.load(r.Context(), s.svc)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"source":   snap.Source,
		"window":   snap.Window,
		"bookings": snap.Bookings,
		"rejected": snap.Rejected,
	})
}

func (s *HTTPServer) handleLayout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snap, ok := s.loadFromQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSnapshotResponse(snap))
}

func (s *HTTPServer) handleExportXLSX(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snap, ok := s.loadFromQuery(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, snap); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(snap, "xlsx")))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *HTTPServer) handleCalendarSVG(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snap, ok := s.loadFromQuery(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.RenderSVG(&buf, snap, s.svg); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *HTTPServer) loadFromQuery(w http.ResponseWriter, r *http.Request) (*calendar.Snapshot, bool) {
	req, err := parseLayoutQuery(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	snap, err := req.load(r.Context(), s.svc)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return snap, true
}

type viewRequest struct {
	Month             string `json:"month" validate:"omitempty,datetime=2006-01"`
	Room              string `json:"room" validate:"max=200"`
	DayWidthPx        int    `json:"day_width_px" validate:"gte=0,lte=1000"`
	SelectedBookingID string `json:"selected_booking_id" validate:"max=200"`
}

type selectionRequest struct {
	BookingID string `json:"booking_id" validate:"max=200"`
}

type viewportRequest struct {
	DayWidthPx int `json:"day_width_px" validate:"gte=0,lte=1000"`
}

func (s *HTTPServer) handleCreateSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := s.sessions.Create(r.Context())
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID(),
		"view":       sess.View(),
	})
}

func (s *HTTPServer) handleGetSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, ok := s.session(w, r, ps)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"view": sess.View()})
}

func (s *HTTPServer) handleUpdateSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, ok := s.session(w, r, ps)
	if !ok {
		return
	}
	var body viewRequest
	if err := decodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	snap, err := sess.SetView(r.Context(), models.ViewState{
		Month:             body.Month,
		Room:              body.Room,
		DayWidthPx:        body.DayWidthPx,
		SelectedBookingID: body.SelectedBookingID,
	})
	s.writeSnapshot(w, r, snap, err)
}

func (s *HTTPServer) handleDeleteSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.sessions.Close(r.Context(), ps.ByName("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleNavigate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, ok := s.session(w, r, ps)
	if !ok {
		return
	}

	var (
		snap *calendar.Snapshot
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("dir"))) {
	case "next":
		snap, err = sess.Navigate(r.Context(), 1)
	case "prev":
		snap, err = sess.Navigate(r.Context(), -1)
	case "today":
		snap, err = sess.Today(r.Context())
	default:
		writeError(w, http.StatusBadRequest, "dir must be next, prev or today")
		return
	}
	s.writeSnapshot(w, r, snap, err)
}

func (s *HTTPServer) handleSelection(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, ok := s.session(w, r, ps)
	if !ok {
		return
	}
	var body selectionRequest
	if err := decodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	snap, err := sess.Select(r.Context(), body.BookingID)
	s.writeSnapshot(w, r, snap, err)
}

func (s *HTTPServer) handleViewport(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, ok := s.session(w, r, ps)
	if !ok {
		return
	}
	var body viewportRequest
	if err := decodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := sess.Resize(body.DayWidthPx); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"day_width_px": body.DayWidthPx})
}

func (s *HTTPServer) handleSessionLayout(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, ok := s.session(w, r, ps)
	if !ok {
		return
	}
	if snap := sess.Snapshot(); snap != nil {
		writeJSON(w, http.StatusOK, newSnapshotResponse(snap))
		return
	}
	snap, err := sess.Refresh(r.Context())
	s.writeSnapshot(w, r, snap, err)
}

func (s *HTTPServer) session(w http.ResponseWriter, r *http.Request, ps httprouter.Params) (*calendar.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *HTTPServer) writeSnapshot(w http.ResponseWriter, r *http.Request, snap *calendar.Snapshot, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSnapshotResponse(snap))
}
