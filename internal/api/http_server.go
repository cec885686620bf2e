package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"occupancy/internal/calendar"
	"occupancy/internal/config"
	"occupancy/internal/export"
	"occupancy/internal/metrics"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// HTTPServer exposes the calendar over JSON plus the xlsx and svg exports.
type HTTPServer struct {
	cfg      *config.APIConfig
	svc      *calendar.Service
	sessions *calendar.Sessions
	svg      export.SVGOptions
	limiter  *rateLimiter
	server   *http.Server
	log      zerolog.Logger
}

func NewHTTPServer(
	cfg *config.APIConfig,
	svc *calendar.Service,
	sessions *calendar.Sessions,
	svg export.SVGOptions,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		svc:      svc,
		sessions: sessions,
		svg:      svg,
		limiter:  newRateLimiter(cfg.RateLimit),
		log:      zerolog.Nop(),
	}
	if logger != nil {
		srv.log = logger.With().Str("component", "http").Logger()
	}

	handler := srv.loggingMiddleware(srv.rateLimitMiddleware(srv.routes()))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) routes() *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.handle(router, http.MethodGet, "/healthz", s.handleHealth)
	s.handle(router, http.MethodGet, "/api/v1/rooms", s.handleRooms)
	s.handle(router, http.MethodGet, "/api/v1/bookings", s.handleBookings)
	s.handle(router, http.MethodGet, "/api/v1/layout", s.handleLayout)
	s.handle(router, http.MethodGet, "/api/v1/export.xlsx", s.handleExportXLSX)
	s.handle(router, http.MethodGet, "/api/v1/calendar.svg", s.handleCalendarSVG)

	s.handle(router, http.MethodPost, "/api/v1/sessions", s.handleCreateSession)
	s.handle(router, http.MethodGet, "/api/v1/sessions/:id", s.handleGetSession)
	s.handle(router, http.MethodPut, "/api/v1/sessions/:id", s.handleUpdateSession)
	s.handle(router, http.MethodDelete, "/api/v1/sessions/:id", s.handleDeleteSession)
	s.handle(router, http.MethodPost, "/api/v1/sessions/:id/navigate", s.handleNavigate)
	s.handle(router, http.MethodPut, "/api/v1/sessions/:id/selection", s.handleSelection)
	s.handle(router, http.MethodPost, "/api/v1/sessions/:id/viewport", s.handleViewport)
	s.handle(router, http.MethodGet, "/api/v1/sessions/:id/layout", s.handleSessionLayout)

	return router
}

// handle registers h and counts requests by route pattern.
func (s *HTTPServer) handle(router *httprouter.Router, method, path string, h httprouter.Handle) {
	router.Handle(method, path, func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		metrics.IncHTTP(path)
		h(w, r, ps)
	})
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" && !s.limiter.allow(hostKey(r.RemoteAddr)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		ev := s.log.Info()
		if recorder.status >= http.StatusInternalServerError {
			ev = s.log.Warn()
		}
		ev.Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// fail writes err with the status it maps to. Unexpected errors are logged
// and hidden from the client.
func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, code, "internal error")
		return
	}
	writeError(w, code, err.Error())
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// decodeJSON reads a JSON body into dst and validates it.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body", errBadRequest)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, validationMessage(err))
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
