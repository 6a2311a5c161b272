// Package server exposes year progress and the event list over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yearprogress/yearprogress/internal/events"
	"github.com/yearprogress/yearprogress/internal/progress"
	"github.com/yearprogress/yearprogress/pkg/dateutil"
)

// EventStore is the subset of events.Store the API needs
type EventStore interface {
	Load() ([]events.Event, error)
	Add(ev events.NewEvent) (events.Event, error)
	Remove(id string) (bool, error)
}

// Options configures a Server
type Options struct {
	Zone       string
	Location   *time.Location
	TargetYear int
	Clock      func() time.Time
}

// Server serves the JSON API and metrics
type Server struct {
	store    EventStore
	opts     Options
	logger   *zap.Logger
	registry *prometheus.Registry
	router   chi.Router
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewEventRequest is the body of POST /api/v1/events
type NewEventRequest struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Date  string `json:"date"`
	Color string `json:"color,omitempty"`
}

// New creates a server with its routes and metrics registered
func New(store EventStore, opts Options, logger *zap.Logger) *Server {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Server{
		store:    store,
		opts:     opts,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	s.registerMetrics()
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("HTTP server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.requestLogger,
	)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleListEvents)
		r.Post("/events", s.handleAddEvent)
		r.Delete("/events/{id}", s.handleRemoveEvent)
	})

	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	year := s.opts.TargetYear
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1 || y > 9999 {
			s.fail(w, r, http.StatusBadRequest, "year must be an integer between 1 and 9999")
			return
		}
		year = y
	}

	snap, err := s.snapshot(year)
	if err != nil {
		s.logger.Error("Failed to evaluate status", zap.Error(err))
		s.fail(w, r, http.StatusInternalServerError, "failed to load events")
		return
	}
	render.JSON(w, r, snap)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	evs, err := s.store.Load()
	if err != nil {
		s.logger.Error("Failed to load events", zap.Error(err))
		s.fail(w, r, http.StatusInternalServerError, "failed to load events")
		return
	}
	render.JSON(w, r, evs)
}

func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var req NewEventRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	input := events.NewEvent{ID: req.ID, Name: req.Name, Color: req.Color}
	if req.Date != "" {
		date, err := dateutil.ParseDate(req.Date, s.opts.Location)
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, err.Error())
			return
		}
		input.Date = date
	}

	created, err := s.store.Add(input)
	if err != nil {
		if errors.Is(err, events.ErrInvalidEvent) {
			s.fail(w, r, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Failed to add event", zap.Error(err))
		s.fail(w, r, http.StatusInternalServerError, "failed to save event")
		return
	}

	s.logger.Info("Event added",
		zap.String("id", created.ID),
		zap.String("name", created.Name))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, created)
}

func (s *Server) handleRemoveEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	removed, err := s.store.Remove(id)
	if err != nil {
		s.logger.Error("Failed to remove event", zap.String("id", id), zap.Error(err))
		s.fail(w, r, http.StatusInternalServerError, "failed to save events")
		return
	}
	if !removed {
		s.fail(w, r, http.StatusNotFound, "event not found")
		return
	}

	s.logger.Info("Event removed", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) snapshot(year int) (progress.Snapshot, error) {
	evs, err := s.store.Load()
	if err != nil {
		return progress.Snapshot{}, err
	}
	return progress.Evaluate(s.opts.Clock(), s.opts.Zone, s.opts.Location, year, evs), nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
