// Package api provides the HTTP surface for JourneyMap.
//
// It exposes RESTful endpoints for session lifecycle, journey generation
// and editing, plus a WebSocket stream of session state. Handlers are thin:
// validation and state transitions live in the session package, persistence
// in the store package.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/BTreeMap/JourneyMap/internal/models"
	"github.com/BTreeMap/JourneyMap/internal/session"
	"github.com/BTreeMap/JourneyMap/internal/store"
)

// DefaultAddr is the default listen address.
const DefaultAddr = ":8080"

// DefaultShutdownTimeout bounds graceful shutdown on context cancellation.
const DefaultShutdownTimeout = 10 * time.Second

// Opts holds configuration for the API server.
type Opts struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
}

// Option configures Opts.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server wires the session manager and the journey store to HTTP handlers.
type Server struct {
	mgr  *session.Manager
	st   store.Store
	opts Opts
}

// NewServer creates an API server. The store may be nil when history
// persistence is disabled.
func NewServer(mgr *session.Manager, st store.Store, options ...Option) *Server {
	opts := Opts{Addr: DefaultAddr}
	for _, opt := range options {
		opt(&opts)
	}
	return &Server{mgr: mgr, st: st, opts: opts}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /sessions", s.createSessionHandler)
	mux.HandleFunc("GET /sessions/{id}", s.getSessionHandler)
	mux.HandleFunc("DELETE /sessions/{id}", s.deleteSessionHandler)

	mux.HandleFunc("POST /sessions/{id}/generate", s.generateHandler)
	mux.HandleFunc("POST /sessions/{id}/cancel", s.cancelHandler)
	mux.HandleFunc("PUT /sessions/{id}/variables", s.setVariableHandler)
	mux.HandleFunc("PUT /sessions/{id}/provider", s.selectProviderHandler)
	mux.HandleFunc("PUT /sessions/{id}/key", s.setAPIKeyHandler)
	mux.HandleFunc("POST /sessions/{id}/background", s.uploadBackgroundHandler)

	mux.HandleFunc("GET /sessions/{id}/journey", s.getJourneyHandler)
	mux.HandleFunc("POST /sessions/{id}/stages", s.addStageHandler)
	mux.HandleFunc("POST /sessions/{id}/stages/edit", s.editStageHandler)
	mux.HandleFunc("POST /sessions/{id}/stages/delete", s.deleteStageHandler)

	mux.HandleFunc("GET /sessions/{id}/watch", s.watchHandler)
	mux.HandleFunc("GET /journeys", s.listJourneysHandler)

	return mux
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.opts.Addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// sessionFromRequest resolves the {id} path segment to a live session,
// writing the error response itself when the session is unknown.
func (s *Server) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := r.PathValue("id")
	sess, err := s.mgr.Get(id)
	if err != nil {
		slog.Warn("session lookup failed", "sessionID", id)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return nil, false
	}
	return sess, true
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNoJourney):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, models.ErrLastStage):
		return http.StatusConflict
	case errors.Is(err, models.ErrEmptyPrompt),
		errors.Is(err, models.ErrMissingAPIKey),
		errors.Is(err, models.ErrInvalidProvider),
		errors.Is(err, models.ErrInvalidAxis),
		errors.Is(err, models.ErrInvalidVariable),
		errors.Is(err, models.ErrStageIndex),
		errors.Is(err, models.ErrInvalidStageField):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
