// Package status serves a small local HTTP API for watching a run.
package status

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/agents/tracker"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/telemetry"
)

// Server exposes health, stats, and activity endpoints.
type Server struct {
	http   *http.Server
	logger *slog.Logger
}

// New builds the server on addr.
func New(addr string, track *tracker.Tracker, events *telemetry.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/stats", func(w http.ResponseWriter, req *http.Request) {
		counts, err := events.CountByKind(req.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, counts)
	})

	r.Get("/api/events", func(w http.ResponseWriter, req *http.Request) {
		evts, err := events.Recent(req.Context(), 100)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, evts)
	})

	r.Get("/api/activities", func(w http.ResponseWriter, _ *http.Request) {
		acts, err := track.Load()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if acts == nil {
			acts = []tracker.Activity{}
		}
		writeJSON(w, http.StatusOK, acts)
	})

	return &Server{
		http:   &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second},
		logger: logger,
	}
}

// Start serves until Shutdown. Intended for a goroutine.
func (s *Server) Start() error {
	s.logger.Info("status server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
