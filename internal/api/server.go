// Package api provides the HTTP API over careers.
// GET endpoints read career state; POST endpoints apply one action each and
// auto-save. Deleting a career requires the admin bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hayaneofficial/soccer-career-sim/internal/engine"
	"github.com/hayaneofficial/soccer-career-sim/internal/intake"
	"github.com/hayaneofficial/soccer-career-sim/internal/persistence"
	"github.com/hayaneofficial/soccer-career-sim/internal/roster"
	"github.com/hayaneofficial/soccer-career-sim/internal/session"
)

const maxBody = 1 << 20

// Server serves careers over HTTP.
type Server struct {
	Sessions   *session.Manager
	Metrics    *Metrics
	Port       int
	AdminKey   string // Bearer token for DELETE. Empty = deletion disabled.
	RateLimit  int    // requests per RateWindow on endpoints that may call the generator
	RateWindow time.Duration
}

// Handler builds the routed handler with CORS and metrics middleware.
func (s *Server) Handler() http.Handler {
	rate, window := s.RateLimit, s.RateWindow
	if rate <= 0 {
		rate = 30
	}
	if window <= 0 {
		window = time.Minute
	}
	limiter := NewRateLimiter(rate, window)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/careers", s.handleCareers)
	mux.HandleFunc("POST /api/v1/careers", RateLimitMiddleware(limiter, s.handleCreateCareer))

	mux.HandleFunc("GET /api/v1/career/{id}", s.handleCareer)
	mux.HandleFunc("DELETE /api/v1/career/{id}", s.adminOnly(s.handleDeleteCareer))
	mux.HandleFunc("GET /api/v1/career/{id}/roster", s.handleRoster)
	mux.HandleFunc("GET /api/v1/career/{id}/events", s.handleEvents)
	mux.HandleFunc("POST /api/v1/career/{id}/activity", RateLimitMiddleware(limiter, s.handleAction(false)))
	mux.HandleFunc("POST /api/v1/career/{id}/match", RateLimitMiddleware(limiter, s.handleAction(true)))
	mux.HandleFunc("POST /api/v1/career/{id}/aptitude", s.handleAptitude)

	mux.Handle("GET /metrics", s.Metrics.Handler())

	return corsMiddleware(s.Metrics.Middleware(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("HTTP API shutting down")
	return srv.Shutdown(shutdownCtx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no CAREERSIM_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"name":         "soccer-career-sim",
		"careers_live": s.Sessions.Active(),
		"categories":   roster.Categories,
		"formations":   roster.FormationNames(),
	})
}

func (s *Server) handleCareers(w http.ResponseWriter, r *http.Request) {
	list, err := s.Sessions.List()
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []persistence.CareerSummary{}
	}
	writeJSON(w, list)
}

// createRequest accepts seed rosters in any shape DecodeSeeds understands.
type createRequest struct {
	session.CreateRequest
	Seeds  json.RawMessage `json:"seeds,omitempty"`
	Edited json.RawMessage `json:"edited,omitempty"`
}

func (s *Server) handleCreateCareer(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	cr := req.CreateRequest
	var err error
	if cr.Seeds, err = decodeSeeds(req.Seeds); err != nil {
		http.Error(w, "invalid seeds: "+err.Error(), http.StatusBadRequest)
		return
	}
	if cr.Edited, err = decodeSeeds(req.Edited); err != nil {
		http.Error(w, "invalid edited roster: "+err.Error(), http.StatusBadRequest)
		return
	}
	if cr.Category == "" {
		cr.Category = string(roster.HighSchool)
	}

	view, err := s.Sessions.Create(r.Context(), cr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.Metrics.ObserveAction("create", 0)
	w.Header().Set("Location", "/api/v1/career/"+view.ID)
	writeJSONStatus(w, http.StatusCreated, view)
}

func decodeSeeds(raw json.RawMessage) ([]roster.Seed, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return intake.DecodeSeeds(raw)
}

func (s *Server) handleCareer(w http.ResponseWriter, r *http.Request) {
	view, err := s.Sessions.View(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, view)
}

func (s *Server) handleDeleteCareer(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	view, err := s.Sessions.Roster(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, view)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, 200)
	}
	events, err := s.Sessions.Events(r.PathValue("id"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []engine.Event{}
	}
	writeJSON(w, events)
}

// actionRequest carries either a free-text plan for the generator or a
// ready activity record.
type actionRequest struct {
	Action   string          `json:"action"`
	Activity json.RawMessage `json:"activity,omitempty"`
}

func (s *Server) handleAction(match bool) http.HandlerFunc {
	kind := "activity"
	if match {
		kind = "match"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req actionRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		var raw []byte
		if len(req.Activity) > 0 && string(req.Activity) != "null" {
			raw = req.Activity
		}

		out, err := s.Sessions.Act(r.Context(), r.PathValue("id"), req.Action, raw, match)
		if err != nil {
			writeError(w, err)
			return
		}
		s.Metrics.ObserveAction(kind, out.Growth.Gained)
		writeJSON(w, out)
	}
}

type aptitudeRequest struct {
	Position string  `json:"position"`
	Points   float64 `json:"points"`
}

func (s *Server) handleAptitude(w http.ResponseWriter, r *http.Request) {
	var req aptitudeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	used, err := s.Sessions.SpendPAP(id, req.Position, req.Points)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := s.Sessions.View(id)
	if err != nil {
		writeError(w, err)
		return
	}
	s.Metrics.ObserveAction("aptitude", 0)
	writeJSON(w, map[string]any{
		"used":          used,
		"pap_remaining": view.Player.PAPRemaining,
		"aptitude":      view.Player.Aptitude,
	})
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		http.Error(w, "career not found", http.StatusNotFound)
	case errors.Is(err, engine.ErrMatchUnavailable):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, engine.ErrUnknownPosition), errors.Is(err, session.ErrBadActivity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
