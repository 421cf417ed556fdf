// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrklab/basket-counting/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SessionStats returns make/miss counts for the current session.
	SessionStats(ctx context.Context) (types.Stats, error)

	// Shots returns the session's classified shots in arrival order.
	Shots(ctx context.Context) ([]types.Shot, error)

	// ResetSession starts a new session and returns its id.
	ResetSession(ctx context.Context) (string, error)
}

// Shot mirrors the read shape returned by shot queries.
type Shot = types.Shot

// Stats mirrors the read shape returned by session statistics queries.
type Stats = types.Stats

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	shotsHandler  *ShotsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
		shotsHandler:  NewShotsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/shots", MetricsMiddleware(s.shotsHandler.HandleShots, "shots"))
}

type resetResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
