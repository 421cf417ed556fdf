// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// StatsHandler handles session statistics requests.
type StatsHandler struct {
	deps Dependencies
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps Dependencies) *StatsHandler {
	return &StatsHandler{deps: deps}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_stats"
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	stats, err := h.deps.SessionStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
