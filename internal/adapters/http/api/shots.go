// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// ShotsHandler handles shot history requests.
type ShotsHandler struct {
	deps Dependencies
}

// NewShotsHandler creates a new shots handler.
func NewShotsHandler(deps Dependencies) *ShotsHandler {
	return &ShotsHandler{deps: deps}
}

// HandleShots routes GET /shots (session history) and DELETE /shots
// (session reset).
func (h *ShotsHandler) HandleShots(w http.ResponseWriter, r *http.Request) {
	const op = "api.shots"
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodDelete:
		h.handleReset(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "bad_request", NewKind(op, ErrBadRequest))
	}
}

func (h *ShotsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_shots"
	shots, err := h.deps.Shots(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	if shots == nil {
		shots = []Shot{}
	}
	writeJSON(w, http.StatusOK, shots)
}

func (h *ShotsHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset_session"
	sessionID, err := h.deps.ResetSession(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, resetResponse{Status: "reset", SessionID: sessionID})
}
