package handler

import (
	"net/http"

	"github.com/verdeck/verdeck/internal/store"
)

// SystemHandler serves the unauthenticated health and readiness probes.
type SystemHandler struct {
	store *store.Store
}

// NewSystemHandler creates a SystemHandler.
func NewSystemHandler(st *store.Store) *SystemHandler {
	return &SystemHandler{store: st}
}

// Health is a liveness probe. Returns 200 if the process is running.
// GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// Ready is a readiness probe. Returns 200 when the store is reachable,
// 503 otherwise.
// GET /readyz
func (h *SystemHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}
