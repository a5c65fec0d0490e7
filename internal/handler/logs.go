package handler

import (
	"net/http"

	"github.com/verdeck/verdeck/internal/store"
)

// recentLogLimit caps how many audit rows the API hands out per request.
const recentLogLimit = 200

// LogHandler serves the audit log listing.
type LogHandler struct {
	store *store.Store
}

// NewLogHandler creates a LogHandler.
func NewLogHandler(st *store.Store) *LogHandler {
	return &LogHandler{store: st}
}

// List returns the most recent audit entries, newest first.
// GET /logs
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.store.RecentLogs(r.Context(), recentLogLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list logs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
}
