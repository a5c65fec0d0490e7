package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/verdeck/verdeck/internal/model"
	"github.com/verdeck/verdeck/internal/server/middleware"
	"github.com/verdeck/verdeck/internal/service"
	"github.com/verdeck/verdeck/internal/store"
)

// VersionHandler serves the versions CRUD and activation surface.
type VersionHandler struct {
	store   *store.Store
	auditor *service.Auditor
}

// NewVersionHandler creates a VersionHandler.
func NewVersionHandler(st *store.Store, auditor *service.Auditor) *VersionHandler {
	return &VersionHandler{store: st, auditor: auditor}
}

type createVersionRequest struct {
	Name string     `json:"name" validate:"required,min=1,max=200"`
	Meta model.Meta `json:"meta"`
}

type versionIDRequest struct {
	ID int64 `json:"id" validate:"required"`
}

// List returns all versions, newest first.
// GET /versions
func (h *VersionHandler) List(w http.ResponseWriter, r *http.Request) {
	versions, err := h.store.ListVersions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list versions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"versions": versions})
}

// Create inserts a new, inactive version.
// POST /versions/create
func (h *VersionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createVersionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := service.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	version, err := h.store.CreateVersion(r.Context(), req.Name, req.Meta)
	if err != nil {
		if errors.Is(err, store.ErrEmptyName) {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create version")
		return
	}

	h.record(r, "create_version", model.Meta{"version_id": version.ID, "name": version.Name})
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "version": version})
}

// Delete removes a version by id. Deleting an absent id still succeeds.
// POST /versions/delete
func (h *VersionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req versionIDRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := service.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.DeleteVersion(r.Context(), req.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete version")
		return
	}

	h.record(r, "delete_version", model.Meta{"version_id": req.ID})
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// Activate atomically makes the given version the single active one.
// Activating an unknown id is a 404 and leaves the previously active
// version in place.
// POST /versions/activate
func (h *VersionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req versionIDRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := service.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	version, err := h.store.ActivateVersion(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "version not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to activate version")
		return
	}

	h.record(r, "activate_version", model.Meta{"version_id": version.ID, "name": version.Name})
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "version": version})
}

// Test runs a simulated check against a version. This is a stub for a
// future integration; it looks the version up and reports success
// without validating its content.
// GET /versions/test/{versionID}
func (h *VersionHandler) Test(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "versionID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid version id")
		return
	}

	version, err := h.store.GetVersion(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "version not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load version")
		return
	}

	h.record(r, "test_version", model.Meta{"version_id": version.ID, "name": version.Name})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"tested": version,
		"note":   "simulated test only; version content is not validated",
	})
}

// record audits a mutation on behalf of the session's principal.
func (h *VersionHandler) record(r *http.Request, action string, meta model.Meta) {
	principal := middleware.GetPrincipal(r.Context())
	var userID *int64
	if principal != nil {
		id := principal.UserID
		userID = &id
	}
	h.auditor.Record(r.Context(), userID, action, meta)
}
