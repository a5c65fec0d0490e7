package handler

import (
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/verdeck/verdeck/internal/model"
	"github.com/verdeck/verdeck/internal/server/middleware"
	"github.com/verdeck/verdeck/internal/service"
	"github.com/verdeck/verdeck/internal/store"
)

// AuthHandler serves login and logout.
type AuthHandler struct {
	store    *store.Store
	sessions *scs.SessionManager
	auditor  *service.Auditor
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(st *store.Store, sessions *scs.SessionManager, auditor *service.Auditor) *AuthHandler {
	return &AuthHandler{store: st, sessions: sessions, auditor: auditor}
}

type loginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80"`
	Password string `json:"password" validate:"required,min=8"`
}

type sessionUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Login authenticates an admin and establishes a server-side session.
// The 401 message is deliberately identical for unknown usernames and
// wrong passwords.
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := service.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	admin, err := h.store.GetAdminByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.auditor.Record(r.Context(), nil, "failed_login", model.Meta{"username": req.Username})
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "authentication error")
		return
	}

	if !service.VerifyPassword(req.Password, admin.PasswordHash) {
		h.auditor.Record(r.Context(), nil, "failed_login", model.Meta{"username": req.Username})
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	// Rotate the token so a pre-login cookie can't be fixated.
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "session error")
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionUserIDKey, admin.ID)
	h.sessions.Put(r.Context(), middleware.SessionUsernameKey, admin.Username)

	h.auditor.Record(r.Context(), &admin.ID, "login_success", model.Meta{"username": admin.Username})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"user": sessionUser{ID: admin.ID, Username: admin.Username},
	})
}

// Logout destroys the current session.
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	userID := principal.UserID
	h.auditor.Record(r.Context(), &userID, "logout", model.Meta{"username": principal.Username})

	if err := h.sessions.Destroy(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "session error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}
