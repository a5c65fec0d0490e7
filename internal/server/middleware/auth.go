package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
)

type contextKeyAuth string

// AuthPrincipalKey is the context key for the authenticated principal.
const AuthPrincipalKey contextKeyAuth = "auth_principal"

// Session data keys written on login and read by RequireAuth.
const (
	SessionUserIDKey   = "user_id"
	SessionUsernameKey = "username"
)

// Principal is the authenticated identity bound to the request's session.
type Principal struct {
	UserID   int64
	Username string
}

// RequireAuth rejects requests whose session carries no authenticated
// user. It must run inside the session manager's LoadAndSave wrapper and
// after the rate limiter, so unauthenticated requests never reach
// business logic or the audit log. On success a Principal is attached to
// the request context.
func RequireAuth(sessions *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sessions.GetInt64(r.Context(), SessionUserIDKey)
			if userID == 0 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}

			principal := &Principal{
				UserID:   userID,
				Username: sessions.GetString(r.Context(), SessionUsernameKey),
			}
			ctx := context.WithValue(r.Context(), AuthPrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal extracts the authenticated principal from the context.
// Returns nil for unauthenticated requests.
func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(AuthPrincipalKey).(*Principal); ok {
		return p
	}
	return nil
}
