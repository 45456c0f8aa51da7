package httpapi

import (
	"net/http"
	"strings"

	"github.com/kickoff-app/kickoff-core/internal/domain"
)

// SessionVerifier checks a session token and returns its subject.
type SessionVerifier interface {
	Verify(token string) (string, error)
}

// NewSessionMiddleware enforces Authorization: Bearer <session token>.
//
// On success, it stores the session's user ID in request context.
func NewSessionMiddleware(v SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing Authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(authz, prefix) {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "malformed Authorization header")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))
			if raw == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}

			sub, err := v.Verify(raw)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), domain.UserID(sub))))
		})
	}
}

// NewDevSessionMiddleware is a local/dev-only auth shim.
//
// It accepts an explicit user via X-Debug-User and stores it in request context.
// If the header is absent, it falls back to defaultUser (if provided).
func NewDevSessionMiddleware(defaultUser string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := strings.TrimSpace(r.Header.Get("X-Debug-User"))
			if user == "" {
				user = strings.TrimSpace(defaultUser)
			}
			if user == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing user (set X-Debug-User)")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), domain.UserID(user))))
		})
	}
}
