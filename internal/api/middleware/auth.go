package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/teamline-app/teamline/internal/auth"
)

type contextKey string

const userContextKey contextKey = "user_id"

// AuthMiddleware handles bearer-token verification for authenticated
// endpoints.
type AuthMiddleware struct {
	authn *auth.Authenticator
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(authn *auth.Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authn: authn}
}

// RequireAuth verifies the JWT and stores the authenticated user id in the
// request context. The token in the Authorization header is authoritative;
// a body-declared identity never is.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			jsonError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := m.authn.ValidateToken(token)
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TokenFromRequest extracts a bearer token from the Authorization header or,
// failing that, from the token query parameter. The query parameter exists
// for websocket upgrades: browser WebSocket clients cannot set headers.
func TokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// UserIDFromContext retrieves the authenticated user id from the request
// context; empty when the request did not pass RequireAuth.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userContextKey).(string)
	return id
}

// WithUserID returns a context carrying an authenticated user id. Intended
// for tests that exercise handlers without the middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userContextKey, userID)
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
