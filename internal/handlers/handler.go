package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/teamline-app/teamline/internal/auth"
	"github.com/teamline-app/teamline/internal/hub"
	"github.com/teamline-app/teamline/internal/store"
)

// emailRegex validates email addresses per RFC 5322 (simplified).
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store  store.DataStore
	redis  *store.RedisStore
	hub    *hub.Hub
	authn  *auth.Authenticator
	logger zerolog.Logger
}

// NewHandler creates a new Handler with the given dependencies. The redis
// store may be nil when rate limiting is disabled.
func NewHandler(st store.DataStore, redis *store.RedisStore, h *hub.Hub, authn *auth.Authenticator, logger zerolog.Logger) *Handler {
	return &Handler{store: st, redis: redis, hub: h, authn: authn, logger: logger}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// isValidEmail validates email addresses using RFC 5322 pattern.
func isValidEmail(email string) bool {
	if email == "" {
		return true // Empty is valid (optional field)
	}
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}
