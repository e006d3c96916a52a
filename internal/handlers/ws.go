package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/teamline-app/teamline/internal/api/middleware"
)

// NewUpgrader builds the websocket upgrader for the configured frontend
// origin. Requests without an Origin header (non-browser clients) are
// allowed; browser requests must come from the single permitted origin.
func NewUpgrader(allowedOrigin string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == allowedOrigin
		},
	}
}

// ServeWS handles the socket upgrade. Identity comes from a verified JWT,
// passed as a bearer header or a token query parameter, never from a plain
// userId parameter. The session does not inherit this request's
// cancellation; it lives until the transport closes.
func (h *Handler) ServeWS(upgrader *websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.TokenFromRequest(r)
		if token == "" {
			h.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := h.authn.ValidateToken(token)
		if err != nil {
			h.Error(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the error response.
			h.logger.Debug().Err(err).Msg("socket upgrade failed")
			return
		}

		h.hub.Attach(conn, claims.UserID)
	}
}
