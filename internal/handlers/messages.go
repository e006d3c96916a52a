package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teamline-app/teamline/internal/api/middleware"
	"github.com/teamline-app/teamline/internal/metrics"
	"github.com/teamline-app/teamline/internal/models"
	"github.com/teamline-app/teamline/internal/store"
)

// SendMessageRequest represents the send message request body. The sender_id
// field is accepted for compatibility but must match the authenticated user.
type SendMessageRequest struct {
	SenderID    string   `json:"sender_id"`
	Content     string   `json:"content"`
	Attachments []string `json:"attachments,omitempty"`
}

// MessageListResponse represents the message history response.
type MessageListResponse struct {
	Messages []models.Message `json:"messages"`
}

// SendMessage handles posting a chat message over HTTP. The message is
// persisted first; fan-out to the chat's connected participants happens
// after the response is committed and its failures are not reported to the
// caller.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	chatID := chi.URLParam(r, "chatID")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// The authenticated identity is authoritative; a mismatched
	// body-declared sender is rejected rather than trusted.
	if req.SenderID != "" && req.SenderID != userID {
		h.Error(w, http.StatusUnauthorized, "sender_id does not match authenticated user")
		return
	}
	if req.Content == "" {
		h.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	msg, chat, err := h.store.AppendMessage(r.Context(), chatID, userID, req.Content, req.Attachments)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrChatNotFound):
			h.Error(w, http.StatusNotFound, "chat not found")
		case errors.Is(err, store.ErrNotMember):
			h.Error(w, http.StatusBadRequest, "sender is not a participant of this chat")
		default:
			h.logger.Error().Err(err).Str("chat_id", chatID).Msg("append message failed")
			h.Error(w, http.StatusInternalServerError, "failed to store message")
		}
		return
	}

	h.JSON(w, http.StatusOK, msg)
	metrics.MessagesSent.WithLabelValues("http").Inc()

	h.hub.BroadcastMessage(chat, msg)
}

// GetMessages handles fetching a chat's history in store order. Only
// participants may read it.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	chatID := chi.URLParam(r, "chatID")

	chat, err := h.store.GetChat(r.Context(), chatID)
	if err != nil {
		if errors.Is(err, store.ErrChatNotFound) {
			h.Error(w, http.StatusNotFound, "chat not found")
			return
		}
		h.logger.Error().Err(err).Str("chat_id", chatID).Msg("chat lookup failed")
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if !chat.HasParticipant(userID) {
		h.Error(w, http.StatusForbidden, "not a participant of this chat")
		return
	}

	messages, err := h.store.ListMessages(r.Context(), chatID)
	if err != nil {
		h.logger.Error().Err(err).Str("chat_id", chatID).Msg("list messages failed")
		h.Error(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}

	h.JSON(w, http.StatusOK, MessageListResponse{Messages: messages})
}
