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

// CreateChatRequest represents the create chat request body.
type CreateChatRequest struct {
	Participants []string `json:"participants"`
	GroupName    string   `json:"group_name,omitempty"`
}

// ChatListResponse represents the chat list response.
type ChatListResponse struct {
	Chats []models.Chat `json:"chats"`
}

// CreateChat handles creating a 1:1 or group chat. The authenticated user is
// always part of the participant set.
func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	for _, p := range req.Participants {
		if p == "" {
			h.Error(w, http.StatusBadRequest, "participant ids must not be empty")
			return
		}
	}

	participants := append([]string{userID}, req.Participants...)
	chat, err := h.store.CreateChat(r.Context(), participants, req.GroupName)
	if err != nil {
		h.logger.Error().Err(err).Msg("create chat failed")
		h.Error(w, http.StatusInternalServerError, "failed to create chat")
		return
	}

	metrics.ChatsCreated.Inc()
	h.JSON(w, http.StatusCreated, chat)
}

// ListChats handles listing the authenticated user's chats, most recently
// active first.
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	chats, err := h.store.ListUserChats(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("list chats failed")
		h.Error(w, http.StatusInternalServerError, "failed to fetch chats")
		return
	}

	h.JSON(w, http.StatusOK, ChatListResponse{Chats: chats})
}

// GetChat handles fetching a single chat. Only participants may read it.
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
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

	h.JSON(w, http.StatusOK, chat)
}

// DeleteChat handles deleting a chat and purging its messages. Only
// participants may delete it.
func (h *Handler) DeleteChat(w http.ResponseWriter, r *http.Request) {
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

	if err := h.store.DeleteChat(r.Context(), chatID); err != nil {
		h.logger.Error().Err(err).Str("chat_id", chatID).Msg("delete chat failed")
		h.Error(w, http.StatusInternalServerError, "failed to delete chat")
		return
	}

	h.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
