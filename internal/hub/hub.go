package hub

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/teamline-app/teamline/internal/metrics"
	"github.com/teamline-app/teamline/internal/models"
	"github.com/teamline-app/teamline/internal/store"
)

// Store is the slice of the chat store the hub consumes: membership lookup
// for signal routing and the ordered message append for socket ingest.
type Store interface {
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
	AppendMessage(ctx context.Context, chatID, senderID, content string, attachments []string) (*models.Message, *models.Chat, error)
}

// ChatPush is the frame pushed to each recipient of a chat message.
type ChatPush struct {
	ChatID   string `json:"chat_id"`
	SenderID string `json:"sender_id"`
	Content  string `json:"content"`
}

// Hub is the delivery core: it owns the session registry and fans accepted
// chat messages and signal payloads out to every live endpoint of every
// recipient, never back to the originator.
type Hub struct {
	registry *Registry
	store    Store
	logger   zerolog.Logger
}

// New creates a Hub backed by the given store.
func New(st Store, logger zerolog.Logger) *Hub {
	return &Hub{
		registry: NewRegistry(),
		store:    st,
		logger:   logger,
	}
}

// Registry exposes the session registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// BroadcastMessage pushes a persisted chat message to every live endpoint of
// every participant except the sender. The chat argument is the participant
// snapshot returned by the append that produced the message; membership
// changes racing with the append are tolerated.
func (h *Hub) BroadcastMessage(chat *models.Chat, msg *models.Message) {
	frame, err := json.Marshal(ChatPush{
		ChatID:   msg.ChatID,
		SenderID: msg.SenderID,
		Content:  msg.Content,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("chat_id", msg.ChatID).Msg("marshal chat push")
		return
	}

	for _, participant := range chat.Participants {
		if participant == msg.SenderID {
			continue
		}
		h.push(participant, frame)
	}
}

// RelaySignal hands an opaque signal payload to every live endpoint of the
// chat's participants except the sender. The payload is relayed verbatim and
// never persisted. A signal whose chat id is empty, unknown, or does not
// include the sender among its participants is rejected.
func (h *Hub) RelaySignal(ctx context.Context, senderID, chatID string, payload []byte) error {
	if chatID == "" {
		metrics.SignalsRejected.WithLabelValues("no_chat").Inc()
		return store.ErrChatNotFound
	}

	chat, err := h.store.GetChat(ctx, chatID)
	if err != nil {
		metrics.SignalsRejected.WithLabelValues("no_chat").Inc()
		return err
	}
	if !chat.HasParticipant(senderID) {
		metrics.SignalsRejected.WithLabelValues("not_member").Inc()
		return store.ErrNotMember
	}

	for _, participant := range chat.Participants {
		if participant == senderID {
			continue
		}
		h.push(participant, payload)
	}
	metrics.SignalsRelayed.Inc()
	return nil
}

// NotifyUser pushes an opaque payload to every live endpoint of one user.
// Used by server-side features (calendar invites) that address a user
// directly rather than a chat.
func (h *Hub) NotifyUser(userID string, payload []byte) {
	h.push(userID, payload)
}

// push enqueues a frame to every live endpoint of one user. A full or closed
// endpoint drops the frame; delivery is at-most-once and never blocks the
// caller.
func (h *Hub) push(userID string, frame []byte) {
	for _, ep := range h.registry.Lookup(userID) {
		if ep.Enqueue(frame) {
			metrics.PushesDelivered.Inc()
		} else {
			metrics.PushesDropped.Inc()
		}
	}
}
