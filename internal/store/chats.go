package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamline-app/teamline/internal/metrics"
	"github.com/teamline-app/teamline/internal/models"
)

// GetChat loads a chat document by id.
func (s *MongoStore) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	start := time.Now()
	defer func() { metrics.MongoLatency.Observe(time.Since(start).Seconds()) }()

	var chat models.Chat
	err := s.chats().FindOne(ctx, bson.M{"_id": chatID}).Decode(&chat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return &chat, nil
}

// CreateChat creates a chat for the given participants. Duplicate and empty
// participant ids are dropped; the group flag is derived from the resulting
// set size.
func (s *MongoStore) CreateChat(ctx context.Context, participants []string, groupName string) (*models.Chat, error) {
	seen := make(map[string]struct{}, len(participants))
	members := make([]string, 0, len(participants))
	for _, id := range participants {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}
	if len(members) == 0 {
		return nil, errors.New("participants must not be empty")
	}

	now := time.Now().UTC()
	chat := &models.Chat{
		ID:            uuid.NewString(),
		Participants:  members,
		IsGroup:       len(members) > 2,
		GroupName:     groupName,
		CreatedAt:     now,
		LastMessageAt: now,
	}

	if _, err := s.chats().InsertOne(ctx, chat); err != nil {
		return nil, fmt.Errorf("insert chat: %w", err)
	}
	return chat, nil
}

// ListUserChats returns every chat the user participates in, most recently
// active first.
func (s *MongoStore) ListUserChats(ctx context.Context, userID string) ([]models.Chat, error) {
	cursor, err := s.chats().Find(ctx, bson.M{"participants": userID},
		options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find chats: %w", err)
	}

	chats := []models.Chat{}
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("decode chats: %w", err)
	}
	return chats, nil
}

// DeleteChat removes a chat and purges its messages.
func (s *MongoStore) DeleteChat(ctx context.Context, chatID string) error {
	res, err := s.chats().DeleteOne(ctx, bson.M{"_id": chatID})
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrChatNotFound
	}

	if _, err := s.messages().DeleteMany(ctx, bson.M{"id_chat": chatID}); err != nil {
		return fmt.Errorf("purge messages: %w", err)
	}
	return nil
}

// AppendMessage verifies the sender's membership, inserts the message with a
// newly minted ULID id and a server timestamp, and bumps the chat's
// last_message_at. It returns the stored message together with the chat
// snapshot whose participant list the caller should fan out to. If the
// membership check fails, nothing is written.
func (s *MongoStore) AppendMessage(ctx context.Context, chatID, senderID, content string, attachments []string) (*models.Message, *models.Chat, error) {
	start := time.Now()
	defer func() { metrics.MongoLatency.Observe(time.Since(start).Seconds()) }()

	chat, err := s.GetChat(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, nil, ErrNotMember
	}

	now := time.Now().UTC()
	msg := &models.Message{
		ID:          ulid.Make().String(),
		ChatID:      chatID,
		SenderID:    senderID,
		Content:     content,
		CreatedAt:   now,
		Type:        "text",
		Attachments: attachments,
	}

	if _, err := s.messages().InsertOne(ctx, msg); err != nil {
		return nil, nil, fmt.Errorf("insert message: %w", err)
	}

	// $max keeps last_message_at monotonic under concurrent appends.
	_, err = s.chats().UpdateOne(ctx, bson.M{"_id": chatID},
		bson.M{"$max": bson.M{"last_message_at": now}})
	if err != nil {
		return nil, nil, fmt.Errorf("update chat activity: %w", err)
	}

	if now.After(chat.LastMessageAt) {
		chat.LastMessageAt = now
	}
	return msg, chat, nil
}

// ListMessages returns a chat's history in store order: ascending creation
// time, ULID id as the tiebreak.
func (s *MongoStore) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	start := time.Now()
	defer func() { metrics.MongoLatency.Observe(time.Since(start).Seconds()) }()

	cursor, err := s.messages().Find(ctx, bson.M{"id_chat": chatID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return messages, nil
}
