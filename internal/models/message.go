package models

import "time"

// Message represents a chat message stored in the messages collection.
// IDs are ULIDs, so the lexicographic order of ids within a chat matches
// the order in which the store minted them.
type Message struct {
	ID          string    `bson:"_id" json:"id"`
	ChatID      string    `bson:"id_chat" json:"id_chat"`
	SenderID    string    `bson:"sender_id" json:"sender_id"`
	Content     string    `bson:"content" json:"content"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	Type        string    `bson:"type" json:"type"`
	Attachments []string  `bson:"attachments,omitempty" json:"attachments,omitempty"`
}
