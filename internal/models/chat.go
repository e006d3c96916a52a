package models

import "time"

// Chat represents a 1:1 or group conversation stored in the chats collection.
type Chat struct {
	ID            string    `bson:"_id" json:"id_chat"`
	Participants  []string  `bson:"participants" json:"participants"`
	IsGroup       bool      `bson:"is_group" json:"is_group"`
	GroupName     string    `bson:"group_name,omitempty" json:"group_name,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	LastMessageAt time.Time `bson:"last_message_at" json:"last_message_at"`
}

// HasParticipant reports whether userID is in the chat's participant set.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
