package models

import "time"

// CalendarEvent represents a shared calendar entry stored in the
// calendar_events collection. Creating one pushes an invite signal to every
// participant's live sockets.
type CalendarEvent struct {
	ID           string    `bson:"_id" json:"event_id"`
	UserID       string    `bson:"user_id" json:"user_id"`
	Title        string    `bson:"title" json:"title"`
	Start        time.Time `bson:"start" json:"start"`
	End          time.Time `bson:"end" json:"end"`
	Participants []string  `bson:"participants" json:"participants"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
