package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamline-app/teamline/internal/models"
)

// CreateEvent persists a calendar event.
func (s *MongoStore) CreateEvent(ctx context.Context, event *models.CalendarEvent) error {
	if _, err := s.events().InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListUserEvents returns events the user created or is invited to, earliest
// start first.
func (s *MongoStore) ListUserEvents(ctx context.Context, userID string) ([]models.CalendarEvent, error) {
	filter := bson.M{"$or": []bson.M{
		{"user_id": userID},
		{"participants": userID},
	}}

	cursor, err := s.events().Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}

	events := []models.CalendarEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}
