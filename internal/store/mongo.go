package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore handles MongoDB database operations.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to MongoDB and selects the given database.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}

// Ping checks the database connection.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the indexes the hot paths rely on. Safe to call on
// every boot; Mongo treats existing indexes as a no-op.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.messages().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "id_chat", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("messages index: %w", err)
	}

	_, err = s.chats().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "participants", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("chats index: %w", err)
	}

	_, err = s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	_, err = s.events().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "participants", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("events index: %w", err)
	}

	return nil
}

func (s *MongoStore) chats() *mongo.Collection    { return s.db.Collection("chats") }
func (s *MongoStore) messages() *mongo.Collection { return s.db.Collection("messages") }
func (s *MongoStore) users() *mongo.Collection    { return s.db.Collection("users") }
func (s *MongoStore) events() *mongo.Collection   { return s.db.Collection("calendar_events") }
