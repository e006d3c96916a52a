package store

import (
	"context"
	"errors"

	"github.com/teamline-app/teamline/internal/models"
)

var (
	// ErrChatNotFound is returned when a chat id resolves to no document.
	ErrChatNotFound = errors.New("chat not found")
	// ErrNotMember is returned when the sender is not in the chat's
	// participant set. Nothing is written in that case.
	ErrNotMember = errors.New("user is not a participant of this chat")
	// ErrUserNotFound is returned when a username resolves to no account.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
)

// DataStore defines the interface for persistent storage of users, chats,
// messages and calendar events. MongoStore implements this interface; tests
// substitute in-memory fakes.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Chat operations
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
	CreateChat(ctx context.Context, participants []string, groupName string) (*models.Chat, error)
	ListUserChats(ctx context.Context, userID string) ([]models.Chat, error)
	DeleteChat(ctx context.Context, chatID string) error

	// Message operations
	AppendMessage(ctx context.Context, chatID, senderID, content string, attachments []string) (*models.Message, *models.Chat, error)
	ListMessages(ctx context.Context, chatID string) ([]models.Message, error)

	// User operations
	CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// Calendar operations
	CreateEvent(ctx context.Context, event *models.CalendarEvent) error
	ListUserEvents(ctx context.Context, userID string) ([]models.CalendarEvent, error)
}
