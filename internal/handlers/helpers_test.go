package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/teamline-app/teamline/internal/api/middleware"
	"github.com/teamline-app/teamline/internal/auth"
	"github.com/teamline-app/teamline/internal/hub"
	"github.com/teamline-app/teamline/internal/models"
	"github.com/teamline-app/teamline/internal/store"
)

// memStore is an in-memory DataStore for handler tests.
type memStore struct {
	mu       sync.Mutex
	seq      int
	chats    map[string]*models.Chat
	messages map[string][]models.Message
	users    map[string]*models.User
	events   []models.CalendarEvent
}

func newMemStore() *memStore {
	return &memStore{
		chats:    make(map[string]*models.Chat),
		messages: make(map[string][]models.Message),
		users:    make(map[string]*models.User),
	}
}

func (m *memStore) Close() {}

func (m *memStore) Ping(_ context.Context) error { return nil }

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) GetChat(_ context.Context, chatID string) (*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat, ok := m.chats[chatID]
	if !ok {
		return nil, store.ErrChatNotFound
	}
	cp := *chat
	return &cp, nil
}

func (m *memStore) CreateChat(_ context.Context, participants []string, groupName string) (*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{})
	unique := make([]string, 0, len(participants))
	for _, p := range participants {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}

	chat := &models.Chat{
		ID:           m.nextID("chat"),
		Participants: unique,
		IsGroup:      len(unique) > 2,
		GroupName:    groupName,
		CreatedAt:    time.Now().UTC(),
	}
	m.chats[chat.ID] = chat
	cp := *chat
	return &cp, nil
}

func (m *memStore) ListUserChats(_ context.Context, userID string) ([]models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Chat
	for _, chat := range m.chats {
		if chat.HasParticipant(userID) {
			out = append(out, *chat)
		}
	}
	return out, nil
}

func (m *memStore) DeleteChat(_ context.Context, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chats[chatID]; !ok {
		return store.ErrChatNotFound
	}
	delete(m.chats, chatID)
	delete(m.messages, chatID)
	return nil
}

func (m *memStore) AppendMessage(_ context.Context, chatID, senderID, content string, attachments []string) (*models.Message, *models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chat, ok := m.chats[chatID]
	if !ok {
		return nil, nil, store.ErrChatNotFound
	}
	if !chat.HasParticipant(senderID) {
		return nil, nil, store.ErrNotMember
	}

	msg := models.Message{
		ID:          m.nextID("msg"),
		ChatID:      chatID,
		SenderID:    senderID,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
		Type:        "text",
		Attachments: attachments,
	}
	m.messages[chatID] = append(m.messages[chatID], msg)
	if msg.CreatedAt.After(chat.LastMessageAt) {
		chat.LastMessageAt = msg.CreatedAt
	}

	cp := *chat
	return &msg, &cp, nil
}

func (m *memStore) ListMessages(_ context.Context, chatID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Message, len(m.messages[chatID]))
	copy(out, m.messages[chatID])
	return out, nil
}

func (m *memStore) CreateUser(_ context.Context, username, email, passwordHash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[username]; exists {
		return nil, store.ErrDuplicateUsername
	}
	user := &models.User{
		ID:           m.nextID("user"),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	m.users[username] = user
	cp := *user
	return &cp, nil
}

func (m *memStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[username]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *memStore) CreateEvent(_ context.Context, event *models.CalendarEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *event)
	return nil
}

func (m *memStore) ListUserEvents(_ context.Context, userID string) ([]models.CalendarEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CalendarEvent
	for _, ev := range m.events {
		if ev.UserID == userID {
			out = append(out, ev)
			continue
		}
		for _, p := range ev.Participants {
			if p == userID {
				out = append(out, ev)
				break
			}
		}
	}
	return out, nil
}

// recorderEndpoint captures hub pushes for assertions.
type recorderEndpoint struct {
	userID string
	mu     sync.Mutex
	frames [][]byte
}

func (e *recorderEndpoint) UserID() string { return e.userID }

func (e *recorderEndpoint) Enqueue(frame []byte) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frames = append(e.frames, frame)
	return true
}

func (e *recorderEndpoint) received() [][]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]byte, len(e.frames))
	copy(out, e.frames)
	return out
}

// testEnv wires a handler onto a router the way the server does, minus the
// outer middleware stack.
type testEnv struct {
	handler *Handler
	store   *memStore
	hub     *hub.Hub
	authn   *auth.Authenticator
	router  *chi.Mux
}

func newTestEnv() *testEnv {
	ms := newMemStore()
	logger := zerolog.Nop()
	deliveryHub := hub.New(ms, logger)
	authn := auth.NewAuthenticator("test-secret", "teamline", time.Hour)
	h := NewHandler(ms, nil, deliveryHub, authn, logger)

	r := chi.NewRouter()
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/login", h.Login)
	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(authn).RequireAuth)
		r.Post("/messages/{chatID}", h.SendMessage)
		r.Get("/messages/{chatID}", h.GetMessages)
		r.Post("/chats", h.CreateChat)
		r.Get("/chats", h.ListChats)
		r.Get("/chats/{chatID}", h.GetChat)
		r.Delete("/chats/{chatID}", h.DeleteChat)
		r.Post("/events", h.CreateEvent)
		r.Get("/events", h.ListEvents)
	})

	return &testEnv{handler: h, store: ms, hub: deliveryHub, authn: authn, router: r}
}

// tokenFor mints a valid token for a user id.
func (e *testEnv) tokenFor(userID string) string {
	token, err := e.authn.GenerateToken(userID, userID)
	if err != nil {
		panic(err)
	}
	return token
}

// seedChat inserts a chat with fixed participants.
func (e *testEnv) seedChat(participants ...string) *models.Chat {
	chat, err := e.store.CreateChat(context.Background(), participants, "")
	if err != nil {
		panic(err)
	}
	return chat
}

// authedRequest builds a request carrying a valid bearer token. The body is
// a JSON literal; pass "" for bodiless requests.
func (e *testEnv) authedRequest(method, target, userID, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, rd)
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Authorization", "Bearer "+e.tokenFor(userID))
	return r
}
