// Package teamline provides a client for the Teamline chat API.
package teamline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Client is a Teamline API client.
type Client struct {
	BaseURL    string
	ConfigDir  string
	UserID     string
	Token      string
	HTTPClient *http.Client
}

// Session holds a saved login session.
type Session struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// NewClient creates a new Teamline client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	configDir := os.Getenv("TEAMLINE_CONFIG")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".teamline")
	}

	c := &Client{
		BaseURL:    baseURL,
		ConfigDir:  configDir,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}

	_ = c.LoadSession()
	return c
}

// LoadSession loads a saved login session from disk.
func (c *Client) LoadSession() error {
	data, err := os.ReadFile(filepath.Join(c.ConfigDir, "session.json"))
	if err != nil {
		return err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	c.UserID = s.UserID
	c.Token = s.Token
	return nil
}

// SaveSession saves the current login session to disk.
func (c *Client) SaveSession() error {
	if err := os.MkdirAll(c.ConfigDir, 0700); err != nil {
		return err
	}

	data, _ := json.MarshalIndent(Session{UserID: c.UserID, Token: c.Token}, "", "  ")
	return os.WriteFile(filepath.Join(c.ConfigDir, "session.json"), data, 0600)
}

// doRequest performs an HTTP request.
func (c *Client) doRequest(method, path string, body []byte, authed bool) ([]byte, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if authed {
		if c.Token == "" {
			return nil, fmt.Errorf("not logged in; run login first")
		}
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return nil, fmt.Errorf("teamline error %d: %s", resp.StatusCode, errResp.Error)
	}

	return respBody, nil
}

// SignupRequest is the request body for account registration.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupResponse is the response from account registration.
type SignupResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Signup registers a new account.
func (c *Client) Signup(username, email, password string) (*SignupResponse, error) {
	body, _ := json.Marshal(SignupRequest{Username: username, Email: email, Password: password})
	respBody, err := c.doRequest("POST", "/auth/signup", body, false)
	if err != nil {
		return nil, err
	}

	var resp SignupResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LoginResponse is the response from logging in.
type LoginResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	ExpiresIn int    `json:"expires_in"`
}

// Login exchanges credentials for a token and saves the session.
func (c *Client) Login(username, password string) (*LoginResponse, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	respBody, err := c.doRequest("POST", "/auth/login", body, false)
	if err != nil {
		return nil, err
	}

	var resp LoginResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}

	c.UserID = resp.UserID
	c.Token = resp.Token
	if err := c.SaveSession(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Chat represents a 1:1 or group conversation.
type Chat struct {
	ID            string    `json:"id_chat"`
	Participants  []string  `json:"participants"`
	IsGroup       bool      `json:"is_group"`
	GroupName     string    `json:"group_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// ChatListResponse is the response from listing chats.
type ChatListResponse struct {
	Chats []Chat `json:"chats"`
}

// CreateChat creates a chat with the given participants. The authenticated
// user is added server-side.
func (c *Client) CreateChat(participants []string, groupName string) (*Chat, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"participants": participants,
		"group_name":   groupName,
	})
	respBody, err := c.doRequest("POST", "/chats", body, true)
	if err != nil {
		return nil, err
	}

	var resp Chat
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListChats lists the user's chats, most recently active first.
func (c *Client) ListChats() (*ChatListResponse, error) {
	respBody, err := c.doRequest("GET", "/chats", nil, true)
	if err != nil {
		return nil, err
	}

	var resp ChatListResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteChat deletes a chat and its history.
func (c *Client) DeleteChat(chatID string) error {
	_, err := c.doRequest("DELETE", "/chats/"+chatID, nil, true)
	return err
}

// Message represents a chat message.
type Message struct {
	ID          string    `json:"id"`
	ChatID      string    `json:"id_chat"`
	SenderID    string    `json:"sender_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	Type        string    `json:"type"`
	Attachments []string  `json:"attachments,omitempty"`
}

// MessageListResponse is the response from fetching chat history.
type MessageListResponse struct {
	Messages []Message `json:"messages"`
}

// SendMessage posts a message to a chat.
func (c *Client) SendMessage(chatID, content string) (*Message, error) {
	body, _ := json.Marshal(map[string]string{"content": content})
	respBody, err := c.doRequest("POST", "/messages/"+chatID, body, true)
	if err != nil {
		return nil, err
	}

	var resp Message
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMessages retrieves a chat's history, oldest first.
func (c *Client) GetMessages(chatID string) (*MessageListResponse, error) {
	respBody, err := c.doRequest("GET", "/messages/"+chatID, nil, true)
	if err != nil {
		return nil, err
	}

	var resp MessageListResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HealthResponse is the response from the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Sessions  int                    `json:"sessions"`
	Checks    map[string]interface{} `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// Health checks server health.
func (c *Client) Health() (*HealthResponse, error) {
	respBody, err := c.doRequest("GET", "/health", nil, false)
	if err != nil {
		return nil, err
	}

	var resp HealthResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
