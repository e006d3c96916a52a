package teamline

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// Push is a frame delivered over the live socket. Exactly one of the two
// shapes is populated: chat pushes carry ChatID/SenderID/Content, signal
// frames carry SignalType plus relay-defined fields kept in Raw.
type Push struct {
	ChatID     string `json:"chat_id"`
	SenderID   string `json:"sender_id"`
	Content    string `json:"content"`
	SignalType string `json:"signalType"`
	Raw        []byte `json:"-"`
}

// IsSignal reports whether the frame is a relayed signal rather than a
// chat push.
func (p *Push) IsSignal() bool {
	return p.SignalType != ""
}

// Socket is a live connection to the delivery hub.
type Socket struct {
	conn *websocket.Conn
}

// Connect opens a websocket to the server, authenticating with the saved
// token.
func (c *Client) Connect() (*Socket, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": {c.Token}}.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}
	return &Socket{conn: conn}, nil
}

// Send posts a chat message over the socket. Delivery is fire-and-forget;
// the server does not acknowledge socket sends.
func (s *Socket) Send(chatID, content string) error {
	frame, _ := json.Marshal(map[string]string{"chat_id": chatID, "content": content})
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

// Signal relays an opaque signal to the other participants of a chat. The
// payload map must carry a signalType key and the chat_id of a chat the
// user belongs to.
func (s *Socket) Signal(payload map[string]interface{}) error {
	frame, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

// Next blocks until the server pushes the next frame.
func (s *Socket) Next() (*Push, error) {
	_, raw, err := s.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var p Push
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	p.Raw = raw
	return &p, nil
}

// Close closes the socket.
func (s *Socket) Close() error {
	return s.conn.Close()
}
