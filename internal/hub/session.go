package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/teamline-app/teamline/internal/metrics"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second
	// Send pings with this period; must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum inbound frame size.
	maxFrameSize = 8 * 1024
	// Outbound queue depth per endpoint.
	sendQueueSize = 256
	// Budget for store calls made on behalf of one inbound frame.
	ingestTimeout = 10 * time.Second
)

// Session is one live websocket connection for one authenticated user. The
// read pump processes inbound frames one at a time in receive order; the
// write pump is the only goroutine that writes to the transport, serializing
// pushes enqueued by the dispatcher.
type Session struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger zerolog.Logger
}

// Attach registers a new session for an upgraded connection and starts its
// read and write pumps. The session deregisters itself when the transport
// closes or errors.
func (h *Hub) Attach(conn *websocket.Conn, userID string) *Session {
	s := &Session{
		hub:    h,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		logger: h.logger.With().Str("user_id", userID).Logger(),
	}

	h.registry.Register(s)
	metrics.SessionsActive.Inc()
	s.logger.Info().Msg("socket session opened")

	go s.writePump()
	go s.readPump()
	return s
}

// UserID returns the owning user's id.
func (s *Session) UserID() string {
	return s.userID
}

// Enqueue offers a frame to the outbound queue without blocking. A full
// queue means the peer cannot keep up; the session starts closing and the
// frame is dropped.
func (s *Session) Enqueue(frame []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.send <- frame:
		return true
	default:
		s.close()
		return false
	}
}

// close transitions the session to its closing state exactly once.
func (s *Session) close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// readPump consumes inbound frames until the transport closes or errors,
// then deregisters exactly this endpoint.
func (s *Session) readPump() {
	defer func() {
		s.hub.registry.Deregister(s)
		metrics.SessionsActive.Dec()
		s.close()
		s.logger.Info().Msg("socket session closed")
	}()

	s.conn.SetReadLimit(maxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug().Err(err).Msg("socket read error")
			}
			return
		}
		s.handleFrame(raw)
	}
}

// writePump serializes outbound frames onto the transport and keeps the
// connection alive with pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case frame := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// frameKind classifies one inbound frame.
type frameKind int

const (
	frameIgnored frameKind = iota
	frameChat
	frameSignal
)

// inboundFrame is the superset of fields a client may send.
type inboundFrame struct {
	ChatID     string          `json:"chat_id"`
	Content    string          `json:"content"`
	SignalType json.RawMessage `json:"signalType"`
}

// classifyFrame decides what an inbound frame is. A frame with any
// signalType key is a signal even when it also carries content; a frame with
// chat_id and content is a message send; everything else is ignored.
func classifyFrame(raw []byte) (frameKind, inboundFrame) {
	var f inboundFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		return frameIgnored, f
	}
	if f.SignalType != nil {
		return frameSignal, f
	}
	if f.ChatID != "" && f.Content != "" {
		return frameChat, f
	}
	return frameIgnored, f
}

// handleFrame processes one inbound frame. All rejections are silent from
// the peer's point of view: parse errors, membership failures and store
// errors drop the frame and leave the session live.
func (s *Session) handleFrame(raw []byte) {
	kind, f := classifyFrame(raw)

	switch kind {
	case frameSignal:
		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()
		if err := s.hub.RelaySignal(ctx, s.userID, f.ChatID, raw); err != nil {
			s.logger.Debug().Err(err).Str("chat_id", f.ChatID).Msg("signal dropped")
		}

	case frameChat:
		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()
		msg, chat, err := s.hub.store.AppendMessage(ctx, f.ChatID, s.userID, f.Content, nil)
		if err != nil {
			s.logger.Debug().Err(err).Str("chat_id", f.ChatID).Msg("chat frame dropped")
			return
		}
		metrics.MessagesSent.WithLabelValues("socket").Inc()
		s.hub.BroadcastMessage(chat, msg)

	default:
		s.logger.Debug().Msg("unrecognized frame ignored")
	}
}
