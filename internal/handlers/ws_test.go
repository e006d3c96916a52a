package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teamline-app/teamline/internal/hub"
)

// wsTestServer exposes the socket endpoint the way the router wires it.
func wsTestServer(t *testing.T, env *testEnv) *httptest.Server {
	t.Helper()
	upgrader := NewUpgrader("http://localhost:3000")
	mux := http.NewServeMux()
	mux.Handle("/ws", env.handler.ServeWS(&upgrader))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return raw
}

func waitForSessions(t *testing.T, env *testEnv, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for env.hub.Registry().NumEndpoints() != n {
		if time.Now().After(deadline) {
			t.Fatalf("registry never reached %d sessions (have %d)",
				n, env.hub.Registry().NumEndpoints())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServeWSRejectsMissingToken(t *testing.T) {
	env := newTestEnv()
	srv := wsTestServer(t, env)

	resp, err := http.Get(srv.URL + "/ws")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestServeWSRejectsInvalidToken(t *testing.T) {
	env := newTestEnv()
	srv := wsTestServer(t, env)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake to fail with an invalid token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %v", resp)
	}
}

func TestServeWSAcceptsBearerHeader(t *testing.T) {
	env := newTestEnv()
	srv := wsTestServer(t, env)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	header := http.Header{"Authorization": {"Bearer " + env.tokenFor("alice")}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial with bearer header failed: %v", err)
	}
	defer conn.Close()
	waitForSessions(t, env, 1)
}

func TestSocketSendDeliveredToOtherParticipant(t *testing.T) {
	env := newTestEnv()
	chat := env.seedChat("alice", "bob")
	srv := wsTestServer(t, env)

	aliceConn := dialWS(t, srv, env.tokenFor("alice"))
	bobConn := dialWS(t, srv, env.tokenFor("bob"))
	waitForSessions(t, env, 2)

	frame, _ := json.Marshal(map[string]string{"chat_id": chat.ID, "content": "over the wire"})
	if err := aliceConn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var push hub.ChatPush
	if err := json.Unmarshal(readWS(t, bobConn), &push); err != nil {
		t.Fatalf("push is not valid JSON: %v", err)
	}
	if push.ChatID != chat.ID || push.SenderID != "alice" || push.Content != "over the wire" {
		t.Fatalf("unexpected push: %+v", push)
	}

	// Socket sends are persisted like HTTP sends.
	stored, _ := env.store.ListMessages(context.Background(), chat.ID)
	if len(stored) != 1 || stored[0].Content != "over the wire" {
		t.Fatalf("socket send not persisted: %v", stored)
	}

	// No echo to the sender.
	_ = aliceConn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, raw, err := aliceConn.ReadMessage(); err == nil {
		t.Fatalf("sender received echo frame: %s", raw)
	}
}

func TestSocketSignalNotPersisted(t *testing.T) {
	env := newTestEnv()
	chat := env.seedChat("alice", "bob")
	srv := wsTestServer(t, env)

	aliceConn := dialWS(t, srv, env.tokenFor("alice"))
	bobConn := dialWS(t, srv, env.tokenFor("bob"))
	waitForSessions(t, env, 2)

	payload := `{"signalType":"typing","chat_id":"` + chat.ID + `"}`
	if err := aliceConn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if got := string(readWS(t, bobConn)); got != payload {
		t.Fatalf("signal altered in transit: %s", got)
	}

	stored, _ := env.store.ListMessages(context.Background(), chat.ID)
	if len(stored) != 0 {
		t.Fatalf("signal was persisted: %v", stored)
	}
}

func TestSocketCrossChatIsolation(t *testing.T) {
	env := newTestEnv()
	chat := env.seedChat("alice", "bob")
	env.seedChat("carol", "dave")
	srv := wsTestServer(t, env)

	aliceConn := dialWS(t, srv, env.tokenFor("alice"))
	carolConn := dialWS(t, srv, env.tokenFor("carol"))
	waitForSessions(t, env, 2)

	frame, _ := json.Marshal(map[string]string{"chat_id": chat.ID, "content": "private"})
	if err := aliceConn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	_ = carolConn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, raw, err := carolConn.ReadMessage(); err == nil {
		t.Fatalf("non-participant received frame: %s", raw)
	}
}
