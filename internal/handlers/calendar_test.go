package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/teamline-app/teamline/internal/models"
)

func TestCreateEventNotifiesParticipants(t *testing.T) {
	env := newTestEnv()

	bobEp := &recorderEndpoint{userID: "bob"}
	carolEp := &recorderEndpoint{userID: "carol"}
	env.hub.Registry().Register(bobEp)
	env.hub.Registry().Register(carolEp)

	req := env.authedRequest("POST", "/events", "alice",
		`{"title":"Sprint review","start":"2026-09-01T10:00:00Z","end":"2026-09-01T11:00:00Z","participants":["bob","carol"]}`)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}

	var event models.CalendarEvent
	if err := json.Unmarshal(w.Body.Bytes(), &event); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if event.ID == "" || event.UserID != "alice" {
		t.Fatalf("unexpected event: %+v", event)
	}

	for _, ep := range []*recorderEndpoint{bobEp, carolEp} {
		frames := ep.received()
		if len(frames) != 1 {
			t.Fatalf("%s received %d invites, want 1", ep.userID, len(frames))
		}
		var invite struct {
			Type    string `json:"type"`
			EventID string `json:"event_id"`
			Title   string `json:"title"`
		}
		if err := json.Unmarshal(frames[0], &invite); err != nil {
			t.Fatalf("invite is not valid JSON: %v", err)
		}
		if invite.Type != "calendar_invite" || invite.EventID != event.ID || invite.Title != "Sprint review" {
			t.Fatalf("unexpected invite: %+v", invite)
		}
	}
}

func TestCreateEventOfflineParticipantsStillPersisted(t *testing.T) {
	env := newTestEnv()

	req := env.authedRequest("POST", "/events", "alice",
		`{"title":"1:1","start":"2026-09-02T09:00:00Z","end":"2026-09-02T09:30:00Z","participants":["bob"]}`)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}

	list := env.authedRequest("GET", "/events", "bob", "")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, list)

	var resp EventListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(resp.Events) != 1 {
		t.Fatalf("participant sees %d events, want 1", len(resp.Events))
	}
}

func TestCreateEventRequiresTitle(t *testing.T) {
	env := newTestEnv()

	req := env.authedRequest("POST", "/events", "alice", `{"participants":["bob"]}`)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
