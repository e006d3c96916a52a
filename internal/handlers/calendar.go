package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/teamline-app/teamline/internal/api/middleware"
	"github.com/teamline-app/teamline/internal/models"
)

// CreateEventRequest represents the create calendar event request body.
type CreateEventRequest struct {
	Title        string    `json:"title"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Participants []string  `json:"participants"`
}

// EventListResponse represents the event list response.
type EventListResponse struct {
	Events []models.CalendarEvent `json:"events"`
}

// calendarInvite is the signal payload pushed to each participant's live
// sockets when an event is created.
type calendarInvite struct {
	Type    string    `json:"type"`
	EventID string    `json:"event_id"`
	Title   string    `json:"title"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// CreateEvent handles creating a calendar event and notifying each invited
// participant's live sockets out of band. The persisted event is the
// canonical record; notify failures are not reported.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Title == "" {
		h.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	for _, p := range req.Participants {
		if p == "" {
			h.Error(w, http.StatusBadRequest, "participant ids must not be empty")
			return
		}
	}

	event := &models.CalendarEvent{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        req.Title,
		Start:        req.Start,
		End:          req.End,
		Participants: req.Participants,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.store.CreateEvent(r.Context(), event); err != nil {
		h.logger.Error().Err(err).Msg("create event failed")
		h.Error(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	h.JSON(w, http.StatusOK, event)

	payload, err := json.Marshal(calendarInvite{
		Type:    "calendar_invite",
		EventID: event.ID,
		Title:   event.Title,
		Start:   event.Start,
		End:     event.End,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal calendar invite")
		return
	}
	for _, participant := range event.Participants {
		h.hub.NotifyUser(participant, payload)
	}
}

// ListEvents handles listing the authenticated user's calendar events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	events, err := h.store.ListUserEvents(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("list events failed")
		h.Error(w, http.StatusInternalServerError, "failed to fetch events")
		return
	}

	h.JSON(w, http.StatusOK, EventListResponse{Events: events})
}
