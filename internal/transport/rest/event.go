package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/internal/service/event"
)

type eventService interface {
	Create(ctx context.Context, input event.CreateInput) (*domain.Event, error)
	Sync(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)
	List(ctx context.Context, input event.ListInput) ([]*domain.Event, error)
	Get(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)
	Delete(ctx context.Context, eventID uuid.UUID) error
}

// EventHandler serves committed events.
type EventHandler struct {
	svc eventService
	log *slog.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(svc eventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{svc: svc, log: logger.With("handler", "event")}
}

type createEventRequest struct {
	Title     string      `json:"title"`
	StartTime time.Time   `json:"startTime"`
	EndTime   *time.Time  `json:"endTime"`
	Location  string      `json:"location"`
	Category  string      `json:"category"`
	PersonIDs []uuid.UUID `json:"personIds"`
}

// List handles GET /api/v1/events?from=&to=&person_id=&limit=.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	from, err := queryTime(r, "from")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	personID, err := queryUUID(r, "person_id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	limit, err := queryInt(r.URL.Query().Get("limit"), "limit")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	events, err := h.svc.List(r.Context(), event.ListInput{From: from, To: to, PersonID: personID, Limit: limit})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponses(events))
}

// Create handles POST /api/v1/events.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	e, err := h.svc.Create(r.Context(), event.CreateInput{
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
		Category:  req.Category,
		PersonIDs: req.PersonIDs,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(e))
}

// Get handles GET /api/v1/events/{id}.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(e))
}

// Sync handles POST /api/v1/events/{id}/sync: push an event that has no
// external calendar entry yet.
func (h *EventHandler) Sync(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	e, err := h.svc.Sync(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(e))
}

// Delete handles DELETE /api/v1/events/{id}.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
