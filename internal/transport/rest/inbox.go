package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/internal/service/inbox"
)

type inboxService interface {
	List(ctx context.Context, input inbox.ListInput) ([]*domain.InboxEntry, int, error)
	Get(ctx context.Context, entryID uuid.UUID) (*domain.InboxEntry, error)
	Confirm(ctx context.Context, input inbox.ConfirmInput) (*inbox.ConfirmResult, error)
	Dismiss(ctx context.Context, entryID uuid.UUID) (*domain.InboxEntry, error)
	Delete(ctx context.Context, entryID uuid.UUID) error
}

// InboxHandler serves the review inbox.
type InboxHandler struct {
	svc inboxService
	log *slog.Logger
}

// NewInboxHandler creates an InboxHandler.
func NewInboxHandler(svc inboxService, logger *slog.Logger) *InboxHandler {
	return &InboxHandler{svc: svc, log: logger.With("handler", "inbox")}
}

// confirmRequest carries optional overrides applied to the proposal before
// it is committed.
type confirmRequest struct {
	Title     *string    `json:"title"`
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	Location  *string    `json:"location"`
}

type confirmResponse struct {
	Entry     inboxEntryResponse `json:"entry"`
	Event     eventResponse      `json:"event"`
	Items     []itemResponse     `json:"actionableItems"`
	PersonIDs []uuid.UUID        `json:"personIds"`
}

// List handles GET /api/v1/inbox. The status parameter may repeat; it
// defaults to the open statuses.
func (h *InboxHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	entries, total, err := h.svc.List(r.Context(), inbox.ListInput{
		Statuses: r.URL.Query()["status"],
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]inboxEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toInboxEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, listResponse[inboxEntryResponse]{Items: out, TotalCount: total})
}

// Get handles GET /api/v1/inbox/{id}.
func (h *InboxHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	entry, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInboxEntryResponse(entry))
}

// Confirm handles POST /api/v1/inbox/{id}/confirm. An empty body confirms
// the proposal as stored.
func (h *InboxHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req confirmRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(h.log, w, r, err)
			return
		}
	}

	res, err := h.svc.Confirm(r.Context(), inbox.ConfirmInput{
		EntryID:   id,
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	people := res.PersonIDs
	if people == nil {
		people = []uuid.UUID{}
	}
	writeJSON(w, http.StatusOK, confirmResponse{
		Entry:     toInboxEntryResponse(res.Entry),
		Event:     toEventResponse(res.Event),
		Items:     toItemResponses(res.Items),
		PersonIDs: people,
	})
}

// Dismiss handles POST /api/v1/inbox/{id}/dismiss and its /reject alias.
func (h *InboxHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	entry, err := h.svc.Dismiss(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInboxEntryResponse(entry))
}

// Delete handles DELETE /api/v1/inbox/{id}.
func (h *InboxHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
