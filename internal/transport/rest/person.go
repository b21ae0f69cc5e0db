package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/internal/service/person"
)

type personService interface {
	Upsert(ctx context.Context, input person.UpsertInput) (*domain.Person, error)
	Update(ctx context.Context, input person.UpdateInput) (*domain.Person, error)
	Get(ctx context.Context, personID uuid.UUID) (*domain.Person, error)
	List(ctx context.Context) ([]*domain.Person, error)
	Overview(ctx context.Context, personID uuid.UUID) (*domain.PersonOverview, error)
	Delete(ctx context.Context, personID uuid.UUID) error
}

// PersonHandler serves the people graph.
type PersonHandler struct {
	svc personService
	log *slog.Logger
}

// NewPersonHandler creates a PersonHandler.
func NewPersonHandler(svc personService, logger *slog.Logger) *PersonHandler {
	return &PersonHandler{svc: svc, log: logger.With("handler", "person")}
}

type upsertPersonRequest struct {
	Name         string            `json:"name"`
	Relationship string            `json:"relationship"`
	Category     string            `json:"category"`
	Metadata     map[string]string `json:"metadata"`
	Notes        string            `json:"notes"`
	IsImportant  bool              `json:"isImportant"`
}

// updatePersonRequest is a partial update. Metadata is merged; an empty
// value removes its key.
type updatePersonRequest struct {
	Name         *string           `json:"name"`
	Relationship *string           `json:"relationship"`
	Category     *string           `json:"category"`
	Metadata     map[string]string `json:"metadata"`
	Notes        *string           `json:"notes"`
	IsImportant  *bool             `json:"isImportant"`
	PinOrder     *int              `json:"pinOrder"`
	Unpin        bool              `json:"unpin"`
}

type personOverviewResponse struct {
	Person      personResponse  `json:"person"`
	Events      []eventResponse `json:"events"`
	ActiveItems []itemResponse  `json:"activeItems"`
}

// List handles GET /api/v1/people.
func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	people, err := h.svc.List(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]personResponse, 0, len(people))
	for _, p := range people {
		out = append(out, toPersonResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// Upsert handles POST /api/v1/people. A person with the same name is
// updated in place.
func (h *PersonHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertPersonRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	p, err := h.svc.Upsert(r.Context(), person.UpsertInput{
		Name:         req.Name,
		Relationship: req.Relationship,
		Category:     req.Category,
		Metadata:     req.Metadata,
		Notes:        req.Notes,
		IsImportant:  req.IsImportant,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

// Get handles GET /api/v1/people/{id}.
func (h *PersonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

// Update handles PATCH /api/v1/people/{id}.
func (h *PersonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req updatePersonRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	p, err := h.svc.Update(r.Context(), person.UpdateInput{
		PersonID:     id,
		Name:         req.Name,
		Relationship: req.Relationship,
		Category:     req.Category,
		Metadata:     req.Metadata,
		Notes:        req.Notes,
		IsImportant:  req.IsImportant,
		PinOrder:     req.PinOrder,
		Unpin:        req.Unpin,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

// Overview handles GET /api/v1/people/{id}/overview.
func (h *PersonHandler) Overview(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	ov, err := h.svc.Overview(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, personOverviewResponse{
		Person:      toPersonResponse(&ov.Person),
		Events:      toEventResponses(ov.Events),
		ActiveItems: toItemResponses(ov.ActiveItems),
	})
}

// Delete handles DELETE /api/v1/people/{id}.
func (h *PersonHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
