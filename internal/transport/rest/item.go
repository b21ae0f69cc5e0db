package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/internal/service/actionable"
)

type itemService interface {
	Create(ctx context.Context, input actionable.CreateInput) (*domain.ActionableItem, error)
	ListActive(ctx context.Context, input actionable.ListInput) ([]*domain.ActionableItem, error)
	ListArchived(ctx context.Context, input actionable.ListInput) ([]*domain.ActionableItem, error)
	Get(ctx context.Context, itemID uuid.UUID) (*domain.ActionableItem, error)
	Dashboard(ctx context.Context) (domain.ItemDashboard, error)
	Complete(ctx context.Context, itemID uuid.UUID) (*domain.ActionableItem, error)
	Archive(ctx context.Context, itemID uuid.UUID) (*domain.ActionableItem, error)
	Unarchive(ctx context.Context, itemID uuid.UUID) (*domain.ActionableItem, error)
	Delete(ctx context.Context, itemID uuid.UUID) error
}

// ItemHandler serves todo and info items.
type ItemHandler struct {
	svc itemService
	log *slog.Logger
}

// NewItemHandler creates an ItemHandler.
func NewItemHandler(svc itemService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{svc: svc, log: logger.With("handler", "item")}
}

type createItemRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Kind        string      `json:"kind"`
	DueDate     *time.Time  `json:"dueDate"`
	ExpiresAt   *time.Time  `json:"expiresAt"`
	Priority    string      `json:"priority"`
	Category    string      `json:"category"`
	PersonIDs   []uuid.UUID `json:"personIds"`
}

func (h *ItemHandler) listInput(r *http.Request) (actionable.ListInput, error) {
	limit, offset, err := page(r)
	if err != nil {
		return actionable.ListInput{}, err
	}
	personID, err := queryUUID(r, "person_id")
	if err != nil {
		return actionable.ListInput{}, err
	}

	input := actionable.ListInput{PersonID: personID, Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("kind"); raw != "" {
		kind := domain.ItemKind(raw)
		input.Kind = &kind
	}
	return input, nil
}

// ListActive handles GET /api/v1/items.
func (h *ItemHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	input, err := h.listInput(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items, err := h.svc.ListActive(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponses(items))
}

// ListArchived handles GET /api/v1/items/archived.
func (h *ItemHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	input, err := h.listInput(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items, err := h.svc.ListArchived(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponses(items))
}

// Dashboard handles GET /api/v1/items/dashboard.
func (h *ItemHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		ActiveTodos:    d.ActiveTodos,
		ActiveInfos:    d.ActiveInfos,
		DueToday:       d.DueToday,
		Overdue:        d.Overdue,
		Archived:       d.Archived,
		PendingInbox:   d.PendingInbox,
		NeedsInfoInbox: d.NeedsInfoInbox,
	})
}

// Create handles POST /api/v1/items.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	item, err := h.svc.Create(r.Context(), actionable.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Kind:        domain.ItemKind(req.Kind),
		DueDate:     req.DueDate,
		ExpiresAt:   req.ExpiresAt,
		Priority:    domain.Priority(req.Priority),
		Category:    req.Category,
		PersonIDs:   req.PersonIDs,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

// Get handles GET /api/v1/items/{id}.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withItem(w, r, h.svc.Get)
}

// Complete handles POST /api/v1/items/{id}/complete.
func (h *ItemHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.withItem(w, r, h.svc.Complete)
}

// Archive handles POST /api/v1/items/{id}/archive.
func (h *ItemHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.withItem(w, r, h.svc.Archive)
}

// Unarchive handles POST /api/v1/items/{id}/unarchive.
func (h *ItemHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	h.withItem(w, r, h.svc.Unarchive)
}

// Delete handles DELETE /api/v1/items/{id}.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *ItemHandler) withItem(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID) (*domain.ActionableItem, error)) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	item, err := fn(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}
