package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/internal/service/dump"
)

type dumpService interface {
	Create(ctx context.Context, input dump.CreateInput) (*domain.Dump, error)
	Get(ctx context.Context, dumpID uuid.UUID) (*domain.Dump, error)
	History(ctx context.Context, input dump.HistoryInput) ([]*domain.DumpWithOutcome, int, error)
}

// DumpHandler serves dump capture and history endpoints.
type DumpHandler struct {
	svc dumpService
	log *slog.Logger
}

// NewDumpHandler creates a DumpHandler.
func NewDumpHandler(svc dumpService, logger *slog.Logger) *DumpHandler {
	return &DumpHandler{svc: svc, log: logger.With("handler", "dump")}
}

type createDumpRequest struct {
	Source   string  `json:"source"`
	Text     *string `json:"text"`
	MediaRef *string `json:"mediaRef"`
}

// Create handles POST /api/v1/dumps. The dump is queued for processing and
// returned immediately.
func (h *DumpHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDumpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	d, err := h.svc.Create(r.Context(), dump.CreateInput{
		Source:   domain.DumpSource(req.Source),
		Text:     req.Text,
		MediaRef: req.MediaRef,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, toDumpResponse(d))
}

// Get handles GET /api/v1/dumps/{id}.
func (h *DumpHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDumpResponse(d))
}

// History handles GET /api/v1/dumps.
func (h *DumpHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	processed, err := queryBool(r, "processed")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	input := dump.HistoryInput{Processed: processed, Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("source"); raw != "" {
		src := domain.DumpSource(raw)
		input.Source = &src
	}

	dumps, total, err := h.svc.History(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]dumpHistoryResponse, 0, len(dumps))
	for _, d := range dumps {
		out = append(out, dumpHistoryResponse{
			dumpResponse: toDumpResponse(&d.Dump),
			EventID:      d.Outcome.EventID,
			InboxEntryID: d.Outcome.InboxEntryID,
		})
	}
	writeJSON(w, http.StatusOK, listResponse[dumpHistoryResponse]{Items: out, TotalCount: total})
}
