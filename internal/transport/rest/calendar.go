package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/internal/service/calendaraccount"
)

type calendarAccountService interface {
	Start(ctx context.Context) (*calendaraccount.AuthStart, error)
	Link(ctx context.Context, input calendaraccount.LinkInput) (*domain.CalendarAccount, error)
	Get(ctx context.Context) (*domain.CalendarAccount, error)
	Unlink(ctx context.Context) error
}

// CalendarHandler serves the calendar link lifecycle.
type CalendarHandler struct {
	svc calendarAccountService
	log *slog.Logger
}

// NewCalendarHandler creates a CalendarHandler.
func NewCalendarHandler(svc calendarAccountService, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{svc: svc, log: logger.With("handler", "calendar")}
}

type linkCalendarRequest struct {
	Code       string `json:"code"`
	CalendarID string `json:"calendarId"`
}

type authStartResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

func toCalendarAccountResponse(acc *domain.CalendarAccount) calendarAccountResponse {
	return calendarAccountResponse{
		Provider:   acc.Provider,
		CalendarID: acc.CalendarID,
		LinkedAt:   acc.CreatedAt,
	}
}

// AuthURL handles GET /api/v1/calendar/auth-url.
func (h *CalendarHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	start, err := h.svc.Start(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authStartResponse{URL: start.URL, State: start.State})
}

// Link handles POST /api/v1/calendar/link.
func (h *CalendarHandler) Link(w http.ResponseWriter, r *http.Request) {
	var req linkCalendarRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	acc, err := h.svc.Link(r.Context(), calendaraccount.LinkInput{Code: req.Code, CalendarID: req.CalendarID})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarAccountResponse(acc))
}

// Get handles GET /api/v1/calendar. The refresh token never leaves the server.
func (h *CalendarHandler) Get(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.Get(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarAccountResponse(acc))
}

// Unlink handles DELETE /api/v1/calendar.
func (h *CalendarHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Unlink(r.Context()); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
