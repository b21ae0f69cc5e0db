// Package calendaraccount links users to their external calendar.
package calendaraccount

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

const providerGoogle = "google"

type accountRepo interface {
	Upsert(ctx context.Context, acc *domain.CalendarAccount) (*domain.CalendarAccount, error)
	Get(ctx context.Context, userID uuid.UUID) (*domain.CalendarAccount, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type oauthProvider interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	DefaultCalendarID() string
}

// Service manages calendar links.
type Service struct {
	accounts accountRepo
	oauth    oauthProvider
	log      *slog.Logger
}

// NewService creates a new calendar account service.
func NewService(logger *slog.Logger, accounts accountRepo, oauth oauthProvider) *Service {
	return &Service{
		accounts: accounts,
		oauth:    oauth,
		log:      logger.With("service", "calendaraccount"),
	}
}

// AuthStart is the consent URL plus the state the client must echo back.
type AuthStart struct {
	URL   string
	State string
}

// Start returns the consent URL for linking a calendar.
func (s *Service) Start(ctx context.Context) (*AuthStart, error) {
	if _, ok := ctxutil.UserIDFromCtx(ctx); !ok {
		return nil, domain.ErrUnauthorized
	}
	state := uuid.NewString()
	return &AuthStart{URL: s.oauth.AuthURL(state), State: state}, nil
}

// LinkInput carries the authorization code returned by the consent screen.
type LinkInput struct {
	Code       string
	CalendarID string
}

// Validate checks all fields and collects all errors.
func (i LinkInput) Validate() error {
	var errs []domain.FieldError
	if strings.TrimSpace(i.Code) == "" {
		errs = append(errs, domain.FieldError{Field: "code", Message: "required"})
	}
	if len(i.CalendarID) > 1024 {
		errs = append(errs, domain.FieldError{Field: "calendar_id", Message: "max 1024 characters"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Link exchanges the code for a refresh token and stores it, replacing any
// existing link.
func (s *Service) Link(ctx context.Context, input LinkInput) (*domain.CalendarAccount, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	token, err := s.oauth.ExchangeCode(ctx, strings.TrimSpace(input.Code))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	calendarID := strings.TrimSpace(input.CalendarID)
	if calendarID == "" {
		calendarID = s.oauth.DefaultCalendarID()
	}

	acc, err := s.accounts.Upsert(ctx, &domain.CalendarAccount{
		UserID:       userID,
		Provider:     providerGoogle,
		CalendarID:   calendarID,
		RefreshToken: token,
	})
	if err != nil {
		return nil, fmt.Errorf("store calendar account: %w", err)
	}

	s.log.InfoContext(ctx, "calendar linked",
		slog.String("user_id", userID.String()),
		slog.String("calendar_id", calendarID),
	)
	return acc, nil
}

// Get returns the caller's link or domain.ErrNotFound.
func (s *Service) Get(ctx context.Context) (*domain.CalendarAccount, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	acc, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get calendar account: %w", err)
	}
	return acc, nil
}

// Unlink removes the caller's link. Events already synced stay in the
// external calendar.
func (s *Service) Unlink(ctx context.Context) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := s.accounts.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete calendar account: %w", err)
	}

	s.log.InfoContext(ctx, "calendar unlinked", slog.String("user_id", userID.String()))
	return nil
}
