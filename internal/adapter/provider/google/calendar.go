// Package google syncs committed events to Google Calendar and answers
// free/busy queries for the conflict checker. Each user links their own
// calendar; credentials are a stored OAuth refresh token.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/heartmarshall/mindump-backend/internal/config"
	"github.com/heartmarshall/mindump-backend/internal/domain"
)

// ErrNotLinked is returned by IsBusy when the user has no linked calendar.
var ErrNotLinked = domain.ErrCalendarNotLinked

type accountStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.CalendarAccount, error)
}

// Calendar is the Google Calendar adapter.
type Calendar struct {
	oauth      *oauth2.Config
	accounts   accountStore
	enabled    bool
	defaultCal string
	timeZone   string
	timeout    time.Duration
	apiOpts    []option.ClientOption
	log        *slog.Logger
}

// NewCalendar builds the adapter. With cfg.Enabled false every call is a
// no-op: CreateEvent returns nil and IsBusy reports ErrNotLinked.
func NewCalendar(cfg config.CalendarConfig, accounts accountStore, logger *slog.Logger) *Calendar {
	return &Calendar{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     googleoauth.Endpoint,
			Scopes:       []string{calendar.CalendarEventsScope, calendar.CalendarFreebusyScope},
		},
		accounts:   accounts,
		enabled:    cfg.Enabled,
		defaultCal: cfg.DefaultCalendarID,
		timeZone:   cfg.TimeZone,
		timeout:    cfg.Timeout,
		log:        logger.With("adapter", "google_calendar"),
	}
}

// CreateEvent inserts the draft into the user's linked calendar and returns
// the external event id. It never fails the caller: any problem is logged
// and nil is returned, meaning "not synced".
func (c *Calendar) CreateEvent(ctx context.Context, userID uuid.UUID, draft domain.CalendarEventDraft) *string {
	if !c.enabled {
		return nil
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	svc, calID, err := c.service(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotLinked) {
			c.log.WarnContext(ctx, "calendar client unavailable", slog.String("user_id", userID.String()), slog.String("error", err.Error()))
		}
		return nil
	}

	end := draft.StartTime.Add(domain.DefaultEventDuration)
	if draft.EndTime != nil {
		end = *draft.EndTime
	}

	ev := &calendar.Event{
		Summary:  draft.Title,
		Location: draft.Location,
		Start:    &calendar.EventDateTime{DateTime: draft.StartTime.Format(time.RFC3339), TimeZone: c.timeZone},
		End:      &calendar.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: c.timeZone},
	}
	if draft.Category != "" {
		ev.Description = "Category: " + draft.Category
	}

	created, err := svc.Events.Insert(calID, ev).Context(ctx).Do()
	if err != nil {
		c.log.WarnContext(ctx, "calendar event insert failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if created.Id == "" {
		return nil
	}

	c.log.InfoContext(ctx, "calendar event created", slog.String("user_id", userID.String()), slog.String("external_id", created.Id))
	return &created.Id
}

// IsBusy reports whether the user's linked calendar has a busy block
// intersecting [start, end).
func (c *Calendar) IsBusy(ctx context.Context, userID uuid.UUID, start, end time.Time) (bool, error) {
	if !c.enabled {
		return false, ErrNotLinked
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	svc, calID, err := c.service(ctx, userID)
	if err != nil {
		return false, err
	}

	resp, err := svc.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: start.Format(time.RFC3339),
		TimeMax: end.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: calID}},
	}).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("freebusy query: %w", err)
	}

	cal, ok := resp.Calendars[calID]
	if !ok {
		return false, fmt.Errorf("freebusy query: calendar %q missing from response", calID)
	}
	if len(cal.Errors) > 0 {
		return false, fmt.Errorf("freebusy query: %s", cal.Errors[0].Reason)
	}

	return len(cal.Busy) > 0, nil
}

// ExchangeCode trades an OAuth authorization code for a refresh token.
func (c *Calendar) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	tok, err := c.oauth.Exchange(ctx, code, oauth2.AccessTypeOffline)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	if tok.RefreshToken == "" {
		return "", errors.New("exchange code: no refresh token granted")
	}
	return tok.RefreshToken, nil
}

// AuthURL returns the consent URL a client opens to link a calendar.
func (c *Calendar) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// DefaultCalendarID is used when linking without an explicit calendar.
func (c *Calendar) DefaultCalendarID() string {
	return c.defaultCal
}

func (c *Calendar) service(ctx context.Context, userID uuid.UUID) (*calendar.Service, string, error) {
	acc, err := c.accounts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrNotLinked
		}
		return nil, "", fmt.Errorf("load calendar account: %w", err)
	}

	httpClient := c.oauth.Client(ctx, &oauth2.Token{RefreshToken: acc.RefreshToken})
	opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, c.apiOpts...)

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("create calendar service: %w", err)
	}

	calID := acc.CalendarID
	if calID == "" {
		calID = c.defaultCal
	}
	return svc, calID, nil
}

func (c *Calendar) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
