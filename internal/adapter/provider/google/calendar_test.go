package google

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/heartmarshall/mindump-backend/internal/config"
	"github.com/heartmarshall/mindump-backend/internal/domain"
)

type accountStoreMock struct {
	accounts map[uuid.UUID]*domain.CalendarAccount
	err      error
}

func (m *accountStoreMock) Get(_ context.Context, userID uuid.UUID) (*domain.CalendarAccount, error) {
	if m.err != nil {
		return nil, m.err
	}
	acc, ok := m.accounts[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return acc, nil
}

type fakeGoogle struct {
	mu          sync.Mutex
	inserted    []map[string]any
	insertPath  string
	busy        bool
	failInsert  bool
	refreshSeen string
}

func (f *fakeGoogle) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/token":
			require.NoError(t, r.ParseForm())
			f.mu.Lock()
			f.refreshSeen = r.Form.Get("refresh_token")
			f.mu.Unlock()
			if r.Form.Get("grant_type") == "authorization_code" {
				_, _ = io.WriteString(w, `{"access_token":"at","token_type":"Bearer","expires_in":3600,"refresh_token":"rt-new"}`)
				return
			}
			_, _ = io.WriteString(w, `{"access_token":"at","token_type":"Bearer","expires_in":3600}`)
		case strings.HasSuffix(r.URL.Path, "/events"):
			if f.failInsert {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, `{"error":{"code":500,"message":"boom"}}`)
				return
			}
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.mu.Lock()
			f.inserted = append(f.inserted, body)
			f.insertPath = r.URL.Path
			f.mu.Unlock()
			_, _ = io.WriteString(w, `{"id":"evt-123"}`)
		case strings.HasSuffix(r.URL.Path, "/freeBusy"):
			busy := `[]`
			if f.busy {
				busy = `[{"start":"2026-05-04T15:00:00Z","end":"2026-05-04T16:00:00Z"}]`
			}
			_, _ = io.WriteString(w, `{"calendars":{"primary":{"busy":`+busy+`}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestCalendar(t *testing.T, fake *fakeGoogle, accounts accountStore, enabled bool) *Calendar {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	c := NewCalendar(config.CalendarConfig{
		Enabled:           enabled,
		ClientID:          "client",
		ClientSecret:      "secret",
		DefaultCalendarID: "primary",
		TimeZone:          "UTC",
		Timeout:           5 * time.Second,
	}, accounts, slog.New(slog.DiscardHandler))
	c.oauth.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	c.apiOpts = []option.ClientOption{option.WithEndpoint(srv.URL + "/")}
	return c
}

func linked(userID uuid.UUID) *accountStoreMock {
	return &accountStoreMock{accounts: map[uuid.UUID]*domain.CalendarAccount{
		userID: {UserID: userID, Provider: "google", RefreshToken: "rt-1"},
	}}
}

func TestCalendar_CreateEvent_Success(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	fake := &fakeGoogle{}
	c := newTestCalendar(t, fake, linked(userID), true)

	start := time.Date(2026, 5, 4, 15, 0, 0, 0, time.UTC)
	id := c.CreateEvent(context.Background(), userID, domain.CalendarEventDraft{
		Title:     "Dentist",
		StartTime: start,
		Location:  "Main St",
	})

	require.NotNil(t, id)
	assert.Equal(t, "evt-123", *id)
	assert.Equal(t, "rt-1", fake.refreshSeen)
	require.Len(t, fake.inserted, 1)
	assert.True(t, strings.HasSuffix(fake.insertPath, "/calendars/primary/events"))
	assert.Equal(t, "Dentist", fake.inserted[0]["summary"])

	end := fake.inserted[0]["end"].(map[string]any)
	assert.Equal(t, "2026-05-04T16:00:00Z", end["dateTime"], "end defaults to one hour after start")
}

func TestCalendar_CreateEvent_UsesLinkedCalendarID(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	fake := &fakeGoogle{}
	store := linked(userID)
	store.accounts[userID].CalendarID = "family"
	c := newTestCalendar(t, fake, store, true)

	id := c.CreateEvent(context.Background(), userID, domain.CalendarEventDraft{Title: "Recital", StartTime: time.Now()})

	require.NotNil(t, id)
	assert.True(t, strings.HasSuffix(fake.insertPath, "/calendars/family/events"))
}

func TestCalendar_CreateEvent_FailureReturnsNil(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	c := newTestCalendar(t, &fakeGoogle{failInsert: true}, linked(userID), true)

	id := c.CreateEvent(context.Background(), userID, domain.CalendarEventDraft{Title: "x", StartTime: time.Now()})
	assert.Nil(t, id)
}

func TestCalendar_CreateEvent_NotLinked(t *testing.T) {
	t.Parallel()

	fake := &fakeGoogle{}
	c := newTestCalendar(t, fake, &accountStoreMock{}, true)

	id := c.CreateEvent(context.Background(), uuid.New(), domain.CalendarEventDraft{Title: "x", StartTime: time.Now()})
	assert.Nil(t, id)
	assert.Empty(t, fake.inserted)
}

func TestCalendar_Disabled(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	fake := &fakeGoogle{busy: true}
	c := newTestCalendar(t, fake, linked(userID), false)

	assert.Nil(t, c.CreateEvent(context.Background(), userID, domain.CalendarEventDraft{Title: "x", StartTime: time.Now()}))

	busy, err := c.IsBusy(context.Background(), userID, time.Now(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrNotLinked)
	assert.False(t, busy)
	assert.Empty(t, fake.inserted)
}

func TestCalendar_IsBusy(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 5, 4, 15, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name string
		busy bool
	}{
		{name: "busy block present", busy: true},
		{name: "free", busy: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			userID := uuid.New()
			c := newTestCalendar(t, &fakeGoogle{busy: tt.busy}, linked(userID), true)

			got, err := c.IsBusy(context.Background(), userID, start, end)
			require.NoError(t, err)
			assert.Equal(t, tt.busy, got)
		})
	}
}

func TestCalendar_IsBusy_NotLinked(t *testing.T) {
	t.Parallel()

	c := newTestCalendar(t, &fakeGoogle{}, &accountStoreMock{}, true)

	_, err := c.IsBusy(context.Background(), uuid.New(), time.Now(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrNotLinked)
}

func TestCalendar_ExchangeCode(t *testing.T) {
	t.Parallel()

	c := newTestCalendar(t, &fakeGoogle{}, &accountStoreMock{}, true)

	rt, err := c.ExchangeCode(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "rt-new", rt)
}

func TestCalendar_AuthURL(t *testing.T) {
	t.Parallel()

	c := newTestCalendar(t, &fakeGoogle{}, &accountStoreMock{}, true)

	u := c.AuthURL("state-1")
	assert.Contains(t, u, "state=state-1")
	assert.Contains(t, u, "access_type=offline")
}
