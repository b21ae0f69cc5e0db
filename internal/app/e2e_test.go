//go:build e2e

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/mindump-backend/internal/adapter/postgres"
	actionablerepo "github.com/heartmarshall/mindump-backend/internal/adapter/postgres/actionable"
	calendaraccountrepo "github.com/heartmarshall/mindump-backend/internal/adapter/postgres/calendaraccount"
	dumprepo "github.com/heartmarshall/mindump-backend/internal/adapter/postgres/dump"
	eventrepo "github.com/heartmarshall/mindump-backend/internal/adapter/postgres/event"
	inboxrepo "github.com/heartmarshall/mindump-backend/internal/adapter/postgres/inbox"
	personrepo "github.com/heartmarshall/mindump-backend/internal/adapter/postgres/person"
	"github.com/heartmarshall/mindump-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/mindump-backend/internal/auth"
	"github.com/heartmarshall/mindump-backend/internal/config"
	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/internal/service/actionable"
	"github.com/heartmarshall/mindump-backend/internal/service/archive"
	"github.com/heartmarshall/mindump-backend/internal/service/calendaraccount"
	"github.com/heartmarshall/mindump-backend/internal/service/conflict"
	"github.com/heartmarshall/mindump-backend/internal/service/dump"
	"github.com/heartmarshall/mindump-backend/internal/service/event"
	"github.com/heartmarshall/mindump-backend/internal/service/inbox"
	"github.com/heartmarshall/mindump-backend/internal/service/person"
	"github.com/heartmarshall/mindump-backend/internal/service/pipeline"
	"github.com/heartmarshall/mindump-backend/internal/service/retrieval"
	"github.com/heartmarshall/mindump-backend/internal/transport/middleware"
)

const (
	e2eSecret = "e2e-secret-e2e-secret-e2e-secret!"
	e2eIssuer = "mindump-e2e"
)

// scriptedExtractor answers by text prefix: "commit:" yields a confident
// timed proposal, anything else a low-confidence one with a person and a todo.
type scriptedExtractor struct {
	start time.Time
}

func (e *scriptedExtractor) Extract(_ context.Context, req domain.ExtractRequest) (*domain.Proposal, error) {
	text := ""
	if req.Text != nil {
		text = *req.Text
	}
	start := e.start
	end := start.Add(time.Hour)

	if title, ok := strings.CutPrefix(text, "commit:"); ok {
		return &domain.Proposal{Title: strings.TrimSpace(title), StartTime: &start, EndTime: &end, Confidence: 0.97}, nil
	}
	due := start.Add(-time.Hour)
	return &domain.Proposal{
		Title:      strings.TrimSpace(text),
		Confidence: 0.5,
		People:     []domain.ProposedPerson{{Name: "Ana Ruiz", Relationship: "colleague", Grade: "L5", IsNew: true}},
		Items:      []domain.ProposedItem{{Title: "Send the deck", Kind: domain.ItemKindTodo, DueDate: &due}},
	}, nil
}

type constEmbedder struct{}

func (constEmbedder) Embed(context.Context, string) ([]float32, error) {
	v := make([]float32, 8)
	v[0] = 1
	return v, nil
}

type fakeCalendar struct{}

func (fakeCalendar) CreateEvent(context.Context, uuid.UUID, domain.CalendarEventDraft) *string {
	id := "gcal-" + uuid.NewString()
	return &id
}

func (fakeCalendar) IsBusy(context.Context, uuid.UUID, time.Time, time.Time) (bool, error) {
	return false, domain.ErrCalendarNotLinked
}

func (fakeCalendar) AuthURL(state string) string {
	return "https://accounts.example/consent?state=" + state
}

func (fakeCalendar) ExchangeCode(context.Context, string) (string, error) { return "refresh", nil }

func (fakeCalendar) DefaultCalendarID() string { return "primary" }

type e2eServer struct {
	URL    string
	Client *http.Client
	token  string
}

func setupE2E(t *testing.T, start time.Time) *e2eServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	log := slog.New(slog.DiscardHandler)

	cfg := &config.Config{
		Auth:     config.AuthConfig{JWTSecret: e2eSecret, JWTIssuer: e2eIssuer},
		CORS:     config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,POST,PATCH,DELETE", AllowedHeaders: "Authorization,Content-Type"},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Pipeline: config.PipelineConfig{Workers: 2, QueueSize: 16, DumpTimeout: 30 * time.Second, ContextLimit: 3},
	}

	tx := postgres.NewTxManager(pool)
	dumps := dumprepo.New(pool)
	events := eventrepo.New(pool)
	inboxes := inboxrepo.New(pool)
	people := personrepo.New(pool)
	items := actionablerepo.New(pool)
	accounts := calendaraccountrepo.New(pool)
	cal := fakeCalendar{}
	engine := archive.NewEngine(log, items, nil)

	orch := pipeline.NewOrchestrator(log, pipeline.Deps{
		Dumps:     dumps,
		Events:    events,
		Inbox:     inboxes,
		People:    people,
		Embedder:  constEmbedder{},
		Retriever: retrieval.NewRetriever(dumps),
		Extractor: &scriptedExtractor{start: start},
		Conflicts: conflict.NewChecker(log, events, cal),
		Calendar:  cal,
		Tx:        tx,
	}, cfg.Pipeline.ContextLimit)
	queue := pipeline.NewQueue(log, orch, cfg.Pipeline)

	c := &Container{
		Config:  cfg,
		Log:     log,
		Pool:    pool,
		Queue:   queue,
		Archive: engine,
		Dumps:   dump.NewService(log, dumps, queue),
		Inbox: inbox.NewService(log, inbox.Deps{
			Inbox: inboxes, Events: events, People: people, Items: items, Dumps: dumps, Calendar: cal, Tx: tx,
		}),
		Events:    event.NewService(log, events, cal, tx),
		People:    person.NewService(log, people, events, items, engine),
		Items:     actionable.NewService(log, items, inboxes, engine, time.UTC),
		Calendars: calendaraccount.NewService(log, accounts, cal),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = queue.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	limiter := middleware.NewRateLimiter(1000, 1000, time.Minute)
	t.Cleanup(limiter.Stop)

	srv := httptest.NewServer(newHandler(c, limiter))
	t.Cleanup(srv.Close)

	token, err := auth.NewJWTManager(e2eSecret, e2eIssuer).GenerateAccessToken(uuid.New(), time.Hour)
	require.NoError(t, err)

	return &e2eServer{URL: srv.URL, Client: srv.Client(), token: token}
}

func (s *e2eServer) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+s.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (s *e2eServer) submitAndWait(t *testing.T, text string) string {
	t.Helper()

	status, raw := s.do(t, http.MethodPost, "/api/v1/dumps", map[string]any{"text": text})
	require.Equal(t, http.StatusAccepted, status, string(raw))
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &created))

	require.Eventually(t, func() bool {
		status, raw := s.do(t, http.MethodGet, "/api/v1/dumps/"+created.ID, nil)
		if status != http.StatusOK {
			return false
		}
		var d struct {
			ProcessedAt *time.Time `json:"processedAt"`
		}
		return json.Unmarshal(raw, &d) == nil && d.ProcessedAt != nil
	}, 20*time.Second, 100*time.Millisecond)

	return created.ID
}

func TestE2E_ProbesArePublic(t *testing.T) {
	s := setupE2E(t, time.Now().Add(48*time.Hour).Truncate(time.Second))

	for _, path := range []string{"/live", "/ready", "/health", "/metrics"} {
		resp, err := s.Client.Get(s.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := s.Client.Get(s.URL + "/api/v1/inbox")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestE2E_ConfidentDumpIsCommitted(t *testing.T) {
	start := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	s := setupE2E(t, start)

	dumpID := s.submitAndWait(t, "commit: Dentist")

	status, raw := s.do(t, http.MethodGet, "/api/v1/events", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var events []struct {
		Title              string  `json:"title"`
		ExternalCalendarID *string `json:"externalCalendarId"`
		DumpID             *string `json:"dumpId"`
	}
	require.NoError(t, json.Unmarshal(raw, &events))
	require.Len(t, events, 1)
	assert.Equal(t, "Dentist", events[0].Title)
	require.NotNil(t, events[0].ExternalCalendarID)
	require.NotNil(t, events[0].DumpID)
	assert.Equal(t, dumpID, *events[0].DumpID)

	status, raw = s.do(t, http.MethodGet, "/api/v1/inbox", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"totalCount":0`)
}

func TestE2E_HeldDumpConfirmedFromInbox(t *testing.T) {
	start := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	s := setupE2E(t, start)

	s.submitAndWait(t, "coffee with Ana about the roadmap")

	status, raw := s.do(t, http.MethodGet, "/api/v1/inbox", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var list struct {
		Items []struct {
			ID         string  `json:"id"`
			Status     string  `json:"status"`
			FlagReason *string `json:"flagReason"`
		} `json:"items"`
		TotalCount int `json:"totalCount"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Equal(t, 1, list.TotalCount)
	entry := list.Items[0]
	assert.Equal(t, "needs_info", entry.Status)
	require.NotNil(t, entry.FlagReason)

	status, raw = s.do(t, http.MethodPost, "/api/v1/inbox/"+entry.ID+"/confirm", nil)
	assert.Equal(t, http.StatusBadRequest, status, "confirm without a start time must fail: %s", raw)

	status, raw = s.do(t, http.MethodPost, "/api/v1/inbox/"+entry.ID+"/confirm", map[string]any{"startTime": start})
	require.Equal(t, http.StatusOK, status, string(raw))
	var confirmed struct {
		Entry     struct{ Status string }  `json:"entry"`
		PersonIDs []string                 `json:"personIds"`
		Items     []struct{ Title string } `json:"actionableItems"`
	}
	require.NoError(t, json.Unmarshal(raw, &confirmed))
	assert.Equal(t, "approved", confirmed.Entry.Status)
	require.Len(t, confirmed.PersonIDs, 1)
	require.Len(t, confirmed.Items, 1)

	status, _ = s.do(t, http.MethodPost, "/api/v1/inbox/"+entry.ID+"/confirm", map[string]any{"startTime": start})
	assert.Equal(t, http.StatusConflict, status)

	status, raw = s.do(t, http.MethodGet, "/api/v1/people/"+confirmed.PersonIDs[0]+"/overview", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var ov struct {
		Person struct {
			Name     string            `json:"name"`
			Metadata map[string]string `json:"metadata"`
		} `json:"person"`
		Events      []any `json:"events"`
		ActiveItems []any `json:"activeItems"`
	}
	require.NoError(t, json.Unmarshal(raw, &ov))
	assert.Equal(t, "Ana Ruiz", ov.Person.Name)
	assert.Equal(t, "L5", ov.Person.Metadata["grade"])
	assert.Len(t, ov.Events, 1)
	assert.Len(t, ov.ActiveItems, 1)
}

func TestE2E_OverdueTodoIsArchivedOnRead(t *testing.T) {
	s := setupE2E(t, time.Now().Add(24*time.Hour))

	due := time.Now().Add(-13 * time.Hour).UTC()
	status, raw := s.do(t, http.MethodPost, "/api/v1/items", map[string]any{"title": "Renew passport", "kind": "todo", "dueDate": due})
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, raw = s.do(t, http.MethodGet, "/api/v1/items", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))

	status, raw = s.do(t, http.MethodGet, "/api/v1/items/archived", nil)
	require.Equal(t, http.StatusOK, status)
	var archived []struct {
		Title          string  `json:"title"`
		ArchivedReason *string `json:"archivedReason"`
	}
	require.NoError(t, json.Unmarshal(raw, &archived))
	require.Len(t, archived, 1)
	require.NotNil(t, archived[0].ArchivedReason)
	assert.Equal(t, "overdue_12h", *archived[0].ArchivedReason)
}
