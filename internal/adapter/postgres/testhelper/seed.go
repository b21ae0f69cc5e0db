package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/mindump-backend/internal/adapter/postgres"
	"github.com/heartmarshall/mindump-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser returns a fresh user id. Users live in the external identity
// service, so there is no row to insert; a new id partitions the test's data.
func SeedUser(t *testing.T, _ *pgxpool.Pool) uuid.UUID {
	t.Helper()
	return uuid.New()
}

// SeedDump inserts a dump with the given text and optional embedding.
func SeedDump(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, text string, embedding []float32) domain.Dump {
	t.Helper()

	d := domain.Dump{
		ID:        uuid.New(),
		UserID:    userID,
		Source:    domain.DumpSourceManual,
		Text:      &text,
		Embedding: embedding,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO dumps (id, user_id, source, text_content, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5::vector, $6)`,
		d.ID, d.UserID, string(d.Source), d.Text, postgres.VectorParam(embedding), d.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDump: %v", err)
	}

	return d
}

// SeedPerson inserts a person with a unique name unless one is given.
func SeedPerson(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, name string) domain.Person {
	t.Helper()

	if name == "" {
		name = "Person " + uniqueSuffix()
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	p := domain.Person{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Metadata:  map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO people (id, user_id, name, name_normalized, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.UserID, p.Name, domain.NormalizeName(p.Name), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedPerson: %v", err)
	}

	return p
}

// SeedEvent inserts an event in the given window. A nil end is stored as NULL.
func SeedEvent(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, start time.Time, end *time.Time) domain.Event {
	t.Helper()

	e := domain.Event{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     "Event " + uniqueSuffix(),
		StartTime: start.UTC().Truncate(time.Microsecond),
		EndTime:   end,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO events (id, user_id, title, start_time, end_time, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.UserID, e.Title, e.StartTime, e.EndTime, e.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedEvent: %v", err)
	}

	return e
}

// SeedTodo inserts an active todo with the given due date (nil for none).
func SeedTodo(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, due *time.Time) domain.ActionableItem {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	item := domain.ActionableItem{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     "Todo " + uniqueSuffix(),
		Kind:      domain.ItemKindTodo,
		DueDate:   due,
		Priority:  domain.PriorityNormal,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO actionable_items (id, user_id, title, kind, due_date, priority, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.UserID, item.Title, string(item.Kind), item.DueDate, string(item.Priority), item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTodo: %v", err)
	}

	return item
}
