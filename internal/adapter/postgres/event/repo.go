// Package event persists committed calendar events and their people links.
package event

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/mindump-backend/internal/adapter/postgres"
	"github.com/heartmarshall/mindump-backend/internal/domain"
)

const entity = "event"

// Repo provides event persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new event repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const eventColumns = `id, user_id, title, start_time, end_time, location, category, external_calendar_id, dump_id, created_at`

const createSQL = `
INSERT INTO events (id, user_id, title, start_time, end_time, location, category, external_calendar_id, dump_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + eventColumns

// Create inserts an event. A second event for the same dump fails with
// domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	out, err := scanEvent(q.QueryRow(ctx, createSQL,
		e.ID, e.UserID, e.Title, e.StartTime, e.EndTime, e.Location, e.Category,
		e.ExternalCalendarID, e.DumpID, e.CreatedAt,
	))
	if err != nil {
		return nil, postgres.MapError(err, entity, e.ID)
	}
	return out, nil
}

// LinkPeople links the event to people of the same user. Unknown or foreign
// ids are skipped.
func (r *Repo) LinkPeople(ctx context.Context, userID, eventID uuid.UUID, personIDs []uuid.UUID) error {
	if len(personIDs) == 0 {
		return nil
	}
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, `
		INSERT INTO event_people (event_id, person_id)
		SELECT $1, p.id FROM people p WHERE p.user_id = $2 AND p.id = ANY($3)
		ON CONFLICT DO NOTHING`,
		eventID, userID, personIDs,
	)
	if err != nil {
		return postgres.MapError(err, entity, eventID)
	}
	return nil
}

// GetByID returns an event owned by userID.
func (r *Repo) GetByID(ctx context.Context, userID, eventID uuid.UUID) (*domain.Event, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	out, err := scanEvent(q.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 AND user_id = $2`, eventID, userID,
	))
	if err != nil {
		return nil, postgres.MapError(err, entity, eventID)
	}
	return out, nil
}

// List returns the user's events ordered by start time.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, f domain.EventFilter) ([]*domain.Event, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	b := postgres.Builder.
		Select(postgres.Prefixed("e.", eventColumns)...).
		From("events e").
		Where(sq.Eq{"e.user_id": userID}).
		OrderBy("e.start_time", "e.id")

	if f.From != nil {
		b = b.Where(sq.GtOrEq{"e.start_time": *f.From})
	}
	if f.To != nil {
		b = b.Where(sq.Lt{"e.start_time": *f.To})
	}
	if f.PersonID != nil {
		b = b.Join("event_people ep ON ep.event_id = e.id").Where(sq.Eq{"ep.person_id": *f.PersonID})
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list events: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Event, error) {
		return scanEvent(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	return out, nil
}

const overlapSQL = `
SELECT EXISTS (
    SELECT 1 FROM events
    WHERE user_id = $1
      AND start_time < $3
      AND coalesce(end_time, start_time + interval '1 hour') > $2
)`

// HasOverlap reports whether any of the user's events intersects [start, end).
// Events without an end are treated as lasting one hour.
func (r *Repo) HasOverlap(ctx context.Context, userID uuid.UUID, start, end time.Time) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var exists bool
	if err := q.QueryRow(ctx, overlapSQL, userID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("check event overlap: %w", err)
	}
	return exists, nil
}

// SetExternalID records the calendar id after a late sync.
func (r *Repo) SetExternalID(ctx context.Context, userID, eventID uuid.UUID, externalID string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx,
		`UPDATE events SET external_calendar_id = $3 WHERE id = $1 AND user_id = $2`,
		eventID, userID, externalID,
	)
	if err != nil {
		return postgres.MapError(err, entity, eventID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, eventID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes an event and its people links.
func (r *Repo) Delete(ctx context.Context, userID, eventID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM events WHERE id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return postgres.MapError(err, entity, eventID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, eventID, domain.ErrNotFound)
	}
	return nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID, &e.UserID, &e.Title, &e.StartTime, &e.EndTime, &e.Location, &e.Category,
		&e.ExternalCalendarID, &e.DumpID, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
