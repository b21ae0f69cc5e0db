// Package person persists the user's people roster.
package person

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/mindump-backend/internal/adapter/postgres"
	"github.com/heartmarshall/mindump-backend/internal/domain"
)

const entity = "person"

// Repo provides person persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new person repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const personColumns = `id, user_id, name, relationship, category, metadata, notes, is_important, pin_order, created_at, updated_at`

// Upsert matches on the normalized name: the first sighting inserts, later
// ones fill blank fields, merge metadata (empty values delete keys) and keep
// the original id. Notes are replaced only when non-empty.
const upsertSQL = `
INSERT INTO people AS p (id, user_id, name, name_normalized, relationship, category, metadata, notes, is_important, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
ON CONFLICT (user_id, name_normalized) DO UPDATE SET
    relationship = coalesce(nullif(EXCLUDED.relationship, ''), p.relationship),
    category     = coalesce(nullif(EXCLUDED.category, ''), p.category),
    notes        = coalesce(nullif(EXCLUDED.notes, ''), p.notes),
    is_important = p.is_important OR EXCLUDED.is_important,
    metadata     = (
        SELECT coalesce(jsonb_object_agg(kv.key, kv.value), '{}'::jsonb)
        FROM jsonb_each(p.metadata || $11::jsonb) kv
        WHERE kv.value <> '""'::jsonb
    ),
    updated_at   = EXCLUDED.updated_at
RETURNING ` + personColumns

// Upsert inserts the person or merges into the existing one with the same
// normalized name.
func (r *Repo) Upsert(ctx context.Context, p *domain.Person) (*domain.Person, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()

	insertMeta, err := json.Marshal(domain.MergeMetadata(nil, p.Metadata))
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	patchMeta, err := json.Marshal(nonNil(p.Metadata))
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	out, err := scanPerson(q.QueryRow(ctx, upsertSQL,
		p.ID, p.UserID, p.Name, domain.NormalizeName(p.Name), p.Relationship, p.Category,
		insertMeta, p.Notes, p.IsImportant, now, patchMeta,
	))
	if err != nil {
		return nil, postgres.MapError(err, entity, p.ID)
	}
	return out, nil
}

const updateSQL = `
UPDATE people SET
    name = $3, name_normalized = $4, relationship = $5, category = $6,
    metadata = $7, notes = $8, is_important = $9, pin_order = $10, updated_at = $11
WHERE id = $1 AND user_id = $2
RETURNING ` + personColumns

// Update overwrites every mutable field. Renaming onto another person's name
// fails with domain.ErrAlreadyExists.
func (r *Repo) Update(ctx context.Context, p *domain.Person) (*domain.Person, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	meta, err := json.Marshal(nonNil(p.Metadata))
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	out, err := scanPerson(q.QueryRow(ctx, updateSQL,
		p.ID, p.UserID, p.Name, domain.NormalizeName(p.Name), p.Relationship, p.Category,
		meta, p.Notes, p.IsImportant, p.PinOrder, time.Now().UTC(),
	))
	if err != nil {
		return nil, postgres.MapError(err, entity, p.ID)
	}
	return out, nil
}

// GetByID returns a person owned by userID.
func (r *Repo) GetByID(ctx context.Context, userID, personID uuid.UUID) (*domain.Person, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	out, err := scanPerson(q.QueryRow(ctx,
		`SELECT `+personColumns+` FROM people WHERE id = $1 AND user_id = $2`, personID, userID,
	))
	if err != nil {
		return nil, postgres.MapError(err, entity, personID)
	}
	return out, nil
}

// List returns the user's roster: pinned first by pin order, then important
// people, then alphabetical.
func (r *Repo) List(ctx context.Context, userID uuid.UUID) ([]*domain.Person, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, `
		SELECT `+personColumns+` FROM people
		WHERE user_id = $1
		ORDER BY pin_order NULLS LAST, is_important DESC, name_normalized, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Person, error) {
		return scanPerson(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan people: %w", err)
	}
	return out, nil
}

// Delete removes a person; links cascade.
func (r *Repo) Delete(ctx context.Context, userID, personID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM people WHERE id = $1 AND user_id = $2`, personID, userID)
	if err != nil {
		return postgres.MapError(err, entity, personID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, personID, domain.ErrNotFound)
	}
	return nil
}

func scanPerson(row pgx.Row) (*domain.Person, error) {
	var (
		p    domain.Person
		meta []byte
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Relationship, &p.Category, &meta, &p.Notes,
		&p.IsImportant, &p.PinOrder, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(meta, &p.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if p.Metadata == nil {
		p.Metadata = map[string]string{}
	}
	return &p, nil
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
