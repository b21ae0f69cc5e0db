// Package dump persists raw user dumps, their embeddings and processing
// state, and answers nearest-neighbour queries over the embeddings.
package dump

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/mindump-backend/internal/adapter/postgres"
	"github.com/heartmarshall/mindump-backend/internal/domain"
)

const entity = "dump"

// Repo provides dump persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new dump repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const dumpColumns = `id, user_id, source, text_content, media_ref, embedding::text, created_at, processed_at`

const createSQL = `
INSERT INTO dumps (id, user_id, source, text_content, media_ref, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + dumpColumns

// Create inserts a new dump. The embedding is never written here; the
// pipeline sets it later.
func (r *Repo) Create(ctx context.Context, d *domain.Dump) (*domain.Dump, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	row := q.QueryRow(ctx, createSQL, d.ID, d.UserID, string(d.Source), d.Text, d.MediaRef, d.CreatedAt)
	out, err := scanDump(row)
	if err != nil {
		return nil, postgres.MapError(err, entity, d.ID)
	}
	return out, nil
}

// GetByID loads a dump by primary key regardless of owner. Only the pipeline
// uses it; the returned UserID then scopes every later write.
func (r *Repo) GetByID(ctx context.Context, dumpID uuid.UUID) (*domain.Dump, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, `SELECT `+dumpColumns+` FROM dumps WHERE id = $1`, dumpID)
	out, err := scanDump(row)
	if err != nil {
		return nil, postgres.MapError(err, entity, dumpID)
	}
	return out, nil
}

// GetForUser loads a dump owned by userID.
func (r *Repo) GetForUser(ctx context.Context, userID, dumpID uuid.UUID) (*domain.Dump, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, `SELECT `+dumpColumns+` FROM dumps WHERE id = $1 AND user_id = $2`, dumpID, userID)
	out, err := scanDump(row)
	if err != nil {
		return nil, postgres.MapError(err, entity, dumpID)
	}
	return out, nil
}

// SetEmbedding stores the dump's embedding vector.
func (r *Repo) SetEmbedding(ctx context.Context, userID, dumpID uuid.UUID, embedding []float32) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx,
		`UPDATE dumps SET embedding = $3::vector WHERE id = $1 AND user_id = $2`,
		dumpID, userID, postgres.VectorParam(embedding),
	)
	if err != nil {
		return postgres.MapError(err, entity, dumpID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, dumpID, domain.ErrNotFound)
	}
	return nil
}

// MarkProcessed stamps processed_at. Reprocessing overwrites the stamp.
func (r *Repo) MarkProcessed(ctx context.Context, userID, dumpID uuid.UUID, at time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx,
		`UPDATE dumps SET processed_at = $3 WHERE id = $1 AND user_id = $2`,
		dumpID, userID, at,
	)
	if err != nil {
		return postgres.MapError(err, entity, dumpID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, dumpID, domain.ErrNotFound)
	}
	return nil
}

const findSimilarSQL = `
SELECT id, text_content, 1 - (embedding <=> $2::vector) AS similarity
FROM dumps
WHERE user_id = $1
  AND embedding IS NOT NULL
  AND text_content IS NOT NULL
  AND id <> ALL($3)
ORDER BY embedding <=> $2::vector
LIMIT $4`

// FindSimilar returns up to limit of the user's dumps closest to embedding by
// cosine distance, closest first. Dumps listed in exclude are skipped.
func (r *Repo) FindSimilar(ctx context.Context, userID uuid.UUID, embedding []float32, limit int, exclude ...uuid.UUID) ([]domain.SimilarDump, error) {
	if len(embedding) == 0 || limit <= 0 {
		return []domain.SimilarDump{}, nil
	}
	if exclude == nil {
		exclude = []uuid.UUID{}
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, findSimilarSQL, userID, postgres.VectorParam(embedding), exclude, limit)
	if err != nil {
		return nil, fmt.Errorf("find similar dumps: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SimilarDump, error) {
		var s domain.SimilarDump
		err := row.Scan(&s.DumpID, &s.Text, &s.Similarity)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan similar dumps: %w", err)
	}
	return out, nil
}

// LinkPeople records which of the user's people a dump mentions. Ids that do
// not belong to the user are ignored.
func (r *Repo) LinkPeople(ctx context.Context, userID, dumpID uuid.UUID, personIDs []uuid.UUID) error {
	if len(personIDs) == 0 {
		return nil
	}
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, `
		INSERT INTO dump_people (dump_id, person_id)
		SELECT $1, p.id FROM people p WHERE p.user_id = $2 AND p.id = ANY($3)
		ON CONFLICT DO NOTHING`,
		dumpID, userID, personIDs,
	)
	if err != nil {
		return postgres.MapError(err, entity, dumpID)
	}
	return nil
}

// ListUnprocessed returns dumps of any user created before olderThan that
// have never been processed, oldest first.
func (r *Repo) ListUnprocessed(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Dump, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, `
		SELECT `+dumpColumns+` FROM dumps
		WHERE processed_at IS NULL AND created_at < $1
		ORDER BY created_at
		LIMIT $2`,
		olderThan, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed dumps: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Dump, error) {
		return scanDump(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan unprocessed dumps: %w", err)
	}
	return out, nil
}

func scanDump(row pgx.Row) (*domain.Dump, error) {
	var (
		d      domain.Dump
		source string
		emb    pgtype.Text
	)

	if err := row.Scan(&d.ID, &d.UserID, &source, &d.Text, &d.MediaRef, &emb, &d.CreatedAt, &d.ProcessedAt); err != nil {
		return nil, err
	}

	vec, err := postgres.ParseVector(emb)
	if err != nil {
		return nil, err
	}

	d.Source = domain.DumpSource(source)
	d.Embedding = vec
	return &d, nil
}
