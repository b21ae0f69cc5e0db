// Package inbox persists review-inbox entries: proposals the pipeline held
// back for a human decision.
package inbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/mindump-backend/internal/adapter/postgres"
	"github.com/heartmarshall/mindump-backend/internal/domain"
)

const entity = "inbox_entry"

// Repo provides inbox entry persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new inbox repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const entryColumns = `id, user_id, dump_id, proposed_data, confidence, flag_reason, status, created_at, resolved_at`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an entry owned by userID.
func (r *Repo) GetByID(ctx context.Context, userID, entryID uuid.UUID) (*domain.InboxEntry, error) {
	return r.get(ctx, entryID, `SELECT `+entryColumns+` FROM inbox_entries WHERE id = $1 AND user_id = $2`, entryID, userID)
}

// GetForUpdate is GetByID with a row lock; call it inside a transaction.
func (r *Repo) GetForUpdate(ctx context.Context, userID, entryID uuid.UUID) (*domain.InboxEntry, error) {
	return r.get(ctx, entryID, `SELECT `+entryColumns+` FROM inbox_entries WHERE id = $1 AND user_id = $2 FOR UPDATE`, entryID, userID)
}

// GetByDumpID returns the entry created for a dump, if any.
func (r *Repo) GetByDumpID(ctx context.Context, userID, dumpID uuid.UUID) (*domain.InboxEntry, error) {
	return r.get(ctx, dumpID, `SELECT `+entryColumns+` FROM inbox_entries WHERE dump_id = $1 AND user_id = $2`, dumpID, userID)
}

func (r *Repo) get(ctx context.Context, id uuid.UUID, query string, args ...any) (*domain.InboxEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	e, err := scanEntry(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, entity, id)
	}
	return e, nil
}

// List returns the user's entries newest first, optionally restricted to the
// given statuses, plus the total count for the same filter.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, statuses []domain.InboxStatus, limit, offset int) ([]*domain.InboxEntry, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	where := sq.And{sq.Eq{"user_id": userID}}
	if len(statuses) > 0 {
		s := make([]string, len(statuses))
		for i, st := range statuses {
			s[i] = string(st)
		}
		where = append(where, sq.Eq{"status": s})
	}

	countSQL, countArgs, err := postgres.Builder.Select("count(*)").From("inbox_entries").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count inbox_entries: %w", err)
	}

	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inbox_entries: %w", err)
	}

	listSQL, listArgs, err := postgres.Builder.
		Select(entryColumns).
		From("inbox_entries").
		Where(where).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list inbox_entries: %w", err)
	}

	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inbox_entries: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.InboxEntry, error) {
		return scanEntry(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan inbox_entries: %w", err)
	}

	return entries, total, nil
}

// CountOpen returns how many of the user's entries are pending and how many
// need more information.
func (r *Repo) CountOpen(ctx context.Context, userID uuid.UUID) (pending, needsInfo int, err error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	err = q.QueryRow(ctx, `
		SELECT count(*) FILTER (WHERE status = 'pending'),
		       count(*) FILTER (WHERE status = 'needs_info')
		FROM inbox_entries WHERE user_id = $1`,
		userID,
	).Scan(&pending, &needsInfo)
	if err != nil {
		return 0, 0, fmt.Errorf("count open inbox_entries: %w", err)
	}
	return pending, needsInfo, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const createSQL = `
INSERT INTO inbox_entries (id, user_id, dump_id, proposed_data, confidence, flag_reason, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + entryColumns

// Create inserts a new entry. A second entry for the same dump fails with
// domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, e *domain.InboxEntry) (*domain.InboxEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal proposed data: %w", err)
	}

	out, err := scanEntry(q.QueryRow(ctx, createSQL,
		e.ID, e.UserID, e.DumpID, data, e.Confidence, e.FlagReason, string(e.Status), e.CreatedAt,
	))
	if err != nil {
		return nil, postgres.MapError(err, entity, e.ID)
	}
	return out, nil
}

// Resolve moves an open entry to a terminal status and stamps resolved_at.
// Entries that are not open are left alone and domain.ErrConflict is returned.
func (r *Repo) Resolve(ctx context.Context, userID, entryID uuid.UUID, status domain.InboxStatus, at time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE inbox_entries SET status = $3, resolved_at = $4
		WHERE id = $1 AND user_id = $2 AND status IN ('pending', 'needs_info')`,
		entryID, userID, string(status), at,
	)
	if err != nil {
		return postgres.MapError(err, entity, entryID)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, userID, entryID); err != nil {
		return err
	}
	return fmt.Errorf("%s %s: %w", entity, entryID, domain.ErrConflict)
}

// Delete removes an entry.
func (r *Repo) Delete(ctx context.Context, userID, entryID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM inbox_entries WHERE id = $1 AND user_id = $2`, entryID, userID)
	if err != nil {
		return postgres.MapError(err, entity, entryID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, entryID, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

func scanEntry(row pgx.Row) (*domain.InboxEntry, error) {
	var (
		e      domain.InboxEntry
		raw    []byte
		status string
	)

	err := row.Scan(&e.ID, &e.UserID, &e.DumpID, &raw, &e.Confidence, &e.FlagReason, &status, &e.CreatedAt, &e.ResolvedAt)
	if err != nil {
		return nil, err
	}

	data, err := DecodeProposedData(raw)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", entity, e.ID, err)
	}

	e.Data = data
	e.Status = domain.InboxStatus(status)
	return &e, nil
}

// DecodeProposedData parses a stored proposal payload. Payloads written
// before versioning hold a bare proposal object and decode as version 0.
func DecodeProposedData(raw []byte) (domain.ProposedData, error) {
	var header struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return domain.ProposedData{}, fmt.Errorf("decode proposed data: %w", err)
	}

	if header.Version == nil {
		var p domain.Proposal
		if err := json.Unmarshal(raw, &p); err != nil {
			return domain.ProposedData{}, fmt.Errorf("decode legacy proposal: %w", err)
		}
		return domain.ProposedData{Version: 0, Proposal: p}, nil
	}

	if *header.Version > domain.ProposedDataVersion {
		return domain.ProposedData{}, fmt.Errorf("unsupported proposed data version %d", *header.Version)
	}

	var data domain.ProposedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.ProposedData{}, fmt.Errorf("decode proposed data: %w", err)
	}
	return data, nil
}
