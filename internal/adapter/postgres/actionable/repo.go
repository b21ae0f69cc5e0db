// Package actionable persists todos and info items, including the set-based
// archive sweep used by the archive rules engine.
package actionable

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

const entity = "actionable_item"

// Repo provides actionable item persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new actionable item repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const itemColumns = `id, user_id, title, description, kind, due_date, expires_at, priority, category,
completed, completed_at, archived_at, archived_reason, dump_id, created_at, updated_at`

// personIDsColumn aggregates linked people per item.
const personIDsColumn = `coalesce((SELECT array_agg(ip.person_id ORDER BY ip.person_id) FROM item_people ip WHERE ip.item_id = a.id), '{}') AS person_ids`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const createSQL = `
INSERT INTO actionable_items (id, user_id, title, description, kind, due_date, expires_at, priority, category, dump_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
RETURNING id`

// Create inserts an item and links the given people in the same statement
// batch. Only people belonging to the user are linked.
func (r *Repo) Create(ctx context.Context, item *domain.ActionableItem) (*domain.ActionableItem, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	var id uuid.UUID
	err := q.QueryRow(ctx, createSQL,
		item.ID, item.UserID, item.Title, item.Description, string(item.Kind), item.DueDate, item.ExpiresAt,
		string(item.Priority), item.Category, item.DumpID, item.CreatedAt,
	).Scan(&id)
	if err != nil {
		return nil, postgres.MapError(err, entity, item.ID)
	}

	if err := r.LinkPeople(ctx, item.UserID, id, item.PersonIDs); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, item.UserID, id)
}

// LinkPeople links the item to people of the same user; foreign ids are skipped.
func (r *Repo) LinkPeople(ctx context.Context, userID, itemID uuid.UUID, personIDs []uuid.UUID) error {
	if len(personIDs) == 0 {
		return nil
	}
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, `
		INSERT INTO item_people (item_id, person_id)
		SELECT $1, p.id FROM people p WHERE p.user_id = $2 AND p.id = ANY($3)
		ON CONFLICT DO NOTHING`,
		itemID, userID, personIDs,
	)
	if err != nil {
		return postgres.MapError(err, entity, itemID)
	}
	return nil
}

// ArchiveOverdue archives every non-completed, non-archived todo whose due
// date is strictly before cutoff, stamping archived_at = now with reason
// overdue_12h. A nil userID sweeps all users. It is one UPDATE statement,
// so concurrent calls are safe and repeated calls are no-ops.
func (r *Repo) ArchiveOverdue(ctx context.Context, userID *uuid.UUID, cutoff, now time.Time) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	b := postgres.Builder.Update("actionable_items").
		Set("archived_at", now).
		Set("archived_reason", string(domain.ArchiveReasonOverdue)).
		Set("updated_at", now).
		Where(sq.Eq{"archived_at": nil, "completed": false}).
		Where(sq.NotEq{"due_date": nil}).
		Where(sq.Lt{"due_date": cutoff})
	if userID != nil {
		b = b.Where(sq.Eq{"user_id": *userID})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build archive overdue: %w", err)
	}

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("archive overdue items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SetArchived writes the archive pair. Both pointers must be nil (unarchive)
// or both set; the table's CHECK constraint rejects anything else.
func (r *Repo) SetArchived(ctx context.Context, userID, itemID uuid.UUID, at *time.Time, reason *domain.ArchiveReason) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var reasonArg *string
	if reason != nil {
		s := string(*reason)
		reasonArg = &s
	}

	tag, err := q.Exec(ctx, `
		UPDATE actionable_items SET archived_at = $3, archived_reason = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2`,
		itemID, userID, at, reasonArg,
	)
	if err != nil {
		return postgres.MapError(err, entity, itemID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, itemID, domain.ErrNotFound)
	}
	return nil
}

// Complete marks an item done and archives it as user_completed.
func (r *Repo) Complete(ctx context.Context, userID, itemID uuid.UUID, at time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE actionable_items
		SET completed = true, completed_at = $3, archived_at = $3, archived_reason = $4, updated_at = $3
		WHERE id = $1 AND user_id = $2`,
		itemID, userID, at, string(domain.ArchiveReasonUserCompleted),
	)
	if err != nil {
		return postgres.MapError(err, entity, itemID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, itemID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes an item.
func (r *Repo) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM actionable_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return postgres.MapError(err, entity, itemID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, itemID, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an item owned by userID with its people links.
func (r *Repo) GetByID(ctx context.Context, userID, itemID uuid.UUID) (*domain.ActionableItem, error) {
	query, args, err := selectItems().
		Where(sq.Eq{"a.id": itemID, "a.user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get item: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	item, err := scanItem(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, entity, itemID)
	}
	return item, nil
}

// ListActive returns items that are not archived, soonest due first with
// undated items last.
func (r *Repo) ListActive(ctx context.Context, userID uuid.UUID, f domain.ItemFilter) ([]*domain.ActionableItem, error) {
	b := applyFilter(selectItems().Where(sq.Eq{"a.user_id": userID, "a.archived_at": nil}), f).
		OrderBy("a.due_date NULLS LAST", "a.created_at", "a.id")
	return r.list(ctx, b)
}

// ListArchived returns archived items, most recently archived first.
func (r *Repo) ListArchived(ctx context.Context, userID uuid.UUID, f domain.ItemFilter) ([]*domain.ActionableItem, error) {
	b := applyFilter(selectItems().
		Where(sq.Eq{"a.user_id": userID}).
		Where(sq.NotEq{"a.archived_at": nil}), f).
		OrderBy("a.archived_at DESC", "a.id")
	return r.list(ctx, b)
}

// Counts returns the active/archived figures of the dashboard. dayStart and
// dayEnd bound "due today"; now separates overdue from upcoming.
func (r *Repo) Counts(ctx context.Context, userID uuid.UUID, now, dayStart, dayEnd time.Time) (domain.ItemDashboard, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var d domain.ItemDashboard
	err := q.QueryRow(ctx, `
		SELECT
		    count(*) FILTER (WHERE archived_at IS NULL AND kind = 'todo'),
		    count(*) FILTER (WHERE archived_at IS NULL AND kind = 'info'),
		    count(*) FILTER (WHERE archived_at IS NULL AND due_date >= $3 AND due_date < $4),
		    count(*) FILTER (WHERE archived_at IS NULL AND due_date < $2),
		    count(*) FILTER (WHERE archived_at IS NOT NULL)
		FROM actionable_items WHERE user_id = $1`,
		userID, now, dayStart, dayEnd,
	).Scan(&d.ActiveTodos, &d.ActiveInfos, &d.DueToday, &d.Overdue, &d.Archived)
	if err != nil {
		return domain.ItemDashboard{}, fmt.Errorf("count actionable items: %w", err)
	}
	return d, nil
}

func (r *Repo) list(ctx context.Context, b sq.SelectBuilder) ([]*domain.ActionableItem, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list items: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list actionable items: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.ActionableItem, error) {
		return scanItem(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan actionable items: %w", err)
	}
	return out, nil
}

func selectItems() sq.SelectBuilder {
	cols := append(postgres.Prefixed("a.", itemColumns), personIDsColumn)
	return postgres.Builder.Select(cols...).From("actionable_items a")
}

func applyFilter(b sq.SelectBuilder, f domain.ItemFilter) sq.SelectBuilder {
	if f.Kind != nil {
		b = b.Where(sq.Eq{"a.kind": string(*f.Kind)})
	}
	if f.PersonID != nil {
		b = b.Where(sq.Expr("EXISTS (SELECT 1 FROM item_people ip WHERE ip.item_id = a.id AND ip.person_id = ?)", *f.PersonID))
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}
	return b
}

func scanItem(row pgx.Row) (*domain.ActionableItem, error) {
	var (
		it       domain.ActionableItem
		kind     string
		priority string
		reason   *string
	)
	err := row.Scan(
		&it.ID, &it.UserID, &it.Title, &it.Description, &kind, &it.DueDate, &it.ExpiresAt, &priority, &it.Category,
		&it.Completed, &it.CompletedAt, &it.ArchivedAt, &reason, &it.DumpID, &it.CreatedAt, &it.UpdatedAt,
		&it.PersonIDs,
	)
	if err != nil {
		return nil, err
	}

	it.Kind = domain.ItemKind(kind)
	it.Priority = domain.Priority(priority)
	if reason != nil {
		ar := domain.ArchiveReason(*reason)
		it.ArchivedReason = &ar
	}
	return &it, nil
}
