package dump

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/heartmarshall/mindump-backend/internal/adapter/postgres"
	"github.com/heartmarshall/mindump-backend/internal/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

func normalize(f *domain.DumpHistoryFilter) {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// ListHistory returns the user's dumps newest first together with what each
// produced: an event id, an inbox entry id, or neither. It also returns the
// total number of dumps matching the filter.
func (r *Repo) ListHistory(ctx context.Context, userID uuid.UUID, f domain.DumpHistoryFilter) ([]*domain.DumpWithOutcome, int, error) {
	normalize(&f)
	q := postgres.QuerierFromCtx(ctx, r.pool)

	where := sq.And{sq.Eq{"d.user_id": userID}}
	if f.Processed != nil {
		if *f.Processed {
			where = append(where, sq.NotEq{"d.processed_at": nil})
		} else {
			where = append(where, sq.Eq{"d.processed_at": nil})
		}
	}
	if f.Source != nil {
		where = append(where, sq.Eq{"d.source": string(*f.Source)})
	}

	countSQL, countArgs, err := postgres.Builder.
		Select("count(*)").From("dumps d").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count dumps: %w", err)
	}

	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count dumps: %w", err)
	}

	listSQL, listArgs, err := postgres.Builder.
		Select(
			"d.id", "d.user_id", "d.source", "d.text_content", "d.media_ref",
			"d.embedding::text", "d.created_at", "d.processed_at",
			"e.id", "i.id",
		).
		From("dumps d").
		LeftJoin("events e ON e.dump_id = d.id").
		LeftJoin("inbox_entries i ON i.dump_id = d.id").
		Where(where).
		OrderBy("d.created_at DESC", "d.id").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list dumps: %w", err)
	}

	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list dumps: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.DumpWithOutcome, error) {
		var (
			d      domain.DumpWithOutcome
			source string
			emb    pgtype.Text
		)
		err := row.Scan(
			&d.ID, &d.UserID, &source, &d.Text, &d.MediaRef,
			&emb, &d.CreatedAt, &d.ProcessedAt,
			&d.Outcome.EventID, &d.Outcome.InboxEntryID,
		)
		if err != nil {
			return nil, err
		}
		d.Source = domain.DumpSource(source)
		if d.Embedding, err = postgres.ParseVector(emb); err != nil {
			return nil, err
		}
		return &d, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan dumps: %w", err)
	}

	return out, total, nil
}
