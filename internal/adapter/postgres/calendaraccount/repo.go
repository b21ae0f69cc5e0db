// Package calendaraccount stores the external calendar credentials linked
// by each user.
package calendaraccount

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/mindump-backend/internal/adapter/postgres"
	"github.com/heartmarshall/mindump-backend/internal/domain"
)

const entity = "calendar_account"

// Repo provides calendar account persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new calendar account repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Upsert links or relinks the user's calendar.
func (r *Repo) Upsert(ctx context.Context, acc *domain.CalendarAccount) (*domain.CalendarAccount, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now().UTC()
	}

	var out domain.CalendarAccount
	err := q.QueryRow(ctx, `
		INSERT INTO calendar_accounts (user_id, provider, calendar_id, refresh_token, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
		    provider = EXCLUDED.provider,
		    calendar_id = EXCLUDED.calendar_id,
		    refresh_token = EXCLUDED.refresh_token
		RETURNING user_id, provider, calendar_id, refresh_token, created_at`,
		acc.UserID, acc.Provider, acc.CalendarID, acc.RefreshToken, acc.CreatedAt,
	).Scan(&out.UserID, &out.Provider, &out.CalendarID, &out.RefreshToken, &out.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, entity, acc.UserID)
	}
	return &out, nil
}

// Get returns the user's linked account or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, userID uuid.UUID) (*domain.CalendarAccount, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var out domain.CalendarAccount
	err := q.QueryRow(ctx, `
		SELECT user_id, provider, calendar_id, refresh_token, created_at
		FROM calendar_accounts WHERE user_id = $1`,
		userID,
	).Scan(&out.UserID, &out.Provider, &out.CalendarID, &out.RefreshToken, &out.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, entity, userID)
	}
	return &out, nil
}

// Delete unlinks the user's account.
func (r *Repo) Delete(ctx context.Context, userID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM calendar_accounts WHERE user_id = $1`, userID)
	if err != nil {
		return postgres.MapError(err, entity, userID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, userID, domain.ErrNotFound)
	}
	return nil
}
