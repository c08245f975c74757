package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const subCols = `id, user_id, plan_type, amount, started_at, expires_at, status`

// GetActive returns the user's current active subscription, expired or not
// by wall clock; callers that care compare ExpiresAt themselves. At most one
// row is expected, the newest wins if history left more than one.
func (r *Repo) GetActive(ctx context.Context, userID int64) (*Subscription, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+subCols+`
		FROM subscriptions
		WHERE user_id = $1 AND status = 'active'
		ORDER BY expires_at DESC
		LIMIT 1`, userID)

	var s Subscription
	if err := row.Scan(&s.ID, &s.UserID, &s.PlanType, &s.Amount, &s.StartedAt, &s.ExpiresAt, &s.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repo) Create(ctx context.Context, userID int64, plan Plan, amount float64, expiresAt time.Time) (*Subscription, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (user_id, plan_type, amount, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING `+subCols,
		userID, plan, amount, expiresAt)

	var s Subscription
	if err := row.Scan(&s.ID, &s.UserID, &s.PlanType, &s.Amount, &s.StartedAt, &s.ExpiresAt, &s.Status); err != nil {
		return nil, err
	}
	return &s, nil
}

// ExtendExpiry moves the expiry forward and reactivates the row. The new
// expiry is computed by the caller as max(now, current expiry) + plan
// duration, so paid-for time is never lost.
func (r *Repo) ExtendExpiry(ctx context.Context, id int64, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE subscriptions SET expires_at = $2, status = 'active' WHERE id = $1`,
		id, expiresAt)
	return err
}
