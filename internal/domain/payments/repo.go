package payments

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

const payCols = `id, user_id, subscription_id, amount, phone_number, checkout_request_id,
	status, mpesa_receipt_number, paid_at, error_message, created_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	if err := row.Scan(&p.ID, &p.UserID, &p.SubscriptionID, &p.Amount, &p.PhoneNumber,
		&p.CheckoutRequestID, &p.Status, &p.MpesaReceiptNumber, &p.PaidAt, &p.ErrorMessage, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, userID int64, amount float64, phone, checkoutRequestID string) (*Payment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO payments (user_id, amount, phone_number, checkout_request_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+payCols,
		userID, amount, phone, checkoutRequestID)
	return scanPayment(row)
}

func (r *Repo) GetByCheckoutID(ctx context.Context, checkoutRequestID string) (*Payment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+payCols+` FROM payments WHERE checkout_request_id = $1`, checkoutRequestID)
	return scanPayment(row)
}

// CompleteIfPending performs the pending -> completed transition. The status
// guard in the WHERE clause makes duplicate callbacks harmless: the second
// one affects zero rows and the caller stops there.
func (r *Repo) CompleteIfPending(ctx context.Context, id int64, receipt string, paidAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payments
		SET status = 'completed', mpesa_receipt_number = $2, paid_at = $3
		WHERE id = $1 AND status = 'pending'`,
		id, receipt, paidAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// FailIfPending performs the pending -> failed transition, same guard.
func (r *Repo) FailIfPending(ctx context.Context, id int64, errMsg string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payments
		SET status = 'failed', error_message = $2
		WHERE id = $1 AND status = 'pending'`,
		id, errMsg)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) AttachSubscription(ctx context.Context, id, subscriptionID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE payments SET subscription_id = $2 WHERE id = $1`, id, subscriptionID)
	return err
}
