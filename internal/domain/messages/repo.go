package messages

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Insert appends to the audit log. Failed sends are recorded with
// delivered=false rather than omitted.
func (r *Repo) Insert(ctx context.Context, userID *int64, phone, msgType, content string, delivered bool) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO whatsapp_messages (user_id, phone_number, message_type, content, delivered)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, phone, msgType, content, delivered)
	return err
}

// MarkDeliveredLatest applies a channel status update to the most recent
// outbound row for the recipient. Best-effort by design: status callbacks
// carry no message correlation beyond the address.
func (r *Repo) MarkDeliveredLatest(ctx context.Context, phone string, delivered bool, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE whatsapp_messages
		SET delivered = $2, updated_at = $3
		WHERE id = (
			SELECT id FROM whatsapp_messages
			WHERE phone_number = $1 AND message_type <> 'incoming'
			ORDER BY sent_at DESC
			LIMIT 1
		)`, phone, delivered, at)
	return err
}
