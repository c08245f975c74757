package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const userCols = `id, name, whatsapp_number, preferred_lesson_time, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.WhatsAppNumber, &u.PreferredTime, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByPhone looks a user up by the canonical contact address. Inbound
// webhook sender ids are already in this form, so no conversion happens here.
func (r *Repo) GetByPhone(ctx context.Context, phone string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE whatsapp_number = $1`, phone)
	return scanUser(row)
}

// Upsert creates or refreshes a user keyed by the canonical phone.
// Re-enrollment reactivates a paused user.
func (r *Repo) Upsert(ctx context.Context, name, phone, preferredTime string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, whatsapp_number, preferred_lesson_time)
		VALUES ($1, $2, $3)
		ON CONFLICT (whatsapp_number)
		DO UPDATE SET
			name                  = EXCLUDED.name,
			preferred_lesson_time = EXCLUDED.preferred_lesson_time,
			is_active             = TRUE,
			updated_at            = now()
		RETURNING `+userCols,
		name, phone, preferredTime)
	return scanUser(row)
}

func (r *Repo) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	return err
}

// ListSchedulable returns active users holding an unexpired active subscription.
func (r *Repo) ListSchedulable(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT u.id, u.name, u.whatsapp_number, u.preferred_lesson_time, u.is_active, u.created_at, u.updated_at
		FROM users u
		JOIN subscriptions s ON s.user_id = u.id
		WHERE u.is_active
		  AND s.status = 'active'
		  AND s.expires_at > now()
		ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.WhatsAppNumber, &u.PreferredTime, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ListAll is used by the progress report export.
func (r *Repo) ListAll(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userCols+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.WhatsAppNumber, &u.PreferredTime, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
