package progress

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Record appends a completion row. The unique (user_id, lesson_id) index
// makes a repeat insert a no-op, so a concurrent NEXT command and scheduler
// pass cannot double-count a lesson.
func (r *Repo) Record(ctx context.Context, userID, lessonID int64, completedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_progress (user_id, lesson_id, completed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, lesson_id) DO NOTHING`,
		userID, lessonID, completedAt)
	return err
}

func (r *Repo) CompletedIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT lesson_id FROM user_progress WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

func (r *Repo) CountCompleted(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_progress WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}
