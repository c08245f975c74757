package schedule

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

func (r *Repo) ExistsForDay(ctx context.Context, userID int64, day string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM lesson_schedule WHERE user_id = $1 AND scheduled_on = $2)`,
		userID, day).Scan(&exists)
	return exists, err
}

// Create inserts a pending entry and reports whether a row was actually
// created. The unique (user_id, scheduled_on) index is the real
// one-lesson-per-day guarantee; ExistsForDay is only a fast path, so a
// concurrent scheduler invocation losing this insert is expected and safe.
func (r *Repo) Create(ctx context.Context, userID, lessonID int64, scheduledFor time.Time, day string) (int64, bool, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lesson_schedule (user_id, lesson_id, scheduled_for, scheduled_on)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, scheduled_on) DO NOTHING
		RETURNING id`,
		userID, lessonID, scheduledFor, day).Scan(&id)
	if err != nil {
		// no row returned means the conflict fired
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

// ListDue returns pending entries whose dispatch time has arrived, joined
// with recipient and lesson content.
func (r *Repo) ListDue(ctx context.Context, now time.Time) ([]DueEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ls.id, ls.user_id, ls.lesson_id, ls.scheduled_for, to_char(ls.scheduled_on, 'YYYY-MM-DD'), ls.status,
		       u.name, u.whatsapp_number,
		       l.title, l.content, COALESCE(l.tip, ''), l.duration_minutes, t.title
		FROM lesson_schedule ls
		JOIN users u ON u.id = ls.user_id
		JOIN lessons l ON l.id = ls.lesson_id
		JOIN learning_tracks t ON t.id = l.track_id
		WHERE ls.status = 'pending' AND ls.scheduled_for <= $1
		ORDER BY ls.scheduled_for`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DueEntry
	for rows.Next() {
		var e DueEntry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.LessonID, &e.ScheduledFor, &e.ScheduledOn, &e.Status,
			&e.UserName, &e.WhatsAppNumber,
			&e.LessonTitle, &e.LessonContent, &e.LessonTip, &e.DurationMinutes, &e.TrackTitle,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) MarkSent(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE lesson_schedule SET status = 'sent', sent_at = $2 WHERE id = $1`, id, at)
	return err
}

// MarkFailed closes the entry without a progress row, so the selector
// offers the same lesson again on the next scheduling day.
func (r *Repo) MarkFailed(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE lesson_schedule SET status = 'failed' WHERE id = $1`, id)
	return err
}
