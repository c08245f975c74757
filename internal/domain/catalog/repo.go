package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) ListTracks(ctx context.Context) ([]Track, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, total_lessons FROM learning_tracks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Track
	for rows.Next() {
		var t Track
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.TotalLessons); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListEnrolledLessons returns every lesson of the user's active enrollments,
// joined with the track title, ordered by (lesson_number, id). That order is
// the progression order the selector relies on.
func (r *Repo) ListEnrolledLessons(ctx context.Context, userID int64) ([]TrackLesson, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.id, l.track_id, l.lesson_number, l.title, l.content, COALESCE(l.tip, ''), l.duration_minutes, t.title
		FROM lessons l
		JOIN learning_tracks t ON t.id = l.track_id
		JOIN user_enrollments e ON e.track_id = l.track_id
		WHERE e.user_id = $1 AND e.is_active
		ORDER BY l.lesson_number, l.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrackLesson
	for rows.Next() {
		var l TrackLesson
		if err := rows.Scan(&l.ID, &l.TrackID, &l.LessonNumber, &l.Title, &l.Content, &l.Tip, &l.DurationMinutes, &l.TrackTitle); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) CountActiveEnrollments(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_enrollments WHERE user_id = $1 AND is_active`, userID).Scan(&n)
	return n, err
}

// Enroll activates a (user, track) pair, reviving a deactivated enrollment
// rather than duplicating it.
func (r *Repo) Enroll(ctx context.Context, userID, trackID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_enrollments (user_id, track_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, track_id)
		DO UPDATE SET is_active = TRUE`, userID, trackID)
	return err
}

// Deactivate soft-removes an enrollment; rows are never deleted.
func (r *Repo) Deactivate(ctx context.Context, userID, trackID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE user_enrollments SET is_active = FALSE WHERE user_id = $1 AND track_id = $2`,
		userID, trackID)
	return err
}

// TrackTitles resolves titles for the given track ids, in the stored order.
func (r *Repo) TrackTitles(ctx context.Context, trackIDs []int64) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT title FROM learning_tracks WHERE id = ANY($1) ORDER BY id`, trackIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}
