package progress

import "time"

// Record is the delivery-completion ledger: one row means one lesson was
// delivered to (and counted for) one user. Append-only.
type Record struct {
	ID          int64
	UserID      int64
	LessonID    int64
	CompletedAt time.Time
	Score       *int
}
