package catalog

import "time"

type Track struct {
	ID           int64
	Title        string
	Description  string
	TotalLessons int
}

type Lesson struct {
	ID              int64
	TrackID         int64
	LessonNumber    int
	Title           string
	Content         string
	Tip             string // empty when the lesson carries no tip
	DurationMinutes int
}

// TrackLesson is a lesson joined with its track title, the shape the
// progression selector and message templates work with.
type TrackLesson struct {
	Lesson
	TrackTitle string
}

type Enrollment struct {
	ID         int64
	UserID     int64
	TrackID    int64
	IsActive   bool
	EnrolledAt time.Time
}
