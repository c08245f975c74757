package schedule

import "time"

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

type Entry struct {
	ID           int64
	UserID       int64
	LessonID     int64
	ScheduledFor time.Time
	ScheduledOn  string // local calendar day, "2006-01-02"
	SentAt       *time.Time
	Status       Status
}

// DueEntry is a pending entry joined with what the dispatch sweep needs to
// send it: the recipient and the lesson body.
type DueEntry struct {
	Entry
	UserName        string
	WhatsAppNumber  string
	LessonTitle     string
	LessonContent   string
	LessonTip       string
	TrackTitle      string
	DurationMinutes int
}
