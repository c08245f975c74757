package messages

import "time"

// Type tags in the audit log.
const (
	TypeIncoming            = "incoming"
	TypeResponse            = "response"
	TypeLesson              = "lesson"
	TypeWelcome             = "welcome"
	TypePaymentConfirmation = "payment_confirmation"
	TypePaymentFailed       = "payment_failed"
)

// Message is one row of the channel audit trail. Append-only; the only
// read-back path is the delivery-status update keyed by the most recent row
// for a phone number.
type Message struct {
	ID          int64
	UserID      *int64 // nil when the sender could not be resolved
	PhoneNumber string
	Type        string
	Content     string
	Delivered   bool
	SentAt      time.Time
	UpdatedAt   time.Time
}
