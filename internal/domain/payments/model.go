package payments

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Payment is created in pending when an STK push is initiated and reaches
// exactly one terminal status when the provider calls back. Keyed externally
// by the provider's CheckoutRequestID.
type Payment struct {
	ID                 int64
	UserID             int64
	SubscriptionID     *int64
	Amount             float64
	PhoneNumber        string
	CheckoutRequestID  string
	Status             Status
	MpesaReceiptNumber *string
	PaidAt             *time.Time
	ErrorMessage       *string
	CreatedAt          time.Time
}
