package subscriptions

import "time"

type Plan string

const (
	PlanWeekly  Plan = "weekly"
	PlanMonthly Plan = "monthly"
)

// Duration is the paid-for period a single payment of this plan buys.
func (p Plan) Duration() time.Duration {
	if p == PlanWeekly {
		return 7 * 24 * time.Hour
	}
	return 30 * 24 * time.Hour
}

// PlanForAmount derives the tier from the paid amount: KES 50 and below is
// the weekly plan, anything above is monthly.
func PlanForAmount(amount float64) Plan {
	if amount <= 50 {
		return PlanWeekly
	}
	return PlanMonthly
}

type Subscription struct {
	ID        int64
	UserID    int64
	PlanType  Plan
	Amount    float64
	StartedAt time.Time
	ExpiresAt time.Time
	Status    string // active | expired
}
