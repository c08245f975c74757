package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/messages"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/payments"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/subscriptions"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/users"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/metrics"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/mpesa"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/whatsapp"
)

// ErrPaymentNotFound: nothing to reconcile against. Terminal; the HTTP layer
// still acknowledges so the provider stops retrying.
var ErrPaymentNotFound = errors.New("payments: no payment for correlation id")

type PaymentStore interface {
	GetByCheckoutID(ctx context.Context, checkoutRequestID string) (*payments.Payment, error)
	CompleteIfPending(ctx context.Context, id int64, receipt string, paidAt time.Time) (bool, error)
	FailIfPending(ctx context.Context, id int64, errMsg string) (bool, error)
	AttachSubscription(ctx context.Context, id, subscriptionID int64) error
}

type SubscriptionStore interface {
	GetActive(ctx context.Context, userID int64) (*subscriptions.Subscription, error)
	Create(ctx context.Context, userID int64, plan subscriptions.Plan, amount float64, expiresAt time.Time) (*subscriptions.Subscription, error)
	ExtendExpiry(ctx context.Context, id int64, expiresAt time.Time) error
}

type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*users.User, error)
}

type MessageLog interface {
	Insert(ctx context.Context, userID *int64, phone, msgType, content string, delivered bool) error
}

type Reconciler struct {
	payments PaymentStore
	subs     SubscriptionStore
	users    UserGetter
	msgs     MessageLog
	sender   whatsapp.Sender
	log      *slog.Logger
	now      func() time.Time
}

func NewReconciler(paymentStore PaymentStore, subs SubscriptionStore, userRepo UserGetter,
	msgs MessageLog, sender whatsapp.Sender, log *slog.Logger) *Reconciler {

	return &Reconciler{
		payments: paymentStore, subs: subs, users: userRepo,
		msgs: msgs, sender: sender, log: log, now: time.Now,
	}
}

// Apply reconciles one provider callback. Idempotent on correlation id: the
// pending->terminal transition happens at most once, and a duplicate of an
// already-applied result is a harmless no-op. Callbacks for different
// payments carry no ordering assumptions.
func (r *Reconciler) Apply(ctx context.Context, cb *mpesa.STKCallback) error {
	p, err := r.payments.GetByCheckoutID(ctx, cb.CheckoutRequestID)
	if err != nil {
		return fmt.Errorf("lookup payment: %w", err)
	}
	if p == nil {
		return fmt.Errorf("%w: %s", ErrPaymentNotFound, cb.CheckoutRequestID)
	}

	if !cb.Success() {
		return r.applyFailure(ctx, p, cb.ResultDesc)
	}
	return r.applySuccess(ctx, p, cb)
}

func (r *Reconciler) applySuccess(ctx context.Context, p *payments.Payment, cb *mpesa.STKCallback) error {
	amount, ok := cb.Amount()
	if !ok {
		// optional item missing: fall back to the amount we charged
		amount = p.Amount
	}
	receipt := cb.ReceiptNumber()
	now := r.now()

	transitioned, err := r.payments.CompleteIfPending(ctx, p.ID, receipt, now)
	if err != nil {
		return fmt.Errorf("complete payment: %w", err)
	}
	if !transitioned {
		// duplicate delivery of the same result; already reconciled
		r.log.Info("duplicate payment callback ignored", "checkout_request_id", p.CheckoutRequestID)
		metrics.PaymentsReconciled.WithLabelValues("duplicate").Inc()
		return nil
	}

	subID, expiresAt, err := r.extendSubscription(ctx, p.UserID, amount, now)
	if err != nil {
		return err
	}
	if err := r.payments.AttachSubscription(ctx, p.ID, subID); err != nil {
		return fmt.Errorf("attach subscription: %w", err)
	}

	metrics.PaymentsReconciled.WithLabelValues("completed").Inc()
	r.log.Info("payment completed",
		"checkout_request_id", p.CheckoutRequestID, "receipt", receipt,
		"amount", amount, "expires_at", expiresAt)

	plan := subscriptions.PlanForAmount(amount)
	r.notify(ctx, p.UserID, messages.TypePaymentConfirmation,
		whatsapp.PaymentConfirmation(receipt, amount, planLabel(plan)))
	return nil
}

// extendSubscription applies the paid period additively: from the current
// expiry when the subscription is still running, from now when it lapsed.
func (r *Reconciler) extendSubscription(ctx context.Context, userID int64, amount float64, now time.Time) (int64, time.Time, error) {
	plan := subscriptions.PlanForAmount(amount)

	existing, err := r.subs.GetActive(ctx, userID)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("get subscription: %w", err)
	}

	if existing != nil {
		base := now
		if existing.ExpiresAt.After(now) {
			base = existing.ExpiresAt
		}
		expiresAt := base.Add(plan.Duration())
		if err := r.subs.ExtendExpiry(ctx, existing.ID, expiresAt); err != nil {
			return 0, time.Time{}, fmt.Errorf("extend subscription: %w", err)
		}
		return existing.ID, expiresAt, nil
	}

	expiresAt := now.Add(plan.Duration())
	created, err := r.subs.Create(ctx, userID, plan, amount, expiresAt)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("create subscription: %w", err)
	}
	return created.ID, expiresAt, nil
}

func (r *Reconciler) applyFailure(ctx context.Context, p *payments.Payment, desc string) error {
	transitioned, err := r.payments.FailIfPending(ctx, p.ID, desc)
	if err != nil {
		return fmt.Errorf("fail payment: %w", err)
	}
	if !transitioned {
		r.log.Info("duplicate payment callback ignored", "checkout_request_id", p.CheckoutRequestID)
		metrics.PaymentsReconciled.WithLabelValues("duplicate").Inc()
		return nil
	}

	metrics.PaymentsReconciled.WithLabelValues("failed").Inc()
	r.log.Info("payment failed", "checkout_request_id", p.CheckoutRequestID, "reason", desc)

	name := ""
	if u, err := r.users.GetByID(ctx, p.UserID); err == nil && u != nil {
		name = u.Name
	}
	r.notify(ctx, p.UserID, messages.TypePaymentFailed, whatsapp.PaymentFailure(name, desc))
	return nil
}

// notify sends and logs a payment notification; channel trouble here never
// fails the reconciliation itself.
func (r *Reconciler) notify(ctx context.Context, userID int64, msgType, body string) {
	u, err := r.users.GetByID(ctx, userID)
	if err != nil || u == nil {
		r.log.Error("payment notification: user lookup failed", "user_id", userID, "err", err)
		return
	}

	delivered := true
	if err := r.sender.Send(ctx, u.WhatsAppNumber, body); err != nil {
		delivered = false
		r.log.Error("payment notification send failed", "user_id", userID, "err", err)
	}
	if err := r.msgs.Insert(ctx, &userID, u.WhatsAppNumber, msgType, body, delivered); err != nil {
		r.log.Error("payment notification log failed", "user_id", userID, "err", err)
	}
}

func planLabel(p subscriptions.Plan) string {
	if p == subscriptions.PlanWeekly {
		return "Weekly"
	}
	return "Monthly"
}
