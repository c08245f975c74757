// Package payments hosts the charge orchestrator and the callback
// reconciliation engine for the M-Pesa flow.
package payments

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/payments"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/mpesa"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/phone"
)

type STKPusher interface {
	InitiateSTKPush(ctx context.Context, phoneCanonical string, amount int64, reference, description, callbackURL string) (*mpesa.STKResponse, error)
}

type PaymentCreator interface {
	Create(ctx context.Context, userID int64, amount float64, phone, checkoutRequestID string) (*payments.Payment, error)
}

type Service struct {
	pusher      STKPusher
	payments    PaymentCreator
	callbackURL string
	log         *slog.Logger
}

func NewService(pusher STKPusher, paymentRepo PaymentCreator, callbackURL string, log *slog.Logger) *Service {
	return &Service{pusher: pusher, payments: paymentRepo, callbackURL: callbackURL, log: log}
}

// Charge initiates an STK push and records the pending payment keyed by the
// provider's correlation id. Fire-and-forget from the caller's view: the
// outcome arrives later through the reconciliation engine.
func (s *Service) Charge(ctx context.Context, userID int64, rawPhone string, amount float64, reference, description string) (string, error) {
	canonical, err := phone.Normalize(rawPhone)
	if err != nil {
		return "", err
	}

	resp, err := s.pusher.InitiateSTKPush(ctx, canonical, int64(math.Round(amount)), reference, description, s.callbackURL)
	if err != nil {
		return "", fmt.Errorf("initiate stk push: %w", err)
	}

	if _, err := s.payments.Create(ctx, userID, amount, canonical, resp.CheckoutRequestID); err != nil {
		return "", fmt.Errorf("persist payment: %w", err)
	}

	s.log.Info("stk push initiated",
		"user_id", userID, "amount", amount, "checkout_request_id", resp.CheckoutRequestID)
	return resp.CheckoutRequestID, nil
}
