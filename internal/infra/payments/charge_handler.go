package payments

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/phone"
)

// ChargeHandler starts an STK push for a subscriber. The response carries the
// correlation id; the actual result lands later on the callback route.
type ChargeHandler struct {
	svc *Service
	log *slog.Logger
}

func NewChargeHandler(svc *Service, log *slog.Logger) *ChargeHandler {
	return &ChargeHandler{svc: svc, log: log}
}

type chargeRequest struct {
	UserID int64   `json:"user_id"`
	Phone  string  `json:"phone"`
	Amount float64 `json:"amount"`
}

func (h *ChargeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req chargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	checkoutID, err := h.svc.Charge(r.Context(), req.UserID, req.Phone, req.Amount,
		"SkillBoost", "SkillBoost subscription")
	if err != nil {
		if errors.Is(err, phone.ErrInvalidPhone) {
			http.Error(w, "invalid phone number", http.StatusBadRequest)
			return
		}
		h.log.Error("charge failed", "user_id", req.UserID, "err", err)
		http.Error(w, "charge failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"checkout_request_id": checkoutID})
}
