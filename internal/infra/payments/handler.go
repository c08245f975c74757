package payments

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/mpesa"
)

// Handler is the HTTP surface for the provider's result callbacks.
type Handler struct {
	reconciler *Reconciler
	log        *slog.Logger
}

func NewHandler(reconciler *Reconciler, log *slog.Logger) *Handler {
	return &Handler{reconciler: reconciler, log: log}
}

type callbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	cb, err := mpesa.ParseCallback(body)
	if err != nil {
		h.log.Error("malformed mpesa callback", "err", err)
		http.Error(w, "invalid callback format", http.StatusBadRequest)
		return
	}

	if err := h.reconciler.Apply(r.Context(), cb); err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			// terminal: acknowledge so the provider stops retrying
			h.log.Error("payment not found for callback", "checkout_request_id", cb.CheckoutRequestID)
			h.ack(w, callbackAck{ResultCode: 1, ResultDesc: "payment not found"})
			return
		}
		h.log.Error("callback reconciliation failed", "checkout_request_id", cb.CheckoutRequestID, "err", err)
		http.Error(w, "reconciliation failed", http.StatusInternalServerError)
		return
	}

	h.ack(w, callbackAck{ResultCode: 0, ResultDesc: "accepted"})
}

func (h *Handler) ack(w http.ResponseWriter, a callbackAck) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(a)
}
