package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"server/internal/middleware"
	"server/internal/payment"
)

const (
	// purchaseCredits is granted per verified order of at least minOrderUSD.
	purchaseCredits = 200
	minOrderUSD     = 0.99
)

type purchaseConfirmRequest struct {
	OrderID string `json:"orderId"`
}

// PurchaseConfirm verifies the order with the payment processor and grants
// credits. Credits are only granted after the processor confirms the order
// reached a chargeable state for the expected amount.
func (a *App) PurchaseConfirm(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromContext(r.Context())

	var req purchaseConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST")
		return
	}
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	if a.Verifier == nil {
		a.error(w, http.StatusInternalServerError, "SERVER_MISCONFIGURED")
		return
	}

	order, err := a.Verifier.VerifyOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			a.error(w, http.StatusInternalServerError, "SERVER_MISCONFIGURED")
			return
		}
		a.Logger.Error().Err(err).Str("order_id", orderID).Msg("paypal verify failed")
		a.error(w, http.StatusBadGateway, "PAYMENT_VERIFY_FAILED")
		return
	}
	if !order.Approved() {
		a.error(w, http.StatusBadRequest, "PAYMENT_NOT_COMPLETED")
		return
	}
	if !order.AmountAtLeast("USD", minOrderUSD) {
		a.error(w, http.StatusBadRequest, "INVALID_AMOUNT")
		return
	}

	balance, err := a.Credits.Add(r.Context(), email, purchaseCredits, map[string]any{
		"orderId":  order.ID,
		"currency": order.Currency,
		"value":    order.Value,
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("email", email).Str("order_id", orderID).Msg("credit grant failed")
		a.error(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}

	// The marker only steers the quota hint for this client; a failed write
	// must not fail a purchase that already granted credits.
	if err := a.Paid.Mark(r.Context(), middleware.ClientIP(r)); err != nil {
		a.Logger.Warn().Err(err).Msg("paid marker write failed")
	}

	a.Logger.Info().Str("email", email).Str("order_id", orderID).Int64("balance", balance).Msg("purchase confirmed")

	// The effective limit after a purchase is the new balance itself; the
	// credit path admits as long as any balance remains.
	a.json(w, http.StatusOK, map[string]any{
		"ok":               true,
		"limit":            balance,
		"remaining":        balance,
		"remainingCredits": balance,
	})
}
