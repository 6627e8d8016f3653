package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"pawmart-be/internal/cart"
	"pawmart-be/internal/delivery"
	"pawmart-be/internal/logger"
	"pawmart-be/internal/order"
	"pawmart-be/internal/product"
	"pawmart-be/internal/review"
	"pawmart-be/internal/user"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed", zap.Error(err))
		writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps the business-rule sentinels onto HTTP statuses. None
// of these are retried; they are rule violations, not faults.
func statusFor(err error) int {
	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, cart.ErrCartItemNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, delivery.ErrDeliveryNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, order.ErrUnauthorized),
		errors.Is(err, product.ErrUnauthorized),
		errors.Is(err, delivery.ErrUnauthorized),
		errors.Is(err, user.ErrUserBanned):
		return http.StatusForbidden

	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, order.ErrIllegalTransition),
		errors.Is(err, order.ErrStatusConflict),
		errors.Is(err, delivery.ErrIllegalTransition),
		errors.Is(err, delivery.ErrAlreadyAssigned),
		errors.Is(err, product.ErrInsufficientStock),
		errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, user.ErrEmailExists),
		errors.Is(err, review.ErrNotEligible):
		return http.StatusConflict

	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrNotPurchasable),
		errors.Is(err, delivery.ErrNotARider):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
