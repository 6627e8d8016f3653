package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pawmart-be/internal/cart"
	"pawmart-be/internal/delivery"
	"pawmart-be/internal/order"
	"pawmart-be/internal/product"
	"pawmart-be/internal/review"
	"pawmart-be/internal/user"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{order.ErrOrderNotFound, http.StatusNotFound},
		{product.ErrProductNotFound, http.StatusNotFound},
		{cart.ErrCartItemNotFound, http.StatusNotFound},
		{delivery.ErrDeliveryNotFound, http.StatusNotFound},
		{user.ErrUserNotFound, http.StatusNotFound},
		{order.ErrUnauthorized, http.StatusForbidden},
		{delivery.ErrUnauthorized, http.StatusForbidden},
		{user.ErrUserBanned, http.StatusForbidden},
		{user.ErrInvalidCredentials, http.StatusUnauthorized},
		{order.ErrIllegalTransition, http.StatusConflict},
		{order.ErrStatusConflict, http.StatusConflict},
		{delivery.ErrAlreadyAssigned, http.StatusConflict},
		{product.ErrInsufficientStock, http.StatusConflict},
		{user.ErrEmailExists, http.StatusConflict},
		{review.ErrNotEligible, http.StatusConflict},
		{order.ErrEmptyCart, http.StatusBadRequest},
		{cart.ErrInvalidQuantity, http.StatusBadRequest},
		{delivery.ErrNotARider, http.StatusBadRequest},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestStatusFor_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("transition rejected: %w", order.ErrIllegalTransition)
	assert.Equal(t, http.StatusConflict, statusFor(wrapped))
}

func TestWriteError(t *testing.T) {
	t.Run("BusinessErrorEchoesMessage", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/orders/1", nil)

		writeError(rec, req, order.ErrOrderNotFound)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error": "order not found"}`, rec.Body.String())
	})

	t.Run("InternalErrorIsMasked", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/orders/1", nil)

		writeError(rec, req, errors.New("pq: connection refused on 10.0.0.3"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error": "internal server error"}`, rec.Body.String())
	})
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]int64{"id": 42})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id": 42}`, rec.Body.String())
}
