package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid amount", NewError(ErrInvalidAmount, "bad amount", nil), http.StatusBadRequest},
		{"invalid request", NewError(ErrInvalidRequest, "bad body", nil), http.StatusBadRequest},
		{"missing fields", NewError(ErrMissingFields, "missing", nil), http.StatusBadRequest},
		{"signature mismatch", NewError(ErrSignatureMismatch, "mismatch", nil), http.StatusBadRequest},
		{"unauthorized", NewError(ErrUnauthorized, "no token", nil), http.StatusUnauthorized},
		{"not found", NewError(ErrNotFound, "Order not found", nil), http.StatusNotFound},
		{"gateway timeout", NewError(ErrGatewayTimeout, "slow", nil), http.StatusGatewayTimeout},
		{"persistence timeout", NewError(ErrPersistenceTimeout, "slow", nil), http.StatusGatewayTimeout},
		{"persistence", NewError(ErrPersistence, "store", nil), http.StatusInternalServerError},
		{"gateway with upstream status", &CheckoutError{Kind: ErrGateway, StatusCode: 502}, http.StatusBadGateway},
		{"gateway without status", &CheckoutError{Kind: ErrGateway}, http.StatusInternalServerError},
		{"gateway with non-error status", &CheckoutError{Kind: ErrGateway, StatusCode: 200}, http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("handler: %w", NewError(ErrNotFound, "x", nil)), http.StatusNotFound},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestCheckoutError_MatchesKindAndCause(t *testing.T) {
	cause := errors.New("socket closed")
	err := NewError(ErrPersistence, "Failed to store the order.", cause)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrGateway)
	assert.Equal(t, "Failed to store the order.: socket closed", err.Error())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Order not found", Message(NewError(ErrNotFound, "Order not found", nil)))
	assert.Equal(t, "Server error", Message(errors.New("internal detail")))
	assert.Equal(t, "Server error", Message(&CheckoutError{Kind: ErrPersistence}))
}
