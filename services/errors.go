package services

import (
	"errors"
	"net/http"
)

// Error kinds. A *CheckoutError matches its kind with errors.Is.
var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrGateway            = errors.New("gateway error")
	ErrGatewayTimeout     = errors.New("gateway timeout")
	ErrMissingFields      = errors.New("missing fields")
	ErrSignatureMismatch  = errors.New("signature mismatch")
	ErrPersistence        = errors.New("persistence error")
	ErrPersistenceTimeout = errors.New("persistence timeout")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
)

// CheckoutError is a classified failure with a client-facing message
type CheckoutError struct {
	Kind    error
	Message string
	// StatusCode is the upstream provider status, when known
	StatusCode int
	Err        error
}

func (e *CheckoutError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CheckoutError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError classifies cause under kind with a client-facing message
func NewError(kind error, message string, cause error) *CheckoutError {
	return &CheckoutError{Kind: kind, Message: message, Err: cause}
}

// HTTPStatus maps an error to the status code reported to clients
func HTTPStatus(err error) int {
	var ce *CheckoutError
	if errors.As(err, &ce) && errors.Is(ce.Kind, ErrGateway) {
		if ce.StatusCode >= 400 && ce.StatusCode <= 599 {
			return ce.StatusCode
		}
		return http.StatusInternalServerError
	}

	switch {
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrSignatureMismatch):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrGatewayTimeout), errors.Is(err, ErrPersistenceTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message of err
func Message(err error) string {
	var ce *CheckoutError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return "Server error"
}
