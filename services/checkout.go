// Package services holds the checkout orchestration: payment intent creation,
// payment verification and order recording.
package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"brilliora/config"
	"brilliora/gateway"
	"brilliora/metrics"
	"brilliora/models"
	"brilliora/repository"
	"brilliora/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultCurrency = "INR"
	InvoicePath     = "/invoice"
)

// AttemptState tracks one checkout attempt. REJECTED is terminal; a retry
// needs a new intent.
type AttemptState string

const (
	StateIntentRequested AttemptState = "INTENT_REQUESTED"
	StateIntentCreated   AttemptState = "INTENT_CREATED"
	StateVerifying       AttemptState = "VERIFYING"
	StateVerified        AttemptState = "VERIFIED"
	StateOrderRecorded   AttemptState = "ORDER_RECORDED"
	StateRejected        AttemptState = "REJECTED"
)

// PaymentGateway is the part of the gateway adapter the orchestrator uses
type PaymentGateway interface {
	Credentials() config.Credentials
	CreateIntent(ctx context.Context, amountMajor float64, currency string, meta gateway.IntentMetadata) (*models.PaymentIntent, error)
	VerifySignature(intentID, paymentID, signature, secret string) bool
}

type CheckoutOptions struct {
	StoreTimeout time.Duration
	Logger       *slog.Logger
}

// CheckoutService coordinates intent creation, verification and order
// persistence. It holds no state between calls; the intent id round-trips
// through the client.
type CheckoutService struct {
	gateway      PaymentGateway
	orders       repository.OrderRepository
	storeTimeout time.Duration
	logger       *slog.Logger
}

func NewCheckoutService(gw PaymentGateway, orders repository.OrderRepository, opts CheckoutOptions) *CheckoutService {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &CheckoutService{
		gateway:      gw,
		orders:       orders,
		storeTimeout: opts.StoreTimeout,
		logger:       opts.Logger,
	}
}

// CreatePaymentIntent validates amount (major units) and asks the gateway for
// an intent. Nothing is persisted.
func (s *CheckoutService) CreatePaymentIntent(ctx context.Context, userID string, amount float64, currency string) (*models.PaymentIntent, error) {
	log := s.logger.With("user_id", userID)
	log.Debug("checkout transition", "state", StateIntentRequested, "amount", amount)

	if currency == "" {
		currency = DefaultCurrency
	}
	mode := metrics.Mode(!s.gateway.Credentials().Configured())

	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		metrics.CheckoutIntentsTotal.WithLabelValues(mode, "invalid_amount").Inc()
		return nil, invalidAmount(nil)
	}

	intent, err := s.gateway.CreateIntent(ctx, amount, currency, gateway.IntentMetadata{UserID: userID})
	if err != nil {
		cerr := classifyGatewayError(err)
		metrics.CheckoutIntentsTotal.WithLabelValues(mode, "failed").Inc()
		log.Warn("payment intent not created", "error", err)
		return nil, cerr
	}

	metrics.CheckoutIntentsTotal.WithLabelValues(metrics.Mode(intent.Mock), "created").Inc()
	log.Debug("checkout transition", "state", StateIntentCreated, "intent_id", intent.ID, "mock", intent.Mock)
	return intent, nil
}

// VerifyRequest is the client's confirmation of a payment plus the order
// snapshot to record. Optional amounts are nil when absent.
type VerifyRequest struct {
	UserID          primitive.ObjectID
	IntentID        string
	PaymentID       string
	Signature       string
	AmountMinor     *int64
	Items           []models.OrderItem
	Subtotal        *float64
	Total           *float64
	ShippingAddress models.ShippingAddress
}

type VerifyResult struct {
	OrderID     string
	InvoicePath string
	Order       *models.Order
	Mock        bool
	Message     string
}

// VerifyAndRecordOrder verifies the payment (or accepts it in mock mode) and
// records a new order. An order is never written before verification
// succeeds. Repeated calls with the same input record separate orders.
func (s *CheckoutService) VerifyAndRecordOrder(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	creds := s.gateway.Credentials()
	mock := !creds.Configured()
	mode := metrics.Mode(mock)
	log := s.logger.With("user_id", req.UserID.Hex(), "intent_id", req.IntentID, "mock", mock)
	log.Debug("checkout transition", "state", StateVerifying)

	total := resolveTotal(req.Total, req.AmountMinor)

	if !mock {
		if req.IntentID == "" || req.PaymentID == "" || req.Signature == "" {
			metrics.CheckoutVerificationsTotal.WithLabelValues(mode, "missing_fields").Inc()
			log.Warn("checkout transition", "state", StateRejected, "reason", "missing verification fields")
			return nil, NewError(ErrMissingFields, "Missing Razorpay payment verification fields.", nil)
		}
		if !s.gateway.VerifySignature(req.IntentID, req.PaymentID, req.Signature, creds.KeySecret) {
			metrics.CheckoutVerificationsTotal.WithLabelValues(mode, "signature_mismatch").Inc()
			log.Warn("checkout transition", "state", StateRejected, "reason", "signature mismatch", "payment_id", req.PaymentID)
			return nil, NewError(ErrSignatureMismatch, "Invalid Razorpay signature. Payment verification failed.", nil)
		}
	}
	log.Debug("checkout transition", "state", StateVerified)

	subtotal := total
	if req.Subtotal != nil {
		subtotal = *req.Subtotal
	}
	items := req.Items
	if items == nil {
		items = []models.OrderItem{}
	}

	order := &models.Order{
		UserID:          req.UserID,
		Items:           items,
		Subtotal:        subtotal,
		Total:           total,
		Status:          models.StatusProcessing,
		ShippingAddress: req.ShippingAddress,
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.orders.Create(storeCtx, order); err != nil {
		metrics.CheckoutVerificationsTotal.WithLabelValues(mode, "persistence_failed").Inc()
		if !mock {
			// The provider has already captured the payment.
			metrics.OrphanedPaymentsTotal.Inc()
			log.Error("verified payment has no order, reconcile manually",
				"payment_id", req.PaymentID, "total", total, "error", err)
		} else {
			log.Error("order not stored", "error", err)
		}
		if repository.IsTimeout(err) {
			return nil, NewError(ErrPersistenceTimeout, "Timed out while storing the order.", err)
		}
		return nil, NewError(ErrPersistence, "Failed to store the order.", err)
	}

	metrics.CheckoutVerificationsTotal.WithLabelValues(mode, "order_recorded").Inc()
	log.Info("checkout transition", "state", StateOrderRecorded, "order_id", order.ID.Hex(), "total", total)

	message := "Payment verified and order stored successfully."
	if mock {
		message = "Mock payment accepted and order stored successfully."
	}
	return &VerifyResult{
		OrderID:     order.ID.Hex(),
		InvoicePath: InvoicePath,
		Order:       order,
		Mock:        mock,
		Message:     message,
	}, nil
}

// resolveTotal prefers the explicit total, then the intent amount converted
// from minor units, then zero.
func resolveTotal(total *float64, amountMinor *int64) float64 {
	if total != nil {
		return *total
	}
	if amountMinor != nil && *amountMinor > 0 {
		return utils.FromMinorUnits(*amountMinor)
	}
	return 0
}

func invalidAmount(cause error) *CheckoutError {
	return NewError(ErrInvalidAmount, "A valid positive amount is required to create a Razorpay order.", cause)
}

func classifyGatewayError(err error) *CheckoutError {
	var gwErr *gateway.GatewayError
	switch {
	case errors.Is(err, gateway.ErrInvalidAmount):
		return invalidAmount(err)
	case errors.Is(err, gateway.ErrGatewayTimeout):
		return NewError(ErrGatewayTimeout, "Payment gateway timed out. Please try again.", err)
	case errors.As(err, &gwErr):
		msg := gwErr.Message
		if msg == "" {
			msg = "Unable to create Razorpay order."
		}
		return &CheckoutError{Kind: ErrGateway, Message: msg, StatusCode: gwErr.StatusCode, Err: err}
	default:
		return NewError(ErrGateway, "Unable to create Razorpay order.", err)
	}
}
