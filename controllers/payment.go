package controllers

import (
	"math"
	"net/http"

	"brilliora/models"
	"brilliora/services"
	"brilliora/utils"
)

// PaymentController exposes the checkout flow
type PaymentController struct {
	Checkout *services.CheckoutService
	Mailer   utils.Mailer
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(checkout *services.CheckoutService, mailer utils.Mailer) *PaymentController {
	return &PaymentController{
		Checkout: checkout,
		Mailer:   mailer,
	}
}

type createOrderRequest struct {
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency"`
}

type createOrderResponse struct {
	Message string `json:"message"`
	*models.PaymentIntent
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string                  `json:"razorpayOrderId"`
	RazorpayPaymentID string                  `json:"razorpayPaymentId"`
	RazorpaySignature string                  `json:"razorpaySignature"`
	Amount            *float64                `json:"amount"`
	Items             []models.OrderItem      `json:"items"`
	Subtotal          *float64                `json:"subtotal"`
	Total             *float64                `json:"total"`
	ShippingAddress   *models.ShippingAddress `json:"shippingAddress"`
}

type verifyPaymentResponse struct {
	Message     string        `json:"message"`
	OrderID     string        `json:"orderId"`
	InvoicePath string        `json:"invoicePath"`
	Order       *models.Order `json:"order"`
}

// CreateOrder creates a payment intent for the amount in major units
func (pc *PaymentController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, _, ok := currentUser(r)
	if !ok {
		respondUnauthorized(w)
		return
	}

	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil || req.Amount == nil {
		respondError(w, http.StatusBadRequest, "A valid positive amount is required to create a Razorpay order.")
		return
	}

	intent, err := pc.Checkout.CreatePaymentIntent(r.Context(), claims.UserID, *req.Amount, req.Currency)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	message := "Test Razorpay order created successfully."
	if intent.Mock {
		message = "Mock Razorpay order created (no keys configured)."
	}
	respondJSON(w, http.StatusOK, createOrderResponse{Message: message, PaymentIntent: intent})
}

// Verify confirms a payment and records the order
func (pc *PaymentController) Verify(w http.ResponseWriter, r *http.Request) {
	claims, userID, ok := currentUser(r)
	if !ok {
		respondUnauthorized(w)
		return
	}

	var req verifyPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items, err := normalizeItems(req.Items)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	verify := services.VerifyRequest{
		UserID:    userID,
		IntentID:  req.RazorpayOrderID,
		PaymentID: req.RazorpayPaymentID,
		Signature: req.RazorpaySignature,
		Items:     items,
		Subtotal:  req.Subtotal,
		Total:     req.Total,
	}
	if req.Amount != nil {
		minor, err := paidAmountMinor(*req.Amount)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		verify.AmountMinor = &minor
	}
	if req.ShippingAddress != nil {
		verify.ShippingAddress = *req.ShippingAddress
	}

	result, err := pc.Checkout.VerifyAndRecordOrder(r.Context(), verify)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	notifyOrderPlaced(r, pc.Mailer, claims.Email, *result.Order)
	respondJSON(w, http.StatusOK, verifyPaymentResponse{
		Message:     result.Message,
		OrderID:     result.OrderID,
		InvoicePath: result.InvoicePath,
		Order:       result.Order,
	})
}

// paidAmountMinor rounds the provider-reported amount (already in minor units)
// and rejects values an int64 cannot hold.
func paidAmountMinor(amount float64) (int64, error) {
	rounded := math.Round(amount)
	if math.IsNaN(rounded) || rounded < 0 || rounded >= float64(math.MaxInt64) {
		return 0, services.NewError(services.ErrInvalidRequest, "Invalid payment amount.", nil)
	}
	return int64(rounded), nil
}
