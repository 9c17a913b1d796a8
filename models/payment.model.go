package models

// PaymentIntent is a provider-side (or mock) payment placeholder handed back to
// the client to drive the payment widget. It is never persisted.
type PaymentIntent struct {
	ID       string `json:"orderId"`
	Amount   int64  `json:"amount"` // minor units, e.g. paise
	Currency string `json:"currency"`
	KeyID    string `json:"razorpayKeyId"`
	Mock     bool   `json:"mock,omitempty"`
}
