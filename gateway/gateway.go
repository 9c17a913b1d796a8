// Package gateway isolates the payment provider (Razorpay). Without provider
// credentials it runs in mock mode and never touches the network.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"brilliora/config"
	"brilliora/models"
	"brilliora/utils"

	"github.com/google/uuid"
)

// MockKeyID is the public key id handed out in mock mode
const MockKeyID = "rzp_test_mock"

var (
	ErrInvalidAmount  = errors.New("a valid positive amount is required to create a payment order")
	ErrGatewayTimeout = errors.New("payment gateway did not respond in time")
)

// GatewayError is a provider-side failure
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.StatusCode == 0 {
		return "payment gateway: " + e.Message
	}
	return fmt.Sprintf("payment gateway: %d: %s", e.StatusCode, e.Message)
}

// IntentMetadata is attached to the provider-side intent
type IntentMetadata struct {
	UserID string
}

type Options struct {
	BaseURL          string
	Timeout          time.Duration
	MaxRetries       int
	RetryBackoff     time.Duration
	BreakerThreshold uint32
	HTTPClient       *http.Client
	Logger           *slog.Logger
	Now              func() time.Time
}

func (o *Options) applyDefaults() {
	if o.BaseURL == "" {
		o.BaseURL = "https://api.razorpay.com"
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 200 * time.Millisecond
	}
	if o.BreakerThreshold == 0 {
		o.BreakerThreshold = 5
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Gateway is the payment gateway adapter
type Gateway struct {
	creds  config.CredentialSource
	client *razorpayClient
	logger *slog.Logger
	now    func() time.Time
}

func New(creds config.CredentialSource, opts Options) *Gateway {
	opts.applyDefaults()
	return &Gateway{
		creds:  creds,
		client: newRazorpayClient(opts),
		logger: opts.Logger,
		now:    opts.Now,
	}
}

// Credentials returns the provider credentials in effect for this call
func (g *Gateway) Credentials() config.Credentials {
	return g.creds.Credentials()
}

// IsConfigured reports whether live provider credentials are present. It is
// evaluated on every call.
func (g *Gateway) IsConfigured() bool {
	return g.Credentials().Configured()
}

// CreateIntent creates a payment intent for amountMajor (e.g. rupees). The
// returned amount is in minor units.
func (g *Gateway) CreateIntent(ctx context.Context, amountMajor float64, currency string, meta IntentMetadata) (*models.PaymentIntent, error) {
	minor, err := utils.ToMinorUnits(amountMajor)
	if err != nil || minor <= 0 {
		return nil, ErrInvalidAmount
	}

	creds := g.Credentials()
	if !creds.Configured() {
		return &models.PaymentIntent{
			ID:       fmt.Sprintf("order_mock_%d", g.now().UnixMilli()),
			Amount:   minor,
			Currency: currency,
			KeyID:    MockKeyID,
			Mock:     true,
		}, nil
	}

	req := createOrderRequest{
		Amount:   minor,
		Currency: currency,
		Receipt:  fmt.Sprintf("rcpt_%d_%s", g.now().UnixMilli(), uuid.NewString()[:8]),
		Notes:    map[string]string{"userId": meta.UserID},
	}
	order, err := g.client.createOrder(ctx, creds, req)
	if err != nil {
		g.logger.Error("payment intent creation failed", "error", err, "amount", minor, "currency", currency)
		return nil, err
	}

	return &models.PaymentIntent{
		ID:       order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    creds.KeyID,
	}, nil
}

// VerifySignature checks a provider signature over "<intentID>|<paymentID>".
func (g *Gateway) VerifySignature(intentID, paymentID, signature, secret string) bool {
	return VerifySignature(intentID, paymentID, signature, secret)
}

// Sign returns the hex HMAC-SHA256 of "<intentID>|<paymentID>" under secret
func Sign(intentID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(intentID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares signature against Sign in constant time
func VerifySignature(intentID, paymentID, signature, secret string) bool {
	expected := Sign(intentID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
