package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"brilliora/config"

	"github.com/sony/gobreaker/v2"
)

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// razorpayClient talks to the Orders API. Calls share one deadline across
// retries and pass through a circuit breaker.
type razorpayClient struct {
	baseURL    string
	http       *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	breaker    *gobreaker.CircuitBreaker[*razorpayOrder]
	logger     *slog.Logger
}

func newRazorpayClient(opts Options) *razorpayClient {
	threshold := opts.BreakerThreshold
	breaker := gobreaker.NewCircuitBreaker[*razorpayOrder](gobreaker.Settings{
		Name:    "razorpay",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			var gwErr *GatewayError
			if errors.As(err, &gwErr) {
				return gwErr.StatusCode >= 400 && gwErr.StatusCode < 500 && gwErr.StatusCode != http.StatusTooManyRequests
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			opts.Logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &razorpayClient{
		baseURL:    opts.BaseURL,
		http:       opts.HTTPClient,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		backoff:    opts.RetryBackoff,
		breaker:    breaker,
		logger:     opts.Logger,
	}
}

func (c *razorpayClient) createOrder(ctx context.Context, creds config.Credentials, req createOrderRequest) (*razorpayOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff << (attempt - 1)
			c.logger.Debug("retrying payment gateway call", "attempt", attempt, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, classify(ctx, lastErr)
			case <-time.After(wait):
			}
		}

		order, err := c.breaker.Execute(func() (*razorpayOrder, error) {
			return c.post(ctx, creds, body)
		})
		if err == nil {
			return order, nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			break
		}
	}
	return nil, classify(ctx, lastErr)
}

func (c *razorpayClient) post(ctx context.Context, creds config.Credentials, body []byte) (*razorpayOrder, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	httpReq.SetBasicAuth(creds.KeyID, creds.KeySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}

	var order razorpayOrder
	if err := json.Unmarshal(data, &order); err != nil || order.ID == "" {
		return nil, &GatewayError{StatusCode: http.StatusBadGateway, Message: "malformed response from payment gateway"}
	}
	return &order, nil
}

func errorMessage(status int, data []byte) string {
	var body razorpayErrorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Description != "" {
		return body.Error.Description
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unexpected response from payment gateway"
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.StatusCode >= 500 || gwErr.StatusCode == http.StatusTooManyRequests
	}
	// transport failure
	return true
}

func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return ErrGatewayTimeout
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &GatewayError{StatusCode: http.StatusServiceUnavailable, Message: "payment gateway temporarily unavailable"}
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr
	}
	if err == nil {
		err = ctx.Err()
	}
	return &GatewayError{Message: fmt.Sprintf("unable to reach payment gateway: %v", err)}
}
