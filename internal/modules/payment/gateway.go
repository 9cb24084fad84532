package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"staybook/internal/domain"
)

// Intent mirrors the provider's payment-intent resource.
type Intent struct {
	ID           string                     `json:"id"`
	ClientSecret string                     `json:"client_secret,omitempty"`
	Amount       float64                    `json:"amount"`
	Currency     string                     `json:"currency"`
	Status       domain.PaymentIntentStatus `json:"status"`
}

type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Gateway is the capability contract the engine consumes from the
// payment provider. All calls are fallible remote calls; the provider
// is at-least-once and eventually consistent.
type Gateway interface {
	CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
	CancelIntent(ctx context.Context, intentID string) error
	Refund(ctx context.Context, intentID string, amount float64) (*Refund, error)
}

// HTTPGateway talks JSON over HTTPS to the provider. Transient
// failures (network, 5xx) are retried with exponential backoff up to
// maxAttempts; business rejections are surfaced immediately.
type HTTPGateway struct {
	baseURL     string
	secretKey   string
	maxAttempts int
	client      *http.Client
	loggerf     func(format string, args ...interface{})
}

func NewHTTPGateway(baseURL, secretKey string, maxAttempts int, loggerf func(format string, args ...interface{})) *HTTPGateway {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &HTTPGateway{
		baseURL:     baseURL,
		secretKey:   secretKey,
		maxAttempts: maxAttempts,
		client:      &http.Client{Timeout: 10 * time.Second},
		loggerf:     loggerf,
	}
}

func (g *HTTPGateway) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Intent, error) {
	body := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"metadata": metadata,
	}

	var out Intent
	if err := g.do(ctx, http.MethodPost, "/v1/payment_intents", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	var out Intent
	if err := g.do(ctx, http.MethodGet, "/v1/payment_intents/"+intentID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) CancelIntent(ctx context.Context, intentID string) error {
	return g.do(ctx, http.MethodPost, "/v1/payment_intents/"+intentID+"/cancel", nil, nil)
}

func (g *HTTPGateway) Refund(ctx context.Context, intentID string, amount float64) (*Refund, error) {
	body := map[string]interface{}{
		"payment_intent": intentID,
		"amount":         amount,
	}

	var out Refund
	if err := g.do(ctx, http.MethodPost, "/v1/refunds", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal gateway request: %w", err)
		}
	}

	backoff := 200 * time.Millisecond
	var lastErr error

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		retryable, err := g.once(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
		g.loggerf("level=warn msg=gateway call retrying method=%s path=%s attempt=%d err=%v", method, path, attempt, err)
	}

	return fmt.Errorf("%w: %v", ErrGatewayUnavailable, lastErr)
}

// once performs a single request. The bool reports whether the failure
// is transient and worth retrying.
func (g *HTTPGateway) once(ctx context.Context, method, path string, payload []byte, out interface{}) (bool, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, err
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || len(raw) == 0 {
			return false, nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return false, fmt.Errorf("decode gateway response: %w", err)
		}
		return false, nil

	case resp.StatusCode >= 500:
		return true, fmt.Errorf("gateway %s %s: status %d", method, path, resp.StatusCode)

	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity:
		return false, fmt.Errorf("%w: %s", ErrPaymentDeclined, string(raw))

	case resp.StatusCode == http.StatusNotFound:
		return false, ErrIntentNotFound

	default:
		return false, fmt.Errorf("gateway %s %s: status %d body=%s", method, path, resp.StatusCode, string(raw))
	}
}
