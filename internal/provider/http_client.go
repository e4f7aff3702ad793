package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"solana-launchpad/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// HTTPClient implements LaunchProvider against an HTTP JSON provider
// service. Transport failures and 5xx responses are retried with
// exponential backoff; 4xx responses are not.
type HTTPClient struct {
	baseURL     string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.maxDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new launch-provider HTTP client.
func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ LaunchProvider = (*HTTPClient)(nil)

// amountRequest is the shared request body for amount-carrying operations.
type amountRequest struct {
	TokenID string `json:"tokenId"`
	Amount  int64  `json:"amount,omitempty"`
}

// amountResponse is the shared response body for amount-returning operations.
type amountResponse struct {
	Amount int64 `json:"amount"`
}

type providerErrorBody struct {
	Error string `json:"error"`
}

// Launch creates the token on-chain.
func (c *HTTPClient) Launch(ctx context.Context, req LaunchRequest) (*LaunchResult, error) {
	var result LaunchResult
	if err := c.call(ctx, "launch", "/launch", req, &result); err != nil {
		return nil, &Error{Op: "launch", TokenID: req.Mint, Err: err}
	}
	return &result, nil
}

// ClaimFees collects accumulated trading fees for a token.
func (c *HTTPClient) ClaimFees(ctx context.Context, tokenID string) (int64, error) {
	var result amountResponse
	if err := c.call(ctx, "claimFees", "/claim-fees", amountRequest{TokenID: tokenID}, &result); err != nil {
		return 0, &Error{Op: "claimFees", TokenID: tokenID, Err: err}
	}
	return result.Amount, nil
}

// Burn burns amount tokens.
func (c *HTTPClient) Burn(ctx context.Context, tokenID string, amount int64) (int64, error) {
	var result amountResponse
	if err := c.call(ctx, "burn", "/burn", amountRequest{TokenID: tokenID, Amount: amount}, &result); err != nil {
		return 0, &Error{Op: "burn", TokenID: tokenID, Err: err}
	}
	return result.Amount, nil
}

// AddLiquidity adds amount lamports to the token's liquidity pool.
func (c *HTTPClient) AddLiquidity(ctx context.Context, tokenID string, amount int64) (int64, error) {
	var result amountResponse
	if err := c.call(ctx, "addLiquidity", "/add-liquidity", amountRequest{TokenID: tokenID, Amount: amount}, &result); err != nil {
		return 0, &Error{Op: "addLiquidity", TokenID: tokenID, Err: err}
	}
	return result.Amount, nil
}

// PayDividends distributes amount lamports to holders.
func (c *HTTPClient) PayDividends(ctx context.Context, tokenID string, amount int64) (int64, error) {
	var result amountResponse
	if err := c.call(ctx, "payDividends", "/pay-dividends", amountRequest{TokenID: tokenID, Amount: amount}, &result); err != nil {
		return 0, &Error{Op: "payDividends", TokenID: tokenID, Err: err}
	}
	return result.Amount, nil
}

// MigrateLiquidity moves the token's curve liquidity to an external pool.
func (c *HTTPClient) MigrateLiquidity(ctx context.Context, tokenID string) error {
	if err := c.call(ctx, "migrateLiquidity", "/migrate-liquidity", amountRequest{TokenID: tokenID}, nil); err != nil {
		return &Error{Op: "migrateLiquidity", TokenID: tokenID, Err: err}
	}
	return nil
}

// call wraps post with per-operation latency and error metrics.
func (c *HTTPClient) call(ctx context.Context, op, path string, reqBody, result interface{}) error {
	start := time.Now()
	err := c.post(ctx, path, reqBody, result)
	observability.RecordProviderCall(op, time.Since(start).Seconds(), err)
	return err
}

// post performs a JSON POST with retries and exponential backoff.
func (c *HTTPClient) post(ctx context.Context, path string, reqBody, result interface{}) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		// Client errors are definitive and not retried.
		if resp.StatusCode != http.StatusOK {
			var errBody providerErrorBody
			if json.Unmarshal(respBody, &errBody) == nil && errBody.Error != "" {
				return fmt.Errorf("provider rejected request (%d): %s", resp.StatusCode, errBody.Error)
			}
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
