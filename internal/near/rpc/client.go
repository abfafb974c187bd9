// Package rpc is the JSON-RPC 2.0 transport to a NEAR node. It owns request
// framing, transient-failure retries with exponential backoff, and the
// mapping of node errors onto the typed error set in errors.go.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Well-known endpoints.
const (
	MainnetRPC  = "https://free.rpc.fastnear.com"
	TestnetRPC  = "https://test.rpc.fastnear.com"
	LocalnetRPC = "http://localhost:3030"
)

// RetryConfig bounds the retry loop for transient failures. MaxRetries is
// the total attempt budget per call; attempt k (zero-based) is preceded by
// a sleep of min(InitialDelay<<(k-1), MaxDelay).
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryConfig returns the retry policy used when none is supplied.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
	}
}

func (c RetryConfig) delay(attempt int) time.Duration {
	d := c.InitialDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= c.MaxDelay {
			return c.MaxDelay
		}
	}
	if d > c.MaxDelay {
		return c.MaxDelay
	}
	return d
}

// Client is a JSON-RPC client bound to one endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	retry    RetryConfig
	nextID   atomic.Uint64
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetryConfig replaces the retry policy.
func WithRetryConfig(rc RetryConfig) Option {
	return func(c *Client) { c.retry = rc }
}

// NewClient creates a client for the given endpoint URL.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("rpc endpoint is required")
	}
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
		retry:    DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the URL this client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// Call performs one JSON-RPC method call, retrying transient failures per
// the retry policy, and decodes the result into out (which may be nil).
func (c *Client) Call(ctx context.Context, method string, params any, out any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode request")
	}

	attempts := c.retry.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := c.retry.delay(attempt - 1)
			log.Warn().
				Str("method", method).
				Int("attempt", attempt).
				Dur("delay", delay).
				Err(lastErr).
				Msg("RPC call failed, retrying")
			requestRetries.WithLabelValues(method).Inc()
			if err := sleepCtx(ctx, delay); err != nil {
				return err
			}
		}

		result, err := c.post(ctx, method, body)
		if err == nil {
			if out == nil || len(result) == 0 {
				return nil
			}
			if err := json.Unmarshal(result, out); err != nil {
				return errors.Wrapf(err, "failed to decode %s result", method)
			}
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}

	requestsExhausted.WithLabelValues(method).Inc()
	return &TimeoutExceededError{Attempts: attempts, Err: lastErr}
}

// post performs a single HTTP round trip and surfaces the JSON-RPC result
// or error.
func (c *Client) post(ctx context.Context, method string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		requestErrors.WithLabelValues(method, "transport").Inc()
		return nil, &transportError{err: err}
	}
	defer resp.Body.Close()
	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		requestErrors.WithLabelValues(method, "http").Inc()
		return nil, &httpStatusError{status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		requestErrors.WithLabelValues(method, "transport").Inc()
		return nil, &transportError{err: err}
	}

	var parsed rpcResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// A truncated or garbled body is as transient as a dropped
		// connection; retry it.
		requestErrors.WithLabelValues(method, "transport").Inc()
		return nil, &transportError{err: errors.Wrap(err, "failed to decode response")}
	}
	if parsed.Error != nil {
		requestErrors.WithLabelValues(method, "rpc").Inc()
		return nil, parsed.Error
	}
	return parsed.Result, nil
}

// transportError wraps a network-level failure; always retryable.
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return "transport error: " + e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}

// httpStatusError is a non-200 HTTP response.
type httpStatusError struct {
	status int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.status)
}

func isRetryable(err error) bool {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr.IsRetryable()
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.status {
		case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusServiceUnavailable:
			return true
		}
		return statusErr.status >= 500
	}
	var transErr *transportError
	return errors.As(err, &transErr)
}

// sleepCtx sleeps for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
