package resilience

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ClientConfig tunes the shared transport of a Client.
type ClientConfig struct {
	MaxIdle     int
	MaxActive   int
	IdleTimeout time.Duration
	// Timeout bounds a whole request. Zero leaves requests bounded only by
	// their context.
	Timeout time.Duration
}

// DefaultClientConfig returns the pool sizes used for outbound API calls
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		MaxIdle:     10,
		MaxActive:   20,
		IdleTimeout: 90 * time.Second,
		Timeout:     30 * time.Second,
	}
}

// Client is an HTTP client with a pooled transport guarded by a circuit
// breaker. Transport errors count as breaker failures; HTTP status codes are
// left to the caller.
type Client struct {
	http      *http.Client
	transport *http.Transport
	breaker   *CircuitBreaker
}

// NewClient builds a Client. A nil breaker gets the default configuration.
func NewClient(config ClientConfig, cb *CircuitBreaker) *Client {
	if cb == nil {
		cb = NewCircuitBreaker(CircuitBreakerConfig{})
	}

	maxIdlePerHost := config.MaxIdle / 2
	if maxIdlePerHost < 1 {
		maxIdlePerHost = 1
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          config.MaxIdle,
		MaxConnsPerHost:       config.MaxActive,
		MaxIdleConnsPerHost:   maxIdlePerHost,
		IdleConnTimeout:       config.IdleTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		http:      &http.Client{Transport: transport, Timeout: config.Timeout},
		transport: transport,
		breaker:   cb,
	}
}

// serverError marks a 5xx response as a breaker failure.
type serverError struct{ status int }

func (e *serverError) Error() string { return fmt.Sprintf("server responded %d", e.status) }

// Do sends a request with an optional body. The caller closes the response
// body. Transport errors and 5xx responses count as breaker failures; a 5xx
// response is still returned to the caller.
func (c *Client) Do(ctx context.Context, method, url string, headers map[string]string, body []byte) (*http.Response, error) {
	var resp *http.Response

	err := c.breaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		start := time.Now()
		resp, err = c.http.Do(req)
		duration := time.Since(start)
		if err != nil {
			slog.Warn("Request failed", "url", url, "error", err, "duration_ms", duration.Milliseconds())
			return err
		}

		slog.Debug("Request completed", "url", url, "status", resp.StatusCode, "duration_ms", duration.Milliseconds())
		if resp.StatusCode >= http.StatusInternalServerError {
			return &serverError{status: resp.StatusCode}
		}
		return nil
	})
	var srvErr *serverError
	if errors.As(err, &srvErr) {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Breaker exposes the circuit breaker for health reporting
func (c *Client) Breaker() *CircuitBreaker { return c.breaker }

// GetStats returns client statistics
func (c *Client) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"max_idle":              c.transport.MaxIdleConns,
		"max_active":            c.transport.MaxConnsPerHost,
		"idle_timeout_ms":       c.transport.IdleConnTimeout.Milliseconds(),
		"circuit_breaker_state": c.breaker.State().String(),
		"failures":              c.breaker.Failures(),
	}
}

// Close releases idle connections
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}
