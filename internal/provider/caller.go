package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kjstillabower/travel-discovery-service/internal/circuitbreaker"
	"github.com/kjstillabower/travel-discovery-service/internal/observability"
	"github.com/kjstillabower/travel-discovery-service/internal/traffic"
)

const maxBodyBytes = 4 << 20

// RequestBuilder builds the outbound request. It receives the per-call context
// that already carries the provider timeout.
type RequestBuilder func(ctx context.Context) (*http.Request, error)

// Caller issues single-attempt, bounded-timeout requests to one provider and
// maps transport and status failures onto the package sentinel errors.
type Caller struct {
	name      string
	timeout   time.Duration
	userAgent string
	client    *http.Client
	breaker   *circuitbreaker.CircuitBreaker
}

// Option configures a Caller.
type Option func(*Caller)

// WithUserAgent sets the User-Agent header. Nominatim rejects requests without one.
func WithUserAgent(ua string) Option {
	return func(c *Caller) { c.userAgent = ua }
}

// WithBreaker guards every call with cb.
func WithBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(c *Caller) { c.breaker = cb }
}

// WithHTTPClient replaces the default http.Client. The Caller timeout still applies per call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Caller) { c.client = hc }
}

// NewCaller returns a Caller for the named provider. name is used as a metric label.
func NewCaller(name string, timeout time.Duration, opts ...Option) *Caller {
	c := &Caller{
		name:    name,
		timeout: timeout,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the provider name.
func (c *Caller) Name() string {
	return c.name
}

// Timeout returns the per-call timeout.
func (c *Caller) Timeout() time.Duration {
	return c.timeout
}

// DoJSON performs the request and decodes a 2xx JSON body into out.
func (c *Caller) DoJSON(ctx context.Context, build RequestBuilder, out any) error {
	body, err := c.Do(ctx, build)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		err = fmt.Errorf("%w: %w: parse response: %v", ErrProviderUnavailable, ErrMalformedResponse, err)
		observability.ProviderErrorsTotal.WithLabelValues(c.name, string(CategorizeError(err))).Inc()
		return err
	}
	return nil
}

// Do performs the request once and returns the raw 2xx body.
func (c *Caller) Do(ctx context.Context, build RequestBuilder) ([]byte, error) {
	var body []byte
	err := c.breaker.Call(ctx, func() error {
		var callErr error
		body, callErr = c.call(ctx, build)
		return callErr
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		err = fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, c.name, err)
	}
	if err != nil {
		// A cancelled or expired caller context says nothing about the provider.
		if ctx.Err() == nil {
			observability.ProviderErrorsTotal.WithLabelValues(c.name, string(CategorizeError(err))).Inc()
			traffic.RecordError(c.name)
		}
		return nil, err
	}
	traffic.RecordSuccess(c.name)
	return body, nil
}

func (c *Caller) call(ctx context.Context, build RequestBuilder) ([]byte, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := build(reqCtx)
	if err != nil {
		observability.ProviderCallsTotal.WithLabelValues(c.name, "error").Inc()
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if corrID := observability.CorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		observability.ProviderCallsTotal.WithLabelValues(c.name, "error").Inc()
		observability.ProviderDuration.WithLabelValues(c.name, "error").Observe(time.Since(start).Seconds())
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %s: request timeout: %w", ErrProviderUnavailable, c.name, err)
		}
		return nil, fmt.Errorf("%w: %s: http request failed: %w", ErrProviderUnavailable, c.name, err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	observability.ProviderCallsTotal.WithLabelValues(c.name, status).Inc()
	observability.ProviderDuration.WithLabelValues(c.name, status).Observe(time.Since(start).Seconds())

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err := c.handleErrorResponse(resp.StatusCode, body); err != nil {
		return nil, err
	}
	if readErr != nil {
		return nil, fmt.Errorf("%w: %s: read response body: %w", ErrProviderUnavailable, c.name, readErr)
	}
	return body, nil
}

func (c *Caller) handleErrorResponse(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	snippet := string(body)
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %w: %s: HTTP %d", ErrProviderUnavailable, ErrUnauthorized, c.name, statusCode)
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w: %s: HTTP %d", ErrProviderUnavailable, ErrRateLimited, c.name, statusCode)
	default:
		return fmt.Errorf("%w: %w: %s: HTTP %d: %s", ErrProviderUnavailable, ErrUpstreamFailure, c.name, statusCode, snippet)
	}
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
