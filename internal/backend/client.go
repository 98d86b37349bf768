// Package backend is the HTTP client for the REST service that owns
// projects, datasets, analysis results and processing records.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/JonMunkholm/autoprep/internal/config"
)

const (
	// TracerName identifies spans created by this package.
	TracerName = "github.com/JonMunkholm/autoprep/internal/backend"

	// APIKeyHeader carries the optional backend API key.
	APIKeyHeader = "x-api-key"

	// maxResponseSize bounds how much of a response body is read.
	maxResponseSize = 64 << 20

	defaultTimeout = 15 * time.Second
)

// Client talks JSON to the backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	retry   RetryPolicy
	tracer  trace.Tracer
	metrics *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithAPIKey sends key in the x-api-key header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithRetryPolicy sets the policy used for idempotent reads.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithTracerProvider creates spans from tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(TracerName) }
}

// WithMetrics records request counts and latency.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New returns a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		retry:   DefaultRetryPolicy(),
		tracer:  otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client from the backend section of the config.
func NewFromConfig(cfg config.BackendConfig, opts ...Option) *Client {
	base := []Option{
		WithTimeout(cfg.Timeout),
		WithAPIKey(cfg.APIKey),
		WithRetryPolicy(RetryPolicy{
			MaxAttempts: cfg.RetryAttempts,
			Backoff:     cfg.RetryBackoff,
			Retryable:   DefaultRetryable,
		}),
	}
	return New(cfg.URL, append(base, opts...)...)
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get fetches path into out. Reads are retried under the client's policy.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	attempt := 0
	return c.retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			c.metrics.retried()
		}
		return c.do(ctx, http.MethodGet, path, nil, out)
	})
}

// Post sends in as JSON and decodes the reply into out. Not retried.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put sends in as JSON and decodes the reply into out. Not retried.
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete removes the resource at path. Not retried.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

// Health calls GET /health and returns the raw reply.
func (c *Client) Health(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/health", &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// GetRaw fetches path and returns the reply body as sent. Reads are
// retried under the client's policy.
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	if err := c.Get(ctx, path, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	ctx, span := c.tracer.Start(ctx, "backend "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	start := time.Now()
	status, err := c.send(ctx, method, path, body, out)
	c.metrics.observe(method, status, time.Since(start))

	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &Error{Message: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, &Error{Message: "read response", Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= 400 {
		var eb errorBody
		// Non-JSON error bodies fall back to the status text.
		_ = json.Unmarshal(data, &eb)
		return resp.StatusCode, newHTTPError(resp.StatusCode, eb)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = data
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return resp.StatusCode, nil
}
