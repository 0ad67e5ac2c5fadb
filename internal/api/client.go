// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/pkg/auth"
	"github.com/your-org/storefront/internal/pkg/metrics"
)

const maxResponseBytes = 8 << 20

var errBreakerOpen = errors.New("backend circuit breaker is open")

// Request describes one backend call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Backend holds what every visitor's client shares: the HTTP transport, the
// circuit breaker, metrics and settings.
type Backend struct {
	baseURL     string
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker[[]byte]
	metrics     *metrics.Metrics
	log         logrus.FieldLogger
	listRetries int
	backoff     time.Duration
	defaultTake int
	requestID   string
	userAgent   string
}

// Option customizes a Backend
type Option func(*Backend)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(b *Backend) { b.httpClient = c }
}

// WithMetrics records every call on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Backend) { b.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Backend) { b.log = l }
}

// NewBackend creates the shared backend from config
func NewBackend(cfg config.APIConfig, opts ...Option) *Backend {
	b := &Backend{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		log:         logrus.StandardLogger(),
		listRetries: cfg.ListRetries,
		backoff:     cfg.RetryBackoff,
		defaultTake: cfg.DefaultPageTake,
		requestID:   cfg.RequestIDHeader,
		userAgent:   cfg.UserAgentProduct,
	}
	if b.defaultTake <= 0 {
		b.defaultTake = 10
	}
	if b.requestID == "" {
		b.requestID = "X-Request-ID"
	}
	for _, opt := range opts {
		opt(b)
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	b.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "storefront-backend",
		MaxRequests: cfg.BreakerHalfOpen,
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// Only transport failures and 5xx count against the backend
			var apiErr *Error
			if errors.As(err, &apiErr) {
				return apiErr.Kind == KindHTTP && apiErr.Status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Backend circuit breaker changed state")
			b.metrics.SetBreakerOpen(name, to == gobreaker.StateOpen)
		},
	})

	return b
}

// BreakerState reports the circuit breaker state ("closed", "half-open" or "open")
func (b *Backend) BreakerState() string {
	return b.breaker.State().String()
}

type requestIDKey struct{}

// ContextWithRequestID makes backend calls made with ctx carry id
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// Client binds the backend to one owner's credentials
func (b *Backend) Client(creds *auth.Credentials) *Client {
	return &Client{backend: b, creds: creds}
}

// Client talks to the storefront backend on behalf of one owner
type Client struct {
	backend *Backend
	creds   *auth.Credentials
}

// Credentials returns the holder whose token is attached to requests
func (c *Client) Credentials() *auth.Credentials {
	return c.creds
}

// Do performs req and decodes the unwrapped response into out (which may be nil)
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	raw, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

// do sends the request and returns the success body with any {success, data}
// wrapper already removed
func (c *Client) do(ctx context.Context, req Request) ([]byte, error) {
	b := c.backend
	resource := resourceOf(req.Path)
	start := time.Now()

	var body io.Reader
	var payload []byte
	if req.Body != nil {
		if err := Validate(req.Body); err != nil {
			b.metrics.ObserveAPI(req.Method, resource, metrics.OutcomeValidation, time.Since(start))
			return nil, err
		}
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, validationError("failed to encode request body: %w", err)
		}
		payload = encoded
	}

	endpoint := b.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	raw, err := b.breaker.Execute(func() ([]byte, error) {
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set(b.requestID, requestIDFrom(ctx))
		if b.userAgent != "" {
			httpReq.Header.Set("User-Agent", b.userAgent)
		}
		if token := c.creds.Get(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := b.httpClient.Do(httpReq)
		if err != nil {
			return nil, networkError(err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, networkError(err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, httpError(resp.StatusCode, data)
		}
		return data, nil
	})

	outcome := metrics.OutcomeSuccess
	if err != nil {
		err = classify(err)
		outcome = outcomeOf(err)
	}
	b.metrics.ObserveAPI(req.Method, resource, outcome, time.Since(start))

	entry := b.log.WithFields(logrus.Fields{
		"method":   req.Method,
		"path":     req.Path,
		"duration": time.Since(start),
	})
	if err != nil {
		entry.WithError(err).Warn("Backend request failed")
		return nil, err
	}
	entry.Debug("Backend request completed")

	return unwrapEnvelope(raw), nil
}

// classify maps breaker and transport failures onto *Error
func classify(err error) error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return networkError(fmt.Errorf("%w: %v", errBreakerOpen, err))
	}
	return networkError(err)
}

func outcomeOf(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return metrics.OutcomeNetwork
	}
	switch apiErr.Kind {
	case KindHTTP:
		return metrics.OutcomeHTTPError
	case KindValidation:
		return metrics.OutcomeValidation
	default:
		return metrics.OutcomeNetwork
	}
}

// unwrapEnvelope removes a {success, data} wrapper. A wrapper whose data is
// missing or null is returned unchanged.
func unwrapEnvelope(raw []byte) []byte {
	if len(bytes.TrimSpace(raw)) == 0 || !gjson.ValidBytes(raw) {
		return raw
	}
	r := gjson.ParseBytes(raw)
	if !r.IsObject() || !r.Get("success").Exists() {
		return raw
	}
	data := r.Get("data")
	if !data.Exists() || data.Type == gjson.Null {
		return raw
	}
	return []byte(data.Raw)
}

func decodeInto(raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return validationError("invalid response: %w", err)
	}
	if err := validateValue(out); err != nil {
		return validationError("invalid response: %s", describeValidation(err))
	}
	return nil
}

// resourceOf returns the first path segment, used as a metrics label
func resourceOf(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(path, "/?"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	return path
}
