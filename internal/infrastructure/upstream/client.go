// Package upstream holds the HTTP plumbing shared by the Order-System and
// Trace-System adapters.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxResponseSize caps how much of a response body is read (10MB)
const maxResponseSize = 10 << 20

const tracerName = "github.com/cmosqueda1/FMS-TMS-Checkstatus/upstream"

// Observer receives one notification per completed upstream call
type Observer interface {
	ObserveCall(ctx context.Context, backend, op string, elapsed time.Duration, err error)
}

// Client performs requests against one backend
type Client struct {
	backend    string
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	observer   Observer
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithObserver registers a call observer
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a client for backend rooted at baseURL
func NewClient(backend, baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		backend:    backend,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON issues a GET and returns the raw body
func (c *Client) GetJSON(ctx context.Context, op, path string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", c.backend, err)
	}
	copyHeader(req.Header, header)
	req.Header.Set("Accept", "application/json")
	return c.do(req, op)
}

// PostJSON marshals payload and POSTs it
func (c *Client) PostJSON(ctx context.Context, op, path string, header http.Header, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode request: %w", c.backend, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", c.backend, err)
	}
	copyHeader(req.Header, header)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(req, op)
}

// PostForm POSTs url-encoded form values
func (c *Client) PostForm(ctx context.Context, op, path string, values url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", c.backend, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return c.do(req, op)
}

// do sends the request. Transport and body read failures wrap
// reconcile.ErrUnreachable, non-2xx statuses wrap reconcile.ErrRejected.
func (c *Client) do(req *http.Request, op string) (body []byte, err error) {
	ctx, span := c.tracer.Start(req.Context(), c.backend+" "+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("upstream.backend", c.backend),
			attribute.String("upstream.operation", op),
			attribute.String("http.request.method", req.Method),
		),
	)
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if c.observer != nil {
			c.observer.ObserveCall(ctx, c.backend, op, time.Since(start), err)
		}
	}()

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", reconcile.ErrUnreachable, c.backend, op, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: failed to read response: %v", reconcile.ErrUnreachable, c.backend, op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s: HTTP %d", reconcile.ErrRejected, c.backend, op, resp.StatusCode)
	}

	return body, nil
}

func copyHeader(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
