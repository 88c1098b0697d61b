// Package client is a Go client for the checker API. It wakes a cold-started
// backend with a bounded health loop before analyzing, and retries an
// analysis once when it times out.
package client

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

	"github.com/trusted-tools/ghostjobs/internal/logging"
	"github.com/trusted-tools/ghostjobs/internal/model"
)

const (
	DefaultTotalWait      = 60 * time.Second
	DefaultAttemptTimeout = 10 * time.Second
	DefaultRetryDelay     = 2 * time.Second

	// DefaultAnalyzeTimeout bounds one analyze attempt. It sits above the
	// server's own fetch timeout.
	DefaultAnalyzeTimeout = 30 * time.Second

	maxResponseBytes = 1 << 20
)

// ErrNotHealthy is returned when WaitHealthy runs out of time.
var ErrNotHealthy = errors.New("backend did not become healthy")

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d", e.Status)
	}
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
}

// WakeOptions bounds WaitHealthy. Zero fields take the defaults.
type WakeOptions struct {
	TotalWait      time.Duration
	AttemptTimeout time.Duration
	RetryDelay     time.Duration
}

func (o WakeOptions) withDefaults() WakeOptions {
	if o.TotalWait <= 0 {
		o.TotalWait = DefaultTotalWait
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = DefaultAttemptTimeout
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	return o
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAnalyzeTimeout sets the per-attempt analyze timeout.
func WithAnalyzeTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.analyzeTimeout = d
		}
	}
}

// Client talks to one API base URL.
type Client struct {
	baseURL        string
	http           *http.Client
	logger         logging.Logger
	analyzeTimeout time.Duration
}

// New returns a client for baseURL, e.g. "http://localhost:3001".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute http(s)", baseURL)
	}

	c := &Client{
		baseURL:        strings.TrimRight(u.String(), "/"),
		http:           &http.Client{},
		logger:         logging.NewStdoutLogger("client"),
		analyzeTimeout: DefaultAnalyzeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logging.Field{Key: "component", Value: "client"})
	return c, nil
}

// Health calls GET /api/health once.
func (c *Client) Health(ctx context.Context) (*model.HealthResponse, error) {
	var out model.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, errors.New("health check returned ok=false")
	}
	return &out, nil
}

// WaitHealthy polls the health endpoint until it answers, the total wait
// budget is spent, or ctx is done. No attempt runs past the budget.
func (c *Client) WaitHealthy(ctx context.Context, opts WakeOptions) error {
	opts = opts.withDefaults()
	deadline := time.Now().Add(opts.TotalWait)

	for attempt := 1; ; attempt++ {
		attemptDeadline := time.Now().Add(opts.AttemptTimeout)
		if attemptDeadline.After(deadline) {
			attemptDeadline = deadline
		}
		attemptCtx, cancel := context.WithDeadline(ctx, attemptDeadline)
		_, err := c.Health(attemptCtx)
		cancel()
		if err == nil {
			if attempt > 1 {
				c.logger.Info("backend awake", logging.Field{Key: "attempts", Value: attempt})
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Debug("health check failed",
			logging.Field{Key: "attempt", Value: attempt},
			logging.Err(err))

		if time.Until(deadline) < opts.RetryDelay {
			return fmt.Errorf("%w after %d attempts: %w", ErrNotHealthy, attempt, err)
		}

		timer := time.NewTimer(opts.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Analyze posts req. An attempt that times out is retried exactly once.
func (c *Client) Analyze(ctx context.Context, req model.AnalyzeRequest) (*model.AnalyzeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}

	resp, err := c.analyzeOnce(ctx, body)
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		c.logger.Warn("analyze timed out, retrying once", logging.Field{Key: "timeout", Value: c.analyzeTimeout.String()})
		resp, err = c.analyzeOnce(ctx, body)
	}
	return resp, err
}

func (c *Client) analyzeOnce(ctx context.Context, body []byte) (*model.AnalyzeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.analyzeTimeout)
	defer cancel()

	var out model.AnalyzeResponse
	if err := c.do(ctx, http.MethodPost, "/api/analyze", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e model.ErrorResponse
		if json.Unmarshal(data, &e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
