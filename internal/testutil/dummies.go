// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/trusted-tools/ghostjobs/internal/logging"
	"github.com/trusted-tools/ghostjobs/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string

	// InfoFields holds the fields of each Info call, in order.
	InfoFields [][]logging.Field
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
	l.InfoFields = append(l.InfoFields, fields)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns how many warnings were recorded.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// InfoField returns the value of key in the most recent Info call carrying
// msg, and whether it was present.
func (l *DummyLogger) InfoField(msg, key string) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.Infos) - 1; i >= 0; i-- {
		if l.Infos[i] != msg {
			continue
		}
		for _, f := range l.InfoFields[i] {
			if f.Key == key {
				return f.Value, true
			}
		}
		return nil, false
	}
	return nil, false
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyResponse describes what DummyWebClient returns for one URL.
type DummyResponse struct {
	StatusCode int
	Headers    http.Header
	Body       string
	Err        error
}

// DummyWebClient implements webclient.WebClient.
// By default it returns body "ok:<url>" with status 200 and no headers.
// Set Responses[url] to control the outcome for a specific URL, or
// FailURLs[url] = true to force an error.
type DummyWebClient struct {
	ResponseDelay time.Duration
	FailURLs      map[string]bool
	Responses     map[string]DummyResponse

	mu       sync.Mutex
	Requests []*webclient.Request
	Closed   bool
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if req == nil {
		return nil, webclient.ErrNilRequest
	}
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, &errString{"dummy fetch fail for " + req.URL}
	}

	if r, ok := d.Responses[req.URL]; ok {
		if r.Err != nil {
			return nil, r.Err
		}
		status := r.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		return &webclient.Response{
			Request:    req,
			URL:        req.URL,
			Headers:    r.Headers,
			Body:       []byte(r.Body),
			StatusCode: status,
			FetchedAt:  time.Now(),
		}, nil
	}

	return &webclient.Response{
		Request:    req,
		URL:        req.URL,
		Headers:    http.Header{},
		Body:       []byte("ok:" + req.URL),
		StatusCode: http.StatusOK,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: http.MethodGet, URL: url})
}

func (d *DummyWebClient) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
	return nil
}

// RequestCount returns how many requests have been issued.
func (d *DummyWebClient) RequestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}

// ─── helpers ───────────────────────────────────────────────────────────

// LastModifiedDaysAgo formats a Last-Modified header value for days before now.
func LastModifiedDaysAgo(now time.Time, days int) http.Header {
	h := http.Header{}
	h.Set("Last-Modified", now.Add(-time.Duration(days)*24*time.Hour).UTC().Format(http.TimeFormat))
	return h
}

type errString struct{ s string }

func (e *errString) Error() string { return e.s }
