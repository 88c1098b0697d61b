package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/trusted-tools/ghostjobs/internal/client"
	"github.com/trusted-tools/ghostjobs/internal/model"
	"github.com/trusted-tools/ghostjobs/internal/testutil"
)

func newClient(t *testing.T, h http.Handler, opts ...client.Option) *client.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	opts = append([]client.Option{client.WithLogger(&testutil.DummyLogger{})}, opts...)
	c, err := client.New(ts.URL+"/", opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "localhost:3001", "/api", "ftp://example.com"} {
		if _, err := client.New(raw); err == nil {
			t.Errorf("New(%q): expected error", raw)
		}
	}
}

// ─── Health / wake-up ──────────────────────────────────────────────────

func TestClient_Health(t *testing.T) {
	t.Parallel()
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))

	got, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if !got.OK {
		t.Error("expected ok=true")
	}
}

func TestClient_WaitHealthy_WakesColdBackend(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "starting", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))

	err := c.WaitHealthy(context.Background(), client.WakeOptions{
		TotalWait:      2 * time.Second,
		AttemptTimeout: 500 * time.Millisecond,
		RetryDelay:     10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("WaitHealthy: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 health calls, got %d", calls.Load())
	}
}

func TestClient_WaitHealthy_GivesUp(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "asleep", http.StatusBadGateway)
	}))

	start := time.Now()
	err := c.WaitHealthy(context.Background(), client.WakeOptions{
		TotalWait:      100 * time.Millisecond,
		AttemptTimeout: 50 * time.Millisecond,
		RetryDelay:     20 * time.Millisecond,
	})
	if !errors.Is(err, client.ErrNotHealthy) {
		t.Fatalf("expected ErrNotHealthy, got %v", err)
	}
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway {
		t.Errorf("expected wrapped 502 APIError, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("total wait not bounded: %s", elapsed)
	}
	if calls.Load() < 2 {
		t.Errorf("expected several attempts, got %d", calls.Load())
	}
}

func TestClient_WaitHealthy_AttemptsStopAtTotalWait(t *testing.T) {
	t.Parallel()
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	const budget = 300 * time.Millisecond
	start := time.Now()
	err := c.WaitHealthy(context.Background(), client.WakeOptions{
		TotalWait:      budget,
		AttemptTimeout: 2 * time.Second,
		RetryDelay:     50 * time.Millisecond,
	})
	elapsed := time.Since(start)
	if !errors.Is(err, client.ErrNotHealthy) {
		t.Fatalf("expected ErrNotHealthy, got %v", err)
	}
	if elapsed > budget+250*time.Millisecond {
		t.Errorf("expected to give up near %s, took %s", budget, elapsed)
	}
}

func TestClient_WaitHealthy_HonoursContext(t *testing.T) {
	t.Parallel()
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "asleep", http.StatusServiceUnavailable)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.WaitHealthy(ctx, client.WakeOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// ─── Analyze ───────────────────────────────────────────────────────────

func TestClient_Analyze(t *testing.T) {
	t.Parallel()
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/analyze" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["url"] != "https://jobs.example.com/p/1" {
			t.Errorf("unexpected url %v", body["url"])
		}
		_, _ = io.WriteString(w, `{"score":85,"signals":{"stale":{"result":false,"delay":1000,"info":"3 days old"},"weak":{"result":false,"delay":2200},"inactivity":{"result":false,"delay":3400}}}`)
	}))

	got, err := c.Analyze(context.Background(), model.NewAnalyzeRequest("https://jobs.example.com/p/1"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Score != 85 || got.Signals.Stale.Info != "3 days old" || got.Signals.Inactivity.Delay != 3400 {
		t.Errorf("unexpected response %+v", got)
	}
}

func TestClient_Analyze_APIError(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Invalid URL"}`)
	}))

	_, err := c.Analyze(context.Background(), model.AnalyzeRequest{URL: json.RawMessage(`123`)})
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "Invalid URL" {
		t.Errorf("unexpected APIError %+v", apiErr)
	}
	if calls.Load() != 1 {
		t.Errorf("API errors must not be retried, got %d calls", calls.Load())
	}
}

func TestClient_Analyze_RetriesOnceOnTimeout(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
			return
		}
		_, _ = io.WriteString(w, `{"score":55,"signals":{}}`)
	}), client.WithAnalyzeTimeout(50*time.Millisecond))

	got, err := c.Analyze(context.Background(), model.NewAnalyzeRequest("https://jobs.example.com/p/slow"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Score != 55 {
		t.Errorf("expected score from retry, got %d", got.Score)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestClient_Analyze_GivesUpAfterSecondTimeout(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newClient(t, http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}), client.WithAnalyzeTimeout(100*time.Millisecond))

	_, err := c.Analyze(context.Background(), model.NewAnalyzeRequest("https://jobs.example.com/p/slower"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected exactly one retry, got %d calls", calls.Load())
	}
}
