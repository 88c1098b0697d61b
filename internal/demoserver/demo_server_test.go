package demoserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/trusted-tools/ghostjobs/internal/testutil"
)

var boardNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newBoard(t *testing.T) (*DemoServer, http.Handler) {
	t.Helper()
	s := NewDemoServer(DefaultConfig(), &testutil.DummyLogger{})
	s.now = func() time.Time { return boardNow }
	return s, s.Handler()
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestDemoServer_PostingAges(t *testing.T) {
	t.Parallel()
	_, h := newBoard(t)

	cases := []struct {
		path   string
		status int
		age    int // -1 means no Last-Modified
	}{
		{"/jobs/fresh", 200, 10},
		{"/jobs/aging", 200, 60},
		{"/jobs/stale", 200, 120},
		{"/jobs/undated", 200, -1},
		{"/jobs/closed", 404, 5},
	}
	for _, tc := range cases {
		rec := get(h, tc.path)
		if rec.Code != tc.status {
			t.Errorf("%s: expected status %d, got %d", tc.path, tc.status, rec.Code)
		}
		lm := rec.Header().Get("Last-Modified")
		if tc.age < 0 {
			if lm != "" {
				t.Errorf("%s: expected no Last-Modified, got %q", tc.path, lm)
			}
			continue
		}
		want := boardNow.Add(-time.Duration(tc.age) * 24 * time.Hour).Format(http.TimeFormat)
		if lm != want {
			t.Errorf("%s: expected Last-Modified %q, got %q", tc.path, want, lm)
		}
		if !strings.Contains(rec.Body.String(), "<title>") {
			t.Errorf("%s: expected an HTML page", tc.path)
		}
	}
}

func TestDemoServer_Redirect(t *testing.T) {
	t.Parallel()
	_, h := newBoard(t)

	rec := get(h, "/jobs/moved")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/jobs/fresh" {
		t.Errorf("expected 302 to /jobs/fresh, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestDemoServer_ListPostings(t *testing.T) {
	t.Parallel()
	_, h := newBoard(t)

	rec := get(h, "/demo/postings")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var rows []PostingInfo
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := map[string]int{
		"/jobs/aging":   55,
		"/jobs/closed":  85,
		"/jobs/fresh":   85,
		"/jobs/moved":   85,
		"/jobs/stale":   25,
		"/jobs/undated": 25,
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d postings, got %d", len(want), len(rows))
	}
	for _, row := range rows {
		if row.ExpectedScore != want[row.Path] {
			t.Errorf("%s: expected score %d, got %d", row.Path, want[row.Path], row.ExpectedScore)
		}
	}
}

func TestDemoServer_SetAgeAndReset(t *testing.T) {
	t.Parallel()
	s, h := newBoard(t)

	post := func(path string, form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := post("/demo/set-age", url.Values{"path": {"/jobs/fresh"}, "days": {"200"}}); rec.Code != http.StatusOK {
		t.Fatalf("set-age: expected 200, got %d", rec.Code)
	}
	if age := s.ageOf("/jobs/fresh"); age == nil || *age != 200 {
		t.Errorf("expected age 200, got %v", age)
	}

	if rec := post("/demo/set-age", url.Values{"path": {"/jobs/fresh"}, "days": {"none"}}); rec.Code != http.StatusOK {
		t.Fatalf("set-age none: expected 200, got %d", rec.Code)
	}
	if rec := get(h, "/jobs/fresh"); rec.Header().Get("Last-Modified") != "" {
		t.Error("expected Last-Modified to be removed")
	}

	if rec := post("/demo/set-age", url.Values{"path": {"/nope"}, "days": {"1"}}); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown posting, got %d", rec.Code)
	}
	if rec := post("/demo/set-age", url.Values{"path": {"/jobs/fresh"}, "days": {"many"}}); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad days, got %d", rec.Code)
	}

	if rec := post("/demo/reset", nil); rec.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d", rec.Code)
	}
	if age := s.ageOf("/jobs/fresh"); age == nil || *age != 10 {
		t.Errorf("expected default age 10 after reset, got %v", age)
	}
}

func TestDemoServer_ControlPanel(t *testing.T) {
	t.Parallel()
	_, h := newBoard(t)

	for _, path := range []string{"/", "/demo/control"} {
		rec := get(h, path)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/jobs/stale") {
			t.Errorf("%s: expected control panel listing postings, got %d", path, rec.Code)
		}
	}
}
