package blog

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trusted-tools/ghostjobs/internal/testutil"
)

var loaderNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newTestLoader(cfg Config, logger *testutil.DummyLogger) *Loader {
	l := NewLoader(cfg, nil, logger)
	l.now = func() time.Time { return loaderNow }
	return l
}

func slugs(posts []Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Slug)
	}
	return out
}

func equalSlugs(t *testing.T, got []Post, want ...string) {
	t.Helper()
	s := slugs(got)
	if len(s) != len(want) {
		t.Fatalf("expected slugs %v, got %v", want, s)
	}
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("expected slugs %v, got %v", want, s)
		}
	}
}

const cmsFeed = `[
	{"slug":"older","title":"Older","description":"d","publishedAt":"2026-03-01"},
	{"slug":"newer","title":"Newer","description":"d","publishedAt":"2026-09-20T09:00:00Z","authorName":"Dana","authorType":"Person"},
	{"slug":"scheduled","title":"Later","description":"d","publishedAt":"2026-12-01"},
	{"slug":"","title":"No slug","description":"d","publishedAt":"2026-01-01"}
]`

func TestLoader_Load_JSONFeed(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cache-Control") != "no-store" {
			t.Errorf("expected no-store cache control, got %q", r.Header.Get("Cache-Control"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, cmsFeed)
	}))
	defer ts.Close()

	l := newTestLoader(Config{FeedURL: ts.URL}, &testutil.DummyLogger{})
	posts := l.Load(context.Background())

	equalSlugs(t, posts, "newer", "older")
	if posts[0].Author.Name != "Dana" || posts[0].Author.Type != AuthorPerson {
		t.Errorf("unexpected author %+v", posts[0].Author)
	}
}

func TestLoader_Load_ShowScheduled(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, cmsFeed)
	}))
	defer ts.Close()

	l := newTestLoader(Config{FeedURL: ts.URL, ShowScheduled: true}, &testutil.DummyLogger{})
	equalSlugs(t, l.Load(context.Background()), "scheduled", "newer", "older")
}

func TestLoader_Load_RSSFeed(t *testing.T) {
	t.Parallel()
	const rss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Ghost Jobs Blog</title>
<item><title>Why postings linger</title><link>https://ghostjobs.example/blog/why-postings-linger</link>
<description>Old listings explained</description><pubDate>Mon, 14 Sep 2026 10:00:00 GMT</pubDate>
<category>research</category></item>
<item><title>Reading headers</title><link>https://ghostjobs.example/blog/reading-headers/</link>
<description>Last-Modified 101</description><pubDate>Tue, 01 Sep 2026 10:00:00 GMT</pubDate></item>
</channel></rss>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = io.WriteString(w, rss)
	}))
	defer ts.Close()

	posts := newTestLoader(Config{FeedURL: ts.URL}, &testutil.DummyLogger{}).Load(context.Background())
	equalSlugs(t, posts, "why-postings-linger", "reading-headers")
	if posts[0].PublishedAt != "2026-09-14T10:00:00Z" {
		t.Errorf("unexpected publishedAt %q", posts[0].PublishedAt)
	}
	if len(posts[0].Tags) != 1 || posts[0].Tags[0] != "research" {
		t.Errorf("unexpected tags %v", posts[0].Tags)
	}
}

func TestLoader_Load_FallsBack(t *testing.T) {
	t.Parallel()
	fallback := []Post{
		Normalize(CMSPost{Slug: "evergreen", Title: "Evergreen", Description: "d", PublishedAt: "2026-01-01"}),
		Normalize(CMSPost{Slug: "future", Title: "Future", Description: "d", PublishedAt: "2027-01-01"}),
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer failing.Close()

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "definitely not a feed")
	}))
	defer garbage.Close()

	cases := []struct {
		name  string
		url   string
		warns int
	}{
		{"no feed configured", "", 0},
		{"upstream error", failing.URL, 1},
		{"unparsable body", garbage.URL, 1},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			logger := &testutil.DummyLogger{}
			l := newTestLoader(Config{FeedURL: tc.url, Fallback: fallback}, logger)
			equalSlugs(t, l.Load(context.Background()), "evergreen")
			if logger.WarnCount() != tc.warns {
				t.Errorf("expected %d warnings, got %d", tc.warns, logger.WarnCount())
			}
		})
	}
}

func TestSlugFromLink(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"https://x.example/blog/first-post":  "first-post",
		"https://x.example/blog/first-post/": "first-post",
		"https://x.example/":                 "",
		"":                                   "",
	}
	for in, want := range cases {
		if got := slugFromLink(in); got != want {
			t.Errorf("slugFromLink(%q) = %q, want %q", in, got, want)
		}
	}
}
