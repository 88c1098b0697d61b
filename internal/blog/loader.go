package blog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/trusted-tools/ghostjobs/internal/logging"
)

const maxFeedBytes = 10 << 20

// Config controls where posts come from.
type Config struct {
	// FeedURL is the CMS endpoint. Empty means only Fallback posts are used.
	FeedURL string

	// ShowScheduled includes posts whose publish date is in the future.
	ShowScheduled bool

	// Fallback is served when the feed is unset or unavailable.
	Fallback []Post
}

// Loader fetches and normalises the post list.
type Loader struct {
	cfg    Config
	client *http.Client
	logger logging.Logger
	now    func() time.Time
}

// NewLoader builds a Loader. A nil client gets a 15s timeout.
func NewLoader(cfg Config, client *http.Client, logger logging.Logger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Loader{
		cfg:    cfg,
		client: client,
		logger: logger.With(logging.Field{Key: "component", Value: "blog"}),
		now:    time.Now,
	}
}

// Load returns published posts newest first. Feed failures are logged and the
// fallback list is returned instead; Load itself never fails.
func (l *Loader) Load(ctx context.Context) []Post {
	if strings.TrimSpace(l.cfg.FeedURL) == "" {
		return l.publish(l.cfg.Fallback)
	}

	posts, err := l.fetch(ctx)
	if err != nil {
		l.logger.Warn("loading blog feed, using fallback posts",
			logging.Field{Key: "feed_url", Value: l.cfg.FeedURL},
			logging.Err(err))
		return l.publish(l.cfg.Fallback)
	}

	l.logger.Debug("loaded blog feed", logging.Field{Key: "count", Value: len(posts)})
	return l.publish(posts)
}

func (l *Loader) publish(posts []Post) []Post {
	now := l.now()
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if !p.Valid() {
			continue
		}
		if !l.cfg.ShowScheduled && !IsPublished(p.PublishedAt, now) {
			continue
		}
		out = append(out, p)
	}
	return SortDescending(out)
}

func (l *Loader) fetch(ctx context.Context) ([]Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.cfg.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json, application/feed+json, application/rss+xml, application/atom+xml")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return ParseFeed(body)
}

// ParseFeed decodes a feed body. A JSON array is read as CMS posts; anything
// else is handed to gofeed, which understands RSS, Atom and JSON Feed.
func ParseFeed(body []byte) ([]Post, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []CMSPost
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("json unmarshal: %w", err)
		}
		posts := make([]Post, 0, len(items))
		for _, it := range items {
			posts = append(posts, Normalize(it))
		}
		return posts, nil
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(trimmed))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	posts := make([]Post, 0, len(feed.Items))
	for _, it := range feed.Items {
		posts = append(posts, Normalize(fromFeedItem(it)))
	}
	return posts, nil
}

func fromFeedItem(it *gofeed.Item) CMSPost {
	p := CMSPost{
		Slug:        slugFromLink(it.Link),
		Title:       it.Title,
		Description: it.Description,
		Tags:        it.Categories,
	}
	if p.Slug == "" {
		p.Slug = slugFromLink(it.GUID)
	}
	if p.Description == "" {
		p.Description = it.Content
	}
	if it.PublishedParsed != nil {
		p.PublishedAt = it.PublishedParsed.UTC().Format(time.RFC3339)
	}
	if it.UpdatedParsed != nil {
		p.UpdatedAt = it.UpdatedParsed.UTC().Format(time.RFC3339)
		if p.PublishedAt == "" {
			p.PublishedAt = p.UpdatedAt
		}
	}
	if len(it.Authors) > 0 && it.Authors[0] != nil {
		p.AuthorName = it.Authors[0].Name
		p.AuthorType = AuthorPerson
	}
	return p
}

// slugFromLink returns the last path segment of a post URL.
func slugFromLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	slug := path.Base(strings.TrimRight(u.Path, "/"))
	if slug == "." || slug == "/" {
		return ""
	}
	return slug
}
