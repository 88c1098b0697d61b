// Package sitemap renders the public site's sitemap.xml from the blog feed.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/trusted-tools/ghostjobs/internal/blog"
)

const namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// URL is one <url> entry.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Entries lists the sitemap URLs for origin: the landing page, the blog index
// and every published post with a slug.
func Entries(origin string, posts []blog.Post, now time.Time) []URL {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	urls := []URL{
		{Loc: origin + "/", ChangeFreq: "daily", Priority: "1.0"},
		{Loc: origin + "/blog", ChangeFreq: "weekly", Priority: "0.8"},
	}
	for _, p := range posts {
		if p.Slug == "" || !blog.IsPublished(p.PublishedAt, now) {
			continue
		}
		urls = append(urls, URL{
			Loc:        origin + "/blog/" + p.Slug,
			LastMod:    dateOnly(p.LastModified(), now),
			ChangeFreq: "monthly",
			Priority:   "0.7",
		})
	}
	return urls
}

// Build renders the sitemap document.
func Build(origin string, posts []blog.Post, now time.Time) ([]byte, error) {
	set := urlSet{Xmlns: namespace, URLs: Entries(origin, posts, now)}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	doc := make([]byte, 0, len(xml.Header)+len(out)+1)
	doc = append(doc, xml.Header...)
	doc = append(doc, out...)
	doc = append(doc, '\n')
	return doc, nil
}

func dateOnly(s string, now time.Time) string {
	if s == "" {
		return now.UTC().Format("2006-01-02")
	}
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
