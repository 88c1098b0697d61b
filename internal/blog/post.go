// Package blog loads the marketing blog's post list from the CMS feed.
package blog

import (
	"sort"
	"strings"
	"time"
)

const (
	DefaultAuthorName  = "Ghost Jobs Editorial Team"
	AuthorOrganization = "Organization"
	AuthorPerson       = "Person"
)

// ContentBlock is a paragraph or an image in a post body.
type ContentBlock struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Src     string `json:"src,omitempty"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

type Citation struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Author struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
	Type string `json:"type,omitempty"`
}

// CMSPost is one item of the CMS JSON feed as published.
type CMSPost struct {
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	PublishedAt string         `json:"publishedAt"`
	UpdatedAt   string         `json:"updatedAt,omitempty"`
	AuthorName  string         `json:"authorName,omitempty"`
	AuthorRole  string         `json:"authorRole,omitempty"`
	AuthorType  string         `json:"authorType,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Content     []ContentBlock `json:"content,omitempty"`
	Citations   []Citation     `json:"citations,omitempty"`
	Methodology []string       `json:"methodology,omitempty"`
}

// Post is a normalised blog post.
type Post struct {
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	PublishedAt string         `json:"publishedAt"`
	UpdatedAt   string         `json:"updatedAt,omitempty"`
	Author      Author         `json:"author"`
	Tags        []string       `json:"tags"`
	Content     []ContentBlock `json:"content"`
	Citations   []Citation     `json:"citations,omitempty"`
	Methodology []string       `json:"methodology,omitempty"`
}

// Normalize trims every string field and fills author defaults.
func Normalize(in CMSPost) Post {
	p := Post{
		Slug:        strings.TrimSpace(in.Slug),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		PublishedAt: strings.TrimSpace(in.PublishedAt),
		UpdatedAt:   strings.TrimSpace(in.UpdatedAt),
		Author: Author{
			Name: strings.TrimSpace(in.AuthorName),
			Role: strings.TrimSpace(in.AuthorRole),
			Type: in.AuthorType,
		},
		Tags:        make([]string, 0, len(in.Tags)),
		Content:     in.Content,
		Citations:   in.Citations,
		Methodology: in.Methodology,
	}
	if p.Author.Name == "" {
		p.Author.Name = DefaultAuthorName
	}
	if p.Author.Type == "" {
		p.Author.Type = AuthorOrganization
	}
	for _, tag := range in.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			p.Tags = append(p.Tags, tag)
		}
	}
	if p.Content == nil {
		p.Content = []ContentBlock{}
	}
	return p
}

// Valid reports whether p has every field the site needs to render it.
func (p Post) Valid() bool {
	return p.Slug != "" && p.Title != "" && p.Description != "" && p.PublishedAt != ""
}

// LastModified is the sitemap date for p: UpdatedAt when set, else PublishedAt.
func (p Post) LastModified() string {
	if p.UpdatedAt != "" {
		return p.UpdatedAt
	}
	return p.PublishedAt
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseDate parses the date formats the CMS emits.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsPublished reports whether publishedAt parses and is not after now.
func IsPublished(publishedAt string, now time.Time) bool {
	t, ok := ParseDate(publishedAt)
	return ok && !t.After(now)
}

// SortDescending orders posts newest first. Unparsable dates sort as the epoch.
func SortDescending(posts []Post) []Post {
	out := append([]Post(nil), posts...)
	key := func(p Post) time.Time {
		if t, ok := ParseDate(p.PublishedAt); ok {
			return t
		}
		return time.Unix(0, 0)
	}
	sort.SliceStable(out, func(i, j int) bool { return key(out[i]).After(key(out[j])) })
	return out
}
