// Package analyzer scores a job posting URL by the age of its Last-Modified header.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/trusted-tools/ghostjobs/internal/logging"
	"github.com/trusted-tools/ghostjobs/internal/model"
	"github.com/trusted-tools/ghostjobs/internal/utils"
	"github.com/trusted-tools/ghostjobs/internal/webclient"
)

// ErrUpstreamFetch wraps every failure to retrieve the posting page.
var ErrUpstreamFetch = errors.New("failed to fetch job page")

// Analyzer scores a posting URL.
type Analyzer interface {
	Analyze(ctx context.Context, rawURL string) (*Report, error)
	Close() error
}

// Report is the full outcome of one analysis.
type Report struct {
	URL          string        `json:"url"`
	FinalURL     string        `json:"final_url"`
	StatusCode   int           `json:"status_code"`
	LastModified *time.Time    `json:"last_modified,omitempty"`
	DaysOld      *int          `json:"days_old,omitempty"`
	Freshness    Freshness     `json:"freshness"`
	Score        int           `json:"score"`
	Signals      model.Signals `json:"signals"`
	Page         PageInfo      `json:"page"`
	AnalyzedAt   time.Time     `json:"analyzed_at"`
}

// Response projects the report onto the public /api/analyze body.
func (r *Report) Response() model.AnalyzeResponse {
	return model.AnalyzeResponse{Score: r.Score, Signals: r.Signals}
}

// Option customises a DefaultAnalyzer.
type Option func(*DefaultAnalyzer)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *DefaultAnalyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// DefaultAnalyzer performs one GET per analysis through a WebClient.
type DefaultAnalyzer struct {
	client webclient.WebClient
	logger logging.Logger
	now    func() time.Time
}

// NewDefaultAnalyzer builds an analyzer on top of client.
func NewDefaultAnalyzer(client webclient.WebClient, logger logging.Logger, opts ...Option) (*DefaultAnalyzer, error) {
	if client == nil {
		return nil, errors.New("analyzer: nil webclient")
	}
	if logger == nil {
		return nil, errors.New("analyzer: nil logger")
	}

	a := &DefaultAnalyzer{
		client: client,
		logger: logger.With(logging.Field{Key: "component", Value: "analyzer"}),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Analyze fetches rawURL once and scores it. Any fetch failure is returned
// wrapped in ErrUpstreamFetch; a non-2xx status is not an error.
func (a *DefaultAnalyzer) Analyze(ctx context.Context, rawURL string) (*Report, error) {
	target, err := utils.NormalizeTargetURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
	}

	resp, err := a.client.Do(ctx, &webclient.Request{Method: http.MethodGet, URL: target})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
	}

	now := a.now()
	report := &Report{
		URL:        target,
		FinalURL:   resp.URL,
		StatusCode: resp.StatusCode,
		AnalyzedAt: now.UTC(),
	}
	if report.FinalURL == "" {
		report.FinalURL = target
	}

	if detected, ok := ParseLastModified(resp.Headers.Get("Last-Modified")); ok {
		days := DaysOld(now, detected)
		detected = detected.UTC()
		report.LastModified = &detected
		report.DaysOld = &days
	}

	report.Freshness = FreshnessBucket(report.DaysOld)
	report.Score = ScoreFor(report.Freshness)
	report.Signals = BuildSignals(report.Freshness, report.DaysOld, resp.StatusCode)
	report.Page = ExtractPageInfo(resp.Body)

	fields := []logging.Field{
		{Key: "url", Value: target},
		{Key: "host", Value: utils.Hostname(report.FinalURL)},
		{Key: "status", Value: resp.StatusCode},
		{Key: "freshness", Value: string(report.Freshness)},
		{Key: "score", Value: report.Score},
	}
	if report.DaysOld != nil {
		fields = append(fields, logging.Field{Key: "days_old", Value: *report.DaysOld})
	}
	if report.Page.Title != "" {
		fields = append(fields, logging.Field{Key: "title", Value: report.Page.Title})
	}
	a.logger.Info("analyzed posting", fields...)

	return report, nil
}

// Close releases the underlying web client.
func (a *DefaultAnalyzer) Close() error {
	return a.client.Close()
}
