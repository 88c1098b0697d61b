package sitemap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/trusted-tools/ghostjobs/internal/blog"
	"github.com/trusted-tools/ghostjobs/internal/logging"
)

const DefaultSchedule = "@every 1h"

var ErrNotReady = errors.New("sitemap not generated yet")

// PostSource supplies the posts to list. *blog.Loader satisfies it.
type PostSource interface {
	Load(ctx context.Context) []blog.Post
}

type ServiceConfig struct {
	Origin   string
	Schedule string
}

// Service keeps a rendered sitemap in memory and re-renders it on a cron
// schedule.
type Service struct {
	cfg    ServiceConfig
	source PostSource
	logger logging.Logger
	now    func() time.Time

	mu          sync.RWMutex
	doc         []byte
	generatedAt time.Time

	cron *cron.Cron
}

func NewService(cfg ServiceConfig, source PostSource, logger logging.Logger) (*Service, error) {
	if source == nil {
		return nil, errors.New("sitemap: nil post source")
	}
	if logger == nil {
		return nil, errors.New("sitemap: nil logger")
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	return &Service{
		cfg:    cfg,
		source: source,
		logger: logger.With(logging.Field{Key: "component", Value: "sitemap"}),
		now:    time.Now,
	}, nil
}

// Refresh loads the posts and re-renders the cached document.
func (s *Service) Refresh(ctx context.Context) error {
	posts := s.source.Load(ctx)
	now := s.now()
	doc, err := Build(s.cfg.Origin, posts, now)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = doc
	s.generatedAt = now
	s.mu.Unlock()

	s.logger.Info("sitemap generated",
		logging.Field{Key: "posts", Value: len(posts)},
		logging.Field{Key: "bytes", Value: len(doc)})
	return nil
}

// XML returns the last rendered document, or ErrNotReady before the first
// successful Refresh.
func (s *Service) XML() ([]byte, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, time.Time{}, ErrNotReady
	}
	return s.doc, s.generatedAt, nil
}

// Start registers the refresh job and runs one refresh in the background so
// the document is available without waiting for the first tick.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.cron != nil {
		s.mu.Unlock()
		return errors.New("sitemap: already started")
	}
	c := cron.New()
	if _, err := c.AddFunc(s.cfg.Schedule, func() { s.refreshLogged(ctx) }); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("cron.AddFunc %q: %w", s.cfg.Schedule, err)
	}
	s.cron = c
	s.mu.Unlock()

	c.Start()
	s.logger.Info("sitemap refresh scheduled", logging.Field{Key: "schedule", Value: s.cfg.Schedule})

	go s.refreshLogged(ctx)
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.logger.Info("sitemap refresh stopped")
}

func (s *Service) refreshLogged(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Error("sitemap refresh failed", logging.Err(err))
	}
}
