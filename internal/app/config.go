package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/trusted-tools/ghostjobs/internal/blog"
	"github.com/trusted-tools/ghostjobs/internal/server"
	"github.com/trusted-tools/ghostjobs/internal/sitemap"
	"github.com/trusted-tools/ghostjobs/internal/webclient"
)

// Config is the runtime configuration of the API process, read from
// GHOSTJOBS_* environment variables.
type Config struct {
	ListenAddr string `env:"GHOSTJOBS_LISTEN_ADDR" envDefault:":3001"`
	LogLevel   string `env:"GHOSTJOBS_LOG_LEVEL"   envDefault:"info"`

	// Outbound fetching
	WebClient    string        `env:"GHOSTJOBS_WEBCLIENT"      envDefault:"nethttp"`
	FetchTimeout time.Duration `env:"GHOSTJOBS_FETCH_TIMEOUT"  envDefault:"20s"`
	UserAgent    string        `env:"GHOSTJOBS_USER_AGENT"     envDefault:"GhostJobChecker/1.0"`
	MaxBodyBytes int64         `env:"GHOSTJOBS_MAX_BODY_BYTES" envDefault:"5242880"`

	// Site
	SiteOrigin        string `env:"GHOSTJOBS_SITE_ORIGIN"         envDefault:"https://ghostjobs.trusted-tools.com"`
	BlogFeedURL       string `env:"GHOSTJOBS_BLOG_FEED_URL"`
	BlogShowScheduled bool   `env:"GHOSTJOBS_BLOG_SHOW_SCHEDULED" envDefault:"false"`
	SitemapRefresh    string `env:"GHOSTJOBS_SITEMAP_REFRESH"     envDefault:"@every 1h"`

	EnableSwagger bool `env:"GHOSTJOBS_SWAGGER" envDefault:"true"`
}

// DefaultConfig returns the configuration used when no environment is set.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:     ":3001",
		LogLevel:       "info",
		WebClient:      string(webclient.ClientNetHTTP),
		FetchTimeout:   webclient.DefaultTimeout,
		UserAgent:      webclient.DefaultUserAgent,
		MaxBodyBytes:   webclient.DefaultMaxBodyBytes,
		SiteOrigin:     "https://ghostjobs.trusted-tools.com",
		SitemapRefresh: sitemap.DefaultSchedule,
		EnableSwagger:  true,
	}
}

// LoadConfig reads the process environment.
func LoadConfig() (*Config, error) {
	return parseConfig(env.Options{})
}

// LoadConfigFrom reads environ instead of the process environment.
func LoadConfigFrom(environ map[string]string) (*Config, error) {
	return parseConfig(env.Options{Environment: environ})
}

func parseConfig(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("GHOSTJOBS_LISTEN_ADDR must not be empty")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("GHOSTJOBS_FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}
	if !webclient.HasBackend(webclient.Client(c.WebClient)) {
		return fmt.Errorf("GHOSTJOBS_WEBCLIENT %q is not one of %v", c.WebClient, webclient.ListBackends())
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("GHOSTJOBS_MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

func (c *Config) WebClientConfig() webclient.Config {
	return webclient.Config{
		Client:       webclient.Client(c.WebClient),
		UserAgent:    c.UserAgent,
		Timeout:      c.FetchTimeout,
		MaxBodyBytes: c.MaxBodyBytes,
		MaxRedirects: webclient.DefaultMaxRedirects,
	}
}

func (c *Config) ServerConfig() server.Config {
	return server.Config{
		ListenAddr:    c.ListenAddr,
		EnableSwagger: c.EnableSwagger,
	}
}

func (c *Config) BlogConfig() blog.Config {
	return blog.Config{
		FeedURL:       c.BlogFeedURL,
		ShowScheduled: c.BlogShowScheduled,
		Fallback:      blog.DefaultPosts(),
	}
}

func (c *Config) SitemapConfig() sitemap.ServiceConfig {
	return sitemap.ServiceConfig{
		Origin:   c.SiteOrigin,
		Schedule: c.SitemapRefresh,
	}
}
