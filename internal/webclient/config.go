package webclient

import "time"

type Client string

const (
	ClientNetHTTP Client = "nethttp"
)

const (
	DefaultUserAgent    = "GhostJobChecker/1.0"
	DefaultTimeout      = 20 * time.Second
	DefaultMaxBodyBytes = 5 << 20
	DefaultMaxRedirects = 10
)

// Config is the subset of application configuration the web client backends need.
type Config struct {
	Client Client

	// UserAgent is sent on every request that does not set its own.
	UserAgent string

	// Timeout bounds a whole request including redirects and body read.
	Timeout time.Duration

	// MaxBodyBytes caps how much of a response body is kept. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// MaxRedirects is the number of redirects followed before giving up.
	MaxRedirects int
}

// DefaultConfig returns the settings used by the analyze endpoint.
func DefaultConfig() Config {
	return Config{
		Client:       ClientNetHTTP,
		UserAgent:    DefaultUserAgent,
		Timeout:      DefaultTimeout,
		MaxBodyBytes: DefaultMaxBodyBytes,
		MaxRedirects: DefaultMaxRedirects,
	}
}

func (c Config) withDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = DefaultMaxRedirects
	}
	return c
}
