package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var (
	ErrEmptyURL          = errors.New("empty url")
	ErrMissingHost       = errors.New("missing host")
	ErrUnsupportedScheme = errors.New("unsupported scheme")
)

// NormalizeTargetURL prepares a user-supplied posting URL for fetching.
//
// Scheme and host are lower-cased, IDN hosts are converted to punycode, default
// ports and the fragment are dropped. Path and query are left untouched because
// job boards frequently encode the posting identity in them.
//
// Examples:
//
//	" HTTPS://Jobs.Example.COM:443/p/42?ref=x#apply " → "https://jobs.example.com/p/42?ref=x"
//	"http://bücher.example/jobs"                       → "http://xn--bcher-kva.example/jobs"
func NormalizeTargetURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &url.Error{Op: "parse", URL: raw, Err: ErrEmptyURL}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("couldn't parse url %s: %w", raw, err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &url.Error{Op: "parse", URL: raw, Err: ErrUnsupportedScheme}
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", &url.Error{Op: "parse", URL: raw, Err: ErrMissingHost}
	}
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}

	port := u.Port()
	switch {
	case (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443"):
		u.Host = hostOnly(host)
	case port != "":
		u.Host = net.JoinHostPort(host, port)
	default:
		u.Host = hostOnly(host)
	}

	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}

// hostOnly re-brackets IPv6 literals that Hostname() unwrapped.
func hostOnly(host string) string {
	if strings.Contains(host, ":") {
		return "[" + host + "]"
	}
	return host
}

// Hostname returns the lower-cased host of raw, or "" when raw does not parse.
func Hostname(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
