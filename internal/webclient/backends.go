package webclient

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/trusted-tools/ghostjobs/internal/logging"
)

// ErrUnknownBackend is returned for a GHOSTJOBS_WEBCLIENT value nothing registered.
var ErrUnknownBackend = errors.New("unknown webclient backend")

// BackendConstructor builds a WebClient. cfg always has the checker defaults
// applied, so every backend fetches with the same user agent, timeout and caps.
type BackendConstructor func(cfg Config, logger logging.Logger) (WebClient, error)

var (
	mu       sync.RWMutex
	backends = map[string]BackendConstructor{}
)

func init() {
	RegisterBackend(string(ClientNetHTTP), func(cfg Config, logger logging.Logger) (WebClient, error) {
		return NewNetHTTPClient(cfg, logger, nil)
	})
}

func backendName(c Client) string {
	name := strings.ToLower(strings.TrimSpace(string(c)))
	if name == "" {
		return string(ClientNetHTTP)
	}
	return name
}

// RegisterBackend adds or replaces a backend under its lower-cased name.
func RegisterBackend(name string, ctor BackendConstructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	backends[strings.ToLower(name)] = ctor
}

// HasBackend reports whether c names a registered backend. An empty name is
// the nethttp default.
func HasBackend(c Client) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := backends[backendName(c)]
	return ok
}

// NewWebClient builds the backend cfg.Client names, nethttp when unset.
func NewWebClient(cfg Config, logger logging.Logger) (WebClient, error) {
	name := backendName(cfg.Client)

	mu.RLock()
	ctor, ok := backends[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q: available backends=%v", ErrUnknownBackend, name, ListBackends())
	}

	cfg = cfg.withDefaults()
	cfg.Client = Client(name)
	wc, err := ctor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("construct webclient backend %q: %w", name, err)
	}
	if wc == nil {
		return nil, fmt.Errorf("webclient backend %q returned nil", name)
	}

	if logger != nil {
		logger.Debug("webclient ready",
			logging.Field{Key: "backend", Value: name},
			logging.Field{Key: "user_agent", Value: cfg.UserAgent},
			logging.Field{Key: "timeout", Value: cfg.Timeout.String()})
	}
	return wc, nil
}

// ListBackends returns the registered backend names, sorted.
func ListBackends() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(backends))
	for k := range backends {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
