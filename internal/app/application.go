package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/trusted-tools/ghostjobs/internal/analyzer"
	"github.com/trusted-tools/ghostjobs/internal/blog"
	"github.com/trusted-tools/ghostjobs/internal/logging"
	"github.com/trusted-tools/ghostjobs/internal/server"
	"github.com/trusted-tools/ghostjobs/internal/sitemap"
	"github.com/trusted-tools/ghostjobs/internal/webclient"
)

// Application is the runtime state container of the API process. It owns the
// analyzer, the sitemap refresher and the HTTP listener.
type Application struct {
	Config *Config
	Logger logging.Logger

	Analyzer analyzer.Analyzer
	Sitemap  *sitemap.Service
	Server   *server.Server

	httpServer *http.Server
	listener   net.Listener
	serveErr   chan error

	// internal context for cancellation / lifecycle
	ctx    context.Context
	cancel context.CancelFunc

	shutdownOnce sync.Once
}

// NewApplication builds every component from cfg. Nothing is started.
func NewApplication(cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("ghostjobs")
	}

	wc, err := webclient.NewWebClient(cfg.WebClientConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("new webclient: %w", err)
	}

	a, err := analyzer.NewDefaultAnalyzer(wc, logger)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("new analyzer: %w", err)
	}

	loader := blog.NewLoader(cfg.BlogConfig(), nil, logger)
	sm, err := sitemap.NewService(cfg.SitemapConfig(), loader, logger)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("new sitemap service: %w", err)
	}

	srvCfg := cfg.ServerConfig()
	srvCfg.Logger = logger
	srv, err := server.NewServer(srvCfg, a, sm)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("new server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		Config:   cfg,
		Logger:   logger,
		Analyzer: a,
		Sitemap:  sm,
		Server:   srv,
		serveErr: make(chan error, 1),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start binds the listen address, starts the sitemap schedule and serves HTTP
// in the background. Serve failures are reported on Done.
func (a *Application) Start() error {
	if a == nil {
		return errors.New("application is nil")
	}

	a.httpServer = a.Server.HTTPServer()
	ln, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.httpServer.Addr, err)
	}
	a.listener = ln

	if err := a.Sitemap.Start(a.ctx); err != nil {
		_ = ln.Close()
		return fmt.Errorf("start sitemap: %w", err)
	}

	a.Logger.Info("application starting",
		logging.Field{Key: "addr", Value: ln.Addr().String()},
		logging.Field{Key: "webclient", Value: a.Config.WebClient},
		logging.Field{Key: "swagger", Value: a.Config.EnableSwagger})

	go func() {
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.serveErr <- err
		}
		close(a.serveErr)
	}()
	return nil
}

// Addr is the bound listen address once Start has returned.
func (a *Application) Addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Done yields a serve error, or closes when the server stops cleanly.
func (a *Application) Done() <-chan error {
	return a.serveErr
}

// Shutdown drains in-flight requests, stops the sitemap schedule and closes
// the outbound client.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}

	var firstErr error
	a.shutdownOnce.Do(func() {
		a.Logger.Info("application shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		if a.httpServer != nil {
			if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
				a.Logger.Warn("http server shutdown returned error", logging.Err(err))
				firstErr = fmt.Errorf("http shutdown: %w", err)
			}
		}

		a.Sitemap.Stop()

		if err := a.Server.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close analyzer: %w", err)
		}

		// cancel internal ctx to signal local components/tests
		a.cancel()
	})
	return firstErr
}
