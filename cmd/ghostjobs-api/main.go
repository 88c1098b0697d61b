// Command ghostjobs-api serves the Ghost Job Checker HTTP API.
// Configuration comes from GHOSTJOBS_* environment variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trusted-tools/ghostjobs/internal/app"
	"github.com/trusted-tools/ghostjobs/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	logger := logging.NewLogger(os.Stdout, "ghostjobs-api", logging.ParseLevel(cfg.LogLevel))

	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		logger.Error("building application", logging.Err(err))
		return 1
	}
	if err := application.Start(); err != nil {
		logger.Error("starting application", logging.Err(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("signal received, shutting down")
	case err := <-application.Done():
		if err != nil {
			logger.Error("http server failed", logging.Err(err))
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", logging.Err(err))
		exitCode = 1
	}
	return exitCode
}
