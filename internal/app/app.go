// Package app provides the top-level application lifecycle for linescout. It
// wires together the stores, caches, blob storage, ingestion adapters,
// scheduler, and detection services, then runs the requested command.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linescout/linescout/internal/config"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies and executes the requested command. The arg is
// the optional category for the detect command. Run blocks until the command
// completes or, for daemon, until the context is cancelled.
func (a *App) Run(ctx context.Context, command, arg string) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("command", command),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	switch command {
	case "ingest":
		return a.IngestMode(ctx, deps)
	case "detect":
		return a.DetectMode(ctx, deps, arg)
	case "status":
		return a.StatusMode(ctx, deps)
	case "daemon":
		return a.DaemonMode(ctx, deps)
	default:
		return fmt.Errorf("app: unsupported command %q", command)
	}
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
