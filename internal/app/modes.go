package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linescout/linescout/internal/report"
	"github.com/linescout/linescout/internal/scheduler"
	"github.com/linescout/linescout/internal/service"
)

// buildWorkers pairs each adapter with a scheduler-driven worker.
func (a *App) buildWorkers(deps *Dependencies) []*scheduler.Worker {
	workers := make([]*scheduler.Worker, 0, len(deps.Adapters))
	for _, adapter := range deps.Adapters {
		workers = append(workers, scheduler.NewWorker(
			deps.Scheduler, adapter, deps.Ingest,
			a.cfg.Scheduler.CheckInterval(),
			a.cfg.Scheduler.PollTimeout(),
			a.logger,
		))
	}
	return workers
}

// IngestMode polls every enabled source once, regardless of the normal poll
// interval, and exits. Quota accounting and poll state are still recorded.
func (a *App) IngestMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting ingest run",
		slog.Int("sources", len(deps.Adapters)),
	)

	if err := deps.Scheduler.Load(ctx); err != nil {
		return err
	}

	for _, w := range a.buildWorkers(deps) {
		w.Poll(ctx)
	}

	a.logger.InfoContext(ctx, "ingest run complete")
	return nil
}

// DetectMode runs one detection pass over the stored snapshot and prints the
// results. An empty category argument runs every category.
func (a *App) DetectMode(ctx context.Context, deps *Dependencies, categoryArg string) error {
	categories, err := service.ParseCategory(categoryArg)
	if err != nil {
		return err
	}

	opps, err := deps.Detect.Run(ctx, categories)
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stdout, report.RenderOpportunities(opps))
	return nil
}

// StatusMode prints stored-data counts, per-source poll state, and the latest
// detection run summaries.
func (a *App) StatusMode(ctx context.Context, deps *Dependencies) error {
	st, err := deps.Status.Status(ctx)
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stdout, report.RenderStatus(
		st.Events, st.LatestPrices, st.HistoryRows, st.Sources, st.Runs,
	))
	return nil
}

// DaemonMode runs the full loop: one worker goroutine per source, a periodic
// detection pass, and the history archiver when enabled. It blocks until the
// context is cancelled or a goroutine fails.
func (a *App) DaemonMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting daemon",
		slog.Int("sources", len(deps.Adapters)),
		slog.Duration("detect_interval", a.cfg.Scheduler.DetectInterval()),
	)

	if err := deps.Scheduler.Load(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	for _, w := range a.buildWorkers(deps) {
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	g.Go(func() error {
		return a.detectLoop(ctx, deps)
	})

	if deps.Archiver != nil {
		g.Go(func() error {
			return a.archiveLoop(ctx, deps)
		})
	}

	return g.Wait()
}

// detectLoop runs a full detection pass on a fixed cadence. A failed pass is
// logged and the loop continues; detection failures must not take down
// ingestion.
func (a *App) detectLoop(ctx context.Context, deps *Dependencies) error {
	ticker := time.NewTicker(a.cfg.Scheduler.DetectInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := deps.Detect.Run(ctx, service.AllCategories); err != nil {
				a.logger.ErrorContext(ctx, "detection pass failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// archiveLoop periodically moves aged price history to cold storage.
func (a *App) archiveLoop(ctx context.Context, deps *Dependencies) error {
	ticker := time.NewTicker(a.cfg.Archive.Interval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := deps.Archiver.ArchiveHistory(ctx)
			if err != nil {
				a.logger.ErrorContext(ctx, "archive pass failed",
					slog.String("error", err.Error()),
				)
				continue
			}
			if n > 0 {
				a.logger.InfoContext(ctx, "archive pass complete", slog.Int("rows", n))
			}
		}
	}
}
