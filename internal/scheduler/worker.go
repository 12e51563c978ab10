package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/linescout/linescout/internal/domain"
)

// Poller is the capability interface ingestion adapters expose to the
// scheduler: fetch once, report what was ingested and how many API calls it
// cost.
type Poller interface {
	Name() string
	Category() domain.SourceCategory
	Poll(ctx context.Context) (domain.PollResult, error)
}

// Sink receives a successful poll's results for persistence.
type Sink interface {
	StorePollResult(ctx context.Context, res domain.PollResult) error
}

// Worker drives one source's poll cycle. Each worker runs in its own
// goroutine; a source's cycles are strictly sequential because the worker
// only considers the next cycle after the previous poll completed.
type Worker struct {
	sched       *Scheduler
	poller      Poller
	sink        Sink
	checkEvery  time.Duration
	pollTimeout time.Duration
	logger      *slog.Logger
}

// NewWorker creates a worker for one source.
func NewWorker(sched *Scheduler, poller Poller, sink Sink, checkEvery, pollTimeout time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		sched:       sched,
		poller:      poller,
		sink:        sink,
		checkEvery:  checkEvery,
		pollTimeout: pollTimeout,
		logger: logger.With(
			slog.String("component", "poll_worker"),
			slog.String("source", poller.Name()),
		),
	}
}

// Run loops until ctx is cancelled. Cancellation stops new cycles; a cycle
// already in flight runs to completion on a detached context so records are
// never left half-written.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.checkEvery)
	defer ticker.Stop()

	// First check immediately on start.
	if err := w.cycle(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.cycle(ctx); err != nil {
				return err
			}
		}
	}
}

// cycle runs one check-and-maybe-poll pass.
func (w *Worker) cycle(ctx context.Context) error {
	dec, err := w.sched.Decide(ctx, w.poller.Name())
	if err != nil {
		return err
	}
	if !dec.Poll {
		w.logger.Debug("poll skipped", slog.String("reason", dec.Reason))
		return nil
	}
	w.Poll(ctx)
	return nil
}

// Poll executes a single poll attempt and records its outcome. Calling it
// directly bypasses the scheduler's decision (manual `ingest` runs); quota
// and state are still recorded.
func (w *Worker) Poll(ctx context.Context) {
	if err := w.sched.BeginPoll(ctx, w.poller.Name()); err != nil {
		w.logger.Error("begin poll failed", slog.String("error", err.Error()))
		return
	}

	// Detach from the caller's cancellation so an in-flight poll finishes
	// instead of aborting mid-write; the timeout still bounds it.
	pollCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.pollTimeout)
	defer cancel()

	start := time.Now()
	res, err := w.poller.Poll(pollCtx)
	if err != nil {
		// A timeout is a failure like any other for backoff purposes.
		w.logger.Warn("poll failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		if recErr := w.sched.RecordFailure(pollCtx, w.poller.Name(), err); recErr != nil {
			w.logger.Error("record failure failed", slog.String("error", recErr.Error()))
		}
		return
	}

	if err := w.sink.StorePollResult(pollCtx, res); err != nil {
		w.logger.Error("store poll result failed", slog.String("error", err.Error()))
		if recErr := w.sched.RecordFailure(pollCtx, w.poller.Name(), err); recErr != nil {
			w.logger.Error("record failure failed", slog.String("error", recErr.Error()))
		}
		return
	}

	if err := w.sched.RecordSuccess(pollCtx, w.poller.Name(), res.APICalls); err != nil {
		w.logger.Error("record success failed", slog.String("error", err.Error()))
		return
	}

	w.logger.Info("poll complete",
		slog.Int("events", len(res.Events)),
		slog.Int("observations", len(res.Observations)),
		slog.Int("api_calls", res.APICalls),
		slog.Duration("elapsed", time.Since(start)),
	)
}
