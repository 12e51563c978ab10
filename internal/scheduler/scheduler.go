// Package scheduler decides when each source should be polled. It tracks a
// per-source state machine (idle, due, polling, cooldown, quota_exhausted),
// a rolling monthly quota budget, and failure backoff. The scheduler never
// fetches anything itself; it yields poll decisions and records the outcome
// reported by the ingestion adapters.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/linescout/linescout/internal/domain"
	"github.com/linescout/linescout/internal/notify"
)

// Alerter receives operational alerts raised by scheduler transitions. The
// notifier satisfies it; a nil Alerter disables alerts.
type Alerter interface {
	Notify(ctx context.Context, event, title, message string) error
}

// SourceConfig is the scheduling configuration for one source.
type SourceConfig struct {
	Name         string
	Enabled      bool
	PollInterval time.Duration
	MonthlyQuota int // 0 means not quota-limited
}

// Options tune scheduler behaviour shared across sources.
type Options struct {
	// CooldownMultiplier scales the poll interval into the backoff delay
	// applied after a failed poll. Must be >= 1.
	CooldownMultiplier float64
	// QuotaBuffer stops polling when remaining quota drops to this many
	// calls, leaving headroom for out-of-band usage.
	QuotaBuffer int
	// Clock is injectable for tests; defaults to time.Now.
	Clock func() time.Time
	// Alerter, when set, is told about quota exhaustion and poll failures.
	Alerter Alerter
}

// Scheduler owns the poll state for every configured source. State is
// constructed from persisted values at startup and written back after every
// transition; each source is driven by a single goroutine, so writes never
// race across sources.
type Scheduler struct {
	store  domain.PollStateStore
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	sources map[string]*sourceState
	order   []string
}

type sourceState struct {
	cfg SourceConfig
	st  domain.SourcePollState
}

// New creates a Scheduler for the given sources. Call Load before use.
func New(store domain.PollStateStore, sources []SourceConfig, opts Options, logger *slog.Logger) *Scheduler {
	if opts.CooldownMultiplier < 1 {
		opts.CooldownMultiplier = 3
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	m := make(map[string]*sourceState, len(sources))
	order := make([]string, 0, len(sources))
	for _, cfg := range sources {
		m[cfg.Name] = &sourceState{cfg: cfg}
		order = append(order, cfg.Name)
	}
	return &Scheduler{
		store:   store,
		opts:    opts,
		logger:  logger.With(slog.String("component", "scheduler")),
		sources: m,
		order:   order,
	}
}

// Load restores persisted poll state for every source. Sources never polled
// before start idle with a fresh quota window.
func (s *Scheduler) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Clock()
	for name, src := range s.sources {
		st, err := s.store.Get(ctx, name)
		switch {
		case err == nil:
			src.st = st
		case errors.Is(err, domain.ErrNotFound):
			src.st = domain.SourcePollState{
				Source:       name,
				Status:       domain.PollIdle,
				QuotaResetAt: nextQuotaReset(now),
			}
		default:
			return fmt.Errorf("scheduler: load state for %s: %w", name, err)
		}
	}
	return nil
}

// Decision is the scheduler's answer for one source.
type Decision struct {
	Poll   bool
	Reason string
}

// Decide reports whether the named source should be polled now. Crossing a
// quota window boundary resets the call counter exactly once and re-enables
// quota-exhausted sources.
func (s *Scheduler) Decide(ctx context.Context, source string) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.sources[source]
	if !ok {
		return Decision{}, fmt.Errorf("scheduler: unknown source %q", source)
	}
	now := s.opts.Clock()

	if !src.cfg.Enabled {
		return Decision{Reason: "source disabled"}, nil
	}

	// Quota window reset is a calendar boundary.
	if src.cfg.MonthlyQuota > 0 && !src.st.QuotaResetAt.IsZero() && !now.Before(src.st.QuotaResetAt) {
		src.st.CallsThisWindow = 0
		src.st.QuotaResetAt = nextQuotaReset(now)
		if src.st.Status == domain.PollQuotaExhausted {
			src.st.Status = domain.PollIdle
		}
		if err := s.persist(ctx, src); err != nil {
			return Decision{}, err
		}
		s.logger.Info("quota window reset",
			slog.String("source", source),
			slog.Time("next_reset", src.st.QuotaResetAt),
		)
	}

	// Failure backoff holds the source in cooldown past its nominal interval.
	if src.st.Status == domain.PollCooldown {
		if now.Before(src.st.CooldownUntil) {
			return Decision{Reason: fmt.Sprintf("cooling down until %s", src.st.CooldownUntil.Format(time.RFC3339))}, nil
		}
		src.st.Status = domain.PollIdle
	}

	if !src.st.LastPollAt.IsZero() {
		elapsed := now.Sub(src.st.LastPollAt)
		if elapsed < src.cfg.PollInterval {
			return Decision{Reason: fmt.Sprintf("next poll in %s", (src.cfg.PollInterval - elapsed).Round(time.Second))}, nil
		}
	}

	if src.cfg.MonthlyQuota > 0 {
		remaining := src.cfg.MonthlyQuota - src.st.CallsThisWindow
		if remaining <= s.opts.QuotaBuffer {
			if src.st.Status != domain.PollQuotaExhausted {
				src.st.Status = domain.PollQuotaExhausted
				if err := s.persist(ctx, src); err != nil {
					return Decision{}, err
				}
				s.alert(ctx, notify.EventQuotaExhausted,
					fmt.Sprintf("%s quota exhausted", source),
					fmt.Sprintf("%d of %d calls used; polling paused until %s",
						src.st.CallsThisWindow, src.cfg.MonthlyQuota,
						src.st.QuotaResetAt.Format(time.RFC3339)))
			}
			return Decision{Reason: fmt.Sprintf("monthly quota exhausted (%d/%d)", src.st.CallsThisWindow, src.cfg.MonthlyQuota)}, nil
		}
	}

	src.st.Status = domain.PollDue
	return Decision{Poll: true, Reason: "ready to poll"}, nil
}

// BeginPoll transitions the source to polling. The source's cycle is strictly
// sequential: a poll must complete before the next cycle is considered.
func (s *Scheduler) BeginPoll(ctx context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.sources[source]
	if !ok {
		return fmt.Errorf("scheduler: unknown source %q", source)
	}
	src.st.Status = domain.PollPolling
	return s.persist(ctx, src)
}

// RecordSuccess records a completed poll and the API calls it consumed.
func (s *Scheduler) RecordSuccess(ctx context.Context, source string, apiCalls int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.sources[source]
	if !ok {
		return fmt.Errorf("scheduler: unknown source %q", source)
	}
	now := s.opts.Clock()
	src.st.Status = domain.PollIdle
	src.st.LastPollAt = now
	src.st.LastPollSuccess = true
	src.st.LastError = ""
	src.st.CallsThisWindow += apiCalls
	src.st.LifetimeCalls += int64(apiCalls)
	return s.persist(ctx, src)
}

// RecordFailure records a failed poll (timeouts included) and enters
// cooldown: the backoff delay is longer than the nominal interval.
func (s *Scheduler) RecordFailure(ctx context.Context, source string, pollErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.sources[source]
	if !ok {
		return fmt.Errorf("scheduler: unknown source %q", source)
	}
	now := s.opts.Clock()
	src.st.Status = domain.PollCooldown
	src.st.LastPollAt = now
	src.st.LastPollSuccess = false
	src.st.LastError = pollErr.Error()
	src.st.CooldownUntil = now.Add(time.Duration(float64(src.cfg.PollInterval) * s.opts.CooldownMultiplier))
	if err := s.persist(ctx, src); err != nil {
		return err
	}
	s.alert(ctx, notify.EventPollFailure,
		fmt.Sprintf("%s poll failed", source), pollErr.Error())
	return nil
}

// alert forwards an operational event to the configured Alerter. Delivery
// failures are logged, never propagated into the poll cycle.
func (s *Scheduler) alert(ctx context.Context, event, title, message string) {
	if s.opts.Alerter == nil {
		return
	}
	if err := s.opts.Alerter.Notify(ctx, event, title, message); err != nil {
		s.logger.Warn("alert delivery failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

// States returns a copy of every source's current poll state, ordered by the
// configured source list.
func (s *Scheduler) States() []domain.SourcePollState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.SourcePollState, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.sources[name].st)
	}
	return out
}

func (s *Scheduler) persist(ctx context.Context, src *sourceState) error {
	src.st.UpdatedAt = s.opts.Clock()
	if err := s.store.Put(ctx, src.st); err != nil {
		return fmt.Errorf("scheduler: persist state for %s: %w", src.st.Source, err)
	}
	return nil
}

// nextQuotaReset returns the start of the next calendar month in UTC.
func nextQuotaReset(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
