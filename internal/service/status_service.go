package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linescout/linescout/internal/domain"
)

// Status is a point-in-time view of stored data, per-source poll state, and
// the latest detection run per category.
type Status struct {
	Events       int64
	LatestPrices int64
	HistoryRows  int64
	Sources      []domain.SourcePollState
	Runs         []domain.RunSummary
}

// StatusService assembles Status from the stores and the run cache.
type StatusService struct {
	events domain.EventStore
	prices domain.PriceStore
	polls  domain.PollStateStore
	runs   domain.RunCache
	logger *slog.Logger
}

// NewStatusService creates a StatusService. runs may be nil, in which case
// run summaries are omitted.
func NewStatusService(events domain.EventStore, prices domain.PriceStore, polls domain.PollStateStore, runs domain.RunCache, logger *slog.Logger) *StatusService {
	return &StatusService{
		events: events,
		prices: prices,
		polls:  polls,
		runs:   runs,
		logger: logger.With(slog.String("component", "status_service")),
	}
}

// Status gathers the current counts and states.
func (s *StatusService) Status(ctx context.Context) (Status, error) {
	var st Status
	var err error

	if st.Events, err = s.events.Count(ctx); err != nil {
		return Status{}, fmt.Errorf("service: status events: %w", err)
	}
	if st.LatestPrices, err = s.prices.CountLatest(ctx); err != nil {
		return Status{}, fmt.Errorf("service: status latest prices: %w", err)
	}
	if st.HistoryRows, err = s.prices.CountHistory(ctx); err != nil {
		return Status{}, fmt.Errorf("service: status history: %w", err)
	}
	if st.Sources, err = s.polls.List(ctx); err != nil {
		return Status{}, fmt.Errorf("service: status poll states: %w", err)
	}

	if s.runs != nil {
		st.Runs, err = s.runs.GetSummaries(ctx)
		if err != nil {
			// Status stays usable without the cache; note it and move on.
			s.logger.WarnContext(ctx, "run summaries unavailable",
				slog.String("error", err.Error()),
			)
		}
	}

	return st, nil
}
