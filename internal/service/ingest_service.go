package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linescout/linescout/internal/domain"
)

// IngestService persists poll results. It is the scheduler workers' sink:
// events first so price rows never reference an unknown event, then the
// price batch in its own transaction.
type IngestService struct {
	events domain.EventStore
	prices domain.PriceStore
	logger *slog.Logger
}

// NewIngestService creates an IngestService.
func NewIngestService(events domain.EventStore, prices domain.PriceStore, logger *slog.Logger) *IngestService {
	return &IngestService{
		events: events,
		prices: prices,
		logger: logger.With(slog.String("component", "ingest_service")),
	}
}

// StorePollResult writes one poll's events and observations.
func (s *IngestService) StorePollResult(ctx context.Context, res domain.PollResult) error {
	if err := s.events.UpsertBatch(ctx, res.Events); err != nil {
		return fmt.Errorf("service: store events from %s: %w", res.Source, err)
	}
	if err := s.prices.UpsertBatch(ctx, res.Observations); err != nil {
		return fmt.Errorf("service: store prices from %s: %w", res.Source, err)
	}

	s.logger.DebugContext(ctx, "poll result stored",
		slog.String("source", res.Source),
		slog.Int("events", len(res.Events)),
		slog.Int("observations", len(res.Observations)),
	)
	return nil
}
