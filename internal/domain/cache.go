package domain

import (
	"context"
	"time"
)

// SignalBus publishes detection results as JSON events for external
// reporting and lets consumers subscribe to a channel.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// RunSummary is a per-category count of the most recent detection run.
type RunSummary struct {
	Category OpportunityCategory
	Count    int
	RunAt    time.Time
}

// RunCache stores the last detection run summary per category so status
// queries do not have to re-run detection.
type RunCache interface {
	SetSummary(ctx context.Context, s RunSummary) error
	GetSummaries(ctx context.Context) ([]RunSummary, error)
}
