package domain

import (
	"context"
	"time"
)

// EventStore persists event metadata. Events are immutable once created;
// upserts only refresh start time and last-seen.
type EventStore interface {
	Upsert(ctx context.Context, ev Event) error
	UpsertBatch(ctx context.Context, evs []Event) error
	GetByID(ctx context.Context, id string) (Event, error)
	Count(ctx context.Context) (int64, error)
}

// PriceStore is the read/write contract for current and historical prices.
// UpsertBatch writes the latest row and appends the history copy in one short
// transaction per batch; readers may interleave with writers and must
// tolerate a partially updated snapshot.
type PriceStore interface {
	UpsertBatch(ctx context.Context, obs []PriceObservation) error
	// Snapshot returns all current latest rows.
	Snapshot(ctx context.Context) ([]PriceObservation, error)
	CountLatest(ctx context.Context) (int64, error)
	CountHistory(ctx context.Context) (int64, error)
	// HistoryBefore returns history rows older than cutoff without touching
	// them. DeleteHistoryBefore removes them; callers must only delete after
	// the rows have been archived, so a failed archive never loses data.
	HistoryBefore(ctx context.Context, cutoff time.Time) ([]PriceSnapshot, error)
	DeleteHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PollStateStore persists per-source poll state. The scheduler is the sole
// writer.
type PollStateStore interface {
	Get(ctx context.Context, source string) (SourcePollState, error)
	Put(ctx context.Context, st SourcePollState) error
	List(ctx context.Context) ([]SourcePollState, error)
}

// OpportunityStore logs detected opportunities for later analysis.
type OpportunityStore interface {
	InsertBatch(ctx context.Context, opps []Opportunity) error
	ListRecent(ctx context.Context, limit int) ([]Opportunity, error)
}
