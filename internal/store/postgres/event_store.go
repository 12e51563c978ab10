package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linescout/linescout/internal/domain"
)

// EventStore implements domain.EventStore using PostgreSQL.
type EventStore struct {
	pool *pgxpool.Pool
}

// NewEventStore creates an EventStore backed by the given connection pool.
func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

const upsertEventQuery = `
	INSERT INTO events (id, league, home_team, away_team, commence_time, last_seen_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		commence_time = EXCLUDED.commence_time,
		last_seen_at  = EXCLUDED.last_seen_at`

// Upsert inserts or refreshes a single event.
func (s *EventStore) Upsert(ctx context.Context, ev domain.Event) error {
	_, err := s.pool.Exec(ctx, upsertEventQuery,
		ev.ID, ev.League, ev.HomeTeam, ev.AwayTeam, ev.CommenceTime, ev.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert event %s: %w", ev.ID, err)
	}
	return nil
}

// UpsertBatch inserts or refreshes multiple events in one batch.
func (s *EventStore) UpsertBatch(ctx context.Context, evs []domain.Event) error {
	if len(evs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, ev := range evs {
		batch.Queue(upsertEventQuery,
			ev.ID, ev.League, ev.HomeTeam, ev.AwayTeam, ev.CommenceTime, ev.LastSeenAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range evs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: upsert event batch item %d: %w", i, err)
		}
	}
	return nil
}

// GetByID retrieves an event by its canonical ID.
func (s *EventStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	var ev domain.Event
	err := s.pool.QueryRow(ctx,
		`SELECT id, league, home_team, away_team, commence_time, last_seen_at
		 FROM events WHERE id = $1`, id,
	).Scan(&ev.ID, &ev.League, &ev.HomeTeam, &ev.AwayTeam, &ev.CommenceTime, &ev.LastSeenAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Event{}, domain.ErrNotFound
		}
		return domain.Event{}, fmt.Errorf("postgres: get event %s: %w", id, err)
	}
	return ev, nil
}

// Count returns the total number of tracked events.
func (s *EventStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: count events: %w", err)
	}
	return count, nil
}
