package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linescout/linescout/internal/domain"
)

// PriceStore implements domain.PriceStore. Each batch writes the latest row
// and its history copy inside a single transaction so the two tables never
// drift within a poll.
type PriceStore struct {
	pool *pgxpool.Pool
}

// NewPriceStore creates a PriceStore backed by the given connection pool.
func NewPriceStore(pool *pgxpool.Pool) *PriceStore {
	return &PriceStore{pool: pool}
}

const upsertLatestQuery = `
	INSERT INTO price_latest (
		event_id, market, side, line, source, category, provider, player,
		price, implied_prob, devigged_prob,
		provider_updated_at, ingested_at, source_event_id, source_market_id
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8,
		$9, $10, $11,
		$12, $13, $14, $15
	)
	ON CONFLICT (event_id, market, side, line, source, provider, player) DO UPDATE SET
		category            = EXCLUDED.category,
		price               = EXCLUDED.price,
		implied_prob        = EXCLUDED.implied_prob,
		devigged_prob       = EXCLUDED.devigged_prob,
		provider_updated_at = EXCLUDED.provider_updated_at,
		ingested_at         = EXCLUDED.ingested_at,
		source_event_id     = EXCLUDED.source_event_id,
		source_market_id    = EXCLUDED.source_market_id`

const insertHistoryQuery = `
	INSERT INTO price_history (
		event_id, market, side, line, source, category, provider, player,
		price, implied_prob, devigged_prob,
		provider_updated_at, ingested_at, source_event_id, source_market_id,
		snapshot_time
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8,
		$9, $10, $11,
		$12, $13, $14, $15,
		$16
	)`

// UpsertBatch writes observations to price_latest and appends history copies
// in one transaction.
func (s *PriceStore) UpsertBatch(ctx context.Context, obs []domain.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin price batch: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, o := range obs {
		batch.Queue(upsertLatestQuery,
			o.EventID, string(o.Market), string(o.Side), o.Line,
			o.Source, string(o.Category), o.Provider, o.Player,
			o.Price, o.ImpliedProb, o.DeviggedProb,
			o.ProviderUpdatedAt, o.IngestedAt, o.SourceEventID, o.SourceMarketID,
		)
		batch.Queue(insertHistoryQuery,
			o.EventID, string(o.Market), string(o.Side), o.Line,
			o.Source, string(o.Category), o.Provider, o.Player,
			o.Price, o.ImpliedProb, o.DeviggedProb,
			o.ProviderUpdatedAt, o.IngestedAt, o.SourceEventID, o.SourceMarketID,
			o.IngestedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("postgres: price batch item %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("postgres: close price batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit price batch: %w", err)
	}
	return nil
}

const latestCols = `event_id, market, side, line, source, category, provider, player,
	price, implied_prob, devigged_prob,
	provider_updated_at, ingested_at, source_event_id, source_market_id`

func scanObservation(rows pgx.Rows) (domain.PriceObservation, error) {
	var o domain.PriceObservation
	var market, side, category string
	err := rows.Scan(
		&o.EventID, &market, &side, &o.Line,
		&o.Source, &category, &o.Provider, &o.Player,
		&o.Price, &o.ImpliedProb, &o.DeviggedProb,
		&o.ProviderUpdatedAt, &o.IngestedAt, &o.SourceEventID, &o.SourceMarketID,
	)
	if err != nil {
		return domain.PriceObservation{}, err
	}
	o.Market = domain.MarketType(market)
	o.Side = domain.Side(side)
	o.Category = domain.SourceCategory(category)
	return o, nil
}

// Snapshot returns every current latest-price row.
func (s *PriceStore) Snapshot(ctx context.Context) ([]domain.PriceObservation, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+latestCols+` FROM price_latest`)
	if err != nil {
		return nil, fmt.Errorf("postgres: price snapshot: %w", err)
	}
	defer rows.Close()

	var obs []domain.PriceObservation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan price row: %w", err)
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: price snapshot rows: %w", err)
	}
	return obs, nil
}

// CountLatest returns the number of current latest-price rows.
func (s *PriceStore) CountLatest(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM price_latest").Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: count latest prices: %w", err)
	}
	return count, nil
}

// CountHistory returns the number of history rows.
func (s *PriceStore) CountHistory(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM price_history").Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: count price history: %w", err)
	}
	return count, nil
}

// HistoryBefore returns history rows older than cutoff, oldest first, leaving
// them in place so the caller can archive before deleting.
func (s *PriceStore) HistoryBefore(ctx context.Context, cutoff time.Time) ([]domain.PriceSnapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+latestCols+`, snapshot_time
		 FROM price_history WHERE snapshot_time < $1
		 ORDER BY snapshot_time`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("postgres: select aged history: %w", err)
	}
	defer rows.Close()

	var aged []domain.PriceSnapshot
	for rows.Next() {
		var snap domain.PriceSnapshot
		var market, side, category string
		err := rows.Scan(
			&snap.EventID, &market, &side, &snap.Line,
			&snap.Source, &category, &snap.Provider, &snap.Player,
			&snap.Price, &snap.ImpliedProb, &snap.DeviggedProb,
			&snap.ProviderUpdatedAt, &snap.IngestedAt, &snap.SourceEventID, &snap.SourceMarketID,
			&snap.SnapshotTime,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan history row: %w", err)
		}
		snap.Market = domain.MarketType(market)
		snap.Side = domain.Side(side)
		snap.Category = domain.SourceCategory(category)
		aged = append(aged, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: aged history rows: %w", err)
	}
	return aged, nil
}

// DeleteHistoryBefore removes history rows older than cutoff. Only call after
// the rows returned by HistoryBefore for the same cutoff have been archived.
func (s *PriceStore) DeleteHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM price_history WHERE snapshot_time < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete aged history: %w", err)
	}
	return tag.RowsAffected(), nil
}
