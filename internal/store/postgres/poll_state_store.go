package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linescout/linescout/internal/domain"
)

// PollStateStore implements domain.PollStateStore using PostgreSQL.
type PollStateStore struct {
	pool *pgxpool.Pool
}

// NewPollStateStore creates a PollStateStore backed by the given pool.
func NewPollStateStore(pool *pgxpool.Pool) *PollStateStore {
	return &PollStateStore{pool: pool}
}

const pollStateCols = `source, status, last_poll_at, last_poll_success, last_error,
	cooldown_until, calls_this_window, quota_reset_at, lifetime_calls, updated_at`

func scanPollState(row pgx.Row) (domain.SourcePollState, error) {
	var st domain.SourcePollState
	var status string
	var lastPollAt, cooldownUntil *time.Time
	err := row.Scan(
		&st.Source, &status, &lastPollAt, &st.LastPollSuccess, &st.LastError,
		&cooldownUntil, &st.CallsThisWindow, &st.QuotaResetAt, &st.LifetimeCalls, &st.UpdatedAt,
	)
	if err != nil {
		return domain.SourcePollState{}, err
	}
	st.Status = domain.PollStatus(status)
	if lastPollAt != nil {
		st.LastPollAt = *lastPollAt
	}
	if cooldownUntil != nil {
		st.CooldownUntil = *cooldownUntil
	}
	return st, nil
}

// Get retrieves the poll state for one source.
func (s *PollStateStore) Get(ctx context.Context, source string) (domain.SourcePollState, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pollStateCols+` FROM source_poll_state WHERE source = $1`, source)
	st, err := scanPollState(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.SourcePollState{}, domain.ErrNotFound
		}
		return domain.SourcePollState{}, fmt.Errorf("postgres: get poll state %s: %w", source, err)
	}
	return st, nil
}

// Put writes the full poll state row for one source.
func (s *PollStateStore) Put(ctx context.Context, st domain.SourcePollState) error {
	var lastPollAt, cooldownUntil *time.Time
	if !st.LastPollAt.IsZero() {
		lastPollAt = &st.LastPollAt
	}
	if !st.CooldownUntil.IsZero() {
		cooldownUntil = &st.CooldownUntil
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO source_poll_state (
			source, status, last_poll_at, last_poll_success, last_error,
			cooldown_until, calls_this_window, quota_reset_at, lifetime_calls, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (source) DO UPDATE SET
			status            = EXCLUDED.status,
			last_poll_at      = EXCLUDED.last_poll_at,
			last_poll_success = EXCLUDED.last_poll_success,
			last_error        = EXCLUDED.last_error,
			cooldown_until    = EXCLUDED.cooldown_until,
			calls_this_window = EXCLUDED.calls_this_window,
			quota_reset_at    = EXCLUDED.quota_reset_at,
			lifetime_calls    = EXCLUDED.lifetime_calls,
			updated_at        = EXCLUDED.updated_at`,
		st.Source, string(st.Status), lastPollAt, st.LastPollSuccess, st.LastError,
		cooldownUntil, st.CallsThisWindow, st.QuotaResetAt, st.LifetimeCalls, st.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: put poll state %s: %w", st.Source, err)
	}
	return nil
}

// List returns poll state for every known source.
func (s *PollStateStore) List(ctx context.Context) ([]domain.SourcePollState, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pollStateCols+` FROM source_poll_state ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list poll states: %w", err)
	}
	defer rows.Close()

	var states []domain.SourcePollState
	for rows.Next() {
		st, err := scanPollState(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan poll state: %w", err)
		}
		states = append(states, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list poll states rows: %w", err)
	}
	return states, nil
}
