package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linescout/linescout/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL. Legs
// are stored as JSONB since they are written and read as a unit.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates an OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const insertOpportunityQuery = `
	INSERT INTO opportunities (
		id, category, event_id, market, player, legs,
		margin, gap, middle_prob, ev, ev_percent,
		both_win_profit, worst_case_loss, total_stake, guaranteed_profit,
		detected_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11,
		$12, $13, $14, $15,
		$16
	)
	ON CONFLICT (id) DO NOTHING`

// InsertBatch logs a detection run's opportunities.
func (s *OpportunityStore) InsertBatch(ctx context.Context, opps []domain.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, opp := range opps {
		legs, err := json.Marshal(opp.Legs)
		if err != nil {
			return fmt.Errorf("postgres: marshal legs for %s: %w", opp.ID, err)
		}
		batch.Queue(insertOpportunityQuery,
			opp.ID, string(opp.Category), opp.EventID, string(opp.Market), opp.Player, legs,
			opp.Margin, opp.Gap, opp.MiddleProb, opp.EV, opp.EVPercent,
			opp.BothWinProfit, opp.WorstCaseLoss, opp.TotalStake, opp.GuaranteedProfit,
			opp.DetectedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range opps {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: insert opportunity batch item %d: %w", i, err)
		}
	}
	return nil
}

// ListRecent returns the most recently detected opportunities, newest first.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, category, event_id, market, player, legs,
			margin, gap, middle_prob, ev, ev_percent,
			both_win_profit, worst_case_loss, total_stake, guaranteed_profit,
			detected_at
		FROM opportunities
		ORDER BY detected_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		var opp domain.Opportunity
		var category, market string
		var legs []byte
		err := rows.Scan(
			&opp.ID, &category, &opp.EventID, &market, &opp.Player, &legs,
			&opp.Margin, &opp.Gap, &opp.MiddleProb, &opp.EV, &opp.EVPercent,
			&opp.BothWinProfit, &opp.WorstCaseLoss, &opp.TotalStake, &opp.GuaranteedProfit,
			&opp.DetectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		opp.Category = domain.OpportunityCategory(category)
		opp.Market = domain.MarketType(market)
		if err := json.Unmarshal(legs, &opp.Legs); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal legs for %s: %w", opp.ID, err)
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list opportunities rows: %w", err)
	}
	return opps, nil
}
