// Package match groups price observations into directly comparable sets:
// same event, same market, and (for props) same player, with stale data
// filtered out before any detector sees it.
package match

import (
	"log/slog"
	"time"

	"github.com/linescout/linescout/internal/domain"
)

// GroupKey identifies one comparable set of observations.
type GroupKey struct {
	EventID string
	Market  domain.MarketType
	Player  string // canonical form; empty for non-prop markets
}

// Group is a comparable set of observations sharing a GroupKey.
type Group struct {
	Key          GroupKey
	Observations []domain.PriceObservation
}

// BySide buckets the group's observations per side, for complementary-side
// comparison (arbitrage).
func (g Group) BySide() map[domain.Side][]domain.PriceObservation {
	out := make(map[domain.Side][]domain.PriceObservation)
	for _, o := range g.Observations {
		out[o.Side] = append(out[o.Side], o)
	}
	return out
}

// Matcher produces comparable groups from a snapshot of current prices.
type Matcher struct {
	maxAge  time.Duration
	aliases PlayerAliases
	logger  *slog.Logger
}

// New creates a Matcher. maxAge bounds how old an observation's ingestion
// time may be before it is excluded from the candidate set.
func New(maxAge time.Duration, aliases PlayerAliases, logger *slog.Logger) *Matcher {
	if aliases == nil {
		aliases = PlayerAliases{}
	}
	return &Matcher{
		maxAge:  maxAge,
		aliases: aliases,
		logger:  logger.With(slog.String("component", "matcher")),
	}
}

// Groups partitions obs into comparable groups keyed by (event, market,
// player). Stale observations are dropped and logged, not errored; prop
// observations whose player cannot be normalized are excluded rather than
// guessed into a group.
func (m *Matcher) Groups(obs []domain.PriceObservation, now time.Time) []Group {
	grouped := make(map[GroupKey][]domain.PriceObservation)
	var order []GroupKey

	stale := 0
	for _, o := range obs {
		if m.maxAge > 0 && now.Sub(o.IngestedAt) > m.maxAge {
			stale++
			continue
		}

		key := GroupKey{EventID: o.EventID, Market: o.Market}
		if o.Market.IsProp() {
			canonical, ok := m.aliases.Canonical(o.Player)
			if !ok {
				m.logger.Debug("prop observation excluded: unresolvable player",
					slog.String("event_id", o.EventID),
					slog.String("market", string(o.Market)),
					slog.String("player", o.Player),
				)
				continue
			}
			o.Player = canonical
			key.Player = canonical
		}

		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], o)
	}

	if stale > 0 {
		m.logger.Debug("stale observations excluded",
			slog.Int("count", stale),
			slog.Duration("max_age", m.maxAge),
		)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{Key: key, Observations: grouped[key]})
	}
	return groups
}
