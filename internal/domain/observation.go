package domain

import (
	"strings"
	"time"
)

// SourceCategory distinguishes regulated-book aggregators from peer-to-peer
// venues whose prices are already fair probabilities.
type SourceCategory string

const (
	CategorySportsbook SourceCategory = "sportsbook"
	CategoryOpenMarket SourceCategory = "open_market"
)

// MarketType identifies the kind of market an observation belongs to.
type MarketType string

const (
	MarketH2H     MarketType = "h2h"
	MarketSpreads MarketType = "spreads"
	MarketTotals  MarketType = "totals"
	MarketFutures MarketType = "futures"

	MarketPlayerPoints   MarketType = "player_points"
	MarketPlayerRebounds MarketType = "player_rebounds"
	MarketPlayerAssists  MarketType = "player_assists"
	MarketPlayerThrees   MarketType = "player_threes"
)

// IsProp reports whether m is a player prop market.
func (m MarketType) IsProp() bool {
	return strings.HasPrefix(string(m), "player_")
}

// Side is a bet position within a market.
type Side string

const (
	SideHome  Side = "home"
	SideAway  Side = "away"
	SideOver  Side = "over"
	SideUnder Side = "under"
)

// Opposite returns the complementary side, or "" when no complement exists.
func (s Side) Opposite() Side {
	switch s {
	case SideHome:
		return SideAway
	case SideAway:
		return SideHome
	case SideOver:
		return SideUnder
	case SideUnder:
		return SideOver
	}
	return ""
}

// PriceObservation is one quoted position. Uniquely keyed by
// (event, market, side, line, source, provider, player); re-ingestion upserts
// the whole row, never a partial update.
type PriceObservation struct {
	EventID  string
	Market   MarketType
	Side     Side
	Line     float64 // 0 when the market has no line
	Source   string  // source name, e.g. "odds_api", "polymarket"
	Category SourceCategory
	Provider string // specific bookmaker or venue
	Player   string // canonical player identity, props only

	Price        float64 // decimal odds; for open markets 1/probability
	ImpliedProb  float64 // 1/price before de-vig
	DeviggedProb float64 // fair probability after de-vig

	ProviderUpdatedAt time.Time
	IngestedAt        time.Time

	SourceEventID  string
	SourceMarketID string
}

// Key returns the observation's uniqueness key fields as a single struct,
// usable as a map key.
func (o PriceObservation) Key() ObservationKey {
	return ObservationKey{
		EventID:  o.EventID,
		Market:   o.Market,
		Side:     o.Side,
		Line:     o.Line,
		Source:   o.Source,
		Provider: o.Provider,
		Player:   o.Player,
	}
}

// ObservationKey uniquely identifies a latest-price row.
type ObservationKey struct {
	EventID  string
	Market   MarketType
	Side     Side
	Line     float64
	Source   string
	Provider string
	Player   string
}

// PriceSnapshot is an append-only historical copy of a PriceObservation taken
// at ingestion time. Write-once.
type PriceSnapshot struct {
	PriceObservation
	SnapshotTime time.Time
}
