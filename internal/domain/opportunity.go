package domain

import "time"

// OpportunityCategory classifies a detected opportunity by the source
// categories that produced its legs.
type OpportunityCategory string

const (
	ArbOpenMarket OpportunityCategory = "arb_open_market"
	ArbSportsbook OpportunityCategory = "arb_sportsbook"
	ArbCross      OpportunityCategory = "arb_cross_market"
	ArbPlayerProp OpportunityCategory = "arb_player_prop"

	MiddleSportsbook OpportunityCategory = "middle_sportsbook"
	MiddleOpenMarket OpportunityCategory = "middle_open_market"
	MiddleCross      OpportunityCategory = "middle_cross_market"
	MiddlePlayerProp OpportunityCategory = "middle_player_prop"
)

// IsMiddle reports whether the category is a middle (line-gap) opportunity.
func (c OpportunityCategory) IsMiddle() bool {
	switch c {
	case MiddleSportsbook, MiddleOpenMarket, MiddleCross, MiddlePlayerProp:
		return true
	}
	return false
}

// Leg is one side of a detected opportunity: the observation it came from and
// the stake recommended for it.
type Leg struct {
	Observation PriceObservation
	Stake       float64
}

// Opportunity is a detected arbitrage or middle. Each detection run produces
// an independent result set; opportunities are never mutated after creation.
type Opportunity struct {
	ID       string
	Category OpportunityCategory
	EventID  string
	Market   MarketType
	Player   string
	Legs     []Leg

	// Arbitrage: margin = 1 - sum of selected fair probabilities.
	Margin float64

	// Middles only.
	Gap        float64
	MiddleProb float64
	EV         float64
	EVPercent  float64
	// BothWinProfit / WorstCaseLoss bound the middle's outcome range;
	// unlike an arbitrage, not every outcome wins both legs.
	BothWinProfit float64
	WorstCaseLoss float64

	TotalStake       float64
	GuaranteedProfit float64 // arbitrage only

	DetectedAt time.Time
}
