package detect

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/linescout/linescout/internal/domain"
	"github.com/linescout/linescout/internal/match"
)

// MiddleVariant restricts which source categories may pair up, mirroring the
// arbitrage variants. The gap/EV logic is shared.
type MiddleVariant string

const (
	MiddleVariantSportsbook MiddleVariant = "sportsbook"
	MiddleVariantOpen       MiddleVariant = "open"
	MiddleVariantCross      MiddleVariant = "cross"
	MiddleVariantProps      MiddleVariant = "props"
)

// Category maps the variant to its opportunity category.
func (v MiddleVariant) Category() domain.OpportunityCategory {
	switch v {
	case MiddleVariantSportsbook:
		return domain.MiddleSportsbook
	case MiddleVariantOpen:
		return domain.MiddleOpenMarket
	case MiddleVariantCross:
		return domain.MiddleCross
	case MiddleVariantProps:
		return domain.MiddlePlayerProp
	}
	return domain.MiddleSportsbook
}

// MiddleConfig parameterizes the middle detector.
type MiddleConfig struct {
	MinGapSpread float64 // spreads and props
	MinGapTotal  float64
	Bankroll     float64
	Fees         map[string]float64 // per-venue fee on winnings
	Estimator    WindowEstimator
}

// MiddleDetector finds line gaps between sources that create a dual-win
// window and estimates each window's probability and expected value.
type MiddleDetector struct {
	cfg    MiddleConfig
	logger *slog.Logger
}

// NewMiddleDetector creates a middle detector.
func NewMiddleDetector(cfg MiddleConfig, logger *slog.Logger) *MiddleDetector {
	return &MiddleDetector{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "middle_detector")),
	}
}

// pairAllowed reports whether two observations may form a middle under the
// variant's category filter.
func (v MiddleVariant) pairAllowed(a, b domain.PriceObservation) bool {
	switch v {
	case MiddleVariantSportsbook:
		return a.Category == domain.CategorySportsbook && b.Category == domain.CategorySportsbook &&
			a.Provider != b.Provider
	case MiddleVariantOpen:
		return a.Category == domain.CategoryOpenMarket && b.Category == domain.CategoryOpenMarket &&
			a.Source != b.Source
	case MiddleVariantCross:
		return a.Category != b.Category
	case MiddleVariantProps:
		return a.Source != b.Source
	}
	return false
}

// homeAligned orients a spread line to the home team's perspective so two
// quotes can be differenced directly.
func homeAligned(o domain.PriceObservation) float64 {
	if o.Side == domain.SideAway {
		return -o.Line
	}
	return o.Line
}

// Detect scans matched groups for line gaps meeting the configured minimum
// and returns opportunities sorted by expected value, best first.
func (d *MiddleDetector) Detect(groups []match.Group, variant MiddleVariant, now time.Time) []domain.Opportunity {
	var opps []domain.Opportunity

	for _, g := range groups {
		isProp := g.Key.Market.IsProp()
		if (variant == MiddleVariantProps) != isProp {
			continue
		}
		if !isProp && g.Key.Market != domain.MarketSpreads && g.Key.Market != domain.MarketTotals {
			continue
		}

		for i, a := range g.Observations {
			for _, b := range g.Observations[i+1:] {
				if !variant.pairAllowed(a, b) && !variant.pairAllowed(b, a) {
					continue
				}
				opp, ok := d.evaluate(g, a, b, variant, now)
				if ok {
					opps = append(opps, opp)
				}
			}
		}
	}

	sort.Slice(opps, func(i, j int) bool { return opps[i].EV > opps[j].EV })
	return opps
}

// evaluate checks one candidate pair for a dual-win window and, when the gap
// clears the threshold, prices the middle.
func (d *MiddleDetector) evaluate(g match.Group, a, b domain.PriceObservation, variant MiddleVariant, now time.Time) (domain.Opportunity, bool) {
	var gap float64
	var lower, upper domain.PriceObservation

	switch {
	case g.Key.Market == domain.MarketSpreads:
		// A middle needs opposite sides whose home-aligned lines leave a
		// window between them.
		if a.Side == b.Side {
			return domain.Opportunity{}, false
		}
		home, away := a, b
		if home.Side != domain.SideHome {
			home, away = b, a
		}
		gap = homeAligned(home) - homeAligned(away)
		lower, upper = home, away
	default:
		// Totals and props: over line strictly below under line.
		if a.Side == b.Side || a.Side.Opposite() != b.Side {
			return domain.Opportunity{}, false
		}
		over, under := a, b
		if over.Side != domain.SideOver {
			over, under = b, a
		}
		gap = under.Line - over.Line
		lower, upper = over, under
	}

	if gap <= 0 {
		// Lines do not leave a window; nothing to middle.
		return domain.Opportunity{}, false
	}
	minGap := d.cfg.MinGapSpread
	if g.Key.Market == domain.MarketTotals {
		minGap = d.cfg.MinGapTotal
	}
	if gap < minGap {
		return domain.Opportunity{}, false
	}

	midProb := d.cfg.Estimator.WindowProb(gap, g.Key.Market)

	prices := []float64{legPrice(lower), legPrice(upper)}
	if prices[0] <= 0 || prices[1] <= 0 {
		return domain.Opportunity{}, false
	}
	stakes := Stakes(prices, d.cfg.Bankroll)
	if stakes == nil {
		return domain.Opportunity{}, false
	}

	bothWin, worstCase := MiddleFigures(prices, stakes)

	// Outside the window exactly one leg wins; the two single-win outcomes
	// are weighted equally.
	singleAvg := ((prices[0]*stakes[0] - d.cfg.Bankroll) + (prices[1]*stakes[1] - d.cfg.Bankroll)) / 2
	ev := midProb*bothWin + (1-midProb)*singleAvg

	// Open-market winnings carry a venue fee; venues without their own entry
	// fall back to the "default" rate.
	for _, leg := range []domain.PriceObservation{lower, upper} {
		if leg.Category == domain.CategoryOpenMarket {
			if fee := d.venueFee(leg.Provider); fee > 0 {
				ev -= d.cfg.Bankroll * fee * midProb
			}
		}
	}

	evPercent := 0.0
	if d.cfg.Bankroll > 0 {
		evPercent = ev / d.cfg.Bankroll
	}

	return domain.Opportunity{
		ID:       uuid.NewString(),
		Category: variant.Category(),
		EventID:  g.Key.EventID,
		Market:   g.Key.Market,
		Player:   g.Key.Player,
		Legs: []domain.Leg{
			{Observation: lower, Stake: stakes[0]},
			{Observation: upper, Stake: stakes[1]},
		},
		Gap:           gap,
		MiddleProb:    midProb,
		EV:            ev,
		EVPercent:     evPercent,
		BothWinProfit: bothWin,
		WorstCaseLoss: worstCase,
		TotalStake:    d.cfg.Bankroll,
		DetectedAt:    now,
	}, true
}

// venueFee returns the fee rate for a venue, falling back to the "default"
// entry when the venue has none.
func (d *MiddleDetector) venueFee(provider string) float64 {
	if fee, ok := d.cfg.Fees[provider]; ok {
		return fee
	}
	return d.cfg.Fees["default"]
}

// legPrice returns the decimal odds to use for payout math. Sportsbook rows
// carry quoted odds; open-market rows quote probabilities, so the fair price
// is their inverse.
func legPrice(o domain.PriceObservation) float64 {
	if o.Price > 0 {
		return o.Price
	}
	if o.ImpliedProb > 0 {
		return 1.0 / o.ImpliedProb
	}
	return 0
}
