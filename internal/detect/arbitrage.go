package detect

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/linescout/linescout/internal/domain"
	"github.com/linescout/linescout/internal/match"
	"github.com/linescout/linescout/internal/odds"
)

// ArbVariant selects which source categories may pair up. The margin and
// threshold logic is identical in every variant; a variant is only a filter
// over the matcher's candidate set.
type ArbVariant string

const (
	ArbVariantOpen       ArbVariant = "open"       // open-market vs open-market
	ArbVariantSportsbook ArbVariant = "sportsbook" // book vs book
	ArbVariantCross      ArbVariant = "cross"      // book vs open-market
	ArbVariantProps      ArbVariant = "props"      // player props, any pairing
)

// Category maps the variant to its opportunity category.
func (v ArbVariant) Category() domain.OpportunityCategory {
	switch v {
	case ArbVariantOpen:
		return domain.ArbOpenMarket
	case ArbVariantSportsbook:
		return domain.ArbSportsbook
	case ArbVariantCross:
		return domain.ArbCross
	case ArbVariantProps:
		return domain.ArbPlayerProp
	}
	return domain.ArbSportsbook
}

// ArbDetector finds complementary positions whose fair probabilities sum
// below 1. It is state-free over matched groups.
type ArbDetector struct {
	minEdge  float64 // e.g. 0.005 for 0.5%
	bankroll float64
	logger   *slog.Logger
}

// NewArbDetector creates an arbitrage detector with the given minimum edge
// (as a fraction, not percent) and reference bankroll.
func NewArbDetector(minEdge, bankroll float64, logger *slog.Logger) *ArbDetector {
	return &ArbDetector{
		minEdge:  minEdge,
		bankroll: bankroll,
		logger:   logger.With(slog.String("component", "arb_detector")),
	}
}

// lineKey orients an observation's line so complementary sides share a key:
// spreads are home-aligned, totals and props keep the quoted threshold, and
// moneylines collapse to zero.
func lineKey(o domain.PriceObservation) float64 {
	switch {
	case o.Market == domain.MarketSpreads:
		if o.Side == domain.SideAway {
			return -o.Line
		}
		return o.Line
	case o.Market == domain.MarketTotals || o.Market.IsProp():
		return o.Line
	}
	return 0
}

// eligible reports whether an observation may participate in the variant.
func (v ArbVariant) eligible(o domain.PriceObservation) bool {
	switch v {
	case ArbVariantOpen:
		return o.Category == domain.CategoryOpenMarket
	case ArbVariantSportsbook:
		return o.Category == domain.CategorySportsbook
	case ArbVariantCross, ArbVariantProps:
		return true
	}
	return false
}

// Detect scans matched groups for the variant and returns every opportunity
// whose margin meets the minimum edge, sorted best first. Degenerate groups
// are skipped; one bad group never aborts the run.
func (d *ArbDetector) Detect(groups []match.Group, variant ArbVariant, now time.Time) []domain.Opportunity {
	var opps []domain.Opportunity

	for _, g := range groups {
		if variant == ArbVariantProps != g.Key.Market.IsProp() {
			continue
		}

		// Bucket eligible observations by oriented line, then by side.
		byLine := make(map[float64]map[domain.Side][]domain.PriceObservation)
		for _, o := range g.Observations {
			if !variant.eligible(o) {
				continue
			}
			if o.DeviggedProb <= 0 {
				continue
			}
			lk := lineKey(o)
			if byLine[lk] == nil {
				byLine[lk] = make(map[domain.Side][]domain.PriceObservation)
			}
			byLine[lk][o.Side] = append(byLine[lk][o.Side], o)
		}

		for _, bySide := range byLine {
			opp, ok := d.bestPair(g, bySide, variant, now)
			if ok {
				opps = append(opps, opp)
			}
		}
	}

	sort.Slice(opps, func(i, j int) bool { return opps[i].Margin > opps[j].Margin })
	return opps
}

// bestPair selects, per side, the cheapest cover of that outcome and checks
// whether the pair clears the edge threshold.
func (d *ArbDetector) bestPair(g match.Group, bySide map[domain.Side][]domain.PriceObservation, variant ArbVariant, now time.Time) (domain.Opportunity, bool) {
	sides := make([]domain.Side, 0, len(bySide))
	for s := range bySide {
		sides = append(sides, s)
	}
	if len(sides) != 2 || sides[0].Opposite() != sides[1] {
		return domain.Opportunity{}, false
	}
	sort.Slice(sides, func(i, j int) bool { return sides[i] < sides[j] })

	var legs [2]domain.PriceObservation
	for i, s := range sides {
		best, ok := bestForSide(bySide[s])
		if !ok {
			return domain.Opportunity{}, false
		}
		legs[i] = best
	}

	// The two legs must come from genuinely independent quotes.
	if legs[0].Source == legs[1].Source && legs[0].Provider == legs[1].Provider {
		return domain.Opportunity{}, false
	}
	// Cross-category arbitrage pairs a book against an open market; a pair
	// within one category belongs to the dedicated variants.
	if variant == ArbVariantCross && legs[0].Category == legs[1].Category {
		return domain.Opportunity{}, false
	}

	// The threshold is inclusive: a margin exactly at the edge is reported.
	margin := 1.0 - (legs[0].DeviggedProb + legs[1].DeviggedProb)
	if margin < d.minEdge {
		return domain.Opportunity{}, false
	}

	prices := []float64{
		odds.ProbToOdds(legs[0].DeviggedProb),
		odds.ProbToOdds(legs[1].DeviggedProb),
	}
	stakes := Stakes(prices, d.bankroll)
	if stakes == nil {
		return domain.Opportunity{}, false
	}

	return domain.Opportunity{
		ID:       uuid.NewString(),
		Category: variant.Category(),
		EventID:  g.Key.EventID,
		Market:   g.Key.Market,
		Player:   g.Key.Player,
		Legs: []domain.Leg{
			{Observation: legs[0], Stake: stakes[0]},
			{Observation: legs[1], Stake: stakes[1]},
		},
		Margin:           margin,
		TotalStake:       d.bankroll,
		GuaranteedProfit: margin * d.bankroll,
		DetectedAt:       now,
	}, true
}

// bestForSide picks the lowest fair probability (cheapest cover); ties go to
// the most recently updated provider.
func bestForSide(candidates []domain.PriceObservation) (domain.PriceObservation, bool) {
	if len(candidates) == 0 {
		return domain.PriceObservation{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		switch {
		case c.DeviggedProb < best.DeviggedProb:
			best = c
		case c.DeviggedProb == best.DeviggedProb && c.ProviderUpdatedAt.After(best.ProviderUpdatedAt):
			best = c
		}
	}
	return best, true
}
