// Package odds converts raw quoted prices into comparable fair probabilities.
// All functions are pure; nothing here touches storage.
package odds

import (
	"github.com/linescout/linescout/internal/domain"
)

// ImpliedProb converts decimal odds to implied probability (1/price).
// Returns 0 for non-positive prices.
func ImpliedProb(price float64) float64 {
	if price <= 0 {
		return 0
	}
	return 1.0 / price
}

// ProbToOdds converts a fair probability back to decimal odds.
func ProbToOdds(prob float64) float64 {
	if prob <= 0 {
		return 0
	}
	return 1.0 / prob
}

// Devig removes the bookmaker margin from a complete set of mutually
// exclusive implied probabilities by dividing each by their sum. The result
// sums to 1.
func Devig(probs []float64) []float64 {
	var total float64
	for _, p := range probs {
		total += p
	}
	if total <= 0 {
		return probs
	}
	out := make([]float64, len(probs))
	for i, p := range probs {
		out[i] = p / total
	}
	return out
}

// DevigMarket fills DeviggedProb for a group of same-provider, same-market
// complementary observations.
//
// Open-market prices are already fair probabilities and pass through
// unchanged. Sportsbook groups get the multiplicative de-vig. A group with
// fewer than two sides or zero probability mass cannot be de-vigged and
// returns a DegenerateMarketError.
func DevigMarket(group []domain.PriceObservation) ([]domain.PriceObservation, error) {
	if len(group) == 0 {
		return nil, nil
	}

	if group[0].Category == domain.CategoryOpenMarket {
		out := make([]domain.PriceObservation, len(group))
		for i, o := range group {
			o.DeviggedProb = o.ImpliedProb
			out[i] = o
		}
		return out, nil
	}

	if len(group) < 2 {
		return nil, &domain.DegenerateMarketError{
			EventID: group[0].EventID,
			Market:  group[0].Market,
			Sides:   len(group),
			Reason:  "cannot de-vig a single-sided market",
		}
	}

	probs := make([]float64, len(group))
	var total float64
	for i, o := range group {
		probs[i] = o.ImpliedProb
		total += o.ImpliedProb
	}
	if total <= 0 {
		return nil, &domain.DegenerateMarketError{
			EventID: group[0].EventID,
			Market:  group[0].Market,
			Sides:   len(group),
			Reason:  "zero probability mass",
		}
	}

	devigged := Devig(probs)
	out := make([]domain.PriceObservation, len(group))
	for i, o := range group {
		o.DeviggedProb = devigged[i]
		out[i] = o
	}
	return out, nil
}
