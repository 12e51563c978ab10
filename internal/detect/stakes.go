// Package detect implements the opportunity detectors: arbitrage across
// complementary sides, middles across divergent lines, and the stake
// allocation shared by both.
package detect

// Stakes splits a reference bankroll across legs so the payout is identical
// no matter which leg wins: stake_i proportional to 1/price_i, normalized to
// sum to the bankroll. prices are decimal odds.
func Stakes(prices []float64, bankroll float64) []float64 {
	if len(prices) == 0 || bankroll <= 0 {
		return nil
	}

	inv := make([]float64, len(prices))
	var total float64
	for i, p := range prices {
		if p <= 0 {
			return nil
		}
		inv[i] = 1.0 / p
		total += inv[i]
	}
	if total <= 0 {
		return nil
	}

	stakes := make([]float64, len(prices))
	for i := range prices {
		stakes[i] = bankroll * inv[i] / total
	}
	return stakes
}

// EqualPayout returns the common payout produced by Stakes for the given
// prices and bankroll: bankroll / sum(1/price_i).
func EqualPayout(prices []float64, bankroll float64) float64 {
	var total float64
	for _, p := range prices {
		if p <= 0 {
			return 0
		}
		total += 1.0 / p
	}
	if total <= 0 {
		return 0
	}
	return bankroll / total
}

// MiddleFigures reports the two boundary outcomes of a two-leg middle:
// the profit when the result lands inside the window (both legs win) and the
// worst-case loss when only the weaker leg wins.
func MiddleFigures(prices, stakes []float64) (bothWin, worstCase float64) {
	var totalStake, totalPayout float64
	minPayout := -1.0
	for i, p := range prices {
		payout := stakes[i] * p
		totalStake += stakes[i]
		totalPayout += payout
		if minPayout < 0 || payout < minPayout {
			minPayout = payout
		}
	}
	return totalPayout - totalStake, minPayout - totalStake
}
