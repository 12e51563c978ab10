package detect

import (
	"math"

	"github.com/linescout/linescout/internal/domain"
)

// WindowEstimator estimates the probability that the final result lands
// inside a middle window of the given width. The variance source is a
// configuration input, not a constant; implementations may be static
// per-market or recomputed from history.
type WindowEstimator interface {
	WindowProb(gap float64, market domain.MarketType) float64
}

// NormalEstimator models the score margin (or total) around the consensus
// line as a normal distribution and returns the mass of a gap-wide window
// centred on it: 2*Phi(gap/(2*sigma)) - 1.
type NormalEstimator struct {
	SpreadStdDev float64
	TotalStdDev  float64
	PropStdDev   float64
}

// WindowProb implements WindowEstimator.
func (e NormalEstimator) WindowProb(gap float64, market domain.MarketType) float64 {
	if gap <= 0 {
		return 0
	}
	sigma := e.SpreadStdDev
	switch {
	case market == domain.MarketTotals:
		sigma = e.TotalStdDev
	case market.IsProp():
		sigma = e.PropStdDev
	}
	if sigma <= 0 {
		return 0
	}
	// Phi(x) - Phi(-x) = erf(x / sqrt(2)).
	return math.Erf(gap / (2 * sigma * math.Sqrt2))
}
