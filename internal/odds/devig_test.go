package odds

import (
	"errors"
	"math"
	"testing"

	"github.com/linescout/linescout/internal/domain"
)

func TestImpliedProb(t *testing.T) {
	if got := ImpliedProb(2.0); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("ImpliedProb(2.0) = %v, want 0.5", got)
	}
	if got := ImpliedProb(1.91); math.Abs(got-1.0/1.91) > 1e-9 {
		t.Errorf("ImpliedProb(1.91) = %v, want %v", got, 1.0/1.91)
	}
	if got := ImpliedProb(0); got != 0 {
		t.Errorf("ImpliedProb(0) = %v, want 0", got)
	}
	if got := ImpliedProb(-1.5); got != 0 {
		t.Errorf("ImpliedProb(-1.5) = %v, want 0", got)
	}
}

func TestProbToOddsRoundTrip(t *testing.T) {
	for _, price := range []float64{1.01, 1.91, 2.0, 3.75, 12.0} {
		back := ProbToOdds(ImpliedProb(price))
		if math.Abs(back-price) > 1e-9 {
			t.Errorf("round trip of %v = %v", price, back)
		}
	}
}

func TestDevigSumsToOne(t *testing.T) {
	// Classic two-way market at -110/-110: both sides imply 1/1.909...
	probs := Devig([]float64{1.0 / 1.909, 1.0 / 1.909})

	var sum float64
	for _, p := range probs {
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("devigged probs sum to %v, want 1", sum)
	}
	if math.Abs(probs[0]-0.5) > 1e-9 {
		t.Errorf("symmetric market devigged to %v, want 0.5", probs[0])
	}
}

func TestDevigPreservesRatios(t *testing.T) {
	// A 60/40 market with 5% vig baked in.
	raw := []float64{0.63, 0.42}
	probs := Devig(raw)

	if math.Abs(probs[0]-0.6) > 1e-9 || math.Abs(probs[1]-0.4) > 1e-9 {
		t.Errorf("Devig(%v) = %v, want [0.6 0.4]", raw, probs)
	}
}

func TestDevigMarketSportsbook(t *testing.T) {
	group := []domain.PriceObservation{
		{EventID: "e1", Market: domain.MarketH2H, Side: domain.SideHome, Category: domain.CategorySportsbook, Price: 1.91, ImpliedProb: 1.0 / 1.91},
		{EventID: "e1", Market: domain.MarketH2H, Side: domain.SideAway, Category: domain.CategorySportsbook, Price: 1.91, ImpliedProb: 1.0 / 1.91},
	}

	out, err := DevigMarket(group)
	if err != nil {
		t.Fatalf("DevigMarket: %v", err)
	}
	var sum float64
	for _, o := range out {
		sum += o.DeviggedProb
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("devigged probs sum to %v, want 1", sum)
	}
	// Input must not be mutated.
	if group[0].DeviggedProb != 0 {
		t.Errorf("DevigMarket mutated its input: %v", group[0].DeviggedProb)
	}
}

func TestDevigMarketOpenMarketPassThrough(t *testing.T) {
	group := []domain.PriceObservation{
		{EventID: "e1", Market: domain.MarketH2H, Side: domain.SideHome, Category: domain.CategoryOpenMarket, ImpliedProb: 0.55},
	}

	out, err := DevigMarket(group)
	if err != nil {
		t.Fatalf("DevigMarket: %v", err)
	}
	if out[0].DeviggedProb != 0.55 {
		t.Errorf("open-market prob = %v, want 0.55 unchanged", out[0].DeviggedProb)
	}
}

func TestDevigMarketDegenerate(t *testing.T) {
	var degenerate *domain.DegenerateMarketError

	// Single-sided sportsbook market.
	_, err := DevigMarket([]domain.PriceObservation{
		{EventID: "e1", Market: domain.MarketH2H, Side: domain.SideHome, Category: domain.CategorySportsbook, ImpliedProb: 0.5},
	})
	if !errors.As(err, &degenerate) {
		t.Errorf("single-sided market: got %v, want DegenerateMarketError", err)
	}

	// Zero probability mass.
	_, err = DevigMarket([]domain.PriceObservation{
		{EventID: "e1", Market: domain.MarketH2H, Side: domain.SideHome, Category: domain.CategorySportsbook},
		{EventID: "e1", Market: domain.MarketH2H, Side: domain.SideAway, Category: domain.CategorySportsbook},
	})
	if !errors.As(err, &degenerate) {
		t.Errorf("zero mass market: got %v, want DegenerateMarketError", err)
	}

	// Empty group is a no-op, not an error.
	out, err := DevigMarket(nil)
	if err != nil || out != nil {
		t.Errorf("empty group: got (%v, %v), want (nil, nil)", out, err)
	}
}
