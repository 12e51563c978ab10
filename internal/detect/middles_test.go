package detect

import (
	"math"
	"testing"
	"time"

	"github.com/linescout/linescout/internal/domain"
	"github.com/linescout/linescout/internal/match"
)

func testMiddleConfig() MiddleConfig {
	return MiddleConfig{
		MinGapSpread: 1.0,
		MinGapTotal:  2.0,
		Bankroll:     1000,
		Fees:         map[string]float64{"kalshi": 0.07},
		Estimator: NormalEstimator{
			SpreadStdDev: 10.5,
			TotalStdDev:  18.0,
			PropStdDev:   6.0,
		},
	}
}

func spreadObs(side domain.Side, line float64, provider string) domain.PriceObservation {
	return domain.PriceObservation{
		EventID:      "2025-01-15_nba_lakers_celtics",
		Market:       domain.MarketSpreads,
		Side:         side,
		Line:         line,
		Source:       "odds_api",
		Category:     domain.CategorySportsbook,
		Provider:     provider,
		Price:        1.91,
		ImpliedProb:  1.0 / 1.91,
		DeviggedProb: 0.5,
	}
}

func totalsObs(side domain.Side, line float64, source, provider string, cat domain.SourceCategory) domain.PriceObservation {
	o := spreadObs(side, line, provider)
	o.Market = domain.MarketTotals
	o.Source = source
	o.Category = cat
	return o
}

func spreadGroup(obs ...domain.PriceObservation) []match.Group {
	return []match.Group{{
		Key:          match.GroupKey{EventID: obs[0].EventID, Market: obs[0].Market},
		Observations: obs,
	}}
}

func TestMiddleDetectorSpreadGap(t *testing.T) {
	d := NewMiddleDetector(testMiddleConfig(), testLogger)
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	// Home -3.5 at one book, away +5.5 at another: the home team winning by
	// 4 or 5 cashes both tickets. Home-aligned gap is -3.5 - (-5.5) = 2.
	groups := spreadGroup(
		spreadObs(domain.SideHome, -3.5, "draftkings"),
		spreadObs(domain.SideAway, 5.5, "fanduel"),
	)

	opps := d.Detect(groups, MiddleVariantSportsbook, now)
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}

	opp := opps[0]
	if opp.Category != domain.MiddleSportsbook {
		t.Errorf("category = %v, want %v", opp.Category, domain.MiddleSportsbook)
	}
	if math.Abs(opp.Gap-2.0) > 1e-9 {
		t.Errorf("gap = %v, want 2.0", opp.Gap)
	}
	if opp.MiddleProb <= 0 || opp.MiddleProb >= 1 {
		t.Errorf("middle prob = %v, want in (0, 1)", opp.MiddleProb)
	}
	if opp.BothWinProfit <= 0 {
		t.Errorf("both-win profit = %v, want positive", opp.BothWinProfit)
	}
	if opp.WorstCaseLoss >= 0 {
		t.Errorf("worst case = %v, want a loss", opp.WorstCaseLoss)
	}

	// EV must tie out against the window probability and the two outcomes.
	singleAvg := opp.WorstCaseLoss // symmetric prices: both single-win outcomes equal
	wantEV := opp.MiddleProb*opp.BothWinProfit + (1-opp.MiddleProb)*singleAvg
	if math.Abs(opp.EV-wantEV) > 1e-6 {
		t.Errorf("EV = %v, want %v", opp.EV, wantEV)
	}
	if math.Abs(opp.EVPercent-opp.EV/1000) > 1e-9 {
		t.Errorf("EVPercent = %v, want %v", opp.EVPercent, opp.EV/1000)
	}
}

func TestMiddleDetectorRejectsNonWindow(t *testing.T) {
	d := NewMiddleDetector(testMiddleConfig(), testLogger)
	now := time.Now()

	// Home -3.5 vs away +2.5 leaves no number that wins both.
	groups := spreadGroup(
		spreadObs(domain.SideHome, -3.5, "draftkings"),
		spreadObs(domain.SideAway, 2.5, "fanduel"),
	)
	if opps := d.Detect(groups, MiddleVariantSportsbook, now); len(opps) != 0 {
		t.Errorf("negative gap reported as middle")
	}

	// Identical lines: gap zero.
	groups = spreadGroup(
		spreadObs(domain.SideHome, -3.5, "draftkings"),
		spreadObs(domain.SideAway, 3.5, "fanduel"),
	)
	if opps := d.Detect(groups, MiddleVariantSportsbook, now); len(opps) != 0 {
		t.Errorf("zero gap reported as middle")
	}

	// Same side twice is not a middle.
	groups = spreadGroup(
		spreadObs(domain.SideHome, -3.5, "draftkings"),
		spreadObs(domain.SideHome, -5.5, "fanduel"),
	)
	if opps := d.Detect(groups, MiddleVariantSportsbook, now); len(opps) != 0 {
		t.Errorf("same-side pair reported as middle")
	}
}

func TestMiddleDetectorMinGap(t *testing.T) {
	cfg := testMiddleConfig()
	cfg.MinGapSpread = 3.0
	d := NewMiddleDetector(cfg, testLogger)

	groups := spreadGroup(
		spreadObs(domain.SideHome, -3.5, "draftkings"),
		spreadObs(domain.SideAway, 5.5, "fanduel"),
	)
	if opps := d.Detect(groups, MiddleVariantSportsbook, time.Now()); len(opps) != 0 {
		t.Errorf("gap 2.0 reported with min gap 3.0")
	}
}

func TestMiddleDetectorTotals(t *testing.T) {
	d := NewMiddleDetector(testMiddleConfig(), testLogger)
	now := time.Now()

	// Over 210.5 and under 213.5: totals of 211-213 win both.
	groups := spreadGroup(
		totalsObs(domain.SideOver, 210.5, "odds_api", "draftkings", domain.CategorySportsbook),
		totalsObs(domain.SideUnder, 213.5, "odds_api", "fanduel", domain.CategorySportsbook),
	)
	opps := d.Detect(groups, MiddleVariantSportsbook, now)
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	if math.Abs(opps[0].Gap-3.0) > 1e-9 {
		t.Errorf("gap = %v, want 3.0", opps[0].Gap)
	}

	// The inverted pair (over above under) is an overlap, not a window.
	groups = spreadGroup(
		totalsObs(domain.SideOver, 213.5, "odds_api", "draftkings", domain.CategorySportsbook),
		totalsObs(domain.SideUnder, 210.5, "odds_api", "fanduel", domain.CategorySportsbook),
	)
	if opps := d.Detect(groups, MiddleVariantSportsbook, now); len(opps) != 0 {
		t.Errorf("inverted totals pair reported as middle")
	}
}

func TestMiddleDetectorVariantPairing(t *testing.T) {
	d := NewMiddleDetector(testMiddleConfig(), testLogger)
	now := time.Now()

	// Same bookmaker on both legs does not qualify.
	groups := spreadGroup(
		spreadObs(domain.SideHome, -3.5, "draftkings"),
		spreadObs(domain.SideAway, 5.5, "draftkings"),
	)
	if opps := d.Detect(groups, MiddleVariantSportsbook, now); len(opps) != 0 {
		t.Errorf("single-book pair reported as sportsbook middle")
	}

	// Book against open market only counts under the cross variant.
	mixed := spreadGroup(
		totalsObs(domain.SideOver, 210.5, "odds_api", "draftkings", domain.CategorySportsbook),
		totalsObs(domain.SideUnder, 213.5, "kalshi", "kalshi", domain.CategoryOpenMarket),
	)
	if opps := d.Detect(mixed, MiddleVariantSportsbook, now); len(opps) != 0 {
		t.Errorf("mixed pair reported under sportsbook variant")
	}
	opps := d.Detect(mixed, MiddleVariantCross, now)
	if len(opps) != 1 {
		t.Fatalf("cross middle not detected: got %d opportunities", len(opps))
	}
	if opps[0].Category != domain.MiddleCross {
		t.Errorf("category = %v, want %v", opps[0].Category, domain.MiddleCross)
	}
}

func TestMiddleDetectorOpenMarketFee(t *testing.T) {
	now := time.Now()
	groups := spreadGroup(
		totalsObs(domain.SideOver, 210.5, "polymarket", "polymarket", domain.CategoryOpenMarket),
		totalsObs(domain.SideUnder, 213.5, "kalshi", "kalshi", domain.CategoryOpenMarket),
	)

	cfg := testMiddleConfig()
	withFee := NewMiddleDetector(cfg, testLogger).Detect(groups, MiddleVariantOpen, now)

	cfg.Fees = nil
	noFee := NewMiddleDetector(cfg, testLogger).Detect(groups, MiddleVariantOpen, now)

	if len(withFee) != 1 || len(noFee) != 1 {
		t.Fatalf("got %d/%d opportunities, want 1/1", len(withFee), len(noFee))
	}
	if withFee[0].EV >= noFee[0].EV {
		t.Errorf("venue fee did not reduce EV: %v >= %v", withFee[0].EV, noFee[0].EV)
	}
	wantHaircut := 1000 * 0.07 * withFee[0].MiddleProb
	if math.Abs((noFee[0].EV-withFee[0].EV)-wantHaircut) > 1e-6 {
		t.Errorf("fee haircut = %v, want %v", noFee[0].EV-withFee[0].EV, wantHaircut)
	}
}

func TestMiddleDetectorDefaultFee(t *testing.T) {
	now := time.Now()
	// Neither venue has its own fee entry; both fall back to "default".
	groups := spreadGroup(
		totalsObs(domain.SideOver, 210.5, "polymarket", "polymarket", domain.CategoryOpenMarket),
		totalsObs(domain.SideUnder, 213.5, "stx", "stx", domain.CategoryOpenMarket),
	)

	cfg := testMiddleConfig()
	cfg.Fees = map[string]float64{"default": 0.05}
	withDefault := NewMiddleDetector(cfg, testLogger).Detect(groups, MiddleVariantOpen, now)

	cfg.Fees = nil
	noFee := NewMiddleDetector(cfg, testLogger).Detect(groups, MiddleVariantOpen, now)

	if len(withDefault) != 1 || len(noFee) != 1 {
		t.Fatalf("got %d/%d opportunities, want 1/1", len(withDefault), len(noFee))
	}
	// Both legs are open-market, so the default rate is charged twice.
	wantHaircut := 2 * 1000 * 0.05 * withDefault[0].MiddleProb
	if math.Abs((noFee[0].EV-withDefault[0].EV)-wantHaircut) > 1e-6 {
		t.Errorf("default fee haircut = %v, want %v", noFee[0].EV-withDefault[0].EV, wantHaircut)
	}
}

func TestNormalEstimatorWindowProb(t *testing.T) {
	e := NormalEstimator{SpreadStdDev: 10.5, TotalStdDev: 18.0, PropStdDev: 6.0}

	if got := e.WindowProb(0, domain.MarketSpreads); got != 0 {
		t.Errorf("WindowProb(0) = %v, want 0", got)
	}
	if got := e.WindowProb(-2, domain.MarketSpreads); got != 0 {
		t.Errorf("WindowProb(-2) = %v, want 0", got)
	}

	// Wider windows are strictly more likely to catch the result.
	prev := 0.0
	for _, gap := range []float64{0.5, 1, 2, 4, 8, 20} {
		p := e.WindowProb(gap, domain.MarketSpreads)
		if p <= prev {
			t.Errorf("WindowProb not increasing at gap %v: %v <= %v", gap, p, prev)
		}
		if p >= 1 {
			t.Errorf("WindowProb(%v) = %v, want < 1", gap, p)
		}
		prev = p
	}

	// Totals use the wider deviation, so the same gap is less likely to hit.
	spread := e.WindowProb(3, domain.MarketSpreads)
	total := e.WindowProb(3, domain.MarketTotals)
	prop := e.WindowProb(3, domain.MarketPlayerPoints)
	if total >= spread {
		t.Errorf("totals window prob %v should be below spreads %v", total, spread)
	}
	if prop <= spread {
		t.Errorf("props window prob %v should be above spreads %v", prop, spread)
	}

	// Exact value at one point: erf(gap / (2 sigma sqrt2)).
	want := math.Erf(2 / (2 * 10.5 * math.Sqrt2))
	if got := e.WindowProb(2, domain.MarketSpreads); math.Abs(got-want) > 1e-12 {
		t.Errorf("WindowProb(2) = %v, want %v", got, want)
	}

	zeroSigma := NormalEstimator{}
	if got := zeroSigma.WindowProb(2, domain.MarketSpreads); got != 0 {
		t.Errorf("zero sigma WindowProb = %v, want 0", got)
	}
}
