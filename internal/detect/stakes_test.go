package detect

import (
	"math"
	"testing"
)

func TestStakesEqualPayout(t *testing.T) {
	prices := []float64{2.10, 2.05}
	bankroll := 1000.0

	stakes := Stakes(prices, bankroll)
	if stakes == nil {
		t.Fatal("Stakes returned nil")
	}

	var total float64
	for _, s := range stakes {
		total += s
	}
	if math.Abs(total-bankroll) > 1e-9 {
		t.Errorf("stakes sum to %v, want %v", total, bankroll)
	}

	// Every leg must pay the same no matter which one wins.
	payout := stakes[0] * prices[0]
	for i := 1; i < len(prices); i++ {
		if math.Abs(stakes[i]*prices[i]-payout) > 1e-9 {
			t.Errorf("leg %d payout %v differs from leg 0 payout %v", i, stakes[i]*prices[i], payout)
		}
	}
	if math.Abs(payout-EqualPayout(prices, bankroll)) > 1e-9 {
		t.Errorf("EqualPayout = %v, want %v", EqualPayout(prices, bankroll), payout)
	}

	// Shorter price gets the larger stake.
	if stakes[1] <= stakes[0] {
		t.Errorf("stake on 2.05 (%v) should exceed stake on 2.10 (%v)", stakes[1], stakes[0])
	}
}

func TestStakesProfitMatchesMargin(t *testing.T) {
	// 2.10 and 2.05 imply 0.4762 + 0.4878 = 0.9640; margin is about 3.6%.
	prices := []float64{2.10, 2.05}
	bankroll := 1000.0

	margin := 1.0 - (1.0/prices[0] + 1.0/prices[1])
	payout := EqualPayout(prices, bankroll)
	profit := payout - bankroll

	if math.Abs(profit-margin*payout) > 1e-9 {
		t.Errorf("profit %v inconsistent with margin %v on payout %v", profit, margin, payout)
	}
	if profit <= 0 {
		t.Errorf("arbitrage prices should yield positive profit, got %v", profit)
	}
}

func TestStakesInvalidInput(t *testing.T) {
	if got := Stakes(nil, 1000); got != nil {
		t.Errorf("Stakes(nil) = %v, want nil", got)
	}
	if got := Stakes([]float64{2.0, 0}, 1000); got != nil {
		t.Errorf("Stakes with zero price = %v, want nil", got)
	}
	if got := Stakes([]float64{2.0, 2.0}, 0); got != nil {
		t.Errorf("Stakes with zero bankroll = %v, want nil", got)
	}
	if got := EqualPayout([]float64{2.0, -1}, 1000); got != 0 {
		t.Errorf("EqualPayout with negative price = %v, want 0", got)
	}
}

func TestMiddleFigures(t *testing.T) {
	prices := []float64{1.91, 1.91}
	stakes := Stakes(prices, 1000)

	bothWin, worstCase := MiddleFigures(prices, stakes)

	// Both legs winning pays out twice; total payout is 2*1.91*500 = 1910.
	if math.Abs(bothWin-910) > 1e-6 {
		t.Errorf("bothWin = %v, want 910", bothWin)
	}
	// Only one leg winning returns 955 against a 1000 outlay.
	if math.Abs(worstCase-(-45)) > 1e-6 {
		t.Errorf("worstCase = %v, want -45", worstCase)
	}
	if worstCase >= 0 {
		t.Errorf("middle at fair odds must risk a small loss, got %v", worstCase)
	}
}
