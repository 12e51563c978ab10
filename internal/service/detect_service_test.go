package service

import (
	"testing"

	"github.com/linescout/linescout/internal/domain"
)

func TestParseCategory(t *testing.T) {
	got, err := ParseCategory("")
	if err != nil || len(got) != len(AllCategories) {
		t.Errorf("ParseCategory(\"\") = %v, %v", got, err)
	}
	got, err = ParseCategory("arbitrage")
	if err != nil || len(got) != 4 || got[0] != domain.ArbOpenMarket {
		t.Errorf("ParseCategory(arbitrage) = %v, %v", got, err)
	}
	got, err = ParseCategory("middles")
	if err != nil || len(got) != 4 || got[0] != domain.MiddleSportsbook {
		t.Errorf("ParseCategory(middles) = %v, %v", got, err)
	}
	got, err = ParseCategory("arb_cross_market")
	if err != nil || len(got) != 1 || got[0] != domain.ArbCross {
		t.Errorf("ParseCategory(arb_cross_market) = %v, %v", got, err)
	}
	if _, err = ParseCategory("bogus"); err == nil {
		t.Error("ParseCategory(bogus) did not error")
	}
}

func TestParseCategoryShortTokens(t *testing.T) {
	cases := map[string]domain.OpportunityCategory{
		"open":         domain.ArbOpenMarket,
		"sportsbook":   domain.ArbSportsbook,
		"cross":        domain.ArbCross,
		"props":        domain.ArbPlayerProp,
		"middle-sb":    domain.MiddleSportsbook,
		"middle-open":  domain.MiddleOpenMarket,
		"middle-cross": domain.MiddleCross,
		"middle-props": domain.MiddlePlayerProp,
	}
	for token, want := range cases {
		got, err := ParseCategory(token)
		if err != nil || len(got) != 1 || got[0] != want {
			t.Errorf("ParseCategory(%q) = %v, %v, want [%v]", token, got, err, want)
		}
	}
}

func TestAllCategoriesGroupOrder(t *testing.T) {
	// The first half is arbitrage, the second half is middles; the group
	// aliases in ParseCategory slice on that boundary.
	for i, c := range AllCategories {
		if want := i >= 4; c.IsMiddle() != want {
			t.Errorf("AllCategories[%d] = %v, IsMiddle = %v", i, c, c.IsMiddle())
		}
	}
}
