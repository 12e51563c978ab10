package match

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/linescout/linescout/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestFoldPlayer(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Luka Dončić", "lukadoncic"},
		{"Luka Doncic", "lukadoncic"},
		{"LeBron James", "lebronjames"},
		{"D'Angelo Russell", "dangelorussell"},
		{"  Nikola  Jokić ", "nikolajokic"},
		{"...", ""},
	}
	for _, c := range cases {
		if got := FoldPlayer(c.in); got != c.want {
			t.Errorf("FoldPlayer(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPlayerAliases(t *testing.T) {
	aliases := PlayerAliases{"stephcurry": "stephencurry"}

	got, ok := aliases.Canonical("Steph Curry")
	if !ok || got != "stephencurry" {
		t.Errorf("Canonical(Steph Curry) = (%q, %v), want (stephencurry, true)", got, ok)
	}

	// Unknown names resolve to their own folded form.
	got, ok = aliases.Canonical("Jayson Tatum")
	if !ok || got != "jaysontatum" {
		t.Errorf("Canonical(Jayson Tatum) = (%q, %v), want (jaysontatum, true)", got, ok)
	}

	// Names that fold to nothing cannot be matched.
	if _, ok := aliases.Canonical("??"); ok {
		t.Error("Canonical(??) resolved, want failure")
	}
}

func obsAt(eventID string, market domain.MarketType, side domain.Side, ingested time.Time) domain.PriceObservation {
	return domain.PriceObservation{
		EventID:    eventID,
		Market:     market,
		Side:       side,
		Source:     "odds_api",
		Provider:   "draftkings",
		IngestedAt: ingested,
	}
}

func TestMatcherGroups(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	m := New(5*time.Minute, nil, testLogger)

	obs := []domain.PriceObservation{
		obsAt("e1", domain.MarketH2H, domain.SideHome, now),
		obsAt("e1", domain.MarketH2H, domain.SideAway, now),
		obsAt("e1", domain.MarketTotals, domain.SideOver, now),
		obsAt("e2", domain.MarketH2H, domain.SideHome, now),
	}

	groups := m.Groups(obs, now)
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}

	// Insertion order is preserved.
	if groups[0].Key != (GroupKey{EventID: "e1", Market: domain.MarketH2H}) {
		t.Errorf("first group key = %+v", groups[0].Key)
	}
	if len(groups[0].Observations) != 2 {
		t.Errorf("h2h group has %d observations, want 2", len(groups[0].Observations))
	}

	bySide := groups[0].BySide()
	if len(bySide[domain.SideHome]) != 1 || len(bySide[domain.SideAway]) != 1 {
		t.Errorf("BySide split = %d home / %d away, want 1/1",
			len(bySide[domain.SideHome]), len(bySide[domain.SideAway]))
	}
}

func TestMatcherDropsStale(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	m := New(5*time.Minute, nil, testLogger)

	obs := []domain.PriceObservation{
		obsAt("e1", domain.MarketH2H, domain.SideHome, now.Add(-1*time.Minute)),
		obsAt("e1", domain.MarketH2H, domain.SideAway, now.Add(-10*time.Minute)),
	}

	groups := m.Groups(obs, now)
	if len(groups) != 1 || len(groups[0].Observations) != 1 {
		t.Fatalf("stale observation not dropped: %+v", groups)
	}
	if groups[0].Observations[0].Side != domain.SideHome {
		t.Errorf("kept side = %v, want home", groups[0].Observations[0].Side)
	}

	// Zero maxAge disables the staleness filter.
	m = New(0, nil, testLogger)
	groups = m.Groups(obs, now)
	if len(groups) != 1 || len(groups[0].Observations) != 2 {
		t.Errorf("maxAge 0 should keep everything: %+v", groups)
	}
}

func TestMatcherPropPlayerResolution(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	m := New(5*time.Minute, PlayerAliases{"stephcurry": "stephencurry"}, testLogger)

	curry := obsAt("e1", domain.MarketPlayerPoints, domain.SideOver, now)
	curry.Player = "Steph Curry"
	currySpelled := obsAt("e1", domain.MarketPlayerPoints, domain.SideUnder, now)
	currySpelled.Player = "Stephen Curry"
	currySpelled.Provider = "fanduel"
	unresolvable := obsAt("e1", domain.MarketPlayerPoints, domain.SideOver, now)
	unresolvable.Player = "--"

	groups := m.Groups([]domain.PriceObservation{curry, currySpelled, unresolvable}, now)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1 (alias forms merged, unresolvable dropped)", len(groups))
	}
	g := groups[0]
	if g.Key.Player != "stephencurry" {
		t.Errorf("group player = %q, want stephencurry", g.Key.Player)
	}
	if len(g.Observations) != 2 {
		t.Fatalf("got %d observations, want 2", len(g.Observations))
	}
	for _, o := range g.Observations {
		if o.Player != "stephencurry" {
			t.Errorf("observation player = %q, want canonical form", o.Player)
		}
	}
}
