package domain

import "testing"

func TestNormalizeTeam(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Los Angeles Lakers", "losangeleslakers"},
		{"LOS ANGELES LAKERS", "losangeleslakers"},
		{"St. Louis Blues", "stlouisblues"},
		{"76ers", "76ers"},
	}
	for _, c := range cases {
		if got := NormalizeTeam(c.in); got != c.want {
			t.Errorf("NormalizeTeam(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalEventIDOrderIndependent(t *testing.T) {
	a := CanonicalEventID("2025-01-15", "basketball_nba", "Los Angeles Lakers", "Boston Celtics")
	b := CanonicalEventID("2025-01-15", "basketball_nba", "Boston Celtics", "Los Angeles Lakers")
	if a != b {
		t.Errorf("event ID depends on team order: %q vs %q", a, b)
	}
	want := "2025-01-15_basketball_nba_bostonceltics_losangeleslakers"
	if a != want {
		t.Errorf("event ID = %q, want %q", a, want)
	}
}

func TestCanonicalLeague(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"nba", "basketball_nba"},
		{"NBA", "basketball_nba"},
		{"nhl", "icehockey_nhl"},
		{"ncaamb", "basketball_ncaab"},
		{"basketball_nba", "basketball_nba"},
		{"kbo", "kbo"},
	}
	for _, c := range cases {
		if got := CanonicalLeague(c.in); got != c.want {
			t.Errorf("CanonicalLeague(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalTeam(t *testing.T) {
	cases := []struct {
		league, in, want string
	}{
		{"basketball_nba", "Lakers", "losangeleslakers"},
		{"basketball_nba", "Los Angeles Lakers", "losangeleslakers"},
		// "kings" is league-ambiguous; the league scope disambiguates.
		{"basketball_nba", "Kings", "sacramentokings"},
		{"icehockey_nhl", "Kings", "losangeleskings"},
		{"icehockey_nhl", "Maple Leafs", "torontomapleleafs"},
		{"basketball_nba", "Harlem Globetrotters", "harlemglobetrotters"},
	}
	for _, c := range cases {
		if got := CanonicalTeam(c.league, c.in); got != c.want {
			t.Errorf("CanonicalTeam(%q, %q) = %q, want %q", c.league, c.in, got, c.want)
		}
	}
}

func TestRegisterTeamAliases(t *testing.T) {
	RegisterTeamAliases(map[string]string{"Lake Show": "Los Angeles Lakers"})
	if got := CanonicalTeam("basketball_nba", "Lake Show"); got != "losangeleslakers" {
		t.Errorf("registered alias resolved to %q", got)
	}
}

func TestCanonicalEventIDAcrossVocabularies(t *testing.T) {
	// The aggregator quotes the sport key and full names; the open-market
	// venues quote short league tags and nicknames. Both forms must yield
	// the same event ID or cross-source matching never happens.
	full := CanonicalEventID("2025-03-01", "basketball_nba", "Los Angeles Lakers", "Boston Celtics")
	short := CanonicalEventID("2025-03-01", "nba", "Lakers", "Celtics")
	if full != short {
		t.Errorf("event IDs diverge across vocabularies: %q vs %q", full, short)
	}
	if full != "2025-03-01_basketball_nba_bostonceltics_losangeleslakers" {
		t.Errorf("event ID = %q", full)
	}
}

func TestMarketIsProp(t *testing.T) {
	if MarketH2H.IsProp() || MarketSpreads.IsProp() || MarketTotals.IsProp() {
		t.Error("game market classified as prop")
	}
	if !MarketPlayerPoints.IsProp() || !MarketPlayerThrees.IsProp() {
		t.Error("player market not classified as prop")
	}
}

func TestSideOpposite(t *testing.T) {
	cases := map[Side]Side{
		SideHome:  SideAway,
		SideAway:  SideHome,
		SideOver:  SideUnder,
		SideUnder: SideOver,
	}
	for side, want := range cases {
		if got := side.Opposite(); got != want {
			t.Errorf("%v.Opposite() = %v, want %v", side, got, want)
		}
	}
	if got := Side("draw").Opposite(); got != "" {
		t.Errorf("unknown side opposite = %q, want empty", got)
	}
}

func TestObservationKey(t *testing.T) {
	a := PriceObservation{
		EventID: "e1", Market: MarketSpreads, Side: SideHome, Line: -3.5,
		Source: "odds_api", Provider: "draftkings",
		Price: 1.91, ImpliedProb: 0.52,
	}
	b := a
	b.Price = 2.05 // price changes do not change identity
	if a.Key() != b.Key() {
		t.Error("keys differ for the same quoted position")
	}
	b.Provider = "fanduel"
	if a.Key() == b.Key() {
		t.Error("keys collide across providers")
	}
}
