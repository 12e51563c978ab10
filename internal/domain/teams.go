package domain

// Sources label the same game with different vocabularies: the aggregator
// uses sport keys ("basketball_nba"), the open-market venues short league
// tags ("nba", "KXNBA") and team nicknames ("Lakers"). Canonical event IDs
// only line up across sources when both the league and the team tokens are
// folded to one vocabulary first. The sport key is the canonical league form;
// the full team name's normalized token is the canonical team form.

// leagueKeys maps short league tags to their canonical sport key.
var leagueKeys = map[string]string{
	"nba":    "basketball_nba",
	"wnba":   "basketball_wnba",
	"ncaab":  "basketball_ncaab",
	"ncaamb": "basketball_ncaab",
	"nfl":    "americanfootball_nfl",
	"ncaaf":  "americanfootball_ncaaf",
	"mlb":    "baseball_mlb",
	"nhl":    "icehockey_nhl",
}

// CanonicalLeague folds a source's league label to the canonical sport key.
// Labels that are already sport keys, or unknown, pass through normalized.
func CanonicalLeague(league string) string {
	n := NormalizeTeam(league)
	if key, ok := leagueKeys[n]; ok {
		return key
	}
	return n
}

// teamAliases maps normalized nicknames to the full-name token, per league.
// Nicknames collide across leagues ("kings", "rangers"), so the lookup is
// league-scoped; config-registered aliases apply to every league.
var teamAliases = map[string]map[string]string{
	"basketball_nba": {
		"hawks":        "atlantahawks",
		"celtics":      "bostonceltics",
		"nets":         "brooklynnets",
		"hornets":      "charlottehornets",
		"bulls":        "chicagobulls",
		"cavaliers":    "clevelandcavaliers",
		"cavs":         "clevelandcavaliers",
		"mavericks":    "dallasmavericks",
		"mavs":         "dallasmavericks",
		"nuggets":      "denvernuggets",
		"pistons":      "detroitpistons",
		"warriors":     "goldenstatewarriors",
		"rockets":      "houstonrockets",
		"pacers":       "indianapacers",
		"clippers":     "losangelesclippers",
		"lakers":       "losangeleslakers",
		"grizzlies":    "memphisgrizzlies",
		"heat":         "miamiheat",
		"bucks":        "milwaukeebucks",
		"timberwolves": "minnesotatimberwolves",
		"wolves":       "minnesotatimberwolves",
		"pelicans":     "neworleanspelicans",
		"knicks":       "newyorkknicks",
		"thunder":      "oklahomacitythunder",
		"magic":        "orlandomagic",
		"76ers":        "philadelphia76ers",
		"sixers":       "philadelphia76ers",
		"suns":         "phoenixsuns",
		"trailblazers": "portlandtrailblazers",
		"blazers":      "portlandtrailblazers",
		"kings":        "sacramentokings",
		"spurs":        "sanantoniospurs",
		"raptors":      "torontoraptors",
		"jazz":         "utahjazz",
		"wizards":      "washingtonwizards",
	},
	"icehockey_nhl": {
		"ducks":         "anaheimducks",
		"bruins":        "bostonbruins",
		"sabres":        "buffalosabres",
		"flames":        "calgaryflames",
		"hurricanes":    "carolinahurricanes",
		"canes":         "carolinahurricanes",
		"blackhawks":    "chicagoblackhawks",
		"avalanche":     "coloradoavalanche",
		"bluejackets":   "columbusbluejackets",
		"stars":         "dallasstars",
		"redwings":      "detroitredwings",
		"oilers":        "edmontonoilers",
		"panthers":      "floridapanthers",
		"kings":         "losangeleskings",
		"wild":          "minnesotawild",
		"canadiens":     "montrealcanadiens",
		"predators":     "nashvillepredators",
		"devils":        "newjerseydevils",
		"islanders":     "newyorkislanders",
		"rangers":       "newyorkrangers",
		"senators":      "ottawasenators",
		"flyers":        "philadelphiaflyers",
		"penguins":      "pittsburghpenguins",
		"sharks":        "sanjosesharks",
		"kraken":        "seattlekraken",
		"blues":         "stlouisblues",
		"lightning":     "tampabaylightning",
		"mapleleafs":    "torontomapleleafs",
		"leafs":         "torontomapleleafs",
		"canucks":       "vancouvercanucks",
		"goldenknights": "vegasgoldenknights",
		"capitals":      "washingtoncapitals",
		"jets":          "winnipegjets",
		"mammoth":       "utahmammoth",
	},
}

// extraTeamAliases holds config-registered aliases, league-agnostic.
var extraTeamAliases = map[string]string{}

// RegisterTeamAliases merges config-supplied team aliases over the built-in
// tables. Keys and values are normalized. Call once at startup, before
// ingestion begins; the tables are not guarded for concurrent mutation.
func RegisterTeamAliases(aliases map[string]string) {
	for alias, canonical := range aliases {
		extraTeamAliases[NormalizeTeam(alias)] = NormalizeTeam(canonical)
	}
}

// CanonicalTeam resolves a team name to its canonical token. league must
// already be the canonical sport key. Unknown names fall back to their own
// normalized form.
func CanonicalTeam(league, name string) string {
	n := NormalizeTeam(name)
	if n == "" {
		return ""
	}
	if full, ok := extraTeamAliases[n]; ok {
		return full
	}
	if m, ok := teamAliases[league]; ok {
		if full, ok := m[n]; ok {
			return full
		}
	}
	return n
}
