// Package domain defines the core types shared across linescout: events,
// price observations, poll state, detected opportunities, and the store and
// cache interfaces implemented by the infrastructure packages.
package domain

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Event is a single game or contest tracked across sources.
type Event struct {
	ID           string // canonical, derived: date_league_teamA_teamB
	League       string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time
	LastSeenAt   time.Time
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeTeam folds a team name to a comparable token:
// "Los Angeles Lakers" -> "losangeleslakers".
func NormalizeTeam(name string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(name), "")
}

// CanonicalEventID derives a stable event identifier from the game date,
// league, and participants. League and team tokens go through the canonical
// vocabulary and teams are sorted, so every source produces the same ID
// regardless of its own labels or home/away ordering.
func CanonicalEventID(date, league, teamA, teamB string) string {
	lg := CanonicalLeague(league)
	teams := []string{CanonicalTeam(lg, teamA), CanonicalTeam(lg, teamB)}
	sort.Strings(teams)
	return date + "_" + lg + "_" + teams[0] + "_" + teams[1]
}
