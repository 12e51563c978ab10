package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Player-prop matching requires a canonical identity per player. Sources spell
// names differently ("Luka Doncic", "Luka Dončić", "L. Doncic"), so we fold
// case and diacritics, strip punctuation, and then resolve nicknames through
// an alias table. A name that folds to nothing cannot be matched and the
// observation is excluded.

var playerNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// diacriticFold removes combining marks after NFD decomposition.
var diacriticFold = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// FoldPlayer lowercases a player name, strips diacritics and punctuation,
// and collapses whitespace: "Luka Dončić" -> "lukadoncic".
func FoldPlayer(name string) string {
	folded, _, err := transform.String(diacriticFold, name)
	if err != nil {
		folded = name
	}
	return playerNonAlnum.ReplaceAllString(strings.ToLower(folded), "")
}

// PlayerAliases maps folded alias forms to a canonical folded name.
type PlayerAliases map[string]string

// Canonical resolves name to its canonical folded form. The second return is
// false when the name folds to an empty token and cannot be matched.
func (a PlayerAliases) Canonical(name string) (string, bool) {
	folded := FoldPlayer(name)
	if folded == "" {
		return "", false
	}
	if canonical, ok := a[folded]; ok {
		return canonical, true
	}
	return folded, true
}
