// Package match implements the name-matching toolkit shared by inline claim
// resolution, the entity-resolution stage, and the directory fuzzy search.
//
// Matching is deterministic first, fuzzy second: callers try the roster
// ladder ([RosterMatcher]) before falling back to similarity search
// ([DirectorySearch]). All comparisons run on normalized text.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Fold lowercases, trims, and removes diacritics: "Seán" → "sean".
func Fold(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Normalize prepares a name for matching: folds case and diacritics, strips
// the O'/Mc/Mac surname prefixes and hyphens. "O'Brien" → "brien",
// "Mary-Jane" → "maryjane".
func Normalize(s string) string {
	n := Fold(s)
	n = strings.ReplaceAll(n, "-", "")
	for _, prefix := range []string{"o'", "o’", "mc", "mac"} {
		if strings.HasPrefix(n, prefix) && len(n) > len(prefix) {
			n = n[len(prefix):]
			break
		}
	}
	n = strings.ReplaceAll(n, "'", "")
	n = strings.ReplaceAll(n, "’", "")
	return n
}
