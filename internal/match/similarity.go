package match

import "github.com/antzucaro/matchr"

// LevenshteinSimilarity returns 1 - distance/maxLen in [0,1]. Two empty
// strings are identical (1.0).
func LevenshteinSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1
	}
	dist := matchr.Levenshtein(a, b)
	sim := 1 - float64(dist)/float64(maxLen)
	if sim < 0 {
		return 0
	}
	return sim
}

// JaroWinkler returns the Jaro-Winkler similarity of a and b in [0,1].
// Used as a tie-break and secondary signal for short first names, where
// Levenshtein over-penalizes a single transposition.
func JaroWinkler(a, b string) float64 {
	return matchr.JaroWinkler(a, b, false)
}
