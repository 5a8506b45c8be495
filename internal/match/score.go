package match

import "strings"

// Score returns a match score in [0,1] for a searched name against a
// directory entry's first and last name.
//
// Exact matches on the full name, either component, or the reversed word
// order score 1.0. Alias-table equivalence ("Neeve" vs "Niamh") scores 0.9.
// Otherwise the best Levenshtein similarity across full-name and component
// comparisons is returned, with Jaro-Winkler as a floor for short first
// names.
func Score(search, firstName, lastName string) float64 {
	s := Normalize(search)
	first := Normalize(firstName)
	last := Normalize(lastName)
	full := first + " " + last

	if s == "" {
		return 0
	}
	if s == full || s == first || s == last {
		return 1
	}

	parts := strings.Fields(s)
	if len(parts) >= 2 {
		reversed := strings.Join(reverse(parts), " ")
		if reversed == full {
			return 1
		}
	}

	if SameName(parts[0], first) {
		return 0.9
	}

	best := LevenshteinSimilarity(s, full)
	if v := LevenshteinSimilarity(parts[0], first); v > best {
		best = v
	}
	if v := LevenshteinSimilarity(s, last); v > best {
		best = v
	}
	if len(parts) >= 2 {
		if v := LevenshteinSimilarity(strings.Join(reverse(parts), " "), full); v > best {
			best = v
		}
	}
	// Jaro-Winkler rewards shared prefixes that Levenshtein penalizes on
	// short names ("Jhon" vs "John").
	if v := JaroWinkler(parts[0], first) * 0.9; v > best {
		best = v
	}
	return best
}

func reverse(parts []string) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[len(parts)-1-i] = p
	}
	return out
}
