package match

import "strings"

// RosterEntry is the minimal projection of a roster member the deterministic
// ladder needs.
type RosterEntry struct {
	ID        string
	FirstName string
	LastName  string
	FullName  string
}

// ResolveRoster runs the deterministic matching ladder for a player
// reference against a coach's roster snapshot. Rules, in order:
//
//  1. A supplied roster id is trusted only if it exists in the snapshot.
//  2. Exact case-insensitive full-name match.
//  3. "first + last" concatenation match.
//  4. First-name-only match, only when exactly one member shares it.
//  5. Substring containment in either direction, only when unambiguous.
//
// Returns the matched entry, or nil when every rule fails; fuzzy fallback
// is the caller's concern.
func ResolveRoster(suppliedID, searchName string, roster []RosterEntry) *RosterEntry {
	if len(roster) == 0 {
		return nil
	}

	if suppliedID != "" {
		for i := range roster {
			if roster[i].ID == suppliedID {
				return &roster[i]
			}
		}
	}

	name := strings.ToLower(strings.TrimSpace(searchName))
	if name == "" {
		return nil
	}

	for i := range roster {
		if strings.ToLower(roster[i].FullName) == name {
			return &roster[i]
		}
	}

	for i := range roster {
		concat := strings.ToLower(roster[i].FirstName + " " + roster[i].LastName)
		if concat == name {
			return &roster[i]
		}
	}

	var firstNameHit *RosterEntry
	firstNameCount := 0
	for i := range roster {
		if strings.ToLower(roster[i].FirstName) == name {
			firstNameHit = &roster[i]
			firstNameCount++
		}
	}
	if firstNameCount == 1 {
		return firstNameHit
	}

	var partialHit *RosterEntry
	partialCount := 0
	for i := range roster {
		full := strings.ToLower(roster[i].FullName)
		if strings.Contains(full, name) || strings.Contains(name, full) {
			partialHit = &roster[i]
			partialCount++
		}
	}
	if partialCount == 1 {
		return partialHit
	}

	return nil
}
