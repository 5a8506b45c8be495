// Package roster gathers the coach context snapshot: the deduplicated
// roster, team, and coach lists for one coach in one organization. The
// snapshot is read-only pipeline input, fetched fresh per artifact so roster
// changes between a coach's notes are always visible.
package roster

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/pitchside/voicenotes/internal/match"
)

// Player is one roster member visible to a coach.
type Player struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
	AgeGroup  string `json:"ageGroup,omitempty"`
	Sport     string `json:"sport,omitempty"`
}

// Team is one team the coach is assigned to.
type Team struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	AgeGroup string `json:"ageGroup,omitempty"`
	Sport    string `json:"sport,omitempty"`
}

// Coach is a co-coach on one of the coach's teams, used for todo assignment.
type Coach struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Directory is the external roster/team/coach lookup store. Implementations
// are read-only; the pipeline never writes through this interface.
type Directory interface {
	// PlayersForCoach lists players enrolled on any of the coach's teams.
	PlayersForCoach(ctx context.Context, orgID, coachUserID string) ([]Player, error)
	// TeamsForCoach lists the coach's team assignments.
	TeamsForCoach(ctx context.Context, orgID, coachUserID string) ([]Team, error)
	// CoachesForCoach lists co-coaches sharing a team with the coach,
	// including the coach themselves first.
	CoachesForCoach(ctx context.Context, orgID, coachUserID string) ([]Coach, error)
	// AllPlayers lists every player in the organization, for the fuzzy
	// fallback search beyond the coach's own roster.
	AllPlayers(ctx context.Context, orgID string) ([]Player, error)
}

// Snapshot is the deduplicated coach context embedded in the segmentation
// prompt and consulted by resolution.
type Snapshot struct {
	OrganizationID string
	CoachUserID    string
	Players        []Player
	Teams          []Team
	Coaches        []Coach
}

// Gather builds a Snapshot for one coach in one organization, deduplicating
// by entity id (a player enrolled on two of the coach's teams appears once).
func Gather(ctx context.Context, dir Directory, orgID, coachUserID string) (*Snapshot, error) {
	var (
		players []Player
		teams   []Team
		coaches []Coach
	)

	// The three lookups are independent reads against the same directory.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = dir.PlayersForCoach(gctx, orgID, coachUserID)
		return eris.Wrap(err, "roster: list players")
	})
	g.Go(func() error {
		var err error
		teams, err = dir.TeamsForCoach(gctx, orgID, coachUserID)
		return eris.Wrap(err, "roster: list teams")
	})
	g.Go(func() error {
		var err error
		coaches, err = dir.CoachesForCoach(gctx, orgID, coachUserID)
		return eris.Wrap(err, "roster: list coaches")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Snapshot{
		OrganizationID: orgID,
		CoachUserID:    coachUserID,
		Players:        dedupePlayers(players),
		Teams:          dedupeTeams(teams),
		Coaches:        dedupeCoaches(coaches),
	}, nil
}

func dedupePlayers(in []Player) []Player {
	seen := make(map[string]bool, len(in))
	out := make([]Player, 0, len(in))
	for _, p := range in {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out
}

func dedupeTeams(in []Team) []Team {
	seen := make(map[string]bool, len(in))
	out := make([]Team, 0, len(in))
	for _, t := range in {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}

func dedupeCoaches(in []Coach) []Coach {
	seen := make(map[string]bool, len(in))
	out := make([]Coach, 0, len(in))
	for _, c := range in {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// RosterJSON returns the player list as a JSON array for prompt embedding.
func (s *Snapshot) RosterJSON() string { return mustJSON(s.Players) }

// TeamsJSON returns the team list as a JSON array for prompt embedding.
func (s *Snapshot) TeamsJSON() string { return mustJSON(s.Teams) }

// CoachesJSON returns the coach list as a JSON array for prompt embedding.
func (s *Snapshot) CoachesJSON() string { return mustJSON(s.Coaches) }

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Entries converts the snapshot's players into the deterministic matcher's
// input shape.
func (s *Snapshot) Entries() []match.RosterEntry {
	out := make([]match.RosterEntry, len(s.Players))
	for i, p := range s.Players {
		out[i] = match.RosterEntry{
			ID:        p.ID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			FullName:  p.FullName,
		}
	}
	return out
}

// PlayerByID returns the snapshot player with the given id, or nil.
func (s *Snapshot) PlayerByID(id string) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// TeamByIDOrName returns the snapshot team matching the id when present,
// falling back to a case-insensitive name match, or nil.
func (s *Snapshot) TeamByIDOrName(id, name string) *Team {
	if id != "" {
		for i := range s.Teams {
			if s.Teams[i].ID == id {
				return &s.Teams[i]
			}
		}
	}
	if name == "" {
		return nil
	}
	norm := match.Normalize(name)
	for i := range s.Teams {
		if match.Normalize(s.Teams[i].Name) == norm {
			return &s.Teams[i]
		}
	}
	return nil
}

// CoachByID returns the snapshot coach with the given user id, or nil.
func (s *Snapshot) CoachByID(id string) *Coach {
	if id == "" {
		return nil
	}
	for i := range s.Coaches {
		if s.Coaches[i].ID == id {
			return &s.Coaches[i]
		}
	}
	return nil
}
