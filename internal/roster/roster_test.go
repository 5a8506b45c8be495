package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	players    []Player
	teams      []Team
	coaches    []Coach
	allPlayers []Player
}

func (f *fakeDirectory) PlayersForCoach(context.Context, string, string) ([]Player, error) {
	return f.players, nil
}

func (f *fakeDirectory) TeamsForCoach(context.Context, string, string) ([]Team, error) {
	return f.teams, nil
}

func (f *fakeDirectory) CoachesForCoach(context.Context, string, string) ([]Coach, error) {
	return f.coaches, nil
}

func (f *fakeDirectory) AllPlayers(context.Context, string) ([]Player, error) {
	return f.allPlayers, nil
}

func TestGather_Dedupes(t *testing.T) {
	dir := &fakeDirectory{
		players: []Player{
			{ID: "p1", FirstName: "Niamh", LastName: "Kelly", FullName: "Niamh Kelly"},
			{ID: "p1", FirstName: "Niamh", LastName: "Kelly", FullName: "Niamh Kelly"},
			{ID: "p2", FirstName: "Aoife", LastName: "Byrne", FullName: "Aoife Byrne"},
		},
		teams: []Team{
			{ID: "t1", Name: "U14 Girls"},
			{ID: "t1", Name: "U14 Girls"},
		},
		coaches: []Coach{
			{ID: "c1", Name: "Maria Daly"},
			{ID: "c2", Name: "John Power"},
			{ID: "c1", Name: "Maria Daly"},
		},
	}

	snap, err := Gather(context.Background(), dir, "org-1", "coach-1")
	require.NoError(t, err)

	assert.Len(t, snap.Players, 2)
	assert.Len(t, snap.Teams, 1)
	assert.Len(t, snap.Coaches, 2)
	assert.Equal(t, "org-1", snap.OrganizationID)

	// Sorted by full name.
	assert.Equal(t, "Aoife Byrne", snap.Players[0].FullName)
}

func TestSnapshot_JSONProjections(t *testing.T) {
	snap := &Snapshot{
		Players: []Player{{ID: "p1", FirstName: "Niamh", LastName: "Kelly", FullName: "Niamh Kelly"}},
	}
	assert.Contains(t, snap.RosterJSON(), `"fullName":"Niamh Kelly"`)
	assert.Equal(t, "[]", snap.TeamsJSON())
	assert.Equal(t, "[]", snap.CoachesJSON())
}

func TestDirectorySearch_RanksAndLimits(t *testing.T) {
	dir := &fakeDirectory{
		allPlayers: []Player{
			{ID: "p1", FirstName: "Niamh", LastName: "Kelly", FullName: "Niamh Kelly"},
			{ID: "p2", FirstName: "Niamh", LastName: "Walsh", FullName: "Niamh Walsh"},
			{ID: "p3", FirstName: "Tom", LastName: "Zak", FullName: "Tom Zak"},
		},
	}
	search := NewDirectorySearch(dir)

	results, err := search.FindSimilarPlayers(context.Background(), "org-1", "coach-1", "Neeve Kelly", 2)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 2)
	assert.Equal(t, "p1", results[0].ID)
	assert.GreaterOrEqual(t, results[0].Similarity, results[len(results)-1].Similarity)
}
