package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_ExactMatches(t *testing.T) {
	assert.Equal(t, 1.0, Score("John Murphy", "John", "Murphy"))
	assert.Equal(t, 1.0, Score("John", "John", "Murphy"))
	assert.Equal(t, 1.0, Score("Murphy", "John", "Murphy"))
	assert.Equal(t, 1.0, Score("Murphy John", "John", "Murphy"))
}

func TestScore_Diacritics(t *testing.T) {
	assert.GreaterOrEqual(t, Score("Sean", "Seán", "Murphy"), 0.9)
	assert.GreaterOrEqual(t, Score("O'Brien", "Patrick", "O'Brien"), 0.9)
}

func TestScore_Aliases(t *testing.T) {
	for _, variant := range []string{"Neeve", "Neve", "Nieve"} {
		assert.GreaterOrEqual(t, Score(variant, "Niamh", "Kelly"), 0.9, variant)
	}
	assert.GreaterOrEqual(t, Score("Shivawn", "Siobhan", "Murphy"), 0.9)
	assert.GreaterOrEqual(t, Score("Eefa", "Aoife", "O'Brien"), 0.9)
	assert.GreaterOrEqual(t, Score("Keeva", "Caoimhe", "Ryan"), 0.9)
	assert.GreaterOrEqual(t, Score("Seersha", "Saoirse", "Walsh"), 0.9)
	assert.GreaterOrEqual(t, Score("Cloda", "Clodagh", "Byrne"), 0.9)
}

func TestScore_Typos(t *testing.T) {
	assert.GreaterOrEqual(t, Score("Jhon", "John", "Murphy"), 0.5)
	assert.GreaterOrEqual(t, Score("Paddy", "Pádraig", "Kelly"), 0.4)
}

func TestScore_Unrelated(t *testing.T) {
	assert.Less(t, Score("abc123", "John", "Murphy"), 0.5)
	assert.Equal(t, 0.0, Score("", "John", "Murphy"))
}

func TestSameName(t *testing.T) {
	assert.True(t, SameName("Shawn", "Seán"))
	assert.True(t, SameName("Rory", "Ruairi"))
	assert.False(t, SameName("John", "Niamh"))
	assert.False(t, SameName("", ""))
}

func TestResolveRoster_Ladder(t *testing.T) {
	roster := []RosterEntry{
		{ID: "p1", FirstName: "Sarah", LastName: "Connolly", FullName: "Sarah Connolly"},
		{ID: "p2", FirstName: "Aoife", LastName: "Byrne", FullName: "Aoife Byrne"},
		{ID: "p3", FirstName: "Aoife", LastName: "Walsh", FullName: "Aoife Walsh"},
	}

	// Supplied id wins when present in the snapshot.
	got := ResolveRoster("p2", "whoever", roster)
	require.NotNil(t, got)
	assert.Equal(t, "p2", got.ID)

	// Unknown supplied id falls through to name rules.
	got = ResolveRoster("p99", "Sarah Connolly", roster)
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.ID)

	// Exact full name, case-insensitive.
	got = ResolveRoster("", "sarah connolly", roster)
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.ID)

	// First name only: unambiguous hit.
	got = ResolveRoster("", "Sarah", roster)
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.ID)

	// First name only: ambiguous (two Aoifes) → nil.
	assert.Nil(t, ResolveRoster("", "Aoife", roster))

	// Substring containment, unambiguous.
	got = ResolveRoster("", "Connolly", roster)
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.ID)

	// No name, no id.
	assert.Nil(t, ResolveRoster("", "", roster))
	assert.Nil(t, ResolveRoster("", "Sarah", nil))
}
