package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicSensitive(t *testing.T) {
	assert.True(t, TopicInjury.Sensitive())
	assert.True(t, TopicWellbeing.Sensitive())
	assert.True(t, TopicRecovery.Sensitive())
	assert.False(t, TopicSkillRating.Sensitive())
	assert.False(t, TopicPerformance.Sensitive())
}

func TestSourceChannelValid(t *testing.T) {
	assert.True(t, SourceChatAudio.Valid())
	assert.True(t, SourceAppTyped.Valid())
	assert.False(t, SourceChannel("fax").Valid())
	assert.False(t, SourceChannel("").Valid())
}

func TestPrimaryOrg(t *testing.T) {
	a := &Artifact{OrgCandidates: []OrgCandidate{
		{OrganizationID: "org-low", Confidence: 0.4},
		{OrganizationID: "org-high", Confidence: 0.9},
	}}
	assert.Equal(t, "org-high", a.PrimaryOrg())

	assert.Empty(t, (&Artifact{}).PrimaryOrg())
}

func TestEffectiveLevel(t *testing.T) {
	three := 3
	one := 1

	// No preference caps at 3 even when more was earned.
	assert.Equal(t, 3, (&CoachTrustLevel{CurrentLevel: 5}).EffectiveLevel())
	assert.Equal(t, 2, (&CoachTrustLevel{CurrentLevel: 2}).EffectiveLevel())

	// A preference caps below the earned level, never above it.
	assert.Equal(t, 1, (&CoachTrustLevel{CurrentLevel: 4, PreferredLevel: &one}).EffectiveLevel())
	assert.Equal(t, 2, (&CoachTrustLevel{CurrentLevel: 2, PreferredLevel: &three}).EffectiveLevel())
}

func TestTopCandidateScore(t *testing.T) {
	r := &EntityResolution{Candidates: []Candidate{
		{EntityID: "p-1", Score: 0.92},
		{EntityID: "p-2", Score: 0.81},
	}}
	assert.InDelta(t, 0.92, r.TopCandidateScore(), 1e-9)

	assert.Zero(t, (&EntityResolution{}).TopCandidateScore())
}
