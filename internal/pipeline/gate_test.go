package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pitchside/voicenotes/internal/model"
)

func ptrInt(v int) *int           { return &v }
func ptrFloat(v float64) *float64 { return &v }

func allPrefs() *model.AutoApplyPrefs {
	return &model.AutoApplyPrefs{Skills: true, Attendance: true, Goals: true, Performance: true}
}

func TestRequiresConfirmation(t *testing.T) {
	trusted := &model.CoachTrustLevel{CurrentLevel: 3, AutoApply: allPrefs()}

	tests := []struct {
		name       string
		topic      model.Topic
		confidence float64
		trust      *model.CoachTrustLevel
		want       bool
	}{
		{"sensitive injury always confirms", model.TopicInjury, 0.99, trusted, true},
		{"sensitive wellbeing always confirms", model.TopicWellbeing, 0.99, trusted, true},
		{"sensitive recovery always confirms", model.TopicRecovery, 0.99, trusted, true},
		{"no trust record confirms", model.TopicSkillRating, 0.99, nil, true},
		{"low earned level confirms", model.TopicSkillRating, 0.99,
			&model.CoachTrustLevel{CurrentLevel: 1, AutoApply: allPrefs()}, true},
		{"preference caps earned level", model.TopicSkillRating, 0.99,
			&model.CoachTrustLevel{CurrentLevel: 4, PreferredLevel: ptrInt(1), AutoApply: allPrefs()}, true},
		{"below default threshold confirms", model.TopicSkillRating, 0.8, trusted, true},
		{"coach threshold override respected", model.TopicSkillRating, 0.8,
			&model.CoachTrustLevel{CurrentLevel: 3, ConfidenceThreshold: ptrFloat(0.7), AutoApply: allPrefs()}, false},
		{"stricter override blocks", model.TopicSkillRating, 0.9,
			&model.CoachTrustLevel{CurrentLevel: 3, ConfidenceThreshold: ptrFloat(0.95), AutoApply: allPrefs()}, true},
		{"no opt-in prefs confirms", model.TopicSkillRating, 0.95,
			&model.CoachTrustLevel{CurrentLevel: 3}, true},
		{"topic outside groups confirms", model.TopicTactical, 0.95, trusted, true},
		{"skill rating clears gate", model.TopicSkillRating, 0.95, trusted, false},
		{"skill progress uses skills opt-in", model.TopicSkillProgress, 0.95,
			&model.CoachTrustLevel{CurrentLevel: 3, AutoApply: &model.AutoApplyPrefs{Skills: true}}, false},
		{"attendance needs attendance opt-in", model.TopicAttendance, 0.95,
			&model.CoachTrustLevel{CurrentLevel: 3, AutoApply: &model.AutoApplyPrefs{Skills: true}}, true},
		{"milestone uses goals opt-in", model.TopicDevelopmentMilestone, 0.95,
			&model.CoachTrustLevel{CurrentLevel: 3, AutoApply: &model.AutoApplyPrefs{Goals: true}}, false},
		{"performance uses performance opt-in", model.TopicPerformance, 0.95,
			&model.CoachTrustLevel{CurrentLevel: 3, AutoApply: &model.AutoApplyPrefs{Performance: true}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, requiresConfirmation(tt.topic, tt.confidence, tt.trust, 0.85))
		})
	}
}

func TestRequiresConfirmation_ConfiguredThreshold(t *testing.T) {
	trusted := &model.CoachTrustLevel{CurrentLevel: 3, AutoApply: allPrefs()}

	// 0.8 sits below the fallback bar but clears a lowered deployment bar.
	assert.True(t, requiresConfirmation(model.TopicSkillRating, 0.8, trusted, 0.85))
	assert.False(t, requiresConfirmation(model.TopicSkillRating, 0.8, trusted, 0.7))
	assert.True(t, requiresConfirmation(model.TopicSkillRating, 0.9, trusted, 0.95))

	// Unset config falls back to 0.85.
	assert.True(t, requiresConfirmation(model.TopicSkillRating, 0.8, trusted, 0))
	assert.False(t, requiresConfirmation(model.TopicSkillRating, 0.9, trusted, 0))

	// A coach's own threshold still beats the configured one.
	strict := &model.CoachTrustLevel{CurrentLevel: 3, ConfidenceThreshold: ptrFloat(0.95), AutoApply: allPrefs()}
	assert.True(t, requiresConfirmation(model.TopicSkillRating, 0.9, strict, 0.7))
}

// Sensitive topics confirm at every confidence and trust level, no matter
// how permissive the coach's preferences are.
func TestRequiresConfirmation_SensitiveTopicsNeverAutoApply(t *testing.T) {
	for _, topic := range []model.Topic{model.TopicInjury, model.TopicWellbeing, model.TopicRecovery} {
		for level := 0; level <= 5; level++ {
			trust := &model.CoachTrustLevel{
				CurrentLevel:        level,
				ConfidenceThreshold: ptrFloat(0.0),
				AutoApply:           allPrefs(),
			}
			for c := 0.0; c <= 1.0; c += 0.1 {
				assert.True(t, requiresConfirmation(topic, c, trust, 0.0),
					"%s auto-applied at confidence %.1f, trust level %d", topic, c, level)
			}
		}
	}
}

// Raising confidence can only make the gate more permissive, never less.
func TestRequiresConfirmation_MonotoneInConfidence(t *testing.T) {
	trusted := &model.CoachTrustLevel{CurrentLevel: 3, AutoApply: allPrefs()}
	prev := true
	for c := 0.0; c <= 1.0; c += 0.05 {
		got := requiresConfirmation(model.TopicSkillRating, c, trusted, 0.85)
		if !prev {
			assert.False(t, got, "gate re-tightened at confidence %.2f", c)
		}
		prev = got
	}
}

func TestConfidenceScores(t *testing.T) {
	now := time.Now().UTC()

	t.Run("user resolved is fully trusted", func(t *testing.T) {
		r := &model.EntityResolution{
			Status:     model.ResolutionUserResolved,
			Candidates: []model.Candidate{{Score: 0.6}},
			ResolvedAt: &now,
		}
		ai, res, overall := confidenceScores(0.9, r)
		assert.InDelta(t, 0.9, ai, 1e-9)
		assert.InDelta(t, 1.0, res, 1e-9)
		assert.InDelta(t, 0.9, overall, 1e-9)
	})

	t.Run("auto resolved inherits top candidate score", func(t *testing.T) {
		r := &model.EntityResolution{
			Status:     model.ResolutionAutoResolved,
			Candidates: []model.Candidate{{Score: 0.92}, {Score: 0.4}},
		}
		_, res, overall := confidenceScores(0.9, r)
		assert.InDelta(t, 0.92, res, 1e-9)
		assert.InDelta(t, 0.828, overall, 1e-9)
	})

	t.Run("auto resolved with no candidates trusts fully", func(t *testing.T) {
		r := &model.EntityResolution{Status: model.ResolutionAutoResolved}
		_, res, _ := confidenceScores(0.9, r)
		assert.InDelta(t, 1.0, res, 1e-9)
	})

	t.Run("extraction confidence clamped", func(t *testing.T) {
		ai, _, overall := confidenceScores(1.4, nil)
		assert.Equal(t, 1.0, ai)
		assert.Equal(t, 1.0, overall)

		ai, _, overall = confidenceScores(-0.2, nil)
		assert.Equal(t, 0.0, ai)
		assert.Equal(t, 0.0, overall)
	})
}
