package pipeline

import "github.com/pitchside/voicenotes/internal/model"

const fallbackConfirmThreshold = 0.85

// requiresConfirmation is the auto-confirm gate. The rules run in order and
// the first hit wins: sensitive topics always confirm, then low trust, then
// low confidence, then a missing per-group opt-in. Only a draft that clears
// all four auto-confirms. defaultThreshold is the deployment-wide confidence
// bar; a coach's own ConfidenceThreshold overrides it.
func requiresConfirmation(topic model.Topic, overallConfidence float64, trust *model.CoachTrustLevel, defaultThreshold float64) bool {
	if topic.Sensitive() {
		return true
	}

	// No trust record means no earned automation.
	if trust == nil {
		return true
	}
	if trust.EffectiveLevel() < 2 {
		return true
	}

	threshold := defaultThreshold
	if threshold <= 0 {
		threshold = fallbackConfirmThreshold
	}
	if trust.ConfidenceThreshold != nil {
		threshold = *trust.ConfidenceThreshold
	}
	if overallConfidence < threshold {
		return true
	}

	return !autoApplyAllowed(topic, trust.AutoApply)
}

// autoApplyAllowed checks the coach's per-group opt-in for the topic. Topics
// outside the four groups never auto-apply.
func autoApplyAllowed(topic model.Topic, prefs *model.AutoApplyPrefs) bool {
	if prefs == nil {
		return false
	}
	switch topic {
	case model.TopicSkillRating, model.TopicSkillProgress:
		return prefs.Skills
	case model.TopicAttendance:
		return prefs.Attendance
	case model.TopicDevelopmentMilestone:
		return prefs.Goals
	case model.TopicPerformance:
		return prefs.Performance
	default:
		return false
	}
}

// confidenceScores derives the three draft confidences from a claim's
// extraction confidence and its player resolution. A user-resolved player is
// fully trusted; an auto-resolved one inherits its top candidate's score.
func confidenceScores(extractionConfidence float64, playerResolution *model.EntityResolution) (ai, resolution, overall float64) {
	ai = clamp01(extractionConfidence)

	resolution = 1.0
	if playerResolution != nil && playerResolution.Status == model.ResolutionAutoResolved {
		if len(playerResolution.Candidates) > 0 {
			resolution = playerResolution.TopCandidateScore()
		}
	}

	overall = clamp01(ai * resolution)
	return ai, resolution, overall
}
