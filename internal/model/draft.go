package model

import "time"

// DraftStatus tracks an insight draft from creation to application.
type DraftStatus string

const (
	DraftPending   DraftStatus = "pending"
	DraftConfirmed DraftStatus = "confirmed"
	DraftApplied   DraftStatus = "applied"
	DraftRejected  DraftStatus = "rejected"
)

// Evidence is the transcript snippet backing a draft.
type Evidence struct {
	TranscriptSnippet string   `json:"transcript_snippet"`
	TimestampStart    *float64 `json:"timestamp_start,omitempty"`
}

// InsightDraft pairs a claim with confidence scores and the auto-confirm gate
// decision. Drafts are immutable once applied except for Status/AppliedAt.
type InsightDraft struct {
	ID         string `json:"id"`
	ArtifactID string `json:"artifact_id"`
	ClaimID    string `json:"claim_id"`

	PlayerID           string `json:"player_id"`
	ResolvedPlayerName string `json:"resolved_player_name,omitempty"`

	InsightType Topic    `json:"insight_type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Evidence    Evidence `json:"evidence"`

	// DisplayOrder is 1-indexed and stable per artifact; reviewers rely on
	// the numbering not shifting between fetches.
	DisplayOrder int `json:"display_order"`

	AIConfidence         float64 `json:"ai_confidence"`
	ResolutionConfidence float64 `json:"resolution_confidence"`
	OverallConfidence    float64 `json:"overall_confidence"`

	RequiresConfirmation bool        `json:"requires_confirmation"`
	Status               DraftStatus `json:"status"`

	OrganizationID string `json:"organization_id"`
	CoachUserID    string `json:"coach_user_id"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	AppliedAt   *time.Time `json:"applied_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AutoApplyPrefs are a coach's per-topic-group opt-ins for automatic
// application of confirmed drafts.
type AutoApplyPrefs struct {
	Skills      bool `json:"skills"`
	Attendance  bool `json:"attendance"`
	Goals       bool `json:"goals"`
	Performance bool `json:"performance"`
}

// CoachTrustLevel is per-coach automation configuration. It is read-only
// input to the auto-confirm gate; a separate trust-management subsystem
// mutates it.
type CoachTrustLevel struct {
	CoachUserID string `json:"coach_user_id"`
	// CurrentLevel is the earned trust level, 0-5.
	CurrentLevel int `json:"current_level"`
	// PreferredLevel optionally caps automation below the earned level.
	PreferredLevel *int `json:"preferred_level,omitempty"`
	// ConfidenceThreshold overrides the default gate threshold when set.
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`
	// AutoApply holds the per-group opt-ins; nil means nothing opted in.
	AutoApply *AutoApplyPrefs `json:"auto_apply,omitempty"`
}

// EffectiveLevel returns min(CurrentLevel, PreferredLevel), treating an
// unset preference as a ceiling of 3.
func (t *CoachTrustLevel) EffectiveLevel() int {
	preferred := 3
	if t.PreferredLevel != nil {
		preferred = *t.PreferredLevel
	}
	if t.CurrentLevel < preferred {
		return t.CurrentLevel
	}
	return preferred
}

// AppliedInsight is the record shape written to the external player record
// store when a confirmed draft is applied.
type AppliedInsight struct {
	InsightID         string  `json:"insight_id"`
	PlayerID          string  `json:"player_id"`
	PlayerName        string  `json:"player_name,omitempty"`
	Category          Topic   `json:"category"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	RecommendedUpdate string  `json:"recommended_update,omitempty"`
	TeamID            string  `json:"team_id,omitempty"`
	TeamName          string  `json:"team_name,omitempty"`
	AssigneeUserID    string  `json:"assignee_user_id,omitempty"`
	AssigneeName      string  `json:"assignee_name,omitempty"`
	ConfidenceScore   float64 `json:"confidence_score"`
	WouldAutoApply    bool    `json:"would_auto_apply"`
	OrganizationID    string  `json:"organization_id"`
	CoachUserID       string  `json:"coach_user_id"`
}
