package model

import "time"

// EntityType classifies a resolvable directory entity.
type EntityType string

const (
	EntityPlayer EntityType = "player"
	EntityTeam   EntityType = "team"
	EntityCoach  EntityType = "coach"
)

// ResolutionStatus tracks one entity mention through disambiguation.
type ResolutionStatus string

const (
	ResolutionAutoResolved        ResolutionStatus = "auto_resolved"
	ResolutionNeedsDisambiguation ResolutionStatus = "needs_disambiguation"
	ResolutionUserResolved        ResolutionStatus = "user_resolved"
	ResolutionUnresolved          ResolutionStatus = "unresolved"
)

// Candidate is one ranked match for an entity mention.
type Candidate struct {
	EntityType  EntityType `json:"entity_type"`
	EntityID    string     `json:"entity_id"`
	EntityName  string     `json:"entity_name"`
	Score       float64    `json:"score"`
	MatchReason string     `json:"match_reason"`
}

// EntityResolution is one resolution record per entity mention inside a
// claim. Invariant: once Status is auto_resolved or user_resolved, the
// ResolvedEntityID/Name fields are set.
type EntityResolution struct {
	ID           string           `json:"id"`
	ClaimID      string           `json:"claim_id"`
	ArtifactID   string           `json:"artifact_id"`
	MentionIndex int              `json:"mention_index"`
	MentionType  MentionType      `json:"mention_type"`
	RawText      string           `json:"raw_text"`
	Candidates   []Candidate      `json:"candidates"`
	Status       ResolutionStatus `json:"status"`

	ResolvedEntityID   string     `json:"resolved_entity_id,omitempty"`
	ResolvedEntityName string     `json:"resolved_entity_name,omitempty"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`

	OrganizationID string    `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// TopCandidateScore returns the score of the first candidate, or 0 when the
// record carries no candidates.
func (r *EntityResolution) TopCandidateScore() float64 {
	if len(r.Candidates) == 0 {
		return 0
	}
	return r.Candidates[0].Score
}

// CoachPlayerAlias is a learned mapping from a coach's habitual raw-text
// reference (a nickname, a misheard spelling) to a resolved entity, keyed by
// (coach, organization, normalized raw text). UseCount is advisory; a lost
// increment under concurrent upserts is accepted.
type CoachPlayerAlias struct {
	CoachUserID        string    `json:"coach_user_id"`
	OrganizationID     string    `json:"organization_id"`
	RawText            string    `json:"raw_text"`
	ResolvedEntityID   string    `json:"resolved_entity_id"`
	ResolvedEntityName string    `json:"resolved_entity_name"`
	UseCount           int       `json:"use_count"`
	LastUsedAt         time.Time `json:"last_used_at"`
	CreatedAt          time.Time `json:"created_at"`
}

// ReviewEventType labels a human review analytics event.
type ReviewEventType string

const (
	ReviewDisambiguateAccept    ReviewEventType = "disambiguate_accept"
	ReviewDisambiguateRejectAll ReviewEventType = "disambiguate_reject_all"
	ReviewDisambiguateSkip      ReviewEventType = "disambiguate_skip"
	ReviewDraftConfirm          ReviewEventType = "draft_confirm"
	ReviewDraftReject           ReviewEventType = "draft_reject"
)

// ReviewEvent records one human review action for later analysis of how
// often coaches accept, reject, or skip what the pipeline proposed.
type ReviewEvent struct {
	ID              string          `json:"id"`
	CoachUserID     string          `json:"coach_user_id"`
	OrganizationID  string          `json:"organization_id"`
	EventType       ReviewEventType `json:"event_type"`
	ConfidenceScore float64         `json:"confidence_score"`
	Category        string          `json:"category"`
	CreatedAt       time.Time       `json:"created_at"`
}
