package model

import "time"

// Topic categorizes an extracted claim. The set is closed: the segmentation
// prompt enumerates exactly these fifteen values and the response validator
// rejects anything else.
type Topic string

const (
	TopicInjury               Topic = "injury"
	TopicSkillRating          Topic = "skill_rating"
	TopicSkillProgress        Topic = "skill_progress"
	TopicBehavior             Topic = "behavior"
	TopicPerformance          Topic = "performance"
	TopicAttendance           Topic = "attendance"
	TopicWellbeing            Topic = "wellbeing"
	TopicRecovery             Topic = "recovery"
	TopicDevelopmentMilestone Topic = "development_milestone"
	TopicPhysicalDevelopment  Topic = "physical_development"
	TopicParentCommunication  Topic = "parent_communication"
	TopicTactical             Topic = "tactical"
	TopicTeamCulture          Topic = "team_culture"
	TopicTodo                 Topic = "todo"
	TopicSessionPlan          Topic = "session_plan"
)

// Topics lists every claim topic in a stable order.
var Topics = []Topic{
	TopicInjury, TopicSkillRating, TopicSkillProgress, TopicBehavior,
	TopicPerformance, TopicAttendance, TopicWellbeing, TopicRecovery,
	TopicDevelopmentMilestone, TopicPhysicalDevelopment,
	TopicParentCommunication, TopicTactical, TopicTeamCulture,
	TopicTodo, TopicSessionPlan,
}

// Valid reports whether t is one of the fifteen claim topics.
func (t Topic) Valid() bool {
	for _, known := range Topics {
		if t == known {
			return true
		}
	}
	return false
}

// Sensitive reports whether claims of this topic may never be auto-applied.
// Injury, wellbeing and recovery always require human confirmation.
func (t Topic) Sensitive() bool {
	return t == TopicInjury || t == TopicWellbeing || t == TopicRecovery
}

// Severity grades injury/wellbeing claims.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Sentiment captures the emotional tone of a claim.
type Sentiment string

const (
	SentimentPositive  Sentiment = "positive"
	SentimentNeutral   Sentiment = "neutral"
	SentimentNegative  Sentiment = "negative"
	SentimentConcerned Sentiment = "concerned"
)

// MentionType classifies a raw entity mention inside a claim.
type MentionType string

const (
	MentionPlayerName     MentionType = "player_name"
	MentionTeamName       MentionType = "team_name"
	MentionGroupReference MentionType = "group_reference"
	MentionCoachName      MentionType = "coach_name"
)

// EntityMention is one raw entity reference inside a claim's source text.
type EntityMention struct {
	MentionType MentionType `json:"mention_type"`
	RawText     string      `json:"raw_text"`
	Position    int         `json:"position"`
}

// ClaimStatus tracks a claim through entity resolution.
type ClaimStatus string

const (
	ClaimExtracted           ClaimStatus = "extracted"
	ClaimResolved            ClaimStatus = "resolved"
	ClaimNeedsDisambiguation ClaimStatus = "needs_disambiguation"
)

// Claim is one atomic observation about one entity, extracted from a
// transcript. A claim never spans two entities: "X and Y played well" is two
// claims. Resolved-entity fields stay empty until resolution settles them.
type Claim struct {
	ID         string `json:"id"`
	ArtifactID string `json:"artifact_id"`

	// Sequence is the claim's 1-based position within its artifact, in the
	// order the extractor produced them. Draft display order follows it.
	Sequence int `json:"sequence"`

	SourceText  string `json:"source_text"`
	Topic       Topic  `json:"topic"`
	Title       string `json:"title"`
	Description string `json:"description"`

	RecommendedAction string `json:"recommended_action,omitempty"`
	TimeReference     string `json:"time_reference,omitempty"`

	EntityMentions []EntityMention `json:"entity_mentions"`

	ResolvedPlayerID   string `json:"resolved_player_id,omitempty"`
	ResolvedPlayerName string `json:"resolved_player_name,omitempty"`
	ResolvedTeamID     string `json:"resolved_team_id,omitempty"`
	ResolvedTeamName   string `json:"resolved_team_name,omitempty"`
	ResolvedAssigneeID string `json:"resolved_assignee_id,omitempty"`
	ResolvedAssignee   string `json:"resolved_assignee_name,omitempty"`

	Severity    Severity  `json:"severity,omitempty"`
	Sentiment   Sentiment `json:"sentiment,omitempty"`
	SkillName   string    `json:"skill_name,omitempty"`
	SkillRating int       `json:"skill_rating,omitempty"` // 1-5, 0 = unset

	ExtractionConfidence float64     `json:"extraction_confidence"`
	Status               ClaimStatus `json:"status"`

	OrganizationID string    `json:"organization_id"`
	CoachUserID    string    `json:"coach_user_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
