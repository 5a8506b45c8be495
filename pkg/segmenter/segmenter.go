// Package segmenter calls the LLM segmentation service that turns a voice
// note transcript into atomic claim candidates. Responses are strictly
// validated before use; a response that fails validation is a hard error,
// never coerced.
package segmenter

import "context"

// Client defines the segmentation operation used by the pipeline.
type Client interface {
	Segment(ctx context.Context, req Request) (*Result, error)
}

// Request carries the transcript plus the coach context snapshot serialized
// for prompt embedding.
type Request struct {
	Transcript  string
	RosterJSON  string
	TeamsJSON   string
	CoachesJSON string
}

// Mention is one raw entity reference inside a claim candidate.
type Mention struct {
	MentionType string `json:"mentionType"`
	RawText     string `json:"rawText"`
	Position    int    `json:"position"`
}

// ClaimCandidate is one atomic observation proposed by the segmentation
// service. Optional string fields are empty when the service returned null.
type ClaimCandidate struct {
	SourceText        string    `json:"sourceText"`
	Topic             string    `json:"topic"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	RecommendedAction string    `json:"recommendedAction,omitempty"`
	TimeReference     string    `json:"timeReference,omitempty"`
	EntityMentions    []Mention `json:"entityMentions"`
	Severity          string    `json:"severity,omitempty"`
	Sentiment         string    `json:"sentiment,omitempty"`
	SkillName         string    `json:"skillName,omitempty"`
	SkillRating       int       `json:"skillRating,omitempty"`

	ExtractionConfidence float64 `json:"extractionConfidence"`

	// Inline matches the service proposed from the embedded roster JSON.
	// Ids are advisory: the extractor trusts them only when they exist in
	// the snapshot.
	PlayerID       string `json:"playerId,omitempty"`
	PlayerName     string `json:"playerName,omitempty"`
	TeamID         string `json:"teamId,omitempty"`
	TeamName       string `json:"teamName,omitempty"`
	AssigneeUserID string `json:"assigneeUserId,omitempty"`
	AssigneeName   string `json:"assigneeName,omitempty"`
}

// Result is the validated segmentation output.
type Result struct {
	Summary string           `json:"summary"`
	Claims  []ClaimCandidate `json:"claims"`
}
