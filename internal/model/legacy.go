package model

import "time"

// LegacyInsight is one pre-pipeline insight attached to a legacy note.
// Historical data predates confidence scoring and entity mentions.
type LegacyInsight struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	PlayerID    string `json:"player_id,omitempty"`
	PlayerName  string `json:"player_name,omitempty"`
}

// LegacyNote is a historical flat-form voice note record, the input to the
// migration replayer. Source and Insights use the legacy free-form tags and
// categories; the replayer maps them through explicit enumeration tables.
type LegacyNote struct {
	ID             string          `json:"id"`
	CoachUserID    string          `json:"coach_user_id,omitempty"`
	OrganizationID string          `json:"organization_id,omitempty"`
	Source         string          `json:"source,omitempty"`
	Transcription  string          `json:"transcription,omitempty"`
	Insights       []LegacyInsight `json:"insights,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
