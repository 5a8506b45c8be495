package model

import "time"

// SourceChannel identifies how a voice note entered the system.
type SourceChannel string

const (
	SourceChatAudio   SourceChannel = "chat_audio"
	SourceChatText    SourceChannel = "chat_text"
	SourceAppRecorded SourceChannel = "app_recorded"
	SourceAppTyped    SourceChannel = "app_typed"
)

// Valid reports whether c is one of the known source channels.
func (c SourceChannel) Valid() bool {
	switch c {
	case SourceChatAudio, SourceChatText, SourceAppRecorded, SourceAppTyped:
		return true
	}
	return false
}

// ArtifactStatus represents the processing lifecycle of a voice note artifact.
// Transitions are strictly forward; "failed" is terminal. A stage that finds
// the artifact outside its expected pre-state must no-op rather than
// reprocess — statuses double as a coarse lock across retries.
type ArtifactStatus string

const (
	ArtifactReceived    ArtifactStatus = "received"
	ArtifactTranscribed ArtifactStatus = "transcribed"
	ArtifactProcessing  ArtifactStatus = "processing"
	ArtifactCompleted   ArtifactStatus = "completed"
	ArtifactFailed      ArtifactStatus = "failed"
)

// OrgCandidate is one candidate organization for an artifact, ranked by
// confidence. A coach may belong to several organizations; ingestion records
// every plausible one and downstream stages use the highest-confidence entry.
type OrgCandidate struct {
	OrganizationID string  `json:"organization_id"`
	Confidence     float64 `json:"confidence"`
}

// Artifact is one submitted voice note and its processing lifecycle record.
// Artifacts are never deleted; they are the audit trail for everything the
// pipeline derived from a note.
type Artifact struct {
	ID            string         `json:"id"`
	SourceChannel SourceChannel  `json:"source_channel"`
	SenderUserID  string         `json:"sender_user_id"`
	OrgCandidates []OrgCandidate `json:"org_candidates"`
	Status        ArtifactStatus `json:"status"`
	// SourceNoteID links a migrated artifact back to the legacy note it was
	// synthesized from. Empty for artifacts created by live ingestion.
	SourceNoteID string    `json:"source_note_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PrimaryOrg returns the highest-confidence organization candidate, or ""
// when the artifact has no organization context.
func (a *Artifact) PrimaryOrg() string {
	best := ""
	bestScore := -1.0
	for _, c := range a.OrgCandidates {
		if c.Confidence > bestScore {
			best = c.OrganizationID
			bestScore = c.Confidence
		}
	}
	return best
}

// TranscriptSegment is one time-aligned span of a transcript.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript holds the full text for one artifact. One-to-one with Artifact
// and immutable once written.
type Transcript struct {
	ID         string              `json:"id"`
	ArtifactID string              `json:"artifact_id"`
	FullText   string              `json:"full_text"`
	Segments   []TranscriptSegment `json:"segments,omitempty"`
	ModelUsed  string              `json:"model_used,omitempty"`
	Language   string              `json:"language,omitempty"`
	Duration   float64             `json:"duration,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}
