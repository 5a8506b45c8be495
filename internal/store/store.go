package store

import (
	"context"
	"time"

	"github.com/pitchside/voicenotes/internal/model"
)

// DisambiguationFilter specifies criteria for listing open disambiguations.
// CoachUserID, when set, restricts the list to resolutions on artifacts the
// coach sent, matched in the query itself so the limit applies after the
// ownership cut.
type DisambiguationFilter struct {
	OrganizationID string `json:"organization_id"`
	CoachUserID    string `json:"coach_user_id,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

// PendingDraftTTL bounds how far back the pending-drafts review surface
// reaches; older drafts are considered expired and left out.
const PendingDraftTTL = 7 * 24 * time.Hour

// LegacyNoteFilter pages through legacy notes for the migration replayer.
type LegacyNoteFilter struct {
	Offset int `json:"offset,omitempty"`
	Limit  int `json:"limit,omitempty"`
}

// Store defines the persistence interface for the voice note pipeline.
// Operations are atomic per document; cross-document consistency is the
// pipeline's job, via statuses and idempotent retries.
type Store interface {
	// Artifacts
	CreateArtifact(ctx context.Context, a *model.Artifact) error
	GetArtifact(ctx context.Context, id string) (*model.Artifact, error)
	GetArtifactBySourceNote(ctx context.Context, sourceNoteID string) (*model.Artifact, error)
	UpdateArtifactStatus(ctx context.Context, id string, status model.ArtifactStatus) error

	// Transcripts
	CreateTranscript(ctx context.Context, t *model.Transcript) error
	GetTranscript(ctx context.Context, artifactID string) (*model.Transcript, error)

	// Claims
	CreateClaims(ctx context.Context, claims []model.Claim) error
	GetClaim(ctx context.Context, id string) (*model.Claim, error)
	ListClaimsByArtifact(ctx context.Context, artifactID string) ([]model.Claim, error)
	UpdateClaim(ctx context.Context, c *model.Claim) error

	// Entity resolutions
	CreateResolutions(ctx context.Context, rs []model.EntityResolution) error
	GetResolution(ctx context.Context, id string) (*model.EntityResolution, error)
	ListResolutionsByArtifact(ctx context.Context, artifactID string) ([]model.EntityResolution, error)
	UpdateResolution(ctx context.Context, r *model.EntityResolution) error
	ListDisambiguations(ctx context.Context, filter DisambiguationFilter) ([]model.EntityResolution, error)

	// Insight drafts
	CreateDrafts(ctx context.Context, ds []model.InsightDraft) error
	GetDraft(ctx context.Context, id string) (*model.InsightDraft, error)
	ListDraftsByArtifact(ctx context.Context, artifactID string) ([]model.InsightDraft, error)
	ListPendingDrafts(ctx context.Context, orgID, coachUserID string) ([]model.InsightDraft, error)
	UpdateDraft(ctx context.Context, d *model.InsightDraft) error

	// Coach trust levels (read-mostly; written by the trust subsystem)
	GetTrustLevel(ctx context.Context, coachUserID string) (*model.CoachTrustLevel, error)
	SaveTrustLevel(ctx context.Context, t *model.CoachTrustLevel) error

	// Learned aliases
	GetAlias(ctx context.Context, coachUserID, orgID, rawText string) (*model.CoachPlayerAlias, error)
	UpsertAlias(ctx context.Context, a *model.CoachPlayerAlias) error

	// Review analytics
	CreateReviewEvent(ctx context.Context, e *model.ReviewEvent) error

	// Legacy notes (migration input)
	ListLegacyNotes(ctx context.Context, filter LegacyNoteFilter) ([]model.LegacyNote, error)
	CountLegacyNotes(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
