// Package migrate replays historical flat-form voice notes into the
// artifact/transcript/claim shape. Replays are idempotent: a legacy note
// that already has a linked artifact is skipped, so the replayer can be
// re-invoked batch after batch until the backlog drains.
package migrate

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pitchside/voicenotes/internal/config"
	"github.com/pitchside/voicenotes/internal/model"
	"github.com/pitchside/voicenotes/internal/store"
)

const (
	defaultBatchSize = 50
	maxBatchSize     = 200

	// defaultConfidence is assigned to migrated claims when the config
	// carries no override. Historical data predates confidence scoring.
	defaultConfidence = 0.8
)

// Stats counts the outcomes of one replay invocation.
type Stats struct {
	Processed   int `json:"processed"`
	Artifacts   int `json:"artifacts"`
	Transcripts int `json:"transcripts"`
	Claims      int `json:"claims"`
	Errors      int `json:"errors"`
	Skipped     int `json:"skipped"`
}

// Options scope one replay invocation. A zero BatchSize falls back to the
// configured default; values outside [1, 200] are clamped.
type Options struct {
	OrganizationID string
	DryRun         bool
	BatchSize      int
}

// Replayer walks legacy notes and synthesizes pipeline records for each.
type Replayer struct {
	cfg   *config.Config
	store store.Store
}

// NewReplayer builds a Replayer over the given store.
func NewReplayer(cfg *config.Config, st store.Store) *Replayer {
	return &Replayer{cfg: cfg, store: st}
}

// Run migrates one batch of legacy notes and reports what it did. Each
// record is handled in isolation: a failure counts toward Errors and the
// batch continues. In dry-run mode nothing is written; only Processed and
// Skipped advance, since the created-record counters report actual writes.
func (r *Replayer) Run(ctx context.Context, opts Options) (*Stats, error) {
	batch := r.batchSize(opts.BatchSize)
	stats := &Stats{}

	zap.L().Info("migration batch starting",
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("batch_size", batch),
		zap.String("organization_id", opts.OrganizationID))

	offset := 0
	for stats.Processed < batch {
		notes, err := r.store.ListLegacyNotes(ctx, store.LegacyNoteFilter{
			Offset: offset,
			Limit:  batch - stats.Processed,
		})
		if err != nil {
			return stats, eris.Wrap(err, "migrate: list legacy notes")
		}
		if len(notes) == 0 {
			break
		}
		offset += len(notes)

		for i := range notes {
			if opts.OrganizationID != "" && notes[i].OrganizationID != opts.OrganizationID {
				continue
			}
			if stats.Processed >= batch {
				break
			}
			stats.Processed++

			if err := r.replayNote(ctx, &notes[i], opts.DryRun, stats); err != nil {
				stats.Errors++
				zap.L().Error("legacy note migration failed",
					zap.String("note_id", notes[i].ID),
					zap.Error(err))
			}
		}
	}

	zap.L().Info("migration batch complete",
		zap.Int("processed", stats.Processed),
		zap.Int("artifacts", stats.Artifacts),
		zap.Int("transcripts", stats.Transcripts),
		zap.Int("claims", stats.Claims),
		zap.Int("errors", stats.Errors),
		zap.Int("skipped", stats.Skipped))

	return stats, nil
}

// replayNote migrates a single legacy note. Skips are counted, never
// partially written: the idempotency and coach checks run before any write.
func (r *Replayer) replayNote(ctx context.Context, note *model.LegacyNote, dryRun bool, stats *Stats) error {
	existing, err := r.store.GetArtifactBySourceNote(ctx, note.ID)
	if err != nil {
		return eris.Wrap(err, "migrate: lookup existing artifact")
	}
	if existing != nil {
		stats.Skipped++
		return nil
	}

	if note.CoachUserID == "" {
		zap.L().Warn("legacy note has no coach, skipping",
			zap.String("note_id", note.ID))
		stats.Skipped++
		return nil
	}

	if dryRun {
		return nil
	}

	artifact := &model.Artifact{
		SourceChannel: mapSourceChannel(note.Source),
		SenderUserID:  note.CoachUserID,
		Status:        model.ArtifactCompleted,
		SourceNoteID:  note.ID,
		CreatedAt:     note.CreatedAt,
	}
	if note.OrganizationID != "" {
		artifact.OrgCandidates = []model.OrgCandidate{
			{OrganizationID: note.OrganizationID, Confidence: 1.0},
		}
	}
	if err := r.store.CreateArtifact(ctx, artifact); err != nil {
		return eris.Wrap(err, "migrate: create artifact")
	}
	stats.Artifacts++

	if note.Transcription != "" {
		transcript := &model.Transcript{
			ArtifactID: artifact.ID,
			FullText:   note.Transcription,
			ModelUsed:  "migration",
			Language:   "en",
		}
		if err := r.store.CreateTranscript(ctx, transcript); err != nil {
			return eris.Wrap(err, "migrate: create transcript")
		}
		stats.Transcripts++
	}

	if len(note.Insights) > 0 {
		claims := r.buildClaims(note, artifact.ID)
		if err := r.store.CreateClaims(ctx, claims); err != nil {
			return eris.Wrap(err, "migrate: create claims")
		}
		stats.Claims += len(claims)
	}

	return nil
}

func (r *Replayer) buildClaims(note *model.LegacyNote, artifactID string) []model.Claim {
	confidence := defaultConfidence
	if r.cfg.Migrate.DefaultConfidence > 0 {
		confidence = r.cfg.Migrate.DefaultConfidence
	}

	claims := make([]model.Claim, 0, len(note.Insights))
	for i, ins := range note.Insights {
		title := ins.Title
		if title == "" {
			title = ins.Category
			if title == "" {
				title = "Note"
			}
		}
		c := model.Claim{
			ArtifactID:           artifactID,
			Sequence:             i + 1,
			SourceText:           ins.Description,
			Topic:                mapInsightTopic(ins.Category),
			Title:                title,
			Description:          ins.Description,
			EntityMentions:       []model.EntityMention{},
			ExtractionConfidence: confidence,
			Status:               model.ClaimExtracted,
			OrganizationID:       note.OrganizationID,
			CoachUserID:          note.CoachUserID,
			ResolvedPlayerID:     ins.PlayerID,
			ResolvedPlayerName:   ins.PlayerName,
		}
		claims = append(claims, c)
	}
	return claims
}

func (r *Replayer) batchSize(requested int) int {
	size := requested
	if size == 0 {
		size = r.cfg.Migrate.BatchSize
	}
	if size <= 0 {
		size = defaultBatchSize
	}
	if size > maxBatchSize {
		size = maxBatchSize
	}
	return size
}

// mapSourceChannel translates a legacy source tag to a source channel.
// Unknown tags fall back to chat_audio, the dominant historical source.
func mapSourceChannel(source string) model.SourceChannel {
	switch source {
	case "chat", "chat_audio", "whatsapp", "whatsapp_audio":
		return model.SourceChatAudio
	case "chat_text", "whatsapp_text":
		return model.SourceChatText
	case "app", "app_recorded", "recorded":
		return model.SourceAppRecorded
	case "typed", "app_typed":
		return model.SourceAppTyped
	default:
		return model.SourceChatAudio
	}
}

// mapInsightTopic translates a legacy insight category to a claim topic.
// Unknown categories fall back to performance.
func mapInsightTopic(category string) model.Topic {
	switch category {
	case "injury":
		return model.TopicInjury
	case "skill_rating", "skills":
		return model.TopicSkillRating
	case "skill_progress":
		return model.TopicSkillProgress
	case "behavior", "behaviour":
		return model.TopicBehavior
	case "performance":
		return model.TopicPerformance
	case "attendance":
		return model.TopicAttendance
	case "wellbeing", "mental_health":
		return model.TopicWellbeing
	case "recovery":
		return model.TopicRecovery
	case "development_milestone", "milestone":
		return model.TopicDevelopmentMilestone
	case "physical_development", "physical":
		return model.TopicPhysicalDevelopment
	case "parent_communication", "parent":
		return model.TopicParentCommunication
	case "tactical":
		return model.TopicTactical
	case "team_culture", "team":
		return model.TopicTeamCulture
	case "todo", "action_item":
		return model.TopicTodo
	case "session_plan", "training":
		return model.TopicSessionPlan
	default:
		return model.TopicPerformance
	}
}
