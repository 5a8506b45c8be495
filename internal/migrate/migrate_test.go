package migrate

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pitchside/voicenotes/internal/config"
	"github.com/pitchside/voicenotes/internal/model"
	"github.com/pitchside/voicenotes/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testReplayer(t *testing.T) (*Replayer, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	cfg := &config.Config{}
	cfg.Migrate.BatchSize = 50
	cfg.Migrate.DefaultConfidence = 0.8
	return NewReplayer(cfg, st), st
}

func legacyNote(id string) *model.LegacyNote {
	return &model.LegacyNote{
		ID:             id,
		CoachUserID:    "coach-1",
		OrganizationID: "org-1",
		Source:         "whatsapp",
		Transcription:  "Sarah's hurling has come on well this month.",
		Insights: []model.LegacyInsight{
			{
				Title:       "Hurling progress",
				Description: "Striking off both sides improving",
				Category:    "skills",
				PlayerName:  "Sarah Kelly",
			},
		},
		CreatedAt: time.Now().UTC().Add(-24 * time.Hour),
	}
}

func TestRun_MigratesNoteWithTranscriptAndClaims(t *testing.T) {
	r, st := testReplayer(t)
	ctx := context.Background()
	require.NoError(t, st.SeedLegacyNote(ctx, legacyNote("vn-1")))

	stats, err := r.Run(ctx, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Artifacts)
	assert.Equal(t, 1, stats.Transcripts)
	assert.Equal(t, 1, stats.Claims)
	assert.Zero(t, stats.Errors)
	assert.Zero(t, stats.Skipped)

	artifact, err := st.GetArtifactBySourceNote(ctx, "vn-1")
	require.NoError(t, err)
	require.NotNil(t, artifact)
	assert.Equal(t, model.ArtifactCompleted, artifact.Status)
	assert.Equal(t, model.SourceChatAudio, artifact.SourceChannel)
	assert.Equal(t, "coach-1", artifact.SenderUserID)
	assert.Equal(t, "org-1", artifact.PrimaryOrg())

	transcript, err := st.GetTranscript(ctx, artifact.ID)
	require.NoError(t, err)
	require.NotNil(t, transcript)
	assert.Equal(t, "Sarah's hurling has come on well this month.", transcript.FullText)
	assert.Equal(t, "migration", transcript.ModelUsed)

	claims, err := st.ListClaimsByArtifact(ctx, artifact.ID)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, model.TopicSkillRating, claims[0].Topic)
	assert.Equal(t, "Hurling progress", claims[0].Title)
	assert.Equal(t, "Sarah Kelly", claims[0].ResolvedPlayerName)
	assert.Equal(t, model.ClaimExtracted, claims[0].Status)
	assert.InDelta(t, 0.8, claims[0].ExtractionConfidence, 1e-9)
}

func TestRun_IsIdempotent(t *testing.T) {
	r, st := testReplayer(t)
	ctx := context.Background()
	require.NoError(t, st.SeedLegacyNote(ctx, legacyNote("vn-1")))

	first, err := r.Run(ctx, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, first.Artifacts)

	second, err := r.Run(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Processed)
	assert.Equal(t, 1, second.Skipped)
	assert.Zero(t, second.Artifacts)
	assert.Zero(t, second.Claims)
}

func TestRun_DryRunNeverWrites(t *testing.T) {
	r, st := testReplayer(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, st.SeedLegacyNote(ctx, legacyNote(fmt.Sprintf("vn-%d", i))))
	}

	// Migrate three for real so the dry run has something to skip.
	pre, err := r.Run(ctx, Options{BatchSize: 3})
	require.NoError(t, err)
	require.Equal(t, 3, pre.Artifacts)

	stats, err := r.Run(ctx, Options{DryRun: true, BatchSize: 10})
	require.NoError(t, err)

	assert.Equal(t, 10, stats.Processed)
	assert.Equal(t, 3, stats.Skipped)
	assert.Zero(t, stats.Artifacts)
	assert.Zero(t, stats.Transcripts)
	assert.Zero(t, stats.Claims)
	assert.Zero(t, stats.Errors)

	// Only the three real migrations left artifacts behind.
	for i := 3; i < 10; i++ {
		a, err := st.GetArtifactBySourceNote(ctx, fmt.Sprintf("vn-%d", i))
		require.NoError(t, err)
		assert.Nil(t, a)
	}
}

func TestRun_SkipsNoteWithoutCoach(t *testing.T) {
	r, st := testReplayer(t)
	ctx := context.Background()

	orphan := legacyNote("vn-orphan")
	orphan.CoachUserID = ""
	require.NoError(t, st.SeedLegacyNote(ctx, orphan))

	stats, err := r.Run(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Zero(t, stats.Artifacts)

	a, err := st.GetArtifactBySourceNote(ctx, "vn-orphan")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestRun_EmptyNoteStillCompletes(t *testing.T) {
	r, st := testReplayer(t)
	ctx := context.Background()

	bare := legacyNote("vn-bare")
	bare.Transcription = ""
	bare.Insights = nil
	require.NoError(t, st.SeedLegacyNote(ctx, bare))

	stats, err := r.Run(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Artifacts)
	assert.Zero(t, stats.Transcripts)
	assert.Zero(t, stats.Claims)

	a, err := st.GetArtifactBySourceNote(ctx, "vn-bare")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, model.ArtifactCompleted, a.Status)
}

func TestRun_HonorsOrgScope(t *testing.T) {
	r, st := testReplayer(t)
	ctx := context.Background()

	mine := legacyNote("vn-mine")
	theirs := legacyNote("vn-theirs")
	theirs.OrganizationID = "org-2"
	require.NoError(t, st.SeedLegacyNote(ctx, mine))
	require.NoError(t, st.SeedLegacyNote(ctx, theirs))

	stats, err := r.Run(ctx, Options{OrganizationID: "org-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Artifacts)

	a, err := st.GetArtifactBySourceNote(ctx, "vn-theirs")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestRun_RespectsBatchBound(t *testing.T) {
	r, st := testReplayer(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, st.SeedLegacyNote(ctx, legacyNote(fmt.Sprintf("vn-%d", i))))
	}

	stats, err := r.Run(ctx, Options{BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 2, stats.Artifacts)

	// The caller re-invokes for the remainder.
	stats, err = r.Run(ctx, Options{BatchSize: 200})
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Processed)
	assert.Equal(t, 3, stats.Artifacts)
	assert.Equal(t, 2, stats.Skipped)
}

func TestBatchSizeClamping(t *testing.T) {
	r, _ := testReplayer(t)
	assert.Equal(t, 50, r.batchSize(0))
	assert.Equal(t, 1, r.batchSize(1))
	assert.Equal(t, 200, r.batchSize(500))
	assert.Equal(t, 50, r.batchSize(-3))
}

func TestMapSourceChannel(t *testing.T) {
	assert.Equal(t, model.SourceChatAudio, mapSourceChannel("whatsapp"))
	assert.Equal(t, model.SourceChatText, mapSourceChannel("chat_text"))
	assert.Equal(t, model.SourceAppRecorded, mapSourceChannel("recorded"))
	assert.Equal(t, model.SourceAppTyped, mapSourceChannel("typed"))
	assert.Equal(t, model.SourceChatAudio, mapSourceChannel("fax"))
	assert.Equal(t, model.SourceChatAudio, mapSourceChannel(""))
}

func TestMapInsightTopic(t *testing.T) {
	assert.Equal(t, model.TopicSkillRating, mapInsightTopic("skills"))
	assert.Equal(t, model.TopicBehavior, mapInsightTopic("behaviour"))
	assert.Equal(t, model.TopicWellbeing, mapInsightTopic("mental_health"))
	assert.Equal(t, model.TopicTodo, mapInsightTopic("action_item"))
	assert.Equal(t, model.TopicSessionPlan, mapInsightTopic("training"))
	assert.Equal(t, model.TopicPerformance, mapInsightTopic("vibes"))
	assert.Equal(t, model.TopicPerformance, mapInsightTopic(""))
}
