package platform

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchside/voicenotes/internal/model"
	pf "github.com/pitchside/voicenotes/pkg/platform"
	"github.com/pitchside/voicenotes/pkg/whisper"
)

type fakePlatform struct {
	players []pf.Player
	teams   []pf.Team
	coaches []pf.Coach
	media   *pf.Media
	applied []pf.InsightRecord
	sent    []string
	err     error
}

func (f *fakePlatform) RosterForCoach(ctx context.Context, orgID, coachUserID string) ([]pf.Player, error) {
	return f.players, f.err
}

func (f *fakePlatform) TeamsForCoach(ctx context.Context, orgID, coachUserID string) ([]pf.Team, error) {
	return f.teams, f.err
}

func (f *fakePlatform) CoachesForCoach(ctx context.Context, orgID, coachUserID string) ([]pf.Coach, error) {
	return f.coaches, f.err
}

func (f *fakePlatform) AllPlayers(ctx context.Context, orgID string) ([]pf.Player, error) {
	return f.players, f.err
}

func (f *fakePlatform) FetchMedia(ctx context.Context, artifactID string) (*pf.Media, error) {
	return f.media, f.err
}

func (f *fakePlatform) ApplyInsight(ctx context.Context, rec pf.InsightRecord) error {
	f.applied = append(f.applied, rec)
	return f.err
}

func (f *fakePlatform) SendMessage(ctx context.Context, userID, text string) error {
	f.sent = append(f.sent, text)
	return f.err
}

type fakeSpeech struct {
	result   *whisper.Result
	filename string
}

func (f *fakeSpeech) Transcribe(ctx context.Context, filename string, audio io.Reader) (*whisper.Result, error) {
	f.filename = filename
	return f.result, nil
}

func TestDirectory_ConvertsPlatformTypes(t *testing.T) {
	client := &fakePlatform{
		players: []pf.Player{{ID: "p-1", FirstName: "Sarah", LastName: "Kelly", FullName: "Sarah Kelly", AgeGroup: "U12"}},
		teams:   []pf.Team{{ID: "t-1", Name: "U12 Hurling", Sport: "hurling"}},
		coaches: []pf.Coach{{ID: "coach-1", Name: "Pat Murphy"}},
	}
	dir := NewDirectory(client)
	ctx := context.Background()

	players, err := dir.PlayersForCoach(ctx, "org-1", "coach-1")
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Sarah Kelly", players[0].FullName)
	assert.Equal(t, "U12", players[0].AgeGroup)

	teams, err := dir.TeamsForCoach(ctx, "org-1", "coach-1")
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "U12 Hurling", teams[0].Name)

	coaches, err := dir.CoachesForCoach(ctx, "org-1", "coach-1")
	require.NoError(t, err)
	require.Len(t, coaches, 1)
	assert.Equal(t, "Pat Murphy", coaches[0].Name)
}

func TestTranscriber_FetchesMediaAndTranscribes(t *testing.T) {
	client := &fakePlatform{
		media: &pf.Media{ContentType: "audio/ogg", Data: []byte("audio")},
	}
	speech := &fakeSpeech{
		result: &whisper.Result{
			Text:     "Sarah played well today.",
			Language: "en",
			Duration: 4.2,
			Segments: []whisper.Segment{{Start: 0, End: 4.2, Text: "Sarah played well today."}},
		},
	}

	tr := NewTranscriber(client, speech, "whisper-1")
	got, err := tr.Transcribe(context.Background(), "a-1")

	require.NoError(t, err)
	assert.Equal(t, "Sarah played well today.", got.Text)
	assert.Equal(t, "whisper-1", got.Model)
	require.Len(t, got.Segments, 1)
	assert.InDelta(t, 4.2, got.Segments[0].End, 1e-9)
	assert.Contains(t, speech.filename, "a-1")
}

func TestRecords_MapsAppliedInsight(t *testing.T) {
	client := &fakePlatform{}
	records := NewRecords(client)

	err := records.ApplyInsight(context.Background(), model.AppliedInsight{
		InsightID:       "d-1",
		PlayerID:        "p-1",
		Category:        model.TopicSkillRating,
		Title:           "Tackling improved",
		ConfidenceScore: 0.95,
		WouldAutoApply:  true,
	})

	require.NoError(t, err)
	require.Len(t, client.applied, 1)
	assert.Equal(t, "skill_rating", client.applied[0].Category)
	assert.True(t, client.applied[0].WouldAutoApply)
}

func TestMessenger_Sends(t *testing.T) {
	client := &fakePlatform{}
	m := NewMessenger(client)

	require.NoError(t, m.Send(context.Background(), "coach-1", "Voice note processed."))
	require.Len(t, client.sent, 1)
	assert.Equal(t, "Voice note processed.", client.sent[0])
}
