// Package platform adapts the club platform API client to the interfaces
// the pipeline consumes: roster directory, transcriber, player records, and
// coach messaging.
package platform

import (
	"bytes"
	"context"
	"mime"

	"github.com/rotisserie/eris"

	"github.com/pitchside/voicenotes/internal/model"
	"github.com/pitchside/voicenotes/internal/pipeline"
	"github.com/pitchside/voicenotes/internal/roster"
	"github.com/pitchside/voicenotes/pkg/platform"
	"github.com/pitchside/voicenotes/pkg/whisper"
)

// Directory implements roster.Directory over the platform API.
type Directory struct {
	client platform.Client
}

// NewDirectory wraps a platform client as a roster directory.
func NewDirectory(client platform.Client) *Directory {
	return &Directory{client: client}
}

func (d *Directory) PlayersForCoach(ctx context.Context, orgID, coachUserID string) ([]roster.Player, error) {
	players, err := d.client.RosterForCoach(ctx, orgID, coachUserID)
	if err != nil {
		return nil, err
	}
	return convertPlayers(players), nil
}

func (d *Directory) TeamsForCoach(ctx context.Context, orgID, coachUserID string) ([]roster.Team, error) {
	teams, err := d.client.TeamsForCoach(ctx, orgID, coachUserID)
	if err != nil {
		return nil, err
	}
	out := make([]roster.Team, 0, len(teams))
	for _, t := range teams {
		out = append(out, roster.Team{
			ID:       t.ID,
			Name:     t.Name,
			AgeGroup: t.AgeGroup,
			Sport:    t.Sport,
		})
	}
	return out, nil
}

func (d *Directory) CoachesForCoach(ctx context.Context, orgID, coachUserID string) ([]roster.Coach, error) {
	coaches, err := d.client.CoachesForCoach(ctx, orgID, coachUserID)
	if err != nil {
		return nil, err
	}
	out := make([]roster.Coach, 0, len(coaches))
	for _, c := range coaches {
		out = append(out, roster.Coach{ID: c.ID, Name: c.Name})
	}
	return out, nil
}

func (d *Directory) AllPlayers(ctx context.Context, orgID string) ([]roster.Player, error) {
	players, err := d.client.AllPlayers(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return convertPlayers(players), nil
}

func convertPlayers(players []platform.Player) []roster.Player {
	out := make([]roster.Player, 0, len(players))
	for _, p := range players {
		out = append(out, roster.Player{
			ID:        p.ID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			FullName:  p.FullName,
			AgeGroup:  p.AgeGroup,
			Sport:     p.Sport,
		})
	}
	return out
}

// Transcriber fetches an artifact's parked audio from the platform and runs
// it through the speech-to-text provider.
type Transcriber struct {
	media  platform.Client
	speech whisper.Client
	model  string
}

// NewTranscriber builds a Transcriber over the platform media store and a
// speech-to-text client.
func NewTranscriber(media platform.Client, speech whisper.Client, model string) *Transcriber {
	return &Transcriber{media: media, speech: speech, model: model}
}

func (t *Transcriber) Transcribe(ctx context.Context, artifactID string) (*pipeline.Transcription, error) {
	audio, err := t.media.FetchMedia(ctx, artifactID)
	if err != nil {
		return nil, eris.Wrap(err, "platform: fetch artifact media")
	}

	result, err := t.speech.Transcribe(ctx, mediaFilename(artifactID, audio.ContentType), bytes.NewReader(audio.Data))
	if err != nil {
		return nil, eris.Wrap(err, "platform: transcribe audio")
	}

	segments := make([]model.TranscriptSegment, 0, len(result.Segments))
	for _, s := range result.Segments {
		segments = append(segments, model.TranscriptSegment{
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	return &pipeline.Transcription{
		Text:     result.Text,
		Segments: segments,
		Language: result.Language,
		Duration: result.Duration,
		Model:    t.model,
	}, nil
}

// mediaFilename derives an upload filename from the media content type.
// Chat audio arrives as ogg/opus; the extension hints the container to the
// transcription API.
func mediaFilename(artifactID, contentType string) string {
	exts, err := mime.ExtensionsByType(contentType)
	if err != nil || len(exts) == 0 {
		return artifactID + ".ogg"
	}
	return artifactID + exts[0]
}

// Records writes applied insights to player development records.
type Records struct {
	client platform.Client
}

// NewRecords wraps a platform client as the applied-insight sink.
func NewRecords(client platform.Client) *Records {
	return &Records{client: client}
}

func (r *Records) ApplyInsight(ctx context.Context, ins model.AppliedInsight) error {
	return r.client.ApplyInsight(ctx, platform.InsightRecord{
		InsightID:         ins.InsightID,
		PlayerID:          ins.PlayerID,
		PlayerName:        ins.PlayerName,
		Category:          string(ins.Category),
		Title:             ins.Title,
		Description:       ins.Description,
		RecommendedUpdate: ins.RecommendedUpdate,
		TeamID:            ins.TeamID,
		TeamName:          ins.TeamName,
		AssigneeUserID:    ins.AssigneeUserID,
		AssigneeName:      ins.AssigneeName,
		ConfidenceScore:   ins.ConfidenceScore,
		WouldAutoApply:    ins.WouldAutoApply,
		OrganizationID:    ins.OrganizationID,
		CoachUserID:       ins.CoachUserID,
	})
}

// Messenger sends feedback text to a coach through the platform.
type Messenger struct {
	client platform.Client
}

// NewMessenger wraps a platform client as the outbound message channel.
func NewMessenger(client platform.Client) *Messenger {
	return &Messenger{client: client}
}

func (m *Messenger) Send(ctx context.Context, userID, text string) error {
	return m.client.SendMessage(ctx, userID, text)
}
