package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pitchside/voicenotes/internal/model"
	"github.com/pitchside/voicenotes/internal/queue"
)

// Transcribe turns an artifact's audio into a stored transcript and hands the
// artifact to extraction. Re-running against an artifact that already moved
// past "received" is a no-op.
func (p *Pipeline) Transcribe(ctx context.Context, job queue.Job) error {
	artifact, err := p.store.GetArtifact(ctx, job.ArtifactID)
	if err != nil {
		return eris.Wrap(err, "transcribe: load artifact")
	}
	if artifact.Status != model.ArtifactReceived {
		zap.L().Debug("transcribe: artifact not in received state, skipping",
			zap.String("artifact_id", artifact.ID),
			zap.String("status", string(artifact.Status)))
		return nil
	}

	// A retry after a partial run may find the transcript already written.
	existing, err := p.store.GetTranscript(ctx, artifact.ID)
	if err != nil {
		return eris.Wrap(err, "transcribe: check existing transcript")
	}
	if existing == nil {
		result, err := p.transcriber.Transcribe(ctx, artifact.ID)
		if err != nil {
			p.fail(ctx, artifact, FeedbackTranscriptionFailed)
			return eris.Wrap(err, "transcribe: speech-to-text")
		}
		if strings.TrimSpace(result.Text) == "" {
			p.fail(ctx, artifact, FeedbackTranscriptionFailed)
			return eris.New("transcribe: empty transcript")
		}

		transcript := &model.Transcript{
			ArtifactID: artifact.ID,
			FullText:   result.Text,
			Segments:   result.Segments,
			ModelUsed:  result.Model,
			Language:   result.Language,
			Duration:   result.Duration,
		}
		if err := p.store.CreateTranscript(ctx, transcript); err != nil {
			return eris.Wrap(err, "transcribe: store transcript")
		}
	}

	if err := p.store.UpdateArtifactStatus(ctx, artifact.ID, model.ArtifactTranscribed); err != nil {
		return eris.Wrap(err, "transcribe: advance status")
	}
	return p.enqueue(ctx, queue.Job{Stage: queue.StageExtract, ArtifactID: artifact.ID})
}

// fail marks the artifact failed and notifies the coach. Both operations are
// best-effort: the original stage error is what gets reported.
func (p *Pipeline) fail(ctx context.Context, artifact *model.Artifact, feedback string) {
	if err := p.store.UpdateArtifactStatus(ctx, artifact.ID, model.ArtifactFailed); err != nil {
		zap.L().Error("mark artifact failed", zap.String("artifact_id", artifact.ID), zap.Error(err))
	}
	p.notify(ctx, artifact.SenderUserID, feedback)
}

func (p *Pipeline) notify(ctx context.Context, userID, text string) {
	if p.messenger == nil || text == "" {
		return
	}
	if err := p.messenger.Send(ctx, userID, text); err != nil {
		zap.L().Warn("send feedback", zap.String("user_id", userID), zap.Error(err))
	}
}

func (p *Pipeline) enqueue(ctx context.Context, job queue.Job) error {
	if err := p.queue.Enqueue(ctx, job); err != nil {
		return eris.Wrapf(err, "enqueue %s", job.Stage)
	}
	return nil
}
