package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pitchside/voicenotes/internal/model"
	"github.com/pitchside/voicenotes/internal/queue"
)

// Draft builds insight drafts from resolved claims, runs each through the
// auto-confirm gate, and completes the artifact. Auto-confirmed drafts are
// enqueued for application immediately; everything else waits for the coach.
func (p *Pipeline) Draft(ctx context.Context, job queue.Job) error {
	artifact, err := p.store.GetArtifact(ctx, job.ArtifactID)
	if err != nil {
		return eris.Wrap(err, "draft: load artifact")
	}
	if artifact.Status != model.ArtifactProcessing {
		zap.L().Debug("draft: artifact not in processing state, skipping",
			zap.String("artifact_id", artifact.ID),
			zap.String("status", string(artifact.Status)))
		return nil
	}

	orgID := artifact.PrimaryOrg()
	claims, err := p.store.ListClaimsByArtifact(ctx, artifact.ID)
	if err != nil {
		return eris.Wrap(err, "draft: list claims")
	}

	resolutions, err := p.store.ListResolutionsByArtifact(ctx, artifact.ID)
	if err != nil {
		return eris.Wrap(err, "draft: list resolutions")
	}
	byClaim := make(map[string][]model.EntityResolution, len(claims))
	for _, r := range resolutions {
		byClaim[r.ClaimID] = append(byClaim[r.ClaimID], r)
	}

	trust, err := p.store.GetTrustLevel(ctx, artifact.SenderUserID)
	if err != nil {
		zap.L().Warn("draft: trust level lookup failed",
			zap.String("coach_user_id", artifact.SenderUserID), zap.Error(err))
		trust = nil
	}

	now := time.Now().UTC()
	drafts := make([]model.InsightDraft, 0, len(claims))
	var unmatched []model.EntityResolution
	displayOrder := 1

	for _, c := range claims {
		playerRes := playerResolution(byClaim[c.ID])

		playerID, playerName := c.ResolvedPlayerID, c.ResolvedPlayerName
		if playerRes != nil {
			playerID, playerName = playerRes.ResolvedEntityID, playerRes.ResolvedEntityName
		}
		if playerID == "" {
			// Surface the failed player mention in the coach summary.
			for _, r := range byClaim[c.ID] {
				if r.MentionType == model.MentionPlayerName && r.Status != model.ResolutionAutoResolved {
					unmatched = append(unmatched, r)
					break
				}
			}
			continue
		}

		ai, resolution, overall := confidenceScores(c.ExtractionConfidence, playerRes)
		confirm := requiresConfirmation(c.Topic, overall, trust, p.cfg.Pipeline.DefaultAutoApplyThreshold)

		d := model.InsightDraft{
			ArtifactID:           artifact.ID,
			ClaimID:              c.ID,
			PlayerID:             playerID,
			ResolvedPlayerName:   playerName,
			InsightType:          c.Topic,
			Title:                c.Title,
			Description:          c.Description,
			Evidence:             model.Evidence{TranscriptSnippet: c.SourceText},
			DisplayOrder:         displayOrder,
			AIConfidence:         ai,
			ResolutionConfidence: resolution,
			OverallConfidence:    overall,
			RequiresConfirmation: confirm,
			Status:               model.DraftPending,
			OrganizationID:       orgID,
			CoachUserID:          artifact.SenderUserID,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if !confirm {
			d.Status = model.DraftConfirmed
			at := now
			d.ConfirmedAt = &at
		}
		drafts = append(drafts, d)
		displayOrder++
	}

	if err := p.store.CreateDrafts(ctx, drafts); err != nil {
		return eris.Wrap(err, "draft: store drafts")
	}
	if err := p.store.UpdateArtifactStatus(ctx, artifact.ID, model.ArtifactCompleted); err != nil {
		return eris.Wrap(err, "draft: complete artifact")
	}

	// Drafts are persisted before any apply job runs, so Apply always finds
	// its draft even if the worker races us.
	autoConfirmed := 0
	for _, d := range drafts {
		if d.Status != model.DraftConfirmed {
			continue
		}
		autoConfirmed++
		if err := p.enqueue(ctx, queue.Job{Stage: queue.StageApply, ArtifactID: artifact.ID, DraftID: d.ID}); err != nil {
			zap.L().Error("draft: enqueue apply failed",
				zap.String("draft_id", d.ID), zap.Error(err))
		}
	}

	zap.L().Info("draft: drafts created",
		zap.String("artifact_id", artifact.ID),
		zap.Int("drafts", len(drafts)),
		zap.Int("auto_confirmed", autoConfirmed),
		zap.Int("unmatched", len(unmatched)))

	p.notify(ctx, artifact.SenderUserID, FormatResults(drafts, unmatched))
	return nil
}

// playerResolution picks the claim's settled player resolution, if any.
func playerResolution(rs []model.EntityResolution) *model.EntityResolution {
	for i := range rs {
		r := &rs[i]
		if r.MentionType != model.MentionPlayerName {
			continue
		}
		if r.Status == model.ResolutionAutoResolved || r.Status == model.ResolutionUserResolved {
			return r
		}
	}
	return nil
}
