package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pitchside/voicenotes/internal/model"
	"github.com/pitchside/voicenotes/internal/queue"
)

// Apply writes one confirmed draft through to the player record store.
// Already-applied drafts are a no-op, so a redelivered job never double
// writes; drafts in any other state are skipped with a log line.
func (p *Pipeline) Apply(ctx context.Context, job queue.Job) error {
	if job.DraftID == "" {
		return eris.New("apply: job carries no draft id")
	}

	draft, err := p.store.GetDraft(ctx, job.DraftID)
	if err != nil {
		return eris.Wrap(err, "apply: load draft")
	}

	switch draft.Status {
	case model.DraftApplied:
		zap.L().Debug("apply: draft already applied", zap.String("draft_id", draft.ID))
		return nil
	case model.DraftConfirmed:
		// fall through
	default:
		zap.L().Info("apply: draft not confirmed, skipping",
			zap.String("draft_id", draft.ID),
			zap.String("status", string(draft.Status)))
		return nil
	}

	claim, err := p.store.GetClaim(ctx, draft.ClaimID)
	if err != nil {
		return eris.Wrap(err, "apply: load claim")
	}

	insight := model.AppliedInsight{
		InsightID:         draft.ID,
		PlayerID:          draft.PlayerID,
		PlayerName:        draft.ResolvedPlayerName,
		Category:          draft.InsightType,
		Title:             draft.Title,
		Description:       draft.Description,
		RecommendedUpdate: claim.RecommendedAction,
		TeamID:            claim.ResolvedTeamID,
		TeamName:          claim.ResolvedTeamName,
		AssigneeUserID:    claim.ResolvedAssigneeID,
		AssigneeName:      claim.ResolvedAssignee,
		ConfidenceScore:   draft.OverallConfidence,
		WouldAutoApply:    !draft.RequiresConfirmation,
		OrganizationID:    draft.OrganizationID,
		CoachUserID:       draft.CoachUserID,
	}

	if err := p.records.ApplyInsight(ctx, insight); err != nil {
		return eris.Wrapf(err, "apply: write insight for draft %s", draft.ID)
	}

	now := time.Now().UTC()
	draft.Status = model.DraftApplied
	draft.AppliedAt = &now
	draft.UpdatedAt = now
	if err := p.store.UpdateDraft(ctx, draft); err != nil {
		return eris.Wrapf(err, "apply: mark draft %s applied", draft.ID)
	}

	zap.L().Info("apply: insight applied",
		zap.String("draft_id", draft.ID),
		zap.String("player_id", draft.PlayerID),
		zap.String("category", string(draft.InsightType)))
	return nil
}
