package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pitchside/voicenotes/internal/match"
	"github.com/pitchside/voicenotes/internal/model"
	"github.com/pitchside/voicenotes/internal/queue"
	"github.com/pitchside/voicenotes/internal/roster"
	"github.com/pitchside/voicenotes/pkg/segmenter"
)

// Extract runs segmentation over the artifact's transcript and stores the
// resulting claims. Player references are resolved inline, deterministic
// rules first, then a fuzzy directory search; a claim whose player cannot be
// resolved is stored anyway with empty resolved fields.
func (p *Pipeline) Extract(ctx context.Context, job queue.Job) error {
	artifact, err := p.store.GetArtifact(ctx, job.ArtifactID)
	if err != nil {
		return eris.Wrap(err, "extract: load artifact")
	}
	if artifact.Status != model.ArtifactTranscribed {
		zap.L().Debug("extract: artifact not in transcribed state, skipping",
			zap.String("artifact_id", artifact.ID),
			zap.String("status", string(artifact.Status)))
		return nil
	}

	if err := p.store.UpdateArtifactStatus(ctx, artifact.ID, model.ArtifactProcessing); err != nil {
		return eris.Wrap(err, "extract: advance status")
	}

	orgID := artifact.PrimaryOrg()
	if orgID == "" {
		p.fail(ctx, artifact, FeedbackExtractionFailed)
		return eris.Errorf("extract: artifact %s has no organization candidate", artifact.ID)
	}

	transcript, err := p.store.GetTranscript(ctx, artifact.ID)
	if err != nil {
		return eris.Wrap(err, "extract: load transcript")
	}
	if transcript == nil {
		p.fail(ctx, artifact, FeedbackExtractionFailed)
		return eris.Errorf("extract: artifact %s has no transcript", artifact.ID)
	}

	// Fetched fresh per artifact: rosters change between a coach's notes.
	snapshot, err := roster.Gather(ctx, p.directory, orgID, artifact.SenderUserID)
	if err != nil {
		p.fail(ctx, artifact, FeedbackExtractionFailed)
		return eris.Wrap(err, "extract: gather roster snapshot")
	}

	result, err := p.segmenter.Segment(ctx, segmenter.Request{
		Transcript:  transcript.FullText,
		RosterJSON:  snapshot.RosterJSON(),
		TeamsJSON:   snapshot.TeamsJSON(),
		CoachesJSON: snapshot.CoachesJSON(),
	})
	if err != nil {
		p.fail(ctx, artifact, FeedbackExtractionFailed)
		return eris.Wrap(err, "extract: segment transcript")
	}

	claims := make([]model.Claim, 0, len(result.Claims))
	for i, cand := range result.Claims {
		c := p.buildClaim(ctx, artifact, orgID, snapshot, cand)
		c.Sequence = i + 1
		claims = append(claims, c)
	}

	if err := p.store.CreateClaims(ctx, claims); err != nil {
		return eris.Wrap(err, "extract: store claims")
	}

	if len(claims) == 0 {
		if err := p.store.UpdateArtifactStatus(ctx, artifact.ID, model.ArtifactCompleted); err != nil {
			return eris.Wrap(err, "extract: complete empty artifact")
		}
		p.notify(ctx, artifact.SenderUserID, FormatResults(nil, nil))
		return nil
	}

	zap.L().Info("extract: claims stored",
		zap.String("artifact_id", artifact.ID),
		zap.Int("claims", len(claims)))
	return p.enqueue(ctx, queue.Job{Stage: queue.StageResolve, ArtifactID: artifact.ID})
}

// buildClaim converts one segmentation candidate into a stored claim,
// resolving its player, team and assignee references where possible.
func (p *Pipeline) buildClaim(ctx context.Context, artifact *model.Artifact, orgID string, snapshot *roster.Snapshot, cand segmenter.ClaimCandidate) model.Claim {
	c := model.Claim{
		ArtifactID:           artifact.ID,
		SourceText:           cand.SourceText,
		Topic:                model.Topic(cand.Topic),
		Title:                cand.Title,
		Description:          cand.Description,
		RecommendedAction:    cand.RecommendedAction,
		TimeReference:        cand.TimeReference,
		Severity:             model.Severity(cand.Severity),
		Sentiment:            model.Sentiment(cand.Sentiment),
		SkillName:            cand.SkillName,
		SkillRating:          cand.SkillRating,
		ExtractionConfidence: clamp01(cand.ExtractionConfidence),
		Status:               model.ClaimExtracted,
		OrganizationID:       orgID,
		CoachUserID:          artifact.SenderUserID,
	}

	for _, m := range cand.EntityMentions {
		c.EntityMentions = append(c.EntityMentions, model.EntityMention{
			MentionType: model.MentionType(m.MentionType),
			RawText:     m.RawText,
			Position:    m.Position,
		})
	}

	// Player: deterministic ladder against the coach's snapshot, then a
	// fuzzy search against the full directory.
	searchName := cand.PlayerName
	if searchName == "" {
		searchName = firstMention(c.EntityMentions, model.MentionPlayerName)
	}
	if entry := match.ResolveRoster(cand.PlayerID, searchName, snapshot.Entries()); entry != nil {
		c.ResolvedPlayerID = entry.ID
		c.ResolvedPlayerName = entry.FullName
	} else if searchName != "" {
		similar, err := p.searcher.FindSimilarPlayers(ctx, orgID, artifact.SenderUserID, searchName, 1)
		if err != nil {
			zap.L().Warn("extract: fuzzy player search failed",
				zap.String("artifact_id", artifact.ID),
				zap.String("name", searchName),
				zap.Error(err))
		} else if len(similar) > 0 && similar[0].Similarity >= p.cfg.Pipeline.FuzzyMatchThreshold {
			c.ResolvedPlayerID = similar[0].Player.ID
			c.ResolvedPlayerName = similar[0].Player.FullName
		}
	}

	// Team and assignee ids from the service are advisory: honor them only
	// when they exist in the snapshot.
	teamName := cand.TeamName
	if teamName == "" {
		teamName = firstMention(c.EntityMentions, model.MentionTeamName)
	}
	if team := snapshot.TeamByIDOrName(cand.TeamID, teamName); team != nil {
		c.ResolvedTeamID = team.ID
		c.ResolvedTeamName = team.Name
	}
	if coach := snapshot.CoachByID(cand.AssigneeUserID); coach != nil {
		c.ResolvedAssigneeID = coach.ID
		c.ResolvedAssignee = coach.Name
	}

	return c
}

func firstMention(mentions []model.EntityMention, mt model.MentionType) string {
	for _, m := range mentions {
		if m.MentionType == mt {
			return m.RawText
		}
	}
	return ""
}
