package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pitchside/voicenotes/internal/match"
	"github.com/pitchside/voicenotes/internal/model"
	"github.com/pitchside/voicenotes/internal/queue"
	"github.com/pitchside/voicenotes/internal/roster"
)

// Resolve turns the entity mentions of still-unresolved claims into
// resolution records. Player mentions go through the coach's learned aliases
// first, then a fuzzy directory search; team and coach mentions match exactly
// then fuzzily against the coach's snapshot. Claims roll up to resolved only
// when every one of their mentions auto-resolved.
func (p *Pipeline) Resolve(ctx context.Context, job queue.Job) error {
	artifact, err := p.store.GetArtifact(ctx, job.ArtifactID)
	if err != nil {
		return eris.Wrap(err, "resolve: load artifact")
	}
	if artifact.Status != model.ArtifactProcessing {
		zap.L().Debug("resolve: artifact not in processing state, skipping",
			zap.String("artifact_id", artifact.ID),
			zap.String("status", string(artifact.Status)))
		return nil
	}

	orgID := artifact.PrimaryOrg()
	if orgID == "" {
		zap.L().Info("resolve: no organization context", zap.String("artifact_id", artifact.ID))
		return p.enqueue(ctx, queue.Job{Stage: queue.StageDraft, ArtifactID: artifact.ID})
	}

	claims, err := p.store.ListClaimsByArtifact(ctx, artifact.ID)
	if err != nil {
		return eris.Wrap(err, "resolve: list claims")
	}

	// Claims the extractor already pinned to a player skip this stage.
	unresolved := make([]model.Claim, 0, len(claims))
	for _, c := range claims {
		if c.Status == model.ClaimExtracted && c.ResolvedPlayerID == "" {
			unresolved = append(unresolved, c)
		}
	}
	if len(unresolved) == 0 {
		return p.enqueue(ctx, queue.Job{Stage: queue.StageDraft, ArtifactID: artifact.ID})
	}

	threshold := p.autoResolveThreshold(ctx, artifact.SenderUserID)

	snapshot, err := roster.Gather(ctx, p.directory, orgID, artifact.SenderUserID)
	if err != nil {
		return eris.Wrap(err, "resolve: gather roster snapshot")
	}

	resolutions := p.resolveMentions(ctx, artifact, orgID, unresolved, snapshot, threshold)
	if len(resolutions) == 0 {
		return p.enqueue(ctx, queue.Job{Stage: queue.StageDraft, ArtifactID: artifact.ID})
	}

	if err := p.store.CreateResolutions(ctx, resolutions); err != nil {
		return eris.Wrap(err, "resolve: store resolutions")
	}
	if err := p.rollUpClaimStatuses(ctx, unresolved, resolutions); err != nil {
		return eris.Wrap(err, "resolve: roll up claim statuses")
	}

	auto, disambig, open := countOutcomes(resolutions)
	zap.L().Info("resolve: resolutions stored",
		zap.String("artifact_id", artifact.ID),
		zap.Int("auto_resolved", auto),
		zap.Int("needs_disambiguation", disambig),
		zap.Int("unresolved", open))

	return p.enqueue(ctx, queue.Job{Stage: queue.StageDraft, ArtifactID: artifact.ID})
}

// autoResolveThreshold returns the coach's confidence threshold override when
// set, otherwise the configured default.
func (p *Pipeline) autoResolveThreshold(ctx context.Context, coachUserID string) float64 {
	trust, err := p.store.GetTrustLevel(ctx, coachUserID)
	if err != nil {
		zap.L().Warn("resolve: trust level lookup failed",
			zap.String("coach_user_id", coachUserID), zap.Error(err))
		return p.cfg.Pipeline.AutoResolveThreshold
	}
	if trust != nil && trust.ConfidenceThreshold != nil {
		return *trust.ConfidenceThreshold
	}
	return p.cfg.Pipeline.AutoResolveThreshold
}

// mentionRef locates one mention inside one claim.
type mentionRef struct {
	claimID      string
	mentionIndex int
}

func (p *Pipeline) resolveMentions(ctx context.Context, artifact *model.Artifact, orgID string, claims []model.Claim, snapshot *roster.Snapshot, threshold float64) []model.EntityResolution {
	now := time.Now().UTC()

	// Player mentions are grouped by normalized raw text so "Sarah" is
	// looked up once no matter how many claims mention her, and every claim
	// in the group gets the same outcome.
	playerGroups := make(map[string][]mentionRef)
	playerGroupOrder := make([]string, 0)
	type otherMention struct {
		ref mentionRef
		mt  model.MentionType
		raw string
	}
	others := make([]otherMention, 0)

	for _, c := range claims {
		for idx, m := range c.EntityMentions {
			ref := mentionRef{claimID: c.ID, mentionIndex: idx}
			if m.MentionType == model.MentionPlayerName {
				key := strings.ToLower(strings.TrimSpace(m.RawText))
				if _, ok := playerGroups[key]; !ok {
					playerGroupOrder = append(playerGroupOrder, key)
				}
				playerGroups[key] = append(playerGroups[key], ref)
			} else {
				others = append(others, otherMention{ref: ref, mt: m.MentionType, raw: m.RawText})
			}
		}
	}

	out := make([]model.EntityResolution, 0, len(others)+len(playerGroupOrder))

	for _, key := range playerGroupOrder {
		refs := playerGroups[key]
		candidates, status, resolvedID, resolvedName := p.resolvePlayerName(ctx, artifact, orgID, key, threshold)
		for _, ref := range refs {
			r := model.EntityResolution{
				ClaimID:        ref.claimID,
				ArtifactID:     artifact.ID,
				MentionIndex:   ref.mentionIndex,
				MentionType:    model.MentionPlayerName,
				RawText:        key,
				Candidates:     candidates,
				Status:         status,
				OrganizationID: orgID,
				CreatedAt:      now,
			}
			if resolvedID != "" {
				r.ResolvedEntityID = resolvedID
				r.ResolvedEntityName = resolvedName
				at := now
				r.ResolvedAt = &at
			}
			out = append(out, r)
		}
	}

	for _, om := range others {
		cand := resolveNonPlayer(om.mt, om.raw, snapshot)
		r := model.EntityResolution{
			ClaimID:        om.ref.claimID,
			ArtifactID:     artifact.ID,
			MentionIndex:   om.ref.mentionIndex,
			MentionType:    om.mt,
			RawText:        om.raw,
			Status:         model.ResolutionUnresolved,
			OrganizationID: orgID,
			CreatedAt:      now,
		}
		if cand != nil {
			r.Candidates = []model.Candidate{*cand}
			r.Status = model.ResolutionAutoResolved
			r.ResolvedEntityID = cand.EntityID
			r.ResolvedEntityName = cand.EntityName
			at := now
			r.ResolvedAt = &at
		}
		out = append(out, r)
	}

	return out
}

// resolvePlayerName resolves one normalized player mention: learned alias
// first, then the fuzzy directory search. A single candidate at or above the
// threshold auto-resolves; multiple candidates queue for disambiguation.
func (p *Pipeline) resolvePlayerName(ctx context.Context, artifact *model.Artifact, orgID, rawText string, threshold float64) ([]model.Candidate, model.ResolutionStatus, string, string) {
	alias, err := p.store.GetAlias(ctx, artifact.SenderUserID, orgID, rawText)
	if err != nil {
		zap.L().Warn("resolve: alias lookup failed",
			zap.String("raw_text", rawText), zap.Error(err))
	}
	if alias != nil {
		if err := p.store.UpsertAlias(ctx, alias); err != nil {
			zap.L().Warn("resolve: alias use-count bump failed",
				zap.String("raw_text", rawText), zap.Error(err))
		}
		cand := model.Candidate{
			EntityType:  model.EntityPlayer,
			EntityID:    alias.ResolvedEntityID,
			EntityName:  alias.ResolvedEntityName,
			Score:       1.0,
			MatchReason: "coach_alias",
		}
		return []model.Candidate{cand}, model.ResolutionAutoResolved, alias.ResolvedEntityID, alias.ResolvedEntityName
	}

	similar, err := p.searcher.FindSimilarPlayers(ctx, orgID, artifact.SenderUserID, rawText, p.cfg.Pipeline.SimilarCandidateLimit)
	if err != nil {
		zap.L().Warn("resolve: fuzzy player search failed",
			zap.String("raw_text", rawText), zap.Error(err))
		return nil, model.ResolutionUnresolved, "", ""
	}

	candidates := make([]model.Candidate, 0, len(similar))
	for _, s := range similar {
		candidates = append(candidates, model.Candidate{
			EntityType:  model.EntityPlayer,
			EntityID:    s.Player.ID,
			EntityName:  s.Player.FullName,
			Score:       s.Similarity,
			MatchReason: matchReason(rawText, s),
		})
	}

	switch {
	case len(candidates) == 1 && candidates[0].Score >= threshold:
		return candidates, model.ResolutionAutoResolved, candidates[0].EntityID, candidates[0].EntityName
	case len(candidates) > 0:
		return candidates, model.ResolutionNeedsDisambiguation, "", ""
	default:
		return candidates, model.ResolutionUnresolved, "", ""
	}
}

// matchReason labels why a fuzzy candidate matched, for the review surface.
func matchReason(rawText string, cand roster.SimilarPlayer) string {
	search := strings.Fields(strings.ToLower(strings.TrimSpace(rawText)))
	if len(search) == 0 {
		return "partial_match"
	}
	first := strings.ToLower(cand.FirstName)
	last := strings.ToLower(cand.LastName)
	full := strings.ToLower(strings.TrimSpace(cand.FullName))

	switch {
	case match.SameName(search[0], first):
		if cand.Similarity >= 0.95 {
			return "name_alias"
		}
		return "name_alias+fuzzy"
	case search[0] == first:
		return "exact_first_name"
	case strings.Join(search, " ") == last || contains(search, last):
		return "last_name_match"
	case match.LevenshteinSimilarity(reverseJoin(search), full) > 0.85:
		return "reversed_name"
	case cand.Similarity >= 0.7:
		return "fuzzy_full_name"
	case match.LevenshteinSimilarity(search[0], first) >= 0.7:
		return "fuzzy_first_name"
	default:
		return "partial_match"
	}
}

func contains(parts []string, s string) bool {
	for _, p := range parts {
		if p == s {
			return true
		}
	}
	return false
}

func reverseJoin(parts []string) string {
	rev := make([]string, len(parts))
	for i, p := range parts {
		rev[len(parts)-1-i] = p
	}
	return strings.Join(rev, " ")
}

// resolveNonPlayer matches a team or coach mention against the snapshot,
// exact name first, then fuzzy at 0.8. Group references never resolve to a
// single entity.
func resolveNonPlayer(mt model.MentionType, rawText string, snapshot *roster.Snapshot) *model.Candidate {
	normalized := strings.ToLower(strings.TrimSpace(rawText))

	switch mt {
	case model.MentionTeamName:
		for _, t := range snapshot.Teams {
			if strings.ToLower(strings.TrimSpace(t.Name)) == normalized {
				return &model.Candidate{EntityType: model.EntityTeam, EntityID: t.ID, EntityName: t.Name, Score: 1.0, MatchReason: "exact_team_name"}
			}
		}
		for _, t := range snapshot.Teams {
			if sim := match.LevenshteinSimilarity(normalized, strings.ToLower(strings.TrimSpace(t.Name))); sim >= 0.8 {
				return &model.Candidate{EntityType: model.EntityTeam, EntityID: t.ID, EntityName: t.Name, Score: sim, MatchReason: "fuzzy_team_name"}
			}
		}
	case model.MentionCoachName:
		for _, c := range snapshot.Coaches {
			if strings.ToLower(strings.TrimSpace(c.Name)) == normalized {
				return &model.Candidate{EntityType: model.EntityCoach, EntityID: c.ID, EntityName: c.Name, Score: 1.0, MatchReason: "exact_coach_name"}
			}
		}
		for _, c := range snapshot.Coaches {
			if sim := match.LevenshteinSimilarity(normalized, strings.ToLower(strings.TrimSpace(c.Name))); sim >= 0.8 {
				return &model.Candidate{EntityType: model.EntityCoach, EntityID: c.ID, EntityName: c.Name, Score: sim, MatchReason: "fuzzy_coach_name"}
			}
		}
	}
	return nil
}

// rollUpClaimStatuses marks each claim resolved when every one of its
// resolutions auto-resolved, otherwise needs_disambiguation. Claims with no
// resolutions keep their status.
func (p *Pipeline) rollUpClaimStatuses(ctx context.Context, claims []model.Claim, resolutions []model.EntityResolution) error {
	byClaim := make(map[string][]model.EntityResolution, len(claims))
	for _, r := range resolutions {
		byClaim[r.ClaimID] = append(byClaim[r.ClaimID], r)
	}

	for i := range claims {
		c := &claims[i]
		rs := byClaim[c.ID]
		if len(rs) == 0 {
			continue
		}
		allAuto := true
		for _, r := range rs {
			if r.Status != model.ResolutionAutoResolved {
				allAuto = false
				break
			}
		}
		if allAuto {
			c.Status = model.ClaimResolved
			// Lift the first auto-resolved player onto the claim so the
			// draft stage sees it.
			for _, r := range rs {
				if r.MentionType == model.MentionPlayerName && c.ResolvedPlayerID == "" {
					c.ResolvedPlayerID = r.ResolvedEntityID
					c.ResolvedPlayerName = r.ResolvedEntityName
				}
			}
		} else {
			c.Status = model.ClaimNeedsDisambiguation
		}
		if err := p.store.UpdateClaim(ctx, c); err != nil {
			return eris.Wrapf(err, "update claim %s", c.ID)
		}
	}
	return nil
}

func countOutcomes(resolutions []model.EntityResolution) (auto, disambig, open int) {
	for _, r := range resolutions {
		switch r.Status {
		case model.ResolutionAutoResolved:
			auto++
		case model.ResolutionNeedsDisambiguation:
			disambig++
		default:
			open++
		}
	}
	return auto, disambig, open
}
