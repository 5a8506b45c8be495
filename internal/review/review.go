// Package review implements the human-facing review surface: the
// disambiguation queue with its resolve / reject / skip actions, and draft
// confirmation. Every mutation checks that the caller owns the artifact the
// record came from; a coach never sees or touches another coach's notes.
package review

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pitchside/voicenotes/internal/config"
	"github.com/pitchside/voicenotes/internal/model"
	"github.com/pitchside/voicenotes/internal/queue"
	"github.com/pitchside/voicenotes/internal/store"
)

var (
	// ErrAccessDenied means the record belongs to a different coach.
	ErrAccessDenied = eris.New("review: access denied")
	// ErrInvalidScore means a confidence score was outside [0, 1].
	ErrInvalidScore = eris.New("review: score must be between 0 and 1")
	// ErrNotPending means a draft action needs a pending draft.
	ErrNotPending = eris.New("review: draft is not pending")
)

// Service exposes the review operations.
type Service struct {
	cfg   *config.Config
	store store.Store
	queue queue.Queue
}

// NewService creates a review Service.
func NewService(cfg *config.Config, st store.Store, q queue.Queue) *Service {
	return &Service{cfg: cfg, store: st, queue: q}
}

// DisambiguationQueue lists the caller's open disambiguations in the
// organization, newest first. The limit defaults to the configured queue size
// and is capped. Ownership is part of the store query, so the limit always
// counts the caller's own items.
func (s *Service) DisambiguationQueue(ctx context.Context, callerUserID, orgID string, limit int) ([]model.EntityResolution, error) {
	if limit <= 0 {
		limit = s.cfg.Review.QueueDefaultLimit
	}
	if limit > s.cfg.Review.QueueMaxLimit {
		limit = s.cfg.Review.QueueMaxLimit
	}

	resolutions, err := s.store.ListDisambiguations(ctx, store.DisambiguationFilter{
		OrganizationID: orgID,
		CoachUserID:    callerUserID,
		Limit:          limit,
	})
	if err != nil {
		return nil, eris.Wrap(err, "review: list disambiguations")
	}
	return resolutions, nil
}

// Resolve records the coach's pick for one disambiguation: the resolution
// becomes user_resolved, the parent claim is patched, every other open
// resolution in the artifact with the same raw text inherits the pick, and
// the pick is learned as an alias for next time.
func (s *Service) Resolve(ctx context.Context, callerUserID, resolutionID, entityID, entityName string, score float64) error {
	if score < 0 || score > 1 {
		return ErrInvalidScore
	}

	resolution, err := s.store.GetResolution(ctx, resolutionID)
	if err != nil {
		return eris.Wrap(err, "review: load resolution")
	}
	if err := s.checkOwnership(ctx, resolution.ArtifactID, callerUserID); err != nil {
		return err
	}

	now := time.Now().UTC()
	s.settleResolution(resolution, entityID, entityName, now)
	if err := s.store.UpdateResolution(ctx, resolution); err != nil {
		return eris.Wrap(err, "review: update resolution")
	}

	claim, err := s.patchClaim(ctx, resolution, entityID, entityName)
	if err != nil {
		return err
	}

	if err := s.propagate(ctx, resolution, entityID, entityName, now); err != nil {
		return err
	}

	if resolution.MentionType == model.MentionPlayerName {
		if err := s.store.UpsertAlias(ctx, &model.CoachPlayerAlias{
			CoachUserID:        callerUserID,
			OrganizationID:     resolution.OrganizationID,
			RawText:            normalizeRaw(resolution.RawText),
			ResolvedEntityID:   entityID,
			ResolvedEntityName: entityName,
		}); err != nil {
			zap.L().Warn("review: alias upsert failed",
				zap.String("raw_text", resolution.RawText), zap.Error(err))
		}
	}

	s.logEvent(ctx, callerUserID, resolution.OrganizationID,
		model.ReviewDisambiguateAccept, score, claimCategory(claim))
	return nil
}

// Reject marks a disambiguation unresolved: none of the candidates were the
// person the coach meant. The parent claim is left alone.
func (s *Service) Reject(ctx context.Context, callerUserID, resolutionID string, topCandidateScore float64) error {
	if topCandidateScore < 0 || topCandidateScore > 1 {
		return ErrInvalidScore
	}

	resolution, err := s.store.GetResolution(ctx, resolutionID)
	if err != nil {
		return eris.Wrap(err, "review: load resolution")
	}
	if err := s.checkOwnership(ctx, resolution.ArtifactID, callerUserID); err != nil {
		return err
	}

	now := time.Now().UTC()
	resolution.Status = model.ResolutionUnresolved
	resolution.ResolvedAt = &now
	if err := s.store.UpdateResolution(ctx, resolution); err != nil {
		return eris.Wrap(err, "review: update resolution")
	}

	claim, err := s.store.GetClaim(ctx, resolution.ClaimID)
	if err != nil {
		zap.L().Warn("review: claim lookup failed",
			zap.String("claim_id", resolution.ClaimID), zap.Error(err))
		claim = nil
	}
	s.logEvent(ctx, callerUserID, resolution.OrganizationID,
		model.ReviewDisambiguateRejectAll, topCandidateScore, claimCategory(claim))
	return nil
}

// Skip records that the coach deferred a disambiguation without deciding.
// Only the analytics trail changes.
func (s *Service) Skip(ctx context.Context, callerUserID, resolutionID string) error {
	resolution, err := s.store.GetResolution(ctx, resolutionID)
	if err != nil {
		return eris.Wrap(err, "review: load resolution")
	}
	if err := s.checkOwnership(ctx, resolution.ArtifactID, callerUserID); err != nil {
		return err
	}

	claim, err := s.store.GetClaim(ctx, resolution.ClaimID)
	if err != nil {
		claim = nil
	}
	s.logEvent(ctx, callerUserID, resolution.OrganizationID,
		model.ReviewDisambiguateSkip, resolution.TopCandidateScore(), claimCategory(claim))
	return nil
}

// PendingDrafts lists the caller's recent pending drafts in the organization.
func (s *Service) PendingDrafts(ctx context.Context, callerUserID, orgID string) ([]model.InsightDraft, error) {
	drafts, err := s.store.ListPendingDrafts(ctx, orgID, callerUserID)
	if err != nil {
		return nil, eris.Wrap(err, "review: list pending drafts")
	}
	return drafts, nil
}

// ConfirmDraft confirms one pending draft and schedules its application.
func (s *Service) ConfirmDraft(ctx context.Context, callerUserID, draftID string) error {
	draft, err := s.store.GetDraft(ctx, draftID)
	if err != nil {
		return eris.Wrap(err, "review: load draft")
	}
	if draft.Status != model.DraftPending {
		return eris.Wrapf(ErrNotPending, "status %s", draft.Status)
	}
	if err := s.checkOwnership(ctx, draft.ArtifactID, callerUserID); err != nil {
		return err
	}

	if err := s.confirmOne(ctx, draft); err != nil {
		return err
	}
	s.logEvent(ctx, callerUserID, draft.OrganizationID,
		model.ReviewDraftConfirm, draft.OverallConfidence, string(draft.InsightType))
	return nil
}

// RejectDraft rejects one pending draft. Rejected drafts are never applied.
func (s *Service) RejectDraft(ctx context.Context, callerUserID, draftID string) error {
	draft, err := s.store.GetDraft(ctx, draftID)
	if err != nil {
		return eris.Wrap(err, "review: load draft")
	}
	if draft.Status != model.DraftPending {
		return eris.Wrapf(ErrNotPending, "status %s", draft.Status)
	}
	if err := s.checkOwnership(ctx, draft.ArtifactID, callerUserID); err != nil {
		return err
	}

	draft.Status = model.DraftRejected
	if err := s.store.UpdateDraft(ctx, draft); err != nil {
		return eris.Wrap(err, "review: update draft")
	}
	s.logEvent(ctx, callerUserID, draft.OrganizationID,
		model.ReviewDraftReject, draft.OverallConfidence, string(draft.InsightType))
	return nil
}

// ConfirmAll confirms every pending draft on one artifact and schedules each
// for application.
func (s *Service) ConfirmAll(ctx context.Context, callerUserID, artifactID, orgID string) (int, error) {
	if err := s.checkOwnership(ctx, artifactID, callerUserID); err != nil {
		return 0, err
	}

	drafts, err := s.store.ListDraftsByArtifact(ctx, artifactID)
	if err != nil {
		return 0, eris.Wrap(err, "review: list drafts")
	}

	confirmed := 0
	for i := range drafts {
		d := &drafts[i]
		if d.Status != model.DraftPending || d.OrganizationID != orgID {
			continue
		}
		if err := s.confirmOne(ctx, d); err != nil {
			return confirmed, err
		}
		confirmed++
	}
	return confirmed, nil
}

// RejectAll rejects every pending draft on one artifact.
func (s *Service) RejectAll(ctx context.Context, callerUserID, artifactID, orgID string) (int, error) {
	if err := s.checkOwnership(ctx, artifactID, callerUserID); err != nil {
		return 0, err
	}

	drafts, err := s.store.ListDraftsByArtifact(ctx, artifactID)
	if err != nil {
		return 0, eris.Wrap(err, "review: list drafts")
	}

	rejected := 0
	for i := range drafts {
		d := &drafts[i]
		if d.Status != model.DraftPending || d.OrganizationID != orgID {
			continue
		}
		d.Status = model.DraftRejected
		if err := s.store.UpdateDraft(ctx, d); err != nil {
			return rejected, eris.Wrap(err, "review: update draft")
		}
		rejected++
	}
	return rejected, nil
}

// ── internals ──

func (s *Service) checkOwnership(ctx context.Context, artifactID, callerUserID string) error {
	artifact, err := s.store.GetArtifact(ctx, artifactID)
	if err != nil {
		return eris.Wrap(err, "review: load artifact")
	}
	if artifact.SenderUserID != callerUserID {
		return ErrAccessDenied
	}
	return nil
}

func (s *Service) confirmOne(ctx context.Context, d *model.InsightDraft) error {
	now := time.Now().UTC()
	d.Status = model.DraftConfirmed
	d.ConfirmedAt = &now
	if err := s.store.UpdateDraft(ctx, d); err != nil {
		return eris.Wrap(err, "review: update draft")
	}
	if err := s.queue.Enqueue(ctx, queue.Job{
		Stage:      queue.StageApply,
		ArtifactID: d.ArtifactID,
		DraftID:    d.ID,
	}); err != nil {
		return eris.Wrap(err, "review: enqueue apply")
	}
	return nil
}

func (s *Service) settleResolution(r *model.EntityResolution, entityID, entityName string, now time.Time) {
	r.Status = model.ResolutionUserResolved
	r.ResolvedEntityID = entityID
	r.ResolvedEntityName = entityName
	at := now
	r.ResolvedAt = &at
}

// patchClaim lifts the user's pick onto the parent claim. Which fields get
// patched depends on the mention type.
func (s *Service) patchClaim(ctx context.Context, r *model.EntityResolution, entityID, entityName string) (*model.Claim, error) {
	claim, err := s.store.GetClaim(ctx, r.ClaimID)
	if err != nil {
		return nil, eris.Wrap(err, "review: load claim")
	}

	claim.Status = model.ClaimResolved
	switch r.MentionType {
	case model.MentionPlayerName:
		claim.ResolvedPlayerID = entityID
		claim.ResolvedPlayerName = entityName
	case model.MentionTeamName:
		claim.ResolvedTeamID = entityID
		claim.ResolvedTeamName = entityName
	}
	if err := s.store.UpdateClaim(ctx, claim); err != nil {
		return nil, eris.Wrap(err, "review: update claim")
	}
	return claim, nil
}

// propagate applies the pick to every other open resolution in the artifact
// with the same normalized raw text, so the coach answers "who is Sarah?"
// once per note.
func (s *Service) propagate(ctx context.Context, source *model.EntityResolution, entityID, entityName string, now time.Time) error {
	siblings, err := s.store.ListResolutionsByArtifact(ctx, source.ArtifactID)
	if err != nil {
		return eris.Wrap(err, "review: list sibling resolutions")
	}

	key := normalizeRaw(source.RawText)
	for i := range siblings {
		sib := &siblings[i]
		if sib.ID == source.ID ||
			sib.Status != model.ResolutionNeedsDisambiguation ||
			normalizeRaw(sib.RawText) != key {
			continue
		}

		s.settleResolution(sib, entityID, entityName, now)
		if err := s.store.UpdateResolution(ctx, sib); err != nil {
			return eris.Wrap(err, "review: update sibling resolution")
		}
		if _, err := s.patchClaim(ctx, sib, entityID, entityName); err != nil {
			return err
		}
	}
	return nil
}

// logEvent records a review analytics event. Analytics never fail a review
// action.
func (s *Service) logEvent(ctx context.Context, coachUserID, orgID string, et model.ReviewEventType, score float64, category string) {
	if err := s.store.CreateReviewEvent(ctx, &model.ReviewEvent{
		CoachUserID:     coachUserID,
		OrganizationID:  orgID,
		EventType:       et,
		ConfidenceScore: score,
		Category:        category,
	}); err != nil {
		zap.L().Warn("review: analytics event write failed",
			zap.String("event_type", string(et)), zap.Error(err))
	}
}

func normalizeRaw(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func claimCategory(c *model.Claim) string {
	if c == nil {
		return "unknown"
	}
	return string(c.Topic)
}
