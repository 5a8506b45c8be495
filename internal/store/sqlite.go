package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/pitchside/voicenotes/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS artifacts (
	id             TEXT PRIMARY KEY,
	source_channel TEXT NOT NULL,
	sender_user_id TEXT NOT NULL,
	org_candidates TEXT NOT NULL DEFAULT '[]',
	status         TEXT NOT NULL DEFAULT 'received',
	source_note_id TEXT,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS transcripts (
	id          TEXT PRIMARY KEY,
	artifact_id TEXT NOT NULL UNIQUE REFERENCES artifacts(id),
	doc         TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS claims (
	id            TEXT PRIMARY KEY,
	artifact_id   TEXT NOT NULL REFERENCES artifacts(id),
	org_id        TEXT NOT NULL,
	coach_user_id TEXT NOT NULL,
	seq           INTEGER NOT NULL DEFAULT 0,
	status        TEXT NOT NULL,
	doc           TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS entity_resolutions (
	id          TEXT PRIMARY KEY,
	claim_id    TEXT NOT NULL REFERENCES claims(id),
	artifact_id TEXT NOT NULL REFERENCES artifacts(id),
	org_id      TEXT NOT NULL,
	status      TEXT NOT NULL,
	doc         TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS insight_drafts (
	id            TEXT PRIMARY KEY,
	artifact_id   TEXT NOT NULL REFERENCES artifacts(id),
	claim_id      TEXT NOT NULL REFERENCES claims(id),
	org_id        TEXT NOT NULL,
	coach_user_id TEXT NOT NULL,
	status        TEXT NOT NULL,
	doc           TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS coach_trust_levels (
	coach_user_id TEXT PRIMARY KEY,
	doc           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS coach_player_aliases (
	coach_user_id        TEXT NOT NULL,
	org_id               TEXT NOT NULL,
	raw_text             TEXT NOT NULL,
	resolved_entity_id   TEXT NOT NULL,
	resolved_entity_name TEXT NOT NULL,
	use_count            INTEGER NOT NULL DEFAULT 1,
	last_used_at         DATETIME NOT NULL,
	created_at           DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (coach_user_id, org_id, raw_text)
);

CREATE TABLE IF NOT EXISTS review_events (
	id               TEXT PRIMARY KEY,
	coach_user_id    TEXT NOT NULL,
	org_id           TEXT NOT NULL,
	event_type       TEXT NOT NULL,
	confidence_score REAL NOT NULL,
	category         TEXT,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS legacy_notes (
	id         TEXT PRIMARY KEY,
	doc        TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_artifacts_status ON artifacts(status);
CREATE INDEX IF NOT EXISTS idx_artifacts_source_note ON artifacts(source_note_id);
CREATE INDEX IF NOT EXISTS idx_claims_artifact ON claims(artifact_id);
CREATE INDEX IF NOT EXISTS idx_resolutions_artifact ON entity_resolutions(artifact_id);
CREATE INDEX IF NOT EXISTS idx_resolutions_org_status ON entity_resolutions(org_id, status);
CREATE INDEX IF NOT EXISTS idx_drafts_artifact ON insight_drafts(artifact_id);
CREATE INDEX IF NOT EXISTS idx_drafts_coach_status ON insight_drafts(org_id, coach_user_id, status, created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateArtifact(ctx context.Context, a *model.Artifact) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = model.ArtifactReceived
	}

	orgsJSON, err := json.Marshal(a.OrgCandidates)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal org candidates")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO artifacts (id, source_channel, sender_user_id, org_candidates, status, source_note_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.SourceChannel), a.SenderUserID, string(orgsJSON),
		string(a.Status), nullString(a.SourceNoteID), a.CreatedAt, a.UpdatedAt,
	)
	return eris.Wrap(err, "sqlite: insert artifact")
}

func (s *SQLiteStore) GetArtifact(ctx context.Context, id string) (*model.Artifact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_channel, sender_user_id, org_candidates, status, source_note_id, created_at, updated_at
		 FROM artifacts WHERE id = ?`, id)
	a, err := scanArtifact(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get artifact %s", id)
	}
	return a, nil
}

func (s *SQLiteStore) GetArtifactBySourceNote(ctx context.Context, sourceNoteID string) (*model.Artifact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_channel, sender_user_id, org_candidates, status, source_note_id, created_at, updated_at
		 FROM artifacts WHERE source_note_id = ? LIMIT 1`, sourceNoteID)
	a, err := scanArtifact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get artifact by source note %s", sourceNoteID)
	}
	return a, nil
}

func (s *SQLiteStore) UpdateArtifactStatus(ctx context.Context, id string, status model.ArtifactStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE artifacts SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update artifact status %s", id)
	}
	return checkRowsAffected(res, "artifact", id)
}

func (s *SQLiteStore) CreateTranscript(ctx context.Context, t *model.Transcript) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	doc, err := json.Marshal(t)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal transcript")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transcripts (id, artifact_id, doc, created_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.ArtifactID, string(doc), t.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert transcript")
}

func (s *SQLiteStore) GetTranscript(ctx context.Context, artifactID string) (*model.Transcript, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM transcripts WHERE artifact_id = ?`, artifactID,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get transcript for artifact %s", artifactID)
	}

	var t model.Transcript
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal transcript")
	}
	return &t, nil
}

func (s *SQLiteStore) CreateClaims(ctx context.Context, claims []model.Claim) error {
	if len(claims) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin claims tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := range claims {
		c := &claims[i]
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if c.Sequence == 0 {
			c.Sequence = i + 1
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.UpdatedAt = now

		doc, err := json.Marshal(c)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal claim")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO claims (id, artifact_id, org_id, coach_user_id, seq, status, doc, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.ArtifactID, c.OrganizationID, c.CoachUserID, c.Sequence,
			string(c.Status), string(doc), c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert claim %s", c.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit claims")
}

func (s *SQLiteStore) GetClaim(ctx context.Context, id string) (*model.Claim, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM claims WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get claim %s", id)
	}

	var c model.Claim
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal claim")
	}
	return &c, nil
}

func (s *SQLiteStore) ListClaimsByArtifact(ctx context.Context, artifactID string) ([]model.Claim, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM claims WHERE artifact_id = ? ORDER BY seq, created_at, id`, artifactID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list claims")
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan claim")
		}
		var c model.Claim
		if err := json.Unmarshal([]byte(doc), &c); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal claim")
		}
		claims = append(claims, c)
	}
	return claims, eris.Wrap(rows.Err(), "sqlite: list claims iterate")
}

func (s *SQLiteStore) UpdateClaim(ctx context.Context, c *model.Claim) error {
	c.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal claim")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE claims SET status = ?, doc = ?, updated_at = ? WHERE id = ?`,
		string(c.Status), string(doc), c.UpdatedAt, c.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update claim %s", c.ID)
	}
	return checkRowsAffected(res, "claim", c.ID)
}

func (s *SQLiteStore) CreateResolutions(ctx context.Context, rs []model.EntityResolution) error {
	if len(rs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin resolutions tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := range rs {
		r := &rs[i]
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}

		doc, err := json.Marshal(r)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal resolution")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO entity_resolutions (id, claim_id, artifact_id, org_id, status, doc, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.ClaimID, r.ArtifactID, r.OrganizationID,
			string(r.Status), string(doc), r.CreatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert resolution %s", r.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit resolutions")
}

func (s *SQLiteStore) GetResolution(ctx context.Context, id string) (*model.EntityResolution, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM entity_resolutions WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get resolution %s", id)
	}

	var r model.EntityResolution
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal resolution")
	}
	return &r, nil
}

func (s *SQLiteStore) ListResolutionsByArtifact(ctx context.Context, artifactID string) ([]model.EntityResolution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM entity_resolutions WHERE artifact_id = ? ORDER BY created_at, id`, artifactID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list resolutions")
	}
	defer rows.Close()
	return collectResolutions(rows)
}

func (s *SQLiteStore) UpdateResolution(ctx context.Context, r *model.EntityResolution) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal resolution")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE entity_resolutions SET status = ?, doc = ? WHERE id = ?`,
		string(r.Status), string(doc), r.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update resolution %s", r.ID)
	}
	return checkRowsAffected(res, "resolution", r.ID)
}

func (s *SQLiteStore) ListDisambiguations(ctx context.Context, filter DisambiguationFilter) ([]model.EntityResolution, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT r.doc FROM entity_resolutions r
		 WHERE r.org_id = ? AND r.status = ?`
	args := []any{filter.OrganizationID, string(model.ResolutionNeedsDisambiguation)}
	if filter.CoachUserID != "" {
		query += ` AND r.artifact_id IN (SELECT id FROM artifacts WHERE sender_user_id = ?)`
		args = append(args, filter.CoachUserID)
	}
	query += ` ORDER BY r.created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list disambiguations")
	}
	defer rows.Close()
	return collectResolutions(rows)
}

func (s *SQLiteStore) CreateDrafts(ctx context.Context, ds []model.InsightDraft) error {
	if len(ds) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin drafts tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := range ds {
		d := &ds[i]
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
		d.UpdatedAt = now

		doc, err := json.Marshal(d)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal draft")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO insight_drafts (id, artifact_id, claim_id, org_id, coach_user_id, status, doc, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.ArtifactID, d.ClaimID, d.OrganizationID, d.CoachUserID,
			string(d.Status), string(doc), d.CreatedAt, d.UpdatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert draft %s", d.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit drafts")
}

func (s *SQLiteStore) GetDraft(ctx context.Context, id string) (*model.InsightDraft, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM insight_drafts WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get draft %s", id)
	}

	var d model.InsightDraft
	if err := json.Unmarshal([]byte(doc), &d); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal draft")
	}
	return &d, nil
}

func (s *SQLiteStore) ListDraftsByArtifact(ctx context.Context, artifactID string) ([]model.InsightDraft, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM insight_drafts WHERE artifact_id = ? ORDER BY created_at, id`, artifactID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list drafts")
	}
	defer rows.Close()

	var drafts []model.InsightDraft
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan draft")
		}
		var d model.InsightDraft
		if err := json.Unmarshal([]byte(doc), &d); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal draft")
		}
		drafts = append(drafts, d)
	}
	return drafts, eris.Wrap(rows.Err(), "sqlite: list drafts iterate")
}

func (s *SQLiteStore) ListPendingDrafts(ctx context.Context, orgID, coachUserID string) ([]model.InsightDraft, error) {
	cutoff := time.Now().UTC().Add(-PendingDraftTTL)
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM insight_drafts
		 WHERE org_id = ? AND coach_user_id = ? AND status = ? AND created_at >= ?
		 ORDER BY created_at, id`,
		orgID, coachUserID, string(model.DraftPending), cutoff,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list pending drafts")
	}
	defer rows.Close()

	var drafts []model.InsightDraft
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan draft")
		}
		var d model.InsightDraft
		if err := json.Unmarshal([]byte(doc), &d); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal draft")
		}
		drafts = append(drafts, d)
	}
	return drafts, eris.Wrap(rows.Err(), "sqlite: list pending drafts iterate")
}

func (s *SQLiteStore) UpdateDraft(ctx context.Context, d *model.InsightDraft) error {
	d.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(d)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal draft")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE insight_drafts SET status = ?, doc = ?, updated_at = ? WHERE id = ?`,
		string(d.Status), string(doc), d.UpdatedAt, d.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update draft %s", d.ID)
	}
	return checkRowsAffected(res, "draft", d.ID)
}

func (s *SQLiteStore) GetTrustLevel(ctx context.Context, coachUserID string) (*model.CoachTrustLevel, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM coach_trust_levels WHERE coach_user_id = ?`, coachUserID,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get trust level %s", coachUserID)
	}

	var t model.CoachTrustLevel
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal trust level")
	}
	return &t, nil
}

func (s *SQLiteStore) SaveTrustLevel(ctx context.Context, t *model.CoachTrustLevel) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal trust level")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO coach_trust_levels (coach_user_id, doc) VALUES (?, ?)
		 ON CONFLICT(coach_user_id) DO UPDATE SET doc = excluded.doc`,
		t.CoachUserID, string(doc),
	)
	return eris.Wrap(err, "sqlite: save trust level")
}

func (s *SQLiteStore) GetAlias(ctx context.Context, coachUserID, orgID, rawText string) (*model.CoachPlayerAlias, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT coach_user_id, org_id, raw_text, resolved_entity_id, resolved_entity_name, use_count, last_used_at, created_at
		 FROM coach_player_aliases
		 WHERE coach_user_id = ? AND org_id = ? AND raw_text = ?`,
		coachUserID, orgID, rawText,
	)

	var a model.CoachPlayerAlias
	err := row.Scan(&a.CoachUserID, &a.OrganizationID, &a.RawText,
		&a.ResolvedEntityID, &a.ResolvedEntityName, &a.UseCount, &a.LastUsedAt, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get alias")
	}
	return &a, nil
}

func (s *SQLiteStore) UpsertAlias(ctx context.Context, a *model.CoachPlayerAlias) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO coach_player_aliases
		 (coach_user_id, org_id, raw_text, resolved_entity_id, resolved_entity_name, use_count, last_used_at, created_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		 ON CONFLICT(coach_user_id, org_id, raw_text) DO UPDATE SET
		   resolved_entity_id = excluded.resolved_entity_id,
		   resolved_entity_name = excluded.resolved_entity_name,
		   use_count = use_count + 1,
		   last_used_at = excluded.last_used_at`,
		a.CoachUserID, a.OrganizationID, a.RawText,
		a.ResolvedEntityID, a.ResolvedEntityName, now, now,
	)
	return eris.Wrap(err, "sqlite: upsert alias")
}

func (s *SQLiteStore) CreateReviewEvent(ctx context.Context, e *model.ReviewEvent) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO review_events (id, coach_user_id, org_id, event_type, confidence_score, category, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CoachUserID, e.OrganizationID, string(e.EventType),
		e.ConfidenceScore, e.Category, e.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert review event")
}

func (s *SQLiteStore) ListLegacyNotes(ctx context.Context, filter LegacyNoteFilter) ([]model.LegacyNote, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM legacy_notes ORDER BY created_at, id LIMIT ? OFFSET ?`,
		limit, filter.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list legacy notes")
	}
	defer rows.Close()

	var notes []model.LegacyNote
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan legacy note")
		}
		var n model.LegacyNote
		if err := json.Unmarshal([]byte(doc), &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal legacy note")
		}
		notes = append(notes, n)
	}
	return notes, eris.Wrap(rows.Err(), "sqlite: list legacy notes iterate")
}

func (s *SQLiteStore) CountLegacyNotes(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM legacy_notes`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count legacy notes")
}

// SeedLegacyNote inserts a legacy note record. Live systems read migrated
// data from the old database; this writer exists for local replay testing.
func (s *SQLiteStore) SeedLegacyNote(ctx context.Context, n *model.LegacyNote) error {
	doc, err := json.Marshal(n)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal legacy note")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO legacy_notes (id, doc, created_at) VALUES (?, ?, ?)`,
		n.ID, string(doc), n.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert legacy note")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type scannable interface {
	Scan(dest ...any) error
}

func scanArtifact(row scannable) (*model.Artifact, error) {
	var a model.Artifact
	var orgsJSON string
	var sourceNote sql.NullString

	err := row.Scan(&a.ID, &a.SourceChannel, &a.SenderUserID, &orgsJSON,
		&a.Status, &sourceNote, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(orgsJSON), &a.OrgCandidates); err != nil {
		return nil, eris.Wrap(err, "unmarshal org candidates")
	}
	a.SourceNoteID = sourceNote.String
	return &a, nil
}

func collectResolutions(rows *sql.Rows) ([]model.EntityResolution, error) {
	var rs []model.EntityResolution
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "scan resolution")
		}
		var r model.EntityResolution
		if err := json.Unmarshal([]byte(doc), &r); err != nil {
			return nil, eris.Wrap(err, "unmarshal resolution")
		}
		rs = append(rs, r)
	}
	return rs, eris.Wrap(rows.Err(), "iterate resolutions")
}
