package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/pitchside/voicenotes/internal/db"
	"github.com/pitchside/voicenotes/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hottest store operations.
var preparedStatements = map[string]string{
	"get_artifact":           `SELECT id, source_channel, sender_user_id, org_candidates, status, source_note_id, created_at, updated_at FROM artifacts WHERE id = $1`,
	"update_artifact_status": `UPDATE artifacts SET status = $1, updated_at = $2 WHERE id = $3`,
	"get_transcript":         `SELECT doc FROM transcripts WHERE artifact_id = $1`,
	"list_claims":            `SELECT doc FROM claims WHERE artifact_id = $1 ORDER BY seq, created_at, id`,
	"update_claim":           `UPDATE claims SET status = $1, doc = $2, updated_at = $3 WHERE id = $4`,
	"list_resolutions":       `SELECT doc FROM entity_resolutions WHERE artifact_id = $1 ORDER BY created_at, id`,
	"update_resolution":      `UPDATE entity_resolutions SET status = $1, doc = $2 WHERE id = $3`,
	"list_drafts":            `SELECT doc FROM insight_drafts WHERE artifact_id = $1 ORDER BY created_at, id`,
	"update_draft":           `UPDATE insight_drafts SET status = $1, doc = $2, updated_at = $3 WHERE id = $4`,
	"get_trust_level":        `SELECT doc FROM coach_trust_levels WHERE coach_user_id = $1`,
	"get_alias":              `SELECT coach_user_id, org_id, raw_text, resolved_entity_id, resolved_entity_name, use_count, last_used_at, created_at FROM coach_player_aliases WHERE coach_user_id = $1 AND org_id = $2 AND raw_text = $3`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS artifacts (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	source_channel TEXT NOT NULL,
	sender_user_id TEXT NOT NULL,
	org_candidates JSONB NOT NULL DEFAULT '[]',
	status         TEXT NOT NULL DEFAULT 'received',
	source_note_id TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS transcripts (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	artifact_id TEXT NOT NULL UNIQUE REFERENCES artifacts(id),
	doc         JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS claims (
	id            TEXT PRIMARY KEY,
	artifact_id   TEXT NOT NULL REFERENCES artifacts(id),
	org_id        TEXT NOT NULL,
	coach_user_id TEXT NOT NULL,
	seq           BIGINT NOT NULL DEFAULT 0,
	status        TEXT NOT NULL,
	doc           JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS entity_resolutions (
	id          TEXT PRIMARY KEY,
	claim_id    TEXT NOT NULL REFERENCES claims(id),
	artifact_id TEXT NOT NULL REFERENCES artifacts(id),
	org_id      TEXT NOT NULL,
	status      TEXT NOT NULL,
	doc         JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS insight_drafts (
	id            TEXT PRIMARY KEY,
	artifact_id   TEXT NOT NULL REFERENCES artifacts(id),
	claim_id      TEXT NOT NULL REFERENCES claims(id),
	org_id        TEXT NOT NULL,
	coach_user_id TEXT NOT NULL,
	status        TEXT NOT NULL,
	doc           JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS coach_trust_levels (
	coach_user_id TEXT PRIMARY KEY,
	doc           JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS coach_player_aliases (
	coach_user_id        TEXT NOT NULL,
	org_id               TEXT NOT NULL,
	raw_text             TEXT NOT NULL,
	resolved_entity_id   TEXT NOT NULL,
	resolved_entity_name TEXT NOT NULL,
	use_count            INTEGER NOT NULL DEFAULT 1,
	last_used_at         TIMESTAMPTZ NOT NULL,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (coach_user_id, org_id, raw_text)
);

CREATE TABLE IF NOT EXISTS review_events (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	coach_user_id    TEXT NOT NULL,
	org_id           TEXT NOT NULL,
	event_type       TEXT NOT NULL,
	confidence_score DOUBLE PRECISION NOT NULL,
	category         TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS legacy_notes (
	id         TEXT PRIMARY KEY,
	doc        JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_artifacts_status ON artifacts(status);
CREATE INDEX IF NOT EXISTS idx_artifacts_source_note ON artifacts(source_note_id);
CREATE INDEX IF NOT EXISTS idx_claims_artifact ON claims(artifact_id);
CREATE INDEX IF NOT EXISTS idx_resolutions_artifact ON entity_resolutions(artifact_id);
CREATE INDEX IF NOT EXISTS idx_resolutions_org_status ON entity_resolutions(org_id, status, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_drafts_artifact ON insight_drafts(artifact_id);
CREATE INDEX IF NOT EXISTS idx_drafts_coach_status ON insight_drafts(org_id, coach_user_id, status, created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateArtifact(ctx context.Context, a *model.Artifact) error {
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
		return eris.Wrap(err, "postgres: marshal org candidates")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO artifacts (id, source_channel, sender_user_id, org_candidates, status, source_note_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, string(a.SourceChannel), a.SenderUserID, orgsJSON,
		string(a.Status), nullString(a.SourceNoteID), a.CreatedAt, a.UpdatedAt,
	)
	return eris.Wrap(err, "postgres: insert artifact")
}

func (s *PostgresStore) GetArtifact(ctx context.Context, id string) (*model.Artifact, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, source_channel, sender_user_id, org_candidates, status, source_note_id, created_at, updated_at
		 FROM artifacts WHERE id = $1`, id)
	a, err := scanPgArtifact(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get artifact %s", id)
	}
	return a, nil
}

func (s *PostgresStore) GetArtifactBySourceNote(ctx context.Context, sourceNoteID string) (*model.Artifact, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, source_channel, sender_user_id, org_candidates, status, source_note_id, created_at, updated_at
		 FROM artifacts WHERE source_note_id = $1 LIMIT 1`, sourceNoteID)
	a, err := scanPgArtifact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get artifact by source note %s", sourceNoteID)
	}
	return a, nil
}

func (s *PostgresStore) UpdateArtifactStatus(ctx context.Context, id string, status model.ArtifactStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE artifacts SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update artifact status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("artifact not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) CreateTranscript(ctx context.Context, t *model.Transcript) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	doc, err := json.Marshal(t)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal transcript")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO transcripts (id, artifact_id, doc, created_at) VALUES ($1, $2, $3, $4)`,
		t.ID, t.ArtifactID, doc, t.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert transcript")
}

func (s *PostgresStore) GetTranscript(ctx context.Context, artifactID string) (*model.Transcript, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM transcripts WHERE artifact_id = $1`, artifactID,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get transcript for artifact %s", artifactID)
	}

	var t model.Transcript
	if err := json.Unmarshal(doc, &t); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal transcript")
	}
	return &t, nil
}

// CreateClaims bulk-inserts via COPY: one note can produce dozens of claims.
func (s *PostgresStore) CreateClaims(ctx context.Context, claims []model.Claim) error {
	if len(claims) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(claims))
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
			return eris.Wrap(err, "postgres: marshal claim")
		}
		rows = append(rows, []any{
			c.ID, c.ArtifactID, c.OrganizationID, c.CoachUserID, c.Sequence,
			string(c.Status), doc, c.CreatedAt, c.UpdatedAt,
		})
	}

	_, err := db.CopyFrom(ctx, s.pool, "claims",
		[]string{"id", "artifact_id", "org_id", "coach_user_id", "seq", "status", "doc", "created_at", "updated_at"},
		rows)
	return eris.Wrap(err, "postgres: copy claims")
}

func (s *PostgresStore) GetClaim(ctx context.Context, id string) (*model.Claim, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM claims WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get claim %s", id)
	}

	var c model.Claim
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal claim")
	}
	return &c, nil
}

func (s *PostgresStore) ListClaimsByArtifact(ctx context.Context, artifactID string) ([]model.Claim, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM claims WHERE artifact_id = $1 ORDER BY seq, created_at, id`, artifactID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list claims")
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "postgres: scan claim")
		}
		var c model.Claim
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal claim")
		}
		claims = append(claims, c)
	}
	return claims, eris.Wrap(rows.Err(), "postgres: list claims iterate")
}

func (s *PostgresStore) UpdateClaim(ctx context.Context, c *model.Claim) error {
	c.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal claim")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE claims SET status = $1, doc = $2, updated_at = $3 WHERE id = $4`,
		string(c.Status), doc, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update claim %s", c.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("claim not found: %s", c.ID)
	}
	return nil
}

func (s *PostgresStore) CreateResolutions(ctx context.Context, rs []model.EntityResolution) error {
	if len(rs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(rs))
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
			return eris.Wrap(err, "postgres: marshal resolution")
		}
		rows = append(rows, []any{
			r.ID, r.ClaimID, r.ArtifactID, r.OrganizationID,
			string(r.Status), doc, r.CreatedAt,
		})
	}

	_, err := db.CopyFrom(ctx, s.pool, "entity_resolutions",
		[]string{"id", "claim_id", "artifact_id", "org_id", "status", "doc", "created_at"},
		rows)
	return eris.Wrap(err, "postgres: copy resolutions")
}

func (s *PostgresStore) GetResolution(ctx context.Context, id string) (*model.EntityResolution, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM entity_resolutions WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get resolution %s", id)
	}

	var r model.EntityResolution
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal resolution")
	}
	return &r, nil
}

func (s *PostgresStore) ListResolutionsByArtifact(ctx context.Context, artifactID string) ([]model.EntityResolution, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM entity_resolutions WHERE artifact_id = $1 ORDER BY created_at, id`, artifactID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list resolutions")
	}
	defer rows.Close()
	return collectPgResolutions(rows)
}

func (s *PostgresStore) UpdateResolution(ctx context.Context, r *model.EntityResolution) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal resolution")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE entity_resolutions SET status = $1, doc = $2 WHERE id = $3`,
		string(r.Status), doc, r.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update resolution %s", r.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("resolution not found: %s", r.ID)
	}
	return nil
}

func (s *PostgresStore) ListDisambiguations(ctx context.Context, filter DisambiguationFilter) ([]model.EntityResolution, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT r.doc FROM entity_resolutions r
		 WHERE r.org_id = $1 AND r.status = $2`
	args := []any{filter.OrganizationID, string(model.ResolutionNeedsDisambiguation)}
	if filter.CoachUserID != "" {
		query += ` AND r.artifact_id IN (SELECT id FROM artifacts WHERE sender_user_id = $3)
		 ORDER BY r.created_at DESC LIMIT $4`
		args = append(args, filter.CoachUserID)
	} else {
		query += ` ORDER BY r.created_at DESC LIMIT $3`
	}
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list disambiguations")
	}
	defer rows.Close()
	return collectPgResolutions(rows)
}

func (s *PostgresStore) CreateDrafts(ctx context.Context, ds []model.InsightDraft) error {
	if len(ds) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(ds))
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
			return eris.Wrap(err, "postgres: marshal draft")
		}
		rows = append(rows, []any{
			d.ID, d.ArtifactID, d.ClaimID, d.OrganizationID, d.CoachUserID,
			string(d.Status), doc, d.CreatedAt, d.UpdatedAt,
		})
	}

	_, err := db.CopyFrom(ctx, s.pool, "insight_drafts",
		[]string{"id", "artifact_id", "claim_id", "org_id", "coach_user_id", "status", "doc", "created_at", "updated_at"},
		rows)
	return eris.Wrap(err, "postgres: copy drafts")
}

func (s *PostgresStore) GetDraft(ctx context.Context, id string) (*model.InsightDraft, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM insight_drafts WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get draft %s", id)
	}

	var d model.InsightDraft
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal draft")
	}
	return &d, nil
}

func (s *PostgresStore) ListDraftsByArtifact(ctx context.Context, artifactID string) ([]model.InsightDraft, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM insight_drafts WHERE artifact_id = $1 ORDER BY created_at, id`, artifactID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list drafts")
	}
	defer rows.Close()

	var drafts []model.InsightDraft
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "postgres: scan draft")
		}
		var d model.InsightDraft
		if err := json.Unmarshal(doc, &d); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal draft")
		}
		drafts = append(drafts, d)
	}
	return drafts, eris.Wrap(rows.Err(), "postgres: list drafts iterate")
}

func (s *PostgresStore) ListPendingDrafts(ctx context.Context, orgID, coachUserID string) ([]model.InsightDraft, error) {
	cutoff := time.Now().UTC().Add(-PendingDraftTTL)
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM insight_drafts
		 WHERE org_id = $1 AND coach_user_id = $2 AND status = $3 AND created_at >= $4
		 ORDER BY created_at, id`,
		orgID, coachUserID, string(model.DraftPending), cutoff,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list pending drafts")
	}
	defer rows.Close()

	var drafts []model.InsightDraft
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "postgres: scan draft")
		}
		var d model.InsightDraft
		if err := json.Unmarshal(doc, &d); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal draft")
		}
		drafts = append(drafts, d)
	}
	return drafts, eris.Wrap(rows.Err(), "postgres: list pending drafts iterate")
}

func (s *PostgresStore) UpdateDraft(ctx context.Context, d *model.InsightDraft) error {
	d.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(d)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal draft")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE insight_drafts SET status = $1, doc = $2, updated_at = $3 WHERE id = $4`,
		string(d.Status), doc, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update draft %s", d.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("draft not found: %s", d.ID)
	}
	return nil
}

func (s *PostgresStore) GetTrustLevel(ctx context.Context, coachUserID string) (*model.CoachTrustLevel, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM coach_trust_levels WHERE coach_user_id = $1`, coachUserID,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get trust level %s", coachUserID)
	}

	var t model.CoachTrustLevel
	if err := json.Unmarshal(doc, &t); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal trust level")
	}
	return &t, nil
}

func (s *PostgresStore) SaveTrustLevel(ctx context.Context, t *model.CoachTrustLevel) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal trust level")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO coach_trust_levels (coach_user_id, doc) VALUES ($1, $2)
		 ON CONFLICT (coach_user_id) DO UPDATE SET doc = excluded.doc`,
		t.CoachUserID, doc,
	)
	return eris.Wrap(err, "postgres: save trust level")
}

func (s *PostgresStore) GetAlias(ctx context.Context, coachUserID, orgID, rawText string) (*model.CoachPlayerAlias, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT coach_user_id, org_id, raw_text, resolved_entity_id, resolved_entity_name, use_count, last_used_at, created_at
		 FROM coach_player_aliases
		 WHERE coach_user_id = $1 AND org_id = $2 AND raw_text = $3`,
		coachUserID, orgID, rawText,
	)

	var a model.CoachPlayerAlias
	err := row.Scan(&a.CoachUserID, &a.OrganizationID, &a.RawText,
		&a.ResolvedEntityID, &a.ResolvedEntityName, &a.UseCount, &a.LastUsedAt, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get alias")
	}
	return &a, nil
}

func (s *PostgresStore) UpsertAlias(ctx context.Context, a *model.CoachPlayerAlias) error {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO coach_player_aliases
		 (coach_user_id, org_id, raw_text, resolved_entity_id, resolved_entity_name, use_count, last_used_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, 1, $6, $7)
		 ON CONFLICT (coach_user_id, org_id, raw_text) DO UPDATE SET
		   resolved_entity_id = excluded.resolved_entity_id,
		   resolved_entity_name = excluded.resolved_entity_name,
		   use_count = coach_player_aliases.use_count + 1,
		   last_used_at = excluded.last_used_at`,
		a.CoachUserID, a.OrganizationID, a.RawText,
		a.ResolvedEntityID, a.ResolvedEntityName, now, now,
	)
	return eris.Wrap(err, "postgres: upsert alias")
}

func (s *PostgresStore) CreateReviewEvent(ctx context.Context, e *model.ReviewEvent) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO review_events (id, coach_user_id, org_id, event_type, confidence_score, category, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.CoachUserID, e.OrganizationID, string(e.EventType),
		e.ConfidenceScore, e.Category, e.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert review event")
}

func (s *PostgresStore) ListLegacyNotes(ctx context.Context, filter LegacyNoteFilter) ([]model.LegacyNote, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM legacy_notes ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		limit, filter.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list legacy notes")
	}
	defer rows.Close()

	var notes []model.LegacyNote
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "postgres: scan legacy note")
		}
		var n model.LegacyNote
		if err := json.Unmarshal(doc, &n); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal legacy note")
		}
		notes = append(notes, n)
	}
	return notes, eris.Wrap(rows.Err(), "postgres: list legacy notes iterate")
}

func (s *PostgresStore) CountLegacyNotes(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM legacy_notes`).Scan(&n)
	return n, eris.Wrap(err, "postgres: count legacy notes")
}

// helpers

func scanPgArtifact(row pgx.Row) (*model.Artifact, error) {
	var a model.Artifact
	var orgsJSON []byte
	var sourceNote *string

	err := row.Scan(&a.ID, &a.SourceChannel, &a.SenderUserID, &orgsJSON,
		&a.Status, &sourceNote, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(orgsJSON, &a.OrgCandidates); err != nil {
		return nil, eris.Wrap(err, "unmarshal org candidates")
	}
	if sourceNote != nil {
		a.SourceNoteID = *sourceNote
	}
	return &a, nil
}

func collectPgResolutions(rows pgx.Rows) ([]model.EntityResolution, error) {
	var rs []model.EntityResolution
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "scan resolution")
		}
		var r model.EntityResolution
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, eris.Wrap(err, "unmarshal resolution")
		}
		rs = append(rs, r)
	}
	return rs, eris.Wrap(rows.Err(), "iterate resolutions")
}
