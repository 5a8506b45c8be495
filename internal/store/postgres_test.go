package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchside/voicenotes/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_GetArtifact_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM artifacts WHERE id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetArtifact(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get artifact")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetArtifactBySourceNote_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM artifacts WHERE source_note_id = \$1`).
		WithArgs("legacy-99").
		WillReturnError(pgx.ErrNoRows)

	a, err := s.GetArtifactBySourceNote(context.Background(), "legacy-99")
	require.NoError(t, err)
	assert.Nil(t, a)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateArtifactStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE artifacts SET status = \$1`).
		WithArgs("failed", pgxmock.AnyArg(), "art-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateArtifactStatus(context.Background(), "art-1", model.ArtifactFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "artifact not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetTrustLevel_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT doc FROM coach_trust_levels`).
		WithArgs("coach-1").
		WillReturnError(pgx.ErrNoRows)

	trust, err := s.GetTrustLevel(context.Background(), "coach-1")
	require.NoError(t, err)
	assert.Nil(t, trust)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateClaims_UsesCopy(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"claims"},
		[]string{"id", "artifact_id", "org_id", "coach_user_id", "seq", "status", "doc", "created_at", "updated_at"}).
		WillReturnResult(2)

	claims := []model.Claim{
		{ArtifactID: "art-1", SourceText: "a", Topic: model.TopicTodo, Title: "One",
			Status: model.ClaimExtracted, OrganizationID: "org-1", CoachUserID: "coach-1"},
		{ArtifactID: "art-1", SourceText: "b", Topic: model.TopicTodo, Title: "Two",
			Status: model.ClaimExtracted, OrganizationID: "org-1", CoachUserID: "coach-1"},
	}
	err := s.CreateClaims(context.Background(), claims)
	require.NoError(t, err)
	assert.NotEmpty(t, claims[0].ID)
	assert.Equal(t, 1, claims[0].Sequence)
	assert.Equal(t, 2, claims[1].Sequence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertAlias(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO coach_player_aliases`).
		WithArgs("coach-1", "org-1", "neeve", "p1", "Niamh Kelly", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.UpsertAlias(context.Background(), &model.CoachPlayerAlias{
		CoachUserID:        "coach-1",
		OrganizationID:     "org-1",
		RawText:            "neeve",
		ResolvedEntityID:   "p1",
		ResolvedEntityName: "Niamh Kelly",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListDisambiguations_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT r\.doc FROM entity_resolutions r`).
		WithArgs("org-1", "needs_disambiguation", 50).
		WillReturnRows(pgxmock.NewRows([]string{"doc"}))

	rs, err := s.ListDisambiguations(context.Background(), DisambiguationFilter{OrganizationID: "org-1"})
	require.NoError(t, err)
	assert.Empty(t, rs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListDisambiguations_CoachScoped(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id FROM artifacts WHERE sender_user_id = \$3`).
		WithArgs("org-1", "needs_disambiguation", "coach-1", 10).
		WillReturnRows(pgxmock.NewRows([]string{"doc"}))

	rs, err := s.ListDisambiguations(context.Background(), DisambiguationFilter{
		OrganizationID: "org-1",
		CoachUserID:    "coach-1",
		Limit:          10,
	})
	require.NoError(t, err)
	assert.Empty(t, rs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
