package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterForCoach(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/orgs/org-1/coaches/coach-1/roster", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"players": []Player{
				{ID: "p-1", FirstName: "Sarah", LastName: "Kelly", FullName: "Sarah Kelly", AgeGroup: "U12", Sport: "hurling"},
				{ID: "p-2", FirstName: "Conor", LastName: "Walsh", FullName: "Conor Walsh"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	players, err := client.RosterForCoach(context.Background(), "org-1", "coach-1")

	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Sarah Kelly", players[0].FullName)
	assert.Equal(t, "U12", players[0].AgeGroup)
}

func TestApplyInsight(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/players/p-1/insights", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var rec InsightRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		assert.Equal(t, "skill_rating", rec.Category)
		assert.InDelta(t, 0.95, rec.ConfidenceScore, 1e-9)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status":"recorded"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	err := client.ApplyInsight(context.Background(), InsightRecord{
		InsightID:       "d-1",
		PlayerID:        "p-1",
		Category:        "skill_rating",
		Title:           "Tackling improved",
		ConfidenceScore: 0.95,
	})

	require.NoError(t, err)
}

func TestSendMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "coach-1", body["user_id"])
		assert.NotEmpty(t, body["text"])
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	require.NoError(t, client.SendMessage(context.Background(), "coach-1", "Voice note processed."))
}

func TestFetchMedia(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/artifacts/a-1/media", r.URL.Path)
		w.Header().Set("Content-Type", "audio/ogg")
		w.Write([]byte("OggS...."))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	media, err := client.FetchMedia(context.Background(), "a-1")

	require.NoError(t, err)
	assert.Equal(t, "audio/ogg", media.ContentType)
	assert.Equal(t, []byte("OggS...."), media.Data)
}

func TestRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"players": []Player{{ID: "p-1"}}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	players, err := client.AllPlayers(context.Background(), "org-1")

	require.NoError(t, err)
	assert.Len(t, players, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNonRetryableErrorSurfaces(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad-key")
	_, err := client.AllPlayers(context.Background(), "org-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, int32(1), calls.Load())
}
