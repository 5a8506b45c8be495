package roster

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/pitchside/voicenotes/internal/match"
)

// SimilarPlayer is one ranked result from a fuzzy player search.
type SimilarPlayer struct {
	Player
	Similarity float64
}

// Searcher ranks directory players by name similarity. The pipeline accepts
// only results at or above its acceptance threshold; returning weaker
// candidates is fine, callers filter.
type Searcher interface {
	FindSimilarPlayers(ctx context.Context, orgID, coachUserID, searchName string, limit int) ([]SimilarPlayer, error)
}

// DirectorySearch implements Searcher by scoring every player in the
// organization directory with the match toolkit. Suits directories up to a
// few thousand players; larger deployments should back this with an indexed
// search service.
type DirectorySearch struct {
	dir Directory
}

// NewDirectorySearch returns a Searcher over the full org directory.
func NewDirectorySearch(dir Directory) *DirectorySearch {
	return &DirectorySearch{dir: dir}
}

// FindSimilarPlayers scores the search name against every player in the
// organization, highest similarity first.
func (s *DirectorySearch) FindSimilarPlayers(ctx context.Context, orgID, _ string, searchName string, limit int) ([]SimilarPlayer, error) {
	if limit <= 0 {
		limit = 5
	}
	players, err := s.dir.AllPlayers(ctx, orgID)
	if err != nil {
		return nil, eris.Wrap(err, "roster: search players")
	}

	results := make([]SimilarPlayer, 0, len(players))
	for _, p := range players {
		score := match.Score(searchName, p.FirstName, p.LastName)
		if score <= 0 {
			continue
		}
		results = append(results, SimilarPlayer{Player: p, Similarity: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
