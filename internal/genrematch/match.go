package genrematch

import (
	"fmt"
	"math"
	"sort"

	"github.com/ca-srg/goodreader/internal/types"
)

const (
	// AutoPickCutoff is the minimum score for picking a genre without asking.
	AutoPickCutoff = 0.90
	// AutoPickMargin is how far the best score must lead the runner-up.
	AutoPickMargin = 0.07
	// MaxSuggestions caps the candidate list offered on an ambiguous match.
	MaxSuggestions = 10
)

// Candidate is a genre with its similarity to the query.
type Candidate struct {
	Genre types.Genre
	Score float64
}

// Label renders the candidate the way it is offered to the user.
func (c Candidate) Label() string {
	return fmt.Sprintf("%s  (match %d%%)", c.Genre.Name, int(math.Round(c.Score*100)))
}

// Result is the outcome of matching a query against the known genres.
// Pick is nil when the match was ambiguous; Suggestions then holds the ranked candidates.
type Result struct {
	Pick        *types.Genre
	Exact       bool
	Auto        bool
	Suggestions []Candidate
}

// Rank scores every genre against the query slug, best first.
func Rank(query string, genres []types.Genre) []Candidate {
	key := Slugify(query)
	ranked := make([]Candidate, 0, len(genres))
	for _, g := range genres {
		ranked = append(ranked, Candidate{Genre: g, Score: Ratio(key, genreSlug(g))})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Match picks a genre for the query: an exact slug wins, a clear fuzzy winner is
// picked automatically, and anything else yields suggestions.
func Match(query string, genres []types.Genre) Result {
	if len(genres) == 0 {
		return Result{}
	}

	key := Slugify(query)
	for i := range genres {
		if genreSlug(genres[i]) == key {
			pick := genres[i]
			return Result{Pick: &pick, Exact: true}
		}
	}

	ranked := Rank(query, genres)
	best := ranked[0].Score
	second := 0.0
	if len(ranked) > 1 {
		second = ranked[1].Score
	}

	if best >= AutoPickCutoff && best-second >= AutoPickMargin {
		pick := ranked[0].Genre
		return Result{Pick: &pick, Auto: true}
	}

	if len(ranked) > MaxSuggestions {
		ranked = ranked[:MaxSuggestions]
	}
	return Result{Suggestions: ranked}
}

func genreSlug(g types.Genre) string {
	if g.Slug != "" {
		return g.Slug
	}
	return Slugify(g.Name)
}
