package filter

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/s0up4200/moviecat/catalog"
)

// titleIndex implements sahilm/fuzzy.Source over lowercase movie titles
type titleIndex []string

func (idx titleIndex) String(i int) string { return idx[i] }

func (idx titleIndex) Len() int { return len(idx) }

// Search ranks movies by how well their title fuzzily matches query, best
// match first. Movies that do not match are dropped. An empty query returns
// the input unchanged.
func Search(query string, movies []catalog.Movie) []catalog.Movie {
	query = strings.TrimSpace(query)
	if query == "" {
		return movies
	}

	idx := make(titleIndex, len(movies))
	for i, m := range movies {
		idx[i] = strings.ToLower(m.Title)
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), idx)

	out := make([]catalog.Movie, 0, len(matches))
	for _, match := range matches {
		out = append(out, movies[match.Index])
	}
	return out
}
