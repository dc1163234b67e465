package catalog

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// OfflineCacheLimit is the maximum number of movies persisted per category
const OfflineCacheLimit = 40

const (
	posterBaseURL   = "https://image.tmdb.org/t/p/w500"
	backdropBaseURL = "https://image.tmdb.org/t/p/w780"
	releaseLayout   = "2006-01-02"
)

// Movie is a single catalog entry. Identity is the ID; the remaining fields
// are whatever the last fetch reported.
type Movie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	Revenue      *int64  `json:"revenue,omitempty"`
}

// PosterURL returns the full poster image URL, or "" when there is no poster
func (m Movie) PosterURL() string {
	if m.PosterPath == "" {
		return ""
	}
	return posterBaseURL + m.PosterPath
}

// BackdropURL returns the full backdrop image URL, or "" when there is no backdrop
func (m Movie) BackdropURL() string {
	if m.BackdropPath == "" {
		return ""
	}
	return backdropBaseURL + m.BackdropPath
}

// FormattedRating returns the vote average with one decimal place
func (m Movie) FormattedRating() string {
	return fmt.Sprintf("%.1f", m.VoteAverage)
}

// Released parses the release date. ok is false for empty or malformed dates.
func (m Movie) Released() (t time.Time, ok bool) {
	if m.ReleaseDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(releaseLayout, m.ReleaseDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ReleaseYear returns the four-digit release year, or "" when unknown
func (m Movie) ReleaseYear() string {
	t, ok := m.Released()
	if !ok {
		return ""
	}
	return t.Format("2006")
}

// Year returns the release year as an int, 0 when unknown
func (m Movie) Year() int {
	t, ok := m.Released()
	if !ok {
		return 0
	}
	return t.Year()
}

// RevenueValue returns the revenue or 0 when absent
func (m Movie) RevenueValue() int64 {
	if m.Revenue == nil {
		return 0
	}
	return *m.Revenue
}

// FormattedRevenue returns revenue as whole US dollars ("$1,234,567"), or ""
// when revenue is absent or not positive
func (m Movie) FormattedRevenue() string {
	if m.RevenueValue() <= 0 {
		return ""
	}
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprintf("$%d", m.RevenueValue())
}

// Page is one server-paginated batch of movies for a category
type Page struct {
	Number       int
	Movies       []Movie
	TotalPages   int
	TotalResults int
}

// HasMore reports whether further pages exist after this one
func (p Page) HasMore() bool {
	return p.Number < p.TotalPages
}

// IDs returns the set of movie IDs in movies
func IDs(movies []Movie) map[int]struct{} {
	ids := make(map[int]struct{}, len(movies))
	for _, m := range movies {
		ids[m.ID] = struct{}{}
	}
	return ids
}

// SameIDs reports whether a and b contain exactly the same set of IDs
func SameIDs(a, b map[int]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}

// Dedupe returns movies with later duplicates of an ID removed, keeping order
func Dedupe(movies []Movie) []Movie {
	seen := make(map[int]struct{}, len(movies))
	out := make([]Movie, 0, len(movies))
	for _, m := range movies {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}

// Prefix returns at most n leading movies of movies
func Prefix(movies []Movie, n int) []Movie {
	if n < 0 {
		n = 0
	}
	if len(movies) <= n {
		return movies
	}
	return movies[:n]
}
