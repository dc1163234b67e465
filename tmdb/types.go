package tmdb

import "github.com/s0up4200/moviecat/catalog"

// discoverResponse is the /discover/movie payload
type discoverResponse struct {
	Page         int          `json:"page"`
	Results      []movieEntry `json:"results"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
}

// movieEntry is one result row. Nullable fields are pointers so that JSON
// null and absent decode the same way.
type movieEntry struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	Revenue      *int64  `json:"revenue"`
	GenreIDs     []int   `json:"genre_ids"`
	Adult        bool    `json:"adult"`
	Video        bool    `json:"video"`
}

// errorResponse is the body TMDB sends with most non-2xx statuses
type errorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}

func (e movieEntry) toMovie() catalog.Movie {
	m := catalog.Movie{
		ID:          e.ID,
		Title:       e.Title,
		Overview:    e.Overview,
		ReleaseDate: e.ReleaseDate,
		VoteAverage: e.VoteAverage,
		VoteCount:   e.VoteCount,
		Popularity:  e.Popularity,
		Revenue:     e.Revenue,
	}
	if e.PosterPath != nil {
		m.PosterPath = *e.PosterPath
	}
	if e.BackdropPath != nil {
		m.BackdropPath = *e.BackdropPath
	}
	return m
}

func (r discoverResponse) toPage() catalog.Page {
	movies := make([]catalog.Movie, 0, len(r.Results))
	for _, entry := range r.Results {
		movies = append(movies, entry.toMovie())
	}
	return catalog.Page{
		Number:       r.Page,
		Movies:       movies,
		TotalPages:   r.TotalPages,
		TotalResults: r.TotalResults,
	}
}
