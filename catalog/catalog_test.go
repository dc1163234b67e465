package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestCategories(t *testing.T) {
	assert.Equal(t, []Category{Popular, TopRated, Revenue, ReleaseDate}, Categories())

	// callers must not be able to reorder the shared list
	cats := Categories()
	cats[0] = ReleaseDate
	assert.Equal(t, Popular, Categories()[0])
}

func TestCategoryAttributes(t *testing.T) {
	tests := []struct {
		category   Category
		sortKey    string
		display    string
		slug       string
		minRevenue int64
	}{
		{Popular, "popularity.desc", "Popular", "popular", 0},
		{TopRated, "vote_average.desc", "Top Rated", "top_rated", 0},
		{Revenue, "revenue.desc", "Revenue", "revenue", 1_000_000},
		{ReleaseDate, "release_date.desc", "Release Date", "release_date", 0},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			assert.True(t, tt.category.Valid())
			assert.Equal(t, tt.sortKey, tt.category.SortKey())
			assert.Equal(t, tt.display, tt.category.DisplayName())
			assert.Equal(t, tt.slug, tt.category.String())
			assert.Equal(t, tt.minRevenue, tt.category.MinRevenue())
		})
	}

	assert.False(t, Category(42).Valid())
	assert.Equal(t, "", Category(42).SortKey())
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{input: "popular", want: Popular},
		{input: "TOP_RATED", want: TopRated},
		{input: "top-rated", want: TopRated},
		{input: "Top Rated", want: TopRated},
		{input: "revenue.desc", want: Revenue},
		{input: " release_date ", want: ReleaseDate},
		{input: "trending", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownCategory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoviePresentation(t *testing.T) {
	movie := Movie{
		ID:           7,
		Title:        "Test Movie",
		PosterPath:   "/poster.jpg",
		BackdropPath: "/backdrop.jpg",
		ReleaseDate:  "2024-03-15",
		VoteAverage:  7.46,
		Revenue:      int64Ptr(1234567),
	}

	assert.Equal(t, "https://image.tmdb.org/t/p/w500/poster.jpg", movie.PosterURL())
	assert.Equal(t, "https://image.tmdb.org/t/p/w780/backdrop.jpg", movie.BackdropURL())
	assert.Equal(t, "7.5", movie.FormattedRating())
	assert.Equal(t, "2024", movie.ReleaseYear())
	assert.Equal(t, 2024, movie.Year())
	assert.Equal(t, "$1,234,567", movie.FormattedRevenue())

	t.Run("missing optional fields", func(t *testing.T) {
		bare := Movie{ID: 8, ReleaseDate: "not-a-date"}
		assert.Empty(t, bare.PosterURL())
		assert.Empty(t, bare.BackdropURL())
		assert.Empty(t, bare.ReleaseYear())
		assert.Zero(t, bare.Year())
		assert.Empty(t, bare.FormattedRevenue())

		bare.Revenue = int64Ptr(0)
		assert.Empty(t, bare.FormattedRevenue())
	})
}

func TestPageHasMore(t *testing.T) {
	assert.True(t, Page{Number: 2, TotalPages: 5}.HasMore())
	assert.False(t, Page{Number: 5, TotalPages: 5}.HasMore())
	assert.False(t, Page{Number: 6, TotalPages: 5}.HasMore())
	assert.False(t, Page{Number: 1, TotalPages: 0}.HasMore())
}

func TestDedupe(t *testing.T) {
	in := []Movie{{ID: 1, Title: "first"}, {ID: 2}, {ID: 1, Title: "second"}, {ID: 3}, {ID: 2}}
	out := Dedupe(in)

	require.Len(t, out, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{out[0].ID, out[1].ID, out[2].ID})
	assert.Equal(t, "first", out[0].Title)
}

func TestPrefixAndIDs(t *testing.T) {
	movies := []Movie{{ID: 1}, {ID: 2}, {ID: 3}}

	assert.Len(t, Prefix(movies, 2), 2)
	assert.Len(t, Prefix(movies, 10), 3)
	assert.Empty(t, Prefix(movies, -1))

	assert.True(t, SameIDs(IDs(movies), IDs([]Movie{{ID: 3}, {ID: 2}, {ID: 1}})))
	assert.False(t, SameIDs(IDs(movies), IDs([]Movie{{ID: 1}, {ID: 2}})))
	assert.False(t, SameIDs(IDs(movies), IDs([]Movie{{ID: 1}, {ID: 2}, {ID: 4}})))
	assert.True(t, SameIDs(IDs(nil), IDs([]Movie{})))
}

func TestConsoleFormatter(t *testing.T) {
	f := NewConsoleFormatter()
	movies := []Movie{
		{ID: 1, Title: "Alpha", ReleaseDate: "2020-01-01", VoteAverage: 8, PosterPath: "/a.jpg"},
		{ID: 2, Title: "Beta", VoteAverage: 6.3, Revenue: int64Ptr(2_000_000)},
	}

	out := f.FormatCategory(Popular, movies, FormatOptions{})
	assert.Contains(t, out, "Popular (2):")
	assert.Contains(t, out, "├── Alpha (2020)")
	assert.Contains(t, out, "╰── Beta")
	assert.NotContains(t, out, "Votes:")

	detailed := f.FormatCategory(Popular, movies, FormatOptions{ShowDetails: true, ShowURLs: true})
	assert.Contains(t, detailed, "Revenue: $2,000,000")
	assert.Contains(t, detailed, "Poster: https://image.tmdb.org/t/p/w500/a.jpg")

	empty := f.FormatCategory(TopRated, nil, FormatOptions{})
	assert.Contains(t, empty, "Top Rated (0):")
	assert.Contains(t, empty, "No movies found")

	detail := f.FormatMovieDetail(movies[1])
	assert.Contains(t, detail, "Beta")
	assert.Contains(t, detail, "⭐ 6.3")
	assert.Contains(t, detail, "Revenue:    $2,000,000")
}
