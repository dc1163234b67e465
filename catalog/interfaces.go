package catalog

import "context"

// Fetcher retrieves one page of a category from the remote catalog.
// Implementations must be safe for concurrent use across categories and pages.
type Fetcher interface {
	FetchPage(ctx context.Context, category Category, page int) (Page, error)
}

// Store persists a bounded list of movies per category.
// Categories are isolated: saving one never affects another.
type Store interface {
	// Save overwrites the category's entry with at most the store's limit of
	// leading movies
	Save(category Category, movies []Movie) error

	// Load returns the saved movies in order, or an empty slice when nothing
	// usable is stored
	Load(category Category) []Movie

	// Clear removes every category's entry
	Clear() error

	// Count returns len(Load(category))
	Count(category Category) int
}

// MovieFormatter renders movies for terminal output
type MovieFormatter interface {
	FormatCategory(category Category, movies []Movie, options FormatOptions) string
	FormatMovieDetail(movie Movie) string
}

// FormatOptions contains options for formatting output
type FormatOptions struct {
	ShowDetails bool
	ShowURLs    bool
}
