package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned by ParseCategory for unrecognised names
var ErrUnknownCategory = errors.New("unknown category")

// Category is a named sort/filter view over the catalog
type Category int

// Declaration order is display order.
const (
	Popular Category = iota
	TopRated
	Revenue
	ReleaseDate
)

// revenueFloor is the minimum revenue for movies listed under Revenue
const revenueFloor = 1_000_000

var allCategories = []Category{Popular, TopRated, Revenue, ReleaseDate}

// Categories returns every category in declaration order
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// SortKey returns the discovery sort_by value for the category
func (c Category) SortKey() string {
	switch c {
	case Popular:
		return "popularity.desc"
	case TopRated:
		return "vote_average.desc"
	case Revenue:
		return "revenue.desc"
	case ReleaseDate:
		return "release_date.desc"
	default:
		return ""
	}
}

// DisplayName returns the human-readable category name
func (c Category) DisplayName() string {
	switch c {
	case Popular:
		return "Popular"
	case TopRated:
		return "Top Rated"
	case Revenue:
		return "Revenue"
	case ReleaseDate:
		return "Release Date"
	default:
		return "Unknown"
	}
}

// String returns the short slug used on the command line
func (c Category) String() string {
	switch c {
	case Popular:
		return "popular"
	case TopRated:
		return "top_rated"
	case Revenue:
		return "revenue"
	case ReleaseDate:
		return "release_date"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// MinRevenue returns the revenue floor applied when discovering this category, 0 for none
func (c Category) MinRevenue() int64 {
	if c == Revenue {
		return revenueFloor
	}
	return 0
}

// Valid reports whether c is a declared category
func (c Category) Valid() bool {
	return c >= Popular && c <= ReleaseDate
}

// ParseCategory resolves a slug, sort key or display name to a Category
func ParseCategory(s string) (Category, error) {
	needle := strings.TrimSpace(s)
	for _, c := range allCategories {
		if strings.EqualFold(needle, c.String()) ||
			strings.EqualFold(needle, c.SortKey()) ||
			strings.EqualFold(needle, c.DisplayName()) ||
			strings.EqualFold(strings.ReplaceAll(needle, "-", "_"), c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}
