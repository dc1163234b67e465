package catalog

import (
	"fmt"
	"strings"
)

// ConsoleFormatter provides console output formatting for movies
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// FormatCategory formats one category's movies as a tree for console display
func (f *ConsoleFormatter) FormatCategory(category Category, movies []Movie, options FormatOptions) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s (%d):\n\n", category.DisplayName(), len(movies))
	if len(movies) == 0 {
		sb.WriteString("No movies found\n")
		return sb.String()
	}

	for i, movie := range movies {
		isLast := i == len(movies)-1
		f.formatMovie(&sb, movie, isLast, options)

		if !isLast && options.ShowDetails {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatMovieDetail formats the detail view of a single movie
func (f *ConsoleFormatter) FormatMovieDetail(movie Movie) string {
	var sb strings.Builder

	sb.WriteString(movie.Title)
	if year := movie.ReleaseYear(); year != "" {
		fmt.Fprintf(&sb, " (%s)", year)
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 40))
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "⭐ %s\n", movie.FormattedRating())
	if movie.ReleaseDate != "" {
		fmt.Fprintf(&sb, "Released:   %s\n", movie.ReleaseDate)
	}
	fmt.Fprintf(&sb, "Votes:      %d votes\n", movie.VoteCount)
	fmt.Fprintf(&sb, "Popularity: %.1f popularity\n", movie.Popularity)
	if revenue := movie.FormattedRevenue(); revenue != "" {
		fmt.Fprintf(&sb, "Revenue:    %s\n", revenue)
	}
	if poster := movie.PosterURL(); poster != "" {
		fmt.Fprintf(&sb, "Poster:     %s\n", poster)
	}
	if backdrop := movie.BackdropURL(); backdrop != "" {
		fmt.Fprintf(&sb, "Backdrop:   %s\n", backdrop)
	}
	if movie.Overview != "" {
		fmt.Fprintf(&sb, "\n%s\n", movie.Overview)
	}

	return sb.String()
}

// formatMovie formats a single movie entry
func (f *ConsoleFormatter) formatMovie(sb *strings.Builder, movie Movie, isLast bool, options FormatOptions) {
	prefix := "├"
	if isLast {
		prefix = "╰"
	}

	title := movie.Title
	if year := movie.ReleaseYear(); year != "" {
		title = fmt.Sprintf("%s (%s)", title, year)
	}
	fmt.Fprintf(sb, "%s── %s  ⭐ %s\n", prefix, title, movie.FormattedRating())

	if !options.ShowDetails && !options.ShowURLs {
		return
	}

	indent := "│   "
	if isLast {
		indent = "    "
	}

	if options.ShowDetails {
		parts := []string{
			fmt.Sprintf("Votes: %d", movie.VoteCount),
			fmt.Sprintf("Popularity: %.1f", movie.Popularity),
		}
		if revenue := movie.FormattedRevenue(); revenue != "" {
			parts = append(parts, "Revenue: "+revenue)
		}
		fmt.Fprintf(sb, "%s%s\n", indent, strings.Join(parts, " | "))
		fmt.Fprintf(sb, "%sID: %d\n", indent, movie.ID)
	}

	if options.ShowURLs {
		if poster := movie.PosterURL(); poster != "" {
			fmt.Fprintf(sb, "%sPoster: %s\n", indent, poster)
		}
	}
}
