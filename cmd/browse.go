package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/moviecat/catalog"
	"github.com/s0up4200/moviecat/engine"
	"github.com/s0up4200/moviecat/filter"
)

var (
	// Command flags
	categoryNames []string
	pageBudget    int
	filterExpr    string
	searchQuery   string
	showDetails   bool
	showURLs      bool
	detailID      int
)

var filterCompiler = filter.NewCompiler(filter.DefaultCacheSize)

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "List movies for one or more categories",
	Long: `Load every category (cached results first, then page 1 from TMDB),
page the selected categories further while more results exist, and print them.

Filter expressions use expr syntax, for example:
  moviecat browse -c top_rated --pages 3 -f 'Year < 1990 and Rating > 8'
  moviecat browse -f 'hasText(Title, "star") and ReleaseDate > yearsAgo(5)'
A filter name defined under "filter:" in the config may be used instead.`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringSliceVarP(&categoryNames, "category", "c", nil, "categories to show (popular, top_rated, revenue, release_date); default all")
	browseCmd.Flags().IntVar(&pageBudget, "pages", 1, "number of pages to load per category")
	browseCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or configured filter name")
	browseCmd.Flags().StringVarP(&searchQuery, "search", "s", "", "fuzzy title search")
	browseCmd.Flags().BoolVar(&showDetails, "details", false, "show votes, popularity and revenue")
	browseCmd.Flags().BoolVar(&showURLs, "urls", false, "show poster URLs")
	browseCmd.Flags().IntVar(&detailID, "id", 0, "show the full detail view of one movie")
}

// browseListener relays engine signals to the log and collects errors
type browseListener struct {
	logger zerolog.Logger
	mu     sync.Mutex
	errors []string
}

func (l *browseListener) OnDataUpdated() {
	l.logger.Debug().Msg("Catalog data updated")
}

func (l *browseListener) OnCategoryUpdated(category catalog.Category) {
	l.logger.Debug().Str("category", category.String()).Msg("Category extended")
}

func (l *browseListener) OnError(message string) {
	l.mu.Lock()
	l.errors = append(l.errors, message)
	l.mu.Unlock()
}

func (l *browseListener) OnLoadingStateChanged(loading bool) {
	if loading {
		l.logger.Info().Msg("Loading movie catalog")
		return
	}
	l.logger.Debug().Msg("Initial load finished")
}

func (l *browseListener) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.errors...)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	categories, err := parseCategories(categoryNames)
	if err != nil {
		return err
	}
	if pageBudget < 1 {
		return fmt.Errorf("--pages must be at least 1")
	}

	var movieFilter *filter.Filter
	if expression := resolveFilterExpression(filterExpr, cfg.Filter); expression != "" {
		movieFilter, err = filterCompiler.Compile(expression)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
		logger.Debug().
			Str("expression", movieFilter.Expression()).
			Int("cached_filters", filterCompiler.Stats().Size).
			Msg("Filter compiled")
	}

	listener := &browseListener{logger: logger}
	eng := engine.New(tmdbClient, movieStore, logger,
		engine.WithListener(listener),
		engine.WithFetchTimeout(cfg.Catalog.FetchTimeout),
		engine.WithPrefetchThreshold(cfg.Catalog.PrefetchThreshold),
		engine.WithCacheLimit(cfg.Cache.Limit),
	)

	ctx := cmd.Context()
	if err := eng.LoadInitial(ctx); err != nil {
		return err
	}

	loadPages(ctx, eng, categories, pageBudget)

	out := cmd.OutOrStdout()
	for _, msg := range listener.messages() {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s\n", msg)
	}

	if detailID != 0 {
		movie, ok := findMovie(eng, categories, detailID)
		if !ok {
			return fmt.Errorf("movie %d not found in the loaded categories", detailID)
		}
		fmt.Fprint(out, catalog.NewConsoleFormatter().FormatMovieDetail(movie))
		return nil
	}

	printCategories(out, eng, categories, movieFilter, searchQuery, catalog.FormatOptions{
		ShowDetails: showDetails,
		ShowURLs:    showURLs,
	})

	return nil
}

// loadPages pages every category concurrently until it has loaded budget
// pages or the engine reports nothing more to fetch. Categories left empty
// by a failed first page are not paged.
func loadPages(ctx context.Context, eng *engine.Engine, categories []catalog.Category, budget int) {
	var g errgroup.Group
	for _, c := range categories {
		g.Go(func() error {
			for loaded := 1; loaded < budget; loaded++ {
				count := len(eng.Items(c))
				// Paging past a first page that never arrived would skip it
				if count == 0 || !eng.ShouldLoadMore(c, count-1) {
					return nil
				}
				if err := eng.LoadMore(ctx, c); err != nil {
					// Already reported through the listener
					return nil
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

func printCategories(out io.Writer, eng *engine.Engine, categories []catalog.Category, movieFilter *filter.Filter, query string, opts catalog.FormatOptions) {
	formatter := catalog.NewConsoleFormatter()
	for _, c := range categories {
		movies := eng.Items(c)
		if movieFilter != nil {
			movies = movieFilter.Apply(movies)
		}
		movies = filter.Search(query, movies)
		fmt.Fprint(out, formatter.FormatCategory(c, movies, opts))
	}
}

func findMovie(eng *engine.Engine, categories []catalog.Category, id int) (catalog.Movie, bool) {
	for _, c := range categories {
		for _, movie := range eng.Items(c) {
			if movie.ID == id {
				return movie, true
			}
		}
	}
	return catalog.Movie{}, false
}

// parseCategories maps flag values to categories, defaulting to all of them
func parseCategories(names []string) ([]catalog.Category, error) {
	if len(names) == 0 {
		return catalog.Categories(), nil
	}

	seen := make(map[catalog.Category]bool, len(names))
	categories := make([]catalog.Category, 0, len(names))
	for _, name := range names {
		c, err := catalog.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		categories = append(categories, c)
	}
	return categories, nil
}

// resolveFilterExpression returns the configured filter named by value, or
// value itself when no such filter exists
func resolveFilterExpression(value string, named map[string]string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if expression, ok := named[strings.ToLower(value)]; ok {
		return expression
	}
	return value
}
