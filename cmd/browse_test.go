package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/moviecat/catalog"
	"github.com/s0up4200/moviecat/config"
	"github.com/s0up4200/moviecat/store"
	"github.com/s0up4200/moviecat/tmdb"
)

// fakeTMDB serves /discover/movie with three pages of twenty movies per
// sort key and records which pages were requested.
type fakeTMDB struct {
	mu       sync.Mutex
	requests map[string][]int
	fail     bool
}

func (f *fakeTMDB) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.fail {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status_message":"backend unavailable"}`))
		return
	}

	switch r.URL.Path {
	case "/configuration":
		_, _ = w.Write([]byte(`{}`))
		return
	case "/discover/movie":
	default:
		http.NotFound(w, r)
		return
	}

	sortBy := r.URL.Query().Get("sort_by")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	f.mu.Lock()
	f.requests[sortBy] = append(f.requests[sortBy], page)
	f.mu.Unlock()

	results := make([]map[string]any, 0, 20)
	for i := 0; i < 20; i++ {
		id := page*100 + i
		results = append(results, map[string]any{
			"id":           id,
			"title":        fmt.Sprintf("%s #%d", sortBy, id),
			"release_date": "2020-01-01",
			"vote_average": float64(i % 10),
			"vote_count":   100 + i,
			"popularity":   float64(50 - i),
		})
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"page":          page,
		"results":       results,
		"total_pages":   3,
		"total_results": 60,
	})
}

func (f *fakeTMDB) pages(sortBy string) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.requests[sortBy]...)
}

// setupTestApp points the command globals at a fake TMDB server and a
// memory-only store.
func setupTestApp(t *testing.T, server *fakeTMDB) {
	t.Helper()

	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	cfg = &config.Config{
		TMDB: config.TMDBConfig{
			URL:      ts.URL,
			APIKey:   "test-key",
			Language: "en-US",
			Timeout:  5 * time.Second,
		},
		Cache:   config.CacheConfig{Limit: catalog.OfflineCacheLimit},
		Catalog: config.CatalogConfig{FetchTimeout: 5 * time.Second, PrefetchThreshold: 5},
		Filter:  config.FilterConfig{},
	}
	logger = zerolog.Nop()

	var err error
	tmdbClient, err = tmdb.NewClient(ts.URL, "test-key", logger, tmdb.WithRateLimit(0, 1))
	require.NoError(t, err)

	movieStore, err = store.Open("", logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = movieStore.Close()
		movieStore = nil
	})

	categoryNames = nil
	pageBudget = 1
	filterExpr = ""
	searchQuery = ""
	showDetails = false
	showURLs = false
	detailID = 0
}

func newTestCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	return cmd, &stdout, &stderr
}

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []catalog.Category
		wantErr bool
	}{
		{
			name:  "default is every category",
			input: nil,
			want:  catalog.Categories(),
		},
		{
			name:  "slugs keep flag order",
			input: []string{"revenue", "popular"},
			want:  []catalog.Category{catalog.Revenue, catalog.Popular},
		},
		{
			name:  "duplicates collapse",
			input: []string{"top_rated", "Top Rated", "vote_average.desc"},
			want:  []catalog.Category{catalog.TopRated},
		},
		{
			name:    "unknown category",
			input:   []string{"upcoming"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCategories(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, catalog.ErrUnknownCategory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFilterExpression(t *testing.T) {
	named := map[string]string{"classics": "Year < 1980"}

	assert.Equal(t, "", resolveFilterExpression("  ", named))
	assert.Equal(t, "Year < 1980", resolveFilterExpression("classics", named))
	assert.Equal(t, "Year < 1980", resolveFilterExpression("Classics", named))
	assert.Equal(t, "Rating > 8", resolveFilterExpression(" Rating > 8 ", named))
	assert.Equal(t, "classics", resolveFilterExpression("classics", nil))
}

func TestRunBrowsePagesSelectedCategory(t *testing.T) {
	server := &fakeTMDB{requests: map[string][]int{}}
	setupTestApp(t, server)

	categoryNames = []string{"popular"}
	pageBudget = 2

	cmd, stdout, stderr := newTestCommand()
	require.NoError(t, runBrowse(cmd, nil))

	assert.Contains(t, stdout.String(), "Popular (40):")
	assert.NotContains(t, stdout.String(), "Top Rated (")
	assert.Empty(t, stderr.String())

	assert.Equal(t, []int{1, 2}, server.pages("popularity.desc"))
	// Every category still gets its first page
	assert.Equal(t, []int{1}, server.pages("vote_average.desc"))
	assert.Equal(t, []int{1}, server.pages("revenue.desc"))
	assert.Equal(t, []int{1}, server.pages("release_date.desc"))

	assert.Equal(t, 40, movieStore.Count(catalog.Popular))
	assert.Equal(t, 20, movieStore.Count(catalog.TopRated))
}

func TestRunBrowseFilters(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		named  config.FilterConfig
		want   string
	}{
		{
			name:   "inline expression",
			filter: "Rating >= 9",
			want:   "Top Rated (2):",
		},
		{
			name:   "named filter",
			filter: "best",
			named:  config.FilterConfig{"best": "Rating >= 9 and Votes > 100"},
			want:   "Top Rated (2):",
		},
		{
			name:   "case-insensitive title helper",
			filter: `hasText(Title, "#105")`,
			want:   "Top Rated (1):",
		},
		{
			name:   "no match",
			filter: "Year < 1950",
			want:   "No movies found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestApp(t, &fakeTMDB{requests: map[string][]int{}})
			if tt.named != nil {
				cfg.Filter = tt.named
			}
			categoryNames = []string{"top_rated"}
			filterExpr = tt.filter

			cmd, stdout, _ := newTestCommand()
			require.NoError(t, runBrowse(cmd, nil))
			assert.Contains(t, stdout.String(), tt.want)
		})
	}
}

func TestRunBrowseInvalidInput(t *testing.T) {
	setupTestApp(t, &fakeTMDB{requests: map[string][]int{}})

	filterExpr = "Rating >"
	cmd, _, _ := newTestCommand()
	err := runBrowse(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter expression")

	filterExpr = ""
	pageBudget = 0
	err = runBrowse(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--pages")
}

func TestRunBrowseNetworkDown(t *testing.T) {
	setupTestApp(t, &fakeTMDB{requests: map[string][]int{}, fail: true})

	categoryNames = []string{"popular"}
	pageBudget = 3

	cmd, stdout, stderr := newTestCommand()
	require.NoError(t, runBrowse(cmd, nil))

	assert.Contains(t, stdout.String(), "Popular (0):")
	assert.Contains(t, stderr.String(), "Failed to load Popular")
	assert.Contains(t, stderr.String(), "Failed to load Release Date")
	assert.NotContains(t, stderr.String(), "Failed to load more")
}

func TestRunBrowseDetail(t *testing.T) {
	setupTestApp(t, &fakeTMDB{requests: map[string][]int{}})

	categoryNames = []string{"popular"}
	detailID = 105

	cmd, stdout, _ := newTestCommand()
	require.NoError(t, runBrowse(cmd, nil))
	assert.Contains(t, stdout.String(), "popularity.desc #105 (2020)")
	assert.Contains(t, stdout.String(), "Votes:      105 votes")

	detailID = 999
	err := runBrowse(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "movie 999 not found")
}

func TestCacheCommands(t *testing.T) {
	setupTestApp(t, &fakeTMDB{requests: map[string][]int{}})

	cmd, _, _ := newTestCommand()
	require.NoError(t, runBrowse(cmd, nil))

	cmd, stdout, _ := newTestCommand()
	require.NoError(t, runCacheStats(cmd, nil))
	assert.Contains(t, stdout.String(), "memory only")
	assert.Contains(t, stdout.String(), "Total: 80")

	cmd, stdout, _ = newTestCommand()
	require.NoError(t, runCacheClear(cmd, nil))
	assert.Contains(t, stdout.String(), "Offline cache cleared")

	for _, c := range catalog.Categories() {
		assert.Zero(t, movieStore.Count(c), c.String())
	}
}

func TestRunTest(t *testing.T) {
	setupTestApp(t, &fakeTMDB{requests: map[string][]int{}})

	cmd, stdout, _ := newTestCommand()
	require.NoError(t, runTest(cmd, nil))
	assert.Contains(t, stdout.String(), "✓ Connection successful!")
	assert.Contains(t, stdout.String(), "Authentication: API key")
}

func TestRunTestUnauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key: You must be granted a valid key."}`))
	}))
	defer ts.Close()

	cfg = &config.Config{TMDB: config.TMDBConfig{URL: ts.URL}}
	client, err := tmdb.NewClient(ts.URL, "bad-key", zerolog.Nop(), tmdb.WithRateLimit(0, 1))
	require.NoError(t, err)
	tmdbClient = client

	cmd, _, _ := newTestCommand()
	err = runTest(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TMDB rejected the credentials")
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}

	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			setupLogger(config.LoggingConfig{Level: tt.level, Format: "json"})
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}
