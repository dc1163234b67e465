// Package filter narrows catalog movies with expr-lang expressions and
// fuzzy title search.
package filter

import (
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/moviecat/catalog"
)

// DefaultCacheSize is the number of compiled filters a Compiler keeps.
const DefaultCacheSize = 100

// Filter is a compiled filter expression. It is safe for concurrent use.
type Filter struct {
	expression string
	program    *vm.Program
}

// Compile compiles an expression into a filter without caching.
func Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, newCompilationError(expression, "empty expression", nil)
	}

	// Compile against a typed environment so unknown names and type
	// mismatches fail here rather than per movie
	program, err := expr.Compile(expression,
		expr.Env(newEnvironment(catalog.Movie{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, newCompilationError(expression, "failed to compile expression", err)
	}

	return &Filter{
		expression: expression,
		program:    program,
	}, nil
}

// Match reports whether the movie satisfies the filter. Runtime errors count
// as a non-match.
func (f *Filter) Match(movie catalog.Movie) bool {
	result, err := expr.Run(f.program, newEnvironment(movie))
	if err != nil {
		return false
	}

	// Result is guaranteed to be bool due to AsBool() option during compilation
	return result.(bool)
}

// Apply returns the matching movies in their original order.
func (f *Filter) Apply(movies []catalog.Movie) []catalog.Movie {
	out := make([]catalog.Movie, 0, len(movies))
	for _, m := range movies {
		if f.Match(m) {
			out = append(out, m)
		}
	}
	return out
}

// Expression returns the original expression
func (f *Filter) Expression() string {
	return f.expression
}

func (f *Filter) String() string {
	return f.expression
}

// Compiler compiles expressions and keeps the most recently used results.
type Compiler struct {
	cache *filterCache
}

// NewCompiler creates a compiler caching up to size filters. A non-positive
// size uses DefaultCacheSize.
func NewCompiler(size int) *Compiler {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Compiler{cache: newFilterCache(size)}
}

// Compile returns the cached filter for expression or compiles it.
func (c *Compiler) Compile(expression string) (*Filter, error) {
	key := strings.TrimSpace(expression)
	if cached, ok := c.cache.lookup(key); ok {
		return cached, nil
	}

	f, err := Compile(key)
	if err != nil {
		return nil, err
	}

	c.cache.store(f)
	return f, nil
}

// Clear drops every cached filter and resets the counters
func (c *Compiler) Clear() {
	c.cache.reset()
}

// Size returns the number of cached filters
func (c *Compiler) Size() int {
	return c.cache.snapshot().Size
}

// Stats returns cache counters
func (c *Compiler) Stats() CacheStats {
	return c.cache.snapshot()
}

// newEnvironment builds the variables and helpers visible to expressions
func newEnvironment(movie catalog.Movie) map[string]any {
	env := make(map[string]any, 24)
	addHelperFunctions(env)

	released, _ := movie.Released()

	env["Movie"] = movie
	env["Title"] = movie.Title
	env["Overview"] = movie.Overview
	env["Year"] = movie.Year()
	env["ReleaseDate"] = released
	env["Rating"] = movie.VoteAverage
	env["Votes"] = movie.VoteCount
	env["Popularity"] = movie.Popularity
	env["Revenue"] = movie.RevenueValue()
	env["HasPoster"] = movie.PosterPath != ""
	env["HasBackdrop"] = movie.BackdropPath != ""

	return env
}

func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["yearsAgo"] = func(years int) time.Time {
		return time.Now().AddDate(-years, 0, 0)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse(time.DateOnly, dateStr)
		return t
	}
	// String helpers, case-insensitive. contains, startsWith and endsWith
	// are expr operators and hasPrefix/hasSuffix are case-sensitive builtins,
	// so these take other names.
	env["hasText"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["beginsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsIn"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	// Current time
	env["now"] = time.Now
}
