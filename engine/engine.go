// Package engine keeps per-category paginated movie lists in memory,
// reconciling the offline cache with fresh pages from the catalog.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/moviecat/catalog"
)

// ErrLoadInProgress is returned by LoadInitial when another initial load on
// the same engine has not finished yet.
var ErrLoadInProgress = errors.New("initial load already in progress")

// CategoryState is a point-in-time copy of one category's load state.
type CategoryState struct {
	Items       []catalog.Movie
	CurrentPage int
	HasMore     bool
	LoadingMore bool
}

type categoryState struct {
	items       []catalog.Movie
	seen        map[int]struct{}
	currentPage int
	hasMore     bool
	loadingMore bool

	// cachedIDs is the id set last written to (or read from) the store
	cachedIDs map[int]struct{}

	// generation is bumped by every initial load; page results fetched under
	// an older generation are discarded
	generation uint64
}

func newCategoryState() *categoryState {
	return &categoryState{
		seen:      make(map[int]struct{}),
		cachedIDs: make(map[int]struct{}),
	}
}

func (s *categoryState) replace(movies []catalog.Movie) {
	s.items = catalog.Dedupe(movies)
	s.seen = catalog.IDs(s.items)
}

// appendUnseen adds movies whose id is not present yet, in the given order,
// and returns how many were added.
func (s *categoryState) appendUnseen(movies []catalog.Movie) int {
	added := 0
	for _, m := range movies {
		if _, ok := s.seen[m.ID]; ok {
			continue
		}
		s.seen[m.ID] = struct{}{}
		s.items = append(s.items, m)
		added++
	}
	return added
}

// Engine owns the load state of every category.
type Engine struct {
	fetcher catalog.Fetcher
	store   catalog.Store
	logger  zerolog.Logger

	listener          Listener
	fetchTimeout      time.Duration
	prefetchThreshold int
	cacheLimit        int

	mu      sync.Mutex
	states  map[catalog.Category]*categoryState
	loading bool

	// notifyMu guards the signal queue. Whoever finds dispatching false
	// delivers queued signals one at a time without holding it.
	notifyMu    sync.Mutex
	pending     []func(Listener)
	dispatching bool

	// persistMu orders cache comparisons and writes
	persistMu sync.Mutex
}

// New creates an engine over the given catalog client and cache store.
func New(fetcher catalog.Fetcher, store catalog.Store, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		fetcher:           fetcher,
		store:             store,
		logger:            logger.With().Str("component", "engine").Logger(),
		listener:          ListenerFuncs{},
		fetchTimeout:      DefaultFetchTimeout,
		prefetchThreshold: DefaultPrefetchThreshold,
		cacheLimit:        catalog.OfflineCacheLimit,
		states:            make(map[catalog.Category]*categoryState),
	}

	for _, opt := range opts {
		opt(e)
	}

	for _, c := range catalog.Categories() {
		e.states[c] = newCategoryState()
	}

	return e
}

// state returns the category's state, creating it for categories unknown at
// construction time. Callers must hold e.mu.
func (e *Engine) state(category catalog.Category) *categoryState {
	st, ok := e.states[category]
	if !ok {
		st = newCategoryState()
		e.states[category] = st
	}
	return st
}

// LoadInitial paints every category from the offline cache, then fetches
// page 1 of all categories concurrently and waits for every fetch to settle.
// Per-category failures are reported through the listener, not returned.
func (e *Engine) LoadInitial(ctx context.Context) error {
	e.mu.Lock()
	if e.loading {
		e.mu.Unlock()
		return ErrLoadInProgress
	}
	e.loading = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.loading = false
		e.mu.Unlock()
	}()

	log := e.logger.With().Str("load_id", uuid.NewString()).Logger()
	start := time.Now()

	e.notify(func(l Listener) { l.OnLoadingStateChanged(true) })

	categories := catalog.Categories()

	cached := make(map[catalog.Category][]catalog.Movie, len(categories))
	for _, c := range categories {
		cached[c] = catalog.Dedupe(e.store.Load(c))
	}

	generations := make(map[catalog.Category]uint64, len(categories))

	e.mu.Lock()
	for _, c := range categories {
		st := e.state(c)
		st.replace(cached[c])
		st.cachedIDs = catalog.IDs(cached[c])

		st.currentPage = 1
		st.loadingMore = false
		st.hasMore = true
		st.generation++
		generations[c] = st.generation
	}
	e.mu.Unlock()

	log.Debug().Msg("Painted categories from offline cache")
	e.notify(func(l Listener) { l.OnDataUpdated() })

	// No sibling cancellation: every category settles on its own
	var g errgroup.Group
	for _, c := range categories {
		g.Go(func() error {
			e.loadFirstPage(ctx, log, c, generations[c])
			return nil
		})
	}
	_ = g.Wait()

	log.Debug().
		Dur("elapsed", time.Since(start)).
		Msg("Initial load finished")

	e.notify(func(l Listener) { l.OnLoadingStateChanged(false) })
	e.notify(func(l Listener) { l.OnDataUpdated() })

	return nil
}

func (e *Engine) loadFirstPage(ctx context.Context, log zerolog.Logger, category catalog.Category, generation uint64) {
	page, err := e.fetch(ctx, category, 1)

	e.mu.Lock()
	st := e.state(category)
	if st.generation != generation {
		e.mu.Unlock()
		return
	}

	if err != nil {
		hasItems := len(st.items) > 0
		e.mu.Unlock()

		if hasItems {
			log.Warn().
				Err(err).
				Str("category", category.String()).
				Msg("Failed to refresh category, keeping cached items")
			return
		}

		log.Error().
			Err(err).
			Str("category", category.String()).
			Msg("Failed to load category")
		message := fmt.Sprintf("Failed to load %s: %v", category.DisplayName(), err)
		e.notify(func(l Listener) { l.OnError(message) })
		return
	}

	st.replace(page.Movies)
	st.currentPage = 1
	st.hasMore = page.HasMore()
	count := len(st.items)
	e.mu.Unlock()

	log.Debug().
		Str("category", category.String()).
		Int("count", count).
		Int("total_pages", page.TotalPages).
		Msg("Loaded first page")

	e.persist(log, category)
}

// LoadMore fetches the page after the category's current one and appends
// the movies not already present. It is a no-op returning nil when the
// category has no more pages or a load-more is already running for it.
func (e *Engine) LoadMore(ctx context.Context, category catalog.Category) error {
	e.mu.Lock()
	st := e.state(category)
	if !st.hasMore || st.loadingMore {
		e.mu.Unlock()
		return nil
	}
	st.loadingMore = true
	next := st.currentPage + 1
	generation := st.generation
	e.mu.Unlock()

	log := e.logger.With().
		Str("category", category.String()).
		Int("page", next).
		Logger()

	page, err := e.fetch(ctx, category, next)

	e.mu.Lock()
	st = e.state(category)
	if st.generation != generation {
		// A newer initial load reset this category; its loadingMore flag
		// belongs to the new generation.
		e.mu.Unlock()
		log.Debug().Msg("Discarding page fetched before a reload")
		return nil
	}

	if err != nil {
		st.loadingMore = false
		e.mu.Unlock()

		log.Error().Err(err).Msg("Failed to load more movies")
		message := fmt.Sprintf("Failed to load more %s: %v", category.DisplayName(), err)
		e.notify(func(l Listener) { l.OnError(message) })
		return err
	}

	st.currentPage = next
	added := st.appendUnseen(page.Movies)
	st.hasMore = page.HasMore()
	st.loadingMore = false
	total := len(st.items)
	e.mu.Unlock()

	log.Debug().
		Int("added", added).
		Int("total", total).
		Bool("has_more", page.HasMore()).
		Msg("Loaded more movies")

	e.persist(e.logger, category)
	e.notify(func(l Listener) { l.OnCategoryUpdated(category) })

	return nil
}

// ShouldLoadMore reports whether the presentation should request the next
// page now that visibleIndex is on screen.
func (e *Engine) ShouldLoadMore(category catalog.Category, visibleIndex int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.states[category]
	if !ok {
		return false
	}
	return st.hasMore && !st.loadingMore && visibleIndex >= len(st.items)-e.prefetchThreshold
}

// Items returns a copy of the category's current movies.
func (e *Engine) Items(category catalog.Category) []catalog.Movie {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.states[category]
	if !ok {
		return []catalog.Movie{}
	}
	out := make([]catalog.Movie, len(st.items))
	copy(out, st.items)
	return out
}

// Item returns the movie at index, or false when the index is out of range.
func (e *Engine) Item(category catalog.Category, index int) (catalog.Movie, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.states[category]
	if !ok || index < 0 || index >= len(st.items) {
		return catalog.Movie{}, false
	}
	return st.items[index], true
}

// Snapshot returns a copy of the category's full load state.
func (e *Engine) Snapshot(category catalog.Category) CategoryState {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.states[category]
	if !ok {
		return CategoryState{Items: []catalog.Movie{}}
	}
	items := make([]catalog.Movie, len(st.items))
	copy(items, st.items)
	return CategoryState{
		Items:       items,
		CurrentPage: st.currentPage,
		HasMore:     st.hasMore,
		LoadingMore: st.loadingMore,
	}
}

func (e *Engine) fetch(ctx context.Context, category catalog.Category, page int) (catalog.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()
	return e.fetcher.FetchPage(ctx, category, page)
}

// persist writes the leading items of a category to the store when their id
// set differs from what the store holds. Write failures are logged only.
func (e *Engine) persist(log zerolog.Logger, category catalog.Category) {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	e.mu.Lock()
	st := e.state(category)
	prefix := append([]catalog.Movie(nil), catalog.Prefix(st.items, e.cacheLimit)...)
	ids := catalog.IDs(prefix)
	unchanged := catalog.SameIDs(ids, st.cachedIDs)
	e.mu.Unlock()

	if unchanged {
		log.Trace().Str("category", category.String()).Msg("Offline cache up to date")
		return
	}

	if err := e.store.Save(category, prefix); err != nil {
		log.Error().
			Err(err).
			Str("category", category.String()).
			Msg("Failed to update offline cache")
		return
	}

	e.mu.Lock()
	st.cachedIDs = ids
	e.mu.Unlock()
}

// notify delivers a signal, in order and never concurrently with another.
// A signal raised while another is being delivered, including from inside a
// listener callback, is queued and delivered by the goroutine already
// dispatching before that goroutine's own notify returns.
func (e *Engine) notify(fn func(Listener)) {
	e.notifyMu.Lock()
	e.pending = append(e.pending, fn)
	if e.dispatching {
		e.notifyMu.Unlock()
		return
	}
	e.dispatching = true

	for len(e.pending) > 0 {
		next := e.pending[0]
		e.pending[0] = nil
		e.pending = e.pending[1:]
		e.notifyMu.Unlock()

		next(e.listener)

		e.notifyMu.Lock()
	}
	e.dispatching = false
	e.notifyMu.Unlock()
}
