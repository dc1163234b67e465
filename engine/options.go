package engine

import (
	"time"

	"github.com/s0up4200/moviecat/catalog"
)

const (
	// DefaultFetchTimeout bounds a single page fetch
	DefaultFetchTimeout = 15 * time.Second
	// DefaultPrefetchThreshold is how many trailing items trigger a load-more
	DefaultPrefetchThreshold = 5
)

// Option configures an Engine.
type Option func(*Engine)

// WithListener sets the receiver of engine signals.
func WithListener(listener Listener) Option {
	return func(e *Engine) {
		if listener != nil {
			e.listener = listener
		}
	}
}

// WithFetchTimeout bounds every page fetch.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		if timeout > 0 {
			e.fetchTimeout = timeout
		}
	}
}

// WithPrefetchThreshold sets how close to the end of a category the visible
// index must be before ShouldLoadMore reports true.
func WithPrefetchThreshold(threshold int) Option {
	return func(e *Engine) {
		if threshold >= 0 {
			e.prefetchThreshold = threshold
		}
	}
}

// WithCacheLimit sets how many leading items are compared and persisted.
// Values outside 1..catalog.OfflineCacheLimit are ignored.
func WithCacheLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 && limit <= catalog.OfflineCacheLimit {
			e.cacheLimit = limit
		}
	}
}
