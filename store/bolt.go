// Package store persists the leading movies of each category so the catalog
// can render something before the network answers.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"github.com/s0up4200/moviecat/catalog"
)

// FileName is the database file created inside the cache directory.
const FileName = "moviecat.db"

const keyPrefix = "cached_movies_"

var bucketMovies = []byte("movies")

// Option configures a BoltStore.
type Option func(*BoltStore)

// WithLimit caps how many movies are persisted per category.
// Values outside 1..catalog.OfflineCacheLimit are ignored.
func WithLimit(limit int) Option {
	return func(s *BoltStore) {
		if limit > 0 && limit <= catalog.OfflineCacheLimit {
			s.limit = limit
		}
	}
}

// BoltStore implements catalog.Store using BoltDB.
type BoltStore struct {
	db     *bolt.DB
	path   string
	limit  int
	logger zerolog.Logger

	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

var _ catalog.Store = (*BoltStore)(nil)

// Open opens (or creates) the cache database inside dir. An empty dir gives
// a memory-only store that forgets everything on exit.
func Open(dir string, logger zerolog.Logger, opts ...Option) (*BoltStore, error) {
	s := &BoltStore{
		limit:  catalog.OfflineCacheLimit,
		logger: logger.With().Str("component", "store").Logger(),
		cache:  make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(s)
	}

	if dir == "" {
		return s, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	s.path = filepath.Join(dir, FileName)
	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMovies)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

// Path returns the database file, or "" in memory-only mode.
func (s *BoltStore) Path() string {
	return s.path
}

// Limit returns the per-category cap applied by Save.
func (s *BoltStore) Limit() int {
	return s.limit
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func key(category catalog.Category) string {
	return keyPrefix + category.SortKey()
}

// Save overwrites the category's entry with the leading movies, at most
// Limit of them.
func (s *BoltStore) Save(category catalog.Category, movies []catalog.Movie) error {
	prefix := catalog.Prefix(movies, s.limit)
	if prefix == nil {
		prefix = []catalog.Movie{}
	}

	data, err := json.Marshal(prefix)
	if err != nil {
		return fmt.Errorf("failed to encode %s cache: %w", category, err)
	}

	k := key(category)

	// Disk first: the memory cache must never hold what was not persisted
	if s.db != nil {
		err = s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketMovies).Put([]byte(k), data)
		})
		if err != nil {
			return fmt.Errorf("failed to write %s cache: %w", category, err)
		}
	}

	s.mu.Lock()
	s.cache[k] = data
	s.mu.Unlock()

	s.logger.Debug().
		Str("category", category.String()).
		Int("count", len(prefix)).
		Msg("Saved offline cache")

	return nil
}

// Load returns the saved movies for the category. A missing or undecodable
// entry yields an empty slice.
func (s *BoltStore) Load(category catalog.Category) []catalog.Movie {
	k := key(category)

	data := s.get(k)
	if data == nil {
		return []catalog.Movie{}
	}

	var movies []catalog.Movie
	if err := json.Unmarshal(data, &movies); err != nil {
		s.logger.Debug().
			Err(err).
			Str("category", category.String()).
			Msg("Ignoring undecodable offline cache entry")
		return []catalog.Movie{}
	}
	if movies == nil {
		movies = []catalog.Movie{}
	}
	return movies
}

func (s *BoltStore) get(k string) []byte {
	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[k]; ok {
		s.mu.RUnlock()
		return data
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMovies)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(k)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("key", k).Msg("Failed to read offline cache")
		return nil
	}

	if data == nil {
		return nil
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[k] = data
	s.mu.Unlock()

	return data
}

// Count returns the number of movies Load would return.
func (s *BoltStore) Count(category catalog.Category) int {
	return len(s.Load(category))
}

// Clear removes every category's entry.
func (s *BoltStore) Clear() error {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMovies)
		if b == nil {
			return nil
		}
		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear offline cache: %w", err)
	}

	s.logger.Debug().Msg("Cleared offline cache")
	return nil
}
