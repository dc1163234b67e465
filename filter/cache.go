package filter

import (
	"container/list"
	"sync"
)

// CacheStats reports how often a Compiler reused a compiled filter.
type CacheStats struct {
	Hits    int
	Misses  int
	Evicted int
	Size    int
}

// filterCache keeps the most recently used compiled filters, keyed by their
// trimmed expression. The front of order is the most recent.
type filterCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	byExpr   map[string]*list.Element
	stats    CacheStats
}

func newFilterCache(capacity int) *filterCache {
	return &filterCache{
		capacity: capacity,
		order:    list.New(),
		byExpr:   make(map[string]*list.Element, capacity),
	}
}

func (c *filterCache) lookup(expression string) (*Filter, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.byExpr[expression]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	c.order.MoveToFront(elem)
	return elem.Value.(*Filter), true
}

// store records f under its own expression, evicting the least recently
// used filter once capacity is exceeded.
func (c *filterCache) store(f *Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.byExpr[f.expression]; ok {
		elem.Value = f
		c.order.MoveToFront(elem)
		return
	}

	c.byExpr[f.expression] = c.order.PushFront(f)
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.byExpr, oldest.Value.(*Filter).expression)
		c.stats.Evicted++
	}
}

func (c *filterCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	clear(c.byExpr)
	c.stats = CacheStats{}
}

func (c *filterCache) snapshot() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = c.order.Len()
	return s
}
