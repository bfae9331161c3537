// ABOUTME: Bounded LRU cache for read operations
// ABOUTME: Invalidated wholesale on any embedding or cross-reference write
package core

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// ReadCache is a thread-safe LRU keyed by query string.
// A generation counter keeps results computed before an invalidation
// from being stored after it.
type ReadCache struct {
	mu         sync.Mutex
	maxSize    int
	list       *list.List
	items      map[string]*list.Element
	generation uint64

	hits   atomic.Uint64
	misses atomic.Uint64
}

type cacheEntry struct {
	key   string
	value any
}

// CacheStats reports cache effectiveness
type CacheStats struct {
	Size   int    `json:"size"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// NewReadCache creates a cache holding at most maxSize entries.
// A non-positive size disables caching.
func NewReadCache(maxSize int) *ReadCache {
	return &ReadCache{
		maxSize: maxSize,
		list:    list.New(),
		items:   make(map[string]*list.Element),
	}
}

// Get returns the cached value and the current generation.
// Pass the generation to Put so stale results are discarded.
func (c *ReadCache) Get(key string) (any, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return nil, c.generation, false
	}
	c.list.MoveToFront(elem)
	c.hits.Add(1)
	return elem.Value.(*cacheEntry).value, c.generation, true
}

// Put stores value if no invalidation happened since generation was read
func (c *ReadCache) Put(key string, value any, generation uint64) {
	if c.maxSize <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return
	}
	if elem, ok := c.items[key]; ok {
		elem.Value.(*cacheEntry).value = value
		c.list.MoveToFront(elem)
		return
	}

	for c.list.Len() >= c.maxSize {
		oldest := c.list.Back()
		c.list.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
	c.items[key] = c.list.PushFront(&cacheEntry{key: key, value: value})
}

// Invalidate drops every entry
func (c *ReadCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.list.Init()
	c.items = make(map[string]*list.Element)
}

// Stats returns the current size and hit counters
func (c *ReadCache) Stats() CacheStats {
	c.mu.Lock()
	size := c.list.Len()
	c.mu.Unlock()
	return CacheStats{Size: size, Hits: c.hits.Load(), Misses: c.misses.Load()}
}
