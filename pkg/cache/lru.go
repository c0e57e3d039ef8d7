// Package cache provides the bounded memoization caches shared by the name
// resolver and the lexer.
package cache

import (
	"sync"
	"sync/atomic"
)

// DefaultLRUSize is the default number of entries kept by an LRU.
const DefaultLRUSize = 4096

// LRU is a fixed-capacity least recently used cache, safe for concurrent use.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*lruEntry[K, V]
	head     *lruEntry[K, V] // Most recently used.
	tail     *lruEntry[K, V] // Least recently used.
	capacity int

	// Metrics (atomic for lock-free reads).
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// lruEntry is a doubly-linked list node for LRU tracking.
type lruEntry[K comparable, V any] struct {
	key   K
	value V
	prev  *lruEntry[K, V]
	next  *lruEntry[K, V]
}

// NewLRU creates a cache holding at most capacity entries.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		capacity = DefaultLRUSize
	}

	return &LRU[K, V]{
		entries:  make(map[K]*lruEntry[K, V]),
		capacity: capacity,
	}
}

// Get returns the value stored under key.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		var zero V

		return zero, false
	}

	c.hits.Add(1)
	c.moveToFront(entry)

	return entry.value, true
}

// Put stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.value = value
		c.moveToFront(entry)

		return
	}

	for len(c.entries) >= c.capacity && c.tail != nil {
		c.evict()
	}

	entry := &lruEntry[K, V]{key: key, value: value}
	c.entries[key] = entry
	c.addToFront(entry)
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. compute runs without the lock held; concurrent misses may compute
// the same value more than once, and the last one wins.
func (c *LRU[K, V]) GetOrCompute(key K, compute func() V) V {
	if value, ok := c.Get(key); ok {
		return value
	}

	value := compute()
	c.Put(key, value)

	return value
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Stats returns cache statistics.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   len(c.entries),
		Capacity:  c.capacity,
	}
}

// Stats holds cache performance metrics.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
	Capacity  int
}

// HitRate returns the cache hit rate (0.0 to 1.0).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}

	return float64(s.Hits) / float64(total)
}

// Clear removes all entries from the cache.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*lruEntry[K, V])
	c.head = nil
	c.tail = nil
}

// moveToFront moves an entry to the front of the LRU list (most recently used).
func (c *LRU[K, V]) moveToFront(entry *lruEntry[K, V]) {
	if entry == c.head {
		return
	}

	c.removeFromList(entry)
	c.addToFront(entry)
}

// addToFront adds an entry to the front of the LRU list.
func (c *LRU[K, V]) addToFront(entry *lruEntry[K, V]) {
	entry.prev = nil
	entry.next = c.head

	if c.head != nil {
		c.head.prev = entry
	}

	c.head = entry

	if c.tail == nil {
		c.tail = entry
	}
}

// removeFromList removes an entry from the LRU list.
func (c *LRU[K, V]) removeFromList(entry *lruEntry[K, V]) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		c.head = entry.next
	}

	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		c.tail = entry.prev
	}
}

func (c *LRU[K, V]) evict() {
	victim := c.tail

	c.removeFromList(victim)
	delete(c.entries, victim.key)
	c.evictions.Add(1)
}
