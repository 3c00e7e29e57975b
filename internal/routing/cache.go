package routing

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// lruEntry is a doubly-linked-list node for the resolution cache,
// caching "criteria string -> resolved route entry" lookups.
type lruEntry struct {
	key    uint64
	value  Entry
	ok     bool
	prev   *lruEntry
	next   *lruEntry
}

// resolutionCache is a bounded, thread-safe LRU keyed by an xxhash
// digest of the criteria string. It caches negative lookups (ok=false)
// as well as positive ones, since a miss against a large route table
// is exactly as expensive to recompute as a hit.
type resolutionCache struct {
	mu      sync.Mutex
	entries map[uint64]*lruEntry
	head    *lruEntry
	tail    *lruEntry
	maxSize int
}

func newResolutionCache(maxSize int) *resolutionCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &resolutionCache{
		entries: make(map[uint64]*lruEntry, maxSize),
		maxSize: maxSize,
	}
}

func cacheKey(criteria string) uint64 {
	return xxhash.Sum64String(criteria)
}

func (c *resolutionCache) get(key uint64) (Entry, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, found := c.entries[key]
	if !found {
		return nil, false, false
	}
	c.moveToHeadLocked(e)
	return e.value, e.ok, true
}

func (c *resolutionCache) put(key uint64, value Entry, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, found := c.entries[key]; found {
		e.value, e.ok = value, ok
		c.moveToHeadLocked(e)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictTailLocked()
	}

	e := &lruEntry{key: key, value: value, ok: ok}
	c.entries[key] = e
	c.pushHeadLocked(e)
}

func (c *resolutionCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]*lruEntry, c.maxSize)
	c.head, c.tail = nil, nil
}

func (c *resolutionCache) moveToHeadLocked(e *lruEntry) {
	if c.head == e {
		return
	}
	c.unlinkLocked(e)
	c.pushHeadLocked(e)
}

func (c *resolutionCache) pushHeadLocked(e *lruEntry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *resolutionCache) unlinkLocked(e *lruEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
}

func (c *resolutionCache) evictTailLocked() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlinkLocked(c.tail)
}
