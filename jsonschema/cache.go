package jsonschema

import (
	"container/list"
	"regexp"
	"sync"
)

// maxCacheEntries bounds the compiled-schema and compiled-regex caches,
// per spec §4.I.
const maxCacheEntries = 1000

// matcher is the subset of *regexp.Regexp this package needs, so tests can
// substitute a fake without pulling in the regexp package's full surface.
type matcher interface {
	MatchString(string) bool
}

func compileRegex(pattern string) (matcher, error) {
	return regexp.Compile(pattern)
}

// Cache is a count-bounded LRU shared by every Validator built from the
// same Registry, holding compiled regexes (the expensive, reused-by-many-
// schemas resource) keyed by pattern text. Compiled *Schema values are
// cheap to keep around for the lifetime of a Registry and are not cached
// here separately - only their pattern-derived regexes are.
type Cache struct {
	mu       sync.Mutex
	order    *list.List
	entries  map[string]*list.Element
	capacity int
}

type cacheEntry struct {
	key   string
	value matcher
}

// NewCache constructs an LRU cache bounded at capacity entries. A capacity
// of 0 defaults to maxCacheEntries.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = maxCacheEntries
	}
	return &Cache{
		order:    list.New(),
		entries:  make(map[string]*list.Element),
		capacity: capacity,
	}
}

// Regex returns the compiled regex for pattern, compiling and caching it on
// first use and promoting it to most-recently-used on every lookup.
func (c *Cache) Regex(pattern string) (matcher, error) {
	c.mu.Lock()
	if elem, ok := c.entries[pattern]; ok {
		c.order.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry)
		c.mu.Unlock()
		return entry.value, nil
	}
	c.mu.Unlock()

	compiled, err := compileRegex(pattern)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[pattern]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*cacheEntry).value, nil
	}
	elem := c.order.PushFront(&cacheEntry{key: pattern, value: compiled})
	c.entries[pattern] = elem
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
	return compiled, nil
}

// Len reports the current number of cached entries, for tests.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
