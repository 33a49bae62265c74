package render

import (
	"container/list"
	"fmt"
)

// DefaultCacheSize bounds the artifact cache. Sessions are long-lived, so
// the cache evicts least recently used artifacts instead of growing without
// limit.
const DefaultCacheSize = 512

// Cache is a bounded content-addressed store for expensive render
// artifacts: parsed segment lists and highlighted code. Keys embed every
// input the artifact depends on (content hash, language, theme), so a hit
// is always valid. Only finalized content is cached; streaming content
// changes every cycle and never enters.
type Cache struct {
	capacity int
	order    *list.List // front = most recently used
	items    map[string]*list.Element
	hits     uint64
	misses   uint64
}

type cacheItem struct {
	key   string
	value any
}

// NewCache creates a cache holding at most capacity artifacts.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the cached artifact for key, marking it recently used.
func (c *Cache) Get(key string) (any, bool) {
	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheItem).value, true
}

// Put stores an artifact, evicting the least recently used one when full.
func (c *Cache) Put(key string, value any) {
	if elem, ok := c.items[key]; ok {
		elem.Value.(*cacheItem).value = value
		c.order.MoveToFront(elem)
		return
	}
	c.items[key] = c.order.PushFront(&cacheItem{key: key, value: value})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheItem).key)
		}
	}
}

// Len returns the number of cached artifacts.
func (c *Cache) Len() int {
	return c.order.Len()
}

// Stats returns hit and miss counts since creation.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits, c.misses
}

// ParseKey addresses a parsed segment list by its content. Segmentation is
// theme-independent, so the theme does not participate.
func ParseKey(content string) string {
	return fmt.Sprintf("md:%016x", uint64(Hash(content)))
}

// HighlightKey addresses highlighted code by content, language and chroma
// style.
func HighlightKey(code, lang, chromaStyle string) string {
	return fmt.Sprintf("hl:%s:%s:%016x", chromaStyle, lang, uint64(Hash(code)))
}
