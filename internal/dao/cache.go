package dao

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultCacheTTL is the default time-to-live of cached pages.
const DefaultCacheTTL = 30 * time.Second

type cacheEntry struct {
	page      *Page
	timestamp time.Time
}

// PageCache provides TTL-based caching of connection pages.
type PageCache struct {
	data map[string]cacheEntry
	ttl  time.Duration
	now  func() time.Time
	mx   sync.RWMutex
}

// NewPageCache creates a new PageCache with the specified TTL.
func NewPageCache(ttl time.Duration) *PageCache {
	return &PageCache{
		data: make(map[string]cacheEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the cached page for key, if present and fresh.
func (c *PageCache) Get(key string) (*Page, bool) {
	c.mx.RLock()
	defer c.mx.RUnlock()

	e, ok := c.data[key]
	if !ok || c.now().Sub(e.timestamp) > c.ttl {
		return nil, false
	}
	return e.page, true
}

// Set stores a page under key.
func (c *PageCache) Set(key string, p *Page) {
	c.mx.Lock()
	defer c.mx.Unlock()

	c.data[key] = cacheEntry{page: p, timestamp: c.now()}
}

// InvalidatePrefix removes all cache entries whose keys start with the given prefix.
func (c *PageCache) InvalidatePrefix(prefix string) {
	c.mx.Lock()
	defer c.mx.Unlock()

	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
		}
	}
}

// Clear removes all entries from the cache.
func (c *PageCache) Clear() {
	c.mx.Lock()
	defer c.mx.Unlock()

	c.data = make(map[string]cacheEntry)
}

// CachedSource serves repeated requests for the same cursor from memory.
type CachedSource struct {
	Source
	cache *PageCache
}

// NewCachedSource wraps src with a page cache.
func NewCachedSource(src Source, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSource{Source: src, cache: NewPageCache(ttl)}
}

// Fetch returns the cached page or fetches and caches it.
func (c *CachedSource) Fetch(ctx context.Context, rid ResourceID, req PageRequest) (*Page, error) {
	key := cacheKey(rid, req)
	if p, ok := c.cache.Get(key); ok {
		return p.clone(), nil
	}
	p, err := c.Source.Fetch(ctx, rid, req)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, p.clone())

	return p, nil
}

// Invalidate drops every cached page of a connection.
func (c *CachedSource) Invalidate(rid ResourceID) {
	c.cache.InvalidatePrefix(rid.String() + "|")
}

// Purge drops every cached page.
func (c *CachedSource) Purge() {
	c.cache.Clear()
}

func cacheKey(rid ResourceID, req PageRequest) string {
	return fmt.Sprintf("%s|%d|%s", rid, req.First, req.After)
}

func (p *Page) clone() *Page {
	if p == nil {
		return nil
	}
	out := Page{Edges: make([]Edge, len(p.Edges))}
	copy(out.Edges, p.Edges)
	if p.PageInfo != nil {
		pi := *p.PageInfo
		out.PageInfo = &pi
	}
	return &out
}
