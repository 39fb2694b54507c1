package remote

import (
	"container/list"
	"context"
	"sync"

	"github.com/couchcryptid/climate-choropleth/internal/observability"
)

// Fetcher retrieves a resource by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// CachedFetcher wraps a Fetcher with an in-memory LRU cache keyed by URL.
type CachedFetcher struct {
	inner   Fetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner Fetcher, maxEntries int, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

// Fetch returns the cached body for url or fetches and caches it. Failures
// are not cached.
func (c *CachedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if body, ok := c.cache.get(url); ok {
		c.metrics.FetchCache.WithLabelValues("hit").Inc()
		return body, nil
	}
	c.metrics.FetchCache.WithLabelValues("miss").Inc()

	body, err := c.inner.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	c.cache.put(url, body)
	return body, nil
}

// lruCache holds up to limit response bodies, dropping the least recently
// used one when full.
type lruCache struct {
	mu    sync.Mutex
	limit int
	order *list.List // front is most recent; values are *cached
	byURL map[string]*list.Element
}

type cached struct {
	url  string
	body []byte
}

func newLRUCache(limit int) *lruCache {
	return &lruCache{
		limit: limit,
		order: list.New(),
		byURL: make(map[string]*list.Element),
	}
}

func (c *lruCache) get(url string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byURL[url]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cached).body, true
}

func (c *lruCache) put(url string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byURL[url]; ok {
		el.Value.(*cached).body = body
		c.order.MoveToFront(el)
		return
	}
	c.byURL[url] = c.order.PushFront(&cached{url: url, body: body})
	for c.order.Len() > c.limit {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.byURL, oldest.Value.(*cached).url)
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
