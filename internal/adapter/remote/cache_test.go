package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-choropleth/internal/observability"
)

// --- mock for cache tests ---

type countingFetcher struct {
	calls map[string]int
	err   error
}

func (m *countingFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[url]++
	if m.err != nil {
		return nil, m.err
	}
	return []byte("body:" + url), nil
}

// --- CachedFetcher tests ---

func TestCachedFetcher_CacheHit(t *testing.T) {
	inner := &countingFetcher{}
	cached := NewCachedFetcher(inner, 10, observability.NewMetricsForTesting())

	b1, err := cached.Fetch(context.Background(), "https://example.org/a.csv")
	require.NoError(t, err)
	b2, err := cached.Fetch(context.Background(), "https://example.org/a.csv")
	require.NoError(t, err)

	assert.Equal(t, b1, b2)
	assert.Equal(t, "body:https://example.org/a.csv", string(b1))
	assert.Equal(t, 1, inner.calls["https://example.org/a.csv"], "should only call inner once")
}

func TestCachedFetcher_ErrorsNotCached(t *testing.T) {
	inner := &countingFetcher{err: errors.New("status 503")}
	cached := NewCachedFetcher(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.Fetch(context.Background(), "u")
	require.Error(t, err)
	_, err = cached.Fetch(context.Background(), "u")
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls["u"])
	assert.Equal(t, 0, cached.cache.size())
}

func TestCachedFetcher_DistinctURLs(t *testing.T) {
	inner := &countingFetcher{}
	cached := NewCachedFetcher(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Fetch(context.Background(), "a")
	_, _ = cached.Fetch(context.Background(), "b")

	assert.Equal(t, 1, inner.calls["a"])
	assert.Equal(t, 1, inner.calls["b"])
}

// --- LRU cache tests ---

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", []byte("1"))
	c.put("b", []byte("2"))
	c.put("c", []byte("3")) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should be evicted")

	v, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "2", string(v))

	v, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "3", string(v))
}

func TestLRUCache_AccessPromotes(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", []byte("1"))
	c.put("b", []byte("2"))
	c.get("a")              // promote "a"
	c.put("c", []byte("3")) // evicts "b"

	_, ok := c.get("b")
	assert.False(t, ok, "b should be evicted")
	_, ok = c.get("a")
	assert.True(t, ok, "a should survive")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", []byte("1"))
	c.put("a", []byte("2"))

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "2", string(v))
	assert.Equal(t, 1, c.size())
}
