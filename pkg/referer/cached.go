package referer

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the default number of classifications to cache.
// Referer streams are dominated by a few hosts, so a few thousand entries
// cover most traffic.
const DefaultCacheSize = 4096

// CachedClassifier wraps a Classifier with an LRU cache keyed by the full
// host, path and query triple. Results are deterministic for a given table,
// so a cache must not outlive the table behind inner.
type CachedClassifier struct {
	inner Classifier
	cache *lru.Cache[string, Classification]
}

// Ensure CachedClassifier implements Classifier.
var _ Classifier = (*CachedClassifier)(nil)

// NewCachedClassifier creates a cached classifier wrapping inner.
// A non-positive size selects DefaultCacheSize.
func NewCachedClassifier(inner Classifier, size int) *CachedClassifier {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, Classification](size)
	return &CachedClassifier{
		inner: inner,
		cache: cache,
	}
}

func cacheKey(host, path, query string) string {
	return host + "\x00" + path + "\x00" + query
}

// Classify returns the cached classification if present, otherwise
// classifies with the inner classifier and caches the result.
func (c *CachedClassifier) Classify(host, path, query string) Classification {
	key := cacheKey(host, path, query)
	if v, ok := c.cache.Get(key); ok {
		return v
	}
	v := c.inner.Classify(host, path, query)
	c.cache.Add(key, v)
	return v
}

// Len returns the number of cached classifications.
func (c *CachedClassifier) Len() int {
	return c.cache.Len()
}

// Purge drops every cached classification.
func (c *CachedClassifier) Purge() {
	c.cache.Purge()
}

// Inner returns the wrapped classifier.
func (c *CachedClassifier) Inner() Classifier {
	return c.inner
}
