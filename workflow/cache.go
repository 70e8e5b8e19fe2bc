package workflow

import (
	"context"
	"sync"
	"time"
)

// SuggestionFetcher loads topic suggestions for an industry.
type SuggestionFetcher func(ctx context.Context, industry string) ([]string, error)

// TopicSuggestionCache memoizes suggestions per industry. At most one
// fetch is in flight per industry; concurrent callers for the same
// industry wait for it. A zero TTL caches for the session lifetime.
type TopicSuggestionCache struct {
	fetch SuggestionFetcher
	ttl   time.Duration
	clock func() time.Time

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	ready     chan struct{}
	topics    []string
	err       error
	fetchedAt time.Time
}

// NewTopicSuggestionCache creates a cache over fetch. ttl of zero means
// entries never expire.
func NewTopicSuggestionCache(fetch SuggestionFetcher, ttl time.Duration) *TopicSuggestionCache {
	return &TopicSuggestionCache{
		fetch:   fetch,
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[string]*cacheEntry),
	}
}

// Get returns the suggestions for an industry, fetching on first use.
// The returned slice is a copy; mutating it does not affect the cache.
func (c *TopicSuggestionCache) Get(ctx context.Context, industry string) ([]string, error) {
	c.mu.Lock()
	e, ok := c.entries[industry]
	if ok && c.expired(e) {
		delete(c.entries, industry)
		ok = false
	}
	if !ok {
		e = &cacheEntry{ready: make(chan struct{})}
		c.entries[industry] = e
		c.mu.Unlock()

		topics, err := c.fetch(ctx, industry)
		e.topics, e.err, e.fetchedAt = topics, err, c.clock()
		if err != nil {
			// Failed fetches are not cached; the next Get retries.
			c.mu.Lock()
			if c.entries[industry] == e {
				delete(c.entries, industry)
			}
			c.mu.Unlock()
		}
		close(e.ready)
	} else {
		c.mu.Unlock()
	}

	select {
	case <-e.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	return append([]string(nil), e.topics...), nil
}

// Invalidate drops the cached entry for one industry.
func (c *TopicSuggestionCache) Invalidate(industry string) {
	c.mu.Lock()
	delete(c.entries, industry)
	c.mu.Unlock()
}

// InvalidateAll drops every cached entry.
func (c *TopicSuggestionCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// expired reports whether a completed entry has outlived the TTL.
// Caller holds the lock. In-flight entries never expire.
func (c *TopicSuggestionCache) expired(e *cacheEntry) bool {
	return c.ttl > 0 && !e.fetchedAt.IsZero() && c.clock().Sub(e.fetchedAt) > c.ttl
}
