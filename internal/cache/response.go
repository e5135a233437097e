// Package cache provides caching utilities for the MCP server.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Response is a cached GET response body.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	FetchedAt   time.Time
}

// FetchFunc produces a response on a cache miss.
type FetchFunc func(ctx context.Context) (*Response, error)

// ResponseCache provides thread-safe, expiring LRU caching of switch GET
// responses. Concurrent misses for the same key share one fetch.
type ResponseCache struct {
	cache *expirable.LRU[string, *Response]
	group singleflight.Group
}

// NewResponseCache creates a cache holding at most maxItems responses for ttl each.
func NewResponseCache(maxItems int, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		cache: expirable.NewLRU[string, *Response](maxItems, nil, ttl),
	}
}

// Key builds the cache key for a GET of path on host.
func Key(host, path string) string {
	return host + " " + path
}

// Get retrieves a response from the cache.
func (c *ResponseCache) Get(key string) (*Response, bool) {
	return c.cache.Get(key)
}

// Put adds or updates a response. Only 2xx responses are stored.
func (c *ResponseCache) Put(key string, resp *Response) {
	if resp == nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return
	}
	c.cache.Add(key, resp)
}

// GetOrFetch returns the cached response for key, calling fetch on a miss.
// The second result reports whether the response came from the cache.
// The shared fetch is not cancelled with any one caller; a caller whose ctx
// ends stops waiting and gets ctx.Err().
func (c *ResponseCache) GetOrFetch(ctx context.Context, key string, fetch FetchFunc) (*Response, bool, error) {
	if resp, ok := c.cache.Get(key); ok {
		return resp, true, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		resp, err := fetch(shared)
		if err != nil {
			return nil, err
		}
		c.Put(key, resp)
		return resp, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*Response), false, nil
	}
}

// Purge removes every entry.
func (c *ResponseCache) Purge() {
	c.cache.Purge()
}

// Len returns the current number of items in the cache.
func (c *ResponseCache) Len() int {
	return c.cache.Len()
}
