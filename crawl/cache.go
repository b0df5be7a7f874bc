package crawl

import (
	"context"
	"net/url"
	"sync"

	"github.com/fwojciec/guji"
)

// pageResult is the memoized outcome of one fetch.
type pageResult struct {
	body string
	err  error
}

// pageCache memoizes fetch outcomes, failures included, so each URL is
// attempted at most once for the lifetime of the cache.
type pageCache struct {
	fetcher guji.Fetcher
	limiter guji.DomainLimiter

	mu    sync.Mutex
	pages map[string]pageResult
}

func newPageCache(fetcher guji.Fetcher, limiter guji.DomainLimiter) *pageCache {
	return &pageCache{
		fetcher: fetcher,
		limiter: limiter,
		pages:   make(map[string]pageResult),
	}
}

// Fetch returns the cached outcome for rawURL, fetching it on first use.
// Context cancellation is returned without being cached.
func (c *pageCache) Fetch(ctx context.Context, rawURL string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r, ok := c.pages[rawURL]; ok {
		return r.body, r.err
	}

	if err := waitForDomain(ctx, c.limiter, rawURL); err != nil {
		return "", err
	}

	body, err := c.fetcher.Fetch(ctx, rawURL)
	if err != nil && ctx.Err() != nil {
		return "", err
	}
	c.pages[rawURL] = pageResult{body: body, err: err}
	return body, err
}

// take removes and returns the cached outcome for rawURL. The bool is
// false when rawURL was never fetched. A nil cache holds nothing.
func (c *pageCache) take(rawURL string) (pageResult, bool) {
	if c == nil {
		return pageResult{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.pages[rawURL]
	if ok {
		delete(c.pages, rawURL)
	}
	return r, ok
}

// waitForDomain blocks on the limiter for the host of rawURL.
// A nil limiter never blocks.
func waitForDomain(ctx context.Context, limiter guji.DomainLimiter, rawURL string) error {
	if limiter == nil {
		return ctx.Err()
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return guji.Errorf(guji.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	return limiter.Wait(ctx, u.Host)
}
