package crawl

import (
	"context"

	"github.com/fwojciec/guji"
)

var _ guji.ChapterDiscoverer = (*Discoverer)(nil)

// Discoverer runs discovery strategies in priority order and folds their
// results into one ordered, URL-deduplicated chapter list.
type Discoverer struct {
	Fetcher     guji.Fetcher
	Strategies  []guji.DiscoveryStrategy
	RateLimiter guji.DomainLimiter
}

// Discover returns the chapters of the book in discovery order.
//
// A failing strategy contributes nothing and the next one runs. Each run
// gets its own page cache, so a page requested by several strategies is
// fetched once. Cancellation stops the fold and returns what was found.
func (d *Discoverer) Discover(ctx context.Context, book guji.BookID) []guji.ChapterRef {
	return d.discover(ctx, book, newPageCache(d.Fetcher, d.RateLimiter))
}

// discover runs the fold fetching through cache, which the caller may
// keep using after discovery.
func (d *Discoverer) discover(ctx context.Context, book guji.BookID, cache *pageCache) []guji.ChapterRef {
	found := NewChapterSet(expectedChapters)

	for _, strategy := range d.Strategies {
		if ctx.Err() != nil {
			break
		}

		refs, err := strategy.Discover(ctx, &guji.DiscoverRequest{
			Book:  book,
			Fetch: cache.Fetch,
			Found: found.Refs(),
		})
		if err != nil {
			continue
		}

		for _, ref := range refs {
			found.Add(ref)
		}
	}

	return found.Refs()
}
