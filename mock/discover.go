package mock

import (
	"context"

	"github.com/fwojciec/guji"
)

var (
	_ guji.DiscoveryStrategy = (*DiscoveryStrategy)(nil)
	_ guji.ChapterDiscoverer = (*ChapterDiscoverer)(nil)
)

// DiscoveryStrategy is a mock implementation of guji.DiscoveryStrategy.
type DiscoveryStrategy struct {
	NameFn     func() string
	DiscoverFn func(ctx context.Context, req *guji.DiscoverRequest) ([]guji.ChapterRef, error)
}

func (s *DiscoveryStrategy) Name() string {
	return s.NameFn()
}

func (s *DiscoveryStrategy) Discover(ctx context.Context, req *guji.DiscoverRequest) ([]guji.ChapterRef, error) {
	return s.DiscoverFn(ctx, req)
}

// ChapterDiscoverer is a mock implementation of guji.ChapterDiscoverer.
type ChapterDiscoverer struct {
	DiscoverFn func(ctx context.Context, book guji.BookID) []guji.ChapterRef
}

func (d *ChapterDiscoverer) Discover(ctx context.Context, book guji.BookID) []guji.ChapterRef {
	return d.DiscoverFn(ctx, book)
}
