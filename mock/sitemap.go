package mock

import (
	"context"

	"github.com/fwojciec/guji"
)

var _ guji.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of guji.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *guji.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *guji.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
