package crawl

import (
	"context"

	"github.com/fwojciec/guji"
)

var _ guji.DiscoveryStrategy = (*SitemapStrategy)(nil)

// SitemapStrategy lists chapter URLs of the book found in the site's
// sitemaps. Titles are the chapter identifiers since sitemaps carry no
// link text. It belongs after every page-based strategy.
type SitemapStrategy struct {
	Site     guji.Site
	Sitemaps guji.SitemapService
}

// Name returns "sitemap".
func (s *SitemapStrategy) Name() string { return "sitemap" }

// Discover returns chapter URLs in sitemap order.
func (s *SitemapStrategy) Discover(ctx context.Context, req *guji.DiscoverRequest) ([]guji.ChapterRef, error) {
	urls, err := s.Sitemaps.DiscoverURLs(ctx, s.Site.SitemapBase(), guji.ChapterFilter(req.Book))
	if err != nil {
		return nil, err
	}

	var refs []guji.ChapterRef
	for _, u := range urls {
		if !guji.IsChapterURL(u, req.Book) {
			continue
		}
		refs = append(refs, guji.ChapterRef{URL: u, Title: guji.ChapterID(u)})
	}
	return refs, nil
}
