package guji

import (
	"context"
	"regexp"
)

// SitemapService lists page URLs published in a site's sitemaps.
type SitemapService interface {
	// DiscoverURLs returns the URLs under baseURL accepted by filter,
	// in sitemap order and without duplicates. A nil filter accepts all.
	DiscoverURLs(ctx context.Context, baseURL string, filter *URLFilter) ([]string, error)
}

// URLFilter accepts a URL that matches some Include pattern (or any URL
// when Include is empty) and no Exclude pattern.
type URLFilter struct {
	Include []*regexp.Regexp
	Exclude []*regexp.Regexp
}

// ChapterFilter accepts only chapter URLs of the book.
func ChapterFilter(book BookID) *URLFilter {
	return &URLFilter{
		Include: []*regexp.Regexp{
			regexp.MustCompile(regexp.QuoteMeta(string(book)) + `.*/chapter/[^/?#]+`),
		},
	}
}

// Match reports whether the filter accepts rawURL. A nil filter accepts all.
func (f *URLFilter) Match(rawURL string) bool {
	if f == nil {
		return true
	}
	if len(f.Include) > 0 && !anyMatch(f.Include, rawURL) {
		return false
	}
	return !anyMatch(f.Exclude, rawURL)
}

func anyMatch(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
