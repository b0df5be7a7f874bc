package mock

import "github.com/fwojciec/guji"

var (
	_ guji.Extractor     = (*Extractor)(nil)
	_ guji.LinkExtractor = (*LinkExtractor)(nil)
)

// Extractor is a mock implementation of guji.Extractor.
type Extractor struct {
	ExtractFn func(html string) (string, error)
}

func (e *Extractor) Extract(html string) (string, error) {
	return e.ExtractFn(html)
}

// LinkExtractor is a mock implementation of guji.LinkExtractor.
type LinkExtractor struct {
	ExtractChapterLinksFn func(html, baseURL string, book guji.BookID, scope guji.LinkScope) ([]guji.ChapterRef, error)
}

func (e *LinkExtractor) ExtractChapterLinks(html, baseURL string, book guji.BookID, scope guji.LinkScope) ([]guji.ChapterRef, error) {
	return e.ExtractChapterLinksFn(html, baseURL, book, scope)
}
