package crawl

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/guji"
)

// Compile-time interface verification.
var (
	_ guji.DiscoveryStrategy = (*PageScanStrategy)(nil)
	_ guji.DiscoveryStrategy = (*APIStrategy)(nil)
	_ guji.DiscoveryStrategy = (*TOCStrategy)(nil)
	_ guji.DiscoveryStrategy = (*NestedStrategy)(nil)
)

// DefaultSampleSize is how many discovered chapter pages the nested
// strategy samples when the book root cannot be fetched.
const DefaultSampleSize = 3

// navigationStoplist holds link texts that name site navigation rather
// than chapters. Matching is exact and case-insensitive.
var navigationStoplist = stoplist(
	"下一页", "上一页", "下一章", "上一章", "下一篇", "上一篇",
	"目录", "返回", "书库", "返回书库", "返回目录", "首页", "登录",
	"next page", "previous page", "next chapter", "previous chapter",
	"table of contents", "contents", "back", "home", "library",
)

func stoplist(phrases ...string) map[string]bool {
	m := make(map[string]bool, len(phrases))
	for _, p := range phrases {
		m[p] = true
	}
	return m
}

// DefaultStrategies returns the discovery strategies in priority order:
// page scan, API probe, table-of-contents probe, nested probe.
func DefaultStrategies(site guji.Site, links guji.LinkExtractor, keywords []string) []guji.DiscoveryStrategy {
	return []guji.DiscoveryStrategy{
		&PageScanStrategy{Site: site, Links: links},
		&APIStrategy{Site: site},
		&TOCStrategy{Site: site, Links: links},
		&NestedStrategy{Site: site, Links: links, Keywords: keywords},
	}
}

// PageScanStrategy scans every chapter anchor of the book root page.
type PageScanStrategy struct {
	Site  guji.Site
	Links guji.LinkExtractor
}

// Name returns "page".
func (s *PageScanStrategy) Name() string { return "page" }

// Discover keeps anchors whose link text is longer than one character,
// which drops icon-only and empty links.
func (s *PageScanStrategy) Discover(ctx context.Context, req *guji.DiscoverRequest) ([]guji.ChapterRef, error) {
	pageURL := s.Site.BookURL(req.Book)
	refs, err := scanPage(ctx, req, s.Links, pageURL, guji.ScopePage)
	if err != nil {
		return nil, err
	}
	return filterRefs(refs, hasTitle), nil
}

// APIStrategy asks the chapter-listing endpoint of the site.
type APIStrategy struct {
	Site guji.Site
}

// Name returns "api".
func (s *APIStrategy) Name() string { return "api" }

// apiResponse accepts both a bare chapter collection and one wrapped in
// a data envelope with a status code.
type apiResponse struct {
	Code     *int         `json:"code"`
	Success  *bool        `json:"success"`
	Chapters []apiChapter `json:"chapters"`
	Data     *apiResponse `json:"data"`
}

type apiChapter struct {
	ID    json.RawMessage `json:"id"`
	Title string          `json:"title"`
}

// Discover maps each listed chapter to its page URL. Chapters without
// a title are named after their ID.
func (s *APIStrategy) Discover(ctx context.Context, req *guji.DiscoverRequest) ([]guji.ChapterRef, error) {
	body, err := req.Fetch(ctx, s.Site.APIURL(req.Book))
	if err != nil {
		return nil, err
	}

	var resp apiResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, guji.Errorf(guji.EINVALID, "malformed chapter listing: %v", err)
	}

	chapters, err := resp.chapters()
	if err != nil {
		return nil, err
	}

	var refs []guji.ChapterRef
	for _, ch := range chapters {
		id := chapterKey(ch.ID)
		if id == "" {
			continue
		}
		title := strings.TrimSpace(ch.Title)
		if title == "" {
			title = "章节" + id
		}
		refs = append(refs, guji.ChapterRef{
			URL:   s.Site.ChapterURL(req.Book, id),
			Title: title,
		})
	}
	return refs, nil
}

// chapters returns the chapter collection of a successful response.
func (r *apiResponse) chapters() ([]apiChapter, error) {
	if r.Success != nil && !*r.Success {
		return nil, guji.Errorf(guji.EUNAVAILABLE, "chapter listing reported failure")
	}
	if r.Code != nil && *r.Code != 0 {
		return nil, guji.Errorf(guji.EUNAVAILABLE, "chapter listing returned code %d", *r.Code)
	}
	if r.Chapters != nil {
		return r.Chapters, nil
	}
	if r.Data != nil {
		return r.Data.chapters()
	}
	return nil, guji.Errorf(guji.EINVALID, "chapter listing has no chapters field")
}

// chapterKey renders a JSON string or number ID as a path segment.
func chapterKey(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// TOCStrategy scans the table-of-contents page, limited to regions whose
// class or role hints at a chapter list, table of contents or menu.
type TOCStrategy struct {
	Site  guji.Site
	Links guji.LinkExtractor
}

// Name returns "toc".
func (s *TOCStrategy) Name() string { return "toc" }

// Discover never widens to the whole page.
func (s *TOCStrategy) Discover(ctx context.Context, req *guji.DiscoverRequest) ([]guji.ChapterRef, error) {
	refs, err := scanPage(ctx, req, s.Links, s.Site.TOCURL(req.Book), guji.ScopeNavigation)
	if err != nil {
		return nil, err
	}
	return filterRefs(refs, hasTitle), nil
}

// NestedStrategy rescans the book root with a relevance filter to pick up
// chapters listed only in nested sidebar navigation. When the root page
// cannot be fetched it samples the first already-discovered chapter pages
// and scans their sidebars instead.
type NestedStrategy struct {
	Site  guji.Site
	Links guji.LinkExtractor

	// Keywords, when set, is an allowlist: a title must contain one of them.
	Keywords []string

	// SampleSize defaults to DefaultSampleSize.
	SampleSize int
}

// Name returns "nested".
func (s *NestedStrategy) Name() string { return "nested" }

// Discover returns relevant chapters, each title at most once.
func (s *NestedStrategy) Discover(ctx context.Context, req *guji.DiscoverRequest) ([]guji.ChapterRef, error) {
	f := newRelevanceFilter(s.Keywords)

	refs, err := scanPage(ctx, req, s.Links, s.Site.BookURL(req.Book), guji.ScopePage)
	if err == nil {
		return filterRefs(refs, f.keep), nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return s.sample(ctx, req, f), nil
}

// sample scans the sidebars of the first discovered chapter pages.
// A page that fails contributes nothing.
func (s *NestedStrategy) sample(ctx context.Context, req *guji.DiscoverRequest, f *relevanceFilter) []guji.ChapterRef {
	n := s.SampleSize
	if n <= 0 {
		n = DefaultSampleSize
	}
	n = min(n, len(req.Found))

	var out []guji.ChapterRef
	for _, chapter := range req.Found[:n] {
		if ctx.Err() != nil {
			break
		}
		refs, err := scanPage(ctx, req, s.Links, chapter.URL, guji.ScopeSidebar)
		if err != nil {
			continue
		}
		for _, ref := range refs {
			if ref.URL == chapter.URL {
				continue
			}
			if f.keep(ref) {
				out = append(out, ref)
			}
		}
	}
	return out
}

// relevanceFilter keeps content links and remembers titles already kept.
type relevanceFilter struct {
	keywords []string
	seen     map[string]bool
}

func newRelevanceFilter(keywords []string) *relevanceFilter {
	var kw []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			kw = append(kw, k)
		}
	}
	return &relevanceFilter{keywords: kw, seen: make(map[string]bool)}
}

func (f *relevanceFilter) keep(ref guji.ChapterRef) bool {
	title := strings.TrimSpace(ref.Title)
	if utf8.RuneCountInString(title) <= 2 {
		return false
	}
	if navigationStoplist[strings.ToLower(title)] {
		return false
	}
	if f.seen[title] {
		return false
	}
	if len(f.keywords) > 0 && !containsAny(title, f.keywords) {
		return false
	}
	f.seen[title] = true
	return true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// scanPage fetches pageURL through the run's fetch function and extracts
// chapter anchors within scope.
func scanPage(ctx context.Context, req *guji.DiscoverRequest, links guji.LinkExtractor, pageURL string, scope guji.LinkScope) ([]guji.ChapterRef, error) {
	html, err := req.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return links.ExtractChapterLinks(html, pageURL, req.Book, scope)
}

// hasTitle reports whether the link text is longer than one character.
func hasTitle(ref guji.ChapterRef) bool {
	return utf8.RuneCountInString(strings.TrimSpace(ref.Title)) > 1
}

func filterRefs(refs []guji.ChapterRef, keep func(guji.ChapterRef) bool) []guji.ChapterRef {
	var out []guji.ChapterRef
	for _, ref := range refs {
		if keep(ref) {
			out = append(out, ref)
		}
	}
	return out
}
