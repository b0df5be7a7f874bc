// Package goquery implements chapter link discovery and main-content
// extraction on top of github.com/PuerkitoBio/goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/guji"
)

// Ensure LinkExtractor implements guji.LinkExtractor at compile time.
var _ guji.LinkExtractor = (*LinkExtractor)(nil)

// navigationHints mark regions that list chapters, tables of contents or menus.
var navigationHints = []string{"chapter", "toc", "menu"}

// sidebarHints mark sidebar-like regions of a chapter page.
var sidebarHints = []string{"sidebar", "side-bar", "aside", "nav", "menu", "catalog", "toc", "chapter", "directory", "目录", "导航"}

// sidebarTags are elements that are sidebar regions by themselves.
var sidebarTags = []string{"aside", "nav"}

// LinkExtractor finds chapter anchors of a book in HTML.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ExtractChapterLinks parses HTML and returns chapter anchors inside scope,
// in document order. Relative hrefs are resolved against baseURL and
// fragments are stripped. External links (different host than baseURL)
// are filtered out. Link text is whitespace-normalized.
func (e *LinkExtractor) ExtractChapterLinks(html string, baseURL string, book guji.BookID, scope guji.LinkScope) ([]guji.ChapterRef, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, guji.Errorf(guji.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, guji.Errorf(guji.EINVALID, "failed to parse HTML: %v", err)
	}

	var refs []guji.ChapterRef
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if !inScope(sel, scope) {
			return
		}

		href, _ := sel.Attr("href")
		if href == "" || isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" || !isSameHost(base, resolved) {
			return
		}

		if !guji.IsChapterURL(resolved, book) {
			return
		}

		refs = append(refs, guji.ChapterRef{
			URL:   resolved,
			Title: normalizeSpace(sel.Text()),
		})
	})

	return refs, nil
}

// inScope reports whether the anchor lies inside a region the scope accepts.
// Hints on the anchor itself do not count.
func inScope(sel *goquery.Selection, scope guji.LinkScope) bool {
	switch scope {
	case guji.ScopeNavigation:
		return hasHintedAncestor(sel.Parent(), navigationHints, nil)
	case guji.ScopeSidebar:
		return hasHintedAncestor(sel.Parent(), sidebarHints, sidebarTags)
	default:
		return true
	}
}

// hasHintedAncestor walks from sel up to the root looking for an element
// whose tag is one of tags, or whose class or role attribute contains one
// of hints (case-insensitive substring match).
func hasHintedAncestor(sel *goquery.Selection, hints []string, tags []string) bool {
	for cur := sel; cur.Length() > 0; cur = cur.Parent() {
		if len(tags) > 0 {
			name := goquery.NodeName(cur)
			for _, tag := range tags {
				if name == tag {
					return true
				}
			}
		}
		if attrContainsHint(cur, "class", hints) || attrContainsHint(cur, "role", hints) {
			return true
		}
	}
	return false
}

func attrContainsHint(sel *goquery.Selection, attr string, hints []string) bool {
	value, ok := sel.Attr(attr)
	if !ok || value == "" {
		return false
	}
	value = strings.ToLower(value)
	for _, hint := range hints {
		if strings.Contains(value, hint) {
			return true
		}
	}
	return false
}

// normalizeSpace trims s and collapses internal whitespace runs to one space.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveURL resolves a relative URL against a base URL.
// Returns empty string if the href cannot be parsed.
// Fragments are stripped from the resolved URL for deduplication purposes.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}

// isSameHost checks if the resolved URL has the same host as the base URL.
// This uses exact host matching - subdomains are considered different hosts.
func isSameHost(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return u.Host == base.Host
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
