package guji

// Extractor isolates the substantive text of a chapter page.
type Extractor interface {
	// Extract processes raw HTML and returns the chapter text as plain
	// lines. An empty string with a nil error means no extractable
	// content was found. Errors are reserved for unusable input.
	Extract(html string) (string, error)
}

// LinkScope restricts the part of a page scanned for chapter anchors.
type LinkScope int

// Link scopes, from widest to narrowest.
const (
	// ScopePage scans every anchor of the page.
	ScopePage LinkScope = iota

	// ScopeNavigation scans only elements whose class or role hints at
	// a chapter list, table of contents or menu.
	ScopeNavigation

	// ScopeSidebar scans only sidebar-like regions: aside and nav
	// elements and elements whose class or role hints at a sidebar,
	// catalog or navigation.
	ScopeSidebar
)

// String returns the scope name used in logs.
func (s LinkScope) String() string {
	switch s {
	case ScopePage:
		return "page"
	case ScopeNavigation:
		return "navigation"
	case ScopeSidebar:
		return "sidebar"
	default:
		return "unknown"
	}
}

// LinkExtractor finds anchors pointing at chapters of a book.
type LinkExtractor interface {
	// ExtractChapterLinks parses HTML and returns, in document order,
	// every anchor inside scope whose resolved target is a chapter URL
	// of the book. Duplicates are not removed. The baseURL is used to
	// resolve relative hrefs.
	ExtractChapterLinks(html string, baseURL string, book BookID, scope LinkScope) ([]ChapterRef, error)
}
