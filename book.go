package guji

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultBaseURL is the site the tool targets when no book URL is given.
const DefaultBaseURL = "https://www.shidianguji.com"

// Content thresholds, counted in characters (runes).
const (
	// MinChapterLength is the shortest chapter text kept in a Document.
	MinChapterLength = 100

	// MinExtractLength is the shortest extraction not treated as empty.
	// Some legitimate chapters are a single short aphorism.
	MinExtractLength = 10
)

var (
	bookIDPattern  = regexp.MustCompile(`/book/([^/?#]+)`)
	chapterPattern = regexp.MustCompile(`/chapter/([^/?#]+)`)
)

// BookID is the opaque key of a book on the source site.
type BookID string

// ParseBookID derives a book identifier from a URL containing /book/<ID>.
// It never fails; the bool result is false when the input does not match.
func ParseBookID(rawURL string) (BookID, bool) {
	m := bookIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	id, err := url.PathUnescape(m[1])
	if err != nil || id == "" {
		return "", false
	}
	return BookID(id), true
}

// IsChapterURL reports whether rawURL addresses a chapter page of the book:
// it must match .../chapter/<id> and contain the book identifier.
func IsChapterURL(rawURL string, book BookID) bool {
	if book == "" || !chapterPattern.MatchString(rawURL) {
		return false
	}
	return strings.Contains(rawURL, string(book))
}

// ChapterID returns the trailing chapter identifier of a chapter URL,
// or the empty string if rawURL is not a chapter URL.
func ChapterID(rawURL string) string {
	m := chapterPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// Site describes the URL layout of the source site.
type Site struct {
	BaseURL string
}

// SiteFromURL returns the Site whose base is the scheme and host of rawURL.
func SiteFromURL(rawURL string) (Site, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Site{}, Errorf(EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Site{}, Errorf(EINVALID, "URL %q must be absolute", rawURL)
	}
	return Site{BaseURL: u.Scheme + "://" + u.Host}, nil
}

func (s Site) base() string {
	if s.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimSuffix(s.BaseURL, "/")
}

// BookURL returns the root page of a book.
func (s Site) BookURL(id BookID) string {
	return s.base() + "/book/" + url.PathEscape(string(id))
}

// ChapterURL returns the page of a single chapter.
func (s Site) ChapterURL(id BookID, chapterID string) string {
	return s.BookURL(id) + "/chapter/" + url.PathEscape(chapterID)
}

// APIURL returns the conventional chapter-listing endpoint of a book.
func (s Site) APIURL(id BookID) string {
	return s.base() + "/api/book/" + url.PathEscape(string(id)) + "/chapters"
}

// TOCURL returns the conventional table-of-contents page of a book.
func (s Site) TOCURL(id BookID) string {
	return s.BookURL(id) + "/toc"
}

// SitemapBase returns the site root used for robots.txt and sitemap lookup.
func (s Site) SitemapBase() string {
	return s.base() + "/"
}

// ChapterRef identifies a chapter page. Identity is the URL (exact match);
// the title is advisory.
type ChapterRef struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Book is the input of an assembly run.
type Book struct {
	ID    BookID
	Title string // optional override; defaults to the ID

	// Seeds is the caller-supplied fallback chapter list used
	// when discovery finds nothing.
	Seeds []ChapterRef
}

// DisplayTitle returns the title override or, when empty, the book ID.
func (b *Book) DisplayTitle() string {
	if t := strings.TrimSpace(b.Title); t != "" {
		return t
	}
	return string(b.ID)
}

// ChapterContent is the raw output of an Extractor for one chapter.
type ChapterContent struct {
	Ref     ChapterRef
	RawText string
}

// CleanedChapter is a chapter whose text is in canonical form.
type CleanedChapter struct {
	Ref         ChapterRef `json:"ref"`
	Text        string     `json:"text"`
	ContentHash string     `json:"contentHash"`
}

// Document is the ordered collection of cleaned chapters of a book.
type Document struct {
	BookID    BookID           `json:"bookId"`
	Title     string           `json:"title"`
	SourceURL string           `json:"sourceUrl"`
	Chapters  []CleanedChapter `json:"chapters"`
	FetchedAt time.Time        `json:"fetchedAt"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.BookID == "" {
		return Errorf(EINVALID, "document book ID required")
	}
	if d.Title == "" {
		return Errorf(EINVALID, "document title required")
	}
	if len(d.Chapters) == 0 {
		return Errorf(EINVALID, "document has no chapters")
	}
	for i, ch := range d.Chapters {
		if ch.Ref.URL == "" {
			return Errorf(EINVALID, "chapter %d: URL required", i)
		}
		if utf8.RuneCountInString(ch.Text) < MinChapterLength {
			return Errorf(EINVALID, "chapter %d: text shorter than %d characters", i, MinChapterLength)
		}
	}
	return nil
}

// DocumentWriter persists an assembled document.
type DocumentWriter interface {
	WriteDocument(ctx context.Context, doc *Document) error
}
