package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/guji"
)

// Ensure Extractor implements guji.Extractor at compile time.
var _ guji.Extractor = (*Extractor)(nil)

// contentSelectors are tried when the page has no article element.
// The candidate with the longest text wins; ties go to the earlier selector.
var contentSelectors = []string{
	"#chapter-content",
	".chapter-content",
	".reader-content",
	".read-content",
	".book-content",
	"#content",
	".content",
	".text",
	".chapter-text",
	"[class*='content']",
	"[class*='chapter']",
	"[class*='text']",
}

// noiseSelectors are removed before falling back to the whole body.
var noiseSelectors = []string{
	"nav",
	"header",
	"footer",
	"aside",
	".sidebar",
	".nav",
	".navbar",
	".menu",
	".breadcrumb",
	"[role='navigation']",
	"[role='banner']",
	"[role='contentinfo']",
	"[class*='sidebar']",
}

// Extractor isolates chapter text with a fixed cascade: an article
// element, then known content containers, then the body with page
// furniture removed.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the chapter text, one text node per line. Results
// shorter than guji.MinExtractLength characters are reported as empty.
func (e *Extractor) Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", guji.Errorf(guji.EINVALID, "failed to parse HTML: %v", err)
	}

	doc.Find("script, style, noscript").Remove()

	text := extractArticle(doc)
	if text == "" {
		text = extractContainer(doc)
	}
	if text == "" {
		text = extractBody(doc)
	}

	if textLength(text) < guji.MinExtractLength {
		return "", nil
	}
	return text, nil
}

func extractArticle(doc *goquery.Document) string {
	article := doc.Find("article").First()
	if article.Length() == 0 {
		return ""
	}
	return renderText(article)
}

func extractContainer(doc *goquery.Document) string {
	var best string
	bestLen := 0
	for _, sel := range contentSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			text := renderText(s)
			if n := textLength(text); n > bestLen {
				best, bestLen = text, n
			}
		})
	}
	return best
}

func extractBody(doc *goquery.Document) string {
	body := doc.Find("body")
	for _, sel := range noiseSelectors {
		body.Find(sel).Remove()
	}
	return renderText(body)
}
