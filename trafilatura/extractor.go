// Package trafilatura adapts go-trafilatura to the guji.Extractor interface.
package trafilatura

import (
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/guji"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements guji.Extractor at compile time.
var _ guji.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract chapter text from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the main text of the page, one text node per line.
func (e *Extractor) Extract(rawHTML string) (string, error) {
	if rawHTML == "" {
		return "", guji.Errorf(guji.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return "", err
	}
	if result.ContentNode == nil {
		return "", nil
	}

	text := strings.Join(textLines(result.ContentNode, nil), "\n")
	if utf8.RuneCountInString(text) < guji.MinExtractLength {
		return "", nil
	}
	return text, nil
}

// textLines collects the trimmed, non-empty text nodes under n.
func textLines(n *html.Node, lines []string) []string {
	if n.Type == html.TextNode {
		if s := strings.TrimSpace(n.Data); s != "" {
			lines = append(lines, s)
		}
		return lines
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		lines = textLines(c, lines)
	}
	return lines
}
