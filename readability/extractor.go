// Package readability adapts go-readability to the guji.Extractor interface.
package readability

import (
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/guji"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Ensure Extractor implements guji.Extractor at compile time.
var _ guji.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract chapter text from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the readable text of the page, one text node per line.
func (e *Extractor) Extract(rawHTML string) (string, error) {
	if rawHTML == "" {
		return "", guji.Errorf(guji.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return "", err
	}

	root, err := html.Parse(strings.NewReader(article.Content))
	if err != nil {
		return "", err
	}

	text := strings.Join(textLines(root, nil), "\n")
	if utf8.RuneCountInString(text) < guji.MinExtractLength {
		return "", nil
	}
	return text, nil
}

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
