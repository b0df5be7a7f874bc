package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// renderText returns the text of the selection with every text node
// trimmed and placed on its own line. Empty text nodes are dropped.
func renderText(sel *goquery.Selection) string {
	var lines []string
	for _, n := range sel.Nodes {
		lines = collectText(n, lines)
	}
	return strings.Join(lines, "\n")
}

func collectText(n *html.Node, lines []string) []string {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			lines = append(lines, text)
		}
		return lines
	case html.CommentNode, html.DoctypeNode:
		return lines
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return lines
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		lines = collectText(c, lines)
	}
	return lines
}

// textLength counts the characters of rendered text.
func textLength(s string) int {
	return utf8.RuneCountInString(s)
}
