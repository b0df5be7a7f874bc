package guji

import (
	"strconv"
	"strings"
	"unicode"
)

// Anchors returns a URL-safe fragment anchor for each title, in order.
// Repeated anchors receive numeric suffixes (-1, -2, ...). Han characters
// count as letters and are kept.
func Anchors(titles []string) []string {
	if len(titles) == 0 {
		return nil
	}

	anchors := make([]string, 0, len(titles))
	counts := make(map[string]int)

	for _, title := range titles {
		base := generateAnchor(title)

		anchor := base
		if count, exists := counts[base]; exists {
			anchor = base + "-" + strconv.Itoa(count)
			counts[base]++
		} else {
			counts[base] = 1
		}

		anchors = append(anchors, anchor)
	}

	return anchors
}

// generateAnchor creates a URL-safe anchor from a title.
// Converts to lowercase, replaces spaces with hyphens, removes special chars.
func generateAnchor(title string) string {
	var sb strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevHyphen = false
		} else if unicode.IsSpace(r) || r == '-' {
			if !prevHyphen && sb.Len() > 0 {
				sb.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(sb.String(), "-")
}
