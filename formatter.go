package guji

import (
	"strconv"
	"strings"
)

// FormatChapterList formats chapters as a numbered list for display.
// Uses the title if available, falls back to the URL.
func FormatChapterList(refs []ChapterRef) string {
	if len(refs) == 0 {
		return ""
	}

	var b strings.Builder
	for i, ref := range refs {
		title := ref.Title
		if title == "" {
			title = ref.URL
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(title)
		if title != ref.URL {
			b.WriteString("\n   ")
			b.WriteString(ref.URL)
		}
		b.WriteString("\n")
	}

	return b.String()
}
