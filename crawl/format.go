package crawl

import (
	"fmt"
	"net/url"

	"github.com/cespare/xxhash/v2"
)

// ComputeHash returns the xxhash of content as 16 lowercase hex digits.
func ComputeHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// TruncateURL shortens a URL for a progress line. Only the path is shown,
// since every chapter of a run shares the host, and a long path keeps its
// tail where the chapter identifier is.
func TruncateURL(rawURL string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	s := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		s = u.EscapedPath()
		if s == "" {
			s = "/"
		}
	}

	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[len(s)-maxLen:]
	}
	return "..." + s[len(s)-maxLen+3:]
}

// FormatBytes formats a size in binary units.
func FormatBytes(n int) string {
	const (
		kib = 1 << 10
		mib = 1 << 20
	)
	switch {
	case n >= mib:
		return fmt.Sprintf("%.1f MB", float64(n)/mib)
	case n >= kib:
		return fmt.Sprintf("%.1f KB", float64(n)/kib)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
