package slog

import (
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/guji"
)

// Ensure LoggingExtractor implements guji.Extractor.
var _ guji.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging. Empty extractions
// are logged at warn level.
type LoggingExtractor struct {
	next   guji.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next guji.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) Extract(html string) (text string, err error) {
	defer func(begin time.Time) {
		switch {
		case err != nil:
			e.logger.Warn("extraction failed", "bytes", len(html), "err", err)
		case text == "":
			e.logger.Warn("extraction empty", "bytes", len(html))
		default:
			e.logger.Info("extract",
				"bytes", len(html),
				"chars", utf8.RuneCountInString(text),
				"duration", time.Since(begin),
			)
		}
	}(time.Now())
	return e.next.Extract(html)
}
