package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/guji"
)

var _ guji.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService logs each sitemap lookup of the sitemap probe.
type LoggingSitemapService struct {
	next   guji.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService wraps next.
func NewLoggingSitemapService(next guji.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs logs the site root, how many URLs were accepted and
// whether a filter applied. A failed lookup is logged at WARN.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *guji.URLFilter) (urls []string, err error) {
	begin := time.Now()
	urls, err = s.next.DiscoverURLs(ctx, baseURL, filter)

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "sitemap discovery",
		"url", baseURL,
		"filtered", filter != nil,
		"count", len(urls),
		"duration", time.Since(begin),
		"err", err,
	)
	return urls, err
}
