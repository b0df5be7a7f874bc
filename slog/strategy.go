package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/guji"
)

// Ensure LoggingStrategy implements guji.DiscoveryStrategy.
var _ guji.DiscoveryStrategy = (*LoggingStrategy)(nil)

// LoggingStrategy wraps a DiscoveryStrategy with logging.
type LoggingStrategy struct {
	next   guji.DiscoveryStrategy
	logger *slog.Logger
}

// NewLoggingStrategy creates a new LoggingStrategy.
func NewLoggingStrategy(next guji.DiscoveryStrategy, logger *slog.Logger) *LoggingStrategy {
	return &LoggingStrategy{next: next, logger: logger}
}

// WrapStrategies decorates every strategy with logging, keeping order.
func WrapStrategies(strategies []guji.DiscoveryStrategy, logger *slog.Logger) []guji.DiscoveryStrategy {
	out := make([]guji.DiscoveryStrategy, len(strategies))
	for i, s := range strategies {
		out[i] = NewLoggingStrategy(s, logger)
	}
	return out
}

// Name returns the name of the wrapped strategy.
func (s *LoggingStrategy) Name() string {
	return s.next.Name()
}

// Discover delegates to the wrapped strategy and logs the outcome.
func (s *LoggingStrategy) Discover(ctx context.Context, req *guji.DiscoverRequest) (refs []guji.ChapterRef, err error) {
	defer func(begin time.Time) {
		s.logger.Info("discovery strategy",
			"strategy", s.next.Name(),
			"book", string(req.Book),
			"count", len(refs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Discover(ctx, req)
}
