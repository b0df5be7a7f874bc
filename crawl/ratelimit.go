package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/guji"
	"golang.org/x/time/rate"
)

var _ guji.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter paces requests per domain using token buckets with a
// burst of 1: the first request to a domain proceeds at once and each
// later one waits for the interval.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per
// second to each domain.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return newDomainLimiter(rate.Limit(rps))
}

// NewDelayLimiter creates a DomainLimiter that spaces requests to a
// domain by delay. A zero or negative delay disables pacing.
func NewDelayLimiter(delay time.Duration) *DomainLimiter {
	if delay <= 0 {
		return newDomainLimiter(rate.Inf)
	}
	return newDomainLimiter(rate.Every(delay))
}

func newDomainLimiter(limit rate.Limit) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(d.limit, 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
