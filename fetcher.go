package guji

import "context"

// Fetcher retrieves raw markup from URLs.
// Any non-success status or network failure is reported as an error;
// callers treat every error as "no content", never as fatal.
type Fetcher interface {
	// Fetch retrieves the body at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (body string, err error)

	// Close releases transport resources.
	Close() error
}

// FetchFunc is the signature of a single fetch call.
type FetchFunc func(ctx context.Context, url string) (string, error)

// DomainLimiter paces requests per domain.
type DomainLimiter interface {
	// Wait blocks until the pacing policy allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
