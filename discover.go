package guji

import "context"

// DiscoverRequest is the input of a single discovery strategy.
// It is scoped to one discovery run and never shared across runs.
type DiscoverRequest struct {
	Book BookID

	// Fetch retrieves pages for this run. Outcomes are memoized per URL,
	// so strategies may request the same page without a second attempt.
	Fetch FetchFunc

	// Found holds the chapters accumulated by higher-priority
	// strategies, in discovery order.
	Found []ChapterRef
}

// DiscoveryStrategy is one independent method of locating chapter pages.
type DiscoveryStrategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// Discover returns candidate chapters in the order found.
	// An error means the strategy contributes nothing; it never aborts
	// the discovery run.
	Discover(ctx context.Context, req *DiscoverRequest) ([]ChapterRef, error)
}

// ChapterDiscoverer produces the ordered, deduplicated chapter list of a book.
type ChapterDiscoverer interface {
	// Discover never fails; it returns an empty slice when nothing
	// was found.
	Discover(ctx context.Context, book BookID) []ChapterRef
}
