package crawl_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/guji"
	"github.com/fwojciec/guji/crawl"
	"github.com/fwojciec/guji/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticStrategy returns a mock strategy that always yields refs.
func staticStrategy(name string, refs ...guji.ChapterRef) *mock.DiscoveryStrategy {
	return &mock.DiscoveryStrategy{
		NameFn: func() string { return name },
		DiscoverFn: func(_ context.Context, _ *guji.DiscoverRequest) ([]guji.ChapterRef, error) {
			return refs, nil
		},
	}
}

func failingStrategy(name string) *mock.DiscoveryStrategy {
	return &mock.DiscoveryStrategy{
		NameFn: func() string { return name },
		DiscoverFn: func(_ context.Context, _ *guji.DiscoverRequest) ([]guji.ChapterRef, error) {
			return nil, guji.Errorf(guji.EUNAVAILABLE, "boom")
		},
	}
}

func ref(id, title string) guji.ChapterRef {
	return guji.ChapterRef{URL: "https://www.shidianguji.com/book/HY1523/chapter/" + id, Title: title}
}

func TestDiscoverer_Discover(t *testing.T) {
	t.Parallel()

	t.Run("merges strategies in priority order without duplicates", func(t *testing.T) {
		t.Parallel()

		d := &crawl.Discoverer{
			Strategies: []guji.DiscoveryStrategy{
				staticStrategy("page", ref("1", "第一卷"), ref("2", "第二卷")),
				staticStrategy("api", ref("2", "卷二"), ref("3", "第三卷")),
				staticStrategy("toc", ref("1", "卷一"), ref("4", "第四卷")),
			},
		}

		got := d.Discover(context.Background(), "HY1523")

		assert.Equal(t, []guji.ChapterRef{
			ref("1", "第一卷"),
			ref("2", "第二卷"),
			ref("3", "第三卷"),
			ref("4", "第四卷"),
		}, got)
	})

	t.Run("first-seen title wins on URL collision", func(t *testing.T) {
		t.Parallel()

		d := &crawl.Discoverer{
			Strategies: []guji.DiscoveryStrategy{
				staticStrategy("page", ref("1", "第一")),
				staticStrategy("nested", ref("1", "第一卷 梦林玄解")),
			},
		}

		got := d.Discover(context.Background(), "HY1523")

		require.Len(t, got, 1)
		assert.Equal(t, "第一", got[0].Title)
	})

	t.Run("failing strategy contributes nothing", func(t *testing.T) {
		t.Parallel()

		d := &crawl.Discoverer{
			Strategies: []guji.DiscoveryStrategy{
				failingStrategy("page"),
				staticStrategy("api", ref("1", "第一卷")),
				failingStrategy("toc"),
			},
		}

		got := d.Discover(context.Background(), "HY1523")

		assert.Equal(t, []guji.ChapterRef{ref("1", "第一卷")}, got)
	})

	t.Run("total failure yields empty result", func(t *testing.T) {
		t.Parallel()

		d := &crawl.Discoverer{
			Strategies: []guji.DiscoveryStrategy{failingStrategy("page"), failingStrategy("api")},
		}

		assert.Empty(t, d.Discover(context.Background(), "HY1523"))
	})

	t.Run("later strategies see what was found before them", func(t *testing.T) {
		t.Parallel()

		var seen []guji.ChapterRef
		d := &crawl.Discoverer{
			Strategies: []guji.DiscoveryStrategy{
				staticStrategy("page", ref("1", "第一卷"), ref("1", "重复")),
				&mock.DiscoveryStrategy{
					NameFn: func() string { return "nested" },
					DiscoverFn: func(_ context.Context, req *guji.DiscoverRequest) ([]guji.ChapterRef, error) {
						seen = req.Found
						assert.Equal(t, guji.BookID("HY1523"), req.Book)
						return nil, nil
					},
				},
			},
		}

		d.Discover(context.Background(), "HY1523")

		assert.Equal(t, []guji.ChapterRef{ref("1", "第一卷")}, seen)
	})

	t.Run("each URL is fetched at most once per run", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				calls.Add(1)
				if url == "https://www.shidianguji.com/book/HY1523/toc" {
					return "", errors.New("unreachable")
				}
				return "<html></html>", nil
			},
		}
		fetching := func(urls ...string) *mock.DiscoveryStrategy {
			return &mock.DiscoveryStrategy{
				NameFn: func() string { return "fetching" },
				DiscoverFn: func(ctx context.Context, req *guji.DiscoverRequest) ([]guji.ChapterRef, error) {
					for _, u := range urls {
						_, _ = req.Fetch(ctx, u)
					}
					return nil, nil
				},
			}
		}

		d := &crawl.Discoverer{
			Fetcher: fetcher,
			Strategies: []guji.DiscoveryStrategy{
				fetching("https://www.shidianguji.com/book/HY1523", "https://www.shidianguji.com/book/HY1523/toc"),
				fetching("https://www.shidianguji.com/book/HY1523", "https://www.shidianguji.com/book/HY1523/toc"),
			},
		}

		d.Discover(context.Background(), "HY1523")
		assert.Equal(t, int32(2), calls.Load())

		d.Discover(context.Background(), "HY1523")
		assert.Equal(t, int32(4), calls.Load(), "cache does not outlive a run")
	})

	t.Run("paces fetches per host", func(t *testing.T) {
		t.Parallel()

		var domains []string
		limiter := &mock.DomainLimiter{
			WaitFn: func(_ context.Context, domain string) error {
				domains = append(domains, domain)
				return nil
			},
		}
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) { return "", nil },
		}

		d := &crawl.Discoverer{
			Fetcher:     fetcher,
			RateLimiter: limiter,
			Strategies: []guji.DiscoveryStrategy{
				&mock.DiscoveryStrategy{
					NameFn: func() string { return "page" },
					DiscoverFn: func(ctx context.Context, req *guji.DiscoverRequest) ([]guji.ChapterRef, error) {
						_, err := req.Fetch(ctx, "https://www.shidianguji.com/book/HY1523")
						return nil, err
					},
				},
			},
		}

		d.Discover(context.Background(), "HY1523")

		assert.Equal(t, []string{"www.shidianguji.com"}, domains)
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		d := &crawl.Discoverer{
			Strategies: []guji.DiscoveryStrategy{
				staticStrategy("page", ref("3", "丙"), ref("1", "甲")),
				staticStrategy("api", ref("2", "乙"), ref("3", "丙丙")),
			},
		}

		first := d.Discover(context.Background(), "HY1523")
		second := d.Discover(context.Background(), "HY1523")

		assert.Equal(t, first, second)
		assert.Equal(t, []guji.ChapterRef{ref("3", "丙"), ref("1", "甲"), ref("2", "乙")}, first)
	})

	t.Run("stops after cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		d := &crawl.Discoverer{
			Strategies: []guji.DiscoveryStrategy{
				&mock.DiscoveryStrategy{
					NameFn: func() string { return "page" },
					DiscoverFn: func(_ context.Context, _ *guji.DiscoverRequest) ([]guji.ChapterRef, error) {
						cancel()
						return []guji.ChapterRef{ref("1", "第一卷")}, nil
					},
				},
				staticStrategy("api", ref("2", "第二卷")),
			},
		}

		got := d.Discover(ctx, "HY1523")

		assert.Equal(t, []guji.ChapterRef{ref("1", "第一卷")}, got)
	})
}
