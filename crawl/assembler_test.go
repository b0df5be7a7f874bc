package crawl_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/guji"
	"github.com/fwojciec/guji/crawl"
	"github.com/fwojciec/guji/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// body returns chapter text of n characters.
func body(n int) string {
	return strings.Repeat("夢", n)
}

// servePages serves a page per URL; the page body is its chapter text.
func servePages(texts map[string]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			text, ok := texts[url]
			if !ok {
				return "", guji.Errorf(guji.EUNAVAILABLE, "connection refused")
			}
			return text, nil
		},
	}
}

// passthrough extracts the page body verbatim.
var passthrough = &mock.Extractor{
	ExtractFn: func(html string) (string, error) { return html, nil },
}

func discovering(refs ...guji.ChapterRef) *mock.ChapterDiscoverer {
	return &mock.ChapterDiscoverer{
		DiscoverFn: func(_ context.Context, _ guji.BookID) []guji.ChapterRef { return refs },
	}
}

var fixedNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func TestAssembler_Assemble(t *testing.T) {
	t.Parallel()

	t.Run("assembles chapters in discovery order", func(t *testing.T) {
		t.Parallel()

		a := &crawl.Assembler{
			Discoverer: discovering(ref("2", "第二卷"), ref("1", "第一卷")),
			Fetcher: servePages(map[string]string{
				ref("1", "").URL: "第一卷\n" + body(120),
				ref("2", "").URL: "第二卷\n" + body(150),
			}),
			Extractor: passthrough,
			Site:      site,
			Now:       func() time.Time { return fixedNow },
		}

		doc, res, err := a.Assemble(context.Background(), &guji.Book{ID: "HY1523", Title: "梦林玄解"}, nil)

		require.NoError(t, err)
		assert.Equal(t, "梦林玄解", doc.Title)
		assert.Equal(t, guji.BookID("HY1523"), doc.BookID)
		assert.Equal(t, bookURL, doc.SourceURL)
		assert.Equal(t, fixedNow, doc.FetchedAt)
		require.Len(t, doc.Chapters, 2)
		assert.Equal(t, ref("2", "第二卷"), doc.Chapters[0].Ref)
		assert.Equal(t, "第二卷\n\n"+body(150), doc.Chapters[0].Text)
		assert.Equal(t, crawl.ComputeHash(doc.Chapters[0].Text), doc.Chapters[0].ContentHash)
		assert.Equal(t, ref("1", "第一卷"), doc.Chapters[1].Ref)
		assert.Equal(t, 2, res.Saved)
		require.NoError(t, doc.Validate())
	})

	t.Run("short chapter is excluded", func(t *testing.T) {
		t.Parallel()

		a := &crawl.Assembler{
			Discoverer: discovering(ref("1", "序"), ref("2", "第一卷")),
			Fetcher: servePages(map[string]string{
				ref("1", "").URL: body(50),
				ref("2", "").URL: body(101),
			}),
			Extractor: passthrough,
		}

		doc, res, err := a.Assemble(context.Background(), &guji.Book{ID: "HY1523"}, nil)

		require.NoError(t, err)
		require.Len(t, doc.Chapters, 1)
		assert.Equal(t, ref("2", "第一卷"), doc.Chapters[0].Ref)
		assert.Equal(t, 1, res.Skipped)
		assert.Equal(t, "HY1523", doc.Title)
	})

	t.Run("exactly the threshold is not enough", func(t *testing.T) {
		t.Parallel()

		a := &crawl.Assembler{
			Discoverer: discovering(ref("1", "第一卷")),
			Fetcher:    servePages(map[string]string{ref("1", "").URL: body(guji.MinChapterLength)}),
			Extractor:  passthrough,
		}

		_, _, err := a.Assemble(context.Background(), &guji.Book{ID: "HY1523"}, nil)

		assert.Equal(t, guji.ENOTFOUND, guji.ErrorCode(err))
	})

	t.Run("chapter that shrinks below threshold when cleaned is excluded", func(t *testing.T) {
		t.Parallel()

		raw := strings.Repeat("学而时习之\n", 30)
		a := &crawl.Assembler{
			Discoverer: discovering(ref("1", "第一卷")),
			Fetcher:    servePages(map[string]string{ref("1", "").URL: raw}),
			Extractor:  passthrough,
		}

		_, res, err := a.Assemble(context.Background(), &guji.Book{ID: "HY1523"}, nil)

		assert.Equal(t, guji.ENOTFOUND, guji.ErrorCode(err))
		assert.Equal(t, 1, res.Skipped)
	})

	t.Run("falls back to seeds in seed order", func(t *testing.T) {
		t.Parallel()

		seeds := []guji.ChapterRef{ref("b", "乙"), ref("a", "甲")}
		a := &crawl.Assembler{
			Discoverer: discovering(),
			Fetcher: servePages(map[string]string{
				ref("a", "").URL: body(200),
				ref("b", "").URL: body(300),
			}),
			Extractor: passthrough,
		}

		doc, _, err := a.Assemble(context.Background(), &guji.Book{ID: "HY1523", Seeds: seeds}, nil)

		require.NoError(t, err)
		require.Len(t, doc.Chapters, 2)
		assert.Equal(t, seeds[0], doc.Chapters[0].Ref)
		assert.Equal(t, seeds[1], doc.Chapters[1].Ref)
	})

	t.Run("seeds are ignored when discovery finds chapters", func(t *testing.T) {
		t.Parallel()

		a := &crawl.Assembler{
			Discoverer: discovering(ref("1", "第一卷")),
			Fetcher: servePages(map[string]string{
				ref("1", "").URL: body(200),
				ref("s", "").URL: body(200),
			}),
			Extractor: passthrough,
		}

		doc, _, err := a.Assemble(context.Background(), &guji.Book{ID: "HY1523", Seeds: []guji.ChapterRef{ref("s", "种子")}}, nil)

		require.NoError(t, err)
		require.Len(t, doc.Chapters, 1)
		assert.Equal(t, ref("1", "第一卷"), doc.Chapters[0].Ref)
	})

	t.Run("duplicate seeds are fetched once", func(t *testing.T) {
		t.Parallel()

		var fetched []string
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				fetched = append(fetched, url)
				return body(200), nil
			},
		}
		a := &crawl.Assembler{
			Discoverer: discovering(),
			Fetcher:    fetcher,
			Extractor:  passthrough,
		}
		book := &guji.Book{ID: "HY1523", Seeds: []guji.ChapterRef{ref("a", "甲"), ref("a", "甲二")}}

		doc, _, err := a.Assemble(context.Background(), book, nil)

		require.NoError(t, err)
		assert.Len(t, doc.Chapters, 1)
		assert.Equal(t, []string{ref("a", "").URL}, fetched)
	})

	t.Run("one failing fetch among five does not abort", func(t *testing.T) {
		t.Parallel()

		texts := map[string]string{}
		var refs []guji.ChapterRef
		for _, id := range []string{"1", "2", "3", "4", "5"} {
			refs = append(refs, ref(id, "第"+id+"卷"))
			if id != "3" {
				texts[ref(id, "").URL] = body(150)
			}
		}

		var events []crawl.ProgressEvent
		a := &crawl.Assembler{
			Discoverer: discovering(refs...),
			Fetcher:    servePages(texts),
			Extractor:  passthrough,
		}

		doc, res, err := a.Assemble(context.Background(), &guji.Book{ID: "HY1523"}, func(e crawl.ProgressEvent) {
			events = append(events, e)
		})

		require.NoError(t, err)
		require.Len(t, doc.Chapters, 4)
		for _, ch := range doc.Chapters {
			assert.NotEqual(t, ref("3", "").URL, ch.Ref.URL)
		}
		assert.Equal(t, 4, res.Saved)
		assert.Equal(t, 1, res.Failed)

		require.Len(t, events, 7)
		assert.Equal(t, crawl.ProgressStarted, events[0].Type)
		assert.Equal(t, 5, events[0].Total)
		assert.Equal(t, crawl.ProgressFailed, events[3].Type)
		assert.Equal(t, ref("3", "").URL, events[3].URL)
		assert.Error(t, events[3].Error)
		assert.NotEmpty(t, events[1].Hash)
		assert.Equal(t, crawl.ProgressFinished, events[6].Type)
	})

	t.Run("extraction error skips the chapter", func(t *testing.T) {
		t.Parallel()

		a := &crawl.Assembler{
			Discoverer: discovering(ref("1", "第一卷"), ref("2", "第二卷")),
			Fetcher: servePages(map[string]string{
				ref("1", "").URL: "bad",
				ref("2", "").URL: body(150),
			}),
			Extractor: &mock.Extractor{
				ExtractFn: func(html string) (string, error) {
					if html == "bad" {
						return "", guji.Errorf(guji.EINVALID, "unparseable")
					}
					return html, nil
				},
			},
		}

		doc, _, err := a.Assemble(context.Background(), &guji.Book{ID: "HY1523"}, nil)

		require.NoError(t, err)
		require.Len(t, doc.Chapters, 1)
		assert.Equal(t, ref("2", "第二卷"), doc.Chapters[0].Ref)
	})

	t.Run("nothing obtained is not found", func(t *testing.T) {
		t.Parallel()

		a := &crawl.Assembler{
			Discoverer: discovering(),
			Fetcher:    servePages(nil),
			Extractor:  passthrough,
		}

		doc, _, err := a.Assemble(context.Background(), &guji.Book{ID: "HY1523"}, nil)

		assert.Nil(t, doc)
		assert.Equal(t, guji.ENOTFOUND, guji.ErrorCode(err))
	})

	t.Run("requires a book ID", func(t *testing.T) {
		t.Parallel()

		a := &crawl.Assembler{}

		_, _, err := a.Assemble(context.Background(), &guji.Book{}, nil)

		assert.Equal(t, guji.EINVALID, guji.ErrorCode(err))
	})

	t.Run("waits on the limiter before every chapter", func(t *testing.T) {
		t.Parallel()

		var waits []string
		a := &crawl.Assembler{
			Discoverer: discovering(ref("1", "第一卷"), ref("2", "第二卷")),
			Fetcher: servePages(map[string]string{
				ref("1", "").URL: body(150),
				ref("2", "").URL: body(150),
			}),
			Extractor: passthrough,
			RateLimiter: &mock.DomainLimiter{
				WaitFn: func(_ context.Context, domain string) error {
					waits = append(waits, domain)
					return nil
				},
			},
		}

		_, _, err := a.Assemble(context.Background(), &guji.Book{ID: "HY1523"}, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"www.shidianguji.com", "www.shidianguji.com"}, waits)
	})

	t.Run("cancellation between chapters stops the run", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		var fetched int
		a := &crawl.Assembler{
			Discoverer: discovering(ref("1", "第一卷"), ref("2", "第二卷")),
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					fetched++
					cancel()
					return body(150), nil
				},
			},
			Extractor: passthrough,
		}

		_, _, err := a.Assemble(ctx, &guji.Book{ID: "HY1523"}, nil)

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, fetched)
	})

	t.Run("concurrent run keeps discovery order", func(t *testing.T) {
		t.Parallel()

		var refs []guji.ChapterRef
		texts := map[string]string{}
		for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
			refs = append(refs, ref(id, "卷"+id))
			texts[ref(id, "").URL] = id + body(150)
		}

		var mu sync.Mutex
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				// Earlier chapters finish last.
				if url == ref("a", "").URL {
					time.Sleep(30 * time.Millisecond)
				}
				mu.Lock()
				defer mu.Unlock()
				text, ok := texts[url]
				if !ok {
					return "", errors.New("missing")
				}
				return text, nil
			},
		}
		a := &crawl.Assembler{
			Discoverer:  discovering(refs...),
			Fetcher:     fetcher,
			Extractor:   passthrough,
			Concurrency: 3,
		}

		doc, res, err := a.Assemble(context.Background(), &guji.Book{ID: "HY1523"}, nil)

		require.NoError(t, err)
		require.Len(t, doc.Chapters, 6)
		for i, ch := range doc.Chapters {
			assert.Equal(t, refs[i], ch.Ref)
		}
		assert.Equal(t, 6, res.Saved)
	})

	t.Run("pages fetched during discovery are not fetched again", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		calls := make(map[string]int)
		pages := servePages(map[string]string{
			ref("1", "").URL: body(120),
			ref("3", "").URL: body(130),
		})
		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				mu.Lock()
				calls[url]++
				mu.Unlock()
				return pages.Fetch(ctx, url)
			},
		}
		sampling := &mock.DiscoveryStrategy{
			NameFn: func() string { return "sampling" },
			DiscoverFn: func(ctx context.Context, req *guji.DiscoverRequest) ([]guji.ChapterRef, error) {
				_, _ = req.Fetch(ctx, ref("1", "").URL)
				_, _ = req.Fetch(ctx, ref("2", "").URL)
				return []guji.ChapterRef{ref("1", "第一卷"), ref("2", "第二卷"), ref("3", "第三卷")}, nil
			},
		}

		a := &crawl.Assembler{
			Discoverer: &crawl.Discoverer{Fetcher: fetcher, Strategies: []guji.DiscoveryStrategy{sampling}},
			Fetcher:    fetcher,
			Extractor:  passthrough,
			Site:       site,
		}

		doc, res, err := a.Assemble(context.Background(), &guji.Book{ID: "HY1523"}, nil)

		require.NoError(t, err)
		require.Len(t, doc.Chapters, 2)
		assert.Equal(t, ref("1", "第一卷"), doc.Chapters[0].Ref)
		assert.Equal(t, ref("3", "第三卷"), doc.Chapters[1].Ref)
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, map[string]int{
			ref("1", "").URL: 1,
			ref("2", "").URL: 1,
			ref("3", "").URL: 1,
		}, calls)
	})
}
