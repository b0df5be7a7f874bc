// Package crawl discovers the chapters of a book and assembles their
// cleaned text into a document.
package crawl

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/guji"
	"golang.org/x/sync/errgroup"
)

// Assembler sequences discovery, fetching, extraction and cleaning into
// a single ordered Document.
type Assembler struct {
	Discoverer  guji.ChapterDiscoverer
	Fetcher     guji.Fetcher
	Extractor   guji.Extractor
	RateLimiter guji.DomainLimiter
	Site        guji.Site

	// Concurrency above 1 fetches chapters in parallel. Document order
	// is still discovery order.
	Concurrency int

	// Now defaults to time.Now.
	Now func() time.Time
}

// Result summarizes an assembly run.
type Result struct {
	Saved   int
	Skipped int
	Failed  int
	Bytes   int
}

// ProgressEvent reports progress during an assembly run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Title     string
	Hash      string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressSaved
	ProgressSkipped
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting assembly progress.
type ProgressFunc func(event ProgressEvent)

// chapterResult holds the outcome of processing a single chapter.
type chapterResult struct {
	position int
	ref      guji.ChapterRef
	chapter  *guji.CleanedChapter
	err      error
}

func (r chapterResult) eventType() ProgressType {
	switch {
	case r.err != nil:
		return ProgressFailed
	case r.chapter == nil:
		return ProgressSkipped
	default:
		return ProgressSaved
	}
}

// Assemble builds the Document of a book. Discovery results are used when
// there are any, otherwise the book's seed chapters. A chapter that fails
// to fetch or extract, or whose text is too short, is left out without
// aborting the run. Returns ENOTFOUND when no chapter survives.
func (a *Assembler) Assemble(ctx context.Context, book *guji.Book, progress ProgressFunc) (*guji.Document, *Result, error) {
	if book == nil || book.ID == "" {
		return nil, nil, guji.Errorf(guji.EINVALID, "book ID required")
	}

	// Pages already fetched by discovery are not requested again.
	var cache *pageCache
	var refs []guji.ChapterRef
	if d, ok := a.Discoverer.(*Discoverer); ok {
		cache = newPageCache(d.Fetcher, d.RateLimiter)
		refs = d.discover(ctx, book.ID, cache)
	} else {
		refs = a.Discoverer.Discover(ctx, book.ID)
	}
	if len(refs) == 0 {
		refs = book.Seeds
	}
	refs = DedupeChapters(refs)

	if progress == nil {
		progress = func(ProgressEvent) {}
	}
	total := len(refs)
	progress(ProgressEvent{Type: ProgressStarted, Total: total})

	results := make([]chapterResult, total)
	completed := 0
	record := func(r chapterResult) {
		completed++
		results[r.position] = r
		event := ProgressEvent{
			Type:      r.eventType(),
			Completed: completed,
			Total:     total,
			URL:       r.ref.URL,
			Title:     r.ref.Title,
			Error:     r.err,
		}
		if r.chapter != nil {
			event.Hash = r.chapter.ContentHash
		}
		progress(event)
	}

	if a.Concurrency > 1 {
		a.processConcurrently(ctx, cache, refs, record)
	} else {
		for i, ref := range refs {
			if ctx.Err() != nil {
				break
			}
			record(a.processChapter(ctx, cache, i, ref))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	doc := &guji.Document{
		BookID:    book.ID,
		Title:     book.DisplayTitle(),
		SourceURL: a.Site.BookURL(book.ID),
		FetchedAt: a.now(),
	}
	var res Result
	for _, r := range results {
		switch r.eventType() {
		case ProgressFailed:
			res.Failed++
		case ProgressSkipped:
			res.Skipped++
		case ProgressSaved:
			res.Saved++
			res.Bytes += len(r.chapter.Text)
			doc.Chapters = append(doc.Chapters, *r.chapter)
		}
	}

	progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})

	if len(doc.Chapters) == 0 {
		return nil, &res, guji.Errorf(guji.ENOTFOUND, "no chapters obtained for book %s", book.ID)
	}
	return doc, &res, nil
}

// processConcurrently runs processChapter on a bounded pool and reports
// results from the calling goroutine in completion order.
func (a *Assembler) processConcurrently(ctx context.Context, cache *pageCache, refs []guji.ChapterRef, record func(chapterResult)) {
	resultCh := make(chan chapterResult, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Concurrency)

	go func() {
		for i, ref := range refs {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				resultCh <- a.processChapter(gctx, cache, i, ref)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	for r := range resultCh {
		record(r)
	}
}

// processChapter fetches, extracts and cleans one chapter. A nil chapter
// with a nil error means the chapter had no real content.
func (a *Assembler) processChapter(ctx context.Context, cache *pageCache, position int, ref guji.ChapterRef) chapterResult {
	result := chapterResult{position: position, ref: ref}

	html, err := a.fetchChapter(ctx, cache, ref.URL)
	if err != nil {
		result.err = err
		return result
	}

	raw, err := a.Extractor.Extract(html)
	if err != nil {
		result.err = err
		return result
	}
	if utf8.RuneCountInString(strings.TrimSpace(raw)) <= guji.MinChapterLength {
		return result
	}

	text := guji.Clean(raw)
	if utf8.RuneCountInString(text) < guji.MinChapterLength {
		return result
	}

	result.chapter = &guji.CleanedChapter{
		Ref:         ref,
		Text:        text,
		ContentHash: ComputeHash(text),
	}
	return result
}

// fetchChapter reuses the discovery outcome for rawURL, failures
// included, and fetches only pages discovery never requested.
func (a *Assembler) fetchChapter(ctx context.Context, cache *pageCache, rawURL string) (string, error) {
	if r, ok := cache.take(rawURL); ok {
		return r.body, r.err
	}
	if err := waitForDomain(ctx, a.RateLimiter, rawURL); err != nil {
		return "", err
	}
	return a.Fetcher.Fetch(ctx, rawURL)
}

func (a *Assembler) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
