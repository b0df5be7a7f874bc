package main

import (
	"fmt"

	"github.com/fwojciec/guji"
	"github.com/fwojciec/guji/crawl"
)

// Run executes the fetch command.
func (c *FetchCmd) Run(deps *Dependencies) error {
	// Preview mode: list chapters without fetching them
	if c.Preview {
		return c.runPreview(deps)
	}

	return c.runFetch(deps)
}

func (c *FetchCmd) runPreview(deps *Dependencies) error {
	refs := deps.Discoverer.Discover(deps.Ctx, c.Book.ID)
	source := "discovered"
	if len(refs) == 0 {
		refs = crawl.DedupeChapters(c.Book.Seeds)
		source = "seed"
	}
	if err := deps.Ctx.Err(); err != nil {
		return err
	}
	if len(refs) == 0 {
		fmt.Fprintf(deps.Stderr, "No chapters found for book %s\n", c.Book.ID)
		return guji.Errorf(guji.ENOTFOUND, "no chapters found for book %s", c.Book.ID)
	}

	fmt.Fprintf(deps.Stdout, "%d %s chapters for book %s:\n\n", len(refs), source, c.Book.ID)
	fmt.Fprint(deps.Stdout, guji.FormatChapterList(refs))
	return nil
}

func (c *FetchCmd) runFetch(deps *Dependencies) error {
	doc, res, err := deps.Assembler.Assemble(deps.Ctx, c.Book, c.progress(deps))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "Failed to fetch book %s: %s\n", c.Book.ID, errorText(err))
		return err
	}

	for _, w := range deps.Writers {
		if err := w.WriteDocument(deps.Ctx, doc); err != nil {
			fmt.Fprintf(deps.Stderr, "error saving: %v\n", err)
			return err
		}
	}

	fmt.Fprintf(deps.Stdout, "Saved %d chapters to %s\n", res.Saved, deps.Output.Path(doc))
	fmt.Fprintf(deps.Stdout, "Skipped %d, failed %d, %s of text\n", res.Skipped, res.Failed, crawl.FormatBytes(res.Bytes))
	return nil
}

// progress renders assembly events. Verbose output gets one line per
// chapter; otherwise a single progress line is rewritten in place.
func (c *FetchCmd) progress(deps *Dependencies) crawl.ProgressFunc {
	return func(e crawl.ProgressEvent) {
		switch e.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Found %d chapters\n", e.Total)
			return
		case crawl.ProgressFinished:
			if !c.Verbose {
				// Clear progress line
				fmt.Fprintf(deps.Stdout, "\r%80s\r", "")
			}
			return
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "skip %s: %s\n", e.URL, errorText(e.Error))
		}

		if !c.Verbose {
			fmt.Fprintf(deps.Stdout, "\r[%d/%d] %s", e.Completed, e.Total, crawl.TruncateURL(e.URL, 40))
			return
		}

		switch e.Type {
		case crawl.ProgressSaved:
			fmt.Fprintf(deps.Stdout, "[%d/%d] saved %s %s\n", e.Completed, e.Total, e.Title, e.Hash)
		case crawl.ProgressSkipped:
			fmt.Fprintf(deps.Stdout, "[%d/%d] too short %s\n", e.Completed, e.Total, e.URL)
		}
	}
}
