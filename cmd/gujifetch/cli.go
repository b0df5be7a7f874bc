package main

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/guji"
	"github.com/fwojciec/guji/crawl"
	"github.com/fwojciec/guji/fs"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Discoverer guji.ChapterDiscoverer
	Assembler  *crawl.Assembler

	// Output is the Markdown writer; Writers holds it first, then any archive.
	Output  *fs.Writer
	Writers []guji.DocumentWriter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	BookID      string        `name:"book-id" env:"BOOK_ID" help:"Book identifier, e.g. HY1523"`
	BookURL     string        `name:"book-url" env:"BOOK_URL" help:"Book page URL; the ID is read from /book/<ID>"`
	Title       string        `name:"title" env:"BOOK_TITLE" help:"Document title (default: the book ID)"`
	OutputDir   string        `name:"output-dir" short:"o" env:"OUTPUT_DIR" default:"output" help:"Directory for the Markdown file"`
	Delay       int           `name:"delay" env:"REQUEST_DELAY" default:"1" help:"Seconds to wait between requests"`
	BaseURL     string        `name:"base-url" default:"https://www.shidianguji.com" help:"Site root, ignored when --book-url is set"`
	Timeout     time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
	Preview     bool          `short:"p" help:"List discovered chapters without fetching them"`
	Extractor   string        `enum:"cascade,readability,trafilatura" default:"cascade" help:"Content extractor (cascade, readability, trafilatura)"`
	Keywords    []string      `name:"keyword" short:"k" help:"Keep only nested chapters whose title contains one of these (repeatable)"`
	Seeds       []string      `name:"seed" help:"Fallback chapter as TITLE|URL or URL (repeatable)"`
	Sitemap     bool          `help:"Also look for chapters in the site's sitemaps"`
	DB          string        `name:"db" env:"GUJI_DB" help:"Archive the document in this SQLite database"`
	Concurrency int           `short:"c" default:"1" help:"Chapters fetched in parallel"`
	UserAgent   string        `name:"user-agent" help:"User-Agent header sent with every request"`
	Verbose     bool          `short:"v" help:"Log every request and chapter"`
}

// Book resolves the book and site to fetch. The explicit ID wins over the
// one in the book URL; the site comes from the book URL when one is set.
func (c *CLI) Book() (*guji.Book, guji.Site, error) {
	site := guji.Site{BaseURL: c.BaseURL}
	if c.BookURL != "" {
		s, err := guji.SiteFromURL(c.BookURL)
		if err != nil {
			return nil, guji.Site{}, err
		}
		site = s
	}

	id := guji.BookID(strings.TrimSpace(c.BookID))
	if id == "" && c.BookURL != "" {
		parsed, ok := guji.ParseBookID(c.BookURL)
		if !ok {
			return nil, guji.Site{}, guji.Errorf(guji.EINVALID, "no book ID in URL %q", c.BookURL)
		}
		id = parsed
	}
	if id == "" {
		return nil, guji.Site{}, guji.Errorf(guji.EINVALID, "book ID required")
	}

	seeds := make([]guji.ChapterRef, 0, len(c.Seeds))
	for _, s := range c.Seeds {
		ref, err := parseSeed(s)
		if err != nil {
			return nil, guji.Site{}, err
		}
		seeds = append(seeds, ref)
	}

	return &guji.Book{ID: id, Title: c.Title, Seeds: seeds}, site, nil
}

// FetchCmd handles the main fetch operation.
type FetchCmd struct {
	Book    *guji.Book
	Preview bool
	Verbose bool
}

// parseSeed parses "TITLE|URL" or a bare URL, whose title is then its
// chapter identifier.
func parseSeed(s string) (guji.ChapterRef, error) {
	title, rawURL, ok := strings.Cut(s, "|")
	if !ok {
		rawURL, title = s, ""
	}
	title = strings.TrimSpace(title)
	rawURL = strings.TrimSpace(rawURL)

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return guji.ChapterRef{}, guji.Errorf(guji.EINVALID, "invalid seed URL %q", rawURL)
	}
	if title == "" {
		title = guji.ChapterID(rawURL)
	}
	return guji.ChapterRef{URL: rawURL, Title: title}, nil
}
