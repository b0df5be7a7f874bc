package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/guji"
	"github.com/fwojciec/guji/crawl"
	"github.com/fwojciec/guji/fs"
	"github.com/fwojciec/guji/goquery"
	gujihttp "github.com/fwojciec/guji/http"
	"github.com/fwojciec/guji/readability"
	gujislog "github.com/fwojciec/guji/slog"
	"github.com/fwojciec/guji/sqlite"
	"github.com/fwojciec/guji/trafilatura"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, errorText(err))
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite archive, opened only when --db is set.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("gujifetch"),
		kong.Description("Fetch a classical text from 识典古籍 into a single Markdown file"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	// Configuration errors surface before any network activity.
	book, site, err := cli.Book()
	if err != nil {
		fmt.Fprintln(stderr, "Hint: set --book-id (BOOK_ID) or --book-url (BOOK_URL)")
		return err
	}
	if cli.Delay < 0 {
		return guji.Errorf(guji.EINVALID, "request delay must not be negative")
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	}

	httpFetcher := gujihttp.NewFetcher(
		gujihttp.WithTimeout(cli.Timeout),
		gujihttp.WithUserAgent(cli.UserAgent),
	)
	fetcher := gujislog.NewLoggingFetcher(httpFetcher, logger)
	defer fetcher.Close()

	// One limiter paces every request of the run.
	limiter := crawl.NewDelayLimiter(time.Duration(cli.Delay) * time.Second)

	strategies := crawl.DefaultStrategies(site, goquery.NewLinkExtractor(), cli.Keywords)
	if cli.Sitemap {
		sitemaps := gujislog.NewLoggingSitemapService(gujihttp.NewSitemapService(fetcher), logger)
		strategies = append(strategies, &crawl.SitemapStrategy{Site: site, Sitemaps: sitemaps})
	}

	deps.Discoverer = &crawl.Discoverer{
		Fetcher:     fetcher,
		Strategies:  gujislog.WrapStrategies(strategies, logger),
		RateLimiter: limiter,
	}

	cmd := &FetchCmd{
		Book:    book,
		Preview: cli.Preview,
		Verbose: cli.Verbose,
	}

	if cli.Preview {
		return cmd.Run(deps)
	}

	deps.Assembler = &crawl.Assembler{
		Discoverer:  deps.Discoverer,
		Fetcher:     fetcher,
		Extractor:   gujislog.NewLoggingExtractor(newExtractor(cli.Extractor), logger),
		RateLimiter: limiter,
		Site:        site,
		Concurrency: cli.Concurrency,
	}

	deps.Output = fs.NewWriter(cli.OutputDir)
	deps.Writers = []guji.DocumentWriter{deps.Output}

	if cli.DB != "" {
		m.DB = sqlite.NewDB(cli.DB)
		if err := m.DB.Open(); err != nil {
			return fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
		}
		defer m.Close()
		deps.Writers = append(deps.Writers, sqlite.NewDocumentStore(m.DB))
	}

	return cmd.Run(deps)
}

// newExtractor returns the extractor selected by name.
func newExtractor(name string) guji.Extractor {
	switch name {
	case "readability":
		return readability.NewExtractor()
	case "trafilatura":
		return trafilatura.NewExtractor()
	default:
		return goquery.NewExtractor()
	}
}

// errorText returns the message of an application error, or the error
// itself for anything else.
func errorText(err error) string {
	var e *guji.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
