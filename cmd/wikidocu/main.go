package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/wikidocu"
	"github.com/fwojciec/wikidocu/chat"
	"github.com/fwojciec/wikidocu/crawl"
	"github.com/fwojciec/wikidocu/evidence"
	"github.com/fwojciec/wikidocu/gemini"
	"github.com/fwojciec/wikidocu/glamour"
	"github.com/fwojciec/wikidocu/goquery"
	"github.com/fwojciec/wikidocu/htmltomarkdown"
	wikihttp "github.com/fwojciec/wikidocu/http"
	"github.com/fwojciec/wikidocu/lru"
	"github.com/fwojciec/wikidocu/readability"
	"github.com/fwojciec/wikidocu/rod"
	"github.com/fwojciec/wikidocu/scan"
	wikislog "github.com/fwojciec/wikidocu/slog"
	"github.com/fwojciec/wikidocu/sqlite"
	"github.com/fwojciec/wikidocu/trafilatura"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// .env may set GEMINI_API_KEY and WIKIDOCU_DB.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run(); a db entry in the config file
	// or --db takes precedence.
	DBPath string

	// SQLite database used by the thread store.
	DB *sqlite.DB

	// Config is the merged file and flag configuration of the last Run.
	Config *Config

	// closers release fetchers and browsers opened for the command.
	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	if m.DB != nil {
		if err := m.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.DB = nil
	}
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		NewID:  uuid.NewString,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("wikidocu"),
		kong.Description("Answer questions from local files and web pages with cited evidence."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Vars{"default_model": gemini.DefaultModel},
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'wikidocu --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := LoadConfig(cli.Config)
	if err != nil {
		return err
	}
	if err := cfg.Apply(cli); err != nil {
		return err
	}
	m.Config = cfg
	if cfg.DB != "" {
		m.DBPath = cfg.DB
	}

	deps.Logger = newLogger(stderr, cli.Verbose)
	defer m.Close()

	cmd := strings.Fields(kongCtx.Command())[0]
	switch cmd {
	case "history", "forget":
		if err := m.wireThreads(deps, cli.Memory, stderr); err != nil {
			return err
		}

	case "scan":
		completer, err := m.newCompleter(ctx, deps.Logger, stderr)
		if err != nil {
			return err
		}
		scanner, err := m.newScanner(completer, deps.Logger, cli.Verbose, stderr)
		if err != nil {
			return err
		}
		deps.Scanner = scanner

	case "ask", "chat":
		roots := cli.Ask.Sources
		if cmd == "chat" {
			roots = cli.Chat.Sources
		}
		if len(roots) == 0 {
			roots = cfg.Sources
		}
		if err := m.wireThreads(deps, cli.Memory, stderr); err != nil {
			return err
		}
		completer, err := m.newCompleter(ctx, deps.Logger, stderr)
		if err != nil {
			return err
		}
		scanner, err := m.newScanner(completer, deps.Logger, cli.Verbose, stderr)
		if err != nil {
			return err
		}
		deps.Engine = &chat.Engine{
			Completer:  completer,
			Scanner:    scanner,
			Extractor:  evidence.NewExtractor(completer, deps.Logger),
			Threads:    deps.Threads,
			Roots:      roots,
			QueryCount: cfg.QueryCount,
			Retention:  wikidocu.RetentionPolicy{KeepLast: cfg.KeepLast},
			Logger:     deps.Logger,
			NewID:      uuid.NewString,
		}
	}

	if cli.Stats && (cmd == "ask" || cmd == "chat" || cmd == "scan") {
		tokenCounter, err := gemini.NewTokenCounter(cfg.Model)
		if err != nil {
			return fmt.Errorf("failed to create token counter: %w", err)
		}
		deps.TokenCounter = tokenCounter
	}

	if cli.Pretty {
		renderer, err := glamour.NewRenderer()
		if err != nil {
			return fmt.Errorf("failed to create renderer: %w", err)
		}
		deps.Renderer = renderer
	}

	return kongCtx.Run(deps)
}

// wireThreads selects the thread store: the SQLite database, or an in-memory
// cache when memory is set.
func (m *Main) wireThreads(deps *Dependencies, memory bool, stderr io.Writer) error {
	if memory {
		store, err := lru.NewThreadStore(lru.DefaultThreadCapacity)
		if err != nil {
			return fmt.Errorf("failed to create thread cache: %w", err)
		}
		deps.Threads = store
		deps.Lister = unlistedThreads{}
		return nil
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set WIKIDOCU_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	store := sqlite.NewThreadStore(m.DB)
	deps.Threads = store
	deps.Lister = store
	return nil
}

func (m *Main) newCompleter(ctx context.Context, logger *slog.Logger, stderr io.Writer) (wikidocu.Completer, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	model := m.Config.Model
	if model == "" {
		model = gemini.DefaultModel
	}
	return wikislog.NewLoggingCompleter(gemini.NewCompleter(client, model), logger), nil
}

func (m *Main) newScanner(completer wikidocu.Completer, logger *slog.Logger, verbose bool, stderr io.Writer) (*scan.Scanner, error) {
	pages, err := m.newPageReader(logger, stderr)
	if err != nil {
		return nil, err
	}

	filter, err := wikidocu.NewURLFilter(m.Config.Sitemap.Include, m.Config.Sitemap.Exclude)
	if err != nil {
		return nil, err
	}

	// Sitemaps are plain XML, so they go over HTTP even when pages are
	// rendered in a browser.
	opts, err := m.Config.Fetch.HTTPOptions()
	if err != nil {
		return nil, err
	}
	sitemapFetcher := wikihttp.NewFetcher(opts...)
	m.closers = append(m.closers, sitemapFetcher)

	s := &scan.Scanner{
		Extractor:      evidence.NewExtractor(completer, logger),
		Pages:          pages,
		Sitemaps:       wikislog.NewLoggingSitemapService(sitemapFetcher.SitemapService(), logger),
		MaxSitemapURLs: m.Config.Sitemap.MaxURLs,
		SitemapFilter:  filter,
		Concurrency:    m.Config.Concurrency,
		Logger:         logger,
	}
	if verbose {
		s.Progress = progressPrinter(stderr)
	}
	return s, nil
}

// newPageReader assembles the URL pipeline: fetch, extract main content,
// convert to Markdown, cache by URL.
func (m *Main) newPageReader(logger *slog.Logger, stderr io.Writer) (wikidocu.PageReader, error) {
	fetcher, err := m.newFetcher(stderr)
	if err != nil {
		return nil, err
	}
	m.closers = append(m.closers, fetcher)

	var extractor wikidocu.ContentExtractor = trafilatura.NewExtractor()
	if m.Config.Extractor == ExtractorReadability {
		extractor = readability.NewExtractor()
	}

	reader := &crawl.Reader{
		Fetcher:     wikislog.NewLoggingFetcher(fetcher, logger),
		Extractor:   extractor,
		Converter:   htmltomarkdown.NewConverter(),
		Fallback:    goquery.NewExtractor(),
		RateLimiter: crawl.NewDomainLimiter(crawl.DefaultRequestsPerSecond),
		Logger:      logger,
	}

	cache, err := lru.NewPageCache(wikislog.NewLoggingPageReader(reader, logger), lru.DefaultPageCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create page cache: %w", err)
	}
	return cache, nil
}

func (m *Main) newFetcher(stderr io.Writer) (wikidocu.Fetcher, error) {
	fc := m.Config.Fetch

	if m.Config.Browser {
		managerOpts := []rod.ManagerOption{rod.WithMaxPages(fc.BrowserMaxPages)}
		if fc.Proxy != "" {
			managerOpts = append(managerOpts, rod.WithProxy(fc.Proxy))
		}
		if fc.InsecureSkipVerify {
			managerOpts = append(managerOpts, rod.WithIgnoreCertErrors(true))
		}
		manager, err := rod.NewBrowserManager(managerOpts...)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}

		var fetcherOpts []rod.FetcherOption
		if fc.Timeout > 0 {
			fetcherOpts = append(fetcherOpts, rod.WithTimeout(fc.Timeout))
		}
		headers := make(map[string]string, len(fc.Headers))
		for k, v := range fc.Headers {
			// Chrome reports its own user agent unless it is overridden on
			// the page.
			if strings.EqualFold(k, "User-Agent") {
				fetcherOpts = append(fetcherOpts, rod.WithUserAgent(v))
				continue
			}
			headers[k] = v
		}
		if len(headers) > 0 {
			fetcherOpts = append(fetcherOpts, rod.WithHeaders(headers))
		}
		return rod.NewFetcher(manager, fetcherOpts...), nil
	}

	opts, err := fc.HTTPOptions()
	if err != nil {
		return nil, err
	}
	return wikihttp.NewFetcher(opts...), nil
}

// progressPrinter reports scan progress on w, one line per finished unit.
func progressPrinter(w io.Writer) scan.ProgressFunc {
	return func(e scan.ProgressEvent) {
		switch e.Type {
		case scan.ProgressCompleted:
			fmt.Fprintf(w, "[%d/%d] %s\n", e.Completed, e.Total, e.Origin)
		case scan.ProgressFailed:
			fmt.Fprintf(w, "[%d/%d] %s: %s\n", e.Completed, e.Total, e.Origin, wikidocu.ErrorMessage(e.Error))
		}
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func defaultDBPath() string {
	if path := os.Getenv("WIKIDOCU_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "wikidocu.db"
	}
	dir := filepath.Join(home, ".wikidocu")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "wikidocu.db")
}

// unlistedThreads stands in for a store that cannot enumerate its threads.
type unlistedThreads struct{}

func (unlistedThreads) ListThreads(context.Context, int, int) ([]*wikidocu.ThreadSummary, error) {
	return nil, wikidocu.Errorf(wikidocu.EINVALID, "listing threads requires the database; run without --memory")
}
