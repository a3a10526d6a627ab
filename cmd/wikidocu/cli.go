package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/wikidocu"
)

// TurnRenderer formats a completed turn for the terminal.
type TurnRenderer interface {
	RenderTurn(turn *wikidocu.Turn) (string, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Engine       wikidocu.Engine
	Scanner      wikidocu.Scanner
	Threads      wikidocu.ThreadStore
	Lister       wikidocu.ThreadLister
	TokenCounter wikidocu.TokenCounter

	// Renderer is used for answers when set; plain Markdown otherwise.
	Renderer TurnRenderer

	// NewID generates thread IDs for conversations started without one.
	NewID func() string
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"C" type:"path" help:"Config file (default ./wikidocu.yaml if present)"`
	Verbose bool   `short:"v" help:"Log debug output to stderr"`
	Pretty  bool   `help:"Render answers as styled Markdown"`
	Stats   bool   `help:"Print citation and token counts after each answer"`
	Memory  bool   `help:"Keep threads in memory instead of the database"`

	Model       string        `help:"Gemini model (default ${default_model})"`
	DB          string        `name:"db" type:"path" help:"Database path"`
	Concurrency int           `short:"c" help:"Units scanned in parallel"`
	QueryCount  int           `name:"queries" help:"Search phrases generated per turn"`
	KeepLast    int           `name:"keep-last" help:"Research entries kept per thread (0 keeps all)"`
	Browser     bool          `help:"Fetch URLs with a headless browser"`
	Extractor   string        `help:"Main content extractor: trafilatura or readability"`
	Timeout     time.Duration `help:"Per-request fetch timeout"`
	Proxy       string        `help:"Proxy URL for fetches"`
	Insecure    bool          `help:"Skip TLS certificate verification"`
	Include     []string      `short:"I" help:"Only take sitemap pages matching this regex (repeatable)"`
	Exclude     []string      `short:"E" help:"Skip sitemap pages matching this regex (repeatable)"`

	Ask     AskCmd     `cmd:"" help:"Ask one question and print the answer"`
	Chat    ChatCmd    `cmd:"" help:"Start an interactive conversation"`
	Scan    ScanCmd    `cmd:"" help:"Extract cited evidence without answering"`
	Tree    TreeCmd    `cmd:"" help:"Print the directory tree scanned for a path"`
	History HistoryCmd `cmd:"" help:"List threads or show one thread"`
	Forget  ForgetCmd  `cmd:"" help:"Delete a thread"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string   `arg:"" help:"Question to ask"`
	Thread   string   `short:"t" help:"Continue an existing thread"`
	Sources  []string `short:"s" name:"source" help:"File, directory, URL or sitemap:<url> to research (repeatable)"`
}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct {
	Thread  string   `short:"t" help:"Resume an existing thread"`
	Sources []string `short:"s" name:"source" help:"File, directory, URL or sitemap:<url> to research (repeatable)"`
}

// ScanCmd is the "scan" subcommand.
type ScanCmd struct {
	Question string   `arg:"" help:"Research topic"`
	Units    []string `arg:"" help:"Files, directories, URLs or sitemap:<url>"`
}

// TreeCmd is the "tree" subcommand.
type TreeCmd struct {
	Path   string   `arg:"" default:"." type:"path" help:"Directory to list"`
	Hidden bool     `help:"Include dot-files and dot-directories"`
	Ext    []string `help:"Only list files with these extensions (repeatable)"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Thread string `arg:"" optional:"" help:"Thread to show"`
	Limit  int    `short:"n" default:"20" help:"Threads listed"`
	Offset int    `help:"Threads skipped"`
}

// ForgetCmd is the "forget" subcommand.
type ForgetCmd struct {
	Thread string `arg:"" help:"Thread to delete"`
}
