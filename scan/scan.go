// Package scan finds evidence for a question across a mixed list of files,
// directories, URLs and sitemaps. Units are read and sent through evidence
// extraction concurrently; their results are merged in input order.
package scan

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fwojciec/wikidocu"
	"github.com/fwojciec/wikidocu/crawl"
	"github.com/fwojciec/wikidocu/fs"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the number of units processed at once.
const DefaultConcurrency = 8

// Ensure Scanner implements wikidocu.Scanner at compile time.
var _ wikidocu.Scanner = (*Scanner)(nil)

// Scanner implements wikidocu.Scanner.
type Scanner struct {
	Extractor wikidocu.EvidenceExtractor

	// Pages reads URL units. URL units fail with EINVALID when nil.
	Pages wikidocu.PageReader

	// Sitemaps expands sitemap units. Sitemap units fail with EINVALID
	// when nil.
	Sitemaps wikidocu.SitemapService

	// MaxSitemapURLs caps the pages taken from one sitemap.
	// Defaults to crawl.MaxSitemapURLs.
	MaxSitemapURLs int

	// SitemapFilter narrows the pages taken from sitemap units. Optional.
	SitemapFilter *wikidocu.URLFilter

	// IncludeHidden scans dot-files and dot-directories under directory
	// units.
	IncludeHidden bool

	// Extensions restricts the files scanned under directory units.
	// Defaults to fs.DefaultExtensions. Explicit file units are never
	// filtered.
	Extensions []string

	Concurrency int
	Logger      *slog.Logger

	// Progress, if set, is called from the scanning goroutine as units
	// start and finish.
	Progress ProgressFunc
}

// ProgressEvent reports progress during a scan.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Origin    string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting scan progress.
type ProgressFunc func(event ProgressEvent)

// task is one file or page to extract evidence from.
type task struct {
	position int
	unit     wikidocu.Unit
	tree     string
}

// outcome holds the result of processing a single task.
type outcome struct {
	position int
	result   wikidocu.UnitResult
	err      error
}

// Scan expands units into files and pages, extracts evidence from each and
// merges the results in unit order. A unit that fails is recorded in
// ScanResult.Failures and contributes nothing else.
func (s *Scanner) Scan(ctx context.Context, units []string, question string) (*wikidocu.ScanResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, wikidocu.Errorf(wikidocu.EINVALID, "question required")
	}
	if len(units) == 0 {
		return nil, wikidocu.Errorf(wikidocu.EINVALID, "at least one scan unit required")
	}

	tasks, failures := s.plan(ctx, units)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	outcomeCh := make(chan outcome, len(tasks))
	var completed atomic.Int64
	total := len(tasks)
	s.progress(ProgressEvent{Type: ProgressStarted, Total: total})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, t := range tasks {
			g.Go(func() error {
				result, err := s.process(gctx, t, question)
				outcomeCh <- outcome{position: t.position, result: result, err: err}
				return nil
			})
		}
		_ = g.Wait()
		close(outcomeCh)
	}()

	// Collect outcomes by position so the merge does not depend on
	// completion order.
	outcomes := make([]outcome, len(tasks))
	for o := range outcomeCh {
		n := int(completed.Add(1))
		outcomes[o.position] = o
		event := ProgressEvent{Type: ProgressCompleted, Completed: n, Total: total, Origin: tasks[o.position].unit.Origin}
		if o.err != nil {
			event.Type = ProgressFailed
			event.Error = o.err
		}
		s.progress(event)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []wikidocu.UnitResult
	for i, o := range outcomes {
		if o.err != nil {
			failures = append(failures, wikidocu.UnitFailure{Unit: tasks[i].unit, Err: o.err})
			continue
		}
		results = append(results, o.result)
	}

	for _, f := range failures {
		s.logger().Warn("scan unit failed",
			"origin", f.Unit.Origin,
			"kind", f.Unit.Kind,
			"code", wikidocu.ErrorCode(f.Err),
			"err", f.Err,
		)
	}
	s.progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})

	return wikidocu.MergeUnitResults(question, results, failures), nil
}

// plan expands raw units into tasks. Directories become one task per file
// sharing the directory's rendered tree; sitemaps become one task per page.
// Units that cannot be expanded are returned as failures.
func (s *Scanner) plan(ctx context.Context, raw []string) ([]task, []wikidocu.UnitFailure) {
	var tasks []task
	var failures []wikidocu.UnitFailure
	add := func(unit wikidocu.Unit, tree string) {
		tasks = append(tasks, task{position: len(tasks), unit: unit, tree: tree})
	}

	for _, r := range raw {
		unit := wikidocu.ParseUnit(r)
		switch unit.Kind {
		case wikidocu.UnitURL:
			add(unit, "")

		case wikidocu.UnitSitemap:
			urls, err := s.expandSitemap(ctx, unit.Origin)
			if err != nil {
				failures = append(failures, wikidocu.UnitFailure{Unit: unit, Err: err})
				continue
			}
			for _, u := range urls {
				add(wikidocu.Unit{Kind: wikidocu.UnitURL, Origin: u}, "")
			}

		default:
			info, err := os.Stat(unit.Origin)
			if err != nil || !info.IsDir() {
				// Missing paths surface as ENOTFOUND when the file is read.
				add(unit, "")
				continue
			}

			unit.Kind = wikidocu.UnitDirectory
			root, err := fs.BuildTree(unit.Origin, fs.TreeOptions{
				IncludeHidden: s.IncludeHidden,
				Extensions:    s.extensions(),
			})
			if err != nil {
				failures = append(failures, wikidocu.UnitFailure{Unit: unit, Err: err})
				continue
			}
			tree := root.Render()
			for _, path := range fs.Files(root) {
				origin := path
				if rel, err := filepath.Rel(root.Path, path); err == nil {
					origin = filepath.Join(unit.Origin, rel)
				}
				add(wikidocu.Unit{Kind: wikidocu.UnitFile, Origin: origin}, tree)
			}
		}
	}
	return tasks, failures
}

func (s *Scanner) expandSitemap(ctx context.Context, baseURL string) ([]string, error) {
	if s.Sitemaps == nil {
		return nil, wikidocu.Errorf(wikidocu.EINVALID, "sitemap units are not supported")
	}
	limit := s.MaxSitemapURLs
	if limit <= 0 {
		limit = crawl.MaxSitemapURLs
	}
	return crawl.ExpandSitemap(ctx, s.Sitemaps, baseURL, s.SitemapFilter, limit)
}

// process loads one task's text and resolves the extracted matches against
// it.
func (s *Scanner) process(ctx context.Context, t task, question string) (wikidocu.UnitResult, error) {
	src, err := s.load(ctx, t)
	if err != nil {
		return wikidocu.UnitResult{}, err
	}

	matches, err := s.Extractor.Extract(ctx, src, question)
	if err != nil {
		return wikidocu.UnitResult{}, err
	}

	records, dropped := wikidocu.NewSourceRecords(src.Origin, src.Text, matches)
	for _, m := range dropped {
		s.logger().Debug("dropped evidence outside text",
			"origin", src.Origin,
			"start_line", m.StartLine,
			"end_line", m.EndLine,
		)
	}

	return wikidocu.UnitResult{
		Position:    t.position,
		Unit:        t.unit,
		SearchQuery: question,
		Sources:     records,
		Evidence:    wikidocu.RenderCitations(wikidocu.AssembleCitations(records)),
		Dropped:     len(dropped),
	}, nil
}

func (s *Scanner) load(ctx context.Context, t task) (*wikidocu.Source, error) {
	src := &wikidocu.Source{Origin: t.unit.Origin, Kind: t.unit.Kind, Tree: t.tree}

	if t.unit.Kind == wikidocu.UnitURL {
		if s.Pages == nil {
			return nil, wikidocu.Errorf(wikidocu.EINVALID, "URL units are not supported")
		}
		page, err := s.Pages.ReadPage(ctx, t.unit.Origin)
		if err != nil {
			return nil, err
		}
		src.Text = page.Content
		return src, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := fs.ReadFile(t.unit.Origin)
	if err != nil {
		return nil, err
	}
	src.Text = text
	return src, nil
}

func (s *Scanner) extensions() []string {
	if s.Extensions != nil {
		return s.Extensions
	}
	return fs.DefaultExtensions
}

func (s *Scanner) progress(event ProgressEvent) {
	if s.Progress != nil {
		s.Progress(event)
	}
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}
