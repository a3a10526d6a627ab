package wikidocu

import (
	"context"
	"strings"
)

// Unit is one entry of a scan request: a local path, a URL, or a sitemap
// to expand into URLs.
type Unit struct {
	Kind   UnitKind
	Origin string
}

// sitemapPrefix marks a URL whose sitemap should be expanded into page units.
const sitemapPrefix = "sitemap:"

// ParseUnit classifies a raw scan target. Local paths are reported as
// UnitFile; scanners promote them to UnitDirectory once they stat the path.
func ParseUnit(raw string) Unit {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, sitemapPrefix):
		return Unit{Kind: UnitSitemap, Origin: strings.TrimPrefix(raw, sitemapPrefix)}
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return Unit{Kind: UnitURL, Origin: raw}
	default:
		return Unit{Kind: UnitFile, Origin: raw}
	}
}

// UnitResult is the outcome of extracting evidence from one file or page.
type UnitResult struct {
	// Position is the unit's index in the expanded scan plan.
	Position int `json:"position"`
	Unit     Unit `json:"unit"`

	// SearchQuery is the question the unit was scanned for.
	SearchQuery string         `json:"searchQuery"`
	Sources     []SourceRecord `json:"sources"`

	// Evidence is the unit's own sources rendered as citations numbered
	// from 1.
	Evidence string `json:"evidence"`

	// Dropped counts matches rejected for falling outside the text.
	Dropped int `json:"dropped"`
}

// UnitFailure records a unit that contributed nothing because it failed.
type UnitFailure struct {
	Unit Unit
	Err  error
}

// ScanResult is the merged outcome of a scan.
type ScanResult struct {
	SearchQuery string
	Units       []UnitResult
	Failures    []UnitFailure

	// Sources concatenates every unit's sources in unit order.
	Sources []SourceRecord

	// Citations numbers Sources 1..N, skipping empty content.
	Citations []Citation

	// Evidence is Citations rendered as markdown.
	Evidence string
}

// Scanner extracts evidence for a question from a mixed list of paths,
// directories and URLs.
type Scanner interface {
	// Scan processes every unit and merges the results. Individual unit
	// failures are reported in ScanResult.Failures and never abort the
	// batch; an error is returned only if the request is invalid or ctx
	// is done.
	Scan(ctx context.Context, units []string, question string) (*ScanResult, error)
}

// MergeUnitResults concatenates unit results into a ScanResult. Units and
// their sources keep the order of results, so merging is associative and the
// output does not depend on the order units finished in; callers must pass
// results ordered by Position. Citations are numbered across the whole merge.
func MergeUnitResults(query string, results []UnitResult, failures []UnitFailure) *ScanResult {
	out := &ScanResult{
		SearchQuery: query,
		Units:       results,
		Failures:    failures,
	}
	for _, r := range results {
		out.Sources = append(out.Sources, r.Sources...)
	}
	out.Citations = AssembleCitations(out.Sources)
	out.Evidence = RenderCitations(out.Citations)
	return out
}
