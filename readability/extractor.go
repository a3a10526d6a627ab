// Package readability extracts article content with go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/wikidocu"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements wikidocu.ContentExtractor at compile time.
var _ wikidocu.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content. A page readability
// cannot score yields an empty ContentHTML rather than an error so callers
// can try a fallback extractor.
func (e *Extractor) Extract(rawHTML string) (*wikidocu.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, wikidocu.Errorf(wikidocu.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return &wikidocu.ExtractResult{}, nil
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = strings.TrimSpace(article.SiteName)
	}

	return &wikidocu.ExtractResult{
		Title:       title,
		ContentHTML: strings.TrimSpace(article.Content),
	}, nil
}
