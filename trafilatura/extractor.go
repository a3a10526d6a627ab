// Package trafilatura extracts the main content of HTML pages with
// go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/wikidocu"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements wikidocu.ContentExtractor at compile time.
var _ wikidocu.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content. Comments sections
// are excluded while tables and links are kept since they often carry
// reference material in documentation.
func (e *Extractor) Extract(rawHTML string) (*wikidocu.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, wikidocu.Errorf(wikidocu.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		IncludeLinks:    true,
		Focus:           trafilatura.FavorRecall,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, wikidocu.Errorf(wikidocu.EFETCH, "trafilatura: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	title := strings.TrimSpace(result.Metadata.Title)
	if title == "" {
		title = strings.TrimSpace(result.Metadata.Sitename)
	}

	return &wikidocu.ExtractResult{
		Title:       title,
		ContentHTML: contentHTML,
	}, nil
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
