// Package goquery extracts the main content of documentation pages with CSS
// selectors. It serves as the fallback when the readability-style
// extractors find nothing.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/wikidocu"
)

// Ensure Extractor implements wikidocu.ContentExtractor at compile time.
var _ wikidocu.ContentExtractor = (*Extractor)(nil)

// contentSelectors lists, per framework, where the page body lives.
var contentSelectors = map[Framework][]string{
	FrameworkDocusaurus: {".theme-doc-markdown", "article"},
	FrameworkMkDocs:     {"article.md-content__inner", ".md-content"},
	FrameworkSphinx:     {"div[role='main']", "div.body", "div.document"},
	FrameworkVitePress:  {".VPDoc .vp-doc", ".VPDoc"},
	FrameworkVuePress:   {".theme-default-content"},
	FrameworkGitBook:    {"main"},
	FrameworkNextra:     {"article", "main"},
}

// genericSelectors apply to every page after any framework selectors.
var genericSelectors = []string{"main", "article", "[role='main']", "#content", "body"}

// chrome is removed from the selected content.
const chrome = "nav, script, style, noscript, footer, header, aside, form, iframe, svg, " +
	".headerlink, .hash-link, .theme-doc-toc-mobile, .md-sidebar, .wy-nav-side, .VPDocAside"

// Extractor selects the main content element of a page.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page title and the HTML of its main content element
// with navigation and other page chrome removed.
func (e *Extractor) Extract(rawHTML string) (*wikidocu.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, wikidocu.Errorf(wikidocu.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, wikidocu.Errorf(wikidocu.EINVALID, "failed to parse HTML: %v", err)
	}

	result := &wikidocu.ExtractResult{Title: title(doc)}

	selectors := append(append([]string(nil), contentSelectors[Detect(doc)]...), genericSelectors...)
	for _, sel := range selectors {
		content := doc.Find(sel).First()
		if content.Length() == 0 {
			continue
		}
		content.Find(chrome).Remove()
		if strings.TrimSpace(content.Text()) == "" {
			continue
		}
		html, err := content.Html()
		if err != nil {
			return nil, err
		}
		result.ContentHTML = strings.TrimSpace(html)
		break
	}
	return result, nil
}

// title prefers og:title, then <title>, then the first h1.
func title(doc *goquery.Document) string {
	if t, ok := doc.Find("meta[property='og:title']").Attr("content"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}
