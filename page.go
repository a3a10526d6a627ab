package wikidocu

import "context"

// Page is a fetched web page converted to Markdown.
type Page struct {
	URL     string
	Title   string
	Content string // Markdown
}

// PageReader turns a URL into Markdown.
// Implementations hide HTTP vs browser selection, retry logic,
// content extraction, and markdown conversion.
type PageReader interface {
	// ReadPage fetches url and returns its main content as Markdown.
	// Every failure is reported as EFETCH (or EINVALID for a malformed URL).
	ReadPage(ctx context.Context, url string) (*Page, error)
}
