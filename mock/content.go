package mock

import "github.com/fwojciec/wikidocu"

var _ wikidocu.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor is a mock implementation of wikidocu.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(html string) (*wikidocu.ExtractResult, error)
}

func (e *ContentExtractor) Extract(html string) (*wikidocu.ExtractResult, error) {
	return e.ExtractFn(html)
}
