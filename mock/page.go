package mock

import (
	"context"

	"github.com/fwojciec/wikidocu"
)

var _ wikidocu.PageReader = (*PageReader)(nil)

// PageReader is a mock implementation of wikidocu.PageReader.
type PageReader struct {
	ReadPageFn func(ctx context.Context, url string) (*wikidocu.Page, error)
}

func (r *PageReader) ReadPage(ctx context.Context, url string) (*wikidocu.Page, error) {
	return r.ReadPageFn(ctx, url)
}
