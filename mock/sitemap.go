package mock

import (
	"context"

	"github.com/fwojciec/wikidocu"
)

var _ wikidocu.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of wikidocu.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *wikidocu.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *wikidocu.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
