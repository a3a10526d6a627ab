package crawl

import (
	"context"

	"github.com/fwojciec/wikidocu"
)

// MaxSitemapURLs caps how many pages a single sitemap unit expands into.
const MaxSitemapURLs = 50

// ExpandSitemap discovers page URLs for baseURL that pass filter and returns
// at most limit of them in sitemap order. A non-positive limit selects
// MaxSitemapURLs. Discovery failures are reported as EFETCH.
func ExpandSitemap(ctx context.Context, sitemaps wikidocu.SitemapService, baseURL string, filter *wikidocu.URLFilter, limit int) ([]string, error) {
	if limit <= 0 {
		limit = MaxSitemapURLs
	}

	urls, err := sitemaps.DiscoverURLs(ctx, baseURL, filter)
	if err != nil {
		if isContextErr(err) {
			return nil, err
		}
		return nil, wikidocu.Errorf(wikidocu.EFETCH, "sitemap %s: %v", baseURL, err)
	}
	if len(urls) > limit {
		urls = urls[:limit]
	}
	return urls, nil
}
