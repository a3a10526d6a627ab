// Package slog provides decorators that log calls to wikidocu services with
// log/slog.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/wikidocu"
)

var _ wikidocu.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService logs sitemap expansion: Info with the page count on
// success, Warn on failure.
type LoggingSitemapService struct {
	next   wikidocu.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next wikidocu.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *wikidocu.URLFilter) (urls []string, err error) {
	defer func(begin time.Time) {
		if err != nil {
			s.logger.Warn("sitemap expansion failed",
				"url", baseURL,
				"duration", time.Since(begin),
				"err", err,
			)
			return
		}
		s.logger.Info("sitemap expanded",
			"url", baseURL,
			"pages", len(urls),
			"filtered", filter != nil,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL, filter)
}
