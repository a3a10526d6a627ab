package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/wikidocu"
)

var _ wikidocu.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher logs every download attempt at Debug. Retries show up as
// repeated lines for the same url.
type LoggingFetcher struct {
	next   wikidocu.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next wikidocu.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (body string, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "bytes", len(body), "duration", time.Since(begin)}
		if err != nil {
			attrs = append(attrs, "code", wikidocu.ErrorCode(err), "err", err)
		}
		f.logger.Debug("fetch", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
