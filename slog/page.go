package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/wikidocu"
)

// Ensure LoggingPageReader implements wikidocu.PageReader.
var _ wikidocu.PageReader = (*LoggingPageReader)(nil)

// LoggingPageReader wraps a PageReader with logging.
type LoggingPageReader struct {
	next   wikidocu.PageReader
	logger *slog.Logger
}

// NewLoggingPageReader creates a new LoggingPageReader.
func NewLoggingPageReader(next wikidocu.PageReader, logger *slog.Logger) *LoggingPageReader {
	return &LoggingPageReader{next: next, logger: logger}
}

// ReadPage delegates to the wrapped reader. Failures are logged at Warn.
func (r *LoggingPageReader) ReadPage(ctx context.Context, url string) (page *wikidocu.Page, err error) {
	defer func(begin time.Time) {
		if err != nil {
			r.logger.Warn("read page",
				"url", url,
				"code", wikidocu.ErrorCode(err),
				"duration", time.Since(begin),
				"err", err,
			)
			return
		}
		r.logger.Info("read page",
			"url", url,
			"title", page.Title,
			"chars", len(page.Content),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return r.next.ReadPage(ctx, url)
}
