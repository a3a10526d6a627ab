package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/wikidocu"
)

// Ensure LoggingCompleter implements wikidocu.Completer.
var _ wikidocu.Completer = (*LoggingCompleter)(nil)

// LoggingCompleter wraps a Completer with debug logging of model calls.
type LoggingCompleter struct {
	next   wikidocu.Completer
	logger *slog.Logger
}

// NewLoggingCompleter creates a new LoggingCompleter.
func NewLoggingCompleter(next wikidocu.Completer, logger *slog.Logger) *LoggingCompleter {
	return &LoggingCompleter{next: next, logger: logger}
}

// Complete delegates to the wrapped completer and logs the call.
func (c *LoggingCompleter) Complete(ctx context.Context, req *wikidocu.CompletionRequest) (reply string, err error) {
	defer func(begin time.Time) {
		c.logger.Debug("complete",
			"messages", len(req.Messages),
			"prompt_chars", promptChars(req),
			"reply_chars", len(reply),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Complete(ctx, req)
}

// CompleteStructured delegates to the wrapped completer and logs the call.
func (c *LoggingCompleter) CompleteStructured(ctx context.Context, req *wikidocu.CompletionRequest, schema wikidocu.Schema, v any) (err error) {
	defer func(begin time.Time) {
		c.logger.Debug("complete structured",
			"schema", schema,
			"messages", len(req.Messages),
			"prompt_chars", promptChars(req),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.CompleteStructured(ctx, req, schema, v)
}

func promptChars(req *wikidocu.CompletionRequest) int {
	n := len(req.System)
	for _, m := range req.Messages {
		n += len(m.Content)
	}
	return n
}
