package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/wikidocu"
)

// DefaultRetryDelays returns the waits between fetch attempts: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Retry calls fn until it succeeds, making at most len(delays)+1 attempts
// and sleeping delays[i] after failed attempt i. Context errors and
// application errors coded EINVALID or ENOTFOUND end the loop at once.
// The last error is returned unchanged.
func Retry[T any](ctx context.Context, delays []time.Duration, logger *slog.Logger, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if permanent(err) || attempt >= len(delays) {
			return zero, err
		}

		if logger != nil {
			logger.Debug("retry", "op", op, "attempt", attempt+2, "wait", delays[attempt], "err", err)
		}

		timer := time.NewTimer(delays[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

func permanent(err error) bool {
	if isContextErr(err) {
		return true
	}
	switch wikidocu.ErrorCode(err) {
	case wikidocu.EINVALID, wikidocu.ENOTFOUND:
		return true
	}
	return false
}
