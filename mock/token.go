package mock

import (
	"context"

	"github.com/fwojciec/wikidocu"
)

var _ wikidocu.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of wikidocu.TokenCounter.
type TokenCounter struct {
	CountTokensFn  func(ctx context.Context, text string) (int, error)
	CountRequestFn func(ctx context.Context, req *wikidocu.CompletionRequest) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}

func (tc *TokenCounter) CountRequest(ctx context.Context, req *wikidocu.CompletionRequest) (int, error) {
	return tc.CountRequestFn(ctx, req)
}
