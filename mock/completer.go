package mock

import (
	"context"

	"github.com/fwojciec/wikidocu"
)

var _ wikidocu.Completer = (*Completer)(nil)

// Completer is a mock implementation of wikidocu.Completer.
type Completer struct {
	CompleteFn           func(ctx context.Context, req *wikidocu.CompletionRequest) (string, error)
	CompleteStructuredFn func(ctx context.Context, req *wikidocu.CompletionRequest, schema wikidocu.Schema, v any) error
}

func (c *Completer) Complete(ctx context.Context, req *wikidocu.CompletionRequest) (string, error) {
	return c.CompleteFn(ctx, req)
}

func (c *Completer) CompleteStructured(ctx context.Context, req *wikidocu.CompletionRequest, schema wikidocu.Schema, v any) error {
	return c.CompleteStructuredFn(ctx, req, schema, v)
}
