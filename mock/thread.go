package mock

import (
	"context"

	"github.com/fwojciec/wikidocu"
)

var _ wikidocu.ThreadStore = (*ThreadStore)(nil)

// ThreadStore is a mock implementation of wikidocu.ThreadStore.
type ThreadStore struct {
	FindThreadByIDFn func(ctx context.Context, id string) (*wikidocu.Thread, error)
	SaveThreadFn     func(ctx context.Context, thread *wikidocu.Thread) error
	DeleteThreadFn   func(ctx context.Context, id string) error
}

func (s *ThreadStore) FindThreadByID(ctx context.Context, id string) (*wikidocu.Thread, error) {
	return s.FindThreadByIDFn(ctx, id)
}

func (s *ThreadStore) SaveThread(ctx context.Context, thread *wikidocu.Thread) error {
	return s.SaveThreadFn(ctx, thread)
}

func (s *ThreadStore) DeleteThread(ctx context.Context, id string) error {
	return s.DeleteThreadFn(ctx, id)
}

var _ wikidocu.Engine = (*Engine)(nil)

// Engine is a mock implementation of wikidocu.Engine.
type Engine struct {
	TurnFn func(ctx context.Context, threadID, message string) (*wikidocu.Turn, error)
}

func (e *Engine) Turn(ctx context.Context, threadID, message string) (*wikidocu.Turn, error) {
	return e.TurnFn(ctx, threadID, message)
}

var _ wikidocu.ThreadLister = (*ThreadLister)(nil)

// ThreadLister is a mock implementation of wikidocu.ThreadLister.
type ThreadLister struct {
	ListThreadsFn func(ctx context.Context, limit, offset int) ([]*wikidocu.ThreadSummary, error)
}

func (l *ThreadLister) ListThreads(ctx context.Context, limit, offset int) ([]*wikidocu.ThreadSummary, error) {
	return l.ListThreadsFn(ctx, limit, offset)
}
