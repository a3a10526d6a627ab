// Package lru provides bounded in-memory implementations of wikidocu
// services backed by hashicorp/golang-lru.
package lru

import (
	"context"

	"github.com/fwojciec/wikidocu"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultThreadCapacity is the number of threads kept when no size is given.
const DefaultThreadCapacity = 128

// Ensure ThreadStore implements wikidocu.ThreadStore at compile time.
var _ wikidocu.ThreadStore = (*ThreadStore)(nil)

// ThreadStore keeps the most recently used threads in memory. Threads are
// copied on the way in and out so callers never share state with the store.
type ThreadStore struct {
	cache *lru.Cache[string, *wikidocu.Thread]
}

// NewThreadStore creates a ThreadStore holding at most size threads.
func NewThreadStore(size int) (*ThreadStore, error) {
	if size <= 0 {
		size = DefaultThreadCapacity
	}
	cache, err := lru.New[string, *wikidocu.Thread](size)
	if err != nil {
		return nil, err
	}
	return &ThreadStore{cache: cache}, nil
}

// FindThreadByID retrieves a copy of the thread.
func (s *ThreadStore) FindThreadByID(ctx context.Context, id string) (*wikidocu.Thread, error) {
	thread, ok := s.cache.Get(id)
	if !ok {
		return nil, wikidocu.Errorf(wikidocu.ENOTFOUND, "thread not found")
	}
	return thread.Clone(), nil
}

// SaveThread stores a copy of thread, evicting the least recently used
// thread when full.
func (s *ThreadStore) SaveThread(ctx context.Context, thread *wikidocu.Thread) error {
	if err := thread.Validate(); err != nil {
		return err
	}
	s.cache.Add(thread.ID, thread.Clone())
	return nil
}

// DeleteThread removes a thread.
func (s *ThreadStore) DeleteThread(ctx context.Context, id string) error {
	if !s.cache.Remove(id) {
		return wikidocu.Errorf(wikidocu.ENOTFOUND, "thread not found")
	}
	return nil
}

// Len returns the number of threads held.
func (s *ThreadStore) Len() int {
	return s.cache.Len()
}
