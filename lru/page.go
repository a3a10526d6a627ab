package lru

import (
	"context"

	"github.com/fwojciec/wikidocu"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultPageCapacity is the number of pages kept when no size is given.
const DefaultPageCapacity = 256

// Ensure PageCache implements wikidocu.PageReader at compile time.
var _ wikidocu.PageReader = (*PageCache)(nil)

// PageCache wraps a PageReader and remembers successfully read pages, so a
// URL mentioned in several turns of a conversation is fetched once.
// Failures are not cached.
type PageCache struct {
	next  wikidocu.PageReader
	cache *lru.Cache[string, wikidocu.Page]
}

// NewPageCache creates a PageCache holding at most size pages.
func NewPageCache(next wikidocu.PageReader, size int) (*PageCache, error) {
	if size <= 0 {
		size = DefaultPageCapacity
	}
	cache, err := lru.New[string, wikidocu.Page](size)
	if err != nil {
		return nil, err
	}
	return &PageCache{next: next, cache: cache}, nil
}

// ReadPage returns the cached page for url or reads it through.
func (c *PageCache) ReadPage(ctx context.Context, url string) (*wikidocu.Page, error) {
	if page, ok := c.cache.Get(url); ok {
		return &page, nil
	}

	page, err := c.next.ReadPage(ctx, url)
	if err != nil {
		return nil, err
	}
	c.cache.Add(url, *page)
	return page, nil
}

