package lru_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/wikidocu"
	"github.com/fwojciec/wikidocu/lru"
	"github.com/fwojciec/wikidocu/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCache_ReadPage(t *testing.T) {
	t.Parallel()

	t.Run("reads each URL once", func(t *testing.T) {
		t.Parallel()

		calls := 0
		inner := &mock.PageReader{
			ReadPageFn: func(ctx context.Context, url string) (*wikidocu.Page, error) {
				calls++
				return &wikidocu.Page{URL: url, Title: "Intro", Content: "hello"}, nil
			},
		}
		cache, err := lru.NewPageCache(inner, 4)
		require.NoError(t, err)

		for range 3 {
			page, err := cache.ReadPage(context.Background(), "https://example.com/intro")
			require.NoError(t, err)
			assert.Equal(t, "hello", page.Content)
		}
		assert.Equal(t, 1, calls)
	})

	t.Run("keeps distinct URLs apart", func(t *testing.T) {
		t.Parallel()

		inner := &mock.PageReader{
			ReadPageFn: func(ctx context.Context, url string) (*wikidocu.Page, error) {
				return &wikidocu.Page{URL: url, Content: "content of " + url}, nil
			},
		}
		cache, err := lru.NewPageCache(inner, 4)
		require.NoError(t, err)

		for _, url := range []string{"https://example.com/a", "https://example.com/b", "https://example.com/a"} {
			page, err := cache.ReadPage(context.Background(), url)
			require.NoError(t, err)
			assert.Equal(t, url, page.URL)
			assert.Equal(t, "content of "+url, page.Content)
		}
	})

	t.Run("does not cache failures", func(t *testing.T) {
		t.Parallel()

		calls := 0
		inner := &mock.PageReader{
			ReadPageFn: func(ctx context.Context, url string) (*wikidocu.Page, error) {
				calls++
				return nil, errors.New("boom")
			},
		}
		cache, err := lru.NewPageCache(inner, 4)
		require.NoError(t, err)

		_, err = cache.ReadPage(context.Background(), "https://example.com/intro")
		require.Error(t, err)
		_, err = cache.ReadPage(context.Background(), "https://example.com/intro")
		require.Error(t, err)
		assert.Equal(t, 2, calls)
	})
}
