package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/wikidocu"
	"github.com/fwojciec/wikidocu/mock"
	wikislog "github.com/fwojciec/wikidocu/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSitemapService(t *testing.T) {
	t.Parallel()

	t.Run("logs the page count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		var gotFilter *wikidocu.URLFilter
		inner := &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, filter *wikidocu.URLFilter) ([]string, error) {
				gotFilter = filter
				return []string{"https://example.com/a", "https://example.com/b"}, nil
			},
		}
		filter, err := wikidocu.NewURLFilter([]string{"example"}, nil)
		require.NoError(t, err)

		urls, err := wikislog.NewLoggingSitemapService(inner, slog.New(slog.NewTextHandler(&buf, nil))).
			DiscoverURLs(context.Background(), "https://example.com", filter)

		require.NoError(t, err)
		assert.Len(t, urls, 2)
		assert.Same(t, filter, gotFilter)
		out := buf.String()
		assert.Contains(t, out, "level=INFO")
		assert.Contains(t, out, `msg="sitemap expanded"`)
		assert.Contains(t, out, "pages=2")
		assert.Contains(t, out, "filtered=true")
	})

	t.Run("warns on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SitemapService{
			DiscoverURLsFn: func(context.Context, string, *wikidocu.URLFilter) ([]string, error) {
				return nil, errors.New("no sitemap")
			},
		}

		_, err := wikislog.NewLoggingSitemapService(inner, slog.New(slog.NewTextHandler(&buf, nil))).
			DiscoverURLs(context.Background(), "https://example.com", nil)

		require.Error(t, err)
		out := buf.String()
		assert.Contains(t, out, "level=WARN")
		assert.Contains(t, out, `err="no sitemap"`)
		assert.NotContains(t, out, "pages=")
	})
}
