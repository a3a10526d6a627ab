package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/fwojciec/wikidocu"
	wikihttp "github.com/fwojciec/wikidocu/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns HTML body from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>Hello World</body></html>"))
		}))
		defer server.Close()

		fetcher := wikihttp.NewFetcher()
		defer fetcher.Close()

		html, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html><body>Hello World</body></html>", html)
	})

	t.Run("sends browser headers and custom overrides", func(t *testing.T) {
		t.Parallel()

		var got http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
		}))
		defer server.Close()

		fetcher := wikihttp.NewFetcher(wikihttp.WithHeaders(map[string]string{
			"Accept-Language": "zh-CN",
			"X-Token":         "abc",
		}))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Contains(t, got.Get("User-Agent"), "Mozilla/5.0")
		assert.Equal(t, "zh-CN", got.Get("Accept-Language"))
		assert.Equal(t, "abc", got.Get("X-Token"))
	})

	t.Run("sends configured cookies", func(t *testing.T) {
		t.Parallel()

		var session string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie("session"); err == nil {
				session = c.Value
			}
		}))
		defer server.Close()

		fetcher := wikihttp.NewFetcher(wikihttp.WithCookies(map[string]string{"session": "s1"}))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "s1", session)
	})

	t.Run("routes through proxy", func(t *testing.T) {
		t.Parallel()

		var proxied string
		proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			proxied = r.URL.String()
			_, _ = w.Write([]byte("via proxy"))
		}))
		defer proxy.Close()
		proxyURL, err := url.Parse(proxy.URL)
		require.NoError(t, err)

		fetcher := wikihttp.NewFetcher(wikihttp.WithProxy(proxyURL))
		defer fetcher.Close()

		body, err := fetcher.Fetch(context.Background(), "http://docs.example.test/page")
		require.NoError(t, err)
		assert.Equal(t, "via proxy", body)
		assert.Equal(t, "http://docs.example.test/page", proxied)
	})

	t.Run("fails TLS verification unless disabled", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("secure"))
		}))
		defer server.Close()

		strict := wikihttp.NewFetcher()
		defer strict.Close()
		_, err := strict.Fetch(context.Background(), server.URL)
		require.Error(t, err)

		insecure := wikihttp.NewFetcher(wikihttp.WithInsecureSkipVerify(true))
		defer insecure.Close()
		body, err := insecure.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "secure", body)
	})

	t.Run("stops after max redirects", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/loop", http.StatusFound)
		}))
		defer server.Close()

		fetcher := wikihttp.NewFetcher(wikihttp.WithMaxRedirects(2))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redirects")
	})

	t.Run("zero max redirects disables redirects", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/moved" {
				_, _ = w.Write([]byte("moved"))
				return
			}
			http.Redirect(w, r, "/moved", http.StatusFound)
		}))
		defer server.Close()

		fetcher := wikihttp.NewFetcher(wikihttp.WithMaxRedirects(0))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.ErrorContains(t, err, "redirects")
	})

	t.Run("accepts any 2xx status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNonAuthoritativeInfo)
			_, _ = w.Write([]byte("cached copy"))
		}))
		defer server.Close()

		fetcher := wikihttp.NewFetcher()
		defer fetcher.Close()

		body, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "cached copy", body)
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := wikihttp.NewFetcher(wikihttp.WithTimeout(10 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := wikihttp.NewFetcher()
		defer fetcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fetcher.Fetch(ctx, server.URL)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("returns error for non-200 status codes", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("404 Not Found"))
		}))
		defer server.Close()

		fetcher := wikihttp.NewFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
		assert.Equal(t, wikidocu.ENOTFOUND, wikidocu.ErrorCode(err))
	})

	t.Run("server errors are not application errors", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		fetcher := wikihttp.NewFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.ErrorContains(t, err, "HTTP 503")
		assert.Equal(t, wikidocu.EINTERNAL, wikidocu.ErrorCode(err))
	})
}

// Compile-time verification that Fetcher implements wikidocu.Fetcher
var _ wikidocu.Fetcher = (*wikihttp.Fetcher)(nil)
