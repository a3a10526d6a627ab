package http_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/fwojciec/wikidocu"
	wikihttp "github.com/fwojciec/wikidocu/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapService_DiscoverURLs_FromRobotsTxt(t *testing.T) {
	t.Parallel()

	robotsTxt := `User-agent: *
Disallow: /private/
Sitemap: {{BASE}}/sitemap.xml
`
	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/docs/intro</loc></url>
  <url><loc>{{BASE}}/docs/guide</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/robots.txt":  robotsTxt,
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	svc := wikihttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Len(t, urls, 2)
	assert.Contains(t, urls, srv.URL+"/docs/intro")
	assert.Contains(t, urls, srv.URL+"/docs/guide")
}

func TestSitemapService_DiscoverURLs_FallbackToSitemapXML(t *testing.T) {
	t.Parallel()

	// No robots.txt, should fallback to /sitemap.xml
	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/page1</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	svc := wikihttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Len(t, urls, 1)
	assert.Contains(t, urls, srv.URL+"/page1")
}

func TestSitemapService_DiscoverURLs_SitemapIndex(t *testing.T) {
	t.Parallel()

	sitemapIndex := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>{{BASE}}/sitemap-docs.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/sitemap-api.xml</loc></sitemap>
</sitemapindex>`

	sitemapDocs := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/docs/intro</loc></url>
</urlset>`

	sitemapAPI := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/api/reference</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml":      sitemapIndex,
		"/sitemap-docs.xml": sitemapDocs,
		"/sitemap-api.xml":  sitemapAPI,
	})
	defer srv.Close()

	svc := wikihttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Len(t, urls, 2)
	assert.Contains(t, urls, srv.URL+"/docs/intro")
	assert.Contains(t, urls, srv.URL+"/api/reference")
}

func TestSitemapService_DiscoverURLs_WithIncludeFilter(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/docs/intro</loc></url>
  <url><loc>{{BASE}}/blog/post1</loc></url>
  <url><loc>{{BASE}}/docs/guide</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	filter := &wikidocu.URLFilter{
		Include: []*regexp.Regexp{regexp.MustCompile(`/docs/`)},
	}

	svc := wikihttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, filter)

	require.NoError(t, err)
	assert.Len(t, urls, 2)
	assert.Contains(t, urls, srv.URL+"/docs/intro")
	assert.Contains(t, urls, srv.URL+"/docs/guide")
}

func TestSitemapService_DiscoverURLs_WithExcludeFilter(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/docs/intro</loc></url>
  <url><loc>{{BASE}}/docs/internal/debug</loc></url>
  <url><loc>{{BASE}}/docs/guide</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	filter := &wikidocu.URLFilter{
		Exclude: []*regexp.Regexp{regexp.MustCompile(`/internal/`)},
	}

	svc := wikihttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, filter)

	require.NoError(t, err)
	assert.Len(t, urls, 2)
	assert.Contains(t, urls, srv.URL+"/docs/intro")
	assert.Contains(t, urls, srv.URL+"/docs/guide")
}

func TestSitemapService_DiscoverURLs_ContextCancellation(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/page1</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	svc := wikihttp.NewSitemapService(srv.Client())
	_, err := svc.DiscoverURLs(ctx, srv.URL, nil)

	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSitemapService_DiscoverURLs_MultipleSitemapsInRobots(t *testing.T) {
	t.Parallel()

	robotsTxt := `User-agent: *
Sitemap: {{BASE}}/sitemap1.xml
Sitemap: {{BASE}}/sitemap2.xml
`
	sitemap1 := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/page1</loc></url>
</urlset>`

	sitemap2 := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/page2</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/robots.txt":   robotsTxt,
		"/sitemap1.xml": sitemap1,
		"/sitemap2.xml": sitemap2,
	})
	defer srv.Close()

	svc := wikihttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Len(t, urls, 2)
	assert.Contains(t, urls, srv.URL+"/page1")
	assert.Contains(t, urls, srv.URL+"/page2")
}

func TestSitemapService_DiscoverURLs_NoSitemapFound(t *testing.T) {
	t.Parallel()

	// No robots.txt, no sitemap.xml
	srv := newTestServer(t, map[string]string{})
	defer srv.Close()

	svc := wikihttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestSitemapService_DiscoverURLs_PathPrefix(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/docs</loc></url>
  <url><loc>{{BASE}}/docs/intro</loc></url>
  <url><loc>{{BASE}}/documentation/old</loc></url>
  <url><loc>{{BASE}}/blog/post</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	svc := wikihttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/docs/", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/docs", srv.URL + "/docs/intro"}, urls)
}

func TestSitemapService_DiscoverURLs_DirectSitemapURL(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/b</loc></url>
  <url><loc>{{BASE}}/a</loc></url>
  <url><loc>{{BASE}}/b</loc></url>
</urlset>`

	// robots.txt points elsewhere; a direct sitemap URL must not consult it.
	srv := newTestServer(t, map[string]string{
		"/robots.txt":         "Sitemap: {{BASE}}/other.xml\n",
		"/sitemaps/pages.xml": sitemapXML,
	})
	defer srv.Close()

	svc := wikihttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemaps/pages.xml", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/b", srv.URL + "/a"}, urls)
}

func TestSitemapService_DiscoverURLs_GzipSitemap(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/page</loc></url>
</urlset>`))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sitemap.xml.gz" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	svc := wikihttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemap.xml.gz", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/page"}, urls)
}

func TestSitemapService_DiscoverURLs_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	svc := wikihttp.NewSitemapService(nil)
	_, err := svc.DiscoverURLs(context.Background(), "not a url", nil)

	assert.Equal(t, wikidocu.EINVALID, wikidocu.ErrorCode(err))
}

func TestFetcher_SitemapService(t *testing.T) {
	t.Parallel()

	t.Run("gives up on a slow host after the fetch timeout", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(3 * time.Second):
			}
		}))
		defer srv.Close()

		fetcher := wikihttp.NewFetcher(wikihttp.WithTimeout(100 * time.Millisecond))
		defer fetcher.Close()

		start := time.Now()
		_, err := fetcher.SitemapService().DiscoverURLs(context.Background(), srv.URL+"/sitemap.xml", nil)

		require.Error(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("sends configured headers and cookies", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("session")
			if r.Header.Get("X-Token") != "abc" || err != nil || cookie.Value != "s1" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			_, _ = w.Write([]byte(`<urlset><url><loc>https://example.com/a</loc></url></urlset>`))
		}))
		defer srv.Close()

		fetcher := wikihttp.NewFetcher(
			wikihttp.WithHeaders(map[string]string{"X-Token": "abc"}),
			wikihttp.WithCookies(map[string]string{"session": "s1"}),
		)
		defer fetcher.Close()

		urls, err := fetcher.SitemapService().DiscoverURLs(context.Background(), srv.URL+"/sitemap.xml", nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/a"}, urls)
	})
}

// newTestServer creates a test HTTP server with the given path->content mapping.
// Content strings may contain {{BASE}} which is replaced with the server URL.
func newTestServer(t *testing.T, content map[string]string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		// Replace {{BASE}} with actual server URL
		body = replaceBaseURL(body, srv.URL)

		// Set content type based on path
		if r.URL.Path == "/robots.txt" {
			w.Header().Set("Content-Type", "text/plain")
		} else {
			w.Header().Set("Content-Type", "application/xml")
		}
		_, _ = w.Write([]byte(body))
	}))

	return srv
}

func replaceBaseURL(content, baseURL string) string {
	return regexp.MustCompile(`\{\{BASE\}\}`).ReplaceAllString(content, baseURL)
}
