// Package http provides HTTP-based implementations of wikidocu.Fetcher and
// wikidocu.SitemapService for static sites that don't require JavaScript
// rendering.
package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/fwojciec/wikidocu"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout (10s).
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxRedirects is the number of redirects followed before a fetch fails.
const DefaultMaxRedirects = 10

// DefaultHeaders mimic a desktop browser so sites serve their normal pages.
// Accept-Encoding is left to the transport so gzip is decoded transparently.
var DefaultHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
}

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 20 << 20

// Ensure Fetcher implements wikidocu.Fetcher at compile time.
var _ wikidocu.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves page bodies using HTTP requests.
// Unlike rod.Fetcher, this does not execute JavaScript.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	headers      map[string]string
	proxy        *url.URL
	cookies      []*http.Cookie
	insecure     bool
	maxRedirects int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHeaders adds request headers. They override DefaultHeaders.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithProxy routes requests through proxy.
func WithProxy(proxy *url.URL) Option {
	return func(f *Fetcher) {
		f.proxy = proxy
	}
}

// WithCookies sends cookies with every request.
func WithCookies(cookies map[string]string) Option {
	return func(f *Fetcher) {
		for name, value := range cookies {
			f.cookies = append(f.cookies, &http.Cookie{Name: name, Value: value})
		}
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(f *Fetcher) {
		f.insecure = skip
	}
}

// WithMaxRedirects sets how many redirects are followed. Zero disables
// redirects.
func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) {
		f.maxRedirects = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		headers:      make(map[string]string, len(DefaultHeaders)),
		maxRedirects: DefaultMaxRedirects,
	}
	for k, v := range DefaultHeaders {
		f.headers[k] = v
	}
	for _, opt := range opts {
		opt(f)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if f.proxy != nil {
		transport.Proxy = http.ProxyURL(f.proxy)
	}
	if f.insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in
	}

	jar, _ := cookiejar.New(nil)
	f.client = &http.Client{
		Timeout:   f.timeout,
		Transport: transport,
		Jar:       jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > f.maxRedirects {
				return fmt.Errorf("stopped after %d redirects", f.maxRedirects)
			}
			return nil
		},
	}

	return f
}

// Fetch retrieves the body of the given URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	for _, c := range f.cookies {
		req.AddCookie(c)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return "", fmt.Errorf("timeout after %s fetching %s", f.timeout, rawURL)
		}
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", wikidocu.Errorf(wikidocu.ENOTFOUND, "HTTP %d for %s", resp.StatusCode, rawURL)
	default:
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// SitemapService returns a SitemapService that shares the fetcher's client,
// so sitemap requests get the same timeout, proxy, TLS and redirect settings,
// headers and cookies as page fetches.
func (f *Fetcher) SitemapService() *SitemapService {
	return &SitemapService{client: f.client, headers: f.headers, cookies: f.cookies}
}

// Close releases idle connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
