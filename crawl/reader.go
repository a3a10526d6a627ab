// Package crawl reads web pages into Markdown for evidence extraction.
// It coordinates fetching with retry and per-domain rate limiting,
// main-content extraction, and Markdown conversion.
package crawl

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/wikidocu"
)

// Ensure Reader implements wikidocu.PageReader at compile time.
var _ wikidocu.PageReader = (*Reader)(nil)

// Reader implements wikidocu.PageReader.
type Reader struct {
	Fetcher   wikidocu.Fetcher
	Extractor wikidocu.ContentExtractor
	Converter wikidocu.Converter

	// Fallback extracts content when Extractor fails or yields nothing.
	// Optional.
	Fallback wikidocu.ContentExtractor

	// RateLimiter throttles requests per host. Optional.
	RateLimiter wikidocu.DomainLimiter

	// RetryDelays are the waits between fetch attempts.
	// Nil selects DefaultRetryDelays.
	RetryDelays []time.Duration

	Logger *slog.Logger
}

// ReadPage fetches rawURL and returns its main content as Markdown.
// Bodies that are not HTML are returned verbatim. Failures are reported as
// EFETCH, except a malformed URL (EINVALID) and context cancellation.
func (r *Reader) ReadPage(ctx context.Context, rawURL string) (*wikidocu.Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, wikidocu.Errorf(wikidocu.EINVALID, "invalid URL: %s", rawURL)
	}

	if r.RateLimiter != nil {
		if err := r.RateLimiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	body, err := Retry(ctx, delays, r.logger(), "fetch "+rawURL, func(ctx context.Context) (string, error) {
		return r.Fetcher.Fetch(ctx, rawURL)
	})
	if err != nil {
		if isContextErr(err) {
			return nil, err
		}
		if wikidocu.ErrorCode(err) != wikidocu.EINTERNAL {
			return nil, wikidocu.Errorf(wikidocu.EFETCH, "fetch %s: %s", rawURL, wikidocu.ErrorMessage(err))
		}
		return nil, wikidocu.Errorf(wikidocu.EFETCH, "fetch %s: %v", rawURL, err)
	}

	if !IsHTML(body) {
		return &wikidocu.Page{URL: rawURL, Content: body}, nil
	}

	extracted := r.extract(rawURL, body)
	if extracted == nil {
		return nil, wikidocu.Errorf(wikidocu.EFETCH, "no content extracted from %s", rawURL)
	}

	markdown, err := r.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		return nil, wikidocu.Errorf(wikidocu.EFETCH, "convert %s: %v", rawURL, err)
	}
	if strings.TrimSpace(markdown) == "" {
		return nil, wikidocu.Errorf(wikidocu.EFETCH, "empty content at %s", rawURL)
	}

	return &wikidocu.Page{
		URL:     rawURL,
		Title:   extracted.Title,
		Content: markdown,
	}, nil
}

// extract runs the primary extractor, then the fallback. Returns nil if
// neither produced content.
func (r *Reader) extract(rawURL, html string) *wikidocu.ExtractResult {
	for _, ex := range []wikidocu.ContentExtractor{r.Extractor, r.Fallback} {
		if ex == nil {
			continue
		}
		result, err := ex.Extract(html)
		if err != nil {
			r.logger().Debug("extract failed", "url", rawURL, "err", err)
			continue
		}
		if result != nil && strings.TrimSpace(result.ContentHTML) != "" {
			return result
		}
	}
	return nil
}

func (r *Reader) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r.Logger
}

// IsHTML reports whether body looks like an HTML document.
func IsHTML(body string) bool {
	return strings.HasPrefix(http.DetectContentType([]byte(body)), "text/html")
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
