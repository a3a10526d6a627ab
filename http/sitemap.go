package http

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/wikidocu"
)

// Ensure SitemapService implements wikidocu.SitemapService.
var _ wikidocu.SitemapService = (*SitemapService)(nil)

// SitemapService discovers URLs from website sitemaps via HTTP.
type SitemapService struct {
	client  *http.Client
	headers map[string]string
	cookies []*http.Cookie
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, a client with DefaultFetchTimeout is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &SitemapService{client: client}
}

// DiscoverURLs returns page URLs listed in the site's sitemaps, in sitemap
// order and without duplicates.
//
// When baseURL points at a sitemap document (".xml" or ".xml.gz") it is read
// directly. Otherwise sitemaps are located through robots.txt, falling back
// to /sitemap.xml, and when baseURL has a non-root path only URLs under that
// path are returned. Returns an empty slice if no sitemap is found.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *wikidocu.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, wikidocu.Errorf(wikidocu.EINVALID, "invalid base URL: %s", baseURL)
	}

	var sitemapURLs []string
	var pathPrefix string
	if isSitemapDocument(base.Path) {
		sitemapURLs = []string{base.String()}
	} else {
		if base.Path != "/" {
			pathPrefix = base.Path
		}
		root := &url.URL{Scheme: base.Scheme, Host: base.Host}
		sitemapURLs, err = s.locateSitemaps(ctx, root)
		if err != nil {
			return nil, err
		}
	}

	w := &sitemapWalker{svc: s, seenSitemaps: map[string]bool{}, seenURLs: map[string]bool{}}
	for _, sitemapURL := range sitemapURLs {
		if err := w.walk(ctx, sitemapURL); err != nil {
			return nil, err
		}
	}

	urls := make([]string, 0, len(w.urls))
	for _, u := range w.urls {
		if pathPrefix != "" && !underPath(u, pathPrefix) {
			continue
		}
		if !filter.Match(u) {
			continue
		}
		urls = append(urls, u)
	}
	return urls, nil
}

func isSitemapDocument(p string) bool {
	p = strings.ToLower(p)
	return path.Ext(p) == ".xml" || strings.HasSuffix(p, ".xml.gz")
}

// underPath reports whether rawURL's path is prefix or below it, respecting
// segment boundaries: /docs matches /docs/intro but not /documentation.
func underPath(rawURL, prefix string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	prefix = strings.TrimSuffix(prefix, "/")
	return parsed.Path == prefix || strings.HasPrefix(parsed.Path, prefix+"/")
}

// locateSitemaps reads Sitemap: directives from robots.txt and falls back to
// /sitemap.xml when there are none.
func (s *SitemapService) locateSitemaps(ctx context.Context, root *url.URL) ([]string, error) {
	robotsURL := root.ResolveReference(&url.URL{Path: "/robots.txt"}).String()
	if sitemaps, err := s.sitemapsFromRobots(ctx, robotsURL); err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fallback := root.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()
	ok, err := s.exists(ctx, fallback)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if !ok {
		return nil, nil
	}
	return []string{fallback}, nil
}

func (s *SitemapService) sitemapsFromRobots(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.open(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	const directive = "sitemap:"
	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) > len(directive) && strings.EqualFold(line[:len(directive)], directive) {
			if u := strings.TrimSpace(line[len(directive):]); u != "" {
				sitemaps = append(sitemaps, u)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return sitemaps, nil
}

// sitemapWalker resolves sitemap indexes depth-first, collecting page URLs.
type sitemapWalker struct {
	svc          *SitemapService
	seenSitemaps map[string]bool
	seenURLs     map[string]bool
	urls         []string
}

func (w *sitemapWalker) walk(ctx context.Context, sitemapURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.seenSitemaps[sitemapURL] {
		return nil
	}
	w.seenSitemaps[sitemapURL] = true

	root, err := w.svc.readXML(ctx, sitemapURL)
	if err != nil {
		return err
	}

	switch root.Tag {
	case "sitemapindex":
		for _, loc := range locs(root, "sitemap") {
			if err := w.walk(ctx, loc); err != nil {
				return err
			}
		}
	default:
		for _, loc := range locs(root, "url") {
			if !w.seenURLs[loc] {
				w.seenURLs[loc] = true
				w.urls = append(w.urls, loc)
			}
		}
	}
	return nil
}

// locs returns the trimmed <loc> text of each child element named tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// readXML fetches and parses a sitemap document, decompressing .gz files.
func (s *SitemapService) readXML(ctx context.Context, sitemapURL string) (*etree.Element, error) {
	body, err := s.open(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var r io.Reader = body
	if strings.HasSuffix(strings.ToLower(sitemapURL), ".gz") {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", sitemapURL, err)
		}
		defer gz.Close()
		r = gz
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap XML at %s", sitemapURL)
	}
	return root, nil
}

func (s *SitemapService) open(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := s.newRequest(ctx, http.MethodGet, targetURL)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, targetURL)
	}
	return resp.Body, nil
}

func (s *SitemapService) exists(ctx context.Context, targetURL string) (bool, error) {
	req, err := s.newRequest(ctx, http.MethodHead, targetURL)
	if err != nil {
		return false, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (s *SitemapService) newRequest(ctx context.Context, method, targetURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	return req, nil
}
