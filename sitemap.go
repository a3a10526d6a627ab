package wikidocu

import (
	"context"
	"regexp"
	"slices"
)

// SitemapService lists the page URLs a site publishes in its sitemaps.
// It backs "sitemap:<url>" scan units.
type SitemapService interface {
	// DiscoverURLs returns the page URLs reachable from baseURL's sitemaps
	// that pass filter. A nil filter passes every URL.
	DiscoverURLs(ctx context.Context, baseURL string, filter *URLFilter) ([]string, error)
}

// URLFilter narrows the pages a sitemap unit expands into.
type URLFilter struct {
	// Include, when non-empty, keeps only URLs matching one of the patterns.
	Include []*regexp.Regexp

	// Exclude drops URLs matching any pattern, after Include.
	Exclude []*regexp.Regexp
}

// NewURLFilter compiles include and exclude patterns. It returns nil when
// both lists are empty and EINVALID for a pattern that does not compile.
func NewURLFilter(include, exclude []string) (*URLFilter, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return nil, nil
	}

	compile := func(patterns []string) ([]*regexp.Regexp, error) {
		res := make([]*regexp.Regexp, 0, len(patterns))
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, Errorf(EINVALID, "invalid URL pattern %q: %v", p, err)
			}
			res = append(res, re)
		}
		return res, nil
	}

	inc, err := compile(include)
	if err != nil {
		return nil, err
	}
	exc, err := compile(exclude)
	if err != nil {
		return nil, err
	}
	return &URLFilter{Include: inc, Exclude: exc}, nil
}

// Match reports whether url passes the filter.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}
	matches := func(re *regexp.Regexp) bool { return re.MatchString(url) }
	if len(f.Include) > 0 && !slices.ContainsFunc(f.Include, matches) {
		return false
	}
	return !slices.ContainsFunc(f.Exclude, matches)
}
