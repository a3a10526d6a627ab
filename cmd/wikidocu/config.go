package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/wikidocu"
	wikihttp "github.com/fwojciec/wikidocu/http"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when --config is not
// given.
const DefaultConfigFile = "wikidocu.yaml"

// Extractor names accepted by --extractor and the config file.
const (
	ExtractorTrafilatura = "trafilatura"
	ExtractorReadability = "readability"
)

// Config is the file-backed configuration. Zero values mean "use the
// default".
type Config struct {
	Sources     []string      `yaml:"sources"`
	Model       string        `yaml:"model"`
	DB          string        `yaml:"db"`
	Concurrency int           `yaml:"concurrency"`
	QueryCount  int           `yaml:"query_count"`
	KeepLast    int           `yaml:"keep_last"`
	Browser     bool          `yaml:"browser"`
	Extractor   string        `yaml:"extractor"`
	Fetch       FetchConfig   `yaml:"fetch"`
	Sitemap     SitemapConfig `yaml:"sitemap"`
}

// SitemapConfig narrows the pages taken from sitemap units.
type SitemapConfig struct {
	MaxURLs int      `yaml:"max_urls"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// FetchConfig configures how URL units are downloaded.
type FetchConfig struct {
	Timeout            time.Duration     `yaml:"timeout"`
	Proxy              string            `yaml:"proxy"`
	Headers            map[string]string `yaml:"headers"`
	Cookies            map[string]string `yaml:"cookies"`
	InsecureSkipVerify bool              `yaml:"insecure_skip_verify"`

	// MaxRedirects is nil when unset; zero disables redirects.
	MaxRedirects *int `yaml:"max_redirects"`

	// BrowserMaxPages is how many pages a headless browser renders before
	// it is replaced.
	BrowserMaxPages int `yaml:"browser_max_pages"`
}

// LoadConfig reads the YAML config at path. An empty path falls back to
// DefaultConfigFile, which may be absent.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, wikidocu.Errorf(wikidocu.EINVALID, "invalid config %s: %v", filepath.Base(path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate returns an error if the config contains invalid fields.
func (c *Config) Validate() error {
	switch c.Extractor {
	case "", ExtractorTrafilatura, ExtractorReadability:
	default:
		return wikidocu.Errorf(wikidocu.EINVALID, "unknown extractor %q", c.Extractor)
	}
	if c.Concurrency < 0 {
		return wikidocu.Errorf(wikidocu.EINVALID, "concurrency must not be negative")
	}
	if c.QueryCount < 0 {
		return wikidocu.Errorf(wikidocu.EINVALID, "query_count must not be negative")
	}
	if c.KeepLast < 0 {
		return wikidocu.Errorf(wikidocu.EINVALID, "keep_last must not be negative")
	}
	if c.Sitemap.MaxURLs < 0 {
		return wikidocu.Errorf(wikidocu.EINVALID, "sitemap.max_urls must not be negative")
	}
	if _, err := wikidocu.NewURLFilter(c.Sitemap.Include, c.Sitemap.Exclude); err != nil {
		return err
	}
	if c.Fetch.Timeout < 0 {
		return wikidocu.Errorf(wikidocu.EINVALID, "fetch.timeout must not be negative")
	}
	if c.Fetch.MaxRedirects != nil && *c.Fetch.MaxRedirects < 0 {
		return wikidocu.Errorf(wikidocu.EINVALID, "fetch.max_redirects must not be negative")
	}
	return nil
}

// HTTPOptions translates the fetch settings into HTTP fetcher options. The
// same options serve page fetches and sitemap discovery.
func (fc FetchConfig) HTTPOptions() ([]wikihttp.Option, error) {
	var opts []wikihttp.Option
	if fc.Timeout > 0 {
		opts = append(opts, wikihttp.WithTimeout(fc.Timeout))
	}
	if len(fc.Headers) > 0 {
		opts = append(opts, wikihttp.WithHeaders(fc.Headers))
	}
	if len(fc.Cookies) > 0 {
		opts = append(opts, wikihttp.WithCookies(fc.Cookies))
	}
	if fc.Proxy != "" {
		proxy, err := url.Parse(fc.Proxy)
		if err != nil || proxy.Host == "" {
			return nil, wikidocu.Errorf(wikidocu.EINVALID, "invalid proxy URL %q", fc.Proxy)
		}
		opts = append(opts, wikihttp.WithProxy(proxy))
	}
	if fc.InsecureSkipVerify {
		opts = append(opts, wikihttp.WithInsecureSkipVerify(true))
	}
	if fc.MaxRedirects != nil {
		opts = append(opts, wikihttp.WithMaxRedirects(*fc.MaxRedirects))
	}
	return opts, nil
}

// Apply overrides file values with the flags that were set on the command
// line.
func (c *Config) Apply(cli *CLI) error {
	if cli.Model != "" {
		c.Model = cli.Model
	}
	if cli.DB != "" {
		c.DB = cli.DB
	}
	if cli.Concurrency != 0 {
		c.Concurrency = cli.Concurrency
	}
	if cli.QueryCount != 0 {
		c.QueryCount = cli.QueryCount
	}
	if cli.KeepLast != 0 {
		c.KeepLast = cli.KeepLast
	}
	if cli.Browser {
		c.Browser = true
	}
	if cli.Extractor != "" {
		c.Extractor = cli.Extractor
	}
	if cli.Timeout != 0 {
		c.Fetch.Timeout = cli.Timeout
	}
	if cli.Proxy != "" {
		c.Fetch.Proxy = cli.Proxy
	}
	if len(cli.Include) > 0 {
		c.Sitemap.Include = cli.Include
	}
	if len(cli.Exclude) > 0 {
		c.Sitemap.Exclude = cli.Exclude
	}
	if cli.Insecure {
		c.Fetch.InsecureSkipVerify = true
	}
	return c.Validate()
}
