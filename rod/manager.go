package rod

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the number of pages a browser renders before it is
// replaced.
const DefaultMaxPages = 75

// ErrClosed is returned by Acquire after Close.
var ErrClosed = errors.New("browser manager closed")

// BrowserManager owns the headless browser used for URL scan units. Pages
// are rendered under a lease; once a browser has served maxPages leases it is
// replaced as soon as no lease on it is open, because Chrome's memory keeps
// growing even when pages are closed.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	maxPages int
	proxy    string
	insecure bool

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	served   int // leases granted on the current browser
	open     int // leases not yet released on the current browser
	retired  []*instance
	closed   bool
}

// instance is a browser waiting for its last lease before shutdown.
type instance struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	open     int
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets how many pages a browser renders before it is replaced.
// Non-positive values keep DefaultMaxPages.
func WithMaxPages(n int) ManagerOption {
	return func(bm *BrowserManager) {
		if n > 0 {
			bm.maxPages = n
		}
	}
}

// WithProxy routes browser traffic through proxy (host:port or URL).
func WithProxy(proxy string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.proxy = proxy
	}
}

// WithIgnoreCertErrors makes the browser accept invalid TLS certificates.
func WithIgnoreCertErrors(ignore bool) ManagerOption {
	return func(bm *BrowserManager) {
		bm.insecure = ignore
	}
}

// NewBrowserManager launches a headless Chrome browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(bm)
	}

	browser, lnchr, err := bm.launch()
	if err != nil {
		return nil, err
	}
	bm.browser, bm.launcher = browser, lnchr
	return bm, nil
}

// Acquire leases the current browser for one page. The returned release
// function must be called exactly once when the page is closed.
func (bm *BrowserManager) Acquire() (*rod.Browser, func(), error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, nil, ErrClosed
	}
	if bm.served >= bm.maxPages {
		bm.rotate()
	}

	browser := bm.browser
	bm.served++
	bm.open++

	var once sync.Once
	release := func() {
		once.Do(func() { bm.release(browser) })
	}
	return browser, release, nil
}

func (bm *BrowserManager) release(browser *rod.Browser) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if browser == bm.browser {
		bm.open--
		return
	}
	for i, inst := range bm.retired {
		if inst.browser != browser {
			continue
		}
		inst.open--
		if inst.open == 0 {
			shutdown(inst.browser, inst.launcher)
			bm.retired = append(bm.retired[:i], bm.retired[i+1:]...)
		}
		return
	}
}

// rotate replaces the current browser. The old one is shut down now if it
// has no open pages, or when its last lease is released. If a new browser
// cannot be launched the current one stays in service.
// Must be called with mu held.
func (bm *BrowserManager) rotate() {
	browser, lnchr, err := bm.launch()
	if err != nil {
		bm.served = 0
		return
	}

	if bm.open == 0 {
		shutdown(bm.browser, bm.launcher)
	} else {
		bm.retired = append(bm.retired, &instance{browser: bm.browser, launcher: bm.launcher, open: bm.open})
	}
	bm.browser, bm.launcher = browser, lnchr
	bm.served, bm.open = 0, 0
}

// Close shuts down every browser, including ones with open pages.
// Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true

	err := shutdown(bm.browser, bm.launcher)
	for _, inst := range bm.retired {
		_ = shutdown(inst.browser, inst.launcher)
	}
	bm.browser, bm.launcher, bm.retired = nil, nil, nil
	return err
}

// launch starts a browser with flags that keep background pages rendering.
func (bm *BrowserManager) launch() (*rod.Browser, *launcher.Launcher, error) {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)
	if bm.proxy != "" {
		lnchr = lnchr.Proxy(bm.proxy)
	}
	if bm.insecure {
		lnchr = lnchr.Set("ignore-certificate-errors")
	}

	u, err := lnchr.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return browser, lnchr, nil
}

func shutdown(browser *rod.Browser, lnchr *launcher.Launcher) error {
	var err error
	if browser != nil {
		err = browser.Close()
	}
	if lnchr != nil {
		lnchr.Kill()
	}
	return err
}

// LauncherPID returns the process ID of the current browser's launcher, or
// zero after Close.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}
