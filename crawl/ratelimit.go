package crawl

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/fwojciec/wikidocu"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond is the per-host request rate used by the CLI.
const DefaultRequestsPerSecond = 2

var _ wikidocu.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter throttles requests per host using one token bucket per host.
// URL units on different hosts proceed concurrently.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// to each host, without bursting. A non-positive rps disables limiting.
func NewDomainLimiter(rps float64) *DomainLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
	}
}

// Wait blocks until a request to domain is allowed.
// Hosts are compared case-insensitively and without port.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	key := hostKey(domain)

	d.mu.Lock()
	limiter, ok := d.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(d.limit, 1)
		d.limiters[key] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

func hostKey(domain string) string {
	if host, _, err := net.SplitHostPort(domain); err == nil {
		domain = host
	}
	return strings.ToLower(domain)
}
