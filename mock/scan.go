package mock

import (
	"context"

	"github.com/fwojciec/wikidocu"
)

var _ wikidocu.Scanner = (*Scanner)(nil)

// Scanner is a mock implementation of wikidocu.Scanner.
type Scanner struct {
	ScanFn func(ctx context.Context, units []string, question string) (*wikidocu.ScanResult, error)
}

func (s *Scanner) Scan(ctx context.Context, units []string, question string) (*wikidocu.ScanResult, error) {
	return s.ScanFn(ctx, units, question)
}
