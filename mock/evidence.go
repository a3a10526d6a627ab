package mock

import (
	"context"

	"github.com/fwojciec/wikidocu"
)

var _ wikidocu.EvidenceExtractor = (*EvidenceExtractor)(nil)

// EvidenceExtractor is a mock implementation of wikidocu.EvidenceExtractor.
type EvidenceExtractor struct {
	ExtractFn    func(ctx context.Context, src *wikidocu.Source, question string) ([]wikidocu.EvidenceMatch, error)
	SynthesizeFn func(ctx context.Context, question, evidence string) (string, error)
}

func (e *EvidenceExtractor) Extract(ctx context.Context, src *wikidocu.Source, question string) ([]wikidocu.EvidenceMatch, error) {
	return e.ExtractFn(ctx, src, question)
}

func (e *EvidenceExtractor) Synthesize(ctx context.Context, question, evidence string) (string, error) {
	return e.SynthesizeFn(ctx, question, evidence)
}
