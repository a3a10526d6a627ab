// Package evidence asks a language model which lines of a text answer a
// question, and writes final answers from the cited lines.
package evidence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fwojciec/wikidocu"
)

// Ensure Extractor implements wikidocu.EvidenceExtractor at compile time.
var _ wikidocu.EvidenceExtractor = (*Extractor)(nil)

// Extractor implements wikidocu.EvidenceExtractor on top of a Completer.
type Extractor struct {
	completer wikidocu.Completer
	logger    *slog.Logger
}

// NewExtractor creates a new Extractor. A nil logger discards output.
func NewExtractor(completer wikidocu.Completer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Extractor{completer: completer, logger: logger}
}

// Extract asks the model for line ranges of src relevant to question.
// An unparseable reply is logged and reported as zero matches.
func (e *Extractor) Extract(ctx context.Context, src *wikidocu.Source, question string) ([]wikidocu.EvidenceMatch, error) {
	if strings.TrimSpace(question) == "" {
		return nil, wikidocu.Errorf(wikidocu.EINVALID, "question required")
	}
	if strings.TrimSpace(src.Text) == "" {
		return nil, nil
	}

	var matches []wikidocu.EvidenceMatch
	err := e.completer.CompleteStructured(ctx, BuildExtractRequest(src, question), wikidocu.SchemaEvidenceMatches, &matches)
	if wikidocu.ErrorCode(err) == wikidocu.EEXTRACT {
		e.logger.Warn("no parseable evidence", "origin", src.Origin, "err", err)
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return matches, nil
}

// Synthesize writes the final answer to question from rendered citations.
// Returns ESYNTHESIS if the model call fails or the answer is empty.
func (e *Extractor) Synthesize(ctx context.Context, question, evidence string) (string, error) {
	answer, err := e.completer.Complete(ctx, BuildSynthesizeRequest(question, evidence))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", wikidocu.Errorf(wikidocu.ESYNTHESIS, "synthesize answer: %v", err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", wikidocu.Errorf(wikidocu.ESYNTHESIS, "model returned an empty answer")
	}
	return answer, nil
}

// BuildExtractRequest builds the completion request for one source.
// The user message carries the source location, the directory tree when
// present, and the line-numbered text.
func BuildExtractRequest(src *wikidocu.Source, question string) *wikidocu.CompletionRequest {
	location := "Current file"
	if src.Kind == wikidocu.UnitURL {
		location = "Current URL"
	}

	var sb strings.Builder
	if src.Tree != "" {
		fmt.Fprintf(&sb, "[ ## Directory tree ## ]\n%s\n\n", src.Tree)
	}
	fmt.Fprintf(&sb, "[ ## %s ## ]\n%s\n\n", location, src.Origin)
	sb.WriteString("[ ## Context ## ]\nline: content\n---\n")
	sb.WriteString(wikidocu.NumberLines(src.Text))

	return &wikidocu.CompletionRequest{
		System:   fmt.Sprintf(extractInstructions, question, question),
		Messages: []wikidocu.Message{{Role: wikidocu.RoleUser, Content: sb.String()}},
	}
}

// BuildSynthesizeRequest builds the completion request for the final answer.
func BuildSynthesizeRequest(question, evidence string) *wikidocu.CompletionRequest {
	if strings.TrimSpace(evidence) == "" {
		evidence = "(no evidence was found)"
	}
	return &wikidocu.CompletionRequest{
		System: fmt.Sprintf(synthesizeInstructions, question),
		Messages: []wikidocu.Message{{
			Role:    wikidocu.RoleUser,
			Content: "[ ## Context ## ]\n" + evidence,
		}},
	}
}

const extractInstructions = `You are a content extraction assistant. Find the passages of the provided text that are relevant to the research topic and record the line numbers where each passage starts and ends.

Instructions:
- Read the numbered text carefully. Each line is prefixed with its line number and a colon.
- Extract every passage related to %q.
- For each passage, return "start_line" and "end_line" (integers, 1-based, inclusive) and "reasoning" (why it matches).
- Line numbers must refer to lines that exist in the text.
- Return only the structured list. If nothing is relevant, return an empty list.

Research topic:
%s`

const synthesizeInstructions = `You are a content analysis assistant. Answer the user's question using the evidence in [ ## Context ## ].

Instructions:
- Read the evidence carefully. Each block is a numbered source with its origin and line range.
- Base the answer on the evidence. You may use general knowledge only to supplement it.
- Attribute every claim taken from the evidence to its source, for example [1] or [2].
- If the evidence is empty or unrelated to the question, say "no relevant information found".
- Never fabricate sources or citations.

[ ## Question ## ]
%s`
