package wikidocu

import (
	"context"
	"strconv"
	"strings"
)

// EvidenceMatch is a line range a model claims is relevant to a question.
// Lines are 1-indexed and inclusive.
type EvidenceMatch struct {
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Reasoning string `json:"reasoning"`
}

// Validate returns ERANGE if the match does not fit inside a text of
// totalLines lines.
func (m EvidenceMatch) Validate(totalLines int) error {
	if m.StartLine < 1 {
		return Errorf(ERANGE, "start line %d is before line 1", m.StartLine)
	}
	if m.EndLine < m.StartLine {
		return Errorf(ERANGE, "end line %d is before start line %d", m.EndLine, m.StartLine)
	}
	if m.EndLine > totalLines {
		return Errorf(ERANGE, "end line %d is past the last line %d", m.EndLine, totalLines)
	}
	return nil
}

// SourceRecord is an evidence span resolved against the text it came from.
// RelevantContent is always the exact slice of the original text at
// [StartLine, EndLine].
type SourceRecord struct {
	TurnID          string `json:"turnId,omitempty"`
	Origin          string `json:"origin"`
	StartLine       int    `json:"startLine"`
	EndLine         int    `json:"endLine"`
	Reasoning       string `json:"reasoning"`
	RelevantContent string `json:"relevantContent"`
}

// UnitKind identifies how a scan unit's content is obtained.
type UnitKind string

// UnitKind constants.
const (
	UnitFile      UnitKind = "file"
	UnitDirectory UnitKind = "directory"
	UnitURL       UnitKind = "url"
	UnitSitemap   UnitKind = "sitemap"
)

// Source is the loaded content of a single scan unit, ready for extraction.
type Source struct {
	// Origin is the file path or URL the text was read from.
	Origin string
	Kind   UnitKind
	Text   string

	// Tree is an optional rendering of the directory the file was found in.
	Tree string
}

// EvidenceExtractor finds relevant line ranges in a text and writes the
// final answer from the assembled evidence.
type EvidenceExtractor interface {
	// Extract asks which line ranges of src are relevant to the question.
	// The returned matches are not validated against the text; use
	// NewSourceRecords for that. A model response that cannot be parsed is
	// reported as zero matches, not as an error.
	Extract(ctx context.Context, src *Source, question string) ([]EvidenceMatch, error)

	// Synthesize answers the question from rendered citation markdown.
	// Returns ESYNTHESIS if the completion fails.
	Synthesize(ctx context.Context, question, evidence string) (string, error)
}

// SplitLines splits text into lines. "\r\n" and "\r" are treated as line
// breaks and a trailing line break does not start a new line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// NumberLines renders text as "<n>: <line>" for each line, starting at 1.
func NumberLines(text string) string {
	lines := SplitLines(text)
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString(": ")
		sb.WriteString(line)
	}
	return sb.String()
}

// SliceLines returns lines start..end (1-indexed, inclusive) joined by "\n".
// Returns ERANGE if the range is outside the slice.
func SliceLines(lines []string, start, end int) (string, error) {
	m := EvidenceMatch{StartLine: start, EndLine: end}
	if err := m.Validate(len(lines)); err != nil {
		return "", err
	}
	return strings.Join(lines[start-1:end], "\n"), nil
}

// NewSourceRecords resolves matches against text. Matches whose range falls
// outside the text are dropped and returned separately so callers can report
// them.
func NewSourceRecords(origin, text string, matches []EvidenceMatch) (records []SourceRecord, dropped []EvidenceMatch) {
	lines := SplitLines(text)
	for _, m := range matches {
		content, err := SliceLines(lines, m.StartLine, m.EndLine)
		if err != nil {
			dropped = append(dropped, m)
			continue
		}
		records = append(records, SourceRecord{
			Origin:          origin,
			StartLine:       m.StartLine,
			EndLine:         m.EndLine,
			Reasoning:       m.Reasoning,
			RelevantContent: content,
		})
	}
	return records, dropped
}
