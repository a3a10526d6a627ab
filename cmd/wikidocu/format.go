package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/wikidocu"
	"github.com/fwojciec/wikidocu/evidence"
)

// FormatBytes formats a byte count as a human-readable string.
func FormatBytes(b int) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case b >= MB:
		return fmt.Sprintf("%.1f MB", float64(b)/MB)
	case b >= KB:
		return fmt.Sprintf("%.1f KB", float64(b)/KB)
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// FormatTokens formats a token count as a human-readable string.
func FormatTokens(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("~%d tokens", tokens)
	}
	return fmt.Sprintf("~%dk tokens", (tokens+500)/1000)
}

// PlainTurn renders a turn as its answer followed by the citation blocks.
func PlainTurn(turn *wikidocu.Turn) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(turn.Answer))
	sb.WriteString("\n")
	if citations := wikidocu.RenderCitations(turn.Citations()); citations != "" {
		sb.WriteString("\n")
		sb.WriteString(citations)
		if !strings.HasSuffix(citations, "\n") {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// printTurn writes the turn to stdout and, with a token counter, a stats line
// to stderr. Research turns also report the size of the synthesis request.
func printTurn(deps *Dependencies, turn *wikidocu.Turn) error {
	out := PlainTurn(turn)
	if deps.Renderer != nil {
		rendered, err := deps.Renderer.RenderTurn(turn)
		if err != nil {
			return fmt.Errorf("failed to render answer: %w", err)
		}
		out = rendered
	}
	fmt.Fprint(deps.Stdout, out)

	if deps.TokenCounter == nil {
		return nil
	}
	stats := fmt.Sprintf("route: %s, citations: %d", turn.Route, len(turn.Citations()))
	if turn.Evidence != "" {
		tokens, err := deps.TokenCounter.CountTokens(deps.Ctx, turn.Evidence)
		if err != nil {
			return fmt.Errorf("failed to count tokens: %w", err)
		}
		stats += fmt.Sprintf(", evidence: %s (%s)", FormatTokens(tokens), FormatBytes(len(turn.Evidence)))
	}
	if turn.Route == wikidocu.RouteFileResearch {
		tokens, err := deps.TokenCounter.CountRequest(deps.Ctx, evidence.BuildSynthesizeRequest(turn.Question, turn.Evidence))
		if err != nil {
			return fmt.Errorf("failed to count tokens: %w", err)
		}
		stats += fmt.Sprintf(", answer prompt: %s", FormatTokens(tokens))
	}
	fmt.Fprintln(deps.Stderr, stats)
	return nil
}

// printError reports err on stderr the way every command does.
func printError(deps *Dependencies, err error) {
	fmt.Fprintf(deps.Stderr, "error: %s\n", wikidocu.ErrorMessage(err))
}
