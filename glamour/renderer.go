// Package glamour renders answers and citations for the terminal.
package glamour

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fwojciec/wikidocu"
)

// DefaultWordWrap is the column answers are wrapped at.
const DefaultWordWrap = 100

// Renderer turns Markdown answers into styled terminal output.
type Renderer struct {
	term *glamour.TermRenderer
}

// Option configures a Renderer.
type Option func(*options)

type options struct {
	style    string
	wordWrap int
}

// WithStyle selects a named glamour style such as "dark" or "notty".
// The default picks a style from the terminal background.
func WithStyle(style string) Option {
	return func(o *options) {
		o.style = style
	}
}

// WithWordWrap sets the wrap column. Zero disables wrapping.
func WithWordWrap(width int) Option {
	return func(o *options) {
		o.wordWrap = width
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) (*Renderer, error) {
	o := options{wordWrap: DefaultWordWrap}
	for _, opt := range opts {
		opt(&o)
	}

	termOpts := []glamour.TermRendererOption{glamour.WithWordWrap(o.wordWrap)}
	if o.style != "" {
		termOpts = append(termOpts, glamour.WithStandardStyle(o.style))
	} else {
		termOpts = append(termOpts, glamour.WithAutoStyle())
	}

	term, err := glamour.NewTermRenderer(termOpts...)
	if err != nil {
		return nil, fmt.Errorf("create terminal renderer: %w", err)
	}
	return &Renderer{term: term}, nil
}

// Render styles a Markdown document.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.term.Render(markdown)
}

// RenderTurn styles a turn's answer followed by its numbered citations.
func (r *Renderer) RenderTurn(turn *wikidocu.Turn) (string, error) {
	return r.Render(TurnMarkdown(turn))
}

// TurnMarkdown formats a turn as Markdown: the answer, then a Sources
// section listing each citation when the turn gathered any.
func TurnMarkdown(turn *wikidocu.Turn) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(turn.Answer))
	sb.WriteString("\n")

	citations := turn.Citations()
	if len(citations) == 0 {
		return sb.String()
	}

	sb.WriteString("\n## Sources\n\n")
	for _, c := range citations {
		fmt.Fprintf(&sb, "%d. `%s` lines %d-%d: %s\n", c.Index, c.Origin, c.StartLine, c.EndLine, c.Reasoning)
	}
	return sb.String()
}
