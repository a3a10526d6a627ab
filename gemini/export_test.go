package gemini

import (
	"context"

	"google.golang.org/genai"
)

// NewCompleterFunc returns a Completer that calls generate instead of the
// Gemini API.
func NewCompleterFunc(generate func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error)) *Completer {
	return newCompleter(generate)
}
