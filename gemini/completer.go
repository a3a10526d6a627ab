// Package gemini implements language model access using Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/wikidocu"
	"google.golang.org/genai"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Completer implements wikidocu.Completer at compile time.
var _ wikidocu.Completer = (*Completer)(nil)

// generateFunc sends contents to the model and returns the reply text.
type generateFunc func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error)

// DefaultRetryDelays returns the backoff delays for retrying failed model
// calls: 300ms, 600ms, 1.2s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{300 * time.Millisecond, 600 * time.Millisecond, 1200 * time.Millisecond}
}

// Completer implements wikidocu.Completer using Google Gemini.
type Completer struct {
	generate generateFunc

	// RetryDelays are the waits between attempts after a provider error.
	// Unparseable structured replies are never retried.
	RetryDelays []time.Duration
}

// NewCompleter creates a new Completer for model. An empty model selects
// DefaultModel.
func NewCompleter(client *genai.Client, model string) *Completer {
	if model == "" {
		model = DefaultModel
	}
	return newCompleter(func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
		result, err := client.Models.GenerateContent(ctx, model, contents, config)
		if err != nil {
			return "", err
		}
		if result == nil {
			return "", wikidocu.Errorf(wikidocu.EINTERNAL, "gemini returned nil result")
		}
		return result.Text(), nil
	})
}

func newCompleter(generate generateFunc) *Completer {
	return &Completer{generate: generate, RetryDelays: DefaultRetryDelays()}
}

// Complete returns the model's free-text reply.
func (c *Completer) Complete(ctx context.Context, req *wikidocu.CompletionRequest) (string, error) {
	if err := validateRequest(req); err != nil {
		return "", err
	}
	return c.generateWithRetry(ctx, BuildContents(req), BuildConfig(req))
}

// CompleteStructured constrains the reply to schema and decodes it into v.
func (c *Completer) CompleteStructured(ctx context.Context, req *wikidocu.CompletionRequest, schema wikidocu.Schema, v any) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	config, err := BuildStructuredConfig(req, schema)
	if err != nil {
		return err
	}

	text, err := c.generateWithRetry(ctx, BuildContents(req), config)
	if err != nil {
		return err
	}
	return Decode(text, v)
}

func (c *Completer) generateWithRetry(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	maxAttempts := len(c.RetryDelays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		text, err := c.generate(ctx, contents, config)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !retryable(err) {
			return "", err
		}
		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.RetryDelays[attempt]):
		}
	}
	return "", lastErr
}

// retryable reports whether a failed call may succeed when repeated. Context
// errors and API errors other than timeouts, rate limits and server errors
// are final.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusRequestTimeout ||
			apiErr.Code == http.StatusTooManyRequests ||
			apiErr.Code >= http.StatusInternalServerError
	}
	return true
}

func validateRequest(req *wikidocu.CompletionRequest) error {
	if req == nil || len(req.Messages) == 0 {
		return wikidocu.Errorf(wikidocu.EINVALID, "at least one message required")
	}
	return nil
}

// BuildContents converts the request messages into Gemini contents.
// Assistant messages are sent with the "model" role.
func BuildContents(req *wikidocu.CompletionRequest) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := "user"
		if m.Role == wikidocu.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return contents
}

// BuildConfig returns the GenerateContentConfig for free-text calls.
func BuildConfig(req *wikidocu.CompletionRequest) *genai.GenerateContentConfig {
	temp := float32(0.4)
	config := &genai.GenerateContentConfig{Temperature: &temp}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	return config
}

// BuildStructuredConfig returns the GenerateContentConfig for calls whose
// reply must be JSON matching schema.
func BuildStructuredConfig(req *wikidocu.CompletionRequest, schema wikidocu.Schema) (*genai.GenerateContentConfig, error) {
	rs, err := ResponseSchema(schema)
	if err != nil {
		return nil, err
	}

	config := BuildConfig(req)
	temp := float32(0)
	config.Temperature = &temp
	config.ResponseMIMEType = "application/json"
	config.ResponseSchema = rs
	return config, nil
}

// ResponseSchema maps a wikidocu schema name to its Gemini response schema.
func ResponseSchema(schema wikidocu.Schema) (*genai.Schema, error) {
	switch schema {
	case wikidocu.SchemaEvidenceMatches:
		return &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start_line": {Type: genai.TypeInteger, Description: "First relevant line, 1-based."},
					"end_line":   {Type: genai.TypeInteger, Description: "Last relevant line, inclusive."},
					"reasoning":  {Type: genai.TypeString, Description: "Why these lines are relevant."},
				},
				Required:         []string{"start_line", "end_line", "reasoning"},
				PropertyOrdering: []string{"start_line", "end_line", "reasoning"},
			},
		}, nil
	case wikidocu.SchemaSearchQueries:
		return &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"query": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: "Search keyword phrases.",
				},
				"rationale": {Type: genai.TypeString, Description: "Why these queries are relevant."},
			},
			Required:         []string{"query", "rationale"},
			PropertyOrdering: []string{"rationale", "query"},
		}, nil
	default:
		return nil, wikidocu.Errorf(wikidocu.EINVALID, "unknown schema %q", schema)
	}
}

// Decode parses a structured reply into v. Replies wrapped in a Markdown
// code fence are unwrapped first. Returns EEXTRACT if the reply is empty or
// is not valid JSON for v.
func Decode(text string, v any) error {
	text = strings.TrimSpace(text)
	if after, ok := strings.CutPrefix(text, "```"); ok {
		after = strings.TrimPrefix(after, "json")
		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(after), "```"))
	}
	if text == "" {
		return wikidocu.Errorf(wikidocu.EEXTRACT, "model returned an empty reply")
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return wikidocu.Errorf(wikidocu.EEXTRACT, "decode model reply: %v", err)
	}
	return nil
}
