package gemini

import (
	"context"

	"github.com/fwojciec/wikidocu"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ wikidocu.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens offline with the Gemini tokenizer, so evidence
// and prompts can be sized without an API call.
type TokenCounter struct {
	model string
	tok   *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a TokenCounter for model. Models the local
// tokenizer does not know are counted with DefaultModel's vocabulary.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil && model != DefaultModel {
		model = DefaultModel
		tok, err = tokenizer.NewLocalTokenizer(model)
	}
	if err != nil {
		return nil, err
	}
	return &TokenCounter{model: model, tok: tok}, nil
}

// Model returns the model whose vocabulary is used for counting.
func (tc *TokenCounter) Model() string {
	return tc.model
}

// CountTokens counts the tokens of text sent as a single user message.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	return tc.count([]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
}

// CountRequest counts the tokens a completion request sends, system
// instruction included.
func (tc *TokenCounter) CountRequest(ctx context.Context, req *wikidocu.CompletionRequest) (int, error) {
	if err := validateRequest(req); err != nil {
		return 0, err
	}
	return tc.count(BuildContents(req), BuildConfig(req))
}

func (tc *TokenCounter) count(contents []*genai.Content, config *genai.GenerateContentConfig) (int, error) {
	var cfg *genai.CountTokensConfig
	if config != nil && config.SystemInstruction != nil {
		cfg = &genai.CountTokensConfig{SystemInstruction: config.SystemInstruction}
	}
	result, err := tc.tok.CountTokens(contents, cfg)
	if err != nil {
		return 0, wikidocu.Errorf(wikidocu.EINTERNAL, "count tokens: %v", err)
	}
	return int(result.TotalTokens), nil
}
