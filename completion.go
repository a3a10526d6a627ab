package wikidocu

import "context"

// Role identifies the author of a conversation message.
type Role string

// Role constants.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the input to a language model call.
type CompletionRequest struct {
	// System holds the instructions for the model.
	System string

	// Messages is the conversation, oldest first. Single-shot prompts
	// are sent as one user message.
	Messages []Message
}

// Schema names a structured output shape a Completer must produce.
type Schema string

// Schema constants. Each names the Go type CompleteStructured decodes into.
const (
	// SchemaEvidenceMatches decodes into *[]EvidenceMatch.
	SchemaEvidenceMatches Schema = "evidence_matches"

	// SchemaSearchQueries decodes into *SearchQueryList.
	SchemaSearchQueries Schema = "search_queries"
)

// SearchQueryList is the structured output of query generation.
type SearchQueryList struct {
	Query     []string `json:"query"`
	Rationale string   `json:"rationale"`
}

// Completer calls a language model.
type Completer interface {
	// Complete returns the model's free-text reply.
	Complete(ctx context.Context, req *CompletionRequest) (string, error)

	// CompleteStructured constrains the reply to schema and decodes it into v.
	// Returns EEXTRACT if the reply is empty or does not decode.
	CompleteStructured(ctx context.Context, req *CompletionRequest, schema Schema, v any) error
}

// TokenCounter counts tokens for a specific model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)

	// CountRequest counts everything req sends, system instruction
	// included.
	CountRequest(ctx context.Context, req *CompletionRequest) (int, error)
}
