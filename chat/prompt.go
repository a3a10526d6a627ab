package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/wikidocu"
)

// BuildQueryRequest asks for up to n search keyword phrases for the latest
// message in history.
func BuildQueryRequest(history []wikidocu.Message, n int, now time.Time) *wikidocu.CompletionRequest {
	return &wikidocu.CompletionRequest{
		System:   fmt.Sprintf(queryInstructions, n, now.Format("January 2, 2006")),
		Messages: history,
	}
}

// BuildDirectChatRequest asks for a reply from the conversation alone.
func BuildDirectChatRequest(history []wikidocu.Message) *wikidocu.CompletionRequest {
	return &wikidocu.CompletionRequest{
		System:   directChatInstructions,
		Messages: history,
	}
}

// SearchQuery combines the question and its keyword phrases into the single
// query a turn's scan runs with. Blank keywords are ignored and at most n are
// kept. Returns "" when no keyword remains.
func SearchQuery(question string, keywords []string, n int) string {
	var kept []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			kept = append(kept, k)
		}
	}
	if n > 0 && len(kept) > n {
		kept = kept[:n]
	}
	if len(kept) == 0 {
		return ""
	}
	return fmt.Sprintf("问题:%s。关键点:%s", question, strings.Join(kept, ","))
}

const queryInstructions = `You write search keywords for a tool that reads local documents and web pages line by line to find evidence.

Instructions:
- Read the conversation and focus on the user's latest message.
- If answering it requires looking something up in the documents, produce between 1 and %d short keyword phrases, each covering one distinct aspect of the question. Prefer a single phrase unless the question has several parts.
- If the latest message is small talk, a greeting, thanks, or can be answered from the conversation so far, return an empty query list.
- Do not produce near-duplicate phrases.
- The current date is %s.

Format:
- Reply with a JSON object with exactly two keys:
  - "rationale": a short explanation of why these phrases are relevant
  - "query": the list of keyword phrases`

const directChatInstructions = `You are a helpful assistant in a conversation about a set of documents. Answer the user's latest message using only the conversation so far. Do not invent document content or citations; if the conversation does not contain what is needed, say so and suggest asking a more specific question.`
