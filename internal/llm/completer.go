// ABOUTME: Completer is the chat capability shared by every LLM backend
// ABOUTME: Classifier code depends on this interface, never on a concrete client
package llm

import "context"

// Completer runs a single-turn chat completion
type Completer interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

var (
	_ Completer = (*OpenAIClient)(nil)
	_ Completer = (*ClaudeClient)(nil)
)
