package ai

import "context"

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ProviderClient is the single capability every registered provider
// implements: one prompt in, one text completion out. Implementations make
// exactly one outbound HTTP call per Invoke and never retry; the copilot
// placeholder makes none.
type ProviderClient interface {
	// ID returns the provider identifier this client serves
	ID() string

	// Invoke sends the prompt to the provider and returns the raw
	// completion text. The API key is sent verbatim as the provider's
	// authentication header or query parameter and is never logged.
	Invoke(ctx context.Context, apiKey, userPrompt, systemContext string) (string, *TokenUsage, error)
}

// defaultSystemContext is used when an operation supplies no system context
const defaultSystemContext = "You are a helpful AI assistant for job applications."
