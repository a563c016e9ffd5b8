package driven

import (
	"context"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

// LLMService provides language model operations for summaries and follow-up questions.
// This is an optional service - when nil, summary features are disabled.
//
// Implementations include:
//   - Anthropic (Claude)
//   - OpenAI and OpenAI-compatible servers (Ollama, LM Studio)
type LLMService interface {
	// Complete produces a single response to a system and user prompt.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Chat conducts a multi-turn conversation.
	Chat(ctx context.Context, messages []domain.Message, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompletionRequest is a one-shot prompt.
type CompletionRequest struct {
	// System sets the assistant's behaviour. May be empty.
	System string

	// Prompt is the user turn.
	Prompt string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
