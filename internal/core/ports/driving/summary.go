package driving

import (
	"context"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

// SummaryService provides AI summaries and follow-up questions about wiki content.
type SummaryService interface {
	// Summarise returns the cached summary for key, generating it on a miss.
	Summarise(ctx context.Context, key domain.SummaryKey, title string) (*SummaryView, error)

	// Regenerate discards the cached summary and conversation and generates a new one.
	Regenerate(ctx context.Context, key domain.SummaryKey, title string) (*SummaryView, error)

	// Ask sends a follow-up question and returns the answer.
	Ask(ctx context.Context, key domain.SummaryKey, title, question string) (string, error)

	// Conversation returns the user-visible follow-up messages.
	Conversation(ctx context.Context, key domain.SummaryKey) ([]domain.Message, error)

	// ClearConversation drops follow-up messages, keeping the summary.
	ClearConversation(ctx context.Context, key domain.SummaryKey) error

	// CacheStatus reports which keys already have a summary.
	CacheStatus(ctx context.Context, keys []domain.SummaryKey) map[domain.SummaryKey]bool

	// ClearAll empties every cached summary and conversation.
	ClearAll(ctx context.Context) error

	// Available reports whether an LLM is configured.
	Available() bool
}

// SummaryView is a summary together with where it came from.
type SummaryView struct {
	Entry domain.SummaryEntry `json:"entry"`

	// Cached is true if no model call was made.
	Cached bool `json:"cached"`
}
