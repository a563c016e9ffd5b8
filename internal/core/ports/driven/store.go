package driven

import (
	"context"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

// SummaryStore persists AI summaries keyed by (content ID, origin).
// Get returns domain.ErrNotFound for a missing key; any other error
// means the store itself failed.
type SummaryStore interface {
	GetSummary(ctx context.Context, key domain.SummaryKey) (*domain.SummaryEntry, error)
	PutSummary(ctx context.Context, entry *domain.SummaryEntry) error
	DeleteSummary(ctx context.Context, key domain.SummaryKey) error
	ClearSummaries(ctx context.Context) error
}

// ConversationStore persists follow-up conversations keyed by (content ID, origin).
// Get returns domain.ErrNotFound for a missing key.
type ConversationStore interface {
	GetConversation(ctx context.Context, key domain.SummaryKey) (*domain.ConversationEntry, error)
	PutConversation(ctx context.Context, entry *domain.ConversationEntry) error
	DeleteConversation(ctx context.Context, key domain.SummaryKey) error
	ClearConversations(ctx context.Context) error
}
