package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore is an in-memory implementation of driven.ConversationStore.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[domain.SummaryKey]domain.ConversationEntry
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[domain.SummaryKey]domain.ConversationEntry),
	}
}

// GetConversation retrieves a conversation by key.
func (s *ConversationStore) GetConversation(_ context.Context, key domain.SummaryKey) (*domain.ConversationEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.conversations[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	entry.Messages = append([]domain.Message(nil), entry.Messages...)
	return &entry, nil
}

// PutConversation stores or replaces a conversation.
func (s *ConversationStore) PutConversation(_ context.Context, entry *domain.ConversationEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *entry
	stored.Messages = append([]domain.Message(nil), entry.Messages...)
	s.conversations[entry.Key()] = stored
	return nil
}

// DeleteConversation removes a conversation.
func (s *ConversationStore) DeleteConversation(_ context.Context, key domain.SummaryKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, key)
	return nil
}

// ClearConversations removes every conversation.
func (s *ConversationStore) ClearConversations(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = make(map[domain.SummaryKey]domain.ConversationEntry)
	return nil
}
