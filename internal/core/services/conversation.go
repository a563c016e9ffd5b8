package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-wiki/internal/logger"
)

// ConversationService keeps the follow-up conversation for each piece of
// content. Every conversation starts with a seed of domain.SeedLength
// messages that are sent to the model but hidden from the user.
//
// Conversations are held in memory and written through to an optional store
// on every change. Store failures degrade the service to memory-only.
type ConversationService struct {
	store driven.ConversationStore
	now   func() time.Time

	mu       sync.Mutex
	memory   map[domain.SummaryKey]domain.ConversationEntry
	degraded bool
}

// NewConversationService creates a conversation service. store may be nil.
func NewConversationService(store driven.ConversationStore) *ConversationService {
	return &ConversationService{
		store:  store,
		now:    time.Now,
		memory: make(map[domain.SummaryKey]domain.ConversationEntry),
	}
}

// Get returns the conversation for key, or domain.ErrNotFound.
func (s *ConversationService) Get(ctx context.Context, key domain.SummaryKey) (*domain.ConversationEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.load(ctx, key)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneConversation(entry), nil
}

// GetOrInit returns the conversation for key, creating it from seed if absent.
func (s *ConversationService) GetOrInit(ctx context.Context, key domain.SummaryKey, seed []domain.Message) (*domain.ConversationEntry, error) {
	if err := validateSeed(seed); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.load(ctx, key); ok {
		return cloneConversation(entry), nil
	}
	entry := s.newEntry(key, seed)
	s.save(ctx, entry)
	return cloneConversation(entry), nil
}

// Append adds messages to an existing conversation and persists the full sequence.
func (s *ConversationService) Append(ctx context.Context, key domain.SummaryKey, messages ...domain.Message) (*domain.ConversationEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.load(ctx, key)
	if !ok {
		return nil, fmt.Errorf("append to conversation %s: %w", key, domain.ErrNotFound)
	}
	entry.Messages = append(append([]domain.Message(nil), entry.Messages...), messages...)
	entry.StoredAt = s.now()
	s.save(ctx, entry)
	return cloneConversation(entry), nil
}

// Reset truncates the conversation back to seed, discarding follow-ups.
func (s *ConversationService) Reset(ctx context.Context, key domain.SummaryKey, seed []domain.Message) (*domain.ConversationEntry, error) {
	return s.Replace(ctx, key, seed)
}

// Replace overwrites the conversation with a fresh seed.
func (s *ConversationService) Replace(ctx context.Context, key domain.SummaryKey, seed []domain.Message) (*domain.ConversationEntry, error) {
	if err := validateSeed(seed); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.newEntry(key, seed)
	s.save(ctx, entry)
	return cloneConversation(entry), nil
}

// Delete removes the conversation for key.
func (s *ConversationService) Delete(ctx context.Context, key domain.SummaryKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.memory, key)
	if s.store != nil && !s.degraded {
		if err := s.store.DeleteConversation(ctx, key); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.degrade("delete", err)
		}
	}
}

// ClearAll removes every conversation.
func (s *ConversationService) ClearAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory = make(map[domain.SummaryKey]domain.ConversationEntry)
	if s.store != nil && !s.degraded {
		if err := s.store.ClearConversations(ctx); err != nil {
			s.degrade("clear", err)
		}
	}
}

// load must be called with s.mu held.
func (s *ConversationService) load(ctx context.Context, key domain.SummaryKey) (domain.ConversationEntry, bool) {
	if entry, ok := s.memory[key]; ok {
		return entry, true
	}
	if s.store == nil || s.degraded {
		return domain.ConversationEntry{}, false
	}
	stored, err := s.store.GetConversation(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.degrade("get", err)
		}
		return domain.ConversationEntry{}, false
	}
	s.memory[key] = *stored
	return *stored, true
}

// save must be called with s.mu held.
func (s *ConversationService) save(ctx context.Context, entry domain.ConversationEntry) {
	s.memory[entry.Key()] = entry
	if s.store == nil || s.degraded {
		return
	}
	if err := s.store.PutConversation(ctx, &entry); err != nil {
		s.degrade("put", err)
	}
}

func (s *ConversationService) newEntry(key domain.SummaryKey, seed []domain.Message) domain.ConversationEntry {
	return domain.ConversationEntry{
		ContentID: key.ContentID,
		Origin:    key.Origin,
		Messages:  append([]domain.Message(nil), seed...),
		StoredAt:  s.now(),
	}
}

func (s *ConversationService) degrade(op string, err error) {
	if !s.degraded {
		logger.Warn("conversations: persistent store %s failed, continuing in memory: %v", op, err)
	}
	s.degraded = true
}

func validateSeed(seed []domain.Message) error {
	if len(seed) != domain.SeedLength {
		return fmt.Errorf("%w: conversation seed has %d messages, want %d",
			domain.ErrInvalidInput, len(seed), domain.SeedLength)
	}
	return nil
}

func cloneConversation(entry domain.ConversationEntry) *domain.ConversationEntry {
	entry.Messages = append([]domain.Message(nil), entry.Messages...)
	return &entry
}
