package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driven"
)

// Ensure SummaryStore implements the interface.
var _ driven.SummaryStore = (*SummaryStore)(nil)

// SummaryStore is an in-memory implementation of driven.SummaryStore.
type SummaryStore struct {
	mu        sync.RWMutex
	summaries map[domain.SummaryKey]domain.SummaryEntry
}

// NewSummaryStore creates a new in-memory summary store.
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{
		summaries: make(map[domain.SummaryKey]domain.SummaryEntry),
	}
}

// GetSummary retrieves a summary by key.
func (s *SummaryStore) GetSummary(_ context.Context, key domain.SummaryKey) (*domain.SummaryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.summaries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// PutSummary stores or replaces a summary.
func (s *SummaryStore) PutSummary(_ context.Context, entry *domain.SummaryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[entry.Key()] = *entry
	return nil
}

// DeleteSummary removes a summary.
func (s *SummaryStore) DeleteSummary(_ context.Context, key domain.SummaryKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.summaries, key)
	return nil
}

// ClearSummaries removes every summary.
func (s *SummaryStore) ClearSummaries(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = make(map[domain.SummaryKey]domain.SummaryEntry)
	return nil
}

// Len returns the number of stored summaries.
func (s *SummaryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.summaries)
}
