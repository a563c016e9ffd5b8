package api

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
)

const testOrigin = "https://example.atlassian.net/wiki"

type mockSession struct {
	results   []domain.Result
	forest    []*domain.TreeNode
	total     int
	state     domain.FetchState
	searchErr error

	query       string
	filter      domain.FilterState
	sort        domain.SortState
	nextCalls   int
	loadedPages int
	toggled     map[string]bool
}

func (m *mockSession) ID() string { return "session-1" }

func (m *mockSession) Search(_ context.Context, text string) (driving.FetchOutcome, error) {
	if m.searchErr != nil {
		return driving.FetchOutcome{}, m.searchErr
	}
	m.query = text
	return driving.FetchOutcome{Returned: len(m.results), Added: len(m.results), State: m.state}, nil
}

func (m *mockSession) SearchWithFilter(ctx context.Context, text string, f domain.FilterState) (driving.FetchOutcome, error) {
	out, err := m.Search(ctx, text)
	if err == nil {
		m.filter = f
	}
	return out, err
}

func (m *mockSession) SetFilter(_ context.Context, f domain.FilterState) (driving.FetchOutcome, error) {
	m.filter = f
	return driving.FetchOutcome{Skipped: true, State: m.state}, nil
}

func (m *mockSession) SetSort(s domain.SortState) { m.sort = s }

func (m *mockSession) ToggleSort(c domain.SortColumn) domain.SortState {
	m.sort = m.sort.Toggle(c)
	return m.sort
}

func (m *mockSession) FetchNextPage(context.Context) (driving.FetchOutcome, error) {
	m.nextCalls++
	return driving.FetchOutcome{Returned: 1, Added: 1, State: m.state}, nil
}

func (m *mockSession) LoadMore(_ context.Context, pages int) (driving.FetchOutcome, error) {
	m.loadedPages = pages
	return driving.FetchOutcome{State: m.state}, nil
}

func (m *mockSession) Display() []domain.Result   { return m.results }
func (m *mockSession) Forest() []*domain.TreeNode { return m.forest }

func (m *mockSession) SetCollapsed(id string, collapsed bool) {
	if m.toggled == nil {
		m.toggled = make(map[string]bool)
	}
	m.toggled[id] = collapsed
}

func (m *mockSession) ToggleCollapsed(id string) bool {
	m.SetCollapsed(id, !m.toggled[id])
	return m.toggled[id]
}

func (m *mockSession) Snapshot() driving.SessionSnapshot {
	return driving.SessionSnapshot{
		SessionID: m.ID(),
		Query:     m.query,
		Filter:    m.filter,
		Sort:      m.sort,
		State:     m.state.String(),
		Loaded:    len(m.results),
		Total:     m.total,
		Display:   m.results,
		Forest:    m.forest,
	}
}

type mockSummaryService struct {
	entries      map[domain.SummaryKey]domain.SummaryEntry
	conversation []domain.Message
	answer       string
	err          error

	generated   int
	regenerated int
	cleared     bool
}

func newMockSummaryService() *mockSummaryService {
	return &mockSummaryService{entries: make(map[domain.SummaryKey]domain.SummaryEntry)}
}

func (m *mockSummaryService) Summarise(_ context.Context, key domain.SummaryKey, title string) (*driving.SummaryView, error) {
	if m.err != nil {
		return nil, m.err
	}
	if e, ok := m.entries[key]; ok {
		return &driving.SummaryView{Entry: e, Cached: true}, nil
	}
	m.generated++
	e := domain.SummaryEntry{
		ContentID: key.ContentID, Origin: key.Origin, Title: title,
		SummaryText: "Generated summary.", StoredAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	m.entries[key] = e
	return &driving.SummaryView{Entry: e}, nil
}

func (m *mockSummaryService) Regenerate(ctx context.Context, key domain.SummaryKey, title string) (*driving.SummaryView, error) {
	m.regenerated++
	delete(m.entries, key)
	return m.Summarise(ctx, key, title)
}

func (m *mockSummaryService) Ask(_ context.Context, _ domain.SummaryKey, _, question string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.conversation = append(m.conversation,
		domain.Message{Role: domain.RoleUser, Content: question},
		domain.Message{Role: domain.RoleAssistant, Content: m.answer})
	return m.answer, nil
}

func (m *mockSummaryService) Conversation(context.Context, domain.SummaryKey) ([]domain.Message, error) {
	return m.conversation, nil
}

func (m *mockSummaryService) ClearConversation(context.Context, domain.SummaryKey) error {
	m.conversation = nil
	return nil
}

func (m *mockSummaryService) CacheStatus(_ context.Context, keys []domain.SummaryKey) map[domain.SummaryKey]bool {
	out := make(map[domain.SummaryKey]bool, len(keys))
	for _, k := range keys {
		_, out[k] = m.entries[k]
	}
	return out
}

func (m *mockSummaryService) ClearAll(context.Context) error {
	m.cleared = true
	m.entries = make(map[domain.SummaryKey]domain.SummaryEntry)
	m.conversation = nil
	return nil
}

func (m *mockSummaryService) Available() bool { return true }
