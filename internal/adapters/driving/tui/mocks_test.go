package tui

import (
	"context"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-wiki/internal/core/services"
)

const testOrigin = "https://wiki.example.com"

// mockSession returns one fixed page of results.
type mockSession struct {
	results   []domain.Result
	searchErr error
	query     string
	loaded    []domain.Result
}

func (m *mockSession) ID() string { return "session-1" }

func (m *mockSession) Search(_ context.Context, text string) (driving.FetchOutcome, error) {
	if m.searchErr != nil {
		return driving.FetchOutcome{}, m.searchErr
	}
	m.query = text
	m.loaded = m.results
	return driving.FetchOutcome{Added: len(m.results), State: domain.FetchExhausted}, nil
}

func (m *mockSession) SearchWithFilter(ctx context.Context, text string, _ domain.FilterState) (driving.FetchOutcome, error) {
	return m.Search(ctx, text)
}

func (m *mockSession) SetFilter(context.Context, domain.FilterState) (driving.FetchOutcome, error) {
	return driving.FetchOutcome{Skipped: true}, nil
}

func (m *mockSession) SetSort(domain.SortState) {}

func (m *mockSession) ToggleSort(domain.SortColumn) domain.SortState { return domain.SortState{} }

func (m *mockSession) FetchNextPage(context.Context) (driving.FetchOutcome, error) {
	return driving.FetchOutcome{State: domain.FetchExhausted, Skipped: true}, nil
}

func (m *mockSession) LoadMore(ctx context.Context, _ int) (driving.FetchOutcome, error) {
	return m.FetchNextPage(ctx)
}

func (m *mockSession) Display() []domain.Result { return m.loaded }

func (m *mockSession) Forest() []*domain.TreeNode {
	return services.NewTreeBuilder().Build(m.loaded, services.NewCollapseSet())
}

func (m *mockSession) SetCollapsed(string, bool)   {}
func (m *mockSession) ToggleCollapsed(string) bool { return false }

func (m *mockSession) Snapshot() driving.SessionSnapshot {
	return driving.SessionSnapshot{Query: m.query, Loaded: len(m.loaded), Total: len(m.results), Display: m.loaded}
}

// mockSummaryService generates a fixed summary.
type mockSummaryService struct {
	driving.SummaryService
	err error
}

func (m *mockSummaryService) Summarise(_ context.Context, key domain.SummaryKey, title string) (*driving.SummaryView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &driving.SummaryView{Entry: domain.SummaryEntry{
		ContentID: key.ContentID, Origin: key.Origin, Title: title, SummaryText: "A short summary.",
	}}, nil
}

func (m *mockSummaryService) Conversation(context.Context, domain.SummaryKey) ([]domain.Message, error) {
	return nil, nil
}

func (m *mockSummaryService) CacheStatus(_ context.Context, keys []domain.SummaryKey) map[domain.SummaryKey]bool {
	return make(map[domain.SummaryKey]bool, len(keys))
}

func sampleResults() []domain.Result {
	return []domain.Result{
		{ID: "1", Title: "Deploy Runbook", Type: domain.ContentTypePage},
		{ID: "2", Title: "Rollback Guide", Type: domain.ContentTypePage},
	}
}
