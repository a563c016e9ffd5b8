package search

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-wiki/internal/core/services"
)

const testOrigin = "https://wiki.example.com"

// mockSession serves scripted pages and keeps collapse state like the real session.
type mockSession struct {
	pages     [][]domain.Result
	total     int
	searchErr error
	pageErr   error

	query     string
	next      int
	results   []domain.Result
	filter    domain.FilterState
	sort      domain.SortState
	collapsed services.CollapseSet
	nextCalls int
}

func newMockSession(pages ...[]domain.Result) *mockSession {
	total := 0
	for _, p := range pages {
		total += len(p)
	}
	return &mockSession{pages: pages, total: total, collapsed: services.NewCollapseSet()}
}

func (m *mockSession) ID() string { return "session-1" }

func (m *mockSession) Search(_ context.Context, text string) (driving.FetchOutcome, error) {
	if m.searchErr != nil {
		return driving.FetchOutcome{}, m.searchErr
	}
	m.query = text
	m.results = nil
	m.next = 0
	return m.fetch(), nil
}

func (m *mockSession) fetch() driving.FetchOutcome {
	if m.next >= len(m.pages) {
		return driving.FetchOutcome{State: domain.FetchExhausted, Skipped: true}
	}
	page := m.pages[m.next]
	m.next++
	m.results = append(m.results, page...)
	state := domain.FetchIdle
	if m.next >= len(m.pages) {
		state = domain.FetchExhausted
	}
	return driving.FetchOutcome{Returned: len(page), Added: len(page), State: state}
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
	return driving.FetchOutcome{Skipped: true}, nil
}

func (m *mockSession) SetSort(s domain.SortState) { m.sort = s }

func (m *mockSession) ToggleSort(c domain.SortColumn) domain.SortState {
	m.sort = m.sort.Toggle(c)
	return m.sort
}

func (m *mockSession) FetchNextPage(context.Context) (driving.FetchOutcome, error) {
	m.nextCalls++
	if m.pageErr != nil {
		return driving.FetchOutcome{}, m.pageErr
	}
	return m.fetch(), nil
}

func (m *mockSession) LoadMore(ctx context.Context, _ int) (driving.FetchOutcome, error) {
	return m.FetchNextPage(ctx)
}

func (m *mockSession) Display() []domain.Result { return m.results }

func (m *mockSession) Forest() []*domain.TreeNode {
	return services.NewTreeBuilder().Build(m.results, m.collapsed)
}

func (m *mockSession) SetCollapsed(id string, collapsed bool) { m.collapsed.Set(id, collapsed) }

func (m *mockSession) ToggleCollapsed(id string) bool { return m.collapsed.Toggle(id) }

func (m *mockSession) Snapshot() driving.SessionSnapshot {
	return driving.SessionSnapshot{
		SessionID: m.ID(),
		Query:     m.query,
		Filter:    m.filter,
		Sort:      m.sort,
		Loaded:    len(m.results),
		Total:     m.total,
		Display:   m.results,
	}
}

// mockSummaryService reports a fixed set of cached content IDs.
type mockSummaryService struct {
	driving.SummaryService
	cached map[string]bool
}

func (m *mockSummaryService) CacheStatus(_ context.Context, keys []domain.SummaryKey) map[domain.SummaryKey]bool {
	out := make(map[domain.SummaryKey]bool, len(keys))
	for _, k := range keys {
		out[k] = m.cached[k.ContentID] && k.Origin == testOrigin
	}
	return out
}

func firstPage() []domain.Result {
	eng := []domain.Ancestor{{ID: "10", Title: "Engineering"}}
	return []domain.Result{
		{ID: "1", Title: "Deploy Runbook", Type: domain.ContentTypePage, Ancestors: eng,
			ModifiedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "2", Title: "Rollback Guide", Type: domain.ContentTypePage, Ancestors: eng},
	}
}

func secondPage() []domain.Result {
	return []domain.Result{
		{ID: "3", Title: "Release Notes", Type: domain.ContentTypeBlogPost},
	}
}

// drain runs cmd and feeds every session message it produces back into v.
func drain(t *testing.T, v *View, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var seen []tea.Msg
	queue := []tea.Cmd{cmd}
	for i := 0; len(queue) > 0; i++ {
		if i > 50 {
			t.Fatal("command loop did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		seen = append(seen, msg)
		switch msg.(type) {
		case messages.SearchCompleted, messages.PageLoaded, messages.FilterApplied,
			messages.CacheStatusLoaded, messages.ErrorOccurred:
			var next tea.Cmd
			v, next = v.Update(msg)
			queue = append(queue, next)
		}
	}
	return seen
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
	spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	downKey  = tea.KeyMsg{Type: tea.KeyDown}
)
