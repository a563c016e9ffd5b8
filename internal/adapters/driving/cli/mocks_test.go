package cli

import (
	"bytes"
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-wiki/internal/core/services"
)

const testOrigin = "https://example.atlassian.net/wiki"

// mockSession is a scripted driving.SearchSession.
type mockSession struct {
	results   []domain.Result
	total     int
	state     domain.FetchState
	searchErr error

	query       string
	filter      domain.FilterState
	sort        domain.SortState
	loadedPages int
	loadMore    bool
}

func (m *mockSession) ID() string { return "session-1" }

func (m *mockSession) Search(_ context.Context, text string) (driving.FetchOutcome, error) {
	if m.searchErr != nil {
		return driving.FetchOutcome{}, m.searchErr
	}
	m.query = text
	return driving.FetchOutcome{Added: len(m.results), State: m.state}, nil
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
	return driving.FetchOutcome{State: m.state}, nil
}

func (m *mockSession) LoadMore(_ context.Context, pages int) (driving.FetchOutcome, error) {
	m.loadMore = true
	m.loadedPages = pages
	return driving.FetchOutcome{State: m.state}, nil
}

func (m *mockSession) Display() []domain.Result { return m.results }

func (m *mockSession) Forest() []*domain.TreeNode {
	return services.NewTreeBuilder().Build(m.results, nil)
}

func (m *mockSession) SetCollapsed(string, bool)   {}
func (m *mockSession) ToggleCollapsed(string) bool { return false }

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
		Forest:    m.Forest(),
	}
}

// mockSummaryService is an in-memory driving.SummaryService.
type mockSummaryService struct {
	entries      map[domain.SummaryKey]domain.SummaryEntry
	conversation []domain.Message
	answer       string
	err          error

	generated   int
	regenerated int
	cleared     bool
	asked       string
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
		SummaryText: "Generated summary.", Model: "mock-model",
		StoredAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
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
	m.asked = question
	return m.answer, m.err
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
	return nil
}

func (m *mockSummaryService) Available() bool { return true }

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings    domain.AppSettings
	set         map[string]string
	setErr      error
	validateErr error
	username    string
	token       string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), set: make(map[string]string)}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetWikiToken(username, token string) error {
	m.username, m.token = username, token
	return nil
}

func (m *mockSettingsService) Validate() error                 { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) Keys() []string                  { return []string{"llm.provider", "wiki.base_url"} }

// testEnv holds the mocks installed by setupTestServices.
type testEnv struct {
	session  *mockSession
	summary  *mockSummaryService
	settings *mockSettingsService
	stats    domain.CacheStats
}

// setupTestServices installs mock services and returns a cleanup function.
func setupTestServices() (*testEnv, func()) {
	env := &testEnv{
		session:  &mockSession{},
		summary:  newMockSummaryService(),
		settings: newMockSettingsService(),
	}
	SetServices(&Services{
		Settings:   env.settings,
		NewSession: func() driving.SearchSession { return env.session },
		Summary:    env.summary,
		Stats: func(context.Context) (domain.CacheStats, error) {
			return env.stats, nil
		},
		Origin: testOrigin,
	})
	resetFlags()
	return env, func() {
		SetServices(nil)
		resetFlags()
	}
}

// resetFlags restores command flags to their defaults between executions.
func resetFlags() {
	searchSpace, searchContributor, searchSince, searchType = "", "", "", ""
	searchFilter, searchSort, searchOrder = "", "", ""
	searchPages, searchAll, searchTree, searchJSON = 1, false, false, false
	summaryTitle, summaryRegenerate, summaryJSON, askTitle = "", false, false, ""
	cacheClearYes = false
	tokenUsername = ""
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	return executeWithInput("", args...)
}

func executeWithInput(input string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewBufferString(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetHelpFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetHelpFlags clears --help left set on the shared command tree by a
// previous execute call.
func resetHelpFlags(cmd *cobra.Command) {
	if f := cmd.Flags().Lookup("help"); f != nil {
		_ = f.Value.Set("false")
		f.Changed = false
	}
	for _, c := range cmd.Commands() {
		resetHelpFlags(c)
	}
}

func sampleResults() []domain.Result {
	return []domain.Result{
		{
			ID: "101", Title: "Deploy runbook", Type: domain.ContentTypePage,
			Space:      domain.Space{Key: "ENG", Name: "Engineering"},
			Creator:    domain.Person{Key: "u1", DisplayName: "Ada"},
			ModifiedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			Ancestors:  []domain.Ancestor{{ID: "1", Title: "Engineering"}, {ID: "2", Title: "Runbooks"}},
			WebPath:    "/spaces/ENG/pages/101",
		},
		{
			ID: "102", Title: "Rollback runbook", Type: domain.ContentTypePage,
			Ancestors: []domain.Ancestor{{ID: "1", Title: "Engineering"}, {ID: "2", Title: "Runbooks"}},
		},
	}
}
