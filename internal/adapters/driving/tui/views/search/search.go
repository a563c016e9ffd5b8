// Package search provides the main search view for the TUI: a query input
// above the ancestor tree of results, with filtering, sorting and paging.
package search

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
)

// LoadThreshold is how close to the last row the cursor must be before the
// next page is requested.
const LoadThreshold = 5

// mode is the input focus of the view.
type mode int

const (
	modeQuery mode = iota
	modeResults
	modeFilter
)

// View represents the search view with input, result tree, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Field
	filter    *input.Field
	list      *list.TreeList
	statusbar *status.Bar

	session driving.SearchSession
	summary driving.SummaryService
	origin  string
	ctx     context.Context

	width      int
	height     int
	ready      bool
	err        error
	mode       mode
	query      string
	loading    bool
	fetchState domain.FetchState
}

// NewView creates a new search view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	session driving.SearchSession,
	summary driving.SummaryService,
	origin string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	filter := input.NewFilterInput(s)
	filter.Blur()

	return &View{
		styles:    s,
		keymap:    km,
		input:     input.NewSearchInput(s),
		filter:    filter,
		list:      list.NewTreeList(s),
		statusbar: status.NewBar(s, km),
		session:   session,
		summary:   summary,
		origin:    origin,
		ctx:       context.Background(),
		width:     80,
		height:    24,
		mode:      modeQuery,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		return v, v.handleSearchCompleted(msg)

	case messages.PageLoaded:
		return v, v.handlePageLoaded(msg)

	case messages.FilterApplied:
		return v, v.handleFilterApplied(msg)

	case messages.CacheStatusLoaded:
		v.list.SetCached(msg.Cached)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	switch v.mode {
	case modeQuery:
		v.input, cmd = v.input.Update(msg)
	case modeFilter:
		v.filter, cmd = v.filter.Update(msg)
	case modeResults:
	}
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch v.mode {
	case modeQuery:
		return v.handleQueryKey(msg)
	case modeFilter:
		return v.handleFilterKey(msg)
	case modeResults:
	}
	return v.handleResultsKey(msg)
}

// handleQueryKey handles typing a query.
func (v *View) handleQueryKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEnter:
		query := v.input.Value()
		if query == "" {
			return v, nil
		}
		return v, v.Submit(query)
	case tea.KeyEsc:
		if !v.list.IsEmpty() {
			v.focusResults()
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleFilterKey handles editing the title filter.
func (v *View) handleFilterKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEnter:
		text := v.filter.Value()
		v.focusResults()
		return v, v.applyFilter(text)
	case tea.KeyEsc:
		v.filter.SetValue(v.session.Snapshot().Filter.Text)
		v.focusResults()
		return v, nil
	}

	var cmd tea.Cmd
	v.filter, cmd = v.filter.Update(msg)
	return v, cmd
}

// handleResultsKey handles navigating the result tree.
func (v *View) handleResultsKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.Up), keymap.Matches(key, v.keymap.Down),
		key == "home", key == "end", key == "g", key == "G":
		v.list, _ = v.list.Update(msg)
		return v, v.maybeLoadMore()

	case keymap.Matches(key, v.keymap.Toggle):
		v.toggleSelected()
		return v, v.maybeLoadMore()

	case keymap.Matches(key, v.keymap.Select):
		if v.list.SelectedResult() == nil {
			v.toggleSelected()
			return v, nil
		}
		return v, v.requestSummary(false)

	case keymap.Matches(key, v.keymap.Summarise):
		return v, v.requestSummary(false)

	case keymap.Matches(key, v.keymap.Regenerate):
		return v, v.requestSummary(true)

	case keymap.Matches(key, v.keymap.Filter):
		v.mode = modeFilter
		v.filter.SetValue(v.session.Snapshot().Filter.Text)
		return v, v.filter.Focus()

	case keymap.Matches(key, v.keymap.SortColumn):
		v.cycleSortColumn()
		return v, nil

	case keymap.Matches(key, v.keymap.SortOrder):
		v.cycleSortOrder()
		return v, nil

	case keymap.Matches(key, v.keymap.LoadMore):
		return v, v.loadNextPage()

	case keymap.Matches(key, v.keymap.NewSearch):
		v.mode = modeQuery
		v.input.SetValue("")
		return v, v.input.Focus()

	case keymap.Matches(key, v.keymap.Back):
		v.mode = modeQuery
		return v, v.input.Focus()
	}

	return v, nil
}

// Submit starts a new search for query.
func (v *View) Submit(query string) tea.Cmd {
	v.query = query
	v.input.SetValue(query)
	v.err = nil
	v.loading = true
	v.list.Reset()
	v.statusbar.SetState(status.StateSearching)
	v.focusResults()
	return v.performSearch(query)
}

// performSearch executes a search and reports the outcome.
func (v *View) performSearch(query string) tea.Cmd {
	session := v.session
	ctx := v.ctx
	return func() tea.Msg {
		if session == nil {
			return messages.ErrorOccurred{Err: ErrNoSession}
		}
		outcome, err := session.Search(ctx, query)
		return messages.SearchCompleted{Query: query, Outcome: outcome, Err: err}
	}
}

// loadNextPage requests the next page unless one is in flight or the results are exhausted.
func (v *View) loadNextPage() tea.Cmd {
	if v.session == nil || v.loading || v.query == "" || v.fetchState == domain.FetchExhausted {
		return nil
	}
	v.loading = true
	v.statusbar.SetState(status.StateLoading)

	session := v.session
	ctx := v.ctx
	return func() tea.Msg {
		outcome, err := session.FetchNextPage(ctx)
		return messages.PageLoaded{Outcome: outcome, Err: err}
	}
}

// maybeLoadMore requests the next page when the cursor nears the end of the tree.
func (v *View) maybeLoadMore() tea.Cmd {
	if !v.list.NearEnd(LoadThreshold) {
		return nil
	}
	return v.loadNextPage()
}

// applyFilter sets the title filter, keeping every other filter field.
func (v *View) applyFilter(text string) tea.Cmd {
	if v.session == nil {
		return nil
	}
	filter := v.session.Snapshot().Filter
	filter.Text = text

	session := v.session
	ctx := v.ctx
	return func() tea.Msg {
		outcome, err := session.SetFilter(ctx, filter)
		return messages.FilterApplied{Filter: filter, Outcome: outcome, Err: err}
	}
}

// cycleSortColumn moves the sort to the next column, ascending.
func (v *View) cycleSortColumn() {
	if v.session == nil {
		return
	}
	current := v.session.Snapshot().Sort
	next := domain.SortColumns[0]
	if current.Active() {
		for i, col := range domain.SortColumns {
			if col == current.Column {
				next = domain.SortColumns[(i+1)%len(domain.SortColumns)]
				break
			}
		}
	}
	v.session.SetSort(domain.SortState{Column: next, Order: domain.SortAsc})
	v.refresh()
}

// cycleSortOrder steps the current column through ascending, descending and unsorted.
func (v *View) cycleSortOrder() {
	if v.session == nil {
		return
	}
	column := v.session.Snapshot().Sort.Column
	if column == "" {
		column = domain.SortColumns[0]
	}
	v.session.ToggleSort(column)
	v.refresh()
}

// toggleSelected collapses or expands the node under the cursor.
func (v *View) toggleSelected() {
	node := v.list.SelectedNode()
	if node == nil || !node.HasChildren() || v.session == nil {
		return
	}
	v.session.ToggleCollapsed(node.ID)
	v.refresh()
}

// requestSummary asks the app to open the summary of the selected result.
func (v *View) requestSummary(regenerate bool) tea.Cmd {
	result := v.list.SelectedResult()
	if result == nil {
		return nil
	}
	selected := *result
	return func() tea.Msg {
		return messages.SummaryRequested{Result: selected, Regenerate: regenerate}
	}
}

// cacheStatus reports which displayed results already have a summary.
func (v *View) cacheStatus() tea.Cmd {
	if v.summary == nil || v.session == nil {
		return nil
	}
	display := v.session.Display()
	if len(display) == 0 {
		return nil
	}

	summary := v.summary
	origin := v.origin
	ctx := v.ctx
	return func() tea.Msg {
		keys := make([]domain.SummaryKey, len(display))
		for i, r := range display {
			keys[i] = domain.SummaryKey{ContentID: r.ID, Origin: origin}
		}
		found := summary.CacheStatus(ctx, keys)
		cached := make(map[string]bool, len(found))
		for key, ok := range found {
			if ok {
				cached[key.ContentID] = true
			}
		}
		return messages.CacheStatusLoaded{Cached: cached}
	}
}

// handleSearchCompleted processes the first page of a new search.
func (v *View) handleSearchCompleted(msg messages.SearchCompleted) tea.Cmd {
	v.loading = false
	if msg.Query != v.query {
		return nil
	}
	if msg.Err != nil {
		v.setError(msg.Err)
		return nil
	}

	v.err = nil
	v.fetchState = msg.Outcome.State
	v.refresh()
	return tea.Batch(v.cacheStatus(), v.maybeLoadMore())
}

// handlePageLoaded processes a further page.
func (v *View) handlePageLoaded(msg messages.PageLoaded) tea.Cmd {
	v.loading = false
	if msg.Err != nil {
		v.setError(msg.Err)
		return nil
	}
	if msg.Outcome.Stale || msg.Outcome.Skipped {
		v.refresh()
		return nil
	}

	v.fetchState = msg.Outcome.State
	v.refresh()
	if msg.Outcome.Added == 0 {
		return v.cacheStatus()
	}
	return tea.Batch(v.cacheStatus(), v.maybeLoadMore())
}

// handleFilterApplied processes a filter change.
func (v *View) handleFilterApplied(msg messages.FilterApplied) tea.Cmd {
	if msg.Err != nil {
		v.setError(msg.Err)
		return nil
	}
	if !msg.Outcome.Skipped {
		v.fetchState = msg.Outcome.State
	}
	v.refresh()
	return v.cacheStatus()
}

// refresh re-reads the session into the tree and status bar.
func (v *View) refresh() {
	if v.session == nil {
		return
	}
	snap := v.session.Snapshot()
	v.list.SetForest(v.session.Forest())
	v.list.SetCounts(snap.Loaded, snap.Total)

	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetCounts(snap.Loaded, snap.Total)
	v.statusbar.SetFetchState(v.fetchState)
	v.statusbar.SetSort(snap.Sort)
	v.statusbar.SetFilter(snap.Filter.Text)
}

// setError records err and shows it in the status bar.
func (v *View) setError(err error) {
	if err == nil {
		return
	}
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// focusResults moves focus from the inputs to the tree.
func (v *View) focusResults() {
	v.mode = modeResults
	v.input.Blur()
	v.filter.Blur()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)

	header := v.styles.Title.Render("Sercha Wiki")
	sections = append(sections, header, "")

	sections = append(sections, v.input.View())
	if v.mode == modeFilter {
		sections = append(sections, v.filter.View())
	}
	sections = append(sections, "")

	if v.err != nil {
		errView := v.styles.Error.Render("Error: " + v.err.Error())
		sections = append(sections, errView, "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.filter.SetWidth(width)
	v.list.SetDimensions(width, height-10) // Reserve space for header, input, status
	v.statusbar.SetWidth(width)
}

// MarkCached updates the cache marker of a single result.
func (v *View) MarkCached(id string, cached bool) {
	v.list.MarkCached(id, cached)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the submitted search query.
func (v *View) Query() string {
	return v.query
}

// SetQuery sets the text in the query input.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Rows returns the visible tree rows.
func (v *View) Rows() []domain.TreeRow {
	return v.list.Rows()
}

// SelectedIndex returns the index of the selected row.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedResult returns the result under the cursor.
func (v *View) SelectedResult() *domain.Result {
	return v.list.SelectedResult()
}

// Loading reports whether a page request is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// ClearError clears the current error.
func (v *View) ClearError() {
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
}

// InputFocused returns whether a text input has focus.
func (v *View) InputFocused() bool {
	return v.mode == modeQuery || v.mode == modeFilter
}

// FilterFocused returns whether the filter input has focus.
func (v *View) FilterFocused() bool {
	return v.mode == modeFilter
}
