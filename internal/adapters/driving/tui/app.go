package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/views/summary"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the keybindings shared by all views.
	keymap *keymap.KeyMap

	// searchView is the query input and result tree.
	searchView *search.View

	// summaryView shows the summary and conversation of one result.
	summaryView *summary.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is restored when the help view is closed.
	previousView messages.ViewType

	// initialQuery is searched for as soon as the program starts.
	initialQuery string

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		searchView:  search.NewView(s, km, ports.Session, ports.Summary, ports.Origin),
		summaryView: summary.NewView(s, km, ports.Summary, ports.Origin),
		currentView: messages.ViewSearch,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.summaryView.WithContext(ctx)
	return a
}

// WithQuery runs query as soon as the program starts.
func (a *App) WithQuery(query string) *App {
	a.initialQuery = query
	a.searchView.SetQuery(query)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("sercha-wiki"),
		a.searchView.Init(),
	}
	if a.initialQuery != "" {
		cmds = append(cmds, a.searchView.Submit(a.initialQuery))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.SearchCompleted, messages.PageLoaded,
		messages.FilterApplied, messages.CacheStatusLoaded:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.SummaryRequested:
		a.currentView = messages.ViewSummary
		return a, a.summaryView.Open(msg.Result, msg.Regenerate)

	case messages.SummaryLoaded:
		if msg.Err == nil && msg.View != nil {
			a.searchView.MarkCached(msg.Key.ContentID, true)
		}
		a.summaryView, cmd = a.summaryView.Update(msg)
		return a, cmd

	case messages.ConversationLoaded, messages.AnswerReceived, spinner.TickMsg:
		a.summaryView, cmd = a.summaryView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewSearch:
			a.searchView, cmd = a.searchView.Update(msg)
		case messages.ViewSummary:
			a.summaryView, cmd = a.summaryView.Update(msg)
		case messages.ViewHelp:
			// Help view doesn't handle error messages
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to active view
	switch a.currentView {
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewSummary:
		a.summaryView, cmd = a.summaryView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}
	return a, cmd
}

// handleKeyMsg routes key presses to the active view.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit with ctrl+c
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc || keymap.Matches(msg.String(), a.keymap.Help) {
			a.currentView = a.previousView
			return a, nil
		}
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
		return a, nil

	case messages.ViewSearch:
		if !a.searchView.InputFocused() {
			if cmd, handled := a.handleGlobalKey(msg); handled {
				return a, cmd
			}
		}
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.ViewSummary:
		if !a.summaryView.Asking() {
			if cmd, handled := a.handleGlobalKey(msg); handled {
				return a, cmd
			}
		}
		a.summaryView, cmd = a.summaryView.Update(msg)
		return a, cmd
	}
	return a, nil
}

// handleGlobalKey handles quit and help outside text inputs.
func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case keymap.Matches(msg.String(), a.keymap.Quit):
		return tea.Quit, true
	case keymap.Matches(msg.String(), a.keymap.Help):
		a.previousView = a.currentView
		a.currentView = messages.ViewHelp
		return nil, true
	}
	return nil, false
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewSummary:
		return a.summaryView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.searchView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Search:
  (type)      Enter search query
  enter       Submit search
  esc         Back to results

Results:
  j/k, ↑/↓    Navigate the tree (more results load near the end)
  space       Collapse or expand
  enter/s     Open summary
  r           Regenerate summary
  /           Filter titles
  o           Next sort column
  O           Ascending, descending, unsorted
  m           Load next page
  n           New search
  q           Quit

Summary:
  ↑/↓         Scroll
  a           Ask a follow-up question
  r           Regenerate
  c           Clear conversation
  esc         Back to results

[esc] back`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Query returns the submitted search query.
func (a *App) Query() string {
	return a.searchView.Query()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.searchView.SetDimensions(width, height)
	a.summaryView.SetDimensions(width, height)
}
