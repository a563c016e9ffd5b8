// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady       State = "ready"
	StateSearching   State = "searching"
	StateLoading     State = "loading"
	StateSummarising State = "summarising"
	StateSummary     State = "summary"
	StateError       State = "error"
	StateHelp        State = "help"
	StateResults     State = "results"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	state      State
	message    string
	loaded     int
	total      int
	fetchState domain.FetchState
	sort       domain.SortState
	filter     string
	width      int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is mostly passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the left side of the status bar.
func (s *Bar) renderLeft() string {
	switch s.state {
	case StateSearching:
		return s.styles.Muted.Render("Searching...")
	case StateLoading:
		return s.styles.Muted.Render(s.counts() + " · loading more...")
	case StateSummarising:
		return s.styles.Muted.Render("Summarising...")
	case StateSummary:
		if s.message != "" {
			return s.styles.Normal.Render(s.message)
		}
		return s.styles.Normal.Render("Summary")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateHelp:
		return s.styles.Normal.Render("Help")
	case StateReady, StateResults:
		if s.loaded > 0 || s.total > 0 {
			return s.styles.Normal.Render(s.details())
		}
		return s.styles.Muted.Render("Ready")
	}
	return s.styles.Muted.Render("Ready")
}

// counts renders "N results" or "N of M results".
func (s *Bar) counts() string {
	if s.total > s.loaded {
		return fmt.Sprintf("%d of %d results", s.loaded, s.total)
	}
	return fmt.Sprintf("%d results", s.loaded)
}

// details renders the counts followed by the fetch, sort and filter state.
func (s *Bar) details() string {
	parts := []string{s.counts()}
	if s.fetchState == domain.FetchExhausted {
		parts = append(parts, "all loaded")
	}
	if s.sort.Active() {
		parts = append(parts, fmt.Sprintf("sort: %s %s", s.sort.Column, s.sort.Order))
	}
	if s.filter != "" {
		parts = append(parts, fmt.Sprintf("filter: %q", s.filter))
	}
	return strings.Join(parts, " · ")
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	var bindings []key.Binding

	switch {
	case s.state == StateResults && s.loaded > 0:
		bindings = s.keymap.ResultsHelp()
	case s.state == StateSummary:
		bindings = s.keymap.SummaryHelp()
	default:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetCounts sets the loaded and total result counts.
func (s *Bar) SetCounts(loaded, total int) {
	s.loaded = loaded
	s.total = total
}

// Loaded returns the number of loaded results.
func (s *Bar) Loaded() int {
	return s.loaded
}

// Total returns the total number of matches reported by the wiki.
func (s *Bar) Total() int {
	return s.total
}

// SetFetchState sets the pagination state.
func (s *Bar) SetFetchState(state domain.FetchState) {
	s.fetchState = state
}

// SetSort sets the active sort.
func (s *Bar) SetSort(sort domain.SortState) {
	s.sort = sort
}

// SetFilter sets the active title filter.
func (s *Bar) SetFilter(text string) {
	s.filter = text
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.loaded = 0
	s.total = 0
	s.fetchState = domain.FetchIdle
	s.sort = domain.SortState{}
	s.filter = ""
}
