// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Search triggers a search.
	Search key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Select opens the summary of the selected result.
	Select key.Binding

	// NewSearch starts a new search from results view.
	NewSearch key.Binding

	// Toggle collapses or expands the selected tree node.
	Toggle key.Binding

	// Filter edits the title filter.
	Filter key.Binding

	// SortColumn cycles the sort column.
	SortColumn key.Binding

	// SortOrder cycles the order of the current sort column.
	SortOrder key.Binding

	// Summarise opens the summary of the selected result.
	Summarise key.Binding

	// Regenerate discards a cached summary and generates a new one.
	Regenerate key.Binding

	// Ask starts a follow-up question in the summary view.
	Ask key.Binding

	// LoadMore fetches the next page of results.
	LoadMore key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Search: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "summary"),
		),
		NewSearch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new search"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "collapse"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		SortColumn: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sort column"),
		),
		SortOrder: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "sort order"),
		),
		Summarise: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "summarise"),
		),
		Regenerate: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "regenerate"),
		),
		Ask: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "ask"),
		),
		LoadMore: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "more"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// ResultsHelp returns keybindings for the result tree.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Summarise, k.Filter, k.SortColumn, k.NewSearch}
}

// SummaryHelp returns keybindings for the summary view.
func (k *KeyMap) SummaryHelp() []key.Binding {
	return []key.Binding{k.Ask, k.Regenerate, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.LoadMore},
		{k.Search, k.NewSearch, k.Filter, k.SortColumn, k.SortOrder},
		{k.Select, k.Summarise, k.Regenerate, k.Ask},
		{k.Back, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
