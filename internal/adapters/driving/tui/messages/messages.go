// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
)

// SearchCompleted carries the outcome of a new search back to the model.
type SearchCompleted struct {
	Query   string
	Outcome driving.FetchOutcome
	Err     error
}

// PageLoaded carries the outcome of a next-page request.
type PageLoaded struct {
	Outcome driving.FetchOutcome
	Err     error
}

// FilterApplied carries the outcome of a filter change.
type FilterApplied struct {
	Filter  domain.FilterState
	Outcome driving.FetchOutcome
	Err     error
}

// CacheStatusLoaded reports which results have a cached summary.
type CacheStatusLoaded struct {
	Cached map[string]bool
}

// SummaryRequested asks the app to open the summary view for a result.
type SummaryRequested struct {
	Result     domain.Result
	Regenerate bool
}

// SummaryLoaded carries a generated or cached summary.
type SummaryLoaded struct {
	Key  domain.SummaryKey
	View *driving.SummaryView
	Err  error
}

// ConversationLoaded carries the follow-up messages for a summary.
type ConversationLoaded struct {
	Key      domain.SummaryKey
	Messages []domain.Message
	Err      error
}

// AnswerReceived carries the answer to a follow-up question.
type AnswerReceived struct {
	Key      domain.SummaryKey
	Question string
	Answer   string
	Err      error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the search input and result tree.
	ViewSearch ViewType = iota
	// ViewSummary shows a summary and its conversation.
	ViewSummary
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewSummary:
		return "summary"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
