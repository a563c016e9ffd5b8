package driving

import (
	"context"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

// SearchSession is one user's view over a paginated wiki search.
// It owns the accumulated results, the active filter and sort, and the
// collapse state of the result tree.
type SearchSession interface {
	// ID returns the session identifier.
	ID() string

	// Search starts a new query and loads the first page.
	// Blank text is rejected with domain.ErrInvalidInput.
	Search(ctx context.Context, text string) (FetchOutcome, error)

	// SearchWithFilter starts a new query under filter and loads the first
	// page. Blank text is rejected before the filter or results change.
	SearchWithFilter(ctx context.Context, text string, filter domain.FilterState) (FetchOutcome, error)

	// SetFilter applies a filter. Changes to space, contributor, date or type
	// discard the loaded results and refetch; text-only changes re-derive locally.
	SetFilter(ctx context.Context, filter domain.FilterState) (FetchOutcome, error)

	// SetSort applies a sort. Sorting never refetches.
	SetSort(sort domain.SortState)

	// ToggleSort cycles the sort on column.
	ToggleSort(column domain.SortColumn) domain.SortState

	// FetchNextPage loads the next page. It is a no-op while a page is in flight
	// or when every page has been loaded.
	FetchNextPage(ctx context.Context) (FetchOutcome, error)

	// LoadMore fetches up to pages further pages, stopping early once every
	// page is loaded. pages <= 0 loads until exhausted. The outcome sums
	// Returned and Added over the requests made.
	LoadMore(ctx context.Context, pages int) (FetchOutcome, error)

	// Display returns the filtered and sorted results.
	Display() []domain.Result

	// Forest returns the hierarchical view of the display list.
	Forest() []*domain.TreeNode

	// SetCollapsed records whether a tree node is collapsed.
	SetCollapsed(id string, collapsed bool)

	// ToggleCollapsed flips a node's collapse state and returns the new state.
	ToggleCollapsed(id string) bool

	// Snapshot returns the presentation state.
	Snapshot() SessionSnapshot
}

// FetchOutcome reports what a page request did.
type FetchOutcome struct {
	// Returned is the number of items the server sent.
	Returned int

	// Added is the number of new results after deduplication.
	Added int

	// State is the fetch state after the request.
	State domain.FetchState

	// Skipped is true when the call was a no-op.
	Skipped bool

	// Stale is true when the response was discarded because the query changed.
	Stale bool
}

// SessionSnapshot is the state handed to presentation adapters.
type SessionSnapshot struct {
	SessionID string             `json:"session_id"`
	Query     string             `json:"query"`
	Filter    domain.FilterState `json:"filter"`
	DateRange string             `json:"date_range,omitempty"`
	Sort      domain.SortState   `json:"sort"`
	State     string             `json:"state"`
	Loaded    int                `json:"loaded"`
	Total     int                `json:"total"`
	Display   []domain.Result    `json:"results"`
	Forest    []*domain.TreeNode `json:"tree"`
}
