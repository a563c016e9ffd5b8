package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-wiki/internal/logger"
)

// Ensure SearchSession implements the interface.
var _ driving.SearchSession = (*SearchSession)(nil)

// SearchSession holds one user's search state: the query, the accumulated
// results, the filter and sort selection, and which tree nodes are collapsed.
//
// Filters the server applies (space, contributor, date, type) reset the
// fetcher and reload from the first page. The title text filter and the
// sort are applied locally to whatever has been loaded.
type SearchSession struct {
	id      string
	builder *QueryBuilder
	fetcher *Fetcher
	engine  *FilterSortEngine
	trees   *TreeBuilder

	mu        sync.RWMutex
	text      string
	filter    domain.FilterState
	sort      domain.SortState
	collapsed CollapseSet
}

// NewSearchSession creates a session over the given search API.
func NewSearchSession(api driven.WikiSearchAPI, builder *QueryBuilder, opts FetcherOptions) *SearchSession {
	if builder == nil {
		builder = NewQueryBuilder()
	}
	return &SearchSession{
		id:        uuid.NewString(),
		builder:   builder,
		fetcher:   NewFetcher(api, opts),
		engine:    NewFilterSortEngine(),
		trees:     NewTreeBuilder(),
		collapsed: NewCollapseSet(),
	}
}

// ID returns the session identifier.
func (s *SearchSession) ID() string {
	return s.id
}

// Search starts a new query with the current filters and loads the first page.
func (s *SearchSession) Search(ctx context.Context, text string) (driving.FetchOutcome, error) {
	return s.search(ctx, text, nil)
}

// SearchWithFilter replaces the filter and starts a new query in one step,
// so only the new query reaches the network.
func (s *SearchSession) SearchWithFilter(ctx context.Context, text string, filter domain.FilterState) (driving.FetchOutcome, error) {
	return s.search(ctx, text, &filter)
}

func (s *SearchSession) search(ctx context.Context, text string, filter *domain.FilterState) (driving.FetchOutcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return driving.FetchOutcome{}, fmt.Errorf("%w: search text is empty", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	if filter != nil {
		s.filter = *filter
	}
	s.text = text
	query := s.builder.Build(text, s.filter)
	s.fetcher.Reset(query)
	s.mu.Unlock()

	logger.Debug("session %s: search %q", s.id, query)
	return s.fetcher.FetchNextPage(ctx)
}

// SetFilter applies filter. A change to a server-side filter discards the
// loaded results and reloads; a text-only change re-derives locally.
func (s *SearchSession) SetFilter(ctx context.Context, filter domain.FilterState) (driving.FetchOutcome, error) {
	s.mu.Lock()
	refetch := s.filter.NarrowsRemote(filter) && s.text != ""
	s.filter = filter
	var query string
	if refetch {
		query = s.builder.Build(s.text, filter)
		s.fetcher.Reset(query)
	}
	s.mu.Unlock()

	if !refetch {
		return driving.FetchOutcome{State: s.fetcher.State(), Skipped: true}, nil
	}
	logger.Debug("session %s: filter changed, refetching %q", s.id, query)
	return s.fetcher.FetchNextPage(ctx)
}

// Filter returns the active filter.
func (s *SearchSession) Filter() domain.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SetSort applies a sort.
func (s *SearchSession) SetSort(sort domain.SortState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = sort
}

// ToggleSort cycles the sort on column and returns the new state.
func (s *SearchSession) ToggleSort(column domain.SortColumn) domain.SortState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = s.sort.Toggle(column)
	return s.sort
}

// Sort returns the active sort.
func (s *SearchSession) Sort() domain.SortState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sort
}

// FetchNextPage loads the next page of results.
func (s *SearchSession) FetchNextPage(ctx context.Context) (driving.FetchOutcome, error) {
	return s.fetcher.FetchNextPage(ctx)
}

// LoadMore fetches up to pages further pages.
func (s *SearchSession) LoadMore(ctx context.Context, pages int) (driving.FetchOutcome, error) {
	total := driving.FetchOutcome{State: s.fetcher.State()}
	for i := 0; pages <= 0 || i < pages; i++ {
		if total.State == domain.FetchExhausted {
			break
		}
		out, err := s.fetcher.FetchNextPage(ctx)
		total.Returned += out.Returned
		total.Added += out.Added
		total.State = out.State
		total.Stale = out.Stale
		if err != nil {
			return total, err
		}
		if out.Skipped || out.Stale {
			total.Skipped = out.Skipped
			break
		}
	}
	return total, nil
}

// State returns the fetch state.
func (s *SearchSession) State() domain.FetchState {
	return s.fetcher.State()
}

// Display returns the loaded results after filtering and sorting.
func (s *SearchSession) Display() []domain.Result {
	s.mu.RLock()
	filter, sortState := s.filter, s.sort
	s.mu.RUnlock()
	return s.engine.Apply(s.fetcher.Results(), filter, sortState)
}

// Forest returns the result tree for the current display list.
func (s *SearchSession) Forest() []*domain.TreeNode {
	display := s.Display()
	s.mu.RLock()
	collapsed := s.collapsed.Clone()
	s.mu.RUnlock()
	return s.trees.Build(display, collapsed)
}

// SetCollapsed records whether node id is collapsed.
func (s *SearchSession) SetCollapsed(id string, collapsed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collapsed.Set(id, collapsed)
}

// ToggleCollapsed flips node id and returns its new state.
func (s *SearchSession) ToggleCollapsed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collapsed.Toggle(id)
}

// Snapshot returns the presentation state.
func (s *SearchSession) Snapshot() driving.SessionSnapshot {
	display := s.Display()
	s.mu.RLock()
	collapsed := s.collapsed.Clone()
	snap := driving.SessionSnapshot{
		SessionID: s.id,
		Query:     s.text,
		Filter:    s.filter,
		DateRange: s.filter.DateRange.String(),
		Sort:      s.sort,
	}
	s.mu.RUnlock()

	snap.State = s.fetcher.State().String()
	snap.Loaded = len(s.fetcher.Results())
	snap.Total = s.fetcher.Total()
	snap.Display = display
	snap.Forest = s.trees.Build(display, collapsed)
	return snap
}
