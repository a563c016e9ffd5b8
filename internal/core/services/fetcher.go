package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-wiki/internal/logger"
)

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	// PageSize is the number of results requested per page.
	PageSize int

	// RetryOnce repeats a failed request once, immediately, when the
	// failure is a retryable network error.
	RetryOnce bool
}

// Fetcher incrementally retrieves pages of search results and accumulates
// them into a deduplicated result set.
//
// At most one page request is in flight at a time. Reset bumps a generation
// counter so that a response for a superseded query is discarded on arrival.
type Fetcher struct {
	api       driven.WikiSearchAPI
	pageSize  int
	retryOnce bool

	mu         sync.Mutex
	query      string
	generation uint64
	state      domain.FetchState
	offset     int
	total      int
	results    *domain.ResultSet
}

// NewFetcher creates a fetcher for the given search API.
func NewFetcher(api driven.WikiSearchAPI, opts FetcherOptions) *Fetcher {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}
	return &Fetcher{
		api:       api,
		pageSize:  pageSize,
		retryOnce: opts.RetryOnce,
		state:     domain.FetchIdle,
		total:     -1,
		results:   domain.NewResultSet(),
	}
}

// Reset discards accumulated results and starts over with query.
// Any page request still in flight becomes stale.
func (f *Fetcher) Reset(query string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.query = query
	f.generation++
	f.state = domain.FetchIdle
	f.offset = 0
	f.total = -1
	f.results = domain.NewResultSet()
}

// FetchNextPage requests the next page and merges it into the result set.
//
// It is a no-op while a request is in flight, once every page has been
// loaded, or before any query was set. On failure the cursor and results
// are unchanged and the fetcher returns to idle so the caller may retry.
func (f *Fetcher) FetchNextPage(ctx context.Context) (driving.FetchOutcome, error) {
	f.mu.Lock()
	if f.query == "" || f.state != domain.FetchIdle {
		out := driving.FetchOutcome{State: f.state, Skipped: true}
		f.mu.Unlock()
		return out, nil
	}
	gen := f.generation
	query := f.query
	offset := f.offset
	f.state = domain.FetchFetching
	f.mu.Unlock()

	page, err := f.api.Search(ctx, query, f.pageSize, offset)
	if err != nil && f.retryOnce && domain.IsRetryable(err) && ctx.Err() == nil && f.current(gen) {
		logger.Debug("fetcher: retrying page at offset %d after: %v", offset, err)
		page, err = f.api.Search(ctx, query, f.pageSize, offset)
	}

	if err == nil && page == nil {
		page = &domain.SearchPage{TotalCount: -1}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.generation {
		logger.Debug("fetcher: discarding stale page at offset %d", offset)
		return driving.FetchOutcome{State: f.state, Stale: true}, nil
	}

	if err != nil {
		f.state = domain.FetchIdle
		return driving.FetchOutcome{State: f.state}, fmt.Errorf("fetch page at offset %d: %w", offset, err)
	}

	added := 0
	for _, r := range page.Items {
		if f.results.Add(r) {
			added++
		}
	}
	returned := page.ReturnedCount()
	f.offset += returned
	if page.TotalCount >= 0 {
		f.total = page.TotalCount
	}

	f.state = domain.FetchIdle
	if returned == 0 || (f.total >= 0 && f.results.Len() >= f.total) {
		f.state = domain.FetchExhausted
	}

	logger.Debug("fetcher: offset=%d returned=%d added=%d total=%d state=%s",
		offset, returned, added, f.total, f.state)

	return driving.FetchOutcome{
		Returned: returned,
		Added:    added,
		State:    f.state,
	}, nil
}

func (f *Fetcher) current(gen uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return gen == f.generation
}

// State returns the current fetch state.
func (f *Fetcher) State() domain.FetchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Results returns a snapshot of the accumulated results in fetch order.
func (f *Fetcher) Results() []domain.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results.Items()
}

// Total returns the server-reported total, or -1 if unknown.
func (f *Fetcher) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// Offset returns the offset of the next page.
func (f *Fetcher) Offset() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.offset
}

// Query returns the active query.
func (f *Fetcher) Query() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query
}

// PageSize returns the configured page size.
func (f *Fetcher) PageSize() int {
	return f.pageSize
}
