package services

import (
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

// FilterSortEngine derives the display list from accumulated results.
// It is a pure function of its inputs and never mutates them.
type FilterSortEngine struct{}

// NewFilterSortEngine creates a filter/sort engine.
func NewFilterSortEngine() *FilterSortEngine {
	return &FilterSortEngine{}
}

// Apply filters results and orders them by sortState.
//
// The text filter matches titles case-insensitively. Space and type filters
// confirm against the result when it carries the field; contributor and date
// filters are applied by the server and pass through here. With no active
// sort the fetch order is kept. Sorting is stable in both directions.
func (e *FilterSortEngine) Apply(results []domain.Result, filter domain.FilterState, sortState domain.SortState) []domain.Result {
	needle := strings.ToLower(strings.TrimSpace(filter.Text))

	out := make([]domain.Result, 0, len(results))
	for _, r := range results {
		if needle != "" && !strings.Contains(strings.ToLower(r.Title), needle) {
			continue
		}
		if filter.SpaceKey != "" && r.Space.Key != "" && !strings.EqualFold(r.Space.Key, filter.SpaceKey) {
			continue
		}
		if filter.Type.IsValid() && r.Type != "" && r.Type != filter.Type {
			continue
		}
		out = append(out, r)
	}

	if !sortState.Active() {
		return out
	}

	less := comparator(sortState.Column)
	if sortState.Order == domain.SortDesc {
		sort.SliceStable(out, func(i, j int) bool { return less(out[j], out[i]) })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

func comparator(column domain.SortColumn) func(a, b domain.Result) bool {
	switch column {
	case domain.SortBySpace:
		return byString(func(r domain.Result) string {
			if r.Space.Name != "" {
				return r.Space.Name
			}
			return r.Space.Key
		})
	case domain.SortByContributor:
		return byString(func(r domain.Result) string { return r.Creator.DisplayName })
	case domain.SortByType:
		return byString(func(r domain.Result) string { return string(r.Type) })
	case domain.SortByCreated:
		return byTime(func(r domain.Result) time.Time { return r.CreatedAt })
	case domain.SortByModified:
		return byTime(func(r domain.Result) time.Time { return r.ModifiedAt })
	default:
		return byString(func(r domain.Result) string { return r.Title })
	}
}

func byString(field func(domain.Result) string) func(a, b domain.Result) bool {
	return func(a, b domain.Result) bool {
		return strings.ToLower(field(a)) < strings.ToLower(field(b))
	}
}

// byTime orders by instant; a zero time sorts earliest.
func byTime(field func(domain.Result) time.Time) func(a, b domain.Result) bool {
	return func(a, b domain.Result) bool {
		ta, tb := field(a), field(b)
		if ta.IsZero() {
			return !tb.IsZero()
		}
		if tb.IsZero() {
			return false
		}
		return ta.Before(tb)
	}
}
