package services

import (
	"strings"
	"time"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

const cqlDateLayout = "2006-01-02"

// QueryBuilder renders search text and filters as a CQL query.
type QueryBuilder struct {
	now func() time.Time
}

// NewQueryBuilder creates a query builder using the wall clock.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{now: time.Now}
}

// NewQueryBuilderWithClock creates a query builder with an injected clock.
func NewQueryBuilderWithClock(now func() time.Time) *QueryBuilder {
	return &QueryBuilder{now: now}
}

// Build returns the CQL for text and filter. It never fails: unset or
// invalid filter values are omitted. The text clause is always present.
func (b *QueryBuilder) Build(text string, filter domain.FilterState) string {
	quoted := quoteCQL(text)
	clauses := []string{"(text ~ " + quoted + " OR title ~ " + quoted + ")"}

	if key := strings.TrimSpace(filter.SpaceKey); key != "" {
		clauses = append(clauses, "space = "+quoteCQL(key))
	}
	if key := strings.TrimSpace(filter.ContributorKey); key != "" {
		clauses = append(clauses, "contributor = "+quoteCQL(key))
	}
	if filter.DateRange.IsSet() {
		since := filter.DateRange.Since(b.now())
		clauses = append(clauses, "lastmodified >= "+quoteCQL(since.Format(cqlDateLayout)))
	}
	if filter.Type.IsValid() {
		clauses = append(clauses, "type = "+quoteCQL(filter.Type.String()))
	}

	return strings.Join(clauses, " AND ")
}

// EscapeCQL escapes s for use inside a double-quoted CQL string.
// Backslashes are escaped before quotes so a quote's escape is not doubled.
func EscapeCQL(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func quoteCQL(s string) string {
	return `"` + EscapeCQL(s) + `"`
}
