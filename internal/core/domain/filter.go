package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateUnit is the unit of a relative date range.
type DateUnit byte

// Date units.
const (
	DateUnitDay   DateUnit = 'd'
	DateUnitWeek  DateUnit = 'w'
	DateUnitMonth DateUnit = 'm'
	DateUnitYear  DateUnit = 'y'
)

// DateRange is a relative lower bound such as "last 2 weeks".
// The zero value means any time.
type DateRange struct {
	Count int
	Unit  DateUnit
}

// ParseDateRange parses strings like "1d", "2w", "3m" or "1y".
// An empty string or "any" yields the zero range.
func ParseDateRange(s string) (DateRange, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "any" {
		return DateRange{}, nil
	}
	if len(s) < 2 {
		return DateRange{}, fmt.Errorf("%w: date range %q", ErrInvalidInput, s)
	}
	unit := DateUnit(s[len(s)-1])
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return DateRange{}, fmt.Errorf("%w: date range %q", ErrInvalidInput, s)
	}
	r := DateRange{Count: n, Unit: unit}
	if !r.IsSet() {
		return DateRange{}, fmt.Errorf("%w: date range unit %q", ErrInvalidInput, string(unit))
	}
	return r, nil
}

// IsSet returns true if the range restricts results.
func (r DateRange) IsSet() bool {
	if r.Count <= 0 {
		return false
	}
	switch r.Unit {
	case DateUnitDay, DateUnitWeek, DateUnitMonth, DateUnitYear:
		return true
	default:
		return false
	}
}

// Since returns the lower bound relative to now, truncated to the calendar date.
func (r DateRange) Since(now time.Time) time.Time {
	var t time.Time
	switch r.Unit {
	case DateUnitDay:
		t = now.AddDate(0, 0, -r.Count)
	case DateUnitWeek:
		t = now.AddDate(0, 0, -7*r.Count)
	case DateUnitMonth:
		t = now.AddDate(0, -r.Count, 0)
	case DateUnitYear:
		t = now.AddDate(-r.Count, 0, 0)
	default:
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// String returns the compact form, e.g. "2w".
func (r DateRange) String() string {
	if !r.IsSet() {
		return ""
	}
	return strconv.Itoa(r.Count) + string(r.Unit)
}

// FilterState is the user's current filter selection.
type FilterState struct {
	// Text narrows the loaded results by title, locally.
	Text string `json:"text,omitempty"`

	// SpaceKey restricts results to one space.
	SpaceKey string `json:"space,omitempty"`

	// ContributorKey restricts results to content a user contributed to.
	ContributorKey string `json:"contributor,omitempty"`

	// DateRange restricts results to recently modified content.
	DateRange DateRange `json:"-"`

	// Type restricts results to one content type. Empty means all.
	Type ContentType `json:"type,omitempty"`
}

// NarrowsRemote reports whether moving from f to next changes
// any filter the server applies. Only the text filter is local.
func (f FilterState) NarrowsRemote(next FilterState) bool {
	return f.SpaceKey != next.SpaceKey ||
		f.ContributorKey != next.ContributorKey ||
		f.DateRange != next.DateRange ||
		f.Type != next.Type
}

// SortColumn is a column results can be ordered by.
type SortColumn string

// Sort columns.
const (
	SortByTitle       SortColumn = "title"
	SortBySpace       SortColumn = "space"
	SortByContributor SortColumn = "contributor"
	SortByType        SortColumn = "type"
	SortByCreated     SortColumn = "created"
	SortByModified    SortColumn = "modified"
)

// SortColumns lists every column in display order.
var SortColumns = []SortColumn{
	SortByTitle, SortBySpace, SortByContributor, SortByType, SortByCreated, SortByModified,
}

// IsValid returns true if the column is recognised.
func (c SortColumn) IsValid() bool {
	for _, col := range SortColumns {
		if c == col {
			return true
		}
	}
	return false
}

// SortOrder is the direction of a sort.
type SortOrder string

// Sort orders. SortNone keeps fetch order.
const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Next returns the order that follows o in the asc, desc, none cycle.
func (o SortOrder) Next() SortOrder {
	switch o {
	case SortAsc:
		return SortDesc
	case SortDesc:
		return SortNone
	default:
		return SortAsc
	}
}

// ParseSortOrder parses "asc", "desc" or "none".
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return SortAsc, nil
	case "desc":
		return SortDesc, nil
	case "", "none":
		return SortNone, nil
	default:
		return SortNone, fmt.Errorf("%w: sort order %q", ErrInvalidInput, s)
	}
}

// SortState is the active sort column and direction.
type SortState struct {
	Column SortColumn `json:"column,omitempty"`
	Order  SortOrder  `json:"order,omitempty"`
}

// Active returns true if the state reorders results.
func (s SortState) Active() bool {
	return s.Column.IsValid() && s.Order != SortNone
}

// Toggle returns the state after the user activates column.
// The same column cycles asc, desc, none; a new column starts at asc.
func (s SortState) Toggle(column SortColumn) SortState {
	if s.Column != column {
		return SortState{Column: column, Order: SortAsc}
	}
	next := s.Order.Next()
	if next == SortNone {
		return SortState{}
	}
	return SortState{Column: column, Order: next}
}

// ParseSortColumn parses a column name. Empty yields "".
func ParseSortColumn(s string) (SortColumn, error) {
	c := SortColumn(strings.ToLower(strings.TrimSpace(s)))
	if c == "" || c.IsValid() {
		return c, nil
	}
	return "", fmt.Errorf("%w: sort column %q", ErrInvalidInput, s)
}

// FilterSpec is the textual form of a filter as entered on a command line
// or sent by a remote client.
type FilterSpec struct {
	Text        string `json:"text,omitempty"`
	Space       string `json:"space,omitempty"`
	Contributor string `json:"contributor,omitempty"`
	Since       string `json:"since,omitempty"`
	Type        string `json:"type,omitempty"`
}

// Parse validates the spec and returns the filter it describes.
func (f FilterSpec) Parse() (FilterState, error) {
	since, err := ParseDateRange(f.Since)
	if err != nil {
		return FilterState{}, err
	}
	typ := ContentType(strings.ToLower(strings.TrimSpace(f.Type)))
	if typ == "all" {
		typ = ""
	}
	if typ != "" && !typ.IsValid() {
		return FilterState{}, fmt.Errorf("%w: content type %q", ErrInvalidInput, f.Type)
	}
	return FilterState{
		Text:           strings.TrimSpace(f.Text),
		SpaceKey:       strings.TrimSpace(f.Space),
		ContributorKey: strings.TrimSpace(f.Contributor),
		DateRange:      since,
		Type:           typ,
	}, nil
}

// SortSpec is the textual form of a sort.
type SortSpec struct {
	Column string `json:"column,omitempty"`
	Order  string `json:"order,omitempty"`
}

// Parse validates the spec. A column without an order sorts ascending.
func (s SortSpec) Parse() (SortState, error) {
	column, err := ParseSortColumn(s.Column)
	if err != nil {
		return SortState{}, err
	}
	order, err := ParseSortOrder(s.Order)
	if err != nil {
		return SortState{}, err
	}
	if column == "" {
		return SortState{}, nil
	}
	if order == SortNone && strings.TrimSpace(s.Order) == "" {
		order = SortAsc
	}
	if order == SortNone {
		return SortState{}, nil
	}
	return SortState{Column: column, Order: order}, nil
}
