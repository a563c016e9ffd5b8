package domain

import (
	"strings"
	"time"
)

// ContentType is the kind of wiki content a result refers to.
type ContentType string

// Content types returned by the search API.
const (
	ContentTypePage       ContentType = "page"
	ContentTypeBlogPost   ContentType = "blogpost"
	ContentTypeAttachment ContentType = "attachment"
	ContentTypeComment    ContentType = "comment"
)

// IsValid returns true if the content type is recognised.
func (t ContentType) IsValid() bool {
	switch t {
	case ContentTypePage, ContentTypeBlogPost, ContentTypeAttachment, ContentTypeComment:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t ContentType) String() string {
	return string(t)
}

// Icon returns a short glyph used by text renderers.
func (t ContentType) Icon() string {
	switch t {
	case ContentTypePage:
		return "📄"
	case ContentTypeBlogPost:
		return "📰"
	case ContentTypeAttachment:
		return "📎"
	case ContentTypeComment:
		return "💬"
	default:
		return "•"
	}
}

// Space identifies the wiki space a result belongs to.
type Space struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Person identifies a wiki user.
type Person struct {
	// Key is the stable user identifier used in contributor filters.
	Key string `json:"key"`

	// DisplayName is the human-readable name.
	DisplayName string `json:"display_name"`
}

// Ancestor is an entry in a result's ancestor chain, ordered root first.
type Ancestor struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	WebPath string `json:"web_path,omitempty"`
}

// Result is a single search hit. Results are immutable once fetched.
type Result struct {
	// ID is the unique content identifier.
	ID string `json:"id"`

	// Title is the content title.
	Title string `json:"title"`

	// Type is the content kind.
	Type ContentType `json:"type"`

	// Space is the owning space.
	Space Space `json:"space"`

	// Creator is the user who created the content.
	Creator Person `json:"creator"`

	// CreatedAt is when the content was created. Zero if unknown.
	CreatedAt time.Time `json:"created_at"`

	// ModifiedAt is when the content was last modified. Zero if unknown.
	ModifiedAt time.Time `json:"modified_at"`

	// Ancestors is the parent chain, root first. May be empty.
	Ancestors []Ancestor `json:"ancestors,omitempty"`

	// WebPath is the path of the content's web page, relative to the wiki origin.
	WebPath string `json:"web_path"`
}

// ResultSet is an insertion-ordered collection of results
// in which no two results share an ID.
type ResultSet struct {
	items []Result
	index map[string]int
}

// NewResultSet creates an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{index: make(map[string]int)}
}

// Add appends r unless a result with the same ID is already present.
// It returns false when the result was suppressed as a duplicate.
func (s *ResultSet) Add(r Result) bool {
	if _, ok := s.index[r.ID]; ok {
		return false
	}
	s.index[r.ID] = len(s.items)
	s.items = append(s.items, r)
	return true
}

// Len returns the number of results.
func (s *ResultSet) Len() int {
	return len(s.items)
}

// Contains reports whether a result with the given ID is present.
func (s *ResultSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Get returns the result with the given ID.
func (s *ResultSet) Get(id string) (Result, bool) {
	i, ok := s.index[id]
	if !ok {
		return Result{}, false
	}
	return s.items[i], true
}

// Items returns a copy of the results in insertion order.
func (s *ResultSet) Items() []Result {
	out := make([]Result, len(s.items))
	copy(out, s.items)
	return out
}

// SearchPage is one page of results returned by the search API.
type SearchPage struct {
	// Items are the results on this page, in server order.
	Items []Result

	// TotalCount is the server-reported total for the query.
	// A negative value means the server did not report one.
	TotalCount int

	// Returned is the number of items the server sent, including any the
	// adapter dropped. Zero means len(Items).
	Returned int
}

// ReturnedCount returns how far the page advances the server's cursor.
func (p *SearchPage) ReturnedCount() int {
	if p.Returned > len(p.Items) {
		return p.Returned
	}
	return len(p.Items)
}

// FetchState is the lifecycle state of a paginated fetch.
type FetchState int

// Fetch states.
const (
	// FetchIdle means no request is in flight and more pages may exist.
	FetchIdle FetchState = iota

	// FetchFetching means a page request is in flight.
	FetchFetching

	// FetchExhausted means every page has been retrieved.
	FetchExhausted
)

// String returns the string representation.
func (s FetchState) String() string {
	switch s {
	case FetchIdle:
		return "idle"
	case FetchFetching:
		return "fetching"
	case FetchExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// URL returns the absolute web address of the result on the wiki at origin.
func (r Result) URL(origin string) string {
	if r.WebPath == "" {
		return ""
	}
	if strings.HasPrefix(r.WebPath, "http://") || strings.HasPrefix(r.WebPath, "https://") {
		return r.WebPath
	}
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(r.WebPath, "/")
}

// Breadcrumb returns the ancestor titles joined with sep, root first.
func (r Result) Breadcrumb(sep string) string {
	titles := make([]string, len(r.Ancestors))
	for i, a := range r.Ancestors {
		titles[i] = a.Title
	}
	return strings.Join(titles, sep)
}
