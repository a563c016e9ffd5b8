package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

// maxPages bounds how many pages a single search tool call may load.
const maxPages = 10

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query       string `json:"query" jsonschema:"the text to search for in page titles and content"`
	Space       string `json:"space,omitempty" jsonschema:"restrict results to this space key"`
	Contributor string `json:"contributor,omitempty" jsonschema:"restrict results to content this user contributed to"`
	Since       string `json:"since,omitempty" jsonschema:"only content modified within this range, e.g. 1d, 2w, 3m, 1y"`
	Type        string `json:"type,omitempty" jsonschema:"content type: page, blogpost, attachment or comment"`
	Title       string `json:"title,omitempty" jsonschema:"narrow loaded results to titles containing this text"`
	Sort        string `json:"sort,omitempty" jsonschema:"sort column: title, space, contributor, type, created or modified"`
	Order       string `json:"order,omitempty" jsonschema:"sort order: asc or desc (default asc)"`
	Pages       int    `json:"pages,omitempty" jsonschema:"number of result pages to load (default 1, max 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results   []SearchResultOutput `json:"results"`
	Count     int                  `json:"count"`
	Total     int                  `json:"total"`
	Exhausted bool                 `json:"exhausted"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ContentID   string `json:"content_id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Space       string `json:"space,omitempty"`
	Contributor string `json:"contributor,omitempty"`
	Modified    string `json:"modified,omitempty"`
	Path        string `json:"path,omitempty"`
	URL         string `json:"url,omitempty"`
	Summarised  bool   `json:"summarised"`
}

// SummariseInput is the input schema for the summarise tool.
type SummariseInput struct {
	ContentID  string `json:"content_id" jsonschema:"the content ID from a search result"`
	Title      string `json:"title,omitempty" jsonschema:"the page title, used in the prompt"`
	Regenerate bool   `json:"regenerate,omitempty" jsonschema:"discard any cached summary and generate a new one"`
}

// SummariseOutput is the output schema for the summarise tool.
type SummariseOutput struct {
	ContentID string `json:"content_id"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Model     string `json:"model,omitempty"`
	Cached    bool   `json:"cached"`
	StoredAt  string `json:"stored_at"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	ContentID string `json:"content_id" jsonschema:"the content ID the question is about"`
	Title     string `json:"title,omitempty" jsonschema:"the page title, used in the prompt"`
	Question  string `json:"question" jsonschema:"the follow-up question"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer string `json:"answer"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the wiki and return matching pages with their location in the page tree",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarise",
		Description: "Summarise a wiki page. Summaries are cached; repeated calls are free",
	}, s.handleSummarise)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a follow-up question about a summarised wiki page",
	}, s.handleAsk)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	filter, err := domain.FilterSpec{
		Text:        input.Title,
		Space:       input.Space,
		Contributor: input.Contributor,
		Since:       input.Since,
		Type:        input.Type,
	}.Parse()
	if err != nil {
		return nil, SearchOutput{}, err
	}
	sortState, err := domain.SortSpec{Column: input.Sort, Order: input.Order}.Parse()
	if err != nil {
		return nil, SearchOutput{}, err
	}

	pages := input.Pages
	if pages <= 0 {
		pages = 1
	}
	if pages > maxPages {
		pages = maxPages
	}

	session := s.ports.NewSession()
	session.SetSort(sortState)
	if _, err := session.SearchWithFilter(ctx, input.Query, filter); err != nil {
		return nil, SearchOutput{}, err
	}
	if pages > 1 {
		if _, err := session.LoadMore(ctx, pages-1); err != nil {
			return nil, SearchOutput{}, err
		}
	}

	snap := session.Snapshot()
	cached := s.cacheStatus(ctx, snap.Display)

	output := SearchOutput{
		Results:   make([]SearchResultOutput, len(snap.Display)),
		Count:     len(snap.Display),
		Total:     snap.Total,
		Exhausted: snap.State == domain.FetchExhausted.String(),
	}
	for i, r := range snap.Display {
		output.Results[i] = SearchResultOutput{
			ContentID:   r.ID,
			Title:       r.Title,
			Type:        r.Type.String(),
			Space:       r.Space.Key,
			Contributor: r.Creator.DisplayName,
			Path:        r.Breadcrumb(" / "),
			URL:         r.URL(s.ports.Origin),
			Summarised:  cached[s.key(r.ID)],
		}
		if !r.ModifiedAt.IsZero() {
			output.Results[i].Modified = r.ModifiedAt.Format(time.RFC3339)
		}
	}

	return nil, output, nil
}

// handleSummarise handles the summarise tool invocation.
func (s *Server) handleSummarise(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummariseInput,
) (*mcp.CallToolResult, SummariseOutput, error) {
	if err := s.requireSummary(input.ContentID); err != nil {
		return nil, SummariseOutput{}, err
	}

	summarise := s.ports.Summary.Summarise
	if input.Regenerate {
		summarise = s.ports.Summary.Regenerate
	}
	view, err := summarise(ctx, s.key(input.ContentID), input.Title)
	if err != nil {
		return nil, SummariseOutput{}, err
	}

	return nil, SummariseOutput{
		ContentID: view.Entry.ContentID,
		Title:     view.Entry.Title,
		Summary:   view.Entry.SummaryText,
		Model:     view.Entry.Model,
		Cached:    view.Cached,
		StoredAt:  view.Entry.StoredAt.Format(time.RFC3339),
	}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if err := s.requireSummary(input.ContentID); err != nil {
		return nil, AskOutput{}, err
	}

	answer, err := s.ports.Summary.Ask(ctx, s.key(input.ContentID), input.Title, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Answer: answer}, nil
}

func (s *Server) requireSummary(contentID string) error {
	if s.ports.Summary == nil {
		return domain.ErrLLMUnavailable
	}
	if contentID == "" {
		return fmt.Errorf("%w: content_id is required", domain.ErrInvalidInput)
	}
	return nil
}

func (s *Server) key(contentID string) domain.SummaryKey {
	return domain.SummaryKey{ContentID: contentID, Origin: s.ports.Origin}
}

// cacheStatus reports which results already have a summary.
func (s *Server) cacheStatus(ctx context.Context, results []domain.Result) map[domain.SummaryKey]bool {
	if s.ports.Summary == nil || len(results) == 0 {
		return nil
	}
	keys := make([]domain.SummaryKey, len(results))
	for i, r := range results {
		keys[i] = s.key(r.ID)
	}
	return s.ports.Summary.CacheStatus(ctx, keys)
}
