package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for sercha-wiki resources.
	uriScheme = "wiki://"
)

// summaryResource is the JSON body of a summary resource.
type summaryResource struct {
	ContentID    string   `json:"content_id"`
	Origin       string   `json:"origin"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Model        string   `json:"model,omitempty"`
	StoredAt     string   `json:"stored_at"`
	Conversation []string `json:"conversation,omitempty"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "summaries/{contentId}",
		Name:        "summary",
		Description: "Cached AI summary of a wiki page and its follow-up conversation",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// handleSummaryResource returns a cached summary. It never calls the model:
// content that has not been summarised is reported as not found.
func (s *Server) handleSummaryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Summary == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	contentID := extractContentID(req.Params.URI)
	if contentID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	key := s.key(contentID)
	if !s.ports.Summary.CacheStatus(ctx, []domain.SummaryKey{key})[key] {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	view, err := s.ports.Summary.Summarise(ctx, key, "")
	if err != nil {
		return nil, fmt.Errorf("reading summary: %w", err)
	}

	body := summaryResource{
		ContentID: view.Entry.ContentID,
		Origin:    view.Entry.Origin,
		Title:     view.Entry.Title,
		Summary:   view.Entry.SummaryText,
		Model:     view.Entry.Model,
		StoredAt:  view.Entry.StoredAt.Format(time.RFC3339),
	}
	if messages, err := s.ports.Summary.Conversation(ctx, key); err == nil {
		for _, m := range messages {
			body.Conversation = append(body.Conversation, string(m.Role)+": "+m.Content)
		}
	}

	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling summary: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractContentID extracts the content ID from a URI like wiki://summaries/{contentId}.
func extractContentID(uri string) string {
	const prefix = uriScheme + "summaries/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
