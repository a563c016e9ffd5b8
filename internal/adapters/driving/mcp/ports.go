package mcp

import (
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// NewSession starts a search session. Each tool call gets its own.
	NewSession func() driving.SearchSession

	// Summary provides summaries and follow-up answers. Optional.
	Summary driving.SummaryService

	// Origin is the wiki base URL used to key summaries and build links.
	Origin string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.NewSession == nil {
		return ErrMissingSearchService
	}
	return nil
}
