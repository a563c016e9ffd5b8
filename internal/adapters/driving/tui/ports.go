// Package tui provides an interactive terminal user interface for browsing
// wiki search results as an ancestor tree and reading AI summaries.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Session runs searches and owns the loaded results.
	Session driving.SearchSession

	// Summary provides AI summaries and follow-up questions. Optional.
	Summary driving.SummaryService

	// Origin is the wiki base URL used to key summaries.
	Origin string
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(session driving.SearchSession, summary driving.SummaryService, origin string) *Ports {
	return &Ports{
		Session: session,
		Summary: summary,
		Origin:  origin,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Session == nil {
		return ErrMissingSession
	}
	return nil
}
