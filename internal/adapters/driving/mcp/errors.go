// Package mcp provides an MCP (Model Context Protocol) server adapter for sercha-wiki.
// It lets AI assistants search the wiki and read or request page summaries.
package mcp

import "errors"

// ErrMissingSearchService is returned when no session factory is provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
