package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-wiki/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// shutdownTimeout bounds how long RunHTTP waits for open streams to close.
const shutdownTimeout = 5 * time.Second

// Server exposes wiki search, page summaries and follow-up questions
// to MCP clients.
type Server struct {
	ports        *Ports
	server       *mcp.Server
	instructions string
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "sercha-wiki",
		Title:   "Sercha Wiki",
		Version: Version,
	}

	s := &Server{
		ports:        ports,
		instructions: instructions(ports),
	}
	s.server = mcp.NewServer(impl, &mcp.ServerOptions{Instructions: s.instructions})

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Instructions returns the usage guidance sent to clients on initialise.
func (s *Server) Instructions() string {
	return s.instructions
}

func instructions(ports *Ports) string {
	var b strings.Builder
	b.WriteString("Searches a Confluence wiki")
	if ports.Origin != "" {
		fmt.Fprintf(&b, " at %s", ports.Origin)
	}
	b.WriteString(".\n")
	b.WriteString("Use the search tool with a query and optional space, contributor, since and type filters. ")
	b.WriteString("Each result carries its id and its ancestor path in the page tree.\n")
	if ports.Summary == nil {
		b.WriteString("Summaries are not configured on this server; summarise and ask will fail.")
		return b.String()
	}
	b.WriteString("Pass a result id to summarise for a short summary of the page, then to ask for follow-up questions about it. ")
	b.WriteString("Summaries are cached per page, so repeat calls do not reach the model. ")
	b.WriteString("Already summarised pages can be read without generation from " + uriScheme + "summaries/{contentId}.")
	return b.String()
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("mcp: serving over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	}()

	logger.Info("mcp: listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
