package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes three tools: search, summarise and ask, plus cached
summaries as wiki://summaries/{contentId} resources.

By default, the server communicates over stdio using JSON-RPC. Use --port
to start an HTTP server instead.

Examples:
  # Stdio mode (default, for desktop assistants)
  sercha-wiki mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  sercha-wiki mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "sercha-wiki": {
        "command": "/path/to/sercha-wiki",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	if newSession == nil {
		return errWikiNotConfigured
	}

	ports := &mcp.Ports{
		NewSession: newSession,
		Summary:    summaryService,
		Origin:     wikiOrigin,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}
	startPromptWatch(cmd)

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

// startPromptWatch reloads prompt files on change for the life of cmd.
func startPromptWatch(cmd *cobra.Command) {
	if watchPrompts == nil {
		return
	}
	if err := watchPrompts(cmd.Context()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: prompt files will not reload: %v\n", err)
	}
}
