package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/api"
	"github.com/custodia-labs/sercha-wiki/internal/logger"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP JSON API",
	Long: `Start an HTTP server exposing one search session as a JSON API under
/api/v1. Editors and scripts can drive it like the TUI: search, page,
filter, sort, expand the tree and request summaries.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "address to listen on")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8765, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	session, err := requireSession()
	if err != nil {
		return err
	}

	server, err := api.NewServer(&api.Ports{
		Session: session,
		Summary: summaryService,
		Stats:   cacheStats,
		Origin:  wikiOrigin,
	}, logger.L())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	startPromptWatch(cmd)

	addr := fmt.Sprintf("%s:%d", serveHost, servePort)
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(addr) }()
	cmd.Printf("API listening on http://%s/api/v1\n", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("stopping server: %w", err)
	}
	return nil
}
