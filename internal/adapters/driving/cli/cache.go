package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var cacheClearYes bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the summary cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache location and size",
	RunE:  runCacheStatus,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached summary and conversation",
	RunE:  runCacheClear,
}

func init() {
	cacheClearCmd.Flags().BoolVarP(&cacheClearYes, "yes", "y", false, "do not ask for confirmation")
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStatus(cmd *cobra.Command, _ []string) error {
	if cacheStats == nil {
		cmd.Println("Cache: in memory only (nothing persists between runs)")
		return nil
	}

	stats, err := cacheStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading cache: %w", err)
	}

	cmd.Printf("Cache: %s\n", stats.Path)
	cmd.Printf("  Summaries:     %d\n", stats.Summaries)
	cmd.Printf("  Conversations: %d\n", stats.Conversations)
	if stats.Degraded {
		cmd.Println("  Warning: the store failed during this run; new summaries are kept in memory only.")
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	svc, err := requireSummary()
	if err != nil {
		return err
	}

	if !cacheClearYes {
		cmd.Print("Delete all cached summaries and conversations? [y/N]: ")
		answer := strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin())))
		if answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := svc.ClearAll(cmd.Context()); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	cmd.Println("Cache cleared.")
	return nil
}
