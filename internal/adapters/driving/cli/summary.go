package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
)

var (
	summaryTitle      string
	summaryRegenerate bool
	summaryJSON       bool
	askTitle          string
)

var summaryCmd = &cobra.Command{
	Use:   "summary [content-id]",
	Short: "Summarise a wiki page",
	Long: `Summarises a page by its content ID, as shown in search results.

Summaries are cached. Asking again returns the cached text without
calling the model; use --regenerate to discard it and start over.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

var askCmd = &cobra.Command{
	Use:   "ask [content-id] [question]",
	Short: "Ask a follow-up question about a page",
	Long: `Asks a question about a summarised page. The page is summarised first
if needed, and the question joins the page's cached conversation.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

var conversationCmd = &cobra.Command{
	Use:   "conversation",
	Short: "Manage follow-up conversations",
}

var conversationShowCmd = &cobra.Command{
	Use:   "show [content-id]",
	Short: "Show the follow-up conversation for a page",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationShow,
}

var conversationClearCmd = &cobra.Command{
	Use:   "clear [content-id]",
	Short: "Forget the follow-up conversation for a page, keeping its summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationClear,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryTitle, "title", "", "page title used in the prompt")
	summaryCmd.Flags().BoolVarP(&summaryRegenerate, "regenerate", "r", false, "discard the cached summary and generate a new one")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "output the summary as JSON")
	askCmd.Flags().StringVar(&askTitle, "title", "", "page title used in the prompt")

	conversationCmd.AddCommand(conversationShowCmd)
	conversationCmd.AddCommand(conversationClearCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(conversationCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	svc, err := requireSummary()
	if err != nil {
		return err
	}

	summarise := svc.Summarise
	if summaryRegenerate {
		summarise = svc.Regenerate
	}
	view, err := summarise(cmd.Context(), summaryKey(args[0]), summaryTitle)
	if err != nil {
		return fmt.Errorf("summary failed: %w", err)
	}

	if summaryJSON {
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printSummary(cmd, view)
	return nil
}

func printSummary(cmd *cobra.Command, view *driving.SummaryView) {
	e := view.Entry
	title := e.Title
	if title == "" {
		title = e.ContentID
	}
	cmd.Println(title)
	cmd.Println(strings.Repeat("=", len([]rune(title))))
	cmd.Println()
	cmd.Println(e.SummaryText)
	cmd.Println()

	source := "generated"
	if view.Cached {
		source = "cached"
	}
	line := fmt.Sprintf("(%s %s", source, e.StoredAt.Local().Format("2006-01-02 15:04"))
	if e.Model != "" {
		line += ", " + e.Model
	}
	cmd.Println(line + ")")
}

func runAsk(cmd *cobra.Command, args []string) error {
	svc, err := requireSummary()
	if err != nil {
		return err
	}

	answer, err := svc.Ask(cmd.Context(), summaryKey(args[0]), askTitle, args[1])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	cmd.Println(answer)
	return nil
}

func runConversationShow(cmd *cobra.Command, args []string) error {
	svc, err := requireSummary()
	if err != nil {
		return err
	}

	messages, err := svc.Conversation(cmd.Context(), summaryKey(args[0]))
	if err != nil {
		return fmt.Errorf("reading conversation: %w", err)
	}
	if len(messages) == 0 {
		cmd.Println("No conversation yet.")
		return nil
	}
	for _, m := range messages {
		cmd.Printf("%s: %s\n\n", m.Role, m.Content)
	}
	return nil
}

func runConversationClear(cmd *cobra.Command, args []string) error {
	svc, err := requireSummary()
	if err != nil {
		return err
	}

	if err := svc.ClearConversation(cmd.Context(), summaryKey(args[0])); err != nil {
		return fmt.Errorf("clearing conversation: %w", err)
	}
	cmd.Println("Conversation cleared.")
	return nil
}
