package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui [query]",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for sercha-wiki.

Results are shown as a tree under the pages they live in. More results
load as the cursor nears the end of the list.

Controls:
  ↑/k, ↓/j - Navigate results
  Space    - Collapse / expand a page
  Enter    - Search / Open summary
  /        - Filter loaded results by title
  o, O     - Cycle sort column / order
  s, r     - Summarise / regenerate summary
  Esc      - Back / Cancel
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	session, err := requireSession()
	if err != nil {
		return err
	}
	startPromptWatch(cmd)

	ports := &tui.Ports{
		Session: session,
		Summary: summaryService,
		Origin:  wikiOrigin,
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())
	if len(args) == 1 {
		app.WithQuery(args[0])
	}

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
