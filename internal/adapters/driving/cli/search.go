package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-wiki/internal/core/services"
)

var (
	searchSpace       string
	searchContributor string
	searchSince       string
	searchType        string
	searchFilter      string
	searchSort        string
	searchOrder       string
	searchPages       int
	searchAll         bool
	searchTree        bool
	searchJSON        bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the wiki",
	Long: `Searches page titles and content across the wiki.

Results are fetched a page at a time. Use --pages or --all to load more,
and --tree to show each result under the pages it lives in. A * marks
results that already have a cached summary.

Examples:
  sercha-wiki search "deploy runbook"
  sercha-wiki search incident --space OPS --since 2w --type page
  sercha-wiki search onboarding --all --tree
  sercha-wiki search release --sort modified --order desc --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchSpace, "space", "", "restrict to a space key")
	searchCmd.Flags().StringVar(&searchContributor, "contributor", "", "restrict to content a user contributed to")
	searchCmd.Flags().StringVar(&searchSince, "since", "", "modified within a range: 1d, 2w, 3m, 1y")
	searchCmd.Flags().StringVar(&searchType, "type", "", "content type: page, blogpost, attachment, comment")
	searchCmd.Flags().StringVar(&searchFilter, "filter", "", "only show loaded results whose title contains this text")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "sort by title, space, contributor, type, created or modified")
	searchCmd.Flags().StringVar(&searchOrder, "order", "", "sort order: asc or desc")
	searchCmd.Flags().IntVarP(&searchPages, "pages", "n", 1, "number of result pages to load")
	searchCmd.Flags().BoolVar(&searchAll, "all", false, "load every page of results")
	searchCmd.Flags().BoolVar(&searchTree, "tree", false, "show results as a page tree")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	filter, err := domain.FilterSpec{
		Text:        searchFilter,
		Space:       searchSpace,
		Contributor: searchContributor,
		Since:       searchSince,
		Type:        searchType,
	}.Parse()
	if err != nil {
		return err
	}
	sortState, err := domain.SortSpec{Column: searchSort, Order: searchOrder}.Parse()
	if err != nil {
		return err
	}

	session, err := requireSession()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	session.SetSort(sortState)

	if _, err := session.SearchWithFilter(ctx, args[0], filter); err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	switch {
	case searchAll:
		_, err = session.LoadMore(ctx, 0)
	case searchPages > 1:
		_, err = session.LoadMore(ctx, searchPages-1)
	}
	if err != nil {
		return fmt.Errorf("loading more results: %w", err)
	}

	snap := session.Snapshot()
	cached := cachedIDs(cmd, snap.Display)

	switch {
	case searchJSON:
		return outputSearchJSON(cmd, snap)
	case searchTree:
		outputSearchTree(cmd, snap, cached)
	default:
		outputSearchTable(cmd, snap, cached)
	}
	return nil
}

// cachedIDs returns the IDs of results with a cached summary.
func cachedIDs(cmd *cobra.Command, results []domain.Result) map[string]bool {
	if summaryService == nil || len(results) == 0 {
		return nil
	}
	keys := make([]domain.SummaryKey, len(results))
	for i, r := range results {
		keys[i] = summaryKey(r.ID)
	}
	status := summaryService.CacheStatus(cmd.Context(), keys)

	out := make(map[string]bool, len(status))
	for k, ok := range status {
		if ok {
			out[k.ContentID] = true
		}
	}
	return out
}

func outputSearchJSON(cmd *cobra.Command, snap driving.SessionSnapshot) error {
	if !searchTree {
		snap.Forest = nil
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, snap driving.SessionSnapshot, cached map[string]bool) {
	if len(snap.Display) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range snap.Display {
		r := &snap.Display[i]
		marker := " "
		if cached[r.ID] {
			marker = "*"
		}

		cmd.Printf(" %s[%d] %s %s\n", marker, i+1, r.Type.Icon(), r.Title)
		if meta := resultMeta(r); meta != "" {
			cmd.Printf("      %s\n", meta)
		}
		if path := r.Breadcrumb(" / "); path != "" {
			cmd.Printf("      in %s\n", path)
		}
		if url := r.URL(wikiOrigin); url != "" {
			cmd.Printf("      %s\n", url)
		}
		cmd.Println()
	}
	cmd.Println(loadedLine(snap))
}

func outputSearchTree(cmd *cobra.Command, snap driving.SessionSnapshot, cached map[string]bool) {
	if len(snap.Display) == 0 {
		cmd.Println("No results found.")
		return
	}

	for _, row := range services.VisibleRows(snap.Forest) {
		n := row.Node
		marker := " "
		if n.IsResult && cached[n.ID] {
			marker = "*"
		}
		icon := "·"
		if n.Result != nil {
			icon = n.Result.Type.Icon()
		}
		cmd.Printf("%s%s%s %s\n", marker, strings.Repeat("  ", row.Depth), icon, n.Title)
	}
	cmd.Println()
	cmd.Println(loadedLine(snap))
}

func resultMeta(r *domain.Result) string {
	var parts []string
	if r.Space.Key != "" {
		parts = append(parts, r.Space.Key)
	}
	if r.Creator.DisplayName != "" {
		parts = append(parts, r.Creator.DisplayName)
	}
	if !r.ModifiedAt.IsZero() {
		parts = append(parts, r.ModifiedAt.Format("2006-01-02"))
	}
	return strings.Join(parts, " · ")
}

func loadedLine(snap driving.SessionSnapshot) string {
	line := fmt.Sprintf("Showing %d of %d loaded", len(snap.Display), snap.Loaded)
	if snap.Total > 0 {
		line += fmt.Sprintf(" (%d total)", snap.Total)
	}
	if snap.State != domain.FetchExhausted.String() {
		line += "; more available with --pages or --all"
	}
	return line
}
