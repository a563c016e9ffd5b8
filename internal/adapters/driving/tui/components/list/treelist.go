// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/services"
)

// TreeList displays the ancestor tree of search results as a navigable list.
// Each visible node is one row; collapsed nodes hide their descendants.
type TreeList struct {
	rows     []domain.TreeRow
	cached   map[string]bool
	selected int
	styles   *styles.Styles
	width    int
	height   int
	loaded   int
	total    int
}

// NewTreeList creates a new tree list component.
func NewTreeList(s *styles.Styles) *TreeList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &TreeList{
		cached: make(map[string]bool),
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the tree list.
func (t *TreeList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (t *TreeList) Update(msg tea.Msg) (*TreeList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			t.MoveUp()
		case "down", "j":
			t.MoveDown()
		case "home", "g":
			t.selected = 0
		case "end", "G":
			if len(t.rows) > 0 {
				t.selected = len(t.rows) - 1
			}
		}
	}
	return t, nil
}

// View renders the tree list.
func (t *TreeList) View() string {
	if len(t.rows) == 0 {
		return t.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(t.rows)+2)

	header := fmt.Sprintf("Results (%d)", t.loaded)
	if t.total > t.loaded {
		header = fmt.Sprintf("Results (%d of %d)", t.loaded, t.total)
	}
	lines = append(lines, t.styles.Subtitle.Render(header), "")

	visibleCount := t.height - 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if t.selected >= visibleCount {
		start = t.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(t.rows) {
		end = len(t.rows)
	}

	for i := start; i < end; i++ {
		lines = append(lines, t.renderRow(i, t.rows[i]))
	}

	return strings.Join(lines, "\n")
}

// renderRow formats a single tree row.
func (t *TreeList) renderRow(index int, row domain.TreeRow) string {
	node := row.Node

	indicator := "  "
	if index == t.selected {
		indicator = "> "
	}

	toggle := "  "
	if node.HasChildren() {
		toggle = "▾ "
		if node.Collapsed {
			toggle = "▸ "
		}
	}

	icon := "·"
	if node.IsResult && node.Result != nil {
		icon = node.Result.Type.Icon()
	}

	title := node.Title
	if title == "" {
		title = "(Untitled)"
	}

	prefix := indicator + strings.Repeat("  ", row.Depth) + toggle + icon + " "
	meta := t.meta(node)

	maxTitleLen := t.width - len([]rune(prefix)) - len([]rune(meta)) - 4
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}
	if r := []rune(title); len(r) > maxTitleLen {
		title = string(r[:maxTitleLen-3]) + "..."
	}

	marker := ""
	if t.cached[node.ID] {
		marker = " " + t.styles.Cached.Render("*")
	}

	if index == t.selected {
		return t.styles.Selected.Render(prefix+title) + marker + "  " + t.styles.Meta.Render(meta)
	}
	if !node.IsResult {
		return t.styles.Branch.Render(prefix + title)
	}
	return t.styles.Normal.Render(prefix+title) + marker + "  " + t.styles.Meta.Render(meta)
}

// meta returns the space, contributor and modified date of a result node.
func (t *TreeList) meta(node *domain.TreeNode) string {
	if !node.IsResult || node.Result == nil {
		return ""
	}
	r := node.Result
	parts := make([]string, 0, 3)
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

// SetForest replaces the displayed tree, keeping the selected node when it is still visible.
func (t *TreeList) SetForest(forest []*domain.TreeNode) {
	var selectedID string
	if node := t.SelectedNode(); node != nil {
		selectedID = node.ID
	}

	t.rows = services.VisibleRows(forest)

	if selectedID != "" {
		for i, row := range t.rows {
			if row.Node.ID == selectedID {
				t.selected = i
				return
			}
		}
	}
	if t.selected >= len(t.rows) {
		t.selected = len(t.rows) - 1
	}
	if t.selected < 0 {
		t.selected = 0
	}
}

// Reset clears the tree and moves the cursor to the top.
func (t *TreeList) Reset() {
	t.rows = nil
	t.selected = 0
	t.loaded = 0
	t.total = 0
}

// SetCounts sets the loaded and total result counts shown in the header.
func (t *TreeList) SetCounts(loaded, total int) {
	t.loaded = loaded
	t.total = total
}

// SetCached replaces the set of result IDs that have a stored summary.
func (t *TreeList) SetCached(cached map[string]bool) {
	t.cached = make(map[string]bool, len(cached))
	for id, ok := range cached {
		if ok {
			t.cached[id] = true
		}
	}
}

// MarkCached flags a single result as having a stored summary.
func (t *TreeList) MarkCached(id string, cached bool) {
	if cached {
		t.cached[id] = true
		return
	}
	delete(t.cached, id)
}

// IsCached reports whether a result has a stored summary.
func (t *TreeList) IsCached(id string) bool {
	return t.cached[id]
}

// Rows returns the visible rows.
func (t *TreeList) Rows() []domain.TreeRow {
	return t.rows
}

// Selected returns the index of the selected row.
func (t *TreeList) Selected() int {
	return t.selected
}

// SetSelected sets the selected index.
func (t *TreeList) SetSelected(index int) {
	if index >= 0 && index < len(t.rows) {
		t.selected = index
	}
}

// SelectedNode returns the node under the cursor, or nil if none.
func (t *TreeList) SelectedNode() *domain.TreeNode {
	if len(t.rows) == 0 || t.selected < 0 || t.selected >= len(t.rows) {
		return nil
	}
	return t.rows[t.selected].Node
}

// SelectedResult returns the result under the cursor, or nil when the
// cursor is on an ancestor that is not itself a result.
func (t *TreeList) SelectedResult() *domain.Result {
	node := t.SelectedNode()
	if node == nil || !node.IsResult {
		return nil
	}
	return node.Result
}

// NearEnd reports whether the cursor is within threshold rows of the last row.
func (t *TreeList) NearEnd(threshold int) bool {
	if len(t.rows) == 0 {
		return false
	}
	return len(t.rows)-1-t.selected < threshold
}

// MoveUp moves selection up.
func (t *TreeList) MoveUp() {
	if t.selected > 0 {
		t.selected--
	}
}

// MoveDown moves selection down.
func (t *TreeList) MoveDown() {
	if t.selected < len(t.rows)-1 {
		t.selected++
	}
}

// SetDimensions sets the component dimensions.
func (t *TreeList) SetDimensions(width, height int) {
	t.width = width
	t.height = height
}

// Width returns the current width.
func (t *TreeList) Width() int {
	return t.width
}

// Height returns the current height.
func (t *TreeList) Height() int {
	return t.height
}

// Count returns the number of visible rows.
func (t *TreeList) Count() int {
	return len(t.rows)
}

// IsEmpty returns whether the list is empty.
func (t *TreeList) IsEmpty() bool {
	return len(t.rows) == 0
}
