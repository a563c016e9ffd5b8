package services

import (
	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

// CollapseSet records which tree nodes the user collapsed.
// It outlives any single tree; nodes not in the set are expanded.
type CollapseSet map[string]struct{}

// NewCollapseSet creates an empty collapse set.
func NewCollapseSet() CollapseSet {
	return make(CollapseSet)
}

// Set marks id collapsed or expanded.
func (c CollapseSet) Set(id string, collapsed bool) {
	if collapsed {
		c[id] = struct{}{}
		return
	}
	delete(c, id)
}

// Toggle flips id and returns its new state.
func (c CollapseSet) Toggle(id string) bool {
	collapsed := !c.Has(id)
	c.Set(id, collapsed)
	return collapsed
}

// Has reports whether id is collapsed.
func (c CollapseSet) Has(id string) bool {
	_, ok := c[id]
	return ok
}

// Clone returns an independent copy.
func (c CollapseSet) Clone() CollapseSet {
	out := make(CollapseSet, len(c))
	for id := range c {
		out[id] = struct{}{}
	}
	return out
}

// TreeBuilder reconstructs the ancestor forest from a display list.
type TreeBuilder struct{}

// NewTreeBuilder creates a tree builder.
func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{}
}

// Build returns the forest for display, with roots in first-seen order.
//
// Each result contributes the chain ancestors[0] -> ... -> result. A node
// appearing as both an ancestor stub and a result is rendered once, as a
// result. A node keeps its first parent; links that would give it a second
// parent or close a cycle are ignored. Collapse state is read from collapsed.
func (b *TreeBuilder) Build(display []domain.Result, collapsed CollapseSet) []*domain.TreeNode {
	nodes := make(map[string]*domain.TreeNode)
	parentOf := make(map[string]string)
	var rootOrder []string
	rootSeen := make(map[string]bool)

	node := func(id, title, url string) *domain.TreeNode {
		n, ok := nodes[id]
		if !ok {
			n = &domain.TreeNode{ID: id, Title: title, URL: url, Collapsed: collapsed.Has(id)}
			nodes[id] = n
		}
		return n
	}

	for i := range display {
		r := display[i]
		if r.ID == "" {
			continue
		}

		chain := make([]*domain.TreeNode, 0, len(r.Ancestors)+1)
		for _, a := range r.Ancestors {
			if a.ID == "" || a.ID == r.ID {
				continue
			}
			chain = append(chain, node(a.ID, a.Title, a.WebPath))
		}

		leaf := node(r.ID, r.Title, r.WebPath)
		leaf.IsResult = true
		leaf.Title = r.Title
		leaf.URL = r.WebPath
		leaf.Result = &display[i]
		chain = append(chain, leaf)

		for j := 1; j < len(chain); j++ {
			link(chain[j-1], chain[j], parentOf)
		}

		if first := chain[0].ID; !rootSeen[first] {
			rootSeen[first] = true
			rootOrder = append(rootOrder, first)
		}
	}

	roots := make([]*domain.TreeNode, 0, len(rootOrder))
	for _, id := range rootOrder {
		if _, hasParent := parentOf[id]; !hasParent {
			roots = append(roots, nodes[id])
		}
	}
	return roots
}

// link adds child under parent unless child already has a parent
// or parent descends from child.
func link(parent, child *domain.TreeNode, parentOf map[string]string) {
	if parent.ID == child.ID {
		return
	}
	if _, ok := parentOf[child.ID]; ok {
		return
	}
	for id, ok := parent.ID, true; ok; id, ok = parentOf[id] {
		if id == child.ID {
			return
		}
	}
	parentOf[child.ID] = parent.ID
	parent.Children = append(parent.Children, child)
}

// VisibleRows flattens the forest depth-first, skipping the children of
// collapsed nodes.
func VisibleRows(forest []*domain.TreeNode) []domain.TreeRow {
	var rows []domain.TreeRow
	var walk func(nodes []*domain.TreeNode, depth int)
	walk = func(nodes []*domain.TreeNode, depth int) {
		for _, n := range nodes {
			rows = append(rows, domain.TreeRow{Node: n, Depth: depth})
			if !n.Collapsed {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(forest, 0)
	return rows
}

// CountNodes returns the number of nodes in the forest.
func CountNodes(forest []*domain.TreeNode) int {
	n := 0
	for _, node := range forest {
		n += 1 + CountNodes(node.Children)
	}
	return n
}
