package domain

// TreeNode is a node in the ancestor/descendant forest built from the display list.
// Nodes are rebuilt from scratch on every change; persistent state such as
// collapse lives outside the tree and is re-applied on build.
type TreeNode struct {
	// ID is the content ID.
	ID string `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// URL is the web path of the node.
	URL string `json:"url,omitempty"`

	// Children are owned by this node, in first-seen order.
	Children []*TreeNode `json:"children,omitempty"`

	// IsResult is true if the node is a search result rather than an ancestor stub.
	IsResult bool `json:"is_result"`

	// Collapsed hides the node's children when rendered.
	Collapsed bool `json:"collapsed"`

	// Result carries the full record for result nodes. Nil for stubs.
	Result *Result `json:"result,omitempty"`
}

// HasChildren returns true if the node has any children.
func (n *TreeNode) HasChildren() bool {
	return len(n.Children) > 0
}

// TreeRow is one visible line of a flattened forest.
type TreeRow struct {
	Node  *TreeNode
	Depth int
}
