// Package domain defines the core business entities for Sercha Wiki.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Result: A search hit returned by the wiki's search API
//   - ResultSet: The deduplicated, insertion-ordered accumulation of results
//   - FilterState / SortState: The user's view over the result set
//   - TreeNode: A node in the ancestor/descendant forest
//   - SummaryEntry / ConversationEntry: Cached AI output keyed by content and origin
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
