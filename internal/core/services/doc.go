// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The search path is QueryBuilder -> Fetcher -> FilterSortEngine ->
// TreeBuilder, tied together per user by SearchSession. The summary path
// is SummaryService over SummaryCache and ConversationService.
//
// Services are pure Go with no CGO.
package services
