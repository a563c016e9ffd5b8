// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - WikiSearchAPI: Paginated search against the wiki (Confluence CQL)
//   - ContentSource: Raw body of a single piece of content
//   - BodySanitiser: Strips active markup from content bodies
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Without it, summaries and follow-up questions are disabled.
//   - SummaryStore / ConversationStore: Without them, caches are memory-only.
//   - PromptStore: Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
