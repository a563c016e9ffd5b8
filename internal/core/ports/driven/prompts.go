package driven

// PromptStore provides access to LLM prompt templates.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Prompt names shared by prompt consumers and providers.
const (
	// PromptSummarySystem is the system prompt for summary generation.
	// No placeholders.
	PromptSummarySystem = "summary_system"

	// PromptSummaryUser wraps the page being summarised.
	// Expects %s (title) then %s (body).
	PromptSummaryUser = "summary_user"

	// PromptFollowupSystem is the system prompt that opens every follow-up conversation.
	// No placeholders.
	PromptFollowupSystem = "followup_system"

	// PromptFollowupContext is the hidden user turn carrying the page to the model.
	// Expects %s (title) then %s (body).
	PromptFollowupContext = "followup_context"
)
