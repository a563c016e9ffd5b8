package driving

import "github.com/custodia-labs/sercha-wiki/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set stores a single setting by its config key after validating it.
	Set(key, value string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetWikiToken stores the wiki credentials.
	SetWikiToken(username, token string) error

	// Validate checks the wiki connection is configured.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Keys returns every recognised config key.
	Keys() []string
}
