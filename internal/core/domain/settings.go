package domain

import "strings"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// WikiAuth is how requests to the wiki are authenticated.
type WikiAuth string

// Wiki authentication schemes.
const (
	// WikiAuthBasic sends username and API token (Confluence Cloud).
	WikiAuthBasic WikiAuth = "basic"

	// WikiAuthBearer sends a personal access token (Confluence Data Center).
	WikiAuthBearer WikiAuth = "bearer"
)

// IsValid returns true if the scheme is recognised.
func (a WikiAuth) IsValid() bool {
	return a == WikiAuthBasic || a == WikiAuthBearer
}

// WikiSettings holds the connection to the wiki.
type WikiSettings struct {
	// BaseURL is the wiki origin, e.g. https://example.atlassian.net/wiki.
	BaseURL string

	// Username is the account used with basic auth.
	Username string

	// Token is the API token or personal access token.
	Token string

	// Auth selects the authentication scheme.
	Auth WikiAuth

	// PageSize is the number of results requested per page.
	PageSize int

	// RequestsPerSecond throttles calls to the wiki.
	RequestsPerSecond float64
}

// Origin returns the normalised base URL used in cache keys.
func (w WikiSettings) Origin() string {
	return strings.TrimRight(strings.TrimSpace(w.BaseURL), "/")
}

// IsConfigured returns true if the wiki connection is set up.
func (w WikiSettings) IsConfigured() bool {
	if w.BaseURL == "" || w.Token == "" {
		return false
	}
	if w.Auth == WikiAuthBasic && w.Username == "" {
		return false
	}
	return true
}

// SummarySettings controls summary generation.
type SummarySettings struct {
	// MaxBodyChars truncates the sanitised body sent to the model.
	MaxBodyChars int

	// MaxTokens bounds the length of generated answers.
	MaxTokens int
}

// SearchSettings controls result fetching.
type SearchSettings struct {
	// RetryOnce retries a failed page request once, immediately,
	// when the failure is transient.
	RetryOnce bool
}

// StorageSettings locates persistent data.
type StorageSettings struct {
	// DataDir holds the SQLite cache. Empty means the default.
	DataDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Wiki    WikiSettings
	LLM     LLMSettings
	Summary SummarySettings
	Search  SearchSettings
	Storage StorageSettings
}

// Defaults for tunable settings.
const (
	DefaultPageSize          = 25
	MaxPageSize              = 100
	DefaultRequestsPerSecond = 5.0
	DefaultMaxBodyChars      = 12000
	DefaultMaxTokens         = 1024
)

// DefaultAppSettings returns settings with sensible defaults.
// The wiki connection and LLM are left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Wiki: WikiSettings{
			Auth:              WikiAuthBasic,
			PageSize:          DefaultPageSize,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		LLM: LLMSettings{},
		Summary: SummarySettings{
			MaxBodyChars: DefaultMaxBodyChars,
			MaxTokens:    DefaultMaxTokens,
		},
		Search: SearchSettings{
			RetryOnce: true,
		},
	}
}
