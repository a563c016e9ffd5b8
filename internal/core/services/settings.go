package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyWikiBaseURL      = "wiki.base_url"
	KeyWikiUsername     = "wiki.username"
	KeyWikiToken        = "wiki.token"
	KeyWikiAuth         = "wiki.auth"
	KeyWikiPageSize     = "wiki.page_size"
	KeyWikiRequestsPerS = "wiki.requests_per_second"
	KeyLLMProvider      = "llm.provider"
	KeyLLMModel         = "llm.model"
	KeyLLMBaseURL       = "llm.base_url"
	KeyLLMAPIKey        = "llm.api_key"
	KeySummaryMaxBody   = "summary.max_body_chars"
	KeySummaryMaxTokens = "summary.max_tokens"
	KeySearchRetryOnce  = "search.retry_once"
	KeyStorageDataDir   = "storage.data_dir"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
)

var settingKinds = map[string]valueKind{
	KeyWikiBaseURL:      kindString,
	KeyWikiUsername:     kindString,
	KeyWikiToken:        kindString,
	KeyWikiAuth:         kindString,
	KeyWikiPageSize:     kindInt,
	KeyWikiRequestsPerS: kindFloat,
	KeyLLMProvider:      kindString,
	KeyLLMModel:         kindString,
	KeyLLMBaseURL:       kindString,
	KeyLLMAPIKey:        kindString,
	KeySummaryMaxBody:   kindInt,
	KeySummaryMaxTokens: kindInt,
	KeySearchRetryOnce:  kindBool,
	KeyStorageDataDir:   kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings, filling unset values with defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	pageSize := s.getInt(KeyWikiPageSize, defaults.Wiki.PageSize)
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	settings := &domain.AppSettings{
		Wiki: domain.WikiSettings{
			BaseURL:           s.configStore.GetString(KeyWikiBaseURL),
			Username:          s.configStore.GetString(KeyWikiUsername),
			Token:             s.configStore.GetString(KeyWikiToken),
			Auth:              s.getAuth(defaults.Wiki.Auth),
			PageSize:          pageSize,
			RequestsPerSecond: s.getFloat(KeyWikiRequestsPerS, defaults.Wiki.RequestsPerSecond),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(defaults.LLM.Provider),
			Model:    s.getString(KeyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(KeyLLMBaseURL),
			APIKey:   s.configStore.GetString(KeyLLMAPIKey),
		},
		Summary: domain.SummarySettings{
			MaxBodyChars: s.getInt(KeySummaryMaxBody, defaults.Summary.MaxBodyChars),
			MaxTokens:    s.getInt(KeySummaryMaxTokens, defaults.Summary.MaxTokens),
		},
		Search: domain.SearchSettings{
			RetryOnce: s.getBool(KeySearchRetryOnce, defaults.Search.RetryOnce),
		},
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(KeyStorageDataDir),
		},
	}

	if settings.LLM.Model == "" && settings.LLM.Provider.IsValid() {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}

	return settings, nil
}

// Save persists application settings. Empty secrets are not written,
// so saving never erases a stored token or key.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key    string
		value  any
		secret bool
	}{
		{KeyWikiBaseURL, settings.Wiki.BaseURL, false},
		{KeyWikiUsername, settings.Wiki.Username, false},
		{KeyWikiToken, settings.Wiki.Token, true},
		{KeyWikiAuth, string(settings.Wiki.Auth), false},
		{KeyWikiPageSize, settings.Wiki.PageSize, false},
		{KeyWikiRequestsPerS, settings.Wiki.RequestsPerSecond, false},
		{KeyLLMProvider, settings.LLM.Provider.String(), false},
		{KeyLLMModel, settings.LLM.Model, false},
		{KeyLLMBaseURL, settings.LLM.BaseURL, false},
		{KeyLLMAPIKey, settings.LLM.APIKey, true},
		{KeySummaryMaxBody, settings.Summary.MaxBodyChars, false},
		{KeySummaryMaxTokens, settings.Summary.MaxTokens, false},
		{KeySearchRetryOnce, settings.Search.RetryOnce, false},
		{KeyStorageDataDir, settings.Storage.DataDir, false},
	}

	for _, v := range values {
		if v.secret && v.value == "" {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses and stores a single setting.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	if err := validateSetting(key, value); err != nil {
		return err
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	default:
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func validateSetting(key, value string) error {
	switch key {
	case KeyWikiAuth:
		if !domain.WikiAuth(value).IsValid() {
			return fmt.Errorf("%w: wiki.auth must be basic or bearer", domain.ErrInvalidInput)
		}
	case KeyLLMProvider:
		if value != "" && !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, value)
		}
	case KeyWikiBaseURL:
		if value != "" && !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("%w: wiki.base_url must start with http:// or https://", domain.ErrInvalidInput)
		}
	}
	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetWikiToken stores wiki credentials. An empty username keeps the stored one.
func (s *SettingsService) SetWikiToken(username, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: token is empty", domain.ErrInvalidInput)
	}
	if username != "" {
		if err := s.configStore.Set(KeyWikiUsername, username); err != nil {
			return fmt.Errorf("save %s: %w", KeyWikiUsername, err)
		}
	}
	if err := s.configStore.Set(KeyWikiToken, strings.TrimSpace(token)); err != nil {
		return fmt.Errorf("save %s: %w", KeyWikiToken, err)
	}
	return nil
}

// Validate checks the wiki connection is configured.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if !settings.Wiki.IsConfigured() {
		return fmt.Errorf("%w: set %s, %s and %s (or use wiki.auth = bearer)",
			domain.ErrWikiUnavailable, KeyWikiBaseURL, KeyWikiToken, KeyWikiUsername)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Keys returns every recognised config key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getAuth(defaultVal domain.WikiAuth) domain.WikiAuth {
	auth := domain.WikiAuth(s.configStore.GetString(KeyWikiAuth))
	if !auth.IsValid() {
		return defaultVal
	}
	return auth
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(KeyLLMProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
