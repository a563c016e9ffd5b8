package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShowCmd(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	env.settings.settings.Wiki.BaseURL = "https://example.atlassian.net/wiki"
	env.settings.settings.Wiki.Username = "ada@example.com"
	env.settings.settings.Wiki.Token = "ATATT3xFfGF0-secret-token"
	env.settings.settings.LLM = domain.LLMSettings{Provider: domain.AIProviderAnthropic, Model: "claude", APIKey: "sk-ant-1234567890"}

	out, err := execute("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Base URL: https://example.atlassian.net/wiki")
	assert.Contains(t, out, "Username: ada@example.com")
	assert.Contains(t, out, "Token: ATAT...oken")
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "Provider: Anthropic (cloud)")
	assert.Contains(t, out, "API Key: sk-a...7890")
	assert.Contains(t, out, "Status: configured")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShowCmd_Unconfigured(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	env.settings.validateErr = errors.New("wiki connection unavailable")

	out, err := execute("settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Base URL: (not set)")
	assert.Contains(t, out, "Token: (not set)")
	assert.Contains(t, out, "Provider: (not set)")
	assert.Contains(t, out, "Status: not configured")
	assert.Contains(t, out, "Warning: wiki connection unavailable")
}

func TestSettingsSetCmd(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "set", "wiki.base_url", "https://wiki.example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://wiki.example.com", env.settings.set["wiki.base_url"])
	assert.Contains(t, out, "Set wiki.base_url = https://wiki.example.com")

	out, err = execute("settings", "set", "llm.api_key", "sk-1234567890abcdef")
	require.NoError(t, err)
	assert.Contains(t, out, "Set llm.api_key = sk-1...cdef")
}

func TestSettingsSetCmd_Invalid(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	env.settings.setErr = domain.ErrInvalidInput

	_, err := execute("settings", "set", "wiki.auth", "kerberos")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsKeysCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "keys")

	require.NoError(t, err)
	assert.Contains(t, out, "llm.provider\nwiki.base_url\n")
}

func TestSettingsTokenCmd(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeWithInput("my-token\n", "settings", "token", "--username", "ada@example.com")

	require.NoError(t, err)
	assert.Equal(t, "my-token", env.settings.token)
	assert.Equal(t, "ada@example.com", env.settings.username)
	assert.Contains(t, out, "Token saved.")
	assert.NotContains(t, out, "my-token")
}

func TestSettingsTokenCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeWithInput("\n", "settings", "token")

	assert.ErrorContains(t, err, "token is required")
}

func TestSettingsLLMCmd(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeWithInput("3\n\nsk-ant-key\n", "settings", "llm")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, env.settings.settings.LLM.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], env.settings.settings.LLM.Model)
	assert.Equal(t, "sk-ant-key", env.settings.settings.LLM.APIKey)
	assert.Contains(t, out, "LLM provider configured: Anthropic (cloud)")
}

func TestSettingsLLMCmd_Ollama(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeWithInput("1\nqwen2.5\n", "settings", "llm")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, env.settings.settings.LLM.Provider)
	assert.Equal(t, "qwen2.5", env.settings.settings.LLM.Model)
}

func TestSettingsCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	settingsService = nil

	_, err := execute("settings", "show")

	assert.ErrorIs(t, err, errSettingsNotConfigured)
}

func TestIsSecretKey(t *testing.T) {
	assert.True(t, isSecretKey("wiki.token"))
	assert.True(t, isSecretKey("llm.api_key"))
	assert.False(t, isSecretKey("wiki.base_url"))
}
