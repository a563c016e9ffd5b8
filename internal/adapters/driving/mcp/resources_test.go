package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

func TestExtractContentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid summary URI", uri: "wiki://summaries/98765", expected: "98765"},
		{name: "invalid prefix", uri: "sercha://summaries/98765", expected: ""},
		{name: "nested path", uri: "wiki://summaries/1/2", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractContentID(tt.uri))
		})
	}
}

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestServer_handleSummaryResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns cached summary with conversation", func(t *testing.T) {
		summary := newMockSummaryService()
		key := domain.SummaryKey{ContentID: "101", Origin: testOrigin}
		summary.entries[key] = domain.SummaryEntry{
			ContentID: "101", Origin: testOrigin, Title: "Deploy runbook", SummaryText: "Restart the worker.",
		}
		summary.conversation = []domain.Message{
			{Role: domain.RoleUser, Content: "How?"},
			{Role: domain.RoleAssistant, Content: "With the script."},
		}
		server := newTestServer(t, &mockSession{}, summary)

		result, err := server.handleSummaryResource(ctx, readRequest("wiki://summaries/101"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		var body summaryResource
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &body))
		assert.Equal(t, "Restart the worker.", body.Summary)
		assert.Equal(t, []string{"user: How?", "assistant: With the script."}, body.Conversation)
		assert.Zero(t, summary.generated)
	})

	t.Run("uncached summary is not generated", func(t *testing.T) {
		summary := newMockSummaryService()
		server := newTestServer(t, &mockSession{}, summary)

		_, err := server.handleSummaryResource(ctx, readRequest("wiki://summaries/101"))

		assert.Error(t, err)
		assert.Zero(t, summary.generated)
	})

	t.Run("bad URI", func(t *testing.T) {
		server := newTestServer(t, &mockSession{}, newMockSummaryService())

		_, err := server.handleSummaryResource(ctx, readRequest("wiki://other/101"))

		assert.Error(t, err)
	})

	t.Run("no summary service", func(t *testing.T) {
		server := newTestServer(t, &mockSession{}, nil)

		_, err := server.handleSummaryResource(ctx, readRequest("wiki://summaries/101"))

		assert.Error(t, err)
	})
}
