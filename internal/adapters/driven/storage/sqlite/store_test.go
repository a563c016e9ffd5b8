package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

const testOrigin = "https://example.atlassian.net/wiki"

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func key(id string) domain.SummaryKey {
	return domain.SummaryKey{ContentID: id, Origin: testOrigin}
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	dbPath := filepath.Join(dir, DatabaseFile)
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "path", "to", "db")

	store, err := NewStore(nested)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, nested)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.SummaryStore().PutSummary(ctx, &domain.SummaryEntry{
		ContentID: "1", Origin: testOrigin, SummaryText: "kept",
	}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.SummaryStore().GetSummary(ctx, key("1"))
	require.NoError(t, err)
	assert.Equal(t, "kept", got.SummaryText)

	var versions int
	require.NoError(t, reopened.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
}

func TestSummaryStore_RoundTrip(t *testing.T) {
	store := setupTestStore(t).SummaryStore()
	ctx := context.Background()
	storedAt := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	entry := &domain.SummaryEntry{
		ContentID:          "98765",
		Origin:             testOrigin,
		Title:              "Runbook",
		SummaryText:        "Restart the worker.",
		SourceBodySnapshot: "Step 1: restart the worker.",
		Model:              "llama3.2",
		StoredAt:           storedAt,
	}
	require.NoError(t, store.PutSummary(ctx, entry))

	got, err := store.GetSummary(ctx, key("98765"))
	require.NoError(t, err)
	assert.Equal(t, *entry, *got)
}

func TestSummaryStore_Miss(t *testing.T) {
	store := setupTestStore(t).SummaryStore()

	_, err := store.GetSummary(context.Background(), key("missing"))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSummaryStore_KeyIncludesOrigin(t *testing.T) {
	store := setupTestStore(t).SummaryStore()
	ctx := context.Background()

	require.NoError(t, store.PutSummary(ctx, &domain.SummaryEntry{
		ContentID: "1", Origin: testOrigin, SummaryText: "first wiki",
	}))

	_, err := store.GetSummary(ctx, domain.SummaryKey{ContentID: "1", Origin: "https://other.example.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSummaryStore_PutReplaces(t *testing.T) {
	store := setupTestStore(t).SummaryStore()
	ctx := context.Background()

	require.NoError(t, store.PutSummary(ctx, &domain.SummaryEntry{ContentID: "1", Origin: testOrigin, SummaryText: "old"}))
	require.NoError(t, store.PutSummary(ctx, &domain.SummaryEntry{ContentID: "1", Origin: testOrigin, SummaryText: "new"}))

	got, err := store.GetSummary(ctx, key("1"))
	require.NoError(t, err)
	assert.Equal(t, "new", got.SummaryText)
	assert.False(t, got.StoredAt.IsZero())
}

func TestSummaryStore_PutRejectsInvalidKey(t *testing.T) {
	store := setupTestStore(t).SummaryStore()

	err := store.PutSummary(context.Background(), &domain.SummaryEntry{ContentID: "1"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSummaryStore_DeleteAndClear(t *testing.T) {
	s := setupTestStore(t)
	store := s.SummaryStore()
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, store.PutSummary(ctx, &domain.SummaryEntry{ContentID: id, Origin: testOrigin, SummaryText: id}))
	}

	require.NoError(t, store.DeleteSummary(ctx, key("2")))
	require.NoError(t, store.DeleteSummary(ctx, key("never-stored")))
	_, err := store.GetSummary(ctx, key("2"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Summaries)

	require.NoError(t, store.ClearSummaries(ctx))
	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Summaries)
}

func TestConversationStore_RoundTrip(t *testing.T) {
	store := setupTestStore(t).ConversationStore()
	ctx := context.Background()

	entry := &domain.ConversationEntry{
		ContentID: "42",
		Origin:    testOrigin,
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: "sys"},
			{Role: domain.RoleUser, Content: "page"},
			{Role: domain.RoleAssistant, Content: "summary"},
			{Role: domain.RoleUser, Content: "Who owns this?"},
			{Role: domain.RoleAssistant, Content: "The platform team."},
		},
		StoredAt: time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.PutConversation(ctx, entry))

	got, err := store.GetConversation(ctx, key("42"))
	require.NoError(t, err)
	assert.Equal(t, *entry, *got)
	assert.Len(t, got.Visible(), 2)
}

func TestConversationStore_NilMessages(t *testing.T) {
	store := setupTestStore(t).ConversationStore()
	ctx := context.Background()

	require.NoError(t, store.PutConversation(ctx, &domain.ConversationEntry{ContentID: "1", Origin: testOrigin}))

	got, err := store.GetConversation(ctx, key("1"))
	require.NoError(t, err)
	assert.Empty(t, got.Messages)
}

func TestConversationStore_DeleteAndClear(t *testing.T) {
	s := setupTestStore(t)
	store := s.ConversationStore()
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		require.NoError(t, store.PutConversation(ctx, &domain.ConversationEntry{ContentID: id, Origin: testOrigin}))
	}

	require.NoError(t, store.DeleteConversation(ctx, key("a")))
	_, err := store.GetConversation(ctx, key("a"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.ClearConversations(ctx))
	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Conversations)
}

func TestStore_ClosedReturnsErrors(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.SummaryStore().GetSummary(context.Background(), key("1"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
