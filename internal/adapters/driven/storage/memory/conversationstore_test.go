package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

func conversation(id string, msgs ...string) *domain.ConversationEntry {
	entry := &domain.ConversationEntry{ContentID: id, Origin: "https://wiki.example.com"}
	for _, m := range msgs {
		entry.Messages = append(entry.Messages, domain.Message{Role: domain.RoleUser, Content: m})
	}
	return entry
}

func TestConversationStore_PutGet(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	require.NoError(t, store.PutConversation(ctx, conversation("42", "a", "b")))

	got, err := store.GetConversation(ctx, domain.SummaryKey{ContentID: "42", Origin: "https://wiki.example.com"})
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "b", got.Messages[1].Content)
}

func TestConversationStore_Miss(t *testing.T) {
	store := NewConversationStore()

	_, err := store.GetConversation(context.Background(), domain.SummaryKey{ContentID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConversationStore_CopiesMessages(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()
	entry := conversation("1", "first")
	require.NoError(t, store.PutConversation(ctx, entry))

	entry.Messages[0].Content = "mutated"
	got, err := store.GetConversation(ctx, entry.Key())
	require.NoError(t, err)
	assert.Equal(t, "first", got.Messages[0].Content)

	got.Messages = append(got.Messages, domain.Message{Role: domain.RoleAssistant, Content: "x"})
	again, err := store.GetConversation(ctx, entry.Key())
	require.NoError(t, err)
	assert.Len(t, again.Messages, 1)
}

func TestConversationStore_DeleteAndClear(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()
	a, b := conversation("a", "1"), conversation("b", "2")
	require.NoError(t, store.PutConversation(ctx, a))
	require.NoError(t, store.PutConversation(ctx, b))

	require.NoError(t, store.DeleteConversation(ctx, a.Key()))
	_, err := store.GetConversation(ctx, a.Key())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.ClearConversations(ctx))
	_, err = store.GetConversation(ctx, b.Key())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
