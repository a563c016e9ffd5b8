package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-wiki/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driven"
)

type summaryFixture struct {
	wiki          *mockWiki
	llm           *mockLLM
	summaries     *memory.SummaryStore
	conversations *memory.ConversationStore
	svc           *SummaryService
}

func newSummaryFixture(t *testing.T, opts SummaryOptions) *summaryFixture {
	t.Helper()
	f := &summaryFixture{
		wiki:          newMockWiki(),
		llm:           &mockLLM{},
		summaries:     memory.NewSummaryStore(),
		conversations: memory.NewConversationStore(),
	}
	f.wiki.bodies[testKey.ContentID] = "  <p>Restart the service with systemctl.</p>  "
	f.svc = NewSummaryService(
		f.wiki,
		passthroughSanitiser{},
		f.llm,
		NewSummaryCache(f.summaries),
		NewConversationService(f.conversations),
		opts,
	)
	return f
}

func TestSummaryService_SummariseGeneratesThenCaches(t *testing.T) {
	f := newSummaryFixture(t, SummaryOptions{})
	ctx := context.Background()

	view, err := f.svc.Summarise(ctx, testKey, "Runbook")
	require.NoError(t, err)
	assert.False(t, view.Cached)
	assert.Equal(t, "summary #1", view.Entry.SummaryText)
	assert.Equal(t, "Runbook", view.Entry.Title)
	assert.Equal(t, "mock-model", view.Entry.Model)
	assert.Equal(t, "<p>Restart the service with systemctl.</p>", view.Entry.SourceBodySnapshot)

	view, err = f.svc.Summarise(ctx, testKey, "Runbook")
	require.NoError(t, err)
	assert.True(t, view.Cached)
	assert.Equal(t, int32(1), f.llm.calls.Load())
	assert.Equal(t, int32(1), f.wiki.bodyCalls.Load())
}

func TestSummaryService_PromptCarriesTitleAndBody(t *testing.T) {
	f := newSummaryFixture(t, SummaryOptions{})

	_, err := f.svc.Summarise(context.Background(), testKey, "Runbook")
	require.NoError(t, err)

	require.Len(t, f.llm.completions, 1)
	req := f.llm.completions[0]
	assert.Equal(t, DefaultPrompts()[driven.PromptSummarySystem], req.System)
	assert.Contains(t, req.Prompt, "Title: Runbook")
	assert.Contains(t, req.Prompt, "Restart the service")
	assert.Equal(t, domain.DefaultMaxTokens, req.MaxTokens)
}

func TestSummaryService_UsesPromptStoreOverrides(t *testing.T) {
	f := newSummaryFixture(t, SummaryOptions{})
	f.svc.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptSummarySystem: "Be brief.",
	}})

	_, err := f.svc.Summarise(context.Background(), testKey, "Runbook")
	require.NoError(t, err)

	assert.Equal(t, "Be brief.", f.llm.completions[0].System)
	// Missing overrides fall back to built-ins.
	assert.Contains(t, f.llm.completions[0].Prompt, "Summarise the wiki page below.")
}

func TestSummaryService_TruncatesBody(t *testing.T) {
	f := newSummaryFixture(t, SummaryOptions{MaxBodyChars: 10})
	f.wiki.bodies[testKey.ContentID] = strings.Repeat("é", 50)

	view, err := f.svc.Summarise(context.Background(), testKey, "Long")
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("é", 10), view.Entry.SourceBodySnapshot)
}

func TestSummaryService_EmptyBodyUsesPlaceholder(t *testing.T) {
	f := newSummaryFixture(t, SummaryOptions{})
	f.wiki.bodies[testKey.ContentID] = "   "

	view, err := f.svc.Summarise(context.Background(), testKey, "Empty")
	require.NoError(t, err)

	assert.Equal(t, emptyBodyPlaceholder, view.Entry.SourceBodySnapshot)
}

func TestSummaryService_ConcurrentSummariseCallsModelOnce(t *testing.T) {
	f := newSummaryFixture(t, SummaryOptions{})
	f.llm.gate = make(chan struct{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			view, err := f.svc.Summarise(ctx, testKey, "Runbook")
			if assert.NoError(t, err) {
				assert.Equal(t, "summary #1", view.Entry.SummaryText)
			}
		}()
	}

	require.Eventually(t, func() bool { return f.llm.calls.Load() == 1 }, timeout, tick)
	close(f.llm.gate)
	wg.Wait()

	assert.Equal(t, int32(1), f.llm.calls.Load())
}

func TestSummaryService_NoLLM(t *testing.T) {
	summaries := memory.NewSummaryStore()
	svc := NewSummaryService(newMockWiki(), passthroughSanitiser{}, nil,
		NewSummaryCache(summaries), NewConversationService(nil), SummaryOptions{})
	ctx := context.Background()
	assert.False(t, svc.Available())

	_, err := svc.Summarise(ctx, testKey, "Runbook")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	// Cached summaries are still served.
	_ = summaries.PutSummary(ctx, &domain.SummaryEntry{ContentID: testKey.ContentID, Origin: testKey.Origin, SummaryText: "cached"})
	view, err := svc.Summarise(ctx, testKey, "Runbook")
	require.NoError(t, err)
	assert.True(t, view.Cached)
	assert.Equal(t, "cached", view.Entry.SummaryText)

	_, err = svc.Ask(ctx, testKey, "Runbook", "why?")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	_, err = svc.Regenerate(ctx, testKey, "Runbook")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestSummaryService_InvalidKey(t *testing.T) {
	f := newSummaryFixture(t, SummaryOptions{})

	_, err := f.svc.Summarise(context.Background(), domain.SummaryKey{ContentID: "1"}, "x")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSummaryService_BodyFetchErrorNotCached(t *testing.T) {
	f := newSummaryFixture(t, SummaryOptions{})
	f.wiki.bodyErr = &domain.NetworkError{Op: "content body", StatusCode: 500, Err: errors.New("boom")}
	ctx := context.Background()

	_, err := f.svc.Summarise(ctx, testKey, "Runbook")
	var netErr *domain.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, int32(0), f.llm.calls.Load())

	f.wiki.bodyErr = nil
	view, err := f.svc.Summarise(ctx, testKey, "Runbook")
	require.NoError(t, err)
	assert.False(t, view.Cached)
}

func TestSummaryService_SummariseSeedsHiddenConversation(t *testing.T) {
	f := newSummaryFixture(t, SummaryOptions{})
	ctx := context.Background()

	_, err := f.svc.Summarise(ctx, testKey, "Runbook")
	require.NoError(t, err)

	stored, err := f.conversations.GetConversation(ctx, testKey)
	require.NoError(t, err)
	require.Len(t, stored.Messages, domain.SeedLength)
	assert.Equal(t, domain.RoleSystem, stored.Messages[0].Role)
	assert.Contains(t, stored.Messages[1].Content, "Restart the service")
	assert.Equal(t, "summary #1", stored.Messages[2].Content)

	visible, err := f.svc.Conversation(ctx, testKey)
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestSummaryService_AskAppendsBothTurns(t *testing.T) {
	f := newSummaryFixture(t, SummaryOptions{})
	ctx := context.Background()

	answer, err := f.svc.Ask(ctx, testKey, "Runbook", "  Who is on call?  ")
	require.NoError(t, err)
	assert.Equal(t, "answer to who is on call?", answer)

	require.Len(t, f.llm.chats, 1)
	sent := f.llm.chats[0]
	require.Len(t, sent, domain.SeedLength+1)
	assert.Equal(t, "summary #1", sent[2].Content)
	assert.Equal(t, "Who is on call?", sent[3].Content)

	visible, err := f.svc.Conversation(ctx, testKey)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, domain.RoleUser, visible[0].Role)
	assert.Equal(t, domain.RoleAssistant, visible[1].Role)

	_, err = f.svc.Ask(ctx, testKey, "Runbook", "And after hours?")
	require.NoError(t, err)
	assert.Len(t, f.llm.chats[1], domain.SeedLength+3)
}

func TestSummaryService_AskFailureLeavesConversationUnchanged(t *testing.T) {
	f := newSummaryFixture(t, SummaryOptions{})
	ctx := context.Background()
	_, err := f.svc.Summarise(ctx, testKey, "Runbook")
	require.NoError(t, err)

	f.llm.err = errors.New("overloaded")
	_, err = f.svc.Ask(ctx, testKey, "Runbook", "question")
	require.Error(t, err)

	visible, err := f.svc.Conversation(ctx, testKey)
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestSummaryService_AskRejectsEmptyQuestion(t *testing.T) {
	f := newSummaryFixture(t, SummaryOptions{})

	_, err := f.svc.Ask(context.Background(), testKey, "Runbook", "   ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSummaryService_RegenerateReplacesSummaryAndConversation(t *testing.T) {
	f := newSummaryFixture(t, SummaryOptions{})
	ctx := context.Background()
	_, err := f.svc.Ask(ctx, testKey, "Runbook", "question")
	require.NoError(t, err)

	view, err := f.svc.Regenerate(ctx, testKey, "")
	require.NoError(t, err)
	assert.Equal(t, "summary #2", view.Entry.SummaryText)
	assert.Equal(t, "Runbook", view.Entry.Title)

	stored, err := f.summaries.GetSummary(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, "summary #2", stored.SummaryText)

	conv, err := f.conversations.GetConversation(ctx, testKey)
	require.NoError(t, err)
	require.Len(t, conv.Messages, domain.SeedLength)
	assert.Equal(t, "summary #2", conv.Messages[2].Content)
}

func TestSummaryService_ClearConversationKeepsSummary(t *testing.T) {
	f := newSummaryFixture(t, SummaryOptions{})
	ctx := context.Background()
	_, err := f.svc.Ask(ctx, testKey, "Runbook", "question")
	require.NoError(t, err)

	require.NoError(t, f.svc.ClearConversation(ctx, testKey))

	visible, _ := f.svc.Conversation(ctx, testKey)
	assert.Empty(t, visible)
	view, err := f.svc.Summarise(ctx, testKey, "Runbook")
	require.NoError(t, err)
	assert.True(t, view.Cached)
}

func TestSummaryService_CacheStatusAndClearAll(t *testing.T) {
	f := newSummaryFixture(t, SummaryOptions{})
	ctx := context.Background()
	other := domain.SummaryKey{ContentID: "99", Origin: testKey.Origin}
	_, err := f.svc.Summarise(ctx, testKey, "Runbook")
	require.NoError(t, err)

	status := f.svc.CacheStatus(ctx, []domain.SummaryKey{testKey, other})
	assert.True(t, status[testKey])
	assert.False(t, status[other])

	require.NoError(t, f.svc.ClearAll(ctx))

	status = f.svc.CacheStatus(ctx, []domain.SummaryKey{testKey})
	assert.False(t, status[testKey])
	assert.Equal(t, 0, f.summaries.Len())
	_, err = f.conversations.GetConversation(ctx, testKey)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "abc", truncateRunes("abc", 0))
}
