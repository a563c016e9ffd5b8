package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-wiki/internal/logger"
)

// Ensure SummaryService implements the interface.
var _ driving.SummaryService = (*SummaryService)(nil)

const emptyBodyPlaceholder = "(This page has no text content.)"

// DefaultPrompts returns the built-in prompt templates.
// They are used when no PromptStore is set or a template fails to load.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
func DefaultPrompts() map[string]string {
	return map[string]string{
		driven.PromptSummarySystem: `You summarise internal wiki pages for busy engineers. Write a short overview followed by the key points as a bulleted list. Do not invent facts that are not in the page.`,

		driven.PromptSummaryUser: `Summarise the wiki page below.

Title: %s

Content:
%s`,

		driven.PromptFollowupSystem: `You answer follow-up questions about a single wiki page. Use only the page content and the conversation so far. If the page does not contain the answer, say so.`,

		driven.PromptFollowupContext: `Here is the page we are discussing.

Title: %s

Content:
%s`,
	}
}

// SummaryOptions configures a SummaryService.
type SummaryOptions struct {
	// MaxBodyChars truncates the sanitised body sent to the model.
	MaxBodyChars int

	// MaxTokens bounds generated output.
	MaxTokens int
}

// SummaryService generates and caches AI summaries of wiki content and
// answers follow-up questions about them.
type SummaryService struct {
	content       driven.ContentSource
	sanitiser     driven.BodySanitiser
	llm           driven.LLMService
	prompts       driven.PromptStore
	cache         *SummaryCache
	conversations *ConversationService
	maxBodyChars  int
	maxTokens     int
	now           func() time.Time
}

// NewSummaryService creates a summary service. llm may be nil, in which case
// only cached summaries are served.
func NewSummaryService(
	content driven.ContentSource,
	sanitiser driven.BodySanitiser,
	llm driven.LLMService,
	cache *SummaryCache,
	conversations *ConversationService,
	opts SummaryOptions,
) *SummaryService {
	if opts.MaxBodyChars <= 0 {
		opts.MaxBodyChars = domain.DefaultMaxBodyChars
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = domain.DefaultMaxTokens
	}
	return &SummaryService{
		content:       content,
		sanitiser:     sanitiser,
		llm:           llm,
		cache:         cache,
		conversations: conversations,
		maxBodyChars:  opts.MaxBodyChars,
		maxTokens:     opts.MaxTokens,
		now:           time.Now,
	}
}

// SetPromptStore sets the store used to load prompt templates.
func (s *SummaryService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Available reports whether an LLM is configured.
func (s *SummaryService) Available() bool {
	return s.llm != nil
}

// Summarise returns the cached summary for key, generating it on a miss.
func (s *SummaryService) Summarise(ctx context.Context, key domain.SummaryKey, title string) (*driving.SummaryView, error) {
	if !key.IsValid() {
		return nil, fmt.Errorf("%w: summary key %q", domain.ErrInvalidInput, key)
	}

	if entry, ok := s.cache.Lookup(ctx, key); ok {
		if err := s.ensureConversation(ctx, entry); err != nil {
			return nil, err
		}
		return &driving.SummaryView{Entry: *entry, Cached: true}, nil
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	entry, cached, err := s.cache.GetOrCreate(ctx, key, s.computeFunc(key, title))
	if err != nil {
		return nil, err
	}
	if err := s.ensureConversation(ctx, entry); err != nil {
		return nil, err
	}
	return &driving.SummaryView{Entry: *entry, Cached: cached}, nil
}

// Regenerate discards the cached summary and generates a new one.
// The conversation is re-seeded from the new summary.
func (s *SummaryService) Regenerate(ctx context.Context, key domain.SummaryKey, title string) (*driving.SummaryView, error) {
	if !key.IsValid() {
		return nil, fmt.Errorf("%w: summary key %q", domain.ErrInvalidInput, key)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if title == "" {
		if old, ok := s.cache.Lookup(ctx, key); ok {
			title = old.Title
		}
	}

	if err := s.cache.Invalidate(ctx, key); err != nil {
		return nil, err
	}
	entry, _, err := s.cache.GetOrCreate(ctx, key, s.computeFunc(key, title))
	if err != nil {
		return nil, err
	}
	if _, err := s.conversations.Replace(ctx, key, s.seed(entry)); err != nil {
		return nil, err
	}
	logger.Debug("summary: regenerated %s", key)
	return &driving.SummaryView{Entry: *entry}, nil
}

// Ask sends question with the conversation history and records both turns
// once the model has answered.
func (s *SummaryService) Ask(ctx context.Context, key domain.SummaryKey, title, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	view, err := s.Summarise(ctx, key, title)
	if err != nil {
		return "", err
	}
	conv, err := s.conversations.GetOrInit(ctx, key, s.seed(&view.Entry))
	if err != nil {
		return "", err
	}

	userMsg := domain.Message{Role: domain.RoleUser, Content: question}
	messages := append(conv.Messages, userMsg)

	answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{MaxTokens: s.maxTokens})
	if err != nil {
		return "", fmt.Errorf("ask about %s: %w", key, err)
	}
	answer = strings.TrimSpace(answer)

	if _, err := s.conversations.Append(ctx, key, userMsg, domain.Message{Role: domain.RoleAssistant, Content: answer}); err != nil {
		return "", err
	}
	return answer, nil
}

// Conversation returns the user-visible follow-up messages for key.
func (s *SummaryService) Conversation(ctx context.Context, key domain.SummaryKey) ([]domain.Message, error) {
	conv, err := s.conversations.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return conv.Visible(), nil
}

// ClearConversation drops follow-up messages for key, keeping the summary.
func (s *SummaryService) ClearConversation(ctx context.Context, key domain.SummaryKey) error {
	entry, ok := s.cache.Lookup(ctx, key)
	if !ok {
		s.conversations.Delete(ctx, key)
		return nil
	}
	_, err := s.conversations.Reset(ctx, key, s.seed(entry))
	return err
}

// CacheStatus reports which keys already have a cached summary.
func (s *SummaryService) CacheStatus(ctx context.Context, keys []domain.SummaryKey) map[domain.SummaryKey]bool {
	status := make(map[domain.SummaryKey]bool, len(keys))
	for _, k := range keys {
		_, ok := s.cache.Lookup(ctx, k)
		status[k] = ok
	}
	return status
}

// ClearAll empties every cached summary and conversation.
func (s *SummaryService) ClearAll(ctx context.Context) error {
	s.conversations.ClearAll(ctx)
	return s.cache.ClearAll(ctx)
}

func (s *SummaryService) computeFunc(key domain.SummaryKey, title string) ComputeFunc {
	return func(ctx context.Context) (*domain.SummaryEntry, error) {
		body, err := s.content.ContentBody(ctx, key.ContentID)
		if err != nil {
			return nil, fmt.Errorf("fetch content body: %w", err)
		}
		text := truncateRunes(s.sanitiser.Sanitise(body), s.maxBodyChars)
		if text == "" {
			text = emptyBodyPlaceholder
		}

		logger.Debug("summary: generating for %s (%d chars)", key, len(text))
		summary, err := s.llm.Complete(ctx, driven.CompletionRequest{
			System:    s.prompt(driven.PromptSummarySystem),
			Prompt:    fmt.Sprintf(s.prompt(driven.PromptSummaryUser), title, text),
			MaxTokens: s.maxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("generate summary: %w", err)
		}

		return &domain.SummaryEntry{
			ContentID:          key.ContentID,
			Origin:             key.Origin,
			Title:              title,
			SummaryText:        strings.TrimSpace(summary),
			SourceBodySnapshot: text,
			Model:              s.llm.ModelName(),
			StoredAt:           s.now(),
		}, nil
	}
}

func (s *SummaryService) ensureConversation(ctx context.Context, entry *domain.SummaryEntry) error {
	_, err := s.conversations.GetOrInit(ctx, entry.Key(), s.seed(entry))
	return err
}

// seed builds the hidden opening of a conversation: system prompt,
// page context, and the summary as the assistant's first turn.
func (s *SummaryService) seed(entry *domain.SummaryEntry) []domain.Message {
	return []domain.Message{
		{Role: domain.RoleSystem, Content: s.prompt(driven.PromptFollowupSystem)},
		{Role: domain.RoleUser, Content: fmt.Sprintf(s.prompt(driven.PromptFollowupContext), entry.Title, entry.SourceBodySnapshot)},
		{Role: domain.RoleAssistant, Content: entry.SummaryText},
	}
}

func (s *SummaryService) prompt(name string) string {
	if s.prompts != nil {
		if p, err := s.prompts.Load(name); err == nil && p != "" {
			return p
		}
	}
	return DefaultPrompts()[name]
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
