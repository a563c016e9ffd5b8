package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driven"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

// mockSearchAPI serves a scripted sequence of responses and records every call.
type mockSearchAPI struct {
	mu        sync.Mutex
	responses []mockSearchResponse
	calls     []mockSearchCall

	// gate, when set, blocks each call until a value is received.
	gate chan struct{}
	// started receives once per call, before blocking on gate.
	started chan struct{}
}

type mockSearchResponse struct {
	page *domain.SearchPage
	err  error
}

type mockSearchCall struct {
	query  string
	limit  int
	offset int
}

func (m *mockSearchAPI) respond(page *domain.SearchPage, err error) *mockSearchAPI {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockSearchResponse{page: page, err: err})
	return m
}

func (m *mockSearchAPI) Search(ctx context.Context, query string, limit, offset int) (*domain.SearchPage, error) {
	m.mu.Lock()
	m.calls = append(m.calls, mockSearchCall{query: query, limit: limit, offset: offset})
	var resp mockSearchResponse
	if len(m.responses) > 0 {
		resp = m.responses[0]
		m.responses = m.responses[1:]
	} else {
		resp = mockSearchResponse{page: &domain.SearchPage{TotalCount: 0}}
	}
	started, gate := m.started, m.gate
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return resp.page, resp.err
}

func (m *mockSearchAPI) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockSearchAPI) lastCall() mockSearchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

// page builds a page of results with the given IDs.
func page(total int, ids ...string) *domain.SearchPage {
	items := make([]domain.Result, 0, len(ids))
	for _, id := range ids {
		items = append(items, domain.Result{ID: id, Title: "Title " + id, Type: domain.ContentTypePage})
	}
	return &domain.SearchPage{Items: items, TotalCount: total}
}

// seqIDs returns n IDs starting at from, e.g. seqIDs(1, 3) = 1, 2, 3.
func seqIDs(from, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%d", from+i)
	}
	return ids
}

// mockWiki is a WikiClient backed by an in-memory map of bodies.
type mockWiki struct {
	mockSearchAPI

	bodies    map[string]string
	bodyCalls atomic.Int32
	bodyErr   error
}

func newMockWiki() *mockWiki {
	return &mockWiki{bodies: make(map[string]string)}
}

func (w *mockWiki) ContentBody(_ context.Context, id string) (string, error) {
	w.bodyCalls.Add(1)
	if w.bodyErr != nil {
		return "", w.bodyErr
	}
	body, ok := w.bodies[id]
	if !ok {
		return "", &domain.NetworkError{Op: "content body", StatusCode: 404, Err: domain.ErrNotFound}
	}
	return body, nil
}

func (w *mockWiki) Origin() string {
	return "https://wiki.example.com"
}

// mockLLM answers with a fixed prefix and records what it was sent.
type mockLLM struct {
	mu          sync.Mutex
	completions []driven.CompletionRequest
	chats       [][]domain.Message
	calls       atomic.Int32

	// gate, when set, blocks each call until closed.
	gate chan struct{}
	err  error
}

func (m *mockLLM) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	m.calls.Add(1)
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	m.mu.Lock()
	m.completions = append(m.completions, req)
	n := len(m.completions)
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return fmt.Sprintf("summary #%d", n), nil
}

func (m *mockLLM) Chat(_ context.Context, messages []domain.Message, _ driven.ChatOptions) (string, error) {
	m.calls.Add(1)
	m.mu.Lock()
	cp := make([]domain.Message, len(messages))
	copy(cp, messages)
	m.chats = append(m.chats, cp)
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	last := messages[len(messages)-1]
	return "answer to " + strings.ToLower(last.Content), nil
}

func (m *mockLLM) ModelName() string            { return "mock-model" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// passthroughSanitiser trims whitespace only.
type passthroughSanitiser struct{}

func (passthroughSanitiser) Sanitise(s string) string { return strings.TrimSpace(s) }

// failingSummaryStore fails every operation.
type failingSummaryStore struct {
	calls atomic.Int32
}

var errStoreDown = errors.New("disk I/O error")

func (s *failingSummaryStore) GetSummary(context.Context, domain.SummaryKey) (*domain.SummaryEntry, error) {
	s.calls.Add(1)
	return nil, errStoreDown
}

func (s *failingSummaryStore) PutSummary(context.Context, *domain.SummaryEntry) error {
	s.calls.Add(1)
	return errStoreDown
}

func (s *failingSummaryStore) DeleteSummary(context.Context, domain.SummaryKey) error {
	s.calls.Add(1)
	return errStoreDown
}

func (s *failingSummaryStore) ClearSummaries(context.Context) error {
	s.calls.Add(1)
	return errStoreDown
}

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}
