package domain

import "time"

// SeedLength is the number of leading conversation messages hidden from the user:
// the system prompt, the content context and the initial summary.
const SeedLength = 3

// SummaryKey identifies cached AI output for one piece of content on one wiki.
type SummaryKey struct {
	ContentID string `json:"content_id"`
	Origin    string `json:"origin"`
}

// String returns a printable form of the key.
func (k SummaryKey) String() string {
	return k.Origin + "#" + k.ContentID
}

// IsValid returns true if both parts of the key are set.
func (k SummaryKey) IsValid() bool {
	return k.ContentID != "" && k.Origin != ""
}

// SummaryEntry is a cached AI summary.
type SummaryEntry struct {
	ContentID string `json:"content_id"`
	Origin    string `json:"origin"`
	Title     string `json:"title"`

	// SummaryText is the AI-generated summary.
	SummaryText string `json:"summary"`

	// SourceBodySnapshot is the sanitised body the summary was generated from.
	SourceBodySnapshot string `json:"-"`

	// Model is the model that produced the summary.
	Model string `json:"model,omitempty"`

	StoredAt time.Time `json:"stored_at"`
}

// Key returns the entry's cache key.
func (e SummaryEntry) Key() SummaryKey {
	return SummaryKey{ContentID: e.ContentID, Origin: e.Origin}
}

// Role is the author of a conversation message.
type Role string

// Message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ConversationEntry is the follow-up conversation about one piece of content.
type ConversationEntry struct {
	ContentID string    `json:"content_id"`
	Origin    string    `json:"origin"`
	Messages  []Message `json:"messages"`
	StoredAt  time.Time `json:"stored_at"`
}

// Key returns the entry's cache key.
func (e ConversationEntry) Key() SummaryKey {
	return SummaryKey{ContentID: e.ContentID, Origin: e.Origin}
}

// Visible returns the messages shown to the user, skipping the seed.
func (e ConversationEntry) Visible() []Message {
	if len(e.Messages) <= SeedLength {
		return nil
	}
	out := make([]Message, len(e.Messages)-SeedLength)
	copy(out, e.Messages[SeedLength:])
	return out
}

// CacheStats describes the persistent summary cache.
type CacheStats struct {
	// Path is the database file. Empty for memory-only caches.
	Path string `json:"path,omitempty"`

	Summaries     int `json:"summaries"`
	Conversations int `json:"conversations"`

	// Degraded is true after a store failure switched the cache to memory-only.
	Degraded bool `json:"degraded"`
}
