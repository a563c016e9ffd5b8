package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-wiki/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driven"
)

// DatabaseFile is the name of the cache database inside the data directory.
const DatabaseFile = "cache.db"

// Store is a SQLite-backed cache that provides the summary and
// conversation store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultDataDir returns ~/.sercha-wiki/data.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".sercha-wiki", "data"), nil
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.sercha-wiki/data/cache.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		dataDir = dir
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SummaryStore returns a SummaryStore interface backed by this store.
func (s *Store) SummaryStore() driven.SummaryStore {
	return &summaryStore{store: s}
}

// ConversationStore returns a ConversationStore interface backed by this store.
func (s *Store) ConversationStore() driven.ConversationStore {
	return &conversationStore{store: s}
}

// Stats returns row counts for the cache status display.
func (s *Store) Stats(ctx context.Context) (domain.CacheStats, error) {
	stats := domain.CacheStats{Path: s.path}
	row := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM summaries), (SELECT COUNT(*) FROM conversations)
	`)
	if err := row.Scan(&stats.Summaries, &stats.Conversations); err != nil {
		return domain.CacheStats{}, fmt.Errorf("counting cache rows: %w", err)
	}
	return stats, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// applyMigration executes one migration and records its version atomically.
func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(script); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ==================== Summary Store ====================

// summaryStore implements driven.SummaryStore.
type summaryStore struct {
	store *Store
}

var _ driven.SummaryStore = (*summaryStore)(nil)

// GetSummary retrieves a summary by key.
func (s *summaryStore) GetSummary(ctx context.Context, key domain.SummaryKey) (*domain.SummaryEntry, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT content_id, origin, title, summary_text, source_body_snapshot, model, stored_at
		FROM summaries WHERE content_id = ? AND origin = ?
	`, key.ContentID, key.Origin)

	var entry domain.SummaryEntry
	var storedAt sql.NullTime
	if err := row.Scan(&entry.ContentID, &entry.Origin, &entry.Title, &entry.SummaryText,
		&entry.SourceBodySnapshot, &entry.Model, &storedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning summary: %w", err)
	}
	if storedAt.Valid {
		entry.StoredAt = storedAt.Time.UTC()
	}

	return &entry, nil
}

// PutSummary stores or replaces a summary.
func (s *summaryStore) PutSummary(ctx context.Context, entry *domain.SummaryEntry) error {
	if entry == nil || !entry.Key().IsValid() {
		return fmt.Errorf("%w: summary key", domain.ErrInvalidInput)
	}
	storedAt := entry.StoredAt
	if storedAt.IsZero() {
		storedAt = time.Now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO summaries (content_id, origin, title, summary_text, source_body_snapshot, model, stored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_id, origin) DO UPDATE SET
			title = excluded.title,
			summary_text = excluded.summary_text,
			source_body_snapshot = excluded.source_body_snapshot,
			model = excluded.model,
			stored_at = excluded.stored_at
	`, entry.ContentID, entry.Origin, entry.Title, entry.SummaryText,
		entry.SourceBodySnapshot, entry.Model, storedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving summary: %w", err)
	}
	return nil
}

// DeleteSummary removes a summary. Deleting a missing key is not an error.
func (s *summaryStore) DeleteSummary(ctx context.Context, key domain.SummaryKey) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM summaries WHERE content_id = ? AND origin = ?", key.ContentID, key.Origin)
	if err != nil {
		return fmt.Errorf("deleting summary: %w", err)
	}
	return nil
}

// ClearSummaries removes every summary.
func (s *summaryStore) ClearSummaries(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM summaries"); err != nil {
		return fmt.Errorf("clearing summaries: %w", err)
	}
	return nil
}

// ==================== Conversation Store ====================

// conversationStore implements driven.ConversationStore.
type conversationStore struct {
	store *Store
}

var _ driven.ConversationStore = (*conversationStore)(nil)

// GetConversation retrieves a conversation by key.
func (s *conversationStore) GetConversation(ctx context.Context, key domain.SummaryKey) (*domain.ConversationEntry, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT content_id, origin, messages, stored_at
		FROM conversations WHERE content_id = ? AND origin = ?
	`, key.ContentID, key.Origin)

	var entry domain.ConversationEntry
	var messagesJSON string
	var storedAt sql.NullTime
	if err := row.Scan(&entry.ContentID, &entry.Origin, &messagesJSON, &storedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning conversation: %w", err)
	}

	if err := json.Unmarshal([]byte(messagesJSON), &entry.Messages); err != nil {
		return nil, fmt.Errorf("unmarshaling messages: %w", err)
	}
	if storedAt.Valid {
		entry.StoredAt = storedAt.Time.UTC()
	}

	return &entry, nil
}

// PutConversation stores or replaces a conversation.
func (s *conversationStore) PutConversation(ctx context.Context, entry *domain.ConversationEntry) error {
	if entry == nil || !entry.Key().IsValid() {
		return fmt.Errorf("%w: conversation key", domain.ErrInvalidInput)
	}
	messages := entry.Messages
	if messages == nil {
		messages = []domain.Message{}
	}
	messagesJSON, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshalling messages: %w", err)
	}
	storedAt := entry.StoredAt
	if storedAt.IsZero() {
		storedAt = time.Now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO conversations (content_id, origin, messages, stored_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(content_id, origin) DO UPDATE SET
			messages = excluded.messages,
			stored_at = excluded.stored_at
	`, entry.ContentID, entry.Origin, string(messagesJSON), storedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}
	return nil
}

// DeleteConversation removes a conversation.
func (s *conversationStore) DeleteConversation(ctx context.Context, key domain.SummaryKey) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM conversations WHERE content_id = ? AND origin = ?", key.ContentID, key.Origin)
	if err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	return nil
}

// ClearConversations removes every conversation.
func (s *conversationStore) ClearConversations(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM conversations"); err != nil {
		return fmt.Errorf("clearing conversations: %w", err)
	}
	return nil
}
