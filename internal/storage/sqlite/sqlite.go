// Package sqlite implements storage.Storage on an embedded SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mandalnilabja/scenesculpt/internal/storage/encryption"
)

// Storage implements storage.Storage using SQLite.
type Storage struct {
	db        *sql.DB
	encryptor encryption.Encryptor
	mu        sync.RWMutex
	closed    bool
}

// New opens dbPath with the default machine or env derived encryptor.
func New(dbPath string) (*Storage, error) {
	enc, err := encryption.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}
	return NewWithEncryptor(dbPath, enc)
}

// NewWithEncryptor opens dbPath and seals credentials with enc.
func NewWithEncryptor(dbPath string, enc encryption.Encryptor) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Storage{
		db:        db,
		encryptor: enc,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

func (s *Storage) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS credentials (
		id          TEXT PRIMARY KEY,
		provider    TEXT NOT NULL,
		name        TEXT NOT NULL UNIQUE,
		api_key     TEXT NOT NULL,
		is_default  INTEGER DEFAULT 0,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_creds_provider ON credentials(provider);

	CREATE TABLE IF NOT EXISTS generation_logs (
		id            TEXT PRIMARY KEY,
		request_id    TEXT NOT NULL,
		mode          TEXT NOT NULL,
		engine        TEXT NOT NULL,
		prompt        TEXT NOT NULL,
		prompt_tokens INTEGER DEFAULT 0,
		steps         INTEGER NOT NULL,
		cfg_scale     INTEGER NOT NULL,
		style_preset  TEXT NOT NULL,
		sampler       TEXT,
		status        TEXT NOT NULL,
		error_kind    TEXT,
		error_message TEXT,
		duration_ms   INTEGER,
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_generations_created ON generation_logs(created_at);
	CREATE INDEX IF NOT EXISTS idx_generations_status ON generation_logs(status);

	CREATE TABLE IF NOT EXISTS admin_settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// generateID creates a short unique ID with a prefix.
func generateID(prefix string) string {
	return prefix + "_" + uuid.New().String()[:8]
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullString maps "" to SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
