package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // sqlite driver
)

// TokenKey is the metadata key the bearer token is stored under.
const TokenKey = "auth_token"

// SessionStore holds the current bearer token.
type SessionStore interface {
	Save(ctx context.Context, token string) error
	// Get returns the token, or false when none is stored or it cannot be read.
	Get(ctx context.Context) (string, bool)
	Clear(ctx context.Context) error
}

// SQLiteSessionStore keeps the token in a local sqlite metadata table.
type SQLiteSessionStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ SessionStore = (*SQLiteSessionStore)(nil)

// OpenSessionStore opens (creating if needed) the sqlite database at dsn.
func OpenSessionStore(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteSessionStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create metadata table: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteSessionStore{db: db, logger: logger}, nil
}

// Save overwrites the stored token.
func (s *SQLiteSessionStore) Save(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, TokenKey, []byte(token))
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", TokenKey, err)
	}
	return nil
}

// Get reads the stored token. Read failures are logged and reported as absence.
func (s *SQLiteSessionStore) Get(ctx context.Context) (string, bool) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, TokenKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		s.logger.WarnContext(ctx, "read session token", "error", err)
		return "", false
	}
	if len(value) == 0 {
		return "", false
	}
	return string(value), true
}

// Clear removes the stored token.
func (s *SQLiteSessionStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, TokenKey)
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", TokenKey, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteSessionStore) Close() error {
	return s.db.Close()
}
