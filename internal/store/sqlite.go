// Package store: SQLite-backed conversation-state persistence.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/dmayachting/charterdesk/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database
// directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists conversation state in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN. The DSN is a
// file path; its directory is created if missing.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("SQLiteStore failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("SQLiteStore failed to open connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLiteStore ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("SQLiteStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLiteStore ready", "dsn", cfg.DSN)
	return &SQLiteStore{db: db}, nil
}

// GetConversationState returns the stored state, or nil when unknown.
func (s *SQLiteStore) GetConversationState(userID string) (*models.ConversationState, error) {
	var stateJSON string
	err := s.db.QueryRow(`SELECT state_json FROM conversation_states WHERE user_id = ?`, userID).Scan(&stateJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetConversationState query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query conversation state for %s: %w", userID, err)
	}
	var state models.ConversationState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		slog.Error("SQLiteStore GetConversationState unmarshal failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to decode conversation state for %s: %w", userID, err)
	}
	return &state, nil
}

// SaveConversationState inserts or replaces the state for its user.
func (s *SQLiteStore) SaveConversationState(state *models.ConversationState) error {
	if state == nil || state.UserID == "" {
		return models.ErrEmptyUserID
	}
	state.UpdatedAt = time.Now()
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode conversation state for %s: %w", state.UserID, err)
	}
	_, err = s.db.Exec(`INSERT INTO conversation_states (user_id, state_json, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET state_json = excluded.state_json, updated_at = excluded.updated_at`,
		state.UserID, string(stateJSON), state.CreatedAt, state.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveConversationState failed", "error", err, "userID", state.UserID)
		return fmt.Errorf("failed to save conversation state for %s: %w", state.UserID, err)
	}
	slog.Debug("SQLiteStore SaveConversationState succeeded", "userID", state.UserID)
	return nil
}

// DeleteConversationState removes all stored state for a user.
func (s *SQLiteStore) DeleteConversationState(userID string) error {
	_, err := s.db.Exec(`DELETE FROM conversation_states WHERE user_id = ?`, userID)
	if err != nil {
		slog.Error("SQLiteStore DeleteConversationState failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to delete conversation state for %s: %w", userID, err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
