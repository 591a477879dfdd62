// Package store: PostgreSQL-backed conversation-state persistence.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/dmayachting/charterdesk/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists conversation state in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("PostgresStore failed to open connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("PostgresStore ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("PostgresStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgresStore ready")
	return &PostgresStore{db: db}, nil
}

// GetConversationState returns the stored state, or nil when unknown.
func (s *PostgresStore) GetConversationState(userID string) (*models.ConversationState, error) {
	var stateJSON string
	err := s.db.QueryRow(`SELECT state_json FROM conversation_states WHERE user_id = $1`, userID).Scan(&stateJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetConversationState query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query conversation state for %s: %w", userID, err)
	}
	var state models.ConversationState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		slog.Error("PostgresStore GetConversationState unmarshal failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to decode conversation state for %s: %w", userID, err)
	}
	return &state, nil
}

// SaveConversationState inserts or replaces the state for its user.
func (s *PostgresStore) SaveConversationState(state *models.ConversationState) error {
	if state == nil || state.UserID == "" {
		return models.ErrEmptyUserID
	}
	state.UpdatedAt = time.Now()
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode conversation state for %s: %w", state.UserID, err)
	}
	_, err = s.db.Exec(`INSERT INTO conversation_states (user_id, state_json, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET state_json = EXCLUDED.state_json, updated_at = EXCLUDED.updated_at`,
		state.UserID, string(stateJSON), state.CreatedAt, state.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveConversationState failed", "error", err, "userID", state.UserID)
		return fmt.Errorf("failed to save conversation state for %s: %w", state.UserID, err)
	}
	return nil
}

// DeleteConversationState removes all stored state for a user.
func (s *PostgresStore) DeleteConversationState(userID string) error {
	_, err := s.db.Exec(`DELETE FROM conversation_states WHERE user_id = $1`, userID)
	if err != nil {
		slog.Error("PostgresStore DeleteConversationState failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to delete conversation state for %s: %w", userID, err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
