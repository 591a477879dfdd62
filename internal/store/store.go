// Package store provides storage backends for CharterDesk conversation state.
//
// It includes an in-memory store for development and tests plus SQLite and
// PostgreSQL backends persisting the state as a JSON blob per user. Loss of
// the persistent copy is acceptable; the dialogue core is designed to run
// with the in-memory backend alone.
package store

import (
	"sync"
	"time"

	"github.com/dmayachting/charterdesk/internal/models"
)

// Store abstracts conversation-state persistence keyed by user ID.
type Store interface {
	// GetConversationState returns the stored state, or nil when the user
	// is unknown.
	GetConversationState(userID string) (*models.ConversationState, error)
	// SaveConversationState inserts or replaces the state for its user.
	SaveConversationState(state *models.ConversationState) error
	// DeleteConversationState removes all stored state for a user.
	DeleteConversationState(userID string) error
	// Close releases any underlying resources.
	Close() error
}

// Option configures a store backend.
type Option func(*Opts)

// Opts holds configuration shared by the database-backed stores.
type Opts struct {
	DSN string
}

// WithDSN sets the database DSN (file path for SQLite, URL for Postgres).
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// InMemoryStore keeps conversation state in a process-local map.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]*models.ConversationState
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]*models.ConversationState)}
}

// GetConversationState returns a deep-enough copy so callers can mutate the
// result without racing other readers.
func (s *InMemoryStore) GetConversationState(userID string) (*models.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return nil, nil
	}
	return copyState(st), nil
}

// SaveConversationState inserts or replaces the state for its user.
func (s *InMemoryStore) SaveConversationState(state *models.ConversationState) error {
	if state == nil || state.UserID == "" {
		return models.ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := copyState(state)
	stored.UpdatedAt = time.Now()
	s.states[state.UserID] = stored
	return nil
}

// DeleteConversationState removes all stored state for a user.
func (s *InMemoryStore) DeleteConversationState(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }

func copyState(st *models.ConversationState) *models.ConversationState {
	dup := *st
	dup.Outstanding = append([]models.Item(nil), st.Outstanding...)
	dup.History = append([]models.Message(nil), st.History...)
	if st.PlannedDates != nil {
		d := *st.PlannedDates
		dup.PlannedDates = &d
	}
	return &dup
}
