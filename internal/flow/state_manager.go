// Package flow: store-backed conversation state management.
package flow

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmayachting/charterdesk/internal/models"
	"github.com/dmayachting/charterdesk/internal/store"
)

// StateManager mediates access to conversation state. Besides lazy creation
// it owns one mutex per user ID so that two concurrent turns for the same
// user cannot interleave their read-modify-write cycles and corrupt the
// outstanding-item bookkeeping.
type StateManager struct {
	store store.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStateManager creates a StateManager backed by a Store.
func NewStateManager(st store.Store) *StateManager {
	slog.Debug("flow.NewStateManager: creating state manager")
	return &StateManager{store: st, locks: make(map[string]*sync.Mutex)}
}

// LockUser acquires the per-user turn lock and returns its release func.
// Lock entries live for the process lifetime, like the states they guard.
func (m *StateManager) LockUser(userID string) func() {
	m.mu.Lock()
	lock, ok := m.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[userID] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Get returns the state for a user, or nil when none exists yet.
func (m *StateManager) Get(userID string) (*models.ConversationState, error) {
	if userID == "" {
		return nil, models.ErrEmptyUserID
	}
	state, err := m.store.GetConversationState(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation state: %w", err)
	}
	return state, nil
}

// GetOrCreate returns the state for a user, creating a fresh one on first
// contact.
func (m *StateManager) GetOrCreate(userID string) (*models.ConversationState, error) {
	state, err := m.Get(userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = models.NewConversationState(userID)
		slog.Debug("StateManager.GetOrCreate: initialized new conversation state", "userID", userID)
	}
	return state, nil
}

// Save persists the state.
func (m *StateManager) Save(state *models.ConversationState) error {
	if err := m.store.SaveConversationState(state); err != nil {
		return fmt.Errorf("failed to save conversation state: %w", err)
	}
	return nil
}

// ClearHistory empties the message history for a user while leaving every
// extracted signal, flag, and outstanding item untouched. Unknown users are
// a no-op. The "fresh chat, same profile" behavior is deliberate.
func (m *StateManager) ClearHistory(userID string) error {
	unlock := m.LockUser(userID)
	defer unlock()

	state, err := m.Get(userID)
	if err != nil {
		return err
	}
	if state == nil {
		return nil
	}
	state.History = nil
	if err := m.Save(state); err != nil {
		return err
	}
	slog.Info("StateManager.ClearHistory: history cleared", "userID", userID)
	return nil
}
