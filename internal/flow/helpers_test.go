package flow

import (
	"context"
	"errors"

	"github.com/dmayachting/charterdesk/internal/genai"
	"github.com/dmayachting/charterdesk/internal/models"
	"github.com/dmayachting/charterdesk/internal/store"
)

// errUnavailable simulates a collaborator outage in tests.
var errUnavailable = errors.New("collaborator unavailable")

type mockProfiles struct {
	profile *models.ClientProfile
	chats   []models.ClientChat
	err     error
}

func (m *mockProfiles) GetClientProfile(ctx context.Context, clientID string) (*models.ClientProfile, error) {
	return m.profile, m.err
}

func (m *mockProfiles) GetClientChats(ctx context.Context, clientID string) ([]models.ClientChat, error) {
	return m.chats, m.err
}

type mockDocs struct {
	matches []models.DocumentMatch
	err     error
	queries []string
}

func (m *mockDocs) SearchDocuments(ctx context.Context, query string) ([]models.DocumentMatch, error) {
	m.queries = append(m.queries, query)
	return m.matches, m.err
}

type mockAvailability struct {
	availability *models.Availability
	err          error
	filters      []models.AvailabilityFilters
}

func (m *mockAvailability) GetAvailability(ctx context.Context, filters models.AvailabilityFilters) (*models.Availability, error) {
	m.filters = append(m.filters, filters)
	if m.err != nil {
		return nil, m.err
	}
	return m.availability, nil
}

// newTestFlow builds a flow on in-memory state with a mock backend.
func newTestFlow(mock genai.ClientInterface, opts ...Option) *CharterFlow {
	return NewCharterFlow(NewStateManager(store.NewInMemoryStore()), mock, opts...)
}

// greet runs the scripted first turn so follow-up turns reach the backend.
func greet(f *CharterFlow, userID string) {
	f.ProcessMessage(context.Background(), "hello", models.TurnContext{}, userID)
}
