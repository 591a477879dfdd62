// Package flow implements the sales-qualification dialogue core: per-user
// conversation state, signal extraction merging, instruction composition,
// generation invocation, and response governance.
package flow

import (
	"context"

	"github.com/dmayachting/charterdesk/internal/models"
)

// ProfileService is the client-profile collaborator consumed by enrichment
// and insights. Implementations are external; failures are tolerated.
type ProfileService interface {
	GetClientProfile(ctx context.Context, clientID string) (*models.ClientProfile, error)
	GetClientChats(ctx context.Context, clientID string) ([]models.ClientChat, error)
}

// DocumentSearcher is one document source. Two independent implementations
// are wired in practice: the local index and the cloud file search.
type DocumentSearcher interface {
	SearchDocuments(ctx context.Context, query string) ([]models.DocumentMatch, error)
}

// AvailabilityService is the vessel availability/booking catalog
// collaborator.
type AvailabilityService interface {
	GetAvailability(ctx context.Context, filters models.AvailabilityFilters) (*models.Availability, error)
}
