// Package flow: agent-facing insight assembly.
package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmayachting/charterdesk/internal/models"
	"github.com/samber/lo"
)

// GetAgentInsights assembles a dashboard view for one user from current
// state plus best-effort collaborator calls. Collaborator failures degrade
// to empty sections; the call itself only fails when state cannot be read.
func (f *CharterFlow) GetAgentInsights(ctx context.Context, userID string) (*models.AgentInsights, error) {
	if userID == "" {
		userID = DefaultUserID
	}

	// Snapshot state under the turn lock, then release it before any
	// collaborator I/O.
	unlock := f.states.LockUser(userID)
	state, err := f.states.GetOrCreate(userID)
	unlock()
	if err != nil {
		return nil, err
	}

	insights := &models.AgentInsights{
		Vessels:   []models.VesselSummary{},
		Documents: []models.DocumentMatch{},
	}

	if state.Contact.Name != "" || state.Contact.Email != "" || state.Contact.Phone != "" {
		prof := &models.ClientProfile{
			Name:   state.Contact.Name,
			Email:  state.Contact.Email,
			Phone:  state.Contact.Phone,
			Intent: string(state.Intent),
		}
		if state.VesselType != "" {
			prof.Preferences = fmt.Sprintf("Interested in %s", state.VesselType)
		}
		insights.Client = prof
	}

	if f.availability != nil && (state.VesselType != "" || state.GuestCount > 0 || state.BudgetMax > 0) {
		filters := models.AvailabilityFilters{
			VesselType: state.VesselType,
			Guests:     state.GuestCount,
			Budget:     state.BudgetMax,
		}
		if availability, err := f.availability.GetAvailability(ctx, filters); err != nil {
			slog.Warn("CharterFlow.GetAgentInsights: availability lookup failed", "userID", userID, "error", err)
		} else if availability != nil {
			vessels := availability.Vessels
			if len(vessels) > 3 {
				vessels = vessels[:3]
			}
			insights.Vessels = lo.Map(vessels, func(v models.Vessel, _ int) models.VesselSummary {
				return models.VesselSummary{
					ID:       v.ID,
					Name:     v.Name,
					Type:     v.Type,
					Capacity: v.Capacity,
					Location: v.Location,
					Rate:     v.DayRate,
				}
			})
		}
	}

	// Document insights only make sense once qualification has reached a
	// budget; the query leans on the stated preference.
	if !state.IsOutstanding(models.ItemBudget) {
		query := state.VesselType
		if query == "" {
			query = "charter"
		}
		insights.Documents = append(insights.Documents, searchInsightDocs(ctx, f.docIndex, query, userID)...)
		insights.Documents = append(insights.Documents, searchInsightDocs(ctx, f.cloudDocs, query, userID)...)
	}

	return insights, nil
}

func searchInsightDocs(ctx context.Context, source DocumentSearcher, query, userID string) []models.DocumentMatch {
	if source == nil {
		return nil
	}
	matches, err := source.SearchDocuments(ctx, query)
	if err != nil {
		slog.Warn("CharterFlow.GetAgentInsights: document search failed", "userID", userID, "error", err)
		return nil
	}
	if len(matches) > 2 {
		matches = matches[:2]
	}
	return matches
}
