package flow

import (
	"context"
	"testing"

	"github.com/dmayachting/charterdesk/internal/genai"
	"github.com/dmayachting/charterdesk/internal/models"
)

func TestGetAgentInsightsFreshUser(t *testing.T) {
	f := newTestFlow(genai.NewMockClient("ok"))
	insights, err := f.GetAgentInsights(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insights.Client != nil {
		t.Error("fresh user has no client section")
	}
	if len(insights.Vessels) != 0 || len(insights.Documents) != 0 {
		t.Errorf("fresh user should yield empty sections: %+v", insights)
	}
}

func TestGetAgentInsightsClientFromState(t *testing.T) {
	f := newTestFlow(genai.NewMockClient("ok"))
	seedState(t, f, func(state *models.ConversationState) {
		state.MergeContact(models.Contact{Name: "Anna", Email: "anna@example.com"})
		state.SetVesselType("catamaran")
		state.MarkPurchaseIntent()
	})

	insights, err := f.GetAgentInsights(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insights.Client == nil {
		t.Fatal("expected a client section")
	}
	if insights.Client.Name != "Anna" || insights.Client.Email != "anna@example.com" {
		t.Errorf("client contact wrong: %+v", insights.Client)
	}
	if insights.Client.Preferences != "Interested in catamaran" {
		t.Errorf("preferences = %q", insights.Client.Preferences)
	}
	if insights.Client.Intent != "purchase" {
		t.Errorf("intent = %q", insights.Client.Intent)
	}
}

func TestGetAgentInsightsVessels(t *testing.T) {
	availability := &mockAvailability{availability: &models.Availability{
		Vessels: []models.Vessel{
			{ID: "v1", Name: "One", Type: "catamaran", Capacity: 8, Location: "Croatia", DayRate: 9000},
			{ID: "v2", Name: "Two", Type: "catamaran", Capacity: 10, DayRate: 11000},
			{ID: "v3", Name: "Three", Type: "catamaran", Capacity: 12, DayRate: 13000},
			{ID: "v4", Name: "Four", Type: "catamaran", Capacity: 14, DayRate: 15000},
		},
	}}
	f := newTestFlow(genai.NewMockClient("ok"), WithAvailability(availability))
	seedState(t, f, func(state *models.ConversationState) {
		state.SetVesselType("catamaran")
		state.SetGuestCount(8)
	})

	insights, err := f.GetAgentInsights(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insights.Vessels) != 3 {
		t.Fatalf("vessels capped at 3, got %d", len(insights.Vessels))
	}
	if insights.Vessels[0].Name != "One" || insights.Vessels[0].Rate != 9000 {
		t.Errorf("vessel summary wrong: %+v", insights.Vessels[0])
	}
	if len(availability.filters) != 1 || availability.filters[0].Guests != 8 {
		t.Errorf("filters not derived from state: %+v", availability.filters)
	}
}

func TestGetAgentInsightsVesselFailureDegrades(t *testing.T) {
	f := newTestFlow(genai.NewMockClient("ok"), WithAvailability(&mockAvailability{err: errUnavailable}))
	seedState(t, f, func(state *models.ConversationState) {
		state.SetGuestCount(8)
	})

	insights, err := f.GetAgentInsights(context.Background(), "u1")
	if err != nil {
		t.Fatalf("collaborator failure must not fail the call: %v", err)
	}
	if len(insights.Vessels) != 0 {
		t.Errorf("expected empty vessels on failure, got %+v", insights.Vessels)
	}
}

func TestGetAgentInsightsDocumentsGatedOnBudget(t *testing.T) {
	local := &mockDocs{matches: []models.DocumentMatch{{Title: "Guide"}}}
	f := newTestFlow(genai.NewMockClient("ok"), WithDocumentSources(local, nil))

	seedState(t, f, func(state *models.ConversationState) {
		state.SetVesselType("catamaran")
	})
	insights, _ := f.GetAgentInsights(context.Background(), "u1")
	if len(insights.Documents) != 0 || len(local.queries) != 0 {
		t.Error("documents must stay empty while budget is outstanding")
	}

	seedState(t, f, func(state *models.ConversationState) {
		state.SetVesselType("catamaran")
		state.MergeBudget(25000)
	})
	insights, _ = f.GetAgentInsights(context.Background(), "u1")
	if len(insights.Documents) != 1 {
		t.Fatalf("expected one document, got %d", len(insights.Documents))
	}
	if len(local.queries) == 0 || local.queries[len(local.queries)-1] != "catamaran" {
		t.Errorf("query should lean on the vessel preference: %v", local.queries)
	}
}

// seedState saves a prepared state for u1.
func seedState(t *testing.T, f *CharterFlow, mutate func(*models.ConversationState)) {
	t.Helper()
	state := models.NewConversationState("u1")
	mutate(state)
	if err := f.states.Save(state); err != nil {
		t.Fatalf("failed to seed state: %v", err)
	}
}
