package flow

import (
	"context"
	"strings"
	"testing"

	"github.com/dmayachting/charterdesk/internal/genai"
	"github.com/dmayachting/charterdesk/internal/models"
)

func TestGroundingContextEmptyWithoutCollaborators(t *testing.T) {
	f := newTestFlow(genai.NewMockClient("ok"))
	state := models.NewConversationState("u1")
	if got := f.buildGroundingContext(context.Background(), "tell me about yachts", models.TurnContext{}, state); got != "" {
		t.Errorf("expected empty grounding, got %q", got)
	}
}

func TestGroundingContextProfileSection(t *testing.T) {
	profiles := &mockProfiles{
		profile: &models.ClientProfile{Name: "Anna Lee", Email: "anna@example.com", Preferences: "catamarans"},
		chats:   []models.ClientChat{{Summary: "Asked about Croatia in July"}},
	}
	f := newTestFlow(genai.NewMockClient("ok"), WithProfiles(profiles))
	state := models.NewConversationState("u1")

	got := f.buildGroundingContext(context.Background(), "hello again", models.TurnContext{ClientID: "c-9"}, state)
	for _, want := range []string{
		"Client profile on record:",
		"- Name: Anna Lee",
		"- Email: anna@example.com",
		"- Preferences: catamarans",
		"- Last inquiry: Asked about Croatia in July",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("grounding missing %q in %q", want, got)
		}
	}
}

func TestGroundingContextProfileFailureOmitted(t *testing.T) {
	f := newTestFlow(genai.NewMockClient("ok"), WithProfiles(&mockProfiles{err: errUnavailable}))
	state := models.NewConversationState("u1")

	got := f.buildGroundingContext(context.Background(), "hello", models.TurnContext{ClientID: "c-9"}, state)
	if got != "" {
		t.Errorf("failed profile lookup must be omitted, got %q", got)
	}
}

func TestGroundingContextDocumentSections(t *testing.T) {
	local := &mockDocs{matches: []models.DocumentMatch{
		{Title: "Charter Guide", Snippet: "APA covers provisioning."},
		{Title: "Fleet Overview", Snippet: "Catamarans from 40ft."},
		{Title: "Third Doc", Snippet: "Should be cut."},
	}}
	cloud := &mockDocs{matches: []models.DocumentMatch{
		{Title: "Brochure", Link: "https://drive.example.com/b"},
	}}
	f := newTestFlow(genai.NewMockClient("ok"), WithDocumentSources(local, cloud))
	state := models.NewConversationState("u1")

	got := f.buildGroundingContext(context.Background(), "can you search the documents for APA", models.TurnContext{}, state)
	if !strings.Contains(got, "Local document matches:") || !strings.Contains(got, "Cloud drive matches:") {
		t.Fatalf("expected both document sections, got %q", got)
	}
	if strings.Contains(got, "Third Doc") {
		t.Error("document sections are capped at two matches")
	}
	if !strings.Contains(got, "- Brochure: Relevant section found. -> https://drive.example.com/b") {
		t.Errorf("cloud match rendered wrong: %q", got)
	}
}

func TestGroundingContextDocumentsSkippedWithoutKeyword(t *testing.T) {
	local := &mockDocs{matches: []models.DocumentMatch{{Title: "Guide"}}}
	f := newTestFlow(genai.NewMockClient("ok"), WithDocumentSources(local, nil))
	state := models.NewConversationState("u1")

	f.buildGroundingContext(context.Background(), "what dates work best", models.TurnContext{}, state)
	if len(local.queries) != 0 {
		t.Error("document sources must not be queried without a document keyword")
	}
}

func TestGroundingContextVesselSection(t *testing.T) {
	availability := &mockAvailability{availability: &models.Availability{
		Vessels: []models.Vessel{
			{Name: "Blue Horizon", Type: "catamaran", Capacity: 10, DayRate: 12000},
		},
		TotalCount: 1,
	}}
	f := newTestFlow(genai.NewMockClient("ok"), WithAvailability(availability))
	state := models.NewConversationState("u1")
	state.SetVesselType("catamaran")

	got := f.buildGroundingContext(context.Background(), "what do you have available", models.TurnContext{Location: "Croatia"}, state)
	if !strings.Contains(got, "Yacht recommendations:") {
		t.Fatalf("expected vessel section, got %q", got)
	}
	if !strings.Contains(got, "- Blue Horizon (catamaran) • 10 guests • $12000/day") {
		t.Errorf("vessel line rendered wrong: %q", got)
	}
	if len(availability.filters) != 1 || availability.filters[0].VesselType != "catamaran" || availability.filters[0].Location != "Croatia" {
		t.Errorf("filters not derived from state and context: %+v", availability.filters)
	}
}

func TestGroundingContextVesselFallbackOnError(t *testing.T) {
	f := newTestFlow(genai.NewMockClient("ok"), WithAvailability(&mockAvailability{err: errUnavailable}))
	state := models.NewConversationState("u1")

	got := f.buildGroundingContext(context.Background(), "any yacht availability?", models.TurnContext{}, state)
	if !strings.Contains(got, "Yacht recommendations (sample data):") {
		t.Fatalf("expected sample-data fallback, got %q", got)
	}
	if !strings.Contains(got, "Luxury Yacht Alpha") || !strings.Contains(got, "Sailing Yacht Beta") {
		t.Errorf("sample vessels missing: %q", got)
	}
}

func TestIsVesselQuery(t *testing.T) {
	if !isVesselQuery("do you have a catamaran available") {
		t.Error("expected vessel query match")
	}
	if isVesselQuery("what is your name") {
		t.Error("unexpected vessel query match")
	}
	if !isDocumentQuery("please look up the contract PDF") {
		t.Error("expected document query match")
	}
}
