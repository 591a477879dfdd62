// Package flow: best-effort context enrichment from external collaborators.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dmayachting/charterdesk/internal/models"
	"github.com/dmayachting/charterdesk/internal/yacht"
)

var documentKeywords = []string{"document", "manual", "file", "pdf", "search", "find", "look up", "reference"}

var vesselKeywords = []string{"yacht", "boat", "charter", "booking", "availability", "rent", "cruise", "catamaran", "motor"}

func containsAnyKeyword(message string, keywords []string) bool {
	lower := strings.ToLower(message)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isDocumentQuery(message string) bool { return containsAnyKeyword(message, documentKeywords) }

func isVesselQuery(message string) bool { return containsAnyKeyword(message, vesselKeywords) }

// buildGroundingContext assembles optional grounding text for the turn from
// the profile, document, and availability collaborators. The three groups
// run concurrently; they are independent and never touch conversation
// state. Every failure is logged and its section simply omitted — this
// function cannot fail the turn.
func (f *CharterFlow) buildGroundingContext(ctx context.Context, message string, turnCtx models.TurnContext, state *models.ConversationState) string {
	var (
		wg       sync.WaitGroup
		profile  []string
		docLocal []string
		docCloud []string
		vessels  []string
	)

	if turnCtx.ClientID != "" && f.profiles != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			profile = f.profileSection(ctx, turnCtx.ClientID)
		}()
	}

	if isDocumentQuery(message) {
		if f.docIndex != nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				docLocal = documentSection(ctx, f.docIndex, message, "Local document matches:")
			}()
		}
		if f.cloudDocs != nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				docCloud = documentSection(ctx, f.cloudDocs, message, "Cloud drive matches:")
			}()
		}
	}

	if f.availability != nil && (isVesselQuery(message) || state.VesselType != "" || state.GuestCount > 0) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vessels = f.vesselSection(ctx, turnCtx, state)
		}()
	}

	wg.Wait()

	var sections []string
	sections = append(sections, profile...)
	sections = append(sections, docLocal...)
	sections = append(sections, docCloud...)
	sections = append(sections, vessels...)
	return strings.Join(sections, "\n")
}

// profileSection renders known-client context from the CRM collaborator.
func (f *CharterFlow) profileSection(ctx context.Context, clientID string) []string {
	prof, err := f.profiles.GetClientProfile(ctx, clientID)
	if err != nil {
		slog.Warn("flow.profileSection: client profile unavailable", "clientID", clientID, "error", err)
		return nil
	}

	lines := []string{"Client profile on record:"}
	name := prof.Name
	if name == "" {
		name = "Unknown"
	}
	lines = append(lines, "- Name: "+name)
	if prof.Email != "" {
		lines = append(lines, "- Email: "+prof.Email)
	}
	if prof.Phone != "" {
		lines = append(lines, "- Phone: "+prof.Phone)
	}
	if prof.Preferences != "" {
		lines = append(lines, "- Preferences: "+prof.Preferences)
	}

	if chats, err := f.profiles.GetClientChats(ctx, clientID); err != nil {
		slog.Warn("flow.profileSection: recent chats unavailable", "clientID", clientID, "error", err)
	} else if len(chats) > 0 {
		last := chats[0]
		summary := last.Summary
		if summary == "" {
			summary = last.Message
		}
		lines = append(lines, "- Last inquiry: "+summary)
	}
	return lines
}

// documentSection renders up to two matches from one document source.
func documentSection(ctx context.Context, source DocumentSearcher, query, header string) []string {
	matches, err := source.SearchDocuments(ctx, query)
	if err != nil {
		slog.Warn("flow.documentSection: document search failed", "header", header, "error", err)
		return nil
	}
	if len(matches) == 0 {
		return nil
	}
	if len(matches) > 2 {
		matches = matches[:2]
	}
	lines := []string{header}
	for _, m := range matches {
		snippet := m.Snippet
		if snippet == "" {
			snippet = "Relevant section found."
		}
		line := fmt.Sprintf("- %s: %s", m.Title, snippet)
		if m.Link != "" {
			line += " -> " + m.Link
		}
		lines = append(lines, line)
	}
	return lines
}

// vesselSection renders availability matches filtered by what is already
// known. A catalog failure falls back to the built-in sample dataset rather
// than surfacing an error.
func (f *CharterFlow) vesselSection(ctx context.Context, turnCtx models.TurnContext, state *models.ConversationState) []string {
	filters := models.AvailabilityFilters{
		Location:   turnCtx.Location,
		VesselType: state.VesselType,
	}
	if state.PlannedDates != nil {
		filters.StartDate = state.PlannedDates.Start
		filters.EndDate = state.PlannedDates.End
	}

	availability, err := f.availability.GetAvailability(ctx, filters)
	if err != nil {
		slog.Warn("flow.vesselSection: availability unavailable, using sample data", "error", err)
		fallback := yacht.MockAvailability(filters)
		return renderVessels("Yacht recommendations (sample data):", fallback.Vessels, 2)
	}
	if availability == nil || len(availability.Vessels) == 0 {
		return nil
	}
	return renderVessels("Yacht recommendations:", availability.Vessels, 3)
}

func renderVessels(header string, vessels []models.Vessel, limit int) []string {
	if len(vessels) == 0 {
		return nil
	}
	if len(vessels) > limit {
		vessels = vessels[:limit]
	}
	lines := []string{header}
	for _, v := range vessels {
		lines = append(lines, fmt.Sprintf("- %s (%s) • %d guests • $%.0f/day", v.Name, v.Type, v.Capacity, v.DayRate))
	}
	return lines
}
