// Package flow: the per-message orchestrator.
package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmayachting/charterdesk/internal/extract"
	"github.com/dmayachting/charterdesk/internal/genai"
	"github.com/dmayachting/charterdesk/internal/models"
	"github.com/openai/openai-go"
	"github.com/samber/lo"
)

// ApologyMessage is returned verbatim whenever a turn fails internally.
const ApologyMessage = "I apologize, but I encountered an error processing your request. Please try again."

// historyWindow is how many trailing history entries accompany each
// generation call.
const historyWindow = 10

// DefaultUserID keys conversations that arrive without a user identifier.
const DefaultUserID = "default"

// CharterFlow is the sales-qualification dialogue orchestrator. One instance
// serves all users; per-user serialization lives in the StateManager.
type CharterFlow struct {
	states      *StateManager
	genaiClient genai.ClientInterface

	profiles     ProfileService
	docIndex     DocumentSearcher
	cloudDocs    DocumentSearcher
	availability AvailabilityService
}

// Option configures optional collaborators on a CharterFlow.
type Option func(*CharterFlow)

// WithProfiles wires the client-profile collaborator.
func WithProfiles(p ProfileService) Option {
	return func(f *CharterFlow) { f.profiles = p }
}

// WithDocumentSources wires the local index and cloud search collaborators.
// Either may be nil.
func WithDocumentSources(local, cloud DocumentSearcher) Option {
	return func(f *CharterFlow) {
		f.docIndex = local
		f.cloudDocs = cloud
	}
}

// WithAvailability wires the availability catalog collaborator.
func WithAvailability(a AvailabilityService) Option {
	return func(f *CharterFlow) { f.availability = a }
}

// NewCharterFlow creates the orchestrator with its required dependencies.
// Collaborators are optional; the flow degrades gracefully without them.
func NewCharterFlow(states *StateManager, genaiClient genai.ClientInterface, opts ...Option) *CharterFlow {
	slog.Debug("flow.NewCharterFlow: creating flow", "hasGenAI", genaiClient != nil)
	f := &CharterFlow{states: states, genaiClient: genaiClient}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ProcessMessage runs one full turn for a user message and never fails to
// the caller: internal errors produce the fixed apology result instead.
func (f *CharterFlow) ProcessMessage(ctx context.Context, message string, turnCtx models.TurnContext, userID string) models.TurnResult {
	if userID == "" {
		userID = DefaultUserID
	}

	unlock := f.states.LockUser(userID)
	defer unlock()

	state, err := f.states.GetOrCreate(userID)
	if err != nil {
		slog.Error("CharterFlow.ProcessMessage: failed to load state", "userID", userID, "error", err)
		return apologyResult()
	}

	f.applyExtraction(state, message, turnCtx)

	// First contact: scripted greeting, no backend call.
	if !state.HasGreeted {
		state.HasGreeted = true
		state.AppendTurn(message, Greeting)
		if err := f.states.Save(state); err != nil {
			slog.Error("CharterFlow.ProcessMessage: failed to save greeting state", "userID", userID, "error", err)
			return apologyResult()
		}
		slog.Info("CharterFlow.ProcessMessage: greeted new conversation", "userID", userID)
		return models.TurnResult{
			Message:     Greeting,
			Timestamp:   nowISO(),
			Suggestions: suggestionsFor(state),
		}
	}

	grounding := f.buildGroundingContext(ctx, message, turnCtx, state)
	instructions := BuildSystemPrompt(state)

	messages := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(instructions)}
	if grounding != "" {
		messages = append(messages, openai.SystemMessage("Context for this user:\n"+grounding))
	}
	messages = append(messages, historyMessages(state.History, historyWindow)...)
	messages = append(messages, openai.UserMessage(message))

	reply, err := f.genaiClient.GenerateWithMessages(ctx, messages)
	if err != nil {
		slog.Error("CharterFlow.ProcessMessage: generation failed", "userID", userID, "error", err)
		// History stays a true record of what was actually exchanged: the
		// apology is what the user receives for this turn.
		state.AppendTurn(message, ApologyMessage)
		if saveErr := f.states.Save(state); saveErr != nil {
			slog.Error("CharterFlow.ProcessMessage: failed to save state after generation failure", "userID", userID, "error", saveErr)
		}
		return apologyResult()
	}

	rewritten, triggered := RewriteReply(reply, state.NeedsConversion())
	if triggered {
		state.ConversionTriggered = true
		slog.Info("CharterFlow.ProcessMessage: conversion event fired", "userID", userID, "budgetMax", state.BudgetMax)
	}

	state.AppendTurn(message, rewritten)
	if err := f.states.Save(state); err != nil {
		slog.Error("CharterFlow.ProcessMessage: failed to save state", "userID", userID, "error", err)
		return apologyResult()
	}

	slog.Info("CharterFlow.ProcessMessage: turn completed", "userID", userID, "replyLength", len(rewritten), "outstanding", len(state.Outstanding))
	return models.TurnResult{
		Message:     rewritten,
		Timestamp:   nowISO(),
		Context:     grounding,
		Suggestions: suggestionsFor(state),
	}
}

// applyExtraction runs the extraction pipeline over the message and merges
// every signal into state under the documented rules (budget max-merge,
// overwrite-value-resolve-once for the rest, one-way intent).
func (f *CharterFlow) applyExtraction(state *models.ConversationState, message string, turnCtx models.TurnContext) {
	signals := extract.FromMessage(message)

	if signals.Budget != nil {
		state.MergeBudget(*signals.Budget)
	}
	if signals.Guests != nil {
		state.SetGuestCount(*signals.Guests)
	}
	if signals.VesselType != "" {
		state.SetVesselType(signals.VesselType)
	}
	if signals.Dates != nil {
		state.SetPlannedDates(*signals.Dates)
	}
	state.MergeContact(signals.Contact)
	if signals.Purchase {
		state.MarkPurchaseIntent()
	}

	// The landing-page pmax parameter only counts while budget is still
	// outstanding; a number the client actually said always wins.
	if turnCtx.URL != "" && state.IsOutstanding(models.ItemBudget) {
		if v, ok := extract.BudgetFromURL(turnCtx.URL); ok {
			state.MergeBudget(v)
		}
	}
}

// GetChatHistory returns the conversation history for a user, empty when the
// user is unknown.
func (f *CharterFlow) GetChatHistory(ctx context.Context, userID string) ([]models.Message, error) {
	if userID == "" {
		userID = DefaultUserID
	}
	unlock := f.states.LockUser(userID)
	defer unlock()

	state, err := f.states.Get(userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return []models.Message{}, nil
	}
	return state.History, nil
}

// ClearChatHistory removes the history only; extracted signals survive.
func (f *CharterFlow) ClearChatHistory(ctx context.Context, userID string) error {
	if userID == "" {
		userID = DefaultUserID
	}
	return f.states.ClearHistory(userID)
}

// suggestionTexts maps each outstanding item to a canned next reply the UI
// can offer.
var suggestionTexts = map[models.Item]string{
	models.ItemDates:      "Let me share our travel dates.",
	models.ItemVesselType: "We are thinking about a catamaran.",
	models.ItemGuests:     "We expect 8 guests.",
	models.ItemName:       "Let me introduce myself.",
	models.ItemEmail:      "Here is my email address.",
	models.ItemPhone:      "I can be reached on WhatsApp at...",
	models.ItemBudget:     "Our budget is around $30,000.",
}

// suggestionsFor derives up to three suggestions from the outstanding items
// in their canonical order; the reply text plays no part.
func suggestionsFor(state *models.ConversationState) []string {
	suggestions := lo.FilterMap(state.Outstanding, func(item models.Item, _ int) (string, bool) {
		text, ok := suggestionTexts[item]
		return text, ok
	})
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

// historyMessages converts the trailing window of stored history into
// backend message params.
func historyMessages(history []models.Message, limit int) []openai.ChatCompletionMessageParamUnion {
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	var messages []openai.ChatCompletionMessageParamUnion
	for _, msg := range history {
		switch msg.Role {
		case models.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		}
	}
	return messages
}

func apologyResult() models.TurnResult {
	return models.TurnResult{
		Message:   ApologyMessage,
		Timestamp: nowISO(),
		Error:     true,
	}
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
