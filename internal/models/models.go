// Package models defines the core data structures for CharterDesk.
//
// It includes the per-user conversation state, extracted signal types, and
// the outward-facing turn result shared across modules.
package models

import (
	"errors"
	"time"
)

// Intent describes what the client ultimately wants from the conversation.
type Intent string

const (
	// IntentCharter is the default: the client wants to charter a vessel.
	IntentCharter Intent = "charter"
	// IntentPurchase is set once a message mentions buying; it never reverts.
	IntentPurchase Intent = "purchase"
)

// Item identifies one topic the agent must confirm before handing off to a
// broker. The set of items is fixed; ItemOrder is their canonical order.
type Item string

const (
	ItemDates      Item = "dates"
	ItemVesselType Item = "vesselType"
	ItemGuests     Item = "guests"
	ItemName       Item = "name"
	ItemEmail      Item = "email"
	ItemPhone      Item = "phone"
	ItemBudget     Item = "budget"
)

// ItemOrder is the canonical collection order: travel dates first, budget
// last. Outstanding items are always tracked and rendered in this order.
var ItemOrder = []Item{
	ItemDates, ItemVesselType, ItemGuests, ItemName, ItemEmail, ItemPhone, ItemBudget,
}

// ConversionBudgetThreshold is the weekly budget (USD) at or above which the
// conversion event fires. The policy prompt phrases it as "exceeds $19,999".
const ConversionBudgetThreshold = 20000

// Error variables for better error handling and testability.
var (
	ErrEmptyUserID       = errors.New("user ID cannot be empty")
	ErrEmptyMessage      = errors.New("message cannot be empty")
	ErrStateNotFound     = errors.New("conversation state not found")
	ErrNotConfigured     = errors.New("collaborator not configured")
	ErrNoChoicesReturned = errors.New("generation backend returned no choices")
)

// DateRange holds a planned charter window. End is empty when the client only
// named a start date.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// Contact holds the client contact details collected so far. Empty fields are
// not yet known.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Message is one entry in a conversation history.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationState is the cumulative qualification state for one user.
// It is owned by the state store; all mutation goes through the merge
// methods below so the outstanding-item partition stays exact.
type ConversationState struct {
	UserID              string     `json:"user_id"`
	HasGreeted          bool       `json:"has_greeted"`
	ConversionTriggered bool       `json:"conversion_triggered"`
	BudgetMax           float64    `json:"budget_max,omitempty"` // 0 means unknown
	GuestCount          int        `json:"guest_count,omitempty"`
	VesselType          string     `json:"vessel_type,omitempty"`
	PlannedDates        *DateRange `json:"planned_dates,omitempty"`
	Contact             Contact    `json:"contact"`
	Intent              Intent     `json:"intent"`
	Outstanding         []Item     `json:"outstanding"`
	History             []Message  `json:"history"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewConversationState returns a fresh state with every item outstanding.
func NewConversationState(userID string) *ConversationState {
	now := time.Now()
	outstanding := make([]Item, len(ItemOrder))
	copy(outstanding, ItemOrder)
	return &ConversationState{
		UserID:      userID,
		Intent:      IntentCharter,
		Outstanding: outstanding,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// resolveItem removes item from the outstanding set. Removal happens at most
// once per item; calling again is a no-op.
func (s *ConversationState) resolveItem(item Item) {
	for i, it := range s.Outstanding {
		if it == item {
			s.Outstanding = append(s.Outstanding[:i], s.Outstanding[i+1:]...)
			return
		}
	}
}

// IsOutstanding reports whether item has not been confirmed yet.
func (s *ConversationState) IsOutstanding(item Item) bool {
	for _, it := range s.Outstanding {
		if it == item {
			return true
		}
	}
	return false
}

// MergeBudget raises the known budget ceiling. Budgets only ever ratchet
// upward: a candidate below the current maximum is absorbed silently.
func (s *ConversationState) MergeBudget(candidate float64) {
	if candidate <= 0 {
		return
	}
	if candidate > s.BudgetMax {
		s.BudgetMax = candidate
	}
	s.resolveItem(ItemBudget)
}

// SetGuestCount records the party size. Later extractions overwrite the
// value but the item resolves only once.
func (s *ConversationState) SetGuestCount(n int) {
	if n <= 0 {
		return
	}
	s.GuestCount = n
	s.resolveItem(ItemGuests)
}

// SetVesselType records the preferred vessel category.
func (s *ConversationState) SetVesselType(t string) {
	if t == "" {
		return
	}
	s.VesselType = t
	s.resolveItem(ItemVesselType)
}

// SetPlannedDates records the charter window.
func (s *ConversationState) SetPlannedDates(d DateRange) {
	if d.Start == "" {
		return
	}
	s.PlannedDates = &DateRange{Start: d.Start, End: d.End}
	s.resolveItem(ItemDates)
}

// MergeContact records whichever contact fields are present; each resolves
// its own outstanding item independently.
func (s *ConversationState) MergeContact(c Contact) {
	if c.Name != "" {
		s.Contact.Name = c.Name
		s.resolveItem(ItemName)
	}
	if c.Email != "" {
		s.Contact.Email = c.Email
		s.resolveItem(ItemEmail)
	}
	if c.Phone != "" {
		s.Contact.Phone = c.Phone
		s.resolveItem(ItemPhone)
	}
}

// MarkPurchaseIntent switches the intent to purchase. One-way transition.
func (s *ConversationState) MarkPurchaseIntent() {
	s.Intent = IntentPurchase
}

// NeedsConversion reports whether the next reply must open with the
// conversion keyword: budget has crossed the threshold and the event has not
// fired yet.
func (s *ConversationState) NeedsConversion() bool {
	return s.BudgetMax >= ConversionBudgetThreshold && !s.ConversionTriggered
}

// AppendTurn records one user/assistant exchange in the history.
func (s *ConversationState) AppendTurn(userMessage, assistantReply string) {
	now := time.Now()
	s.History = append(s.History,
		Message{Role: RoleUser, Content: userMessage, Timestamp: now},
		Message{Role: RoleAssistant, Content: assistantReply, Timestamp: now},
	)
}

// TurnContext carries optional metadata accompanying one incoming message.
type TurnContext struct {
	ClientID string `json:"clientId,omitempty"`
	URL      string `json:"url,omitempty"`
	Location string `json:"location,omitempty"`
}

// TurnResult is the outward contract of one processed turn.
type TurnResult struct {
	Message     string   `json:"message"`
	Timestamp   string   `json:"timestamp"` // ISO 8601
	Context     string   `json:"context,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Error       bool     `json:"error,omitempty"`
}
