package models

import (
	"testing"
)

func TestNewConversationStateEverythingOutstanding(t *testing.T) {
	s := NewConversationState("u1")
	if s.UserID != "u1" {
		t.Errorf("userID = %q, want u1", s.UserID)
	}
	if s.Intent != IntentCharter {
		t.Errorf("intent = %q, want charter", s.Intent)
	}
	if len(s.Outstanding) != len(ItemOrder) {
		t.Fatalf("outstanding = %d items, want %d", len(s.Outstanding), len(ItemOrder))
	}
	for i, item := range ItemOrder {
		if s.Outstanding[i] != item {
			t.Errorf("outstanding[%d] = %q, want %q", i, s.Outstanding[i], item)
		}
	}
}

func TestOutstandingPartition(t *testing.T) {
	// Every item is either confirmed or outstanding, never both, never
	// neither.
	s := NewConversationState("u1")
	s.MergeBudget(25000)
	s.SetGuestCount(8)
	s.MergeContact(Contact{Email: "a@b.com"})

	confirmed := map[Item]bool{ItemBudget: true, ItemGuests: true, ItemEmail: true}
	for _, item := range ItemOrder {
		if confirmed[item] == s.IsOutstanding(item) {
			t.Errorf("item %q: confirmed=%v but outstanding=%v", item, confirmed[item], s.IsOutstanding(item))
		}
	}
	if len(s.Outstanding) != len(ItemOrder)-len(confirmed) {
		t.Errorf("outstanding count = %d, want %d", len(s.Outstanding), len(ItemOrder)-len(confirmed))
	}
}

func TestOutstandingKeepsCanonicalOrder(t *testing.T) {
	s := NewConversationState("u1")
	s.SetGuestCount(6)
	want := []Item{ItemDates, ItemVesselType, ItemName, ItemEmail, ItemPhone, ItemBudget}
	if len(s.Outstanding) != len(want) {
		t.Fatalf("outstanding = %v, want %v", s.Outstanding, want)
	}
	for i := range want {
		if s.Outstanding[i] != want[i] {
			t.Errorf("outstanding[%d] = %q, want %q", i, s.Outstanding[i], want[i])
		}
	}
}

func TestMergeBudgetRatchet(t *testing.T) {
	s := NewConversationState("u1")
	s.MergeBudget(30000)
	s.MergeBudget(10000)
	if s.BudgetMax != 30000 {
		t.Errorf("budget = %v, want 30000 (lower candidates never lower the ceiling)", s.BudgetMax)
	}
	s.MergeBudget(45000)
	if s.BudgetMax != 45000 {
		t.Errorf("budget = %v, want 45000", s.BudgetMax)
	}
	if s.IsOutstanding(ItemBudget) {
		t.Error("budget should be resolved after a merge")
	}
}

func TestMergeBudgetIgnoresNonPositive(t *testing.T) {
	s := NewConversationState("u1")
	s.MergeBudget(0)
	s.MergeBudget(-5)
	if s.BudgetMax != 0 || !s.IsOutstanding(ItemBudget) {
		t.Error("non-positive candidates must not resolve the budget item")
	}
}

func TestSetGuestCountOverwrites(t *testing.T) {
	s := NewConversationState("u1")
	s.SetGuestCount(6)
	s.SetGuestCount(10)
	if s.GuestCount != 10 {
		t.Errorf("guestCount = %d, want 10", s.GuestCount)
	}
	if s.IsOutstanding(ItemGuests) {
		t.Error("guests should be resolved")
	}
}

func TestMergeContactFieldsIndependent(t *testing.T) {
	s := NewConversationState("u1")
	s.MergeContact(Contact{Email: "a@b.com"})
	if !s.IsOutstanding(ItemName) || !s.IsOutstanding(ItemPhone) {
		t.Error("name and phone must stay outstanding when only email arrives")
	}
	s.MergeContact(Contact{Name: "Anna", Phone: "+1 202 555 0100"})
	if s.Contact.Email != "a@b.com" {
		t.Errorf("email overwritten: %q", s.Contact.Email)
	}
	if s.IsOutstanding(ItemName) || s.IsOutstanding(ItemPhone) {
		t.Error("name and phone should now be resolved")
	}
}

func TestNeedsConversion(t *testing.T) {
	s := NewConversationState("u1")
	if s.NeedsConversion() {
		t.Error("fresh state must not need conversion")
	}
	s.MergeBudget(19999)
	if s.NeedsConversion() {
		t.Error("19999 is below the threshold")
	}
	s.MergeBudget(20000)
	if !s.NeedsConversion() {
		t.Error("20000 meets the threshold")
	}
	s.ConversionTriggered = true
	if s.NeedsConversion() {
		t.Error("conversion fires at most once")
	}
}

func TestMarkPurchaseIntentOneWay(t *testing.T) {
	s := NewConversationState("u1")
	s.MarkPurchaseIntent()
	if s.Intent != IntentPurchase {
		t.Errorf("intent = %q, want purchase", s.Intent)
	}
}

func TestAppendTurn(t *testing.T) {
	s := NewConversationState("u1")
	s.AppendTurn("hello", "hi there")
	if len(s.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(s.History))
	}
	if s.History[0].Role != RoleUser || s.History[0].Content != "hello" {
		t.Errorf("unexpected user entry: %+v", s.History[0])
	}
	if s.History[1].Role != RoleAssistant || s.History[1].Content != "hi there" {
		t.Errorf("unexpected assistant entry: %+v", s.History[1])
	}
}
