// Package extract implements rule-based signal extraction from free-form
// charter inquiries.
//
// Each extractor is a pure function over one message: it either finds a typed
// value or reports no match. Nothing here touches conversation state; the
// flow layer merges results under its own rules (budget max-merge, first
// match wins, set-once).
package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmayachting/charterdesk/internal/models"
)

// Signals carries everything one message yielded. Nil/zero fields mean the
// corresponding extractor found nothing.
type Signals struct {
	Budget     *float64
	Guests     *int
	VesselType string
	Dates      *models.DateRange
	Contact    models.Contact
	Purchase   bool
}

var (
	budgetRangeRe  = regexp.MustCompile(`(?i)(\$?\d[\d,]*)(?:\s?(k|m|million))?\s*(?:-|to)\s*(\$?\d[\d,]*)(?:\s?(k|m|million))?`)
	budgetSingleRe = regexp.MustCompile(`(?i)(?:over|under|around|about)?\s*\$?\d[\d,]*(?:\.\d+)?\s?(k|m|million)?`)

	guestRe = regexp.MustCompile(`(\d{1,2})\s*(?:guests?|people|pax|persons)`)

	dateRangeRe = regexp.MustCompile(`(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\s*(?:-|to|through)\s*(\d{1,2}/\d{1,2}(?:/\d{2,4})?)`)
	monthDayRe  = regexp.MustCompile(`(?i)(?:january|february|march|april|may|june|july|august|september|october|november|december)\s*\d{1,2}`)

	emailRe = regexp.MustCompile(`[\w.+-]+@[\w.-]+\.[\w.-]+`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().-]{7,}`)
	nameRe  = regexp.MustCompile(`(?:(?i:i am|i'm|this is))\s+([A-Z][a-z]+\s?[A-Z]?[a-z]*)`)

	pmaxRe = regexp.MustCompile(`(?i)pmax=(\d+)`)
)

// FromMessage runs every extractor over one raw message. Extractors are
// independent; any subset may fire.
func FromMessage(message string) Signals {
	var s Signals
	if v, ok := Budget(message); ok {
		s.Budget = &v
	}
	if n, ok := GuestCount(message); ok {
		s.Guests = &n
	}
	s.VesselType = VesselType(message)
	s.Dates = Dates(message)
	s.Contact = ContactDetails(message)
	s.Purchase = PurchaseIntent(message)
	return s
}

// Budget scans a message for budget indications and returns the largest
// candidate found. Ranges are interpreted optimistically: the upper bound is
// the candidate. The word "grand" counts as a k suffix.
func Budget(message string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.ToLower(message), "grand", "k")

	var maxBudget float64
	found := false
	record := func(v float64) {
		if v <= 0 {
			return
		}
		found = true
		if v > maxBudget {
			maxBudget = v
		}
	}

	for _, m := range budgetRangeRe.FindAllStringSubmatch(cleaned, -1) {
		first := normalizeBudgetValue(m[1], m[2])
		// A suffix on the upper bound only applies to the lower bound too
		// when the lower bound carries none of its own ("20-30k").
		second := normalizeBudgetValue(m[3], firstNonEmpty(m[4], m[2]))
		record(maxFloat(first, second))
	}

	for _, m := range budgetSingleRe.FindAllString(cleaned, -1) {
		record(normalizeBudgetValue(m, ""))
	}

	return maxBudget, found
}

// normalizeBudgetValue parses a raw token like "$20,000", "30k" or "1.5m"
// into a dollar amount. Returns 0 for anything unparsable.
func normalizeBudgetValue(raw, unit string) float64 {
	digits := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, raw)
	value, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	suffix := strings.ToLower(unit)
	if suffix == "" {
		lower := strings.ToLower(raw)
		switch {
		case strings.Contains(lower, "million"), strings.Contains(lower, "m"):
			suffix = "m"
		case strings.Contains(lower, "k"):
			suffix = "k"
		}
	}
	switch suffix {
	case "k":
		value *= 1_000
	case "m", "million":
		value *= 1_000_000
	}
	return value
}

// GuestCount matches a 1-2 digit number directly followed by a party word
// (guests, people, pax, persons). First match wins.
func GuestCount(message string) (int, bool) {
	m := guestRe.FindStringSubmatch(strings.ToLower(message))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// VesselType classifies the preferred vessel category, evaluated in a fixed
// priority order. Returns "" when no category keyword appears.
func VesselType(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "catamaran"):
		return "catamaran"
	case strings.Contains(lower, "motor"):
		return "motor yacht"
	case strings.Contains(lower, "sailing"), strings.Contains(lower, "sail"):
		return "sailing yacht"
	case strings.Contains(lower, "mega"), strings.Contains(lower, "super"):
		return "superyacht"
	}
	return ""
}

// Dates finds either a MM/DD[/YYYY] range or, failing that, a bare
// "<Month> <day>" token treated as a start date with no end.
func Dates(message string) *models.DateRange {
	if m := dateRangeRe.FindStringSubmatch(message); m != nil {
		return &models.DateRange{Start: m[1], End: m[2]}
	}
	if m := monthDayRe.FindString(message); m != "" {
		return &models.DateRange{Start: m}
	}
	return nil
}

// ContactDetails extracts whichever of name, email, and phone appear. The
// three patterns are independent and may all fire on one message.
func ContactDetails(message string) models.Contact {
	var c models.Contact
	if m := emailRe.FindString(message); m != "" {
		c.Email = m
	}
	if m := phoneRe.FindString(message); m != "" {
		c.Phone = strings.TrimSpace(m)
	}
	if m := nameRe.FindStringSubmatch(message); m != nil {
		c.Name = strings.TrimSpace(m[1])
	}
	return c
}

// PurchaseIntent reports whether the message signals buying rather than
// chartering.
func PurchaseIntent(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "buy") || strings.Contains(lower, "purchase")
}

// BudgetFromURL pulls a budget candidate from a pmax query parameter on the
// page the inquiry came from. Malformed URLs fall back to a plain scan.
func BudgetFromURL(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	if u, err := url.Parse(raw); err == nil {
		if pmax := u.Query().Get("pmax"); pmax != "" {
			if v, err := strconv.ParseFloat(pmax, 64); err == nil && v > 0 {
				return v, true
			}
		}
	}
	if m := pmaxRe.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			return v, true
		}
	}
	return 0, false
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
