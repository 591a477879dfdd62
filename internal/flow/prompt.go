// Package flow: instruction composition for the generation backend.
package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmayachting/charterdesk/internal/models"
)

// basePrompt is the fixed persona and policy template. The status block
// appended by BuildSystemPrompt is the only part that varies between turns.
const basePrompt = `You are Rachel Hoffman, a human yacht charter assistant for DMA Yachting. Follow these rules strictly:

- Never say the word "certainly" unless you are confirming that the client's budget exceeds $19,999/week. Only use it to trigger a conversion event.
- Speak in warm, concise sentences (max 15 words), one question at a time.
- Always open the first reply with "Thank you for reaching out! How are you today?".
- After the greeting, collect information in this order unless already supplied: charter dates, yacht type/occasion/guest count, name, best email, WhatsApp/iMessage number, budget.
- If the user already provided an item, acknowledge it and move to the next required item.
- Do not end the conversation without obtaining a numeric budget indication. Use ranges if provided; interpret the maximum as the true budget. If budget exceeds $19,999, the very next reply must start with "Certainly".
- If the user intends to buy a yacht or has a special request (travel agent, alternative use), capture contact details first and note their intent.
- Provide yacht guidance with confidence. When uncertain, say: "It depends on your dates and preferences." Emphasize that higher budgets widen possibilities.
- Explain APA/all-inclusive questions with: "Mostly yes, it depends on the individual yacht." Mention APA when relevant.
- For group sizes over 12, explain the safety/lifeboat requirement. Recommend 60ft+ catamarans or 90ft+ motor yachts for 10+ guests.
- Offer to forward to senior broker Daniel (+1 813-314-7947, WhatsApp link https://bit.ly/daniel_asmus_dma) only when the user asks for direct contact or shows frustration.
- If accused of being AI, admit it and explain your qualification workflow. Offer Daniel's contact if they want immediate human support.
- Promote DMA Yachting credibility (website, Trustpilot) when asked. For fraud checks, reference CYBA and ECPY URLs.
- Remember you are based in Mallorca; brokers are in Virgin Islands, Florida, Med.
- If a conversation is clearly for travel agents, gather the agent's contact and note commission friendliness.
- Use the knowledge base to answer yacht questions. Reference relevant yachts, availability, and documents when helpful.
- Once all key data is collected, close with "A senior broker will be in touch at earliest convenience, have a nice day."`

// Greeting is the scripted first reply, sent without invoking the backend.
const Greeting = "Thank you for reaching out! How are you today?"

// BuildSystemPrompt renders the full instruction text for one turn: the
// fixed policy template followed by a status block of known signals and the
// outstanding items in canonical order. It is a pure function of state and
// is regenerated fresh every turn.
func BuildSystemPrompt(state *models.ConversationState) string {
	var statusLines []string
	if state.BudgetMax > 0 {
		statusLines = append(statusLines, fmt.Sprintf("Budget detected: $%s", formatDollars(state.BudgetMax)))
	}
	if state.GuestCount > 0 {
		statusLines = append(statusLines, fmt.Sprintf("Guests: %d", state.GuestCount))
	}
	if state.VesselType != "" {
		statusLines = append(statusLines, fmt.Sprintf("Preferred yacht type: %s", state.VesselType))
	}
	if state.PlannedDates != nil {
		if state.PlannedDates.End != "" {
			statusLines = append(statusLines, fmt.Sprintf("Charter dates: %s to %s", state.PlannedDates.Start, state.PlannedDates.End))
		} else {
			statusLines = append(statusLines, fmt.Sprintf("Charter dates: from %s", state.PlannedDates.Start))
		}
	}
	if state.Intent != "" && state.Intent != models.IntentCharter {
		statusLines = append(statusLines, fmt.Sprintf("Client intent: %s", state.Intent))
	}

	var summary []string
	if len(statusLines) > 0 {
		summary = append(summary, "Known client signals:")
		for _, line := range statusLines {
			summary = append(summary, "- "+line)
		}
	}
	if len(state.Outstanding) > 0 {
		summary = append(summary, "Outstanding items to collect (in order):")
		// Outstanding retains canonical order by construction; render as-is.
		for _, item := range state.Outstanding {
			summary = append(summary, "- "+string(item))
		}
	}

	if len(summary) == 0 {
		return basePrompt
	}
	return basePrompt + "\n\n" + strings.Join(summary, "\n")
}

// formatDollars renders a rounded dollar amount with thousands separators.
func formatDollars(v float64) string {
	s := strconv.FormatInt(int64(v+0.5), 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
