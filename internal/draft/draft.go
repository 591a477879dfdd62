// Package draft generates broker follow-up email drafts via the generation
// backend.
package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmayachting/charterdesk/internal/genai"
	"github.com/dmayachting/charterdesk/internal/models"
)

// DefaultTone is used when a request does not specify one.
const DefaultTone = "professional"

// Request describes an email draft to compose.
type Request struct {
	Client  *models.ClientProfile  `json:"client,omitempty"`
	Vessels []models.VesselSummary `json:"yachts,omitempty"`
	Context string                 `json:"context,omitempty"`
	Tone    string                 `json:"tone,omitempty"`
}

// Result is a generated draft.
type Result struct {
	Email       string `json:"email"`
	GeneratedAt string `json:"generatedAt"`
}

// Service composes follow-up emails.
type Service struct {
	genaiClient genai.ClientInterface
}

// NewService creates a draft service.
func NewService(genaiClient genai.ClientInterface) *Service {
	return &Service{genaiClient: genaiClient}
}

// CreateDraft generates a follow-up email for a charter prospect.
func (s *Service) CreateDraft(ctx context.Context, req Request) (*Result, error) {
	if s.genaiClient == nil {
		return nil, fmt.Errorf("draft service: %w", models.ErrNotConfigured)
	}
	prompt := buildPrompt(req)
	email, err := s.genaiClient.GeneratePrompt(ctx,
		"You draft concise, warm follow-up emails for a yacht charter brokerage.", prompt)
	if err != nil {
		slog.Error("draft.CreateDraft: generation failed", "error", err)
		return nil, fmt.Errorf("failed to generate email draft: %w", err)
	}
	return &Result{
		Email:       strings.TrimSpace(email),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func buildPrompt(req Request) string {
	tone := req.Tone
	if tone == "" {
		tone = DefaultTone
	}

	var vesselList []string
	for i, v := range req.Vessels {
		name := v.Name
		if name == "" {
			name = "Unnamed"
		}
		vesselType := v.Type
		if vesselType == "" {
			vesselType = "yacht"
		}
		rate := "rate on request"
		if v.Rate > 0 {
			rate = fmt.Sprintf("$%.0f/day", v.Rate)
		}
		vesselList = append(vesselList, fmt.Sprintf("%d. %s – %s for %d guests (%s)", i+1, name, vesselType, v.Capacity, rate))
	}
	vessels := strings.Join(vesselList, "\n")
	if vessels == "" {
		vessels = "No yachts yet; ask for requirements."
	}

	clientJSON := "{}"
	if req.Client != nil {
		if encoded, err := json.MarshalIndent(req.Client, "", "  "); err == nil {
			clientJSON = string(encoded)
		}
	}

	contextText := req.Context
	if contextText == "" {
		contextText = "N/A"
	}

	return fmt.Sprintf(`Compose a %s follow-up email from Rachel Hoffman at DMA Yachting to a charter prospect.

Client details:
%s

Recommended yachts:
%s

Additional context:
%s

Email requirements:
- Friendly, concise, human tone
- Reinforce next steps and how to reach brokers
- Mention that a senior broker will reach out soon`, tone, clientJSON, vessels, contextText)
}
