// Package profile provides the client-profile lookup collaborator.
//
// Profiles live in an external CRM; lookups are best-effort and the dialogue
// core omits profile context whenever this service errors.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dmayachting/charterdesk/internal/models"
)

// DefaultTimeout bounds profile API requests.
const DefaultTimeout = 8 * time.Second

// Service queries the client-profile API.
type Service struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// Option configures a Service.
type Option func(*Service)

// WithBaseURL sets the profile API base URL.
func WithBaseURL(u string) Option {
	return func(s *Service) { s.baseURL = u }
}

// WithAPIKey sets the bearer token for the profile API.
func WithAPIKey(key string) Option {
	return func(s *Service) { s.apiKey = key }
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.client.Timeout = d }
}

// NewService creates a profile service.
func NewService(opts ...Option) *Service {
	s := &Service{client: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetClientProfile fetches the profile for a known client ID.
func (s *Service) GetClientProfile(ctx context.Context, clientID string) (*models.ClientProfile, error) {
	var profile models.ClientProfile
	if err := s.getJSON(ctx, "/clients/"+url.PathEscape(clientID), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetClientChats fetches recent inquiry summaries for a client, most recent
// first.
func (s *Service) GetClientChats(ctx context.Context, clientID string) ([]models.ClientChat, error) {
	var chats []models.ClientChat
	if err := s.getJSON(ctx, "/clients/"+url.PathEscape(clientID)+"/chats", &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (s *Service) getJSON(ctx context.Context, path string, out any) error {
	if s.baseURL == "" || s.apiKey == "" {
		return fmt.Errorf("profile API: %w", models.ErrNotConfigured)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Warn("profile.getJSON: request failed", "path", path, "error", err)
		return fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("profile API returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode profile response: %w", err)
	}
	return nil
}
