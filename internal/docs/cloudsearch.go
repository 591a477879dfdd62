package docs

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

// DefaultCloudTimeout bounds cloud search requests.
const DefaultCloudTimeout = 8 * time.Second

// CloudSearch queries the remote file-storage collaborator's search
// endpoint. It shares the SearchDocuments contract with Index.
type CloudSearch struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// CloudOption configures a CloudSearch.
type CloudOption func(*CloudSearch)

// WithCloudBaseURL sets the cloud search base URL.
func WithCloudBaseURL(u string) CloudOption {
	return func(c *CloudSearch) { c.baseURL = u }
}

// WithCloudAPIKey sets the bearer token for the cloud search API.
func WithCloudAPIKey(key string) CloudOption {
	return func(c *CloudSearch) { c.apiKey = key }
}

// WithCloudTimeout sets the HTTP request timeout.
func WithCloudTimeout(d time.Duration) CloudOption {
	return func(c *CloudSearch) { c.client.Timeout = d }
}

// NewCloudSearch creates a cloud search client.
func NewCloudSearch(opts ...CloudOption) *CloudSearch {
	c := &CloudSearch{client: &http.Client{Timeout: DefaultCloudTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchDocuments queries the remote search endpoint.
func (c *CloudSearch) SearchDocuments(ctx context.Context, query string) ([]models.DocumentMatch, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return nil, fmt.Errorf("cloud search: %w", models.ErrNotConfigured)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build cloud search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("docs.CloudSearch: request failed", "error", err)
		return nil, fmt.Errorf("cloud search request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cloud search returned status %d", resp.StatusCode)
	}

	var matches []models.DocumentMatch
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return nil, fmt.Errorf("failed to decode cloud search response: %w", err)
	}
	return matches, nil
}
