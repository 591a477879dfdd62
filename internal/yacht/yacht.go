// Package yacht provides the availability/booking catalog client.
//
// The upstream catalog is an external collaborator; every query degrades to
// the built-in sample dataset when the API is unconfigured or unreachable,
// so the dialogue core can always ground vessel talk in something.
package yacht

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dmayachting/charterdesk/internal/models"
	gocache "github.com/patrickmn/go-cache"
)

// Defaults mirroring the upstream API contract.
const (
	DefaultTimeout  = 8 * time.Second
	DefaultCacheTTL = 5 * time.Minute
)

// Service queries vessel availability with per-filter response caching.
type Service struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	cache    *gocache.Cache
	cacheTTL time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithBaseURL sets the availability API base URL.
func WithBaseURL(u string) Option {
	return func(s *Service) { s.baseURL = u }
}

// WithAPIKey sets the bearer token for the availability API.
func WithAPIKey(key string) Option {
	return func(s *Service) { s.apiKey = key }
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.client.Timeout = d }
}

// WithCacheTTL sets how long availability responses are cached.
func WithCacheTTL(d time.Duration) Option {
	return func(s *Service) { s.cacheTTL = d }
}

// NewService creates an availability service.
func NewService(opts ...Option) *Service {
	s := &Service{
		client:   &http.Client{Timeout: DefaultTimeout},
		cacheTTL: DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = gocache.New(s.cacheTTL, 2*s.cacheTTL)
	slog.Debug("yacht.NewService: service created", "configured", s.configured(), "cacheTTL", s.cacheTTL)
	return s
}

func (s *Service) configured() bool {
	return s.baseURL != "" && s.apiKey != ""
}

// GetAvailability queries the catalog for vessels matching the filters.
// Results are cached per filter set. On any failure the built-in sample
// dataset is returned with a nil error; the caller never sees the outage.
func (s *Service) GetAvailability(ctx context.Context, filters models.AvailabilityFilters) (*models.Availability, error) {
	cacheKey, _ := json.Marshal(filters)
	if cached, ok := s.cache.Get(string(cacheKey)); ok {
		return cached.(*models.Availability), nil
	}

	availability, err := s.fetchAvailability(ctx, filters)
	if err != nil {
		slog.Warn("yacht.GetAvailability: falling back to sample data", "error", err)
		return MockAvailability(filters), nil
	}

	s.cache.Set(string(cacheKey), availability, gocache.DefaultExpiration)
	return availability, nil
}

func (s *Service) fetchAvailability(ctx context.Context, filters models.AvailabilityFilters) (*models.Availability, error) {
	if !s.configured() {
		return nil, fmt.Errorf("availability API: %w", models.ErrNotConfigured)
	}

	q := url.Values{}
	if filters.StartDate != "" {
		q.Set("start_date", filters.StartDate)
	}
	if filters.EndDate != "" {
		q.Set("end_date", filters.EndDate)
	}
	if filters.Location != "" {
		q.Set("location", filters.Location)
	}
	if filters.VesselType != "" {
		q.Set("yacht_type", filters.VesselType)
	}
	if filters.Guests > 0 {
		q.Set("guests", strconv.Itoa(filters.Guests))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/availability?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build availability request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("availability request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("availability API returned status %d", resp.StatusCode)
	}

	var availability models.Availability
	if err := json.NewDecoder(resp.Body).Decode(&availability); err != nil {
		return nil, fmt.Errorf("failed to decode availability response: %w", err)
	}
	return &availability, nil
}

// MockAvailability returns the deterministic built-in sample dataset used
// whenever the catalog is unavailable.
func MockAvailability(filters models.AvailabilityFilters) *models.Availability {
	vessels := []models.Vessel{
		{
			ID:        "yacht-001",
			Name:      "Luxury Yacht Alpha",
			Type:      "Motor Yacht",
			Capacity:  12,
			Length:    "50m",
			Location:  "Monaco",
			DayRate:   15000,
			Amenities: []string{"Jacuzzi", "Helipad", "Gym", "Cinema"},
		},
		{
			ID:        "yacht-002",
			Name:      "Sailing Yacht Beta",
			Type:      "Sailing Yacht",
			Capacity:  8,
			Length:    "35m",
			Location:  "Croatia",
			DayRate:   8000,
			Amenities: []string{"Spa", "Diving Equipment", "Water Sports"},
		},
	}
	_ = filters // the sample set is fixed regardless of filters
	return &models.Availability{Vessels: vessels, TotalCount: len(vessels)}
}
