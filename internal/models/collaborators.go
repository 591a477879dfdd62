// Package models: shared types exchanged with external collaborators.
package models

// ClientProfile is a known client record from the profile collaborator.
type ClientProfile struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Preferences string `json:"preferences,omitempty"`
	Intent      string `json:"intent,omitempty"`
}

// ClientChat is a prior inquiry summary from the profile collaborator.
type ClientChat struct {
	Summary string `json:"summary,omitempty"`
	Message string `json:"message,omitempty"`
}

// DocumentMatch is one search hit from a document source.
type DocumentMatch struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
	Link    string `json:"link,omitempty"`
}

// Vessel describes one available charter vessel.
type Vessel struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Capacity  int      `json:"capacity"`
	Length    string   `json:"length,omitempty"`
	Location  string   `json:"location,omitempty"`
	DayRate   float64  `json:"day_rate,omitempty"`
	Amenities []string `json:"amenities,omitempty"`
}

// Availability is an availability query result.
type Availability struct {
	Vessels    []Vessel `json:"vessels"`
	TotalCount int      `json:"total_count"`
}

// AvailabilityFilters narrow an availability query. Zero values mean
// unfiltered.
type AvailabilityFilters struct {
	StartDate  string  `json:"start_date,omitempty"`
	EndDate    string  `json:"end_date,omitempty"`
	Location   string  `json:"location,omitempty"`
	VesselType string  `json:"vessel_type,omitempty"`
	Guests     int     `json:"guests,omitempty"`
	Budget     float64 `json:"budget,omitempty"`
}

// VesselSummary is a trimmed recommendation surfaced through insights.
type VesselSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Capacity int     `json:"capacity"`
	Location string  `json:"location,omitempty"`
	Rate     float64 `json:"rate,omitempty"`
}

// AgentInsights is the aggregate view assembled for the agent dashboard.
type AgentInsights struct {
	Client    *ClientProfile  `json:"client"`
	Vessels   []VesselSummary `json:"yachts"`
	Documents []DocumentMatch `json:"documents"`
}
