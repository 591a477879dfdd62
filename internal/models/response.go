package models

// APIResponse is the JSON envelope for status-only API replies.
type APIResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Success builds an ok envelope.
func Success() APIResponse {
	return APIResponse{Status: "ok"}
}

// Error builds an error envelope with the given message.
func Error(msg string) APIResponse {
	return APIResponse{Status: "error", Error: msg}
}
