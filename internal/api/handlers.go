package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmayachting/charterdesk/internal/draft"
	"github.com/dmayachting/charterdesk/internal/models"
)

// chatMessageRequest is the body of POST /api/chat/message.
type chatMessageRequest struct {
	Message string             `json:"message"`
	Context models.TurnContext `json:"context"`
	UserID  string             `json:"userId"`
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Server.handleChatMessage: invalid request body", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("invalid request body"))
		return
	}
	if req.Message == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptyMessage.Error()))
		return
	}

	result := s.flow.ProcessMessage(r.Context(), req.Message, req.Context, req.UserID)
	writeJSONResponse(w, http.StatusOK, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	history, err := s.flow.GetChatHistory(r.Context(), userID)
	if err != nil {
		slog.Error("Server.handleGetHistory: failed to load history", "userID", userID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to load history"))
		return
	}
	writeJSONResponse(w, http.StatusOK, history)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if err := s.flow.ClearChatHistory(r.Context(), userID); err != nil {
		slog.Error("Server.handleClearHistory: failed to clear history", "userID", userID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to clear history"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success())
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	insights, err := s.flow.GetAgentInsights(r.Context(), userID)
	if err != nil {
		slog.Error("Server.handleInsights: failed to assemble insights", "userID", userID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to assemble insights"))
		return
	}
	writeJSONResponse(w, http.StatusOK, insights)
}

// capabilities is the static descriptor of what the agent can do.
var capabilities = map[string]map[string]string{
	"document_management": {
		"search":   "Search through uploaded documents",
		"retrieve": "Get specific document content",
		"analyze":  "Analyze document content",
	},
	"charter_services": {
		"availability": "Check yacht availability",
		"details":      "Get yacht information",
		"booking":      "Assist with booking process",
	},
	"general_assistance": {
		"chat":       "General conversation and Q&A",
		"navigation": "Help with using the system",
		"support":    "Technical support and guidance",
	},
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, capabilities)
}

func (s *Server) handleEmailDraft(w http.ResponseWriter, r *http.Request) {
	if s.drafts == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("email drafts not configured"))
		return
	}
	var req draft.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("invalid request body"))
		return
	}
	result, err := s.drafts.CreateDraft(r.Context(), req)
	if err != nil {
		slog.Error("Server.handleEmailDraft: draft generation failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to generate draft"))
		return
	}
	writeJSONResponse(w, http.StatusOK, result)
}
