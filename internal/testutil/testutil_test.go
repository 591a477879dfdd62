package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmayachting/charterdesk/internal/flow"
	"github.com/dmayachting/charterdesk/internal/models"
)

func TestNewTestServer(t *testing.T) {
	s := NewTestServer("ok")
	if s == nil {
		t.Fatal("expected a server")
	}

	handler := s.Handler()
	req := CreateHTTPRequest(t, http.MethodPost, "/api/chat/message",
		map[string]interface{}{"message": "hello", "userId": "u1"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	AssertHTTPStatus(t, http.StatusOK, rr.Code, "chat message")

	var result models.TurnResult
	DecodeJSONBody(t, rr, &result)
	if result.Message != flow.Greeting {
		t.Errorf("first reply = %q, want the greeting", result.Message)
	}
}

func TestAssertJSONResponse(t *testing.T) {
	s := NewTestServer("ok")
	handler := s.Handler()

	req := CreateHTTPRequest(t, http.MethodDelete, "/api/chat/history/u1", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	AssertHTTPStatus(t, http.StatusOK, rr.Code, "clear history")
	AssertJSONResponse(t, rr, "ok")
}
