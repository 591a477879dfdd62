package docs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmayachting/charterdesk/internal/models"
)

func TestCloudSearchDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "charter terms" {
			t.Errorf("query = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("authorization header = %q", got)
		}
		json.NewEncoder(w).Encode([]models.DocumentMatch{
			{Title: "Terms.pdf", Link: "https://drive.example.com/terms"},
		})
	}))
	defer srv.Close()

	c := NewCloudSearch(WithCloudBaseURL(srv.URL), WithCloudAPIKey("key"))
	matches, err := c.SearchDocuments(context.Background(), "charter terms")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || matches[0].Title != "Terms.pdf" {
		t.Errorf("unexpected matches: %+v", matches)
	}
}

func TestCloudSearchUnconfigured(t *testing.T) {
	c := NewCloudSearch()
	_, err := c.SearchDocuments(context.Background(), "anything")
	if !errors.Is(err, models.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCloudSearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewCloudSearch(WithCloudBaseURL(srv.URL), WithCloudAPIKey("key"))
	if _, err := c.SearchDocuments(context.Background(), "anything"); err == nil {
		t.Error("expected an error for a 500 response")
	}
}
