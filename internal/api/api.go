// Package api exposes the dialogue core over HTTP.
//
// It provides RESTful endpoints for processing chat messages, reading and
// clearing history, agent insights, capabilities, and email drafts. The
// handlers are thin adapters: all dialogue logic lives in the flow package.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmayachting/charterdesk/internal/draft"
	"github.com/dmayachting/charterdesk/internal/flow"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8080"

// Server wires HTTP routes to the dialogue core.
type Server struct {
	flow   *flow.CharterFlow
	drafts *draft.Service
	addr   string

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithDraftService wires the email draft service.
func WithDraftService(d *draft.Service) Option {
	return func(s *Server) { s.drafts = d }
}

// NewServer creates an API server around the dialogue core.
func NewServer(charterFlow *flow.CharterFlow, opts ...Option) *Server {
	s := &Server{flow: charterFlow, addr: DefaultAddr}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the route multiplexer. Exposed separately so tests can
// drive the server through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat/message", s.handleChatMessage)
	mux.HandleFunc("GET /api/chat/history/{userId}", s.handleGetHistory)
	mux.HandleFunc("DELETE /api/chat/history/{userId}", s.handleClearHistory)
	mux.HandleFunc("GET /api/chat/capabilities", s.handleCapabilities)
	mux.HandleFunc("GET /api/chat/insights", s.handleInsights)
	mux.HandleFunc("POST /api/email/draft", s.handleEmailDraft)
	return mux
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("Server.Run: API listening", "addr", s.addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
