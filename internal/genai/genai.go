// Package genai wraps the OpenAI API for reply and draft generation.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmayachting/charterdesk/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Generation defaults. The dialogue policy wants short, focused replies, so
// temperature stays low and output is capped.
const (
	DefaultModel           = openai.ChatModelGPT4_1Mini
	DefaultTemperature     = 0.4
	DefaultMaxOutputTokens = 400
)

// ClientInterface defines the generation operations the dialogue core
// consumes. Kept narrow so tests can substitute a mock.
type ClientInterface interface {
	// GenerateWithMessages produces a completion from a full message array
	// (system instructions, grounding context, history window, user turn).
	GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
	// GeneratePrompt produces a completion from a simple system/user pair.
	GeneratePrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Client wraps the OpenAI chat completion service.
type Client struct {
	client openai.Client
	model  openai.ChatModel
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the default chat model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = openai.ChatModel(model) }
}

// NewClient initializes a GenAI client. The key argument takes precedence;
// otherwise OPENAI_API_KEY is used.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	c := &Client{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	slog.Debug("genai.NewClient: client initialized", "model", c.model)
	return c, nil
}

// GenerateWithMessages produces a completion from a full message array.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(DefaultTemperature),
		MaxTokens:   openai.Int(DefaultMaxOutputTokens),
	})
	if err != nil {
		slog.Error("genai.GenerateWithMessages: completion failed", "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Error("genai.GenerateWithMessages: no choices returned")
		return "", models.ErrNoChoicesReturned
	}
	return resp.Choices[0].Message.Content, nil
}

// GeneratePrompt produces a completion from a system/user prompt pair.
func (c *Client) GeneratePrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.GenerateWithMessages(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(userPrompt),
	})
}

// MockClient implements ClientInterface without calling OpenAI (for tests).
// It returns Reply (or Err) and records every message array it receives.
type MockClient struct {
	Reply string
	Err   error

	Calls [][]openai.ChatCompletionMessageParamUnion
}

// NewMockClient returns a mock that answers with the given reply.
func NewMockClient(reply string) *MockClient {
	return &MockClient{Reply: reply}
}

func (m *MockClient) GenerateWithMessages(_ context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	m.Calls = append(m.Calls, messages)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

func (m *MockClient) GeneratePrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.GenerateWithMessages(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(userPrompt),
	})
}
