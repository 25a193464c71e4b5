package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"agent-bootstrap/internal/config"
	"agent-bootstrap/pkg/interfaces"
)

// ErrNoChoices is returned when the endpoint answers without any choice.
var ErrNoChoices = errors.New("llm returned no choices")

// routingPrefix selects the OpenRouter provider in model names such as
// "openrouter/anthropic/claude-3-haiku". The API itself expects the rest.
const routingPrefix = "openrouter/"

// Client implements the LLM interface for OpenAI-compatible endpoints
type Client struct {
	api   *openai.Client
	model string
}

// NewClient creates a new client for the configured endpoint
func NewClient(cfg *config.LLMConfig) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base_url: %q", cfg.BaseURL)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	timeout := time.Duration(cfg.Timeout * float64(time.Second))
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	openaiConfig := openai.DefaultConfig(cfg.APIKey)
	openaiConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	openaiConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:   openai.NewClientWithConfig(openaiConfig),
		model: WireModel(cfg.Model),
	}, nil
}

// CreateWithConfig builds the client behind the LLM interface. On error the
// returned interface is nil, not a typed nil *Client.
func CreateWithConfig(cfg *config.LLMConfig) (interfaces.LLM, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// WireModel strips the OpenRouter routing prefix from a model name.
func WireModel(model string) string {
	return strings.TrimPrefix(model, routingPrefix)
}

// Model returns the model name sent to the endpoint
func (c *Client) Model() string { return c.model }

// ListModels returns the ids of the models the endpoint serves
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	ids := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// Complete sends messages to the LLM and returns the first choice
func (c *Client) Complete(ctx context.Context, messages []interfaces.LLMMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: make([]openai.ChatCompletionMessage, len(messages)),
	}
	for i, msg := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}
