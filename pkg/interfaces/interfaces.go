package interfaces

import (
	"context"
	"net/http"

	"agent-bootstrap/internal/config"
)

// Middleware wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// Application is the agent server the bootstrapper decorates and runs.
type Application interface {
	// Use adds middleware around every request, matched route or not.
	Use(mw ...Middleware)
	// Handle registers a handler for method and path.
	Handle(method, path string, handler http.Handler)
	// Handler returns the fully wrapped request handler.
	Handler() http.Handler
	// Serve listens on addr and blocks until ctx is done or the listener fails.
	Serve(ctx context.Context, addr string) error
}

// AppFactory constructs an Application from configuration
type AppFactory func(cfg *config.Config) (Application, error)

// LLMMessage represents a message in a conversation
type LLMMessage struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// LLM provides language model capabilities
type LLM interface {
	ListModels(ctx context.Context) ([]string, error)
	Complete(ctx context.Context, messages []LLMMessage) (string, error)
	Model() string
}
