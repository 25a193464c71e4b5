package deps

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"sync"

	"github.com/gorilla/mux"

	"agent-bootstrap/internal/config"
	"agent-bootstrap/internal/llm"
)

// ErrUnknownDependency is returned for names with no registered check.
var ErrUnknownDependency = errors.New("unknown dependency")

// Resolver resolves a dependency by name. A nil error means it is available.
type Resolver interface {
	Resolve(ctx context.Context, name string) error
}

// CheckFunc reports whether a single dependency is available
type CheckFunc func(ctx context.Context) error

// Registry resolves dependencies through registered checks
type Registry struct {
	checks map[string]CheckFunc
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{checks: make(map[string]CheckFunc)}
}

// Register registers a check under name, replacing any previous one
func (r *Registry) Register(name string, check CheckFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[name] = check
}

// Resolve runs the check registered for name
func (r *Registry) Resolve(ctx context.Context, name string) error {
	r.mu.RLock()
	check, ok := r.checks[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDependency, name)
	}
	return check(ctx)
}

// DefaultRegistry registers the checks for the built-in dependency names.
func DefaultRegistry(cfg *config.Config, env config.Environment) *Registry {
	r := NewRegistry()
	r.Register(Router, checkRouter)
	r.Register(Listener, func(ctx context.Context) error {
		return checkListener(ctx, cfg.ListenAddr())
	})
	r.Register(LLMClient, func(ctx context.Context) error {
		_, err := llm.NewClient(&cfg.LLM)
		return err
	})
	r.Register(Docker, func(ctx context.Context) error {
		_, err := exec.LookPath("docker")
		return err
	})
	r.Register(GoogleCloud, func(ctx context.Context) error {
		if creds, _ := env.Lookup("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
			return nil
		}
		_, err := exec.LookPath("gcloud")
		return err
	})
	return r
}

// checkRouter makes sure a router can be built and dispatches requests.
func checkRouter(ctx context.Context) error {
	router := mux.NewRouter()
	router.HandleFunc("/health", func(http.ResponseWriter, *http.Request) {}).Methods(http.MethodGet)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	var match mux.RouteMatch
	if !router.Match(req, &match) {
		return fmt.Errorf("router did not match /health")
	}
	return nil
}

// checkListener binds addr and releases it right away.
func checkListener(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return l.Close()
}
