package agentserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"agent-bootstrap/internal/config"
	"agent-bootstrap/internal/llm"
	"agent-bootstrap/pkg/interfaces"
)

const shutdownTimeout = 30 * time.Second

// Server is the default agent application
type Server struct {
	config     *config.Config
	llm        interfaces.LLM
	logger     *zap.Logger
	router     *mux.Router
	middleware []interfaces.Middleware
}

// New creates a server with the agent API routes registered
func New(cfg *config.Config, client interfaces.LLM, logger *zap.Logger) *Server {
	s := &Server{
		config: cfg,
		llm:    client,
		logger: logger,
		router: mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// NewFactory returns an AppFactory that builds a Server with an LLM client
// for the configured endpoint.
func NewFactory(logger *zap.Logger) interfaces.AppFactory {
	return func(cfg *config.Config) (interfaces.Application, error) {
		client, err := llm.CreateWithConfig(&cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		return New(cfg, client, logger), nil
	}
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Options
	api.HandleFunc("/options/agents", s.handleAgents).Methods(http.MethodGet)
	api.HandleFunc("/options/models", s.handleModels).Methods(http.MethodGet)
	api.HandleFunc("/options/config", s.handleGetConfig).Methods(http.MethodGet)

	// Conversation
	api.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
}

// Use adds middleware. The first one added is the outermost.
func (s *Server) Use(mw ...interfaces.Middleware) {
	s.middleware = append(s.middleware, mw...)
}

// Handle registers handler for method and path
func (s *Server) Handle(method, path string, handler http.Handler) {
	s.router.Handle(path, handler).Methods(method)
}

// Handler returns the router wrapped in request logging and every
// registered middleware.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	for i := len(s.middleware) - 1; i >= 0; i-- {
		h = s.middleware[i](h)
	}
	return s.loggingMiddleware(h)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(s.config.LLM.Timeout*float64(time.Second)) + 30*time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("Starting agent server", zap.String("addr", addr))
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("Server stopped")
	return nil
}

// Middleware for logging requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
