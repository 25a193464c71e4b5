package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"agent-bootstrap/internal/auth"
	"agent-bootstrap/internal/config"
	"agent-bootstrap/internal/deps"
	"agent-bootstrap/pkg/interfaces"
)

var (
	// ErrMissingDependencies is returned when a required dependency does not resolve.
	ErrMissingDependencies = errors.New("missing essential dependencies")
	// ErrApplication is returned when the agent application cannot be built.
	ErrApplication = errors.New("failed to build agent application")
)

// Options configures a bootstrap run
type Options struct {
	// Env defaults to the process environment.
	Env config.Environment
	// ConfigFile is an optional YAML or JSON config file.
	ConfigFile string
	Logger     *zap.Logger
	// Stdout receives the startup banner.
	Stdout io.Writer
	// Resolver defaults to deps.DefaultRegistry.
	Resolver deps.Resolver
	NewApp   interfaces.AppFactory
}

// Server is a fully decorated agent application, ready to serve
type Server struct {
	config *config.Config
	app    interfaces.Application
	guard  *auth.Guard
	logger *zap.Logger
	stdout io.Writer
}

// Run prepares the server and serves until ctx is done.
func Run(ctx context.Context, opts Options) error {
	s, err := Prepare(ctx, opts)
	if err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Prepare configures the environment, probes dependencies, builds the
// application and registers the bootstrap endpoints. It does not listen.
func Prepare(ctx context.Context, opts Options) (*Server, error) {
	if opts.Env == nil {
		opts.Env = config.OSEnvironment{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.NewApp == nil {
		return nil, fmt.Errorf("%w: no application factory", ErrApplication)
	}
	logger := opts.Logger

	if err := config.ApplyEnvironment(opts.Env, logger); err != nil {
		return nil, fmt.Errorf("failed to configure environment: %w", err)
	}

	cfg, err := config.Load(opts.Env, opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.EnsureDirectories(cfg.TempRoot, cfg.WorkspaceBase, cfg.FileStorePath); err != nil {
		return nil, err
	}
	logger.Info("Personal environment configured for OpenRouter", zap.String("temp_root", cfg.TempRoot))

	resolver := opts.Resolver
	if resolver == nil {
		resolver = deps.DefaultRegistry(cfg, opts.Env)
	}
	report := deps.NewProber(resolver, logger).Check(ctx)
	if !report.OK() {
		return nil, fmt.Errorf("%w: %s", ErrMissingDependencies, strings.Join(report.Missing, ", "))
	}

	logger.Info("Building agent application")
	app, err := opts.NewApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrApplication, err)
	}
	logger.Info("Agent application ready")

	guard := auth.NewGuard(cfg.AccessToken)
	if !guard.Configured() {
		logger.Warn("PERSONAL_ACCESS_TOKEN not set, protected endpoints will reject every request")
	}

	s := &Server{
		config: cfg,
		app:    app,
		guard:  guard,
		logger: logger,
		stdout: opts.Stdout,
	}

	app.Use(CORS(cfg.CORS))
	app.Handle(http.MethodGet, "/health", http.HandlerFunc(s.handleHealth))
	app.Handle(http.MethodGet, "/personal-info", guard.Middleware(http.HandlerFunc(s.handlePersonalInfo)))

	return s, nil
}

// Config returns the loaded configuration
func (s *Server) Config() *config.Config { return s.config }

// Handler returns the decorated application handler
func (s *Server) Handler() http.Handler { return s.app.Handler() }

// Serve prints the banner and blocks serving requests until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	PrintBanner(s.stdout, s.config)
	s.logger.Info("Starting Personal OpenHands Backend", zap.String("addr", s.config.ListenAddr()))
	return s.app.Serve(ctx, s.config.ListenAddr())
}
