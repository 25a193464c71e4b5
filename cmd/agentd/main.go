package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agent-bootstrap/internal/agentserver"
	"agent-bootstrap/internal/bootstrap"
	"agent-bootstrap/internal/config"
	"agent-bootstrap/internal/deps"
	"agent-bootstrap/internal/logging"
)

var (
	configFile string
	envFile    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "agentd",
		Short: "Personal agent server",
		Long: `Bootstraps a personal AI agent server: applies deployment defaults,
checks dependencies, then serves the agent API with a public health check and
a bearer-protected info endpoint.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before startup if present")

	// Serve command
	var serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the agent server",
		RunE:  runServe,
	}

	// Check command
	var checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Apply the environment and probe dependencies",
		Long:  `Apply the deployment environment, create the scratch directories and report which dependencies resolve. Exits non-zero when a required one is missing.`,
		RunE:  runCheck,
	}

	// Config command
	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	var configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		RunE:  runConfigShow,
	}

	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(serveCmd, checkCmd, configCmd)

	return rootCmd
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unexpected error", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("unexpected error: %v", r)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = bootstrap.Run(ctx, bootstrap.Options{
		Env:        config.OSEnvironment{},
		ConfigFile: configFile,
		Logger:     logger,
		Stdout:     cmd.OutOrStdout(),
		NewApp:     agentserver.NewFactory(logger),
	})
	if err != nil {
		switch {
		case errors.Is(err, bootstrap.ErrMissingDependencies):
			logger.Error("Missing essential dependencies", zap.Error(err))
		case errors.Is(err, bootstrap.ErrApplication):
			logger.Error("Agent application failed to load", zap.Error(err))
		default:
			logger.Error("Unexpected error", zap.Error(err))
		}
		return err
	}

	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	env := config.OSEnvironment{}
	if err := config.ApplyEnvironment(env, logger); err != nil {
		return err
	}

	cfg, err := config.Load(env, configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.EnsureDirectories(cfg.TempRoot, cfg.WorkspaceBase, cfg.FileStorePath); err != nil {
		return err
	}

	report := deps.NewProber(deps.DefaultRegistry(cfg, env), logger).Check(cmd.Context())

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if !report.OK() {
		return bootstrap.ErrMissingDependencies
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if err := loadEnvFile(); err != nil {
		return err
	}

	env := config.OSEnvironment{}
	if err := config.ApplyEnvironment(env, zap.NewNop()); err != nil {
		return err
	}

	cfg, err := config.Load(env, configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cfg.String())
	return nil
}

// setup loads the dotenv file and builds the logger from LOG_LEVEL and
// LOG_FORMAT.
func setup() (*zap.Logger, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	logger, err := logging.New(level, os.Getenv("LOG_FORMAT"))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// loadEnvFile loads envFile when it exists. Variables already set win.
func loadEnvFile() error {
	if envFile == "" {
		return nil
	}
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	return nil
}
