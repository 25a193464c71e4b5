package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// DefaultTempRoot is the parent of the scratch directories.
const DefaultTempRoot = "/tmp"

// Environment is the process environment as seen by the configurator.
type Environment interface {
	Lookup(key string) (string, bool)
	Set(key, value string) error
}

// OSEnvironment reads and writes the real process environment.
type OSEnvironment struct{}

func (OSEnvironment) Lookup(key string) (string, bool) { return os.LookupEnv(key) }

func (OSEnvironment) Set(key, value string) error { return os.Setenv(key, value) }

// MapEnvironment is an in-memory Environment.
type MapEnvironment map[string]string

func (m MapEnvironment) Lookup(key string) (string, bool) {
	value, ok := m[key]
	return value, ok
}

func (m MapEnvironment) Set(key, value string) error {
	m[key] = value
	return nil
}

// Setting is a single environment variable assignment.
type Setting struct {
	Name  string
	Value string
}

// Defaults are applied only when the variable is absent.
var Defaults = []Setting{
	{"PORT", "7860"},
	{"HOST", "0.0.0.0"},
	{"OPENHANDS_RUNTIME", "local"},
	{"CORS_ALLOWED_ORIGINS", "*"},
	{"OPENHANDS_DISABLE_AUTH", "true"},
	{"DISABLE_SECURITY", "true"},
	{"WORKSPACE_BASE", "/tmp/workspace"},
	{"RUNTIME", "local"},
	{"SANDBOX_TYPE", "local"},
	{"FILE_STORE", "local"},
	{"FILE_STORE_PATH", "/tmp/openhands_storage"},
	{"MAX_ITERATIONS", "30"},
	{"DEFAULT_AGENT", "CodeActAgent"},
	{"LLM_BASE_URL", "https://openrouter.ai/api/v1"},
	{"LLM_MODEL", "openrouter/anthropic/claude-3-haiku-20240307"},
}

// Forced are always written. The deployment filesystem is ephemeral, so
// every store is in-memory and nothing logs to files.
var Forced = []Setting{
	{"SETTINGS_STORE_TYPE", "memory"},
	{"SECRETS_STORE_TYPE", "memory"},
	{"CONVERSATION_STORE_TYPE", "memory"},
	{"SESSION_STORE_TYPE", "memory"},
	{"DISABLE_FILE_LOGGING", "true"},
	{"DISABLE_PERSISTENT_SESSIONS", "true"},
	{"SERVE_FRONTEND", "false"},
	{"SECURITY_CONFIRMATION_MODE", "false"},
}

// rootedDefaults are the Defaults that live under the temp root. Their table
// values assume DefaultTempRoot.
var rootedDefaults = map[string]string{
	"WORKSPACE_BASE":  "workspace",
	"FILE_STORE_PATH": "openhands_storage",
}

// ScratchDirectories are created under the temp root before serving.
var ScratchDirectories = []string{
	"openhands",
	"cache",
	"workspace",
	"file_store",
	"openhands_storage",
}

// ApplyEnvironment writes the deployment defaults into env. A variable that is
// already present keeps its value; forced variables are always overwritten.
func ApplyEnvironment(env Environment, logger *zap.Logger) error {
	logger.Info("Setting up personal environment for OpenRouter")

	root, _ := env.Lookup("BOOTSTRAP_TEMP_ROOT")
	if root == "" {
		root = DefaultTempRoot
	}

	for _, s := range Defaults {
		if _, ok := env.Lookup(s.Name); ok {
			continue
		}
		value := s.Value
		if rel, ok := rootedDefaults[s.Name]; ok {
			value = filepath.Join(root, rel)
		}
		if err := env.Set(s.Name, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", s.Name, err)
		}
	}

	for _, s := range Forced {
		if err := env.Set(s.Name, s.Value); err != nil {
			return fmt.Errorf("failed to set %s: %w", s.Name, err)
		}
	}

	if key, _ := env.Lookup("LLM_API_KEY"); key == "" {
		logger.Warn("LLM_API_KEY not set, set your OpenRouter API key in the deployment environment")
		logger.Info("Required environment variables",
			zap.String("LLM_API_KEY", "your OpenRouter API key"),
			zap.String("PERSONAL_ACCESS_TOKEN", "your secret token"))
	} else {
		logger.Info("OpenRouter API key found")
	}

	return nil
}

// EnsureDirectories creates the scratch directories under root, then each of
// extra. Existing directories are left alone; any other failure is returned.
func EnsureDirectories(root string, extra ...string) error {
	dirs := make([]string, 0, len(ScratchDirectories)+len(extra))
	for _, name := range ScratchDirectories {
		dirs = append(dirs, filepath.Join(root, name))
	}
	for _, dir := range extra {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("cannot create directory %s: %w", dir, err)
		}
	}
	return nil
}
