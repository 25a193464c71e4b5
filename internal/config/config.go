package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the runtime configuration of the agent server, built once at
// startup and passed by reference to everything that needs it.
type Config struct {
	Host          string `json:"host" mapstructure:"host" validate:"required"`
	Port          int    `json:"port" mapstructure:"port" validate:"min=1,max=65535"`
	Runtime       string `json:"runtime" mapstructure:"runtime" validate:"required"`
	WorkspaceBase string `json:"workspace_base" mapstructure:"workspace_base"`
	FileStore     string `json:"file_store" mapstructure:"file_store"`
	FileStorePath string `json:"file_store_path" mapstructure:"file_store_path"`
	MaxIterations int    `json:"max_iterations" mapstructure:"max_iterations" validate:"min=1,max=1000"`
	DefaultAgent  string `json:"default_agent" mapstructure:"default_agent" validate:"required"`

	// AccessToken guards protected endpoints. Empty means every protected
	// request is rejected.
	AccessToken string `json:"access_token,omitempty" mapstructure:"access_token"`

	// TempRoot is where the scratch directories are created.
	TempRoot string `json:"temp_root" mapstructure:"temp_root" validate:"required"`

	LLM  LLMConfig  `json:"llm" mapstructure:"llm"`
	CORS CORSConfig `json:"cors" mapstructure:"cors"`

	// Logging
	LogLevel  string `json:"log_level" mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `json:"log_format" mapstructure:"log_format" validate:"oneof=json console"`
}

// LLMConfig configuration for the OpenAI-compatible LLM endpoint
type LLMConfig struct {
	BaseURL string  `json:"base_url" mapstructure:"base_url" validate:"required,url"`
	Model   string  `json:"model" mapstructure:"model" validate:"required"`
	APIKey  string  `json:"api_key,omitempty" mapstructure:"api_key"`
	Timeout float64 `json:"timeout" mapstructure:"timeout" validate:"min=1,max=3600"`
}

// CORSConfig configuration for cross-origin requests
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins" mapstructure:"allowed_origins" validate:"min=1,dive,required"`
	AllowCredentials bool     `json:"allow_credentials" mapstructure:"allow_credentials"`
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"host":                   "HOST",
	"port":                   "PORT",
	"runtime":                "OPENHANDS_RUNTIME",
	"workspace_base":         "WORKSPACE_BASE",
	"file_store":             "FILE_STORE",
	"file_store_path":        "FILE_STORE_PATH",
	"max_iterations":         "MAX_ITERATIONS",
	"default_agent":          "DEFAULT_AGENT",
	"access_token":           "PERSONAL_ACCESS_TOKEN",
	"temp_root":              "BOOTSTRAP_TEMP_ROOT",
	"llm.base_url":           "LLM_BASE_URL",
	"llm.model":              "LLM_MODEL",
	"llm.api_key":            "LLM_API_KEY",
	"llm.timeout":            "LLM_TIMEOUT",
	"cors.allowed_origins":   "CORS_ALLOWED_ORIGINS",
	"cors.allow_credentials": "CORS_ALLOW_CREDENTIALS",
	"log_level":              "LOG_LEVEL",
	"log_format":             "LOG_FORMAT",
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Host:          "0.0.0.0",
		Port:          7860,
		Runtime:       "local",
		WorkspaceBase: "/tmp/workspace",
		FileStore:     "local",
		FileStorePath: "/tmp/openhands_storage",
		MaxIterations: 30,
		DefaultAgent:  "CodeActAgent",
		TempRoot:      DefaultTempRoot,
		LLM: LLMConfig{
			BaseURL: "https://openrouter.ai/api/v1",
			Model:   "openrouter/anthropic/claude-3-haiku-20240307",
			Timeout: 120.0,
		},
		CORS: CORSConfig{
			AllowedOrigins:   []string{"*"},
			AllowCredentials: true,
		},
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// Load builds the configuration from defaults, an optional config file and
// the environment, in increasing order of precedence.
func Load(env Environment, configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for key, name := range envBindings {
		if value, ok := env.Lookup(name); ok {
			v.Set(key, value)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("host", d.Host)
	v.SetDefault("port", d.Port)
	v.SetDefault("runtime", d.Runtime)
	v.SetDefault("workspace_base", d.WorkspaceBase)
	v.SetDefault("file_store", d.FileStore)
	v.SetDefault("file_store_path", d.FileStorePath)
	v.SetDefault("max_iterations", d.MaxIterations)
	v.SetDefault("default_agent", d.DefaultAgent)
	v.SetDefault("access_token", d.AccessToken)
	v.SetDefault("temp_root", d.TempRoot)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("cors.allowed_origins", d.CORS.AllowedOrigins)
	v.SetDefault("cors.allow_credentials", d.CORS.AllowCredentials)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validate := validator.New()

	// CORS_ALLOWED_ORIGINS is comma separated; drop the blanks around commas.
	origins := make([]string, 0, len(c.CORS.AllowedOrigins))
	for _, origin := range c.CORS.AllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	c.CORS.AllowedOrigins = origins

	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)

	return validate.Struct(c)
}

// ListenAddr returns the host:port the server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Masked returns a copy with secrets replaced by asterisks.
func (c *Config) Masked() Config {
	configCopy := *c

	if configCopy.LLM.APIKey != "" {
		configCopy.LLM.APIKey = strings.Repeat("*", len(configCopy.LLM.APIKey))
	}
	if configCopy.AccessToken != "" {
		configCopy.AccessToken = strings.Repeat("*", len(configCopy.AccessToken))
	}

	return configCopy
}

// String returns a string representation of the config (with sensitive data masked)
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c.Masked(), "", "  ")
	return string(data)
}
