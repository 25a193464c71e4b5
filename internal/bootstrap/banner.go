package bootstrap

import (
	"fmt"
	"io"
	"strings"

	"agent-bootstrap/internal/config"
)

var rule = strings.Repeat("=", 60)

// PrintBanner writes the human-readable startup summary.
func PrintBanner(w io.Writer, cfg *config.Config) {
	model := cfg.LLM.Model
	if model == "" {
		model = "Not configured"
	}

	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintln(w, "Personal OpenHands Backend")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Server: %s\n", cfg.ListenAddr())
	fmt.Fprintf(w, "LLM API Key: %s\n", presence(cfg.LLM.APIKey))
	fmt.Fprintf(w, "Personal Token: %s\n", presence(cfg.AccessToken))
	fmt.Fprintf(w, "LLM Model: %s\n", model)
	fmt.Fprintf(w, "Runtime: %s\n", cfg.Runtime)
	fmt.Fprintf(w, "Default Agent: %s\n", cfg.DefaultAgent)
	fmt.Fprintf(w, "CORS Origins: %s\n", strings.Join(cfg.CORS.AllowedOrigins, ", "))
	fmt.Fprintln(w, "Protected endpoints require Bearer token")
	fmt.Fprintf(w, "%s\n\n", rule)
}

func presence(value string) string {
	if value == "" {
		return "Missing"
	}
	return "Set"
}
