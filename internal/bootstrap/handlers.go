package bootstrap

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"agent-bootstrap/internal/agentserver"
)

// HealthResponse is the public liveness document
type HealthResponse struct {
	Status            string            `json:"status"`
	Message           string            `json:"message"`
	Features          []string          `json:"features"`
	AuthRequired      string            `json:"auth_required"`
	SetupInstructions map[string]string `json:"setup_instructions"`
}

// PersonalInfo is the protected feature catalog
type PersonalInfo struct {
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	Setup               string              `json:"setup"`
	Features            map[string][]string `json:"features"`
	LLMSetup            map[string]string   `json:"llm_setup"`
	MinimalDependencies []string            `json:"minimal_dependencies"`
}

var novelWriting = []string{
	"Indonesian language support",
	"7 creative templates",
	"Character development",
	"Plot structure",
	"Dialogue writing",
}

var healthResponse = HealthResponse{
	Status:  "healthy",
	Message: "Personal OpenHands Backend is running!",
	Features: []string{
		"AI Agents (CodeActAgent, BrowsingAgent, etc.)",
		"Novel Writing (Indonesian)",
		"File Operations",
		"No Google Cloud needed",
		"No Docker needed",
	},
	AuthRequired: "Bearer token required for protected endpoints",
	SetupInstructions: map[string]string{
		"step1": "Set LLM_API_KEY in the deployment environment variables",
		"step2": "Set PERSONAL_ACCESS_TOKEN for authentication",
		"step3": "Use Bearer token in Authorization header",
	},
}

func personalInfo() PersonalInfo {
	agents := make([]string, 0, len(agentserver.Agents))
	for _, a := range agentserver.Agents {
		agents = append(agents, fmt.Sprintf("%s - %s", a.Name, a.Description))
	}

	fileOps := make([]string, 0, len(agentserver.FileOperations))
	for _, op := range agentserver.FileOperations {
		fileOps = append(fileOps, fmt.Sprintf("%s - %s", op.Command, op.Description))
	}

	return PersonalInfo{
		Title:       "Personal OpenHands Backend",
		Description: "Personal AI assistant backend",
		Setup:       "OpenRouter-only configuration",
		Features: map[string][]string{
			"ai_agents":       agents,
			"novel_writing":   novelWriting,
			"file_operations": fileOps,
		},
		LLMSetup: map[string]string{
			"provider":         "OpenRouter only",
			"api_key_needed":   "Your OpenRouter API key",
			"models_available": "All OpenRouter models (Claude, GPT, etc.)",
			"no_separate_keys": "No need for OpenAI or Anthropic keys",
		},
		MinimalDependencies: []string{
			"Only an OpenAI-compatible client for OpenRouter",
			"No OpenAI package",
			"No Anthropic package",
			"No Google Cloud Storage",
			"No Docker containers",
			"No E2B sandboxes",
			"Pure local + OpenRouter",
		},
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse)
}

func (s *Server) handlePersonalInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, personalInfo())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}
