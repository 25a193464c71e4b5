package agentserver

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"agent-bootstrap/pkg/interfaces"
)

// APIResponse is the envelope of every agent API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ChatRequest is a single-turn conversation
type ChatRequest struct {
	Messages []interfaces.LLMMessage `json:"messages"`
}

// ChatResponse carries the assistant reply
type ChatResponse struct {
	Model   string `json:"model"`
	Content string `json:"content"`
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    Catalog(s.config.DefaultAgent),
	})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.llm.ListModels(r.Context())
	if err != nil {
		s.logger.Error("Failed to list models", zap.Error(err))
		s.writeErrorResponse(w, http.StatusBadGateway, "Failed to list models")
		return
	}

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"configured": s.config.LLM.Model,
			"models":     models,
		},
	})
}

// Configuration endpoint
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.config.Masked(),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if len(req.Messages) == 0 {
		s.writeErrorResponse(w, http.StatusBadRequest, "Messages are required")
		return
	}

	content, err := s.llm.Complete(r.Context(), req.Messages)
	if err != nil {
		s.logger.Error("Chat completion failed", zap.Error(err))
		s.writeErrorResponse(w, http.StatusBadGateway, "LLM request failed")
		return
	}

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ChatResponse{
			Model:   s.llm.Model(),
			Content: content,
		},
	})
}

// Helper methods

func (s *Server) writeJSONResponse(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, status int, message string) {
	response := APIResponse{
		Success: false,
		Error:   message,
	}

	s.writeJSONResponse(w, status, response)
}
