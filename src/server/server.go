// Package server exposes the agent host over HTTP.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	host "github.com/itapia/agent-host"
)

// InteractRequest is the body of POST {base}/interact.
type InteractRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// InteractResponse is the success body of POST {base}/interact.
type InteractResponse struct {
	Response string `json:"response"`
}

// Server routes HTTP requests to the dispatcher.
type Server struct {
	dispatcher *host.Dispatcher
	baseRoute  string
	mux        *http.ServeMux
}

// New creates the host HTTP surface under baseRoute (e.g. "/api/v1").
func New(dispatcher *host.Dispatcher, baseRoute string) *Server {
	baseRoute = strings.TrimRight(baseRoute, "/")
	s := &Server{dispatcher: dispatcher, baseRoute: baseRoute, mux: http.NewServeMux()}
	s.mux.HandleFunc(baseRoute+"/interact", s.handleInteract)
	s.mux.HandleFunc(baseRoute+"/health", s.handleHealth)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleInteract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req InteractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "session_id and message are required")
		return
	}

	requestID := uuid.NewString()
	log.Printf("server: request %s session %s", requestID, req.SessionID)

	answer, err := s.dispatcher.Dispatch(r.Context(), req.SessionID, req.Message)
	if err != nil {
		log.Printf("server: request %s failed: %v", requestID, err)
		writeError(w, http.StatusBadGateway, "agent execution failed")
		return
	}

	writeJSON(w, http.StatusOK, InteractResponse{Response: answer})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
