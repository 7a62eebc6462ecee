// Package server exposes the conversation boundary over HTTP. The only
// endpoint is POST /chat; everything stateful lives behind the Converser.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Converser runs one user message through an agent session and returns
// the assistant's reply together with the session id that was used.
type Converser interface {
	Converse(ctx context.Context, sessionID, message string) (reply, id string, err error)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server is the HTTP front of the assistant.
type Server struct {
	converser Converser
	logger    zerolog.Logger
}

func New(converser Converser, logger zerolog.Logger) *Server {
	return &Server{converser: converser, logger: logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No message provided"})
		return
	}

	reply, sessionID, err := s.converser.Converse(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", req.SessionID).Msg("conversation failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "An error occurred during processing."})
		return
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Dur("elapsed", time.Since(started)).
		Msg("chat handled")
	writeJSON(w, http.StatusOK, chatResponse{Response: reply, SessionID: sessionID})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
