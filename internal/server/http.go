package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/coopco/postpilot/internal/publisher"
	"github.com/coopco/postpilot/internal/store"
)

// Server is the gateway process's HTTP surface: the /create-post bridge
// used by the interactive client, and the MCP SSE transport.
type Server struct {
	pub    publisher.Publisher
	mcp    *MCPServer
	errlog *store.ErrorLog
}

func New(pub publisher.Publisher, mcp *MCPServer, errlog *store.ErrorLog) *Server {
	return &Server{pub: pub, mcp: mcp, errlog: errlog}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Post("/create-post", s.handleCreatePost)
	r.Get("/sse", s.handleSSE)
	r.Post("/messages", s.handleMessages)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createPostRequest struct {
	Status    string `json:"status"`
	MediaPath string `json:"mediaPath"`
}

type createPostResponse struct {
	Message string            `json:"message"`
	Error   string            `json:"error,omitempty"`
	Result  *publisher.Result `json:"result,omitempty"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, createPostResponse{
			Message: "Invalid request body.",
			Error:   err.Error(),
		})
		return
	}

	result, err := s.pub.Publish(r.Context(), req.Status, req.MediaPath)
	if err != nil {
		s.errlog.Append("create-post", err)
		slog.Error("publish failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, createPostResponse{
			Message: "Failed to publish post.",
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, createPostResponse{
		Message: "Post published successfully!",
		Result:  result,
	})
}

// handleSSE opens an SSE stream, registers the session, announces the
// message endpoint, and holds the connection until the client leaves.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sessionID := uuid.NewString()
	transport, err := NewSSETransport(sessionID, w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.mcp.Sessions().Add(transport)
	defer s.mcp.Sessions().Remove(sessionID)
	slog.Info("mcp session connected", "sessionId", sessionID)

	if err := transport.SendEvent("endpoint", "/messages?sessionId="+sessionID); err != nil {
		slog.Error("failed to announce endpoint", "sessionId", sessionID, "error", err)
		return
	}

	<-r.Context().Done()
	slog.Info("mcp session disconnected", "sessionId", sessionID)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if err := s.mcp.HandleMessage(r.Context(), sessionID, body); err != nil {
		http.Error(w, "No transport found for sessionId", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
