package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

const protocolVersion = "2024-11-05"

// jsonRPCRequest represents a JSON-RPC 2.0 request.
type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"` // nil for notifications
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// jsonRPCResponse represents a JSON-RPC 2.0 response.
type jsonRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Result  any           `json:"result,omitempty"`
	Error   *jsonRPCError `json:"error,omitempty"`
}

// jsonRPCError represents a JSON-RPC 2.0 error.
type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// MCPServer answers MCP requests (initialize, tools/list, tools/call)
// arriving over per-session transports.
type MCPServer struct {
	name     string
	version  string
	tools    *Registry
	sessions *SessionRegistry
}

func NewMCPServer(name, version string, tools *Registry) *MCPServer {
	return &MCPServer{
		name:     name,
		version:  version,
		tools:    tools,
		sessions: NewSessionRegistry(),
	}
}

// Sessions returns the session registry.
func (s *MCPServer) Sessions() *SessionRegistry { return s.sessions }

// HandleMessage processes one inbound JSON-RPC payload for the given
// session, sending any response back over that session's SSE stream.
func (s *MCPServer) HandleMessage(ctx context.Context, sessionID string, raw []byte) error {
	transport, ok := s.sessions.Get(sessionID)
	if !ok {
		return fmt.Errorf("no transport found for session %q", sessionID)
	}

	var req jsonRPCRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return transport.SendMessage(jsonRPCResponse{
			JSONRPC: "2.0",
			Error:   &jsonRPCError{Code: codeParseError, Message: "parse error"},
		})
	}

	resp := s.handleRequest(ctx, &req)
	if resp == nil {
		return nil // notification, no response
	}
	return transport.SendMessage(resp)
}

// handleRequest dispatches one request. Returns nil for notifications.
func (s *MCPServer) handleRequest(ctx context.Context, req *jsonRPCRequest) *jsonRPCResponse {
	if req.ID == nil {
		slog.Debug("mcp notification", "method", req.Method)
		return nil
	}

	resp := &jsonRPCResponse{JSONRPC: "2.0", ID: *req.ID}

	switch req.Method {
	case "initialize":
		resp.Result = map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]string{"name": s.name, "version": s.version},
		}

	case "tools/list":
		resp.Result = map[string]any{"tools": s.tools.List()}

	case "tools/call":
		var params struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			resp.Error = &jsonRPCError{Code: codeInvalidParams, Message: "invalid params"}
			break
		}
		if len(params.Arguments) == 0 {
			params.Arguments = json.RawMessage(`{}`)
		}
		resp.Result = s.tools.Execute(ctx, params.Name, params.Arguments)

	case "ping":
		resp.Result = map[string]any{}

	default:
		resp.Error = &jsonRPCError{Code: codeMethodNotFound, Message: fmt.Sprintf("method %q not found", req.Method)}
	}

	return resp
}
