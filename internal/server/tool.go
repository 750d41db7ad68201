package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Tool is the interface all remote-invocable tools must implement.
type Tool interface {
	Name() string
	Description() string
	Parameters() json.RawMessage // JSON Schema
	Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error)
}

// ToolResult is the structured payload returned to the remote caller.
type ToolResult struct {
	Content []ContentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ContentItem is one element of a tool result.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextResult builds a single-text-item result.
func TextResult(text string) *ToolResult {
	return &ToolResult{Content: []ContentItem{{Type: "text", Text: text}}}
}

// Registry holds the tools exposed over the RPC surface.
type Registry struct {
	tools map[string]Tool
	names []string // registration order, for stable listings
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; !exists {
		r.names = append(r.names, t.Name())
	}
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Execute runs the named tool. Unknown tools and execution failures are
// reported as error results rather than transport failures, so a bad
// call never tears down the session.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) *ToolResult {
	t, ok := r.Get(name)
	if !ok {
		res := TextResult(fmt.Sprintf("Unknown tool: %s", name))
		res.IsError = true
		return res
	}
	result, err := t.Execute(ctx, args)
	if err != nil {
		res := TextResult(fmt.Sprintf("Error executing %s: %v", name, err))
		res.IsError = true
		return res
	}
	return result
}

// toolInfo is the tools/list wire shape.
type toolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// List returns tool descriptors in registration order.
func (r *Registry) List() []toolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]toolInfo, 0, len(r.names))
	for _, name := range r.names {
		t := r.tools[name]
		infos = append(infos, toolInfo{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Parameters(),
		})
	}
	return infos
}
