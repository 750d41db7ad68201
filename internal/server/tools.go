package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coopco/postpilot/internal/publisher"
)

// CreatePostTool exposes the publisher gateway as a remote tool.
type CreatePostTool struct {
	pub publisher.Publisher
}

func NewCreatePostTool(pub publisher.Publisher) *CreatePostTool {
	return &CreatePostTool{pub: pub}
}

func (t *CreatePostTool) Name() string { return "createPost" }

func (t *CreatePostTool) Description() string {
	return "Create a post on X formerly known as Twitter"
}

func (t *CreatePostTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"status": {
				"type": "string",
				"description": "Text of the post"
			},
			"mediaPath": {
				"type": "string",
				"description": "Optional path to an image, GIF, or video to attach"
			}
		},
		"required": ["status"]
	}`)
}

func (t *CreatePostTool) Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error) {
	var p struct {
		Status    string `json:"status"`
		MediaPath string `json:"mediaPath"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	result, err := t.pub.Publish(ctx, p.Status, p.MediaPath)
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Posted: %s", result.Text)
	if result.MediaAttached {
		text += " [with media]"
	}
	return TextResult(text), nil
}

// AddTwoNumbersTool is a trivial protocol smoke-test tool.
type AddTwoNumbersTool struct{}

func (t *AddTwoNumbersTool) Name() string        { return "addTwoNumbers" }
func (t *AddTwoNumbersTool) Description() string { return "Add two numbers" }

func (t *AddTwoNumbersTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"a": {"type": "number"},
			"b": {"type": "number"}
		},
		"required": ["a", "b"]
	}`)
}

func (t *AddTwoNumbersTool) Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error) {
	var p struct {
		A float64 `json:"a"`
		B float64 `json:"b"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	return TextResult(fmt.Sprintf("The sum of %g and %g is %g", p.A, p.B, p.A+p.B)), nil
}
