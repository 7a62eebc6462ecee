// Package tools holds the concrete tools the agent can call: a sample
// time tool, the product-management operations, and company document
// search. Every constructor returns an assistant.Tool ready to register.
package tools

import (
	"context"

	"github.com/productstack/assistant"
)

// NewCurrentTime returns a demonstration tool with a fixed answer. It
// exists so the agent loop can be exercised without any backing service.
func NewCurrentTime() assistant.Tool {
	spec := assistant.ToolSpec{
		Name:        "get_current_time",
		Description: "Returns the current time. Useful for time-related questions.",
	}
	return assistant.NewFuncTool(spec, func(ctx context.Context, req assistant.ToolRequest) (assistant.ToolResponse, error) {
		return assistant.ToolResponse{Content: "The current time is 10:00 AM."}, nil
	})
}
