// Package models abstracts the completion providers behind a single chat
// interface. A provider receives the conversation so far plus the tool
// catalog and answers with either plain text or a batch of requested tool
// calls; the agent loop never talks to an SDK directly.
package models

import "context"

// Roles carried on conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a provider-requested tool invocation.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Message is one entry of the rendered conversation.
// Assistant messages may carry ToolCalls; tool messages answer a prior call
// and carry the originating CallID and ToolName.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	CallID     string
	ToolName   string
	ToolFailed bool
}

// ToolParam describes a single declared argument of a tool.
type ToolParam struct {
	Name        string
	Type        string // "string", "integer", "number", "boolean", "object"
	Description string
	Required    bool
}

// ToolDecl is the provider-facing view of a registered tool.
type ToolDecl struct {
	Name        string
	Description string
	Params      []ToolParam
}

// ChatRequest aggregates everything a provider needs for one reasoning round.
type ChatRequest struct {
	System   string
	Messages []Message
	Tools    []ToolDecl
}

// Completion is the provider's answer: final text, or tool calls to run.
type Completion struct {
	Text      string
	ToolCalls []ToolCall
}

// ChatModel is implemented by every completion provider backend.
type ChatModel interface {
	Chat(ctx context.Context, req ChatRequest) (*Completion, error)
}

// SchemaMap renders a tool declaration's parameters as a JSON-schema object,
// the shape shared by the OpenAI, Anthropic and Ollama tool APIs.
func SchemaMap(decl ToolDecl) map[string]any {
	properties := make(map[string]any, len(decl.Params))
	var required []string
	for _, p := range decl.Params {
		typ := p.Type
		if typ == "" {
			typ = "string"
		}
		properties[p.Name] = map[string]any{
			"type":        typ,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
