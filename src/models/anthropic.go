package models

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// ---------------------------- Anthropic ---------------------------------------

type AnthropicChat struct {
	Client    *anthropic.Client
	Model     string
	MaxTokens int
}

func NewAnthropicChat(apiKey, model string) *AnthropicChat {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	cl := anthropic.NewClient(anthropicopt.WithAPIKey(apiKey))
	return &AnthropicChat{Client: &cl, Model: model, MaxTokens: 1024}
}

func (a *AnthropicChat) Chat(ctx context.Context, req ChatRequest) (*Completion, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: int64(a.MaxTokens),
		Messages:  anthropicMessages(req.Messages),
		Tools:     anthropicTools(req.Tools),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := a.Client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	completion := &Completion{}
	var text strings.Builder
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(b.Text)
		case anthropic.ToolUseBlock:
			args := map[string]any{}
			if len(b.Input) > 0 {
				if err := json.Unmarshal(b.Input, &args); err != nil {
					args = map[string]any{"raw": string(b.Input)}
				}
			}
			completion.ToolCalls = append(completion.ToolCalls, ToolCall{
				ID:        b.ID,
				Name:      b.Name,
				Arguments: args,
			})
		}
	}
	completion.Text = text.String()
	return completion, nil
}

func anthropicMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    call.ID,
						Name:  call.Name,
						Input: call.Arguments,
					},
				})
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		case RoleTool:
			out = append(out, anthropic.NewUserMessage(anthropic.ContentBlockParamUnion{
				OfToolResult: &anthropic.ToolResultBlockParam{
					ToolUseID: msg.CallID,
					IsError:   anthropic.Bool(msg.ToolFailed),
					Content: []anthropic.ToolResultBlockParamContentUnion{
						{OfText: &anthropic.TextBlockParam{Text: msg.Content}},
					},
				},
			}))
		}
	}
	return out
}

func anthropicTools(decls []ToolDecl) []anthropic.ToolUnionParam {
	if len(decls) == 0 {
		return nil
	}
	tools := make([]anthropic.ToolUnionParam, 0, len(decls))
	for _, decl := range decls {
		schema := SchemaMap(decl)
		tool := anthropic.ToolParam{
			Name:        decl.Name,
			Description: anthropic.String(decl.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: schema["properties"],
			},
		}
		if required, ok := schema["required"].([]string); ok {
			tool.InputSchema.Required = required
		}
		tools = append(tools, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return tools
}

var _ ChatModel = (*AnthropicChat)(nil)
