package models

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// ---------------------------- OpenAI ------------------------------------------

type OpenAIChat struct {
	Client *openai.Client
	Model  string
}

func NewOpenAIChat(apiKey, model string) *OpenAIChat {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return &OpenAIChat{Client: openai.NewClient(apiKey), Model: model}
}

func (o *OpenAIChat) Chat(ctx context.Context, req ChatRequest) (*Completion, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, openaiMessage(msg))
	}

	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.Model,
		Messages: messages,
		Tools:    openaiTools(req.Tools),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	choice := resp.Choices[0].Message
	completion := &Completion{Text: choice.Content}
	for _, call := range choice.ToolCalls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			// Malformed argument payloads are passed through raw so the
			// invoker can report them instead of dropping the call.
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				args = map[string]any{"raw": call.Function.Arguments}
			}
		}
		completion.ToolCalls = append(completion.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		})
	}
	return completion, nil
}

func openaiMessage(msg Message) openai.ChatCompletionMessage {
	switch msg.Role {
	case RoleTool:
		return openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			Content:    msg.Content,
			ToolCallID: msg.CallID,
			Name:       msg.ToolName,
		}
	case RoleAssistant:
		out := openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: msg.Content,
		}
		for _, call := range msg.ToolCalls {
			raw, _ := json.Marshal(call.Arguments)
			out.ToolCalls = append(out.ToolCalls, openai.ToolCall{
				ID:   call.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      call.Name,
					Arguments: string(raw),
				},
			})
		}
		return out
	default:
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: msg.Content,
		}
	}
}

func openaiTools(decls []ToolDecl) []openai.Tool {
	if len(decls) == 0 {
		return nil
	}
	tools := make([]openai.Tool, 0, len(decls))
	for _, decl := range decls {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        decl.Name,
				Description: decl.Description,
				Parameters:  SchemaMap(decl),
			},
		})
	}
	return tools
}

var _ ChatModel = (*OpenAIChat)(nil)
