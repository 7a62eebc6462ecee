package models

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// ---------------------------- Ollama -----------------------------------------

type OllamaChat struct {
	Client *ollama.Client
	Model  string
}

// NewOllamaChat connects to OLLAMA_HOST (default http://localhost:11434).
func NewOllamaChat(host, model string) (*OllamaChat, error) {
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = "http://localhost:11434"
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	httpClient := &http.Client{Timeout: 120 * time.Second}
	return &OllamaChat{Client: ollama.NewClient(u, httpClient), Model: model}, nil
}

func (o *OllamaChat) Chat(ctx context.Context, req ChatRequest) (*Completion, error) {
	messages := make([]ollama.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, ollama.Message{Role: "system", Content: req.System})
	}
	for _, msg := range req.Messages {
		messages = append(messages, ollamaMessage(msg))
	}

	stream := false
	chatReq := &ollama.ChatRequest{
		Model:    o.Model,
		Messages: messages,
		Tools:    ollamaTools(req.Tools),
		Stream:   &stream,
	}

	completion := &Completion{}
	var text strings.Builder
	err := o.Client.Chat(ctx, chatReq, func(resp ollama.ChatResponse) error {
		text.WriteString(resp.Message.Content)
		for _, call := range resp.Message.ToolCalls {
			completion.ToolCalls = append(completion.ToolCalls, ToolCall{
				Name:      call.Function.Name,
				Arguments: map[string]any(call.Function.Arguments),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	completion.Text = text.String()
	return completion, nil
}

func ollamaMessage(msg Message) ollama.Message {
	out := ollama.Message{Role: msg.Role, Content: msg.Content}
	for _, call := range msg.ToolCalls {
		// Round-trip through JSON keeps this independent of the api package's
		// nested argument types.
		raw, _ := json.Marshal(map[string]any{
			"function": map[string]any{"name": call.Name, "arguments": call.Arguments},
		})
		var tc ollama.ToolCall
		if err := json.Unmarshal(raw, &tc); err == nil {
			out.ToolCalls = append(out.ToolCalls, tc)
		}
	}
	return out
}

func ollamaTools(decls []ToolDecl) ollama.Tools {
	if len(decls) == 0 {
		return nil
	}
	tools := make(ollama.Tools, 0, len(decls))
	for _, decl := range decls {
		raw, _ := json.Marshal(map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        decl.Name,
				"description": decl.Description,
				"parameters":  SchemaMap(decl),
			},
		})
		var tool ollama.Tool
		if err := json.Unmarshal(raw, &tool); err == nil {
			tools = append(tools, tool)
		}
	}
	return tools
}

var _ ChatModel = (*OllamaChat)(nil)
