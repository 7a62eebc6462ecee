package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ---------------------------- Google Gemini ----------------------------------

// GeminiChat implements ChatModel on the Gemini API with native function
// calling. It is the default provider.
type GeminiChat struct {
	Client *genai.Client
	Model  string
}

// NewGeminiChat reads GOOGLE_API_KEY (or GEMINI_API_KEY) when apiKey is empty.
func NewGeminiChat(ctx context.Context, apiKey, model string) (*GeminiChat, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiChat{Client: client, Model: model}, nil
}

func (g *GeminiChat) Chat(ctx context.Context, req ChatRequest) (*Completion, error) {
	model := g.Client.GenerativeModel(g.Model)
	if sys := strings.TrimSpace(req.System); sys != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(sys)}}
	}
	if len(req.Tools) > 0 {
		model.Tools = geminiTools(req.Tools)
	}

	contents := geminiContents(req.Messages)
	if len(contents) == 0 {
		return nil, errors.New("gemini: no messages to send")
	}

	// The chat session sends the final content's parts as the new message and
	// keeps everything before it as history.
	cs := model.StartChat()
	cs.History = contents[:len(contents)-1]
	resp, err := cs.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini: empty response")
	}

	completion := &Completion{}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			completion.ToolCalls = append(completion.ToolCalls, ToolCall{
				Name:      p.Name,
				Arguments: p.Args,
			})
		}
	}
	completion.Text = text.String()
	return completion, nil
}

func geminiContents(messages []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(msg.Content)},
			})
		case RoleAssistant:
			parts := make([]genai.Part, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				parts = append(parts, genai.Text(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, genai.FunctionCall{Name: call.Name, Args: call.Arguments})
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, &genai.Content{Role: "model", Parts: parts})
		case RoleTool:
			// Function responses travel back on a user-role content, matching
			// what ChatSession.SendMessage produces.
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []genai.Part{genai.FunctionResponse{
					Name:     msg.ToolName,
					Response: map[string]any{"result": msg.Content, "success": !msg.ToolFailed},
				}},
			})
		}
	}
	return contents
}

func geminiTools(decls []ToolDecl) []*genai.Tool {
	fns := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, decl := range decls {
		fn := &genai.FunctionDeclaration{
			Name:        decl.Name,
			Description: decl.Description,
		}
		if len(decl.Params) > 0 {
			schema := &genai.Schema{
				Type:       genai.TypeObject,
				Properties: make(map[string]*genai.Schema, len(decl.Params)),
			}
			for _, p := range decl.Params {
				schema.Properties[p.Name] = &genai.Schema{
					Type:        geminiType(p.Type),
					Description: p.Description,
				}
				if p.Required {
					schema.Required = append(schema.Required, p.Name)
				}
			}
			fn.Parameters = schema
		}
		fns = append(fns, fn)
	}
	return []*genai.Tool{{FunctionDeclarations: fns}}
}

func geminiType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

var _ ChatModel = (*GeminiChat)(nil)
