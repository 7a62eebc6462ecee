package models

import (
	"context"
	"fmt"
)

// NewChatModel constructs the provider selected by name. API keys and hosts
// come from the environment (GOOGLE_API_KEY, OPENAI_API_KEY,
// ANTHROPIC_API_KEY, OLLAMA_HOST).
func NewChatModel(ctx context.Context, provider, model string) (ChatModel, error) {
	switch provider {
	case "gemini", "google":
		return NewGeminiChat(ctx, "", model)
	case "openai":
		return NewOpenAIChat("", model), nil
	case "anthropic", "claude":
		return NewAnthropicChat("", model), nil
	case "ollama":
		return NewOllamaChat("", model)
	case "scripted", "dummy":
		return NewScriptedModel(), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
