// Package embed provides the pluggable text-embedding providers used to
// vectorize document chunks and search queries.
package embed

import (
	"context"
	"fmt"
)

// Embedder is a pluggable text-embedding provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DummyEmbedder is a deterministic, offline embedder for tests and local runs.
type DummyEmbedder struct{}

func (DummyEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return DummyEmbedding(text), nil
}

// DummyEmbedding folds the bytes of text into a fixed-width vector.
func DummyEmbedding(text string) []float32 {
	vec := make([]float32, 256)
	for i, ch := range []byte(text) {
		vec[i%256] += float32(ch) / 255.0
	}
	return vec
}

// NewEmbedder constructs the provider selected by name. Keys and hosts come
// from the environment, matching the chat model factory.
func NewEmbedder(ctx context.Context, provider, model string) (Embedder, error) {
	switch provider {
	case "gemini", "google":
		return NewGeminiEmbedder(ctx, "", model)
	case "openai":
		return NewOpenAIEmbedder("", model), nil
	case "ollama":
		return NewOllamaEmbedder("", model)
	case "dummy":
		return DummyEmbedder{}, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}
