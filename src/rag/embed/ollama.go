package embed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// OllamaEmbedder embeds with a local Ollama model.
type OllamaEmbedder struct {
	Client *ollama.Client
	Model  string
}

func NewOllamaEmbedder(host, model string) (*OllamaEmbedder, error) {
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
	if model == "" {
		model = "nomic-embed-text"
	}
	httpClient := &http.Client{Timeout: 60 * time.Second}
	return &OllamaEmbedder{Client: ollama.NewClient(u, httpClient), Model: model}, nil
}

func (o *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.Client.Embeddings(ctx, &ollama.EmbeddingRequest{
		Model:  o.Model,
		Prompt: text,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, errors.New("ollama embed: empty embedding")
	}
	out := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		out[i] = float32(v)
	}
	return out, nil
}

var _ Embedder = (*OllamaEmbedder)(nil)
