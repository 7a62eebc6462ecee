package embed

import (
	"context"
	"errors"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder embeds with the OpenAI embeddings API.
type OpenAIEmbedder struct {
	Client *openai.Client
	Model  openai.EmbeddingModel
}

func NewOpenAIEmbedder(apiKey, model string) *OpenAIEmbedder {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAIEmbedder{
		Client: openai.NewClient(apiKey),
		Model:  openai.EmbeddingModel(model),
	}
}

func (o *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.Client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: o.Model,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("openai embed: empty response")
	}
	return resp.Data[0].Embedding, nil
}

var _ Embedder = (*OpenAIEmbedder)(nil)
