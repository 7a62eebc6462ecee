package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/productstack/assistant/src/models"
	"github.com/productstack/assistant/src/rag/embed"
	"github.com/productstack/assistant/src/rag/store"
)

// NotFoundMessage is the canonical reply when the documents hold nothing
// relevant. Synthesized answers that amount to "no information" are
// normalized to this string so callers can match on it.
const NotFoundMessage = "I couldn't find any information on that specific topic in our documents. Would you like me to try another query or is there something else I can help with?"

// QueryEngine answers natural-language questions over an indexed document
// store by retrieving the closest chunks and asking a chat model to
// synthesize an answer from them alone.
type QueryEngine struct {
	store    store.DocumentStore
	embedder embed.Embedder
	model    models.ChatModel
	topK     int
	logger   zerolog.Logger
}

func NewQueryEngine(docStore store.DocumentStore, embedder embed.Embedder, model models.ChatModel, topK int, logger zerolog.Logger) *QueryEngine {
	if topK <= 0 {
		topK = 3
	}
	return &QueryEngine{store: docStore, embedder: embedder, model: model, topK: topK, logger: logger}
}

const synthesisPrompt = `You are answering a question using only the context passages below.
If the context does not contain the answer, say that you do not have that information.
Do not invent details that are not in the context.`

// Query retrieves the top chunks for the question and synthesizes an answer.
// It never returns an empty answer: when nothing relevant is found, or the
// model reports the context was insufficient, it returns NotFoundMessage.
func (q *QueryEngine) Query(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("empty question")
	}

	embedding, err := q.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}
	hits, err := q.store.Search(ctx, embedding, q.topK)
	if err != nil {
		return "", fmt.Errorf("search documents: %w", err)
	}
	q.logger.Debug().Int("hits", len(hits)).Str("question", question).Msg("document search")
	if len(hits) == 0 {
		return NotFoundMessage, nil
	}

	var sb strings.Builder
	sb.WriteString("Context:\n")
	for i, hit := range hits {
		fmt.Fprintf(&sb, "[%d] (%s)\n%s\n\n", i+1, hit.Source, hit.Content)
	}
	sb.WriteString("Question: ")
	sb.WriteString(question)

	completion, err := q.model.Chat(ctx, models.ChatRequest{
		System: synthesisPrompt,
		Messages: []models.Message{
			{Role: models.RoleUser, Content: sb.String()},
		},
	})
	if err != nil {
		return "", fmt.Errorf("synthesize answer: %w", err)
	}

	answer := strings.TrimSpace(completion.Text)
	if answer == "" || isNoInformation(answer) {
		return NotFoundMessage, nil
	}
	return answer, nil
}

// isNoInformation detects synthesized refusals so they can be replaced
// with the canonical not-found reply.
func isNoInformation(answer string) bool {
	lower := strings.ToLower(answer)
	for _, marker := range []string{
		"not contain details",
		"not contain information",
		"not have information",
		"no information",
		"does not mention",
	} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
