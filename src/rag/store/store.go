// Package store holds the document index backends. The index is shared
// read-only state at conversation time; writes happen only during the build
// step at startup.
package store

import "context"

// Document is one embedded chunk of a source file.
type Document struct {
	ID        int64     `json:"id"`
	Source    string    `json:"source"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

// Scored pairs a document with its similarity to a query.
type Scored struct {
	Document
	Score float64
}

// DocumentStore is the contract for index backends.
type DocumentStore interface {
	Add(ctx context.Context, source, content string, embedding []float32) error
	Search(ctx context.Context, queryEmbedding []float32, limit int) ([]Scored, error)
	Count(ctx context.Context) (int, error)
}
