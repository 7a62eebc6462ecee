package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// MemoryStore implements DocumentStore in process memory with cosine
// similarity search. Snapshot/Restore give it the on-disk persistence the
// index expects between runs.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	docs   []Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Add(_ context.Context, source, content string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.docs = append(s.docs, Document{
		ID:        s.nextID,
		Source:    source,
		Content:   content,
		Embedding: append([]float32(nil), embedding...),
	})
	return nil
}

func (s *MemoryStore) Search(_ context.Context, queryEmbedding []float32, limit int) ([]Scored, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		return nil, nil
	}

	scored := make([]Scored, 0, len(s.docs))
	for _, doc := range s.docs {
		scored = append(scored, Scored{Document: doc, Score: cosineSimilarity(queryEmbedding, doc.Embedding)})
	}
	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// Snapshot writes the whole index as JSON to path, creating parent
// directories as needed.
func (s *MemoryStore) Snapshot(path string) error {
	s.mu.RLock()
	payload, err := json.Marshal(s.docs)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Restore replaces the store contents with the snapshot at path.
func (s *MemoryStore) Restore(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var docs []Document
	if err := json.Unmarshal(payload, &docs); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	var maxID int64
	for _, doc := range docs {
		if doc.ID > maxID {
			maxID = doc.ID
		}
	}

	s.mu.Lock()
	s.docs = docs
	s.nextID = maxID
	s.mu.Unlock()
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ DocumentStore = (*MemoryStore)(nil)
