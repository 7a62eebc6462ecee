// Package rag builds and queries the company document index. The build step
// is a batch pipeline: read files, chunk, embed, store, persist. At
// conversation time the index is read-only and safe for concurrent queries.
package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/productstack/assistant/src/rag/embed"
	"github.com/productstack/assistant/src/rag/store"
)

const maxChunkLen = 2000

// Index owns the document store and the embedder used to fill and query it.
type Index struct {
	store    store.DocumentStore
	embedder embed.Embedder
	logger   zerolog.Logger
}

func NewIndex(docStore store.DocumentStore, embedder embed.Embedder, logger zerolog.Logger) *Index {
	return &Index{store: docStore, embedder: embedder, logger: logger}
}

func (ix *Index) Store() store.DocumentStore { return ix.store }

// EnsureIndex loads a previous snapshot of the in-memory store when one
// exists, otherwise builds the index from dataDir and persists it. Stores
// without snapshot support (Postgres) are built only when empty.
func (ix *Index) EnsureIndex(ctx context.Context, dataDir, snapshotPath string, workers int) error {
	if ms, ok := ix.store.(*store.MemoryStore); ok && snapshotPath != "" {
		if err := ms.Restore(snapshotPath); err == nil {
			n, _ := ms.Count(ctx)
			ix.logger.Info().Str("snapshot", snapshotPath).Int("documents", n).Msg("document index loaded from disk")
			return nil
		}
		ix.logger.Info().Str("data_dir", dataDir).Msg("no document index found, building a new one")
		if _, err := ix.BuildFromDir(ctx, dataDir, workers); err != nil {
			return err
		}
		if err := ms.Snapshot(snapshotPath); err != nil {
			return fmt.Errorf("persist document index: %w", err)
		}
		ix.logger.Info().Str("snapshot", snapshotPath).Msg("document index built and saved to disk")
		return nil
	}

	n, err := ix.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("inspect document store: %w", err)
	}
	if n > 0 {
		ix.logger.Info().Int("documents", n).Msg("document index already populated")
		return nil
	}
	_, err = ix.BuildFromDir(ctx, dataDir, workers)
	return err
}

// BuildFromDir reads the text documents under dir, splits them into chunks
// and embeds them with a bounded worker pool. It returns how many chunks
// were stored.
func (ix *Index) BuildFromDir(ctx context.Context, dir string, workers int) (int, error) {
	if workers <= 0 {
		workers = 4
	}

	type chunk struct {
		source  string
		content string
	}
	var chunks []chunk

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isTextFile(path) {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read document %s: %w", path, err)
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		for _, piece := range splitChunks(string(raw), maxChunkLen) {
			chunks = append(chunks, chunk{source: rel, content: piece})
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan document dir %s: %w", dir, err)
	}
	if len(chunks) == 0 {
		ix.logger.Warn().Str("dir", dir).Msg("no documents found to index")
		return 0, nil
	}

	p := pool.New().WithMaxGoroutines(workers).WithErrors().WithContext(ctx)
	for _, c := range chunks {
		p.Go(func(ctx context.Context) error {
			embedding, err := ix.embedder.Embed(ctx, c.content)
			if err != nil {
				return fmt.Errorf("embed chunk from %s: %w", c.source, err)
			}
			return ix.store.Add(ctx, c.source, c.content, embedding)
		})
	}
	if err := p.Wait(); err != nil {
		return 0, err
	}

	ix.logger.Info().Int("chunks", len(chunks)).Str("dir", dir).Msg("documents indexed")
	return len(chunks), nil
}

func isTextFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		return true
	default:
		return false
	}
}

// splitChunks breaks text on blank lines, merging paragraphs until maxLen.
func splitChunks(text string, maxLen int) []string {
	paragraphs := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")

	var chunks []string
	var current strings.Builder
	flush := func() {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(para) > maxLen {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()
	return chunks
}
