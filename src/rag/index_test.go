package rag

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/productstack/assistant/src/rag/embed"
	"github.com/productstack/assistant/src/rag/store"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestSplitChunksMergesParagraphsUpToLimit(t *testing.T) {
	text := "first paragraph\n\nsecond paragraph\n\nthird paragraph"
	chunks := splitChunks(text, 40)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	if !strings.Contains(chunks[0], "first paragraph") || !strings.Contains(chunks[0], "second paragraph") {
		t.Fatalf("first chunk should merge two paragraphs: %q", chunks[0])
	}
	if chunks[1] != "third paragraph" {
		t.Fatalf("second chunk wrong: %q", chunks[1])
	}
}

func TestSplitChunksSkipsBlankInput(t *testing.T) {
	if chunks := splitChunks("   \n\n  \n\n", 100); len(chunks) != 0 {
		t.Fatalf("blank input should yield no chunks: %q", chunks)
	}
}

func TestBuildFromDirIndexesTextFiles(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "policy.md", "Vacation policy.\n\nEmployees get 25 days.")
	writeDoc(t, dir, "notes.txt", "Office hours are 9 to 5.")
	writeDoc(t, dir, "image.png", "binary junk that must be skipped")

	memStore := store.NewMemoryStore()
	index := NewIndex(memStore, embed.DummyEmbedder{}, zerolog.Nop())

	n, err := index.BuildFromDir(context.Background(), dir, 2)
	if err != nil {
		t.Fatalf("BuildFromDir: %v", err)
	}
	if n < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", n)
	}
	count, _ := memStore.Count(context.Background())
	if count != n {
		t.Fatalf("store count %d does not match reported chunks %d", count, n)
	}

	hits, err := memStore.Search(context.Background(), embed.DummyEmbedding("Vacation policy"), 1)
	if err != nil || len(hits) != 1 {
		t.Fatalf("Search: %v, %v", hits, err)
	}
	if hits[0].Source != "policy.md" {
		t.Fatalf("unexpected top source: %+v", hits[0])
	}
}

func TestBuildFromDirEmpty(t *testing.T) {
	index := NewIndex(store.NewMemoryStore(), embed.DummyEmbedder{}, zerolog.Nop())
	n, err := index.BuildFromDir(context.Background(), t.TempDir(), 1)
	if err != nil {
		t.Fatalf("BuildFromDir: %v", err)
	}
	if n != 0 {
		t.Fatalf("empty dir should index nothing, got %d", n)
	}
}

func TestEnsureIndexBuildsThenLoadsSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "doc.txt", "The parental leave policy is 16 weeks.")
	snapshot := filepath.Join(t.TempDir(), "storage", "index.json")

	first := NewIndex(store.NewMemoryStore(), embed.DummyEmbedder{}, zerolog.Nop())
	if err := first.EnsureIndex(context.Background(), dir, snapshot, 1); err != nil {
		t.Fatalf("EnsureIndex (build): %v", err)
	}
	if _, err := os.Stat(snapshot); err != nil {
		t.Fatalf("snapshot was not written: %v", err)
	}

	// A second index restores from the snapshot without touching the data
	// dir: point it at a directory that no longer exists.
	restoredStore := store.NewMemoryStore()
	second := NewIndex(restoredStore, embed.DummyEmbedder{}, zerolog.Nop())
	if err := second.EnsureIndex(context.Background(), filepath.Join(dir, "gone"), snapshot, 1); err != nil {
		t.Fatalf("EnsureIndex (load): %v", err)
	}
	n, _ := restoredStore.Count(context.Background())
	if n == 0 {
		t.Fatalf("snapshot restore produced an empty store")
	}
}
