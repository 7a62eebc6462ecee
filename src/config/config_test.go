package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":5000" {
		t.Fatalf("server.addr default wrong: %s", cfg.Server.Addr)
	}
	if cfg.Agent.MaxToolRounds != 8 || cfg.Agent.HistoryWindow != 50 {
		t.Fatalf("agent defaults wrong: %+v", cfg.Agent)
	}
	if cfg.Agent.ToolTimeout != 30*time.Second {
		t.Fatalf("tool timeout default wrong: %s", cfg.Agent.ToolTimeout)
	}
	if cfg.Model.Provider != "gemini" || cfg.Model.Name != "gemini-2.5-flash" {
		t.Fatalf("model defaults wrong: %+v", cfg.Model)
	}
	if cfg.Embedding.Model != "models/embedding-001" {
		t.Fatalf("embedding default wrong: %+v", cfg.Embedding)
	}
	if cfg.RAG.DataDir != "./data" || cfg.RAG.TopK != 3 {
		t.Fatalf("rag defaults wrong: %+v", cfg.RAG)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ASSISTANT_MODEL_PROVIDER", "openai")
	t.Setenv("ASSISTANT_MODEL_NAME", "gpt-4o-mini")
	t.Setenv("ASSISTANT_AGENT_MAX_TOOL_ROUNDS", "3")
	t.Setenv("ASSISTANT_PRODUCTS_BASE_URL", "http://example.test:8080")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model.Provider != "openai" || cfg.Model.Name != "gpt-4o-mini" {
		t.Fatalf("env override missed: %+v", cfg.Model)
	}
	if cfg.Agent.MaxToolRounds != 3 {
		t.Fatalf("env override missed: %+v", cfg.Agent)
	}
	if cfg.Products.BaseURL != "http://example.test:8080" {
		t.Fatalf("env override missed: %+v", cfg.Products)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("model:\n  provider: ollama\n  name: llama3\nrag:\n  top_k: 5\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model.Provider != "ollama" || cfg.Model.Name != "llama3" {
		t.Fatalf("file values missed: %+v", cfg.Model)
	}
	if cfg.RAG.TopK != 5 {
		t.Fatalf("file values missed: %+v", cfg.RAG)
	}
	// Untouched keys keep their defaults.
	if cfg.Agent.HistoryWindow != 50 {
		t.Fatalf("defaults lost when loading a file: %+v", cfg.Agent)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("missing config file should error")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("ASSISTANT_AGENT_MAX_TOOL_ROUNDS", "0")
	if _, err := Load(""); err == nil {
		t.Fatalf("zero tool rounds should be rejected")
	}
}
