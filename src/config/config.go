// Package config loads runtime configuration from an optional YAML file
// and ASSISTANT_-prefixed environment variables, with working defaults for
// every knob.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Model     ModelConfig     `mapstructure:"model"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	RAG       RAGConfig       `mapstructure:"rag"`
	Products  ProductsConfig  `mapstructure:"products"`
	History   HistoryConfig   `mapstructure:"history"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type AgentConfig struct {
	MaxToolRounds int           `mapstructure:"max_tool_rounds"`
	HistoryWindow int           `mapstructure:"history_window"`
	ToolTimeout   time.Duration `mapstructure:"tool_timeout"`
}

type ModelConfig struct {
	Provider string `mapstructure:"provider"`
	Name     string `mapstructure:"name"`
}

type EmbeddingConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
}

type RAGConfig struct {
	DataDir     string `mapstructure:"data_dir"`
	StoragePath string `mapstructure:"storage_path"`
	TopK        int    `mapstructure:"top_k"`
	Workers     int    `mapstructure:"workers"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

type ProductsConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type HistoryConfig struct {
	MongoURI   string `mapstructure:"mongo_uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads configuration from path (optional) and the environment.
// Environment variables use the ASSISTANT_ prefix with underscores for
// nesting, e.g. ASSISTANT_MODEL_PROVIDER=openai.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("agent.max_tool_rounds", 8)
	v.SetDefault("agent.history_window", 50)
	v.SetDefault("agent.tool_timeout", 30*time.Second)
	v.SetDefault("model.provider", "gemini")
	v.SetDefault("model.name", "gemini-2.5-flash")
	v.SetDefault("embedding.provider", "gemini")
	v.SetDefault("embedding.model", "models/embedding-001")
	v.SetDefault("rag.data_dir", "./data")
	v.SetDefault("rag.storage_path", "./storage/index.json")
	v.SetDefault("rag.top_k", 3)
	v.SetDefault("rag.workers", 4)
	v.SetDefault("products.base_url", "http://localhost:8080")
	v.SetDefault("products.timeout", 15*time.Second)
	v.SetDefault("history.database", "assistant")
	v.SetDefault("history.collection", "conversations")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvPrefix("ASSISTANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Agent.MaxToolRounds <= 0 {
		return fmt.Errorf("agent.max_tool_rounds must be positive")
	}
	if c.Agent.HistoryWindow <= 0 {
		return fmt.Errorf("agent.history_window must be positive")
	}
	if c.Model.Provider == "" {
		return fmt.Errorf("model.provider is required")
	}
	if c.Products.BaseURL == "" {
		return fmt.Errorf("products.base_url is required")
	}
	return nil
}
