// Command assistant starts the conversational product assistant: it wires
// the completion provider, the document index, the product API tools and the
// HTTP /chat endpoint from configuration.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/productstack/assistant"
	"github.com/productstack/assistant/src/config"
	"github.com/productstack/assistant/src/history"
	"github.com/productstack/assistant/src/models"
	"github.com/productstack/assistant/src/products"
	"github.com/productstack/assistant/src/rag"
	"github.com/productstack/assistant/src/rag/embed"
	"github.com/productstack/assistant/src/rag/store"
	"github.com/productstack/assistant/src/server"
	"github.com/productstack/assistant/src/tools"
)

var flagConfig = flag.String("config", "", "Path to a YAML config file (optional)")

func main() {
	flag.Parse()
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*flagConfig)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model, err := models.NewChatModel(ctx, cfg.Model.Provider, cfg.Model.Name)
	if err != nil {
		return fmt.Errorf("completion provider: %w", err)
	}
	embedder, err := embed.NewEmbedder(ctx, cfg.Embedding.Provider, cfg.Embedding.Model)
	if err != nil {
		return fmt.Errorf("embedder: %w", err)
	}

	docStore, closeStore, err := newDocumentStore(ctx, cfg.RAG)
	if err != nil {
		return err
	}
	defer closeStore()

	index := rag.NewIndex(docStore, embedder, logger)
	if err := index.EnsureIndex(ctx, cfg.RAG.DataDir, cfg.RAG.StoragePath, cfg.RAG.Workers); err != nil {
		return fmt.Errorf("document index: %w", err)
	}
	queryEngine := rag.NewQueryEngine(docStore, embedder, model, cfg.RAG.TopK, logger)

	productClient := products.NewClient(cfg.Products.BaseURL, cfg.Products.Timeout, logger)

	catalogTools := []assistant.Tool{tools.NewCurrentTime()}
	catalogTools = append(catalogTools, tools.ProductTools(productClient)...)
	catalogTools = append(catalogTools, tools.NewSearchCompanyDocs(queryEngine))
	catalog, err := assistant.NewCatalog(catalogTools...)
	if err != nil {
		return fmt.Errorf("tool catalog: %w", err)
	}

	agent, err := assistant.New(assistant.Options{
		Model:         model,
		Catalog:       catalog,
		Invoker:       assistant.NewInvoker(catalog, cfg.Agent.ToolTimeout, logger),
		MaxToolRounds: cfg.Agent.MaxToolRounds,
		HistoryWindow: cfg.Agent.HistoryWindow,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	archiver, closeArchiver, err := newArchiver(ctx, cfg.History, logger)
	if err != nil {
		return err
	}
	defer closeArchiver()

	manager := assistant.NewManager(agent, archiver, logger)
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(manager, logger).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("assistant listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newDocumentStore(ctx context.Context, cfg config.RAGConfig) (store.DocumentStore, func(), error) {
	if cfg.PostgresDSN != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres document store: %w", err)
		}
		if err := pg.CreateSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
		return pg, pg.Close, nil
	}
	return store.NewMemoryStore(), func() {}, nil
}

func newArchiver(ctx context.Context, cfg config.HistoryConfig, logger zerolog.Logger) (assistant.Archiver, func(), error) {
	if cfg.MongoURI == "" {
		return history.NoopArchiver{}, func() {}, nil
	}
	archiver, err := history.NewMongoArchiver(ctx, cfg.MongoURI, cfg.Database, cfg.Collection)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo archiver: %w", err)
	}
	if err := archiver.CreateSchema(ctx); err != nil {
		logger.Warn().Err(err).Msg("mongo archive indexes not created")
	}
	return archiver, func() { _ = archiver.Close() }, nil
}

func newLogger(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}
	var out = os.Stderr
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if cfg.Pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out})
	}
	return logger, nil
}
