package app

import (
	"context"
	"fmt"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/embedding/openai"
	"docqa/internal/embedding/tfidf"
	"docqa/internal/generator"
	"docqa/internal/loader"
	"docqa/internal/service"
	"docqa/internal/summarizer"
	"docqa/internal/vectorstore/memory"
)

// App wires the pipeline from validated settings.
type App struct {
	settings   *config.Settings
	logger     *charmlog.Logger
	loader     *loader.Loader
	summarizer domain.Summarizer
	service    *service.RAGService
	overview   string
}

// New validates configuration, resolves the credential and checks the data directory
// before any provider client is constructed. It never touches the network.
func New(cfg *config.AppConfig, logger *charmlog.Logger) (*App, error) {
	settings, err := config.NewSettings(cfg)
	if err != nil {
		return nil, err
	}
	ld := loader.New(settings.App.DataDir, settings.App.Glob, logger)
	if err := ld.CheckDir(); err != nil {
		return nil, err
	}

	ch, err := chunker.New(chunker.Config{
		Type:              settings.App.Chunker.Type,
		Size:              settings.App.Chunker.Size,
		Overlap:           settings.App.Chunker.Overlap,
		SentencesPerChunk: settings.App.Chunker.SentencesPerChunk,
		OverlapSentences:  settings.App.Chunker.OverlapSentences,
	})
	if err != nil {
		return nil, err
	}
	emb, err := newEmbedder(settings, logger)
	if err != nil {
		return nil, err
	}
	prompt, err := generator.NewPrompt(settings.App.Generator.Template, settings.App.Generator.Fallback)
	if err != nil {
		return nil, err
	}
	gen, err := generator.NewClient(generator.Config{
		BaseURL:     settings.App.Provider.BaseURL,
		APIKey:      settings.APIKey,
		Model:       settings.App.Generator.Model,
		Temperature: settings.App.Generator.Temperature,
		MaxTokens:   settings.App.Generator.MaxTokens,
		Timeout:     settings.Timeout(),
		Prompt:      prompt,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		settings:   settings,
		logger:     logger,
		loader:     ld,
		summarizer: summarizer.NewFrequencySummarizer(),
		service:    service.NewRAGService(ch, emb, memory.NewStorage(), gen, settings.App.Retriever.TopK, logger),
	}, nil
}

func newEmbedder(settings *config.Settings, logger *charmlog.Logger) (domain.Embedder, error) {
	switch settings.App.Embedder.Type {
	case "tfidf":
		return tfidf.NewEmbedder(), nil
	case "openai", "":
		return openai.NewClient(openai.Config{
			BaseURL:   settings.App.Provider.BaseURL,
			APIKey:    settings.APIKey,
			Model:     settings.App.Embedder.Model,
			BatchSize: settings.App.Embedder.BatchSize,
			CacheSize: settings.App.Embedder.CacheSize,
			Timeout:   settings.Timeout(),
			Logger:    logger,
		})
	default:
		return nil, fmt.Errorf("unknown embedder: %s", settings.App.Embedder.Type)
	}
}

// Ingest loads the corpus and builds the index. It must finish before any question is served.
func (a *App) Ingest(ctx context.Context) (service.IngestStats, error) {
	a.logger.Info("loading documents", "dir", a.settings.App.DataDir, "glob", a.settings.App.Glob)
	docs, err := a.loader.Load(ctx)
	if err != nil {
		return service.IngestStats{}, err
	}
	a.logger.Info("documents loaded", "count", len(docs))
	if len(docs) == 0 {
		a.logger.Warn("no documents found; answers will rely on the fallback reply", "dir", a.settings.App.DataDir)
	}

	if n := a.settings.App.Summarizer.MaxSentences; n > 0 && len(docs) > 0 {
		texts := make([]string, len(docs))
		for i, d := range docs {
			texts[i] = d.Content
		}
		a.overview, err = a.summarizer.Summarize(strings.Join(texts, "\n"), n)
		if err != nil {
			return service.IngestStats{}, fmt.Errorf("summarize corpus: %w", err)
		}
		a.logger.Debug("corpus overview", "text", a.overview)
	}

	return a.service.Ingest(ctx, docs)
}

// Service returns the question answering service.
func (a *App) Service() *service.RAGService { return a.service }

// Overview returns the extractive corpus summary computed during Ingest.
func (a *App) Overview() string { return a.overview }

// Settings returns the immutable settings the pipeline was built from.
func (a *App) Settings() *config.Settings { return a.settings }
