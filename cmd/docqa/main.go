package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"docqa/internal/app"
	"docqa/internal/config"
	"docqa/internal/loader"
	"docqa/internal/logger"
	"docqa/internal/repl"
	"docqa/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath  string
		dataDir  string
		topK     int
		useTUI   bool
		logLevel string
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; tries ./config.yaml then ~/.config/docqa/config.yaml)")
	flag.StringVar(&dataDir, "data", "", "Directory of .txt documents (overrides config)")
	flag.IntVar(&topK, "top-k", 0, "Number of excerpts handed to the model (overrides config)")
	flag.BoolVar(&useTUI, "tui", false, "Use the full-screen interface instead of the line prompt")
	flag.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnv()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if topK > 0 {
		cfg.Retriever.TopK = topK
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log := logger.New(&logger.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON, Output: os.Stderr})

	a, err := app.New(cfg, log)
	switch {
	case errors.Is(err, config.ErrMissingCredential):
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	case errors.Is(err, loader.ErrDataDirNotFound):
		fmt.Fprintf(os.Stderr, "Data directory %q not found. Create it and put your .txt files inside.\n", cfg.DataDir)
		os.Exit(1)
	case err != nil:
		log.Fatal("startup failed", "err", err)
	}

	ctx := context.Background()
	stats, err := a.Ingest(ctx)
	if err != nil {
		log.Fatal("ingest failed", "err", err)
	}
	log.Info("ready", "documents", stats.Documents, "chunks", stats.Chunks)

	if useTUI {
		m := tui.New(ctx, a.Service(), a.Overview())
		final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		if err != nil {
			log.Fatal("tui failed", "err", err)
		}
		if fm, ok := final.(tui.Model); ok && fm.Err() != nil {
			log.Fatal("question failed", "err", fm.Err())
		}
		return
	}

	fmt.Println("Ready. Type a question and press Enter (q to quit).")
	if err := repl.New(a.Service(), os.Stdin, os.Stdout).Run(ctx); err != nil {
		log.Fatal("question failed", "err", err)
	}
}
