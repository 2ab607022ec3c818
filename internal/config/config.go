package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredential is returned when the provider API key is not present in the environment.
var ErrMissingCredential = errors.New("provider credential not set")

// ProviderConfig describes the OpenAI-compatible endpoint shared by embedding and generation.
type ProviderConfig struct {
	BaseURL     string `yaml:"base_url" validate:"required,url"`
	APIKeyEnv   string `yaml:"api_key_env" validate:"required"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"gte=0"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string `yaml:"type" validate:"oneof=openai tfidf"`
	Model     string `yaml:"model"`
	BatchSize int    `yaml:"batch_size" validate:"gt=0"`
	CacheSize int    `yaml:"cache_size" validate:"gte=0"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type              string `yaml:"type" validate:"oneof=window recursive sentence"`
	Size              int    `yaml:"size" validate:"gt=0"`
	Overlap           int    `yaml:"overlap" validate:"gte=0,ltfield=Size"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk" validate:"gt=0"`
	OverlapSentences  int    `yaml:"overlap_sentences" validate:"gte=0,ltfield=SentencesPerChunk"`
}

// GeneratorConfig configures the hosted answer model.
type GeneratorConfig struct {
	Model       string  `yaml:"model" validate:"required"`
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
	Fallback    string  `yaml:"fallback" validate:"required"`
	Template    string  `yaml:"template"`
}

// RetrieverConfig controls how many chunks are handed to the generator.
type RetrieverConfig struct {
	TopK int `yaml:"top_k" validate:"gt=0"`
}

// SummarizerConfig configures the startup corpus overview.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences" validate:"gte=0"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	DataDir    string           `yaml:"data_dir" validate:"required"`
	Glob       string           `yaml:"glob" validate:"required"`
	Provider   ProviderConfig   `yaml:"provider"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Retriever  RetrieverConfig  `yaml:"retriever"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Log        LogConfig        `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docqa/config.yaml.
// If neither exists the built-in defaults are returned and nothing is written.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err == nil {
		if _, statErr := os.Stat(userPath); statErr == nil {
			cfg, err := Load(userPath)
			return cfg, userPath, err
		}
	}
	return Default(), "", nil
}

// ApplyEnv overlays the environment overrides onto cfg.
func (c *AppConfig) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); v != "" {
		c.Provider.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DOCQA_DATA_DIR")); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("DOCQA_LOG_LEVEL")); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// Validate checks field constraints, including overlap < size for the chunker.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docqa", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		DataDir: "data",
		Glob:    "**/*.txt",
		Provider: ProviderConfig{
			BaseURL:     "https://api.openai.com/v1",
			APIKeyEnv:   "OPENAI_API_KEY",
			TimeoutSecs: 60,
		},
		Embedder: EmbedderConfig{
			Type:      "openai",
			Model:     "text-embedding-3-small",
			BatchSize: 32,
			CacheSize: 256,
		},
		Chunker: ChunkerConfig{
			Type:              "recursive",
			Size:              1000,
			Overlap:           200,
			SentencesPerChunk: 5,
			OverlapSentences:  1,
		},
		Generator: GeneratorConfig{
			Model:     "gpt-4o-mini",
			MaxTokens: 256,
			Fallback:  "The documents contain no relevant information.",
		},
		Retriever:  RetrieverConfig{TopK: 4},
		Summarizer: SummarizerConfig{MaxSentences: 3},
		Log:        LogConfig{Level: "info"},
	}
}

// applyConfigDefaults fills values a partial YAML file may have zeroed explicitly.
func applyConfigDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.Glob == "" {
		cfg.Glob = def.Glob
	}
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = def.Provider.BaseURL
	}
	if cfg.Provider.APIKeyEnv == "" {
		cfg.Provider.APIKeyEnv = def.Provider.APIKeyEnv
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = def.Embedder.Model
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = def.Embedder.BatchSize
	}
	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = def.Chunker.Type
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = def.Chunker.Size
	}
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = def.Chunker.SentencesPerChunk
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = def.Generator.Model
	}
	if cfg.Generator.Fallback == "" {
		cfg.Generator.Fallback = def.Generator.Fallback
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = def.Retriever.TopK
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}
