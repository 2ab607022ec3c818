package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("Should return defaults when file is missing", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.Equal(t, 1000, cfg.Chunker.Size)
		assert.Equal(t, 200, cfg.Chunker.Overlap)
		assert.Equal(t, "**/*.txt", cfg.Glob)
		assert.Equal(t, float32(0), cfg.Generator.Temperature)
	})

	t.Run("Should merge partial file over defaults", func(t *testing.T) {
		path := writeConfig(t, "data_dir: corpus\nchunker:\n  type: window\n  size: 500\n  overlap: 50\nretriever:\n  top_k: 2\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "corpus", cfg.DataDir)
		assert.Equal(t, "window", cfg.Chunker.Type)
		assert.Equal(t, 500, cfg.Chunker.Size)
		assert.Equal(t, 50, cfg.Chunker.Overlap)
		assert.Equal(t, 2, cfg.Retriever.TopK)
		assert.Equal(t, "text-embedding-3-small", cfg.Embedder.Model)
		assert.Equal(t, "OPENAI_API_KEY", cfg.Provider.APIKeyEnv)
	})

	t.Run("Should reject malformed YAML", func(t *testing.T) {
		path := writeConfig(t, "chunker: [unterminated")
		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Run("Should accept defaults", func(t *testing.T) {
		require.NoError(t, Default().Validate())
	})

	t.Run("Should reject overlap not smaller than size", func(t *testing.T) {
		cfg := Default()
		cfg.Chunker.Overlap = cfg.Chunker.Size
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Overlap")
	})

	t.Run("Should reject unknown chunker type", func(t *testing.T) {
		cfg := Default()
		cfg.Chunker.Type = "paragraph"
		require.Error(t, cfg.Validate())
	})

	t.Run("Should reject non-positive top_k", func(t *testing.T) {
		cfg := Default()
		cfg.Retriever.TopK = 0
		require.Error(t, cfg.Validate())
	})
}

func TestApplyEnv(t *testing.T) {
	t.Run("Should override base url, data dir and log level", func(t *testing.T) {
		t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1")
		t.Setenv("DOCQA_DATA_DIR", "/srv/docs")
		t.Setenv("DOCQA_LOG_LEVEL", "DEBUG")
		cfg := Default()
		cfg.ApplyEnv()
		assert.Equal(t, "http://localhost:9999/v1", cfg.Provider.BaseURL)
		assert.Equal(t, "/srv/docs", cfg.DataDir)
		assert.Equal(t, "debug", cfg.Log.Level)
	})
}

func TestNewSettings(t *testing.T) {
	t.Run("Should fail with ErrMissingCredential when key is unset", func(t *testing.T) {
		t.Setenv("DOCQA_TEST_KEY", "")
		cfg := Default()
		cfg.Provider.APIKeyEnv = "DOCQA_TEST_KEY"
		_, err := NewSettings(cfg)
		require.ErrorIs(t, err, ErrMissingCredential)
		assert.Contains(t, err.Error(), "export DOCQA_TEST_KEY=")
	})

	t.Run("Should resolve the credential once", func(t *testing.T) {
		t.Setenv("DOCQA_TEST_KEY", "  sk-test  ")
		cfg := Default()
		cfg.Provider.APIKeyEnv = "DOCQA_TEST_KEY"
		s, err := NewSettings(cfg)
		require.NoError(t, err)
		assert.Equal(t, "sk-test", s.APIKey)
		assert.Equal(t, *cfg, s.App)
		assert.Equal(t, "1m0s", s.Timeout().String())
	})
}
