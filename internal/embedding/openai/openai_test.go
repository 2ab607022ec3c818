package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/logger"
)

type embeddingServer struct {
	calls  atomic.Int32
	inputs [][]string
	status int
}

func (s *embeddingServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if s.status != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(s.status)
			_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
			return
		}
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req.Model)
		s.inputs = append(s.inputs, req.Input)

		type datum struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]datum, len(req.Input))
		// reply in reverse order to check the client restores input order
		for i := range req.Input {
			j := len(req.Input) - 1 - i
			data[i] = datum{Object: "embedding", Embedding: []float32{float32(len(req.Input[j])), 0, 0}, Index: j}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": req.Model})
	}
}

func newTestClient(t *testing.T, s *embeddingServer, batch, cache int) *Client {
	t.Helper()
	srv := httptest.NewServer(s.handler(t))
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{
		BaseURL:   srv.URL + "/v1",
		APIKey:    "sk-test",
		Model:     "text-embedding-3-small",
		BatchSize: batch,
		CacheSize: cache,
		Logger:    logger.Discard(),
	})
	require.NoError(t, err)
	return c
}

func TestEmbedDocuments(t *testing.T) {
	t.Run("Should batch requests and keep input order", func(t *testing.T) {
		s := &embeddingServer{}
		c := newTestClient(t, s, 2, 0)

		texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
		vectors, err := c.EmbedDocuments(context.Background(), texts)
		require.NoError(t, err)
		require.Len(t, vectors, len(texts))
		assert.Equal(t, int32(3), s.calls.Load())
		assert.Equal(t, [][]string{{"a", "bb"}, {"ccc", "dddd"}, {"eeeee"}}, s.inputs)
		for _, v := range vectors {
			assert.InDelta(t, 1.0, v[0], 1e-6, "vectors are L2-normalized")
		}
		assert.Equal(t, 3, c.Dimension())
	})

	t.Run("Should fail without retrying on provider error", func(t *testing.T) {
		s := &embeddingServer{status: http.StatusUnauthorized}
		c := newTestClient(t, s, 8, 0)

		_, err := c.EmbedDocuments(context.Background(), []string{"x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid api key")
		assert.Equal(t, int32(1), s.calls.Load())
	})
}

func TestEmbedQuery(t *testing.T) {
	t.Run("Should serve repeated queries from cache", func(t *testing.T) {
		s := &embeddingServer{}
		c := newTestClient(t, s, 8, 4)

		first, err := c.EmbedQuery(context.Background(), "What color is the sky?")
		require.NoError(t, err)
		second, err := c.EmbedQuery(context.Background(), "What color is the sky?")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, int32(1), s.calls.Load())
	})
}

func TestNewClient(t *testing.T) {
	t.Run("Should require an api key", func(t *testing.T) {
		_, err := NewClient(Config{})
		require.Error(t, err)
	})
}
