package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	openai "github.com/sashabaranov/go-openai"
)

// Client is an OpenAI-compatible embeddings client implementing domain.Embedder.
type Client struct {
	client    *openai.Client
	model     string
	batchSize int
	logger    *charmlog.Logger

	mu        sync.Mutex
	dimension int
	cache     *lru.Cache[string, []float32]
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string
	APIKey    string
	Model     string
	BatchSize int
	CacheSize int
	Timeout   time.Duration
	Logger    *charmlog.Logger
}

// NewClient creates a new embeddings client. No request is made until the first embed call.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai embedder: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = charmlog.Default()
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	c := &Client{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
		logger:    cfg.Logger,
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, []float32](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("openai embedder: init cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai:" + c.model }

// Prepare is not required for remote embedding; the dimension is learned from the first response.
func (c *Client) Prepare(context.Context, []string) error { return nil }

// Dimension returns the dimensionality of the produced vectors, or 0 before the first call.
func (c *Client) Dimension() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimension
}

// EmbedDocuments embeds texts in batches, returning vectors in input order.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := c.embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		out = append(out, vectors...)
		c.logger.Debug("embedded batch", "done", end, "total", len(texts))
	}
	return out, nil
}

// EmbedQuery embeds a single query, consulting the cache first.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if c.cache != nil {
		if v, ok := c.cache.Get(text); ok {
			return v, nil
		}
	}
	vectors, err := c.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Add(text, vectors[0])
	}
	return vectors[0], nil
}

func (c *Client) embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: expected %d vectors, got %d", len(texts), len(resp.Data))
	}
	out := make([][]float32, len(texts))
	for _, datum := range resp.Data {
		if datum.Index < 0 || datum.Index >= len(texts) || out[datum.Index] != nil {
			return nil, fmt.Errorf("openai embeddings: unexpected index %d", datum.Index)
		}
		if err := c.checkDimension(len(datum.Embedding)); err != nil {
			return nil, err
		}
		v := make([]float32, len(datum.Embedding))
		copy(v, datum.Embedding)
		l2normalize(v)
		out[datum.Index] = v
	}
	return out, nil
}

func (c *Client) checkDimension(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n == 0 {
		return errors.New("openai embeddings: empty vector")
	}
	if c.dimension == 0 {
		c.dimension = n
		return nil
	}
	if n != c.dimension {
		return fmt.Errorf("openai embedding dimension mismatch: expected %d, got %d", c.dimension, n)
	}
	return nil
}

// l2normalize normalizes a vector to unit length
func l2normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}
