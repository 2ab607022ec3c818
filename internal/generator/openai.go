package generator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"docqa/internal/domain"
)

// Config configures the hosted chat model.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	Prompt      *Prompt
}

// Client answers a question from retrieved chunks with one chat completion request.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	prompt      *Prompt
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai generator: api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai generator: model is required")
	}
	if cfg.Prompt == nil {
		return nil, errors.New("openai generator: prompt is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		prompt:      cfg.Prompt,
	}, nil
}

func (c *Client) Generate(ctx context.Context, question string, chunks []domain.Chunk) (string, error) {
	content, err := c.prompt.Format(question, chunks)
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}
	temperature := c.temperature
	if temperature == 0 {
		// the request field is omitempty; a literal zero would fall back to the server default
		temperature = math.SmallestNonzeroFloat32
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
