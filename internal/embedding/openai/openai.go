package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Client embeds text through any OpenAI-compatible embeddings endpoint.
// The default target is a local Ollama server, which accepts an empty API key.
type Client struct {
	client    *openai.Client
	model     string
	dimension int
}

// Config configures the embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		return nil, errors.New("embedding model not configured")
	}
	clientCfg := openai.DefaultConfig(os.Getenv(cfg.APIKeyEnv))
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Prepare is a no-op for remote embedding; the dimension is learned lazily
// from the first response.
func (c *Client) Prepare(ctx context.Context, corpus []string) error { return nil }

// Dimension returns the dimensionality of the produced embedding vectors,
// or zero before the first successful Embed call.
func (c *Client) Dimension() int { return c.dimension }

// Embed returns an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("no embedding returned")
	}
	vec := resp.Data[0].Embedding
	if c.dimension == 0 {
		c.dimension = len(vec)
	}
	return vec, nil
}
