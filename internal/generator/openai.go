package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"coursetutor/internal/domain"
)

const systemPrompt = "You are a tutoring assistant for a university course. " +
	"Answer the student's question using only the provided course material excerpts. " +
	"If the excerpts do not contain the answer, say that you do not know instead of guessing."

// OpenAI generates answers through an OpenAI-compatible chat completion
// endpoint, a local Ollama server by default.
type OpenAI struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// Config configures the answer generator.
type Config struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float32
}

// NewOpenAI creates a chat completion generator from the configuration.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.Model == "" {
		return nil, errors.New("generation model not configured")
	}
	clientCfg := openai.DefaultConfig(os.Getenv(cfg.APIKeyEnv))
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAI{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Generate produces an answer to the question conditioned on the retrieved
// context chunks.
func (g *OpenAI) Generate(ctx context.Context, question string, contexts []domain.Chunk) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(question, contexts)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildPrompt(question string, contexts []domain.Chunk) string {
	var parts []string
	for i, ch := range contexts {
		parts = append(parts, fmt.Sprintf("[Excerpt %d: %s]\n%s", i+1, ch.Source, ch.Text))
	}
	return fmt.Sprintf("Course material excerpts:\n\n%s\n\nQuestion: %s", strings.Join(parts, "\n\n---\n\n"), question)
}
