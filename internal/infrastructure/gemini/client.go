package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resume-pathways/internal/config"

	"google.golang.org/genai"
)

var ErrNotConfigured = errors.New("gemini client is not configured")

// Client wraps the Google GenAI client for embeddings and content
// generation. It is constructed once per process and passed in explicitly,
// never imported as ambient global state.
type Client struct {
	client         *genai.Client
	model          string
	embeddingModel string
}

func New(ctx context.Context, cfg config.GeminiConfig) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		client:         c,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
	}, nil
}

// Embed returns the model's native-dimensionality vector for text. Padding
// to the canonical length is the embedding generator's job, not the
// provider's.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c == nil || c.client == nil {
		return nil, ErrNotConfigured
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text for embedding cannot be empty")
	}

	content := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	resp, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, content, nil)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Embeddings) == 0 {
		return nil, errors.New("no embeddings returned")
	}

	values := resp.Embeddings[0].Values
	if len(values) == 0 {
		return nil, errors.New("embedding vector is empty")
	}
	return values, nil
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.embeddingModel
}

// GenerateContent sends the prompt and returns the concatenated textual
// response.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrNotConfigured
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return out, nil
}
