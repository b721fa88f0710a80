package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blogagent/internal/logger"

	"google.golang.org/genai"
)

// GeminiClient talks to the Gemini API and uses native structured output
// when a schema is declared.
type GeminiClient struct {
	client *genai.Client
	opts   Options
}

// NewGeminiClient creates a Gemini backend.
func NewGeminiClient(ctx context.Context, apiKey string, opts Options) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, opts: opts}, nil
}

// Generate sends one prompt to the configured model.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := c.opts.withTimeout(ctx)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.opts.temperature(req)),
		MaxOutputTokens: c.opts.maxTokens(req),
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.Schema.GenaiSchema()
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: req.Prompt}},
		Role:  "user",
	}}

	logger.Debug("Sending Gemini request", "model", c.opts.Model, "prompt_chars", len(req.Prompt))

	resp, err := c.client.Models.GenerateContent(ctx, c.opts.Model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}
