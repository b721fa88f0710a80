package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"blogagent/internal/config"
)

const (
	// DefaultTemperature is used when a request does not set one.
	DefaultTemperature = float32(0.4)
	// DefaultMaxTokens bounds the size of a single response.
	DefaultMaxTokens = int32(4000)
)

// Generator is the text-generation service boundary. Implementations send a
// single prompt and return the raw text of the response.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request describes one call to the text-generation service.
type Request struct {
	Prompt      string
	Schema      *Schema // Optional: declared output fields, response must be JSON
	Temperature float32 // 0 means the client default
	MaxTokens   int32   // 0 means the client default
}

// Options holds settings shared by every backend.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int32
	Timeout     time.Duration
}

func (o Options) temperature(req Request) float32 {
	if req.Temperature > 0 {
		return req.Temperature
	}
	if o.Temperature > 0 {
		return o.Temperature
	}
	return DefaultTemperature
}

func (o Options) maxTokens(req Request) int32 {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if o.MaxTokens > 0 {
		return o.MaxTokens
	}
	return DefaultMaxTokens
}

// withTimeout bounds a single call. A zero timeout leaves ctx unchanged.
func (o Options) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.Timeout)
}

// NewFromConfig builds the backend selected by ai.provider.
func NewFromConfig(ctx context.Context, cfg config.AI) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		return NewOpenAIClient(cfg.OpenAI.APIKey, Options{
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}, cfg.OpenAI.BaseURL, cfg.OpenAI.MaxRetries)
	case "gemini":
		return NewGeminiClient(ctx, cfg.Gemini.APIKey, Options{
			Model:       cfg.Gemini.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}
