package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blogagent/internal/logger"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIClient talks to the OpenAI chat completions API or any compatible
// endpoint.
type OpenAIClient struct {
	client openai.Client
	opts   Options
}

// NewOpenAIClient creates a chat-completions backend.
func NewOpenAIClient(apiKey string, opts Options, baseURL string, maxRetries int) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(maxRetries),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}

	return &OpenAIClient{
		client: openai.NewClient(reqOpts...),
		opts:   opts,
	}, nil
}

// Generate sends one user message. When a schema is declared the prompt gets
// format instructions appended and the response is forced into JSON mode.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := c.opts.withTimeout(ctx)
	defer cancel()

	prompt := req.Prompt
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.opts.Model),
		Temperature: openai.Float(float64(c.opts.temperature(req))),
		MaxTokens:   openai.Int(int64(c.opts.maxTokens(req))),
	}
	if req.Schema != nil {
		prompt = prompt + "\n\n" + req.Schema.FormatInstructions()
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	params.Messages = []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	}

	logger.Debug("Sending chat completion", "model", c.opts.Model, "prompt_chars", len(prompt))

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("openai returned an empty response")
	}
	return text, nil
}
