package pipeline

import (
	"fmt"
	"log/slog"

	"blogagent/internal/config"
	"blogagent/internal/content"
	"blogagent/internal/links"
	"blogagent/internal/llm"
	"blogagent/internal/logger"
	"blogagent/internal/normalize"
	"blogagent/internal/retry"
)

// Builder helps construct a fully configured Pipeline
type Builder struct {
	cfg       *config.Config
	generator llm.Generator
	log       *slog.Logger
	policy    *retry.Policy
}

// NewBuilder creates a new pipeline builder from the application config
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg}
}

// WithGenerator sets the text generator
func (b *Builder) WithGenerator(gen llm.Generator) *Builder {
	b.generator = gen
	return b
}

// WithLogger sets the logger shared by every stage
func (b *Builder) WithLogger(log *slog.Logger) *Builder {
	b.log = log
	return b
}

// WithRetryPolicy overrides the generation retry policy
func (b *Builder) WithRetryPolicy(policy retry.Policy) *Builder {
	b.policy = &policy
	return b
}

// Build constructs a fully configured Pipeline
func (b *Builder) Build() (*Pipeline, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if b.generator == nil {
		return nil, fmt.Errorf("text generator is required")
	}

	log := b.log
	if log == nil {
		log = logger.Get()
	}

	policy := retry.Fixed(b.cfg.Content.Attempts, b.cfg.Content.RetryDelay)
	if b.policy != nil {
		policy = *b.policy
	}

	brand := BrandFromConfig(b.cfg.Content)
	bodyOpts := content.BodyOptions{
		MinWords: b.cfg.Content.MinWords,
		Expand:   content.WordBand{Min: b.cfg.Content.ExpandMin, Max: b.cfg.Content.ExpandMax},
	}

	return NewPipeline(
		content.NewOutlineBuilder(b.generator, brand, policy, log),
		content.NewBodyGenerator(b.generator, brand, bodyOpts, policy, log),
		NormalizerFunc(normalize.Normalize),
		links.NewInjector(b.cfg.Content.MaxLinks),
		log,
	), nil
}

// BrandFromConfig maps content settings to the prompt brand
func BrandFromConfig(cfg config.Content) content.Brand {
	return content.Brand{
		Name:         cfg.Brand,
		Site:         cfg.Site,
		ContactEmail: cfg.ContactEmail,
	}
}
