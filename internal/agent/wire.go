package agent

import (
	"context"
	"fmt"

	"blogagent/internal/config"
	"blogagent/internal/keywords"
	"blogagent/internal/llm"
	"blogagent/internal/logger"
	"blogagent/internal/pipeline"
	"blogagent/internal/publish"
	"blogagent/internal/wordpress"
)

// NewPipeline builds the text generator and the article pipeline from cfg.
func NewPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, error) {
	gen, err := llm.NewFromConfig(ctx, cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("failed to create text generator: %w", err)
	}
	return pipeline.NewBuilder(cfg).
		WithGenerator(gen).
		WithLogger(logger.Get()).
		Build()
}

// NewRunnerFromConfig wires pipeline, WordPress publisher and keyword source.
func NewRunnerFromConfig(ctx context.Context, cfg *config.Config) (*Runner, error) {
	if err := cfg.ValidateWordPress(); err != nil {
		return nil, err
	}
	p, err := NewPipeline(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := wordpress.NewClient(cfg.WordPress, nil)
	pub := publish.New(client, publish.OptionsFromConfig(cfg), logger.Get())

	return NewRunner(p, pub, FileKeywords(cfg.Keywords.File), logger.Get()), nil
}

// FileKeywords reads path on every call, so scheduled runs see edits to the
// file and recover once a missing file appears.
func FileKeywords(path string) KeywordLoader {
	return func() (*keywords.Source, error) {
		return keywords.Load(path)
	}
}
