package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"blogagent/internal/core"
	"blogagent/internal/logger"
)

// Pipeline sequences outline, body, normalization and link injection for
// one keyword. It holds no per-run state, so runs never share data.
type Pipeline struct {
	outline    OutlineBuilder
	body       BodyGenerator
	normalizer HTMLNormalizer
	linker     LinkInjector
	log        *slog.Logger
}

// Result contains the output of one run
type Result struct {
	Bundle  *core.ArticleBundle
	Outline core.Outline
	Stats   ProcessingStats
}

// ProcessingStats tracks pipeline execution metrics
type ProcessingStats struct {
	Chapters       int
	Sections       int
	LinksAdded     int
	ProcessingTime time.Duration
	StartTime      time.Time
	EndTime        time.Time
}

// NewPipeline creates a new pipeline with all dependencies
func NewPipeline(
	outline OutlineBuilder,
	body BodyGenerator,
	normalizer HTMLNormalizer,
	linker LinkInjector,
	log *slog.Logger,
) *Pipeline {
	if log == nil {
		log = logger.Get()
	}
	return &Pipeline{
		outline:    outline,
		body:       body,
		normalizer: normalizer,
		linker:     linker,
		log:        log,
	}
}

// Run produces the finalized article bundle for kw.
func (p *Pipeline) Run(ctx context.Context, kw core.KeywordPair) (*core.ArticleBundle, error) {
	result, err := p.Generate(ctx, kw)
	if err != nil {
		return nil, err
	}
	return result.Bundle, nil
}

// Generate executes every stage and reports stats. Generation failures abort
// the run before anything is built.
func (p *Pipeline) Generate(ctx context.Context, kw core.KeywordPair) (*Result, error) {
	stats := ProcessingStats{StartTime: time.Now()}
	log := p.log.With("keyword", kw.Primary)

	// Step 1: Outline
	log.Info("Step 1/4: Building outline")
	outline, err := p.outline.Build(ctx, kw)
	if err != nil {
		return nil, fmt.Errorf("failed to build outline: %w", err)
	}
	stats.Chapters = len(outline.TableOfContents)

	// Step 2: Body
	log.Info("Step 2/4: Generating body", "chapters", stats.Chapters)
	body, err := p.body.Build(ctx, outline.TableOfContents, outline.RefinedKeywordsLine)
	if err != nil {
		return nil, fmt.Errorf("failed to generate body: %w", err)
	}

	// Step 3: Headings and anchor ids
	log.Info("Step 3/4: Normalizing headings")
	html := p.normalizer.Normalize(body.HTML, outline.TableOfContents)
	stats.Sections = strings.Count(html, "<h2 ")

	// Step 4: Internal links
	log.Info("Step 4/4: Injecting internal links")
	before := strings.Count(html, "<a ")
	html = p.linker.Inject(html, kw.Primary)
	stats.LinksAdded = strings.Count(html, "<a ") - before

	stats.EndTime = time.Now()
	stats.ProcessingTime = stats.EndTime.Sub(stats.StartTime)

	log.Info("Article ready",
		"sections", stats.Sections,
		"links_added", stats.LinksAdded,
		"duration", stats.ProcessingTime)

	return &Result{
		Bundle: &core.ArticleBundle{
			HTML:            html,
			MetaTitle:       body.MetaTitle,
			KeywordsLine:    outline.RefinedKeywordsLine,
			MetaDescription: body.MetaDescription,
		},
		Outline: outline,
		Stats:   stats,
	}, nil
}
