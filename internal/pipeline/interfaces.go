package pipeline

import (
	"context"

	"blogagent/internal/core"
)

// OutlineBuilder plans an article from a keyword pair
type OutlineBuilder interface {
	// Build returns a validated outline or an error wrapping core.ErrGeneration
	Build(ctx context.Context, kw core.KeywordPair) (core.Outline, error)
}

// BodyGenerator writes the article body and meta fields
type BodyGenerator interface {
	// Build returns a body that meets the word floor and keyword guarantees
	Build(ctx context.Context, sections []core.Chapter, keywordsLine string) (core.ArticleBody, error)
}

// HTMLNormalizer flattens headings and assigns anchor ids
type HTMLNormalizer interface {
	// Normalize must be deterministic and idempotent
	Normalize(html string, sections []core.Chapter) string
}

// LinkInjector adds internal links to the body
type LinkInjector interface {
	// Inject must never link text inside an existing anchor
	Inject(html, primary string) string
}

// NormalizerFunc adapts a plain function to HTMLNormalizer
type NormalizerFunc func(html string, sections []core.Chapter) string

// Normalize calls f
func (f NormalizerFunc) Normalize(html string, sections []core.Chapter) string {
	return f(html, sections)
}
