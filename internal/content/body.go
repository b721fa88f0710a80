package content

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"blogagent/internal/core"
	"blogagent/internal/llm"
	"blogagent/internal/logger"
	"blogagent/internal/retry"
	"blogagent/internal/seo"
)

const (
	fieldHTML     = "html_content"
	fieldMetaT    = "Meta_title"
	fieldMetaDesc = "Meta_description"

	// expandTemperature keeps the editor pass close to the draft.
	expandTemperature = float32(0.2)
)

var bodySchema = llm.NewSchema(
	llm.Field{Name: fieldHTML, Kind: llm.KindString, Description: "The refined HTML content using h2 and p tags"},
	llm.Field{Name: fieldMetaT, Kind: llm.KindString, Description: "A Meta_title for the article"},
	llm.Field{Name: fieldMetaDesc, Kind: llm.KindString, Description: "A Meta description for the article (<=140 chars)"},
)

var firstH2 = regexp.MustCompile(`(?is)<h2(?:\s[^>]*)?>(.*?)</h2\s*>`)

// BodyOptions tunes length enforcement.
type BodyOptions struct {
	MinWords int      // Drafts below this trigger one expansion call
	Expand   WordBand // Target band for the expansion call
}

// DefaultBodyOptions returns the production length settings.
func DefaultBodyOptions() BodyOptions {
	return BodyOptions{MinWords: 1150, Expand: WordBand{Min: 1200, Max: 1600}}
}

// BodyGenerator writes the article HTML and its meta fields from an outline.
type BodyGenerator struct {
	gen    llm.Generator
	brand  Brand
	opts   BodyOptions
	policy retry.Policy
	log    *slog.Logger
}

// NewBodyGenerator creates a body generator. A nil log uses the default
// logger.
func NewBodyGenerator(gen llm.Generator, brand Brand, opts BodyOptions, policy retry.Policy, log *slog.Logger) *BodyGenerator {
	if log == nil {
		log = logger.Get()
	}
	return &BodyGenerator{gen: gen, brand: brand, opts: opts, policy: policy, log: log}
}

// Build generates and validates the body. Generation, expansion and local
// validation form one attempt; after the retry budget is spent the error
// wraps core.ErrGeneration and nothing should be published.
func (g *BodyGenerator) Build(ctx context.Context, sections []core.Chapter, keywordsLine string) (core.ArticleBody, error) {
	prompt := BuildBodyPrompt(sections, keywordsLine, g.brand, g.opts.Expand)
	primary := core.PrimaryFromKeywordsLine(keywordsLine)

	var body core.ArticleBody
	policy := g.policy
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		g.log.Warn("Body attempt failed", "attempt", attempt, "error", err, "retry_in", wait)
	}

	err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
		raw, err := g.gen.Generate(ctx, llm.Request{Prompt: prompt, Schema: bodySchema})
		if err != nil {
			return err
		}
		fields, err := llm.DecodeJSON(raw, bodySchema)
		if err != nil {
			return err
		}

		text, err := g.sanitize(decodeString(fields[fieldHTML]))
		if err != nil {
			return err
		}
		if text == "" {
			return fmt.Errorf("%w: html_content is empty", core.ErrValidation)
		}

		if words := WordCount(text); words < g.opts.MinWords {
			g.log.Info("Draft below word floor, expanding", "words", words, "min_words", g.opts.MinWords)
			text, err = g.expand(ctx, text, keywordsLine)
			if err != nil {
				return err
			}
			if words := WordCount(text); words < g.opts.MinWords {
				return fmt.Errorf("%w: body has %d words after expansion, need %d", core.ErrValidation, words, g.opts.MinWords)
			}
		}

		metaTitle := seo.EnsureMetaTitle(StripFences(decodeString(fields[fieldMetaT])), primary, g.brand.Name)
		text = ensureTitleHeading(text, primary, metaTitle)
		g.checkOpening(text, primary)

		body = core.ArticleBody{
			HTML:            text,
			MetaTitle:       metaTitle,
			MetaDescription: seo.EnsureMetaDescription(StripFences(decodeString(fields[fieldMetaDesc])), primary, text),
		}
		return nil
	})
	if err != nil {
		return core.ArticleBody{}, fmt.Errorf("%w: body for %q: %w", core.ErrGeneration, primary, err)
	}

	g.log.Info("Body generated", "words", WordCount(body.HTML), "meta_title", body.MetaTitle)
	return body, nil
}

// expand issues the single editor call that grows a short draft.
func (g *BodyGenerator) expand(ctx context.Context, draft, keywordsLine string) (string, error) {
	raw, err := g.gen.Generate(ctx, llm.Request{
		Prompt:      BuildExpandPrompt(draft, keywordsLine, g.opts.Expand),
		Temperature: expandTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("expansion call failed: %w", err)
	}
	expanded, err := g.sanitize(raw)
	if err != nil {
		return "", err
	}
	if expanded == "" {
		return draft, nil
	}
	return expanded, nil
}

func (g *BodyGenerator) sanitize(text string) (string, error) {
	out, err := ToHTML(StripFences(text))
	if err != nil {
		return "", fmt.Errorf("%w: markdown conversion failed: %v", core.ErrValidation, err)
	}
	return DemoteH1(out), nil
}

// checkOpening warns when the opening paragraph repeats the primary keyword.
func (g *BodyGenerator) checkOpening(text, primary string) {
	if primary == "" {
		return
	}
	opening := strings.ToLower(seo.FirstParagraphText(text))
	if n := strings.Count(opening, strings.ToLower(primary)); n > 1 {
		g.log.Warn("Opening paragraph repeats the primary keyword", "keyword", primary, "count", n)
	}
}

// ensureTitleHeading makes sure the first <h2> carries the primary keyword by
// prepending one built from the meta title when it does not.
func ensureTitleHeading(text, primary, metaTitle string) string {
	if primary == "" {
		return text
	}
	if m := firstH2.FindStringSubmatch(text); m != nil && seo.ContainsFold(html.UnescapeString(seo.StripTags(m[1])), primary) {
		return text
	}
	return "<h2>" + html.EscapeString(metaTitle) + "</h2>\n" + text
}
