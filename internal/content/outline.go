package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"blogagent/internal/core"
	"blogagent/internal/llm"
	"blogagent/internal/logger"
	"blogagent/internal/retry"
)

// Outline response fields.
const (
	fieldLongTail = "Recommended_Long-Tail_Keywords"
	fieldTitle    = "Title"
	fieldTOC      = "Table_of_Contents"
	fieldRefined  = "Refined_Keywords"
)

var outlineSchema = llm.NewSchema(
	llm.Field{Name: fieldLongTail, Kind: llm.KindStringList, Description: "A list of recommended Long-Tail Keywords"},
	llm.Field{Name: fieldTitle, Kind: llm.KindString, Description: "A title for the article"},
	llm.Field{Name: fieldTOC, Kind: llm.KindObjectList, Description: "JSON list of chapters with fields: chapter_title, recommended_keywords, highlights",
		Items: []llm.Field{
			{Name: "chapter_title", Kind: llm.KindString},
			{Name: "recommended_keywords", Kind: llm.KindStringList},
			{Name: "highlights", Kind: llm.KindStringList},
		}},
	llm.Field{Name: fieldRefined, Kind: llm.KindString, Description: "One line string containing primary and long-tail, joined by comma"},
)

// OutlineBuilder turns a keyword pair into an Outline.
type OutlineBuilder struct {
	gen    llm.Generator
	brand  Brand
	policy retry.Policy
	log    *slog.Logger
}

// NewOutlineBuilder creates an outline builder. A nil log uses the default
// logger.
func NewOutlineBuilder(gen llm.Generator, brand Brand, policy retry.Policy, log *slog.Logger) *OutlineBuilder {
	if log == nil {
		log = logger.Get()
	}
	return &OutlineBuilder{gen: gen, brand: brand, policy: policy, log: log}
}

// Build generates an outline. Each attempt starts from scratch; after the
// retry budget is spent the error wraps core.ErrGeneration.
func (b *OutlineBuilder) Build(ctx context.Context, kw core.KeywordPair) (core.Outline, error) {
	prompt := BuildOutlinePrompt(kw, b.brand)

	var outline core.Outline
	policy := b.policy
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		b.log.Warn("Outline attempt failed", "attempt", attempt, "error", err, "retry_in", wait)
	}

	err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
		raw, err := b.gen.Generate(ctx, llm.Request{Prompt: prompt, Schema: outlineSchema})
		if err != nil {
			return err
		}
		parsed, err := ParseOutline(raw, kw.Primary)
		if err != nil {
			return err
		}
		outline = parsed
		return nil
	})
	if err != nil {
		return core.Outline{}, fmt.Errorf("%w: outline for %q: %w", core.ErrGeneration, kw.Primary, err)
	}

	b.log.Info("Outline generated",
		"title", outline.Title,
		"chapters", len(outline.TableOfContents),
		"keywords_line", outline.RefinedKeywordsLine)
	return outline, nil
}

type rawChapter struct {
	Title               string          `json:"chapter_title"`
	RecommendedKeywords json.RawMessage `json:"recommended_keywords"`
	Highlights          json.RawMessage `json:"highlights"`
}

// ParseOutline validates a raw generator response against the outline schema
// and repairs the refined keywords line so it starts with primary.
func ParseOutline(raw, primary string) (core.Outline, error) {
	fields, err := llm.DecodeJSON(raw, outlineSchema)
	if err != nil {
		return core.Outline{}, err
	}

	chapters, err := decodeChapters(fields[fieldTOC])
	if err != nil {
		return core.Outline{}, err
	}

	outline := core.Outline{
		Title:            StripFences(decodeString(fields[fieldTitle])),
		LongTailKeywords: decodeStringList(fields[fieldLongTail]),
		TableOfContents:  chapters,
	}
	if outline.Title == "" {
		return core.Outline{}, fmt.Errorf("%w: outline title is empty", core.ErrValidation)
	}
	if len(outline.TableOfContents) == 0 {
		return core.Outline{}, fmt.Errorf("%w: outline has no chapters", core.ErrValidation)
	}

	outline.RefinedKeywordsLine = RepairKeywordsLine(decodeString(fields[fieldRefined]), primary, outline.LongTailKeywords)
	return outline, nil
}

// decodeChapters accepts a JSON array or a string holding one.
func decodeChapters(raw json.RawMessage) ([]core.Chapter, error) {
	var items []rawChapter
	if err := json.Unmarshal(raw, &items); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: table of contents is not a list", core.ErrValidation)
		}
		if err := json.Unmarshal([]byte(StripFences(s)), &items); err != nil {
			return nil, fmt.Errorf("%w: table of contents is not a list: %v", core.ErrValidation, err)
		}
	}

	chapters := make([]core.Chapter, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		ch := core.Chapter{Title: title}
		if len(item.RecommendedKeywords) > 0 {
			ch.RecommendedKeywords = decodeStringList(item.RecommendedKeywords)
		}
		if len(item.Highlights) > 0 {
			ch.Highlights = decodeStringList(item.Highlights)
		}
		chapters = append(chapters, ch)
	}
	return chapters, nil
}

// RepairKeywordsLine makes primary the first token of line, verbatim. Other
// tokens equal to primary are dropped; an otherwise empty line borrows the
// first long-tail keyword.
func RepairKeywordsLine(line, primary string, longTail []string) string {
	primary = strings.TrimSpace(primary)
	rest := make([]string, 0, 2)
	for _, tok := range strings.Split(line, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" || strings.EqualFold(tok, primary) {
			continue
		}
		rest = append(rest, tok)
	}
	if len(rest) == 0 {
		for _, kw := range longTail {
			kw = strings.TrimSpace(kw)
			if kw != "" && !strings.EqualFold(kw, primary) && !strings.Contains(kw, ",") {
				rest = append(rest, kw)
				break
			}
		}
	}
	return strings.Join(append([]string{primary}, rest...), ", ")
}
