package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"blogagent/internal/config"
	"blogagent/internal/core"
	"blogagent/internal/llm"
	"blogagent/internal/logger"
	"blogagent/internal/normalize"
	"blogagent/internal/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOutlineBuilder struct {
	outline   core.Outline
	err       error
	callCount int
}

func (m *mockOutlineBuilder) Build(ctx context.Context, kw core.KeywordPair) (core.Outline, error) {
	m.callCount++
	return m.outline, m.err
}

type mockBodyGenerator struct {
	body         core.ArticleBody
	err          error
	callCount    int
	keywordsLine string
}

func (m *mockBodyGenerator) Build(ctx context.Context, sections []core.Chapter, keywordsLine string) (core.ArticleBody, error) {
	m.callCount++
	m.keywordsLine = keywordsLine
	return m.body, m.err
}

type recordingLinker struct {
	primary string
}

func (r *recordingLinker) Inject(html, primary string) string {
	r.primary = primary
	return strings.Replace(html, "EOR", `<a href="/eor">EOR</a>`, 1)
}

func sampleOutline() core.Outline {
	return core.Outline{
		Title:            "Employer of Record Guide",
		LongTailKeywords: []string{"EOR costs"},
		TableOfContents: []core.Chapter{
			{Title: "What is an EOR"}, {Title: "Costs"}, {Title: "FAQ"},
		},
		RefinedKeywordsLine: "Employer of Record, EOR costs",
	}
}

func TestPipeline_Run(t *testing.T) {
	outline := &mockOutlineBuilder{outline: sampleOutline()}
	body := &mockBodyGenerator{body: core.ArticleBody{
		HTML:            "<h2>Employer of Record Guide</h2><p>An EOR hires for you.</p><h3>Costs</h3>",
		MetaTitle:       "Employer of Record Guide for CFOs",
		MetaDescription: "Employer of Record basics.",
	}}
	linker := &recordingLinker{}

	p := NewPipeline(outline, body, NormalizerFunc(normalize.Normalize), linker, logger.Discard())

	result, err := p.Generate(context.Background(), core.KeywordPair{Primary: "Employer of Record"})
	require.NoError(t, err)

	bundle := result.Bundle
	assert.Equal(t, "Employer of Record, EOR costs", body.keywordsLine)
	assert.Equal(t, "Employer of Record", linker.primary)
	assert.Equal(t, "Employer of Record", bundle.FocusKeyword())
	assert.Equal(t, "Employer of Record Guide for CFOs", bundle.MetaTitle)
	assert.Equal(t, "Employer of Record basics.", bundle.MetaDescription)
	assert.Contains(t, bundle.HTML, `<h2 id="costs">Costs</h2>`)
	assert.Contains(t, bundle.HTML, `<h2 id="what-is-an-eor">What is an EOR</h2>`)
	assert.NotContains(t, bundle.HTML, `id="faq"`, "backfill stops at the section minimum")
	assert.Contains(t, bundle.HTML, `<a href="/eor">EOR</a>`)
	assert.Equal(t, 1, result.Stats.LinksAdded)
	assert.Equal(t, 3, result.Stats.Sections)
}

func TestPipeline_OutlineFailureStopsRun(t *testing.T) {
	outline := &mockOutlineBuilder{err: fmt.Errorf("%w: boom", core.ErrGeneration)}
	body := &mockBodyGenerator{}

	p := NewPipeline(outline, body, NormalizerFunc(normalize.Normalize), &recordingLinker{}, logger.Discard())

	bundle, err := p.Run(context.Background(), core.KeywordPair{Primary: "EOR"})
	assert.Nil(t, bundle)
	assert.ErrorIs(t, err, core.ErrGeneration)
	assert.Equal(t, 0, body.callCount)
}

func TestPipeline_BodyFailure(t *testing.T) {
	outline := &mockOutlineBuilder{outline: sampleOutline()}
	body := &mockBodyGenerator{err: fmt.Errorf("%w: short", core.ErrGeneration)}
	linker := &recordingLinker{}

	p := NewPipeline(outline, body, NormalizerFunc(normalize.Normalize), linker, logger.Discard())

	_, err := p.Run(context.Background(), core.KeywordPair{Primary: "EOR"})
	assert.ErrorIs(t, err, core.ErrGeneration)
	assert.Equal(t, "", linker.primary, "linker never runs after a failure")
}

func TestBuilder_RequiresGenerator(t *testing.T) {
	_, err := NewBuilder(&config.Config{}).Build()
	assert.Error(t, err)

	_, err = NewBuilder(nil).WithGenerator(llm.NewMockGenerator("x")).Build()
	assert.Error(t, err)
}

func TestBuilder_EndToEndWithMockGenerator(t *testing.T) {
	outlineResp, err := json.Marshal(map[string]any{
		"Recommended_Long-Tail_Keywords": []string{"EOR costs"},
		"Title":                          "Employer of Record Guide",
		"Table_of_Contents": []map[string]any{
			{"chapter_title": "Basics", "recommended_keywords": []string{"EOR"}, "highlights": []string{"a"}},
			{"chapter_title": "Payroll", "recommended_keywords": []string{"payroll"}, "highlights": []string{"b"}},
			{"chapter_title": "FAQ", "recommended_keywords": []string{"faq"}, "highlights": []string{"c"}},
		},
		"Refined_Keywords": "EOR costs",
	})
	require.NoError(t, err)

	html := "<h2>Employer of Record Basics</h2><p>An Employer of Record runs payroll. " +
		strings.Repeat("word ", 1200) + "</p>"
	bodyResp, err := json.Marshal(map[string]string{
		"html_content":     html,
		"Meta_title":       "Employer of Record Basics for Finance Leaders",
		"Meta_description": "What an Employer of Record does.",
	})
	require.NoError(t, err)

	cfg := &config.Config{Content: config.Content{
		Brand: "NNRoad", Site: "www.nnroad.com", ContactEmail: "contact@nnroad.com",
		MinWords: 1150, ExpandMin: 1200, ExpandMax: 1600, MaxLinks: 4,
		Attempts: 3, RetryDelay: time.Millisecond,
	}}
	gen := llm.NewMockGenerator(string(outlineResp), string(bodyResp))

	p, err := NewBuilder(cfg).
		WithGenerator(gen).
		WithLogger(logger.Discard()).
		WithRetryPolicy(retry.Fixed(3, time.Millisecond)).
		Build()
	require.NoError(t, err)

	bundle, err := p.Run(context.Background(), core.KeywordPair{Primary: "Employer of Record"})
	require.NoError(t, err)

	assert.Equal(t, 2, gen.CallCount())
	assert.Equal(t, "Employer of Record, EOR costs", bundle.KeywordsLine)
	assert.Contains(t, bundle.HTML, `<h2 id="employer-of-record-basics">`)
	assert.Contains(t, bundle.HTML, `<h2 id="payroll">Payroll</h2>`)
	assert.Contains(t, bundle.HTML, `<a href="https://nnroad.com/services/employer-of-record/">Employer of Record</a>`)
	assert.Contains(t, bundle.HTML, `<a href="https://nnroad.com/services/global-payroll/">payroll</a>`)
}
