package core

import (
	"fmt"
	"strings"
)

// KeywordPair is the immutable input of a pipeline run.
type KeywordPair struct {
	Primary   string `json:"primary"`   // Exact phrase the article targets contiguously
	Secondary string `json:"secondary"` // Optional context / secondary hints
}

// NewKeywordPair trims both keywords. The primary keyword must be non-empty
// and free of commas, since it leads the comma-separated keywords line.
func NewKeywordPair(primary, secondary string) (KeywordPair, error) {
	p := strings.TrimSpace(primary)
	if p == "" {
		return KeywordPair{}, fmt.Errorf("%w: primary keyword is empty", ErrInvalidKeyword)
	}
	if strings.Contains(p, ",") {
		return KeywordPair{}, fmt.Errorf("%w: primary keyword %q contains a comma", ErrInvalidKeyword, p)
	}
	return KeywordPair{Primary: p, Secondary: strings.TrimSpace(secondary)}, nil
}

// Chapter is one entry of an outline's table of contents.
type Chapter struct {
	Title               string   `json:"chapter_title"`
	RecommendedKeywords []string `json:"recommended_keywords"`
	Highlights          []string `json:"highlights"`
}

// Outline is the structured plan produced before the body is written.
type Outline struct {
	Title               string    `json:"title"`
	LongTailKeywords    []string  `json:"long_tail_keywords"`
	TableOfContents     []Chapter `json:"table_of_contents"`
	RefinedKeywordsLine string    `json:"refined_keywords_line"` // First comma-separated token is the primary keyword
}

// ArticleBody is the generated HTML plus SEO meta fields.
type ArticleBody struct {
	HTML            string `json:"html"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"` // At most 160 characters
}

// ArticleBundle is the finalized, normalized, link-injected artifact handed
// to the publisher. Treat it as read-only once constructed.
type ArticleBundle struct {
	HTML            string `json:"html"`
	MetaTitle       string `json:"meta_title"`
	KeywordsLine    string `json:"keywords_line"`
	MetaDescription string `json:"meta_description"`
}

// FocusKeyword returns the keyword surfaced to SEO metadata: the first
// comma-separated token of the keywords line.
func (b ArticleBundle) FocusKeyword() string {
	return PrimaryFromKeywordsLine(b.KeywordsLine)
}

// PublishResult is returned once a post exists on the CMS.
type PublishResult struct {
	PostID int `json:"post_id"`
}

// PrimaryFromKeywordsLine extracts the first comma-separated token, trimmed.
func PrimaryFromKeywordsLine(line string) string {
	first, _, _ := strings.Cut(line, ",")
	return strings.TrimSpace(first)
}
