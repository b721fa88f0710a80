// Package links rewrites the first plain-text mention of known topics into
// internal links, with a per-URL-once rule and a per-article cap.
package links

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultMaxLinks caps distinct URLs inserted into one article.
const DefaultMaxLinks = 4

// Rule links the first match of Pattern to URL.
type Rule struct {
	Pattern *regexp.Regexp
	URL     string
}

func rule(pattern, url string) Rule {
	return Rule{Pattern: regexp.MustCompile(`(?i)` + pattern), URL: url}
}

// Injector holds an ordered link table. Earlier rules win when the cap is
// close.
type Injector struct {
	rules    []Rule
	regional map[int]string // Rule index to URL used for jurisdiction keywords
	markers  []string       // Lower-case jurisdiction markers
	fallback []Rule         // Generic geography rules, paragraphs only
	maxLinks int
}

// NewInjector returns an injector with the site's link table. A zero cap
// disables linking; a negative one selects DefaultMaxLinks.
func NewInjector(maxLinks int) *Injector {
	if maxLinks < 0 {
		maxLinks = DefaultMaxLinks
	}
	return &Injector{
		rules: []Rule{
			rule(`\bEmployer of Record\b|\bEOR services?\b|\bEOR\b`, "https://nnroad.com/services/employer-of-record/"),
			rule(`\bglobal payroll\b|\bpayroll\b`, "https://nnroad.com/services/global-payroll/"),
			rule(`\blabor cost calculator\b`, "https://nnroad.com/usa/labor-cost-calculator/"),
			rule(`\bwork permits?\b|\bvisa\b`, "https://nnroad.com/services/"),
		},
		regional: map[int]string{
			0: "https://nnroad.com/usa/employer-of-record-eor-peo-geo-company/",
			1: "https://nnroad.com/usa/payroll-service-company/",
		},
		markers: []string{"united states", "usa", "u.s.", "california", "florida"},
		fallback: []Rule{
			rule(`\bUnited States\b|\bUSA\b|\bU\.S\.A\.?`, "https://nnroad.com/usa/"),
		},
		maxLinks: maxLinks,
	}
}

// Rules returns the table in effect for primary.
func (in *Injector) Rules(primary string) []Rule {
	rules := make([]Rule, len(in.rules))
	copy(rules, in.rules)
	if !in.isRegional(primary) {
		return rules
	}
	for idx, url := range in.regional {
		if idx < len(rules) {
			rules[idx].URL = url
		}
	}
	return rules
}

func (in *Injector) isRegional(primary string) bool {
	low := strings.ToLower(primary)
	for _, m := range in.markers {
		if strings.Contains(low, m) {
			return true
		}
	}
	return false
}

// Inject rewrites paragraphs first, then list items if the cap is unmet,
// then applies the geography fallback to paragraphs. Text inside existing
// anchors is never touched, and table URLs already linked in body count as
// used, so running Inject on its own output adds nothing.
func (in *Injector) Inject(body, primary string) string {
	rules := in.Rules(primary)
	seen := linkedURLs(body, append(rules, in.fallback...))

	body = in.applyInTag(body, "p", rules, seen)
	if len(seen) < in.maxLinks {
		body = in.applyInTag(body, "li", rules, seen)
	}
	if len(seen) < in.maxLinks {
		body = in.applyInTag(body, "p", in.fallback, seen)
	}
	return body
}

func (in *Injector) applyInTag(body, tag string, rules []Rule, seen map[string]bool) string {
	block := blockPatterns[tag]

	return block.ReplaceAllStringFunc(body, func(m string) string {
		if len(seen) >= in.maxLinks {
			return m
		}
		parts := block.FindStringSubmatch(m)
		open, inner, end := parts[1], parts[2], parts[3]

		var mk masker
		text := mk.mask(inner)
		for _, r := range rules {
			if len(seen) >= in.maxLinks {
				break
			}
			if seen[r.URL] {
				continue
			}
			loc := r.Pattern.FindStringIndex(text)
			if loc == nil {
				continue
			}
			anchor := fmt.Sprintf(`<a href="%s">%s</a>`, r.URL, text[loc[0]:loc[1]])
			text = text[:loc[0]] + mk.token(anchor) + text[loc[1]:]
			seen[r.URL] = true
		}
		return open + mk.restore(text) + end
	})
}

// linkedURLs returns the table URLs body already links to.
func linkedURLs(body string, rules []Rule) map[string]bool {
	seen := make(map[string]bool)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return seen
	}
	known := make(map[string]bool, len(rules))
	for _, r := range rules {
		known[r.URL] = true
	}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, _ := s.Attr("href"); known[href] {
			seen[href] = true
		}
	})
	return seen
}

var blockPatterns = map[string]*regexp.Regexp{
	"p":  regexp.MustCompile(`(?is)(<p(?:\s[^>]*)?>)(.*?)(</p\s*>)`),
	"li": regexp.MustCompile(`(?is)(<li(?:\s[^>]*)?>)(.*?)(</li\s*>)`),
}

var (
	anchorSpan  = regexp.MustCompile(`(?is)<a\b[^>]*>.*?</a\s*>`)
	tagSpan     = regexp.MustCompile(`<[^>]+>`)
	placeholder = regexp.MustCompile(`\x{E000}(\d+)\x{E001}`)
)

// masker swaps protected spans for private-use placeholder tokens and puts
// them back afterwards. Anchors are masked whole; other tags are masked so
// attribute values never match.
type masker struct {
	spans []string
}

func (m *masker) mask(s string) string {
	s = anchorSpan.ReplaceAllStringFunc(s, m.token)
	return tagSpan.ReplaceAllStringFunc(s, m.token)
}

func (m *masker) token(span string) string {
	m.spans = append(m.spans, span)
	return fmt.Sprintf("\uE000%d\uE001", len(m.spans)-1)
}

func (m *masker) restore(s string) string {
	return placeholder.ReplaceAllStringFunc(s, func(tok string) string {
		idx, err := strconv.Atoi(placeholder.FindStringSubmatch(tok)[1])
		if err != nil || idx >= len(m.spans) {
			return tok
		}
		return m.spans[idx]
	})
}
