// Package normalize flattens article headings to a single addressable level,
// assigns anchor ids, and backfills sections the generator left out.
package normalize

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"blogagent/internal/core"
	"blogagent/internal/seo"
)

const (
	minSections = 3
	maxSections = 6
)

var (
	h3Open  = regexp.MustCompile(`(?i)<h3(\b[^>]*)>`)
	h3Close = regexp.MustCompile(`(?i)</h3\s*>`)
	h2Block = regexp.MustCompile(`(?is)<h2\b[^>]*>(.*?)</h2\s*>`)
)

// Heading is a second-level heading after normalization.
type Heading struct {
	ID   string
	Text string
}

// Normalize promotes h3 to h2, gives every h2 an id derived from its text,
// and appends missing outline chapters when the body has fewer than
// max(3, min(6, len(sections))) sections. It is deterministic and applying
// it to its own output changes nothing.
func Normalize(body string, sections []core.Chapter) string {
	out, _ := normalize(body, sections)
	return out
}

// Headings returns the h2 headings of an already normalized body.
func Headings(body string) []Heading {
	_, headings := normalize(body, nil)
	return headings
}

func normalize(body string, sections []core.Chapter) (string, []Heading) {
	body = PromoteHeadings(body)

	ids := newIDSet()
	var headings []Heading
	body = h2Block.ReplaceAllStringFunc(body, func(block string) string {
		inner := h2Block.FindStringSubmatch(block)[1]
		text := html.UnescapeString(seo.StripTags(inner))
		id := ids.assign(text, len(headings)+1)
		headings = append(headings, Heading{ID: id, Text: text})
		return fmt.Sprintf(`<h2 id="%s">%s</h2>`, id, inner)
	})

	need := max(minSections, min(maxSections, len(sections)))
	if len(headings) >= need || len(sections) == 0 {
		return body, headings
	}

	present := make(map[string]bool, len(headings))
	for _, h := range headings {
		present[strings.TrimSpace(h.Text)] = true
	}

	var sb strings.Builder
	sb.WriteString(body)
	for _, ch := range sections {
		title := strings.TrimSpace(ch.Title)
		if title == "" || present[title] || ids.has(seo.Slugify(title)) {
			continue
		}
		id := ids.assign(title, len(headings)+1)
		sb.WriteString(fmt.Sprintf("\n<h2 id=\"%s\">%s</h2>\n", id, html.EscapeString(title)))
		headings = append(headings, Heading{ID: id, Text: title})
		if len(headings) >= need {
			break
		}
	}
	return sb.String(), headings
}

// PromoteHeadings rewrites every h3 as h2, keeping attributes.
func PromoteHeadings(body string) string {
	body = h3Open.ReplaceAllString(body, "<h2$1>")
	return h3Close.ReplaceAllString(body, "</h2>")
}

// idSet hands out unique anchor ids in document order. Repeated slugs get
// -2, -3, ... suffixes; text without any word characters gets sec-N.
type idSet struct {
	used map[string]bool
}

func newIDSet() *idSet {
	return &idSet{used: make(map[string]bool)}
}

func (s *idSet) has(id string) bool {
	return id != "" && s.used[id]
}

func (s *idSet) assign(text string, position int) string {
	base := seo.Slugify(text)
	if base == "" {
		base = fmt.Sprintf("sec-%d", position)
	}
	id := base
	for n := 2; s.used[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	s.used[id] = true
	return id
}
