package content

import (
	"bytes"
	"encoding/json"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// WordBand is an inclusive target range of words.
type WordBand struct {
	Min int
	Max int
}

var (
	leadingFence  = regexp.MustCompile("(?is)^\\s*```[a-zA-Z]*\\s*")
	trailingFence = regexp.MustCompile("(?s)\\s*```\\s*$")
	leadingQuote  = regexp.MustCompile("^\\s*[\"`“”]+")
	trailingQuote = regexp.MustCompile("[\"`“”]+\\s*$")

	anyTag    = regexp.MustCompile(`<[^>]+>`)
	htmlTag   = regexp.MustCompile(`(?i)</?[a-z][a-z0-9]*(?:\s[^>]*)?/?>`)
	wordToken = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	h1Open    = regexp.MustCompile(`(?i)<h1(\s[^>]*)?>`)
	h1Close   = regexp.MustCompile(`(?i)</h1\s*>`)
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// StripFences removes an enclosing code fence and surrounding quote marks
// from a generated text field.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = leadingFence.ReplaceAllString(text, "")
	text = trailingFence.ReplaceAllString(text, "")
	if stripped := leadingQuote.ReplaceAllString(text, ""); stripped != text {
		text = trailingQuote.ReplaceAllString(stripped, "")
	}
	return strings.TrimSpace(text)
}

// WordCount collapses markup to whitespace and counts word tokens.
func WordCount(body string) int {
	text := html.UnescapeString(anyTag.ReplaceAllString(body, " "))
	return len(wordToken.FindAllStringIndex(text, -1))
}

// ToHTML returns body as HTML. Text without any tags is treated as Markdown.
func ToHTML(body string) (string, error) {
	if body == "" || htmlTag.MatchString(body) {
		return body, nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// DemoteH1 rewrites every <h1> as <h2>, keeping attributes.
func DemoteH1(body string) string {
	body = h1Open.ReplaceAllString(body, "<h2$1>")
	return h1Close.ReplaceAllString(body, "</h2>")
}

// decodeString accepts a JSON string or any other JSON value rendered as text.
func decodeString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	if string(raw) == "null" {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// decodeStringList accepts a JSON array of strings or a comma/newline
// separated string.
func decodeStringList(raw json.RawMessage) []string {
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				b, _ := json.Marshal(item)
				s = string(b)
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return splitList(decodeString(raw))
}

func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(f), "-*•"))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
