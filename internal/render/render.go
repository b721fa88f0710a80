// Package render exports an article bundle for dry runs, without publishing.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"blogagent/internal/core"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/goccy/go-yaml"
)

// Supported export formats
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// FrontMatter is the YAML header written above a Markdown export.
type FrontMatter struct {
	Title        string   `yaml:"title"`
	Description  string   `yaml:"description"`
	FocusKeyword string   `yaml:"focus_keyword"`
	Keywords     []string `yaml:"keywords"`
}

// HTML returns the publishable body as-is.
func HTML(bundle core.ArticleBundle) string {
	return bundle.HTML
}

// Markdown converts the body to Markdown and prefixes the SEO fields as
// YAML front matter.
func Markdown(bundle core.ArticleBundle) (string, error) {
	body, err := htmltomarkdown.ConvertString(bundle.HTML)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}

	fm := FrontMatter{
		Title:        bundle.MetaTitle,
		Description:  bundle.MetaDescription,
		FocusKeyword: bundle.FocusKeyword(),
		Keywords:     splitKeywords(bundle.KeywordsLine),
	}
	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encoding front matter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(header)
	sb.WriteString("---\n\n")
	sb.WriteString(strings.TrimSpace(body))
	sb.WriteString("\n")
	return sb.String(), nil
}

// Bundle renders in the named format. An empty format means HTML.
func Bundle(bundle core.ArticleBundle, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatHTML:
		return HTML(bundle), nil
	case FormatMarkdown, "md":
		return Markdown(bundle)
	default:
		return "", fmt.Errorf("unsupported format %q (use %s or %s)", format, FormatHTML, FormatMarkdown)
	}
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(content, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func splitKeywords(line string) []string {
	var out []string
	for _, kw := range strings.Split(line, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
