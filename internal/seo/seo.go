// Package seo holds the keyword-presence guarantees applied to meta titles and
// descriptions, and slug derivation for headings and post permalinks.
package seo

import (
	"crypto/md5"
	"html"
	"math/big"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// MaxDescriptionRunes is the meta description length limit.
const MaxDescriptionRunes = 160

// MinTitleLength is the shortest meta title kept without a suffix.
const MinTitleLength = 25

// titleSuffixes is the fixed pool used to diversify bland titles. Order is
// part of the contract: changing it changes titles for existing keywords.
var titleSuffixes = []string{
	"— Key Insights for Leaders",
	"— Compliance & Hiring Guide",
	"— What You Need to Know",
	"— 2025 Playbook",
	"— Quick Guide", "— Essentials", "— Executive Brief", "— 2025 Update",
	"— Best Practices", "— Compliance Basics", "— Hiring Guide", "— For CEOs & CFOs",
	"— Action Checklist", "— Step-by-Step", "— Key Considerations", "— What to Watch",
	"— Practical Guide", "— Market Snapshot", "— Startup Guide", "— Playbook",
	"— Tips & Traps", "— Do’s & Don’ts", "— At a Glance", "— Deep Dive",
}

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// StripTags removes markup and collapses whitespace.
func StripTags(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// Slugify derives a URL-safe identifier: tags removed, entities decoded,
// non-word characters dropped, lower-cased, whitespace runs to hyphens.
func Slugify(s string) string {
	s = html.UnescapeString(tagPattern.ReplaceAllString(s, ""))

	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-':
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
	}
	return spacePattern.ReplaceAllString(strings.TrimSpace(sb.String()), "-")
}

// ContainsFold reports whether s contains substr, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// EnsureMetaTitle guarantees the title carries the primary keyword. A title
// without it is replaced by "<primary> | <brand>"; the result is then
// diversified.
func EnsureMetaTitle(title, primary, brand string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = primary
	}
	if primary != "" && !ContainsFold(title, primary) {
		title = primary + " | " + brand
	}
	return DiversifyTitle(title, primary)
}

// DiversifyTitle appends a suffix chosen by a stable hash of the primary
// keyword when the title is empty, equals the keyword, or is too short.
// The same keyword always yields the same title.
func DiversifyTitle(title, primary string) string {
	base := strings.TrimSpace(title)
	primary = strings.TrimSpace(primary)
	if primary == "" {
		return base
	}

	normBase := strings.ToLower(spacePattern.ReplaceAllString(base, " "))
	if base != "" && normBase != strings.ToLower(primary) && utf8.RuneCountInString(base) >= MinTitleLength {
		return base
	}
	return primary + " " + titleSuffixes[suffixIndex(primary)]
}

func suffixIndex(primary string) int {
	sum := md5.Sum([]byte(primary))
	n := new(big.Int).SetBytes(sum[:])
	return int(n.Mod(n, big.NewInt(int64(len(titleSuffixes)))).Int64())
}

// EnsureMetaDescription guarantees the description carries the primary
// keyword and fits the length limit. An empty description falls back to the
// first paragraph of body.
func EnsureMetaDescription(desc, primary, body string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		desc = FirstParagraphText(body)
	}
	if primary != "" && !ContainsFold(desc, primary) {
		desc = primary + " — " + desc
	}
	return Truncate(desc, MaxDescriptionRunes)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// FirstParagraphText returns the whitespace-collapsed text of the first <p>.
func FirstParagraphText(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	p := doc.Find("p").First()
	if p.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(spacePattern.ReplaceAllString(p.Text(), " "))
}
