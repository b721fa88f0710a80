package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"blogagent/internal/core"
)

// Brand identifies the site the articles are written for.
type Brand struct {
	Name         string // Company name, kept verbatim in generated text
	Site         string
	ContactEmail string
}

// BuildOutlinePrompt asks for long-tail keywords, a title, a table of
// contents and the refined keywords line for one keyword pair.
func BuildOutlinePrompt(kw core.KeywordPair, brand Brand) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("You are preparing an SEO-friendly blog outline for %s.\n\n", brand.Site))
	prompt.WriteString(fmt.Sprintf("Primary Keyword (exact, contiguous): '%s'\n", kw.Primary))
	prompt.WriteString(fmt.Sprintf("Additional context / secondary hints: '%s'\n\n", kw.Secondary))

	prompt.WriteString("Goals:\n")
	prompt.WriteString("- Produce an outline that targets C-level leaders, such as CEOs, CFOs, HR heads, and legal leads at international companies.\n")
	prompt.WriteString("- Tone: professional, authoritative, approachable; plain English, short paragraphs/bullets; avoid dense legal text.\n")
	prompt.WriteString("- Mention any relevant local/US/California policies or laws in plain English if applicable.\n\n")

	prompt.WriteString("OUTPUT FORMAT (STRICT). Return JSON ONLY with these fields:\n")
	prompt.WriteString("1) \"Recommended_Long-Tail_Keywords\": A list of 3-6 long-tail keywords derived from the Primary Keyword.\n")
	prompt.WriteString("2) \"Title\": An SEO title that MUST include the exact Primary Keyword as a contiguous phrase. ")
	prompt.WriteString("You MAY include one number, one power word and an optional positive/negative sentiment.\n")
	prompt.WriteString("3) \"Table_of_Contents\": A JSON list of 4-8 chapters. Each item has:\n")
	prompt.WriteString("   - \"chapter_title\" (concise; include the Primary Keyword at least once across the whole ToC where natural)\n")
	prompt.WriteString("   - \"recommended_keywords\" (2-5 relevant terms)\n")
	prompt.WriteString("   - \"highlights\" (2-4 bullet points of key content ideas)\n")
	prompt.WriteString(fmt.Sprintf("   Focus balance: ~50%% intro + US/California-related policies (if relevant), ~30%% %s recommendation/service intro, remainder best practices/FAQs.\n", brand.Name))
	prompt.WriteString("4) \"Refined_Keywords\": ONE line string: \"Primary, <one long-tail keyword>\" (exactly these two, comma-separated; Primary first, unchanged).\n\n")

	prompt.WriteString("Rules:\n")
	prompt.WriteString(fmt.Sprintf("- Keep the company name exactly \"%s\" when it appears.\n", brand.Name))
	prompt.WriteString("- English only.\n")
	prompt.WriteString("- Return valid JSON only, no extra text.\n")

	return prompt.String()
}

// BuildBodyPrompt asks for the full article HTML and its meta fields.
func BuildBodyPrompt(sections []core.Chapter, keywordsLine string, brand Brand, words WordBand) string {
	sectionsJSON, err := json.Marshal(sections)
	if err != nil {
		sectionsJSON = []byte("[]")
	}

	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("You are generating the full blog HTML and SEO meta information for %s.\n\n", brand.Site))
	prompt.WriteString(fmt.Sprintf("Sections (Table_of_Contents) JSON: '%s'\n", sectionsJSON))
	prompt.WriteString(fmt.Sprintf("Refinement keywords line: '%s'\n\n", keywordsLine))

	prompt.WriteString("STRICT REQUIREMENTS:\n")
	prompt.WriteString(fmt.Sprintf("- Length: ~%d-%d words total.\n", words.Min, words.Max))
	prompt.WriteString("- HTML only in \"html_content\"; use <h2>/<h3>/<p>/<ul>/<li> (NO <h1>).\n")
	prompt.WriteString(fmt.Sprintf("- The FIRST <h2> is the on-page title and MUST contain the exact Primary Keyword (from '%s', the first term before the comma).\n", keywordsLine))
	prompt.WriteString("- Use the Primary Keyword multiple times naturally; include it in chapter headings where natural.\n")
	prompt.WriteString("- Introduction: MUST contain the Primary Keyword exactly once (no more than once).\n")
	prompt.WriteString("- Style: short paragraphs, plain English; bullets/tables/callouts allowed; avoid dense legal text.\n")
	prompt.WriteString("- Mention key local/US/California laws/policies by name if relevant, with very short plain-English explanations.\n")
	prompt.WriteString("- Include at least one <div class='callout'>...</div> for key compliance notes.\n")
	prompt.WriteString(fmt.Sprintf("- End the article with: \"If you have questions, please contact us at %s.\"\n", brand.ContactEmail))
	prompt.WriteString(fmt.Sprintf("- Keep the company name exactly \"%s\" when used.\n\n", brand.Name))

	prompt.WriteString("Meta fields:\n")
	prompt.WriteString("- \"Meta_title\": MUST include the exact Primary Keyword.\n")
	prompt.WriteString(fmt.Sprintf("- \"Meta_description\": <=140 chars and MUST include exactly one of the terms from '%s'.\n\n", keywordsLine))

	prompt.WriteString("OUTPUT FORMAT (STRICT):\n")
	prompt.WriteString("- Return JSON ONLY with the fields \"html_content\", \"Meta_title\" and \"Meta_description\".\n")
	prompt.WriteString("- All JSON keys/strings use double quotes.\n")
	prompt.WriteString("- Inside html_content, prefer single quotes for HTML attributes to minimize escaping.\n")

	return prompt.String()
}

// BuildExpandPrompt asks an editor pass to grow a short draft while keeping
// its structure.
func BuildExpandPrompt(html, keywordsLine string, band WordBand) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("You are an editor. Expand the following HTML article to %d-%d words.\n", band.Min, band.Max))
	prompt.WriteString("Keep all existing H2/H3 headings, structure, and style. Do not add <h1>.\n")
	prompt.WriteString("Preserve the first <h2> as the on-page title. Keep compliance callouts and short paragraphs.\n")
	prompt.WriteString(fmt.Sprintf("Use the Primary keyword from '%s' naturally across headings and body.\n", keywordsLine))
	prompt.WriteString("Return HTML only (no code fences).\n\n")
	prompt.WriteString("[Current HTML]\n")
	prompt.WriteString(html)
	prompt.WriteString("\n")

	return prompt.String()
}
