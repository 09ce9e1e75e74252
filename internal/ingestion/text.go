package ingestion

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxTextChars caps resolved text handed to prompt building.
const MaxTextChars = 30000

var (
	htmlTagPattern   = regexp.MustCompile(`<\s*/?\s*[a-zA-Z][a-zA-Z0-9-]*\b[^<>]*>|<!`)
	spaceRunPattern  = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankRunsPattern = regexp.MustCompile(`\n{3,}`)
)

// Normalize strips HTML, collapses whitespace and truncates to MaxTextChars.
func Normalize(text string) string {
	if looksLikeHTML(text) {
		text = stripHTML(text)
	}
	return truncate(CleanText(text), MaxTextChars)
}

// CleanText normalizes line endings, collapses runs of spaces within each
// line and keeps at most one blank line between paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRunPattern.ReplaceAllString(line, " "))
	}

	result := strings.Join(lines, "\n")
	result = blankRunsPattern.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

func looksLikeHTML(text string) bool {
	return htmlTagPattern.MatchString(text)
}

// stripHTML returns the text content of an HTML fragment with block elements
// on separate lines. Scripts and styles are dropped.
func stripHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, tr, section, article, ul, ol").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return doc.Text()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit]))
}
