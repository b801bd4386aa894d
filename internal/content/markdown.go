package content

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// htmlTagPattern matches the tags the rich-text editor emits.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|u|strong|em|a|ul|ol|li|h[1-6]|blockquote|table|img)[\s>/]`)

// ContainsHTML reports whether s looks like HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// BodyMarkdown renders a section body as Markdown for terminals and for AI
// prompts. Plain text is returned unchanged; on conversion failure the
// original string is returned.
func BodyMarkdown(s string) string {
	if s == "" || !ContainsHTML(s) {
		return s
	}
	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}
