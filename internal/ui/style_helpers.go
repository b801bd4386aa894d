package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle paints runs of text on a fixed background. Styling each word and
// joining with painted spaces keeps the gaps from falling back to the
// terminal default.
type BgStyle struct {
	fill lipgloss.Style
}

// NewBgStyle creates a painter for bgColor.
func NewBgStyle(bgColor string) BgStyle {
	return BgStyle{fill: lipgloss.NewStyle().Background(lipgloss.Color(bgColor))}
}

// Render styles text with style over the background.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	style = style.Background(b.fill.GetBackground())
	fields := strings.Split(text, " ")
	for i, f := range fields {
		if f != "" {
			fields[i] = style.Render(f)
		}
	}
	return strings.Join(fields, b.fill.Render(" "))
}

// Spaces returns n painted spaces.
func (b BgStyle) Spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return b.fill.Render(strings.Repeat(" ", n))
}

// Sep paints a separator glyph.
func (b BgStyle) Sep(sep string) string { return b.fill.Render(sep) }

// truncate shortens s to max runes, ending in "..." when there is room.
func truncate(s string, max int) string {
	switch {
	case max <= 0:
		return ""
	case utf8.RuneCountInString(s) <= max:
		return s
	}
	r := []rune(s)
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// firstLine returns the first non-blank line of s, trimmed.
func firstLine(s string) string {
	for line := range strings.Lines(s) {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
