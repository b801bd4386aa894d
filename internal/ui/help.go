package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var helpTitles = []string{"Navigation", "Sections", "Images", "AI", "Saving", "General"}

// renderHelp renders the help overlay from the key map. Wide terminals get
// the groups split over two columns.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := ink(m.theme.Warning).Width(10)

	groups := m.keys.FullHelp()
	blocks := make([]string, 0, len(groups))
	for i, group := range groups {
		var b strings.Builder
		if i < len(helpTitles) {
			b.WriteString(styles.AccentText.Bold(true).Render(helpTitles[i]) + "\n")
		}
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(keyStyle.Render(h.Key) + styles.Text.Render(h.Desc) + "\n")
		}
		blocks = append(blocks, b.String())
	}

	title := styles.Text.Bold(true).Render("Keyboard Shortcuts") + "\n" +
		styles.FaintText.Render(strings.Repeat("─", 34)) + "\n\n"

	if m.width < LayoutCompactWidth {
		return placeModal(m.theme, m.width, m.height, 44, title+strings.Join(blocks, "\n"))
	}
	split := (len(blocks) + 1) / 2
	column := lipgloss.NewStyle().Width(40)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		column.Render(strings.Join(blocks[:split], "\n")),
		column.Render(strings.Join(blocks[split:], "\n")))
	return placeModal(m.theme, m.width, m.height, 86, title+body)
}
