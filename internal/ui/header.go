package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the top line: logo, chapter, user and edit status.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("GeoDUA", styles.Logo)}

	chapter := fmt.Sprintf("Chapter #%d", m.chapter.ID)
	if t := strings.TrimSpace(m.chapter.Title); t != "" {
		chapter = fmt.Sprintf("%s (#%d)", t, m.chapter.ID)
	}
	parts = append(parts, bg.Render(truncate(chapter, 48), styles.Text))

	if m.loaded {
		parts = append(parts, bg.Render(fmt.Sprintf("%d sections", len(m.items)), styles.MutedText))
	}

	if m.session.EditMode() {
		parts = append(parts, bg.Render("EDIT", styles.WarningText.Bold(true)))
	} else {
		parts = append(parts, bg.Render("VIEW", styles.MutedText))
	}
	if m.session.HasPendingChanges() {
		parts = append(parts, bg.Render("● unsaved", styles.WarningText))
	}
	if m.busy != "" {
		parts = append(parts, bg.Render(m.busy+"...", styles.InfoText))
	}

	user := m.session.User()
	if user.Name != "" && m.width >= LayoutCompactWidth {
		parts = append(parts, bg.Render(user.Name, styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, bg.Spaces(2)))
}

// renderCommandBar renders the context-sensitive key hints.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.showRemoved:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"R", "Back to sections"},
			{"?", "More"},
		}
	case m.session.EditMode():
		commands = []cmd{
			{"enter", "Edit"},
			{"K/J", "Move"},
			{"a", "Add"},
			{"x", "Remove"},
			{"i", "Image"},
			{"S", "Summary"},
			{"s", "Save"},
			{"d", "Draft"},
			{"u", "Discard"},
			{"e", "View mode"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"[/]", "Images"},
			{"v", "Speak"},
			{"r", "Reload"},
			{"e", "Edit mode"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments, bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments, bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// renderStatus renders the bottom notification line.
func (m Model) renderStatus() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	var text string
	switch m.status.level {
	case statusSuccess:
		text = bg.Render(m.status.text, styles.SuccessText)
	case statusWarning:
		text = bg.Render(m.status.text, styles.WarningText)
	case statusError:
		text = bg.Render(m.status.text, styles.DangerText)
	default:
		text = bg.Render(m.status.text, styles.MutedText)
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Background)).
		Width(m.width).
		MaxHeight(1).
		Render(" " + text)
}
