package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/liaGregorio/GeoDUA-sub000/internal/content"
	"github.com/liaGregorio/GeoDUA-sub000/internal/editor"
)

// renderMain renders header, command bar, panes and status line.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderPanes())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

// paneSizes returns the list and detail box sizes. In compact mode the
// list sits above the detail pane.
func (m Model) paneSizes() (listW, listH, detailW, detailH int) {
	contentHeight := max(m.height-3, 6) // header, command bar, status line
	if m.width < LayoutCompactWidth {
		listH = max(contentHeight/3, 4)
		return m.width, listH, m.width, contentHeight - listH
	}
	listW = min(LayoutListWidth, m.width/2)
	return listW, contentHeight, m.width - listW, contentHeight
}

func (m Model) renderPanes() string {
	listW, listH, detailW, detailH := m.paneSizes()

	listTitle := "Sections"
	if m.showRemoved {
		listTitle = "Removed"
	}
	list := m.renderTitledBox(listTitle, m.renderSectionList(listW-2, listH-2), listW, listH, false)

	detailTitle := "Section"
	if it, ok := m.selectedItem(); ok {
		detailTitle = truncate(sectionLabel(it), max(detailW-10, 8))
	}
	detail := m.renderTitledBox(detailTitle, m.detail.View(), detailW, detailH, true)

	if m.width < LayoutCompactWidth {
		return list + "\n" + detail
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

// stateMarker is the one-character state flag shown in the list.
func stateMarker(s editor.State) string {
	switch s {
	case editor.StateDirty:
		return "*"
	case editor.StateDraft:
		return "+"
	case editor.StateTombstoned:
		return "-"
	default:
		return " "
	}
}

func (m Model) renderSectionList(width, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	items := m.visibleItems()
	if len(items) == 0 {
		if !m.loaded {
			return styles.FaintText.Render("Loading...")
		}
		if m.showRemoved {
			return styles.FaintText.Render("No removed sections")
		}
		return styles.FaintText.Render("No sections yet. Press e, then a to add one.")
	}

	// Keep the selection visible.
	start := 0
	if m.selected >= height {
		start = m.selected - height + 1
	}
	end := min(start+height, len(items))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		it := items[i]
		label := fmt.Sprintf("%s%2d. %s", stateMarker(it.State), it.Section.Order, sectionLabel(it))
		label = truncate(label, width)
		switch {
		case i == m.selected:
			lines = append(lines, styles.Selected.Width(width).Render(label))
		case it.State == editor.StateClean:
			lines = append(lines, styles.Text.Render(label))
		default:
			color := m.theme.StateColors[it.State]
			lines = append(lines, lipgloss.NewStyle().
				Foreground(lipgloss.Color(color)).
				Background(lipgloss.Color(m.theme.SurfaceAlt)).
				Render(label))
		}
	}
	return strings.Join(lines, "\n")
}

// updateDetailViewport resizes the detail viewport and re-renders the
// selected section into it.
func (m *Model) updateDetailViewport() {
	if !m.ready {
		return
	}
	_, _, detailW, detailH := m.paneSizes()
	m.detail.Width = max(detailW-2, 1)
	m.detail.Height = max(detailH-2, 1)
	m.detail.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.detail.SetContent(m.renderDetail(m.detail.Width))
}

func (m Model) renderDetail(width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	it, ok := m.selectedItem()
	if !ok {
		return styles.FaintText.Render("Nothing selected")
	}
	sec := it.Section
	wrap := lipgloss.NewStyle().Width(max(width-2, 10))

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(sectionLabel(it)))
	b.WriteString("  ")
	b.WriteString(styles.StateStyle(it.State).Render(it.State.String()))
	b.WriteString("\n")

	meta := fmt.Sprintf("Position %d  ·  Model %s", sec.Order, sec.ExternalModelOrder)
	if id, persisted := it.Key.ID(); persisted {
		meta += fmt.Sprintf("  ·  #%d", id)
	}
	b.WriteString(styles.MutedText.Render(meta))
	b.WriteString("\n")
	if sec.ExternalModelLink != "" {
		b.WriteString(styles.InfoText.Render(sec.ExternalModelLink))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.AccentText.Bold(true).Render("Summary"))
	b.WriteString("\n")
	if strings.TrimSpace(sec.Summary) == "" {
		b.WriteString(styles.FaintText.Render("No summary"))
	} else {
		b.WriteString(styles.Text.Render(wrap.Render(sec.Summary)))
	}
	b.WriteString("\n")
	if p := sec.Provenance; p != nil && p.Provider != "" {
		b.WriteString(styles.FaintText.Render(provenanceLine(p)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.AccentText.Bold(true).Render("Body"))
	b.WriteString("\n")
	if body := content.BodyMarkdown(sec.Body); strings.TrimSpace(body) == "" {
		b.WriteString(styles.FaintText.Render("Empty body"))
	} else {
		b.WriteString(styles.Text.Render(wrap.Render(body)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderImages(it, styles, width))
	return b.String()
}

func provenanceLine(p *content.Provenance) string {
	line := "Generated by " + p.Provider
	switch p.Feedback {
	case content.FeedbackLike:
		line += "  ·  liked"
	case content.FeedbackDislike:
		line += "  ·  disliked"
	}
	return line
}

func (m Model) renderImages(it editor.Item, styles Styles, width int) string {
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(fmt.Sprintf("Images (%d)", len(it.Images))))
	b.WriteString("\n")

	_, persisted := it.Key.ID()
	switch {
	case persisted && !it.ImagesLoaded:
		b.WriteString(styles.FaintText.Render("Loading images..."))
		return b.String()
	case len(it.Images) == 0:
		b.WriteString(styles.FaintText.Render("No images"))
		return b.String()
	}

	for i, img := range it.Images {
		name := img.Name
		if name == "" {
			name = img.Ref.String()
		}
		line := fmt.Sprintf("%d. %s", img.Order, name)
		var flags []string
		if img.Temporary {
			flags = append(flags, "new")
		}
		if img.Dirty {
			flags = append(flags, "edited")
		}
		if len(flags) > 0 {
			line += " [" + strings.Join(flags, ", ") + "]"
		}
		if i == m.imageIdx {
			b.WriteString(styles.Selected.Render(truncate("> "+line, width-2)))
		} else {
			b.WriteString(styles.Text.Render(truncate("  "+line, width-2)))
		}
		b.WriteString("\n")
		desc := firstLine(img.Description)
		if desc == "" {
			desc = "no description"
		}
		b.WriteString(styles.MutedText.Render(truncate("     "+desc, width-2)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderTitledBox draws a box with the title embedded in the top border:
// ┌─── Title ───┐
func (m Model) renderTitledBox(title, body string, width, height int, focused bool) string {
	borderColor, bgColor := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColor, bgColor = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColor)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	top := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)
	bottom := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	lineStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColor))
	lines := strings.Split(body, "\n")
	rows := make([]string, 0, max(height-2, 0))
	for i := 0; i < height-2; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		rows = append(rows, bg.Render("│", borderStyle)+lineStyle.Render(line)+bg.Render("│", borderStyle))
	}
	return top + "\n" + strings.Join(rows, "\n") + "\n" + bottom
}
