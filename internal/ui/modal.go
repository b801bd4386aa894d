package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// emit wraps a message as a command.
func emit(msg tea.Msg) tea.Cmd {
	if msg == nil {
		return nil
	}
	return func() tea.Msg { return msg }
}

// inputModal edits one value. Single-line values use a textinput and submit
// on enter; multi-line values use a textarea and submit on ctrl+s.
type inputModal struct {
	title     string
	multiline bool
	input     textinput.Model
	area      textarea.Model
	submit    func(value string) tea.Msg
}

func newInputModal(title, value string, multiline bool, width int, submit func(string) tea.Msg) *inputModal {
	m := &inputModal{title: title, multiline: multiline, submit: submit}
	if multiline {
		ta := textarea.New()
		ta.SetValue(value)
		ta.SetWidth(max(width-12, 20))
		ta.SetHeight(10)
		ta.CharLimit = 0
		ta.ShowLineNumbers = false
		ta.Focus()
		m.area = ta
		return m
	}
	ti := textinput.New()
	ti.SetValue(value)
	ti.CharLimit = 2048
	ti.Width = max(width-16, 20)
	ti.CursorEnd()
	ti.Focus()
	m.input = ti
	return m
}

func (m *inputModal) value() string {
	if m.multiline {
		return m.area.Value()
	}
	return m.input.Value()
}

func (m *inputModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, keys.Escape):
			return m, nil, true
		case m.multiline && k.String() == "ctrl+s":
			return m, emit(m.submit(m.value())), true
		case !m.multiline && key.Matches(k, keys.Confirm):
			return m, emit(m.submit(m.value())), true
		}
	}

	var cmd tea.Cmd
	if m.multiline {
		m.area, cmd = m.area.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd, false
}

func (m *inputModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(m.title))
	b.WriteString("\n\n")
	if m.multiline {
		b.WriteString(m.area.View())
		b.WriteString("\n\n")
		b.WriteString(styles.FaintText.Render("ctrl+s save  esc cancel"))
	} else {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(styles.FaintText.Render("enter save  esc cancel"))
	}
	return placeModal(theme, width, height, max(min(width-4, 90), 40), b.String())
}

// confirmModal asks a yes/no question.
type confirmModal struct {
	prompt string
	onYes  tea.Msg
}

func (m *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch {
	case k.String() == "y", key.Matches(k, keys.Confirm):
		return m, emit(m.onYes), true
	case k.String() == "n", key.Matches(k, keys.Escape):
		return m, nil, true
	}
	return m, nil, false
}

func (m *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := styles.Text.Render(m.prompt) + "\n\n" +
		styles.AccentText.Render("y") + styles.MutedText.Render(" yes   ") +
		styles.AccentText.Render("n") + styles.MutedText.Render(" no")
	return placeModal(theme, width, height, 50, body)
}

// pickerModal selects one option from a short list.
type pickerModal struct {
	title   string
	options []string
	cursor  int
	onPick  func(index int) tea.Msg
}

func (m *pickerModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch {
	case key.Matches(k, keys.Escape):
		return m, nil, true
	case key.Matches(k, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(k, keys.Down):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case key.Matches(k, keys.Confirm):
		return m, emit(m.onPick(m.cursor)), true
	}
	return m, nil, false
}

func (m *pickerModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(m.title))
	b.WriteString("\n\n")
	for i, opt := range m.options {
		if i == m.cursor {
			b.WriteString(styles.Selected.Render("> " + opt))
		} else {
			b.WriteString(styles.Text.Render("  " + opt))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("enter select  esc cancel"))
	return placeModal(theme, width, height, 44, b.String())
}

// placeModal centers content in a bordered box.
func placeModal(theme Theme, width, height, boxWidth int, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(boxWidth).
		Render(content)
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
