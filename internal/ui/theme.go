package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/liaGregorio/GeoDUA-sub000/internal/editor"
)

// Theme defines colors for the UI.
type Theme struct {
	Name string

	Background string // behind the status line
	Surface    string // header and key bar
	SurfaceAlt string // section list and unfocused boxes
	FocusBg    string // detail pane

	SelectionBg   string
	SelectionText string
	Border        string
	BorderFocus   string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// StateColors color the section state badges.
	StateColors map[editor.State]string
}

// palette is the handful of colors a theme is derived from.
type palette struct {
	ground  [4]string // darkest to lightest background
	ink     [3]string // text, muted, faint
	line    string
	accent  string
	ok      string
	warn    string
	bad     string
	info    string
	selectB string
}

func newTheme(name string, p palette) Theme {
	return Theme{
		Name:          name,
		Background:    p.ground[0],
		Surface:       p.ground[1],
		SurfaceAlt:    p.ground[2],
		FocusBg:       p.ground[3],
		SelectionBg:   p.selectB,
		SelectionText: p.ink[0],
		Border:        p.line,
		BorderFocus:   p.accent,
		Text:          p.ink[0],
		Muted:         p.ink[1],
		Faint:         p.ink[2],
		Accent:        p.accent,
		Success:       p.ok,
		Warning:       p.warn,
		Danger:        p.bad,
		Info:          p.info,
		StateColors: map[editor.State]string{
			editor.StateClean:      p.ink[2],
			editor.StateDirty:      p.warn,
			editor.StateDraft:      p.ok,
			editor.StateTombstoned: p.bad,
		},
	}
}

// Topo uses the earth tones of a relief map; Atlas the blues of its seas.
var themeOrder = []Theme{
	newTheme("Topo", palette{
		ground:  [4]string{"#1A1712", "#26211A", "#2F2920", "#3A3328"},
		ink:     [3]string{"#EFE6D2", "#B3A58A", "#7A6E5A"},
		line:    "#4D4436",
		accent:  "#D9A441",
		ok:      "#8DBF6A",
		warn:    "#E08A3C",
		bad:     "#D9594C",
		info:    "#7FB3C8",
		selectB: "#5A4A2E",
	}),
	newTheme("Atlas", palette{
		ground:  [4]string{"#08131F", "#0E1E30", "#14283E", "#1B334D"},
		ink:     [3]string{"#E4EEF7", "#93AEC6", "#5F7A93"},
		line:    "#2A4560",
		accent:  "#4FB3E8",
		ok:      "#3DBE8B",
		warn:    "#F2B544",
		bad:     "#E5534B",
		info:    "#6CD4D9",
		selectB: "#1F5F8B",
	}),
}

// GetTheme returns a theme by name, or the first theme when name is unknown.
func GetTheme(name string) Theme {
	for _, t := range themeOrder {
		if t.Name == name {
			return t
		}
	}
	return themeOrder[0]
}

// NextTheme returns the theme after current in the cycle.
func NextTheme(current string) string {
	for i, t := range themeOrder {
		if t.Name == current {
			return themeOrder[(i+1)%len(themeOrder)].Name
		}
	}
	return themeOrder[0].Name
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	names := make([]string, len(themeOrder))
	for i, t := range themeOrder {
		names[i] = t.Name
	}
	return names
}

// Styles contains lipgloss styles built from a Theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style

	theme Theme
}

func ink(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }

// Styles builds the text styles for t.
func (t Theme) Styles() Styles {
	return Styles{
		Text:        ink(t.Text),
		MutedText:   ink(t.Muted),
		FaintText:   ink(t.Faint),
		AccentText:  ink(t.Accent),
		SuccessText: ink(t.Success).Bold(true),
		WarningText: ink(t.Warning),
		DangerText:  ink(t.Danger).Bold(true),
		InfoText:    ink(t.Info),
		Header:      ink(t.Text).Background(lipgloss.Color(t.Surface)).Padding(0, 1),
		Logo:        ink(t.Accent).Bold(true),
		Selected:    ink(t.SelectionText).Background(lipgloss.Color(t.SelectionBg)),
		theme:       t,
	}
}

// StateStyle returns the badge style for a section state.
func (s Styles) StateStyle(state editor.State) lipgloss.Style {
	color, ok := s.theme.StateColors[state]
	if !ok {
		color = s.theme.Faint
	}
	return ink(s.theme.Background).Background(lipgloss.Color(color)).Padding(0, 1)
}

// WithBackground returns a copy whose styles paint bgColor behind their text.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	for _, st := range []*lipgloss.Style{
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText,
		&out.SuccessText, &out.WarningText, &out.DangerText, &out.InfoText,
		&out.Header, &out.Logo,
	} {
		*st = st.Background(bg)
	}
	return out
}
