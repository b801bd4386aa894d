package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the editor.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding
	Confirm    key.Binding

	// Navigation
	Up         key.Binding
	Down       key.Binding
	Top        key.Binding
	Bottom     key.Binding
	ScrollDown key.Binding
	ScrollUp   key.Binding

	// Sections
	ToggleEdit    key.Binding
	MoveUp        key.Binding
	MoveDown      key.Binding
	AddSection    key.Binding
	RemoveSection key.Binding
	EditField     key.Binding

	// Images
	AddImage      key.Binding
	PrevImage     key.Binding
	NextImage     key.Binding
	RemoveImage   key.Binding
	MoveImageUp   key.Binding
	MoveImageDown key.Binding
	EditCaption   key.Binding
	DescribeImage key.Binding

	// AI
	Summarize key.Binding
	Like      key.Binding
	Dislike   key.Binding
	Speak     key.Binding

	// Persistence
	Save        key.Binding
	SaveDraft   key.Binding
	Discard     key.Binding
	Reload      key.Binding
	ShowRemoved key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Previous section"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Next section"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "First section"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Last section"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown"),
			key.WithHelp("ctrl+d", "Scroll detail down"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("ctrl+u", "pgup"),
			key.WithHelp("ctrl+u", "Scroll detail up"),
		),

		ToggleEdit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Toggle edit mode"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "Move section up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "Move section down"),
		),
		AddSection: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add section"),
		),
		RemoveSection: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Remove section"),
		),
		EditField: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Edit field"),
		),

		AddImage: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Add image"),
		),
		PrevImage: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Previous image"),
		),
		NextImage: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Next image"),
		),
		RemoveImage: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "Remove image"),
		),
		MoveImageUp: key.NewBinding(
			key.WithKeys("<"),
			key.WithHelp("<", "Move image up"),
		),
		MoveImageDown: key.NewBinding(
			key.WithKeys(">"),
			key.WithHelp(">", "Move image down"),
		),
		EditCaption: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Edit image description"),
		),
		DescribeImage: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Describe image (AI)"),
		),

		Summarize: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Generate summary (AI)"),
		),
		Like: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "Like summary"),
		),
		Dislike: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Dislike summary"),
		),
		Speak: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Export speech"),
		),

		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Save"),
		),
		SaveDraft: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Save as draft"),
		),
		Discard: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Discard changes"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload chapter"),
		),
		ShowRemoved: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Toggle removed sections"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view, one column per
// group.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.ScrollDown, k.ScrollUp},
		{k.ToggleEdit, k.EditField, k.MoveUp, k.MoveDown, k.AddSection, k.RemoveSection},
		{k.AddImage, k.PrevImage, k.NextImage, k.EditCaption, k.MoveImageUp, k.MoveImageDown, k.RemoveImage},
		{k.Summarize, k.Like, k.Dislike, k.DescribeImage, k.Speak},
		{k.Save, k.SaveDraft, k.Discard, k.Reload, k.ShowRemoved},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
