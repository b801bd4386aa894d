package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/liaGregorio/GeoDUA-sub000/internal/content"
	"github.com/liaGregorio/GeoDUA-sub000/internal/editor"
	"github.com/liaGregorio/GeoDUA-sub000/internal/errors"
	"github.com/liaGregorio/GeoDUA-sub000/internal/history"
	"github.com/liaGregorio/GeoDUA-sub000/internal/prefs"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Session   *editor.Session
	History   *history.Recorder // optional
	Chapter   content.Chapter
	Logger    *slog.Logger
	Prefs     prefs.Prefs
	PrefsPath string
	AudioDir  string
}

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusSuccess
	statusWarning
	statusError
)

type statusLine struct {
	text  string
	level statusLevel
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	session   *editor.Session
	history   *history.Recorder
	chapter   content.Chapter
	logger    *slog.Logger
	prefs     prefs.Prefs
	prefsPath string
	audioDir  string
	keys      keyMap

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	modal    Modal

	// Data state
	items       []editor.Item
	removed     []editor.Item
	showRemoved bool
	loaded      bool
	busy        string

	// Selection
	selected int
	imageIdx int

	detail viewport.Model

	status    statusLine
	statusSeq int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := opts.Prefs
	if p.Theme == "" {
		p = prefs.Defaults()
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return Model{
		ctx:       ctx,
		session:   opts.Session,
		history:   opts.History,
		chapter:   opts.Chapter,
		logger:    logger,
		prefs:     p,
		prefsPath: prefsPath,
		audioDir:  opts.AudioDir,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(p.Theme),
		busy:      "Loading",
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return loadCmd(m.ctx, m.session, m.history, m.chapter)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.detail = viewport.New(1, 1)
		}
		m.ready = true
		m.updateDetailViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case loadedMsg:
		m.busy = ""
		if msg.err != nil {
			return m.fail("Load failed", msg.err)
		}
		m.loaded = true
		m.rememberChapter()
		if m.prefs.EditMode && m.session.User().CanManageContent {
			if err := m.session.EnterEditMode(); err != nil {
				m.logger.Warn("restore edit mode failed", "error", err)
			}
		}
		m.refresh()
		return m, m.ensureImages()

	case imagesMsg:
		if msg.err != nil {
			return m.fail("Images failed to load", msg.err)
		}
		m.refresh()
		return m, nil

	case savedMsg:
		m.busy = ""
		m.refresh()
		if msg.err != nil {
			return m.fail("Save failed", msg.err)
		}
		if len(msg.report.Ops) == 0 {
			return m.notify(statusInfo, "Nothing to save")
		}
		m.rememberEditMode(false)
		images := m.ensureImages()
		notified, status := m.notify(statusSuccess, fmt.Sprintf("Saved (%d changes)", len(msg.report.Ops)))
		return notified, tea.Batch(images, status)

	case draftSavedMsg:
		m.busy = ""
		m.refresh()
		if msg.err != nil {
			return m.fail("Save as draft failed", msg.err)
		}
		return m.notify(statusSuccess, fmt.Sprintf("Draft #%d saved", msg.draft.ID))

	case summaryMsg:
		m.busy = ""
		m.refresh()
		if msg.err != nil {
			return m.fail("Summary failed", msg.err)
		}
		return m.notify(statusSuccess, "Summary generated, rate it with +/-")

	case describedMsg:
		m.busy = ""
		m.refresh()
		if msg.err != nil {
			return m.fail("Description failed", msg.err)
		}
		return m.notify(statusSuccess, "Image description generated")

	case imageAddedMsg:
		m.busy = ""
		m.refresh()
		if msg.err != nil {
			return m.fail("Add image failed", msg.err)
		}
		if it, ok := m.selectedItem(); ok {
			m.imageIdx = len(it.Images) - 1
			m.updateDetailViewport()
		}
		return m.notify(statusSuccess, "Added "+msg.name)

	case spokenMsg:
		m.busy = ""
		if msg.err != nil {
			return m.fail("Speech failed", msg.err)
		}
		return m.notify(statusSuccess, "Speech written to "+msg.path)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = statusLine{}
		}
		return m, nil

	case quitMsg:
		return m, tea.Quit

	case discardMsg:
		if err := m.session.Discard(); err != nil {
			return m.fail("Discard failed", err)
		}
		m.refresh()
		return m.notify(statusInfo, "Changes discarded")

	case removeSectionMsg:
		return m.apply(m.session.RemoveSection(msg.key), "Section removed")

	case pickFieldMsg:
		return m.openFieldEditor(msg.key, msg.field)

	case fieldEditMsg:
		next, cmd := m.apply(m.session.EditField(msg.key, msg.field, msg.value), "")
		if msg.field == editor.FieldOrder {
			next.selectKey(msg.key)
		}
		return next, cmd

	case captionEditMsg:
		return m.apply(m.session.EditImageDescription(msg.key, msg.ref, msg.value), "")

	case imagePathMsg:
		if strings.TrimSpace(msg.path) == "" {
			return m, nil
		}
		m.busy = "Reading image"
		return m, addImageCmd(m.ctx, m.session, msg.key, msg.path)
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	modal, cmd, closed := m.modal.Update(msg, m.keys)
	if closed {
		m.modal = nil
	} else {
		m.modal = modal
	}
	return m, cmd
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		return m.updateModal(msg)
	}
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.session.CanLeave() {
			return m, tea.Quit
		}
		m.modal = &confirmModal{prompt: "Unsaved changes will be lost. Quit anyway?", onYes: quitMsg{}}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		m.updateDetailViewport()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.status = statusLine{}
		return m, nil
	}

	if !m.loaded {
		return m, nil
	}

	switch {
	// Navigation
	case key.Matches(msg, m.keys.Up):
		return m.moveSelection(m.selected - 1)
	case key.Matches(msg, m.keys.Down):
		return m.moveSelection(m.selected + 1)
	case key.Matches(msg, m.keys.Top):
		return m.moveSelection(0)
	case key.Matches(msg, m.keys.Bottom):
		return m.moveSelection(len(m.visibleItems()) - 1)
	case key.Matches(msg, m.keys.ScrollDown):
		m.detail.HalfPageDown()
		return m, nil
	case key.Matches(msg, m.keys.ScrollUp):
		m.detail.HalfPageUp()
		return m, nil
	case key.Matches(msg, m.keys.ShowRemoved):
		m.showRemoved = !m.showRemoved
		m.selected = 0
		m.refresh()
		return m, m.ensureImages()
	case key.Matches(msg, m.keys.PrevImage):
		m.selectImage(m.imageIdx - 1)
		return m, nil
	case key.Matches(msg, m.keys.NextImage):
		m.selectImage(m.imageIdx + 1)
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m.reload()
	case key.Matches(msg, m.keys.Speak):
		return m.speak()
	case key.Matches(msg, m.keys.ToggleEdit):
		return m.toggleEditMode()
	}

	// Everything below edits.
	if m.busy != "" {
		return m.notify(statusWarning, m.busy+" in progress")
	}
	if !m.session.EditMode() {
		if isEditKey(msg, m.keys) {
			return m.notify(statusWarning, "Press e to enter edit mode")
		}
		return m, nil
	}

	it, hasItem := m.selectedItem()
	if m.showRemoved {
		return m.notify(statusWarning, "Removed sections are read-only, press R to go back")
	}

	switch {
	case key.Matches(msg, m.keys.AddSection):
		k, err := m.session.AddSection()
		if err != nil {
			return m.fail("Add section failed", err)
		}
		m.refresh()
		m.selectKey(k)
		return m.openFieldEditor(k, editor.FieldTitle)

	case key.Matches(msg, m.keys.Save):
		if !m.session.HasPendingChanges() {
			return m.notify(statusInfo, "Nothing to save")
		}
		m.busy = "Saving"
		return m, saveCmd(m.ctx, m.session)

	case key.Matches(msg, m.keys.SaveDraft):
		m.busy = "Saving draft"
		return m, saveDraftCmd(m.ctx, m.session)

	case key.Matches(msg, m.keys.Discard):
		if !m.session.HasPendingChanges() {
			return m.notify(statusInfo, "Nothing to discard")
		}
		m.modal = &confirmModal{prompt: "Discard all unsaved changes?", onYes: discardMsg{}}
		return m, nil
	}

	if !hasItem {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.MoveUp):
		next, cmd := m.apply(m.session.Move(it.Key, editor.Up), "")
		next.selectKey(it.Key)
		return next, cmd
	case key.Matches(msg, m.keys.MoveDown):
		next, cmd := m.apply(m.session.Move(it.Key, editor.Down), "")
		next.selectKey(it.Key)
		return next, cmd
	case key.Matches(msg, m.keys.RemoveSection):
		m.modal = &confirmModal{
			prompt: fmt.Sprintf("Remove section %q?", sectionLabel(it)),
			onYes:  removeSectionMsg{key: it.Key},
		}
		return m, nil
	case key.Matches(msg, m.keys.EditField):
		m.modal = &pickerModal{
			title:   "Edit field",
			options: fieldLabels(),
			onPick: func(i int) tea.Msg {
				return pickFieldMsg{key: it.Key, field: editor.Fields[i]}
			},
		}
		return m, nil
	case key.Matches(msg, m.keys.Summarize):
		m.busy = "Generating summary"
		return m, summarizeCmd(m.ctx, m.session, it.Key)
	case key.Matches(msg, m.keys.Like):
		return m.apply(m.session.RateSummary(it.Key, content.FeedbackLike), "Summary liked")
	case key.Matches(msg, m.keys.Dislike):
		return m.apply(m.session.RateSummary(it.Key, content.FeedbackDislike), "Summary disliked")
	case key.Matches(msg, m.keys.AddImage):
		if _, ok := it.Key.ID(); ok && !it.ImagesLoaded {
			return m.notify(statusWarning, "Images are still loading")
		}
		m.modal = newInputModal("Image file path", "", false, m.width, func(v string) tea.Msg {
			return imagePathMsg{key: it.Key, path: v}
		})
		return m, nil
	}

	img, hasImage := m.selectedImage()
	if !hasImage {
		if isImageKey(msg, m.keys) {
			return m.notify(statusWarning, "No image selected")
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.RemoveImage):
		next, cmd := m.apply(m.session.RemoveImage(it.Key, img.Ref), "Image removed")
		next.selectImage(next.imageIdx)
		return next, cmd
	case key.Matches(msg, m.keys.MoveImageUp):
		next, cmd := m.apply(m.session.MoveImage(it.Key, img.Ref, editor.Up), "")
		next.selectImageRef(img.Ref)
		return next, cmd
	case key.Matches(msg, m.keys.MoveImageDown):
		next, cmd := m.apply(m.session.MoveImage(it.Key, img.Ref, editor.Down), "")
		next.selectImageRef(img.Ref)
		return next, cmd
	case key.Matches(msg, m.keys.EditCaption):
		m.modal = newInputModal("Image description", img.Description, false, m.width, func(v string) tea.Msg {
			return captionEditMsg{key: it.Key, ref: img.Ref, value: v}
		})
		return m, nil
	case key.Matches(msg, m.keys.DescribeImage):
		m.busy = "Describing image"
		return m, describeCmd(m.ctx, m.session, it.Key, img.Ref)
	}

	return m, nil
}

func isEditKey(msg tea.KeyMsg, k keyMap) bool {
	return key.Matches(msg, k.AddSection, k.RemoveSection, k.MoveUp, k.MoveDown, k.EditField,
		k.Save, k.SaveDraft, k.Discard, k.Summarize, k.Like, k.Dislike) || isImageKey(msg, k) ||
		key.Matches(msg, k.AddImage)
}

func isImageKey(msg tea.KeyMsg, k keyMap) bool {
	return key.Matches(msg, k.RemoveImage, k.MoveImageUp, k.MoveImageDown, k.EditCaption, k.DescribeImage)
}

func (m Model) toggleEditMode() (tea.Model, tea.Cmd) {
	if m.session.EditMode() {
		if err := m.session.ExitEditMode(); err != nil {
			if errors.Is(err, editor.ErrUnsaved) {
				return m.notify(statusWarning, "Save (s) or discard (u) your changes first")
			}
			return m.fail("Leave edit mode failed", err)
		}
		m.rememberEditMode(false)
		return m.notify(statusInfo, "Edit mode off")
	}
	if err := m.session.EnterEditMode(); err != nil {
		return m.fail("Edit mode unavailable", err)
	}
	m.rememberEditMode(true)
	return m.notify(statusInfo, "Edit mode on")
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	if m.busy != "" {
		return m.notify(statusWarning, m.busy+" in progress")
	}
	if !m.session.CanLeave() {
		return m.notify(statusWarning, "Save (s) or discard (u) your changes first")
	}
	m.busy = "Loading"
	return m, loadCmd(m.ctx, m.session, nil, m.chapter)
}

func (m Model) speak() (tea.Model, tea.Cmd) {
	it, ok := m.selectedItem()
	if !ok {
		return m, nil
	}
	if m.busy != "" {
		return m.notify(statusWarning, m.busy+" in progress")
	}
	m.busy = "Synthesizing speech"
	return m, speakCmd(m.ctx, m.session, it.Key, m.audioDir)
}

func (m Model) openFieldEditor(k editor.Key, field editor.Field) (tea.Model, tea.Cmd) {
	it, ok := m.session.Item(k)
	if !ok {
		return m, nil
	}
	multiline := field == editor.FieldBody || field == editor.FieldSummary
	title := fmt.Sprintf("%s: %s", sectionLabel(it), fieldLabel(field))
	m.modal = newInputModal(title, fieldValue(it.Section, field), multiline, m.width, func(v string) tea.Msg {
		return fieldEditMsg{key: k, field: field, value: v}
	})
	return m, nil
}

// apply refreshes after a session mutation and reports its outcome.
func (m Model) apply(err error, success string) (Model, tea.Cmd) {
	if err != nil {
		return m.fail("", err)
	}
	m.refresh()
	if success == "" {
		return m, nil
	}
	return m.notify(statusSuccess, success)
}

func (m Model) notify(level statusLevel, text string) (Model, tea.Cmd) {
	m.statusSeq++
	m.status = statusLine{text: text, level: level}
	return m, clearStatusCmd(m.statusSeq)
}

func (m Model) fail(prefix string, err error) (Model, tea.Cmd) {
	m.logger.Error("ui operation failed", "operation", prefix, "error", err)
	text := describeError(err)
	if prefix != "" {
		text = prefix + ": " + text
	}
	m.statusSeq++
	m.status = statusLine{text: text, level: statusError}
	// Errors stay until the next notification or esc.
	return m, nil
}

// describeError renders an error for the status line, listing invalid
// fields and operations that landed before a save failed.
func describeError(err error) string {
	var e *errors.Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	text := err.Error()
	if fields, ok := e.Details.(map[string]string); ok && len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+" "+fields[name])
		}
		text += " (" + strings.Join(parts, "; ") + ")"
	}
	if ops := editor.CommittedOps(err); len(ops) > 0 {
		text += fmt.Sprintf(" [%d changes already saved, save again to finish]", len(ops))
	}
	return text
}

func (m *Model) rememberEditMode(on bool) {
	if m.prefs.EditMode == on {
		return
	}
	m.prefs.EditMode = on
	m.savePrefs()
}

func (m *Model) rememberChapter() {
	if m.prefs.LastChapter == m.chapter.ID {
		return
	}
	m.prefs.LastChapter = m.chapter.ID
	m.savePrefs()
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs failed", "error", err)
	}
}

// refresh re-reads items from the session and clamps the selection.
func (m *Model) refresh() {
	m.items = m.session.Items()
	m.removed = m.session.Removed()
	n := len(m.visibleItems())
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.selectImage(m.imageIdx)
}

func (m Model) visibleItems() []editor.Item {
	if m.showRemoved {
		return m.removed
	}
	return m.items
}

func (m Model) selectedItem() (editor.Item, bool) {
	items := m.visibleItems()
	if m.selected < 0 || m.selected >= len(items) {
		return editor.Item{}, false
	}
	return items[m.selected], true
}

func (m Model) selectedImage() (editor.Image, bool) {
	it, ok := m.selectedItem()
	if !ok || m.imageIdx < 0 || m.imageIdx >= len(it.Images) {
		return editor.Image{}, false
	}
	return it.Images[m.imageIdx], true
}

func (m Model) moveSelection(index int) (tea.Model, tea.Cmd) {
	n := len(m.visibleItems())
	if n == 0 {
		return m, nil
	}
	index = max(0, min(index, n-1))
	if index != m.selected {
		m.selected = index
		m.imageIdx = 0
		m.detail.GotoTop()
	}
	m.updateDetailViewport()
	return m, m.ensureImages()
}

func (m *Model) selectKey(k editor.Key) {
	for i, it := range m.visibleItems() {
		if it.Key == k {
			m.selected = i
			break
		}
	}
	m.updateDetailViewport()
}

func (m *Model) selectImage(index int) {
	it, ok := m.selectedItem()
	if !ok || len(it.Images) == 0 {
		m.imageIdx = 0
	} else {
		m.imageIdx = max(0, min(index, len(it.Images)-1))
	}
	m.updateDetailViewport()
}

func (m *Model) selectImageRef(ref editor.ImageRef) {
	it, _ := m.selectedItem()
	for i, img := range it.Images {
		if img.Ref == ref {
			m.selectImage(i)
			return
		}
	}
}

// ensureImages fetches the selected section's images on first view.
func (m Model) ensureImages() tea.Cmd {
	it, ok := m.selectedItem()
	if !ok || it.ImagesLoaded || it.State == editor.StateDraft {
		return nil
	}
	if _, persisted := it.Key.ID(); !persisted {
		return nil
	}
	return loadImagesCmd(m.ctx, m.session, it.Key)
}

func sectionLabel(it editor.Item) string {
	if t := strings.TrimSpace(it.Section.Title); t != "" {
		return t
	}
	return "Section " + strconv.Itoa(it.Section.Order)
}

var fieldNames = map[editor.Field]string{
	editor.FieldTitle:              "Title",
	editor.FieldSummary:            "Summary",
	editor.FieldBody:               "Body",
	editor.FieldExternalModelLink:  "3D model link",
	editor.FieldExternalModelOrder: "Model placement (1 before body, 2 after)",
	editor.FieldOrder:              "Position",
}

func fieldLabel(f editor.Field) string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return string(f)
}

func fieldLabels() []string {
	labels := make([]string, len(editor.Fields))
	for i, f := range editor.Fields {
		labels[i] = fieldLabel(f)
	}
	return labels
}

func fieldValue(s content.Section, f editor.Field) string {
	switch f {
	case editor.FieldTitle:
		return s.Title
	case editor.FieldSummary:
		return s.Summary
	case editor.FieldBody:
		return s.Body
	case editor.FieldExternalModelLink:
		return s.ExternalModelLink
	case editor.FieldExternalModelOrder:
		return strconv.Itoa(int(s.ExternalModelOrder))
	case editor.FieldOrder:
		return strconv.Itoa(s.Order)
	default:
		return ""
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
