package editor

import (
	"context"
	"log/slog"
	"maps"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/liaGregorio/GeoDUA-sub000/internal/ai"
	"github.com/liaGregorio/GeoDUA-sub000/internal/content"
	"github.com/liaGregorio/GeoDUA-sub000/internal/errors"
	"github.com/liaGregorio/GeoDUA-sub000/internal/media"
	"github.com/liaGregorio/GeoDUA-sub000/internal/validation"
)

// DefaultSaveTimeout bounds a whole save when Options leaves it zero.
const DefaultSaveTimeout = 60 * time.Second

// Errors returned by Session mutations.
var (
	ErrBusy       = errors.Conflict("a save is in progress")
	ErrNotEditing = errors.Forbidden("edit mode is off")
	ErrUnsaved    = errors.Conflict("there are unsaved changes")
	ErrNotLoaded  = errors.Validation("no chapter loaded")
)

// Options configures a Session.
type Options struct {
	Persistence Persistence
	Generator   ai.Generator
	Journal     Journal
	Validator   *validation.Validator
	Logger      *slog.Logger
	User        content.User
	SaveTimeout time.Duration
	Images      media.CompressOptions
}

// Session is one editing session over one chapter. It is safe for use from
// multiple goroutines; mutations are rejected with ErrBusy while a save runs.
type Session struct {
	mu sync.Mutex

	p        Persistence
	gen      ai.Generator
	journal  Journal
	validate *validation.Validator
	logger   *slog.Logger
	user     content.User
	timeout  time.Duration
	images   media.CompressOptions

	store    *Store
	snapshot Snapshot
	overlay  *Overlay
	editMode bool
	saving   bool
	resolved map[Key]resolved
}

// NewSession creates a session. Call Load before anything else.
func NewSession(opts Options) *Session {
	s := &Session{
		p:        opts.Persistence,
		gen:      opts.Generator,
		journal:  opts.Journal,
		validate: opts.Validator,
		logger:   opts.Logger,
		user:     opts.User,
		timeout:  opts.SaveTimeout,
		images:   opts.Images,
		resolved: map[Key]resolved{},
	}
	if s.gen == nil {
		s.gen = ai.Disabled()
	}
	if s.validate == nil {
		s.validate = validation.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.timeout <= 0 {
		s.timeout = DefaultSaveTimeout
	}
	s.store = NewStore(opts.Persistence)
	s.snapshot = s.store.Snapshot()
	s.overlay = NewOverlay(&s.snapshot)
	return s
}

// User returns the account the session edits as.
func (s *Session) User() content.User { return s.user }

// ChapterID returns the loaded chapter, or zero.
func (s *Session) ChapterID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ChapterID()
}

// Load fetches a chapter and drops any pending edits. On failure the
// previous state is kept and a FETCH error is returned.
func (s *Session) Load(ctx context.Context, chapterID int64) error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return ErrBusy
	}
	s.mu.Unlock()

	sections, err := s.store.fetchSections(ctx, chapterID)
	if err != nil {
		s.logger.Error("failed to load chapter", "chapter_id", chapterID, "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return ErrBusy
	}
	s.store.Restore(Snapshot{ChapterID: chapterID, Sections: sections, Images: map[int64][]content.Image{}})
	s.resetLocked()
	s.logger.Info("chapter loaded", "chapter_id", chapterID, "sections", len(sections))
	return nil
}

// LoadImages fetches the images of a persisted section into both the store
// and the diff baseline.
func (s *Session) LoadImages(ctx context.Context, key Key) error {
	sid, ok := key.ID()
	if !ok {
		return nil
	}
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.snapshot.imagesLoaded(sid) {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	imgs, err := s.store.fetchImages(ctx, sid)
	if err != nil {
		s.logger.Error("failed to load images", "section_id", sid, "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return ErrBusy
	}
	s.installImagesLocked(sid, imgs)
	return nil
}

func (s *Session) installImagesLocked(sectionID int64, imgs []content.Image) {
	if s.snapshot.imagesLoaded(sectionID) {
		return
	}
	s.store.setImages(sectionID, imgs)
	s.snapshot.Images[sectionID] = cloneImages(imgs)
}

func (s *Session) resetLocked() {
	s.snapshot = s.store.Snapshot()
	s.overlay = NewOverlay(&s.snapshot)
	s.resolved = map[Key]resolved{}
}

// Items returns the visible sections in current order with edits applied.
func (s *Session) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	active, _ := s.overlay.compose(&s.store.state)
	return active
}

// Removed returns the sections marked for deletion on save.
func (s *Session) Removed() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, removed := s.overlay.compose(&s.store.state)
	return removed
}

// Item returns one visible section.
func (s *Session) Item(key Key) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemLocked(key)
}

func (s *Session) itemLocked(key Key) (Item, bool) {
	active, _ := s.overlay.compose(&s.store.state)
	for _, it := range active {
		if it.Key == key {
			return it, true
		}
	}
	return Item{}, false
}

// HasPendingChanges reports whether anything would be saved or discarded.
// Items created by a failed save count until a save or discard settles them.
func (s *Session) HasPendingChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingLocked()
}

func (s *Session) pendingLocked() bool {
	return s.overlay.HasPendingChanges() || len(s.resolved) > 0
}

// CanLeave reports whether the host may navigate away without losing edits.
func (s *Session) CanLeave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.saving && !s.pendingLocked()
}

// Saving reports whether a save is in flight.
func (s *Session) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// EditMode reports whether edit mode is on.
func (s *Session) EditMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editMode
}

// EnterEditMode turns on editing for users that can manage content.
func (s *Session) EnterEditMode() error {
	if !s.user.CanManageContent {
		return errors.Forbidden("your account cannot edit content")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.Loaded() {
		return ErrNotLoaded
	}
	s.editMode = true
	return nil
}

// ExitEditMode leaves edit mode. Pending edits must be saved or discarded
// first.
func (s *Session) ExitEditMode() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return ErrBusy
	}
	if s.pendingLocked() {
		return ErrUnsaved
	}
	s.editMode = false
	return nil
}

// mutateLocked guards every editing entry point. Callers hold s.mu.
func (s *Session) mutateLocked() error {
	switch {
	case s.saving:
		return ErrBusy
	case !s.editMode:
		return ErrNotEditing
	case !s.store.Loaded():
		return ErrNotLoaded
	}
	return nil
}

// EditField changes one field of a section. Setting the order moves the
// section to that position; an order that is not a positive number is kept
// as typed and blocks the next save.
func (s *Session) EditField(key Key, field Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutateLocked(); err != nil {
		return err
	}
	if field == FieldOrder {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n >= 1 {
			return s.moveToLocked(key, n-1)
		}
	}
	return s.overlay.RecordFieldChange(key, field, value)
}

// Move shifts a section one position, wrapping at both ends.
func (s *Session) Move(key Key, dir Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutateLocked(); err != nil {
		return err
	}
	keys := s.activeKeysLocked()
	from := indexOf(keys, key)
	if from < 0 {
		return errors.NotFoundf("section %s not found", key)
	}
	return s.applyOrderLocked(Renumber(keys, from, ArrowTarget(from, len(keys), dir)))
}

// MoveTo drops a section at index, clamped to the list.
func (s *Session) MoveTo(key Key, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutateLocked(); err != nil {
		return err
	}
	return s.moveToLocked(key, index)
}

func (s *Session) moveToLocked(key Key, index int) error {
	keys := s.activeKeysLocked()
	from := indexOf(keys, key)
	if from < 0 {
		return errors.NotFoundf("section %s not found", key)
	}
	return s.applyOrderLocked(Renumber(keys, from, index))
}

func (s *Session) activeKeysLocked() []Key {
	active, _ := s.overlay.compose(&s.store.state)
	keys := make([]Key, len(active))
	for i, it := range active {
		keys[i] = it.Key
	}
	return keys
}

func (s *Session) applyOrderLocked(keys []Key) error {
	for i, key := range keys {
		if err := s.overlay.RecordFieldChange(key, FieldOrder, strconv.Itoa(i+1)); err != nil {
			return err
		}
	}
	return nil
}

// AddSection appends an empty draft section and returns its key.
func (s *Session) AddSection() (Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutateLocked(); err != nil {
		return "", err
	}
	key := s.overlay.CreateDraftSection(len(s.activeKeysLocked()) + 1)
	return key, nil
}

// RemoveSection drops a draft outright or marks a persisted section for
// deletion, then renumbers the remaining sections.
func (s *Session) RemoveSection(key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutateLocked(); err != nil {
		return err
	}
	if !s.overlay.RemoveDraftSection(key) {
		if err := s.overlay.TombstoneSection(key); err != nil {
			return err
		}
	}
	return s.applyOrderLocked(s.activeKeysLocked())
}

// AddImage adds an upload to a section as a temporary image at the end.
// Uploads that cannot be decoded are rejected before anything is recorded.
func (s *Session) AddImage(ctx context.Context, section Key, up media.Upload) (Key, error) {
	if err := media.CheckDecodable(up); err != nil {
		return "", err
	}
	if err := s.LoadImages(ctx, section); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutateLocked(); err != nil {
		return "", err
	}
	it, ok := s.itemLocked(section)
	if !ok {
		return "", errors.NotFoundf("section %s not found", section)
	}
	return s.overlay.AddTempImage(section, up.Name, up.Content, up.ContentType, len(it.Images)+1), nil
}

// RemoveImage marks an image for removal and renumbers the rest.
func (s *Session) RemoveImage(section Key, ref ImageRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutateLocked(); err != nil {
		return err
	}
	if err := s.overlay.MarkImageForRemoval(section, ref); err != nil {
		return err
	}
	it, _ := s.itemLocked(section)
	s.applyImageOrderLocked(imageRefs(it.Images))
	return nil
}

// EditImageDescription changes an image's description.
func (s *Session) EditImageDescription(section Key, ref ImageRef, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutateLocked(); err != nil {
		return err
	}
	return s.overlay.SetImageDescription(section, ref, description)
}

// MoveImage shifts an image one position within its section, wrapping at
// both ends.
func (s *Session) MoveImage(section Key, ref ImageRef, dir Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutateLocked(); err != nil {
		return err
	}
	it, ok := s.itemLocked(section)
	if !ok {
		return errors.NotFoundf("section %s not found", section)
	}
	refs := imageRefs(it.Images)
	from := -1
	for i, r := range refs {
		if r == ref {
			from = i
		}
	}
	if from < 0 {
		return errors.NotFoundf("%s not found in section %s", ref, section)
	}
	s.applyImageOrderLocked(Renumber(refs, from, ArrowTarget(from, len(refs), dir)))
	return nil
}

func (s *Session) applyImageOrderLocked(refs []ImageRef) {
	for i, ref := range refs {
		s.overlay.setImageOrder(ref, i+1)
	}
}

// Discard drops every pending edit and restores the snapshot. No remote
// calls are made.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return ErrBusy
	}
	if len(s.resolved) > 0 {
		s.logger.Warn("discarding edits after a partial save; reload to see the server state",
			"created", len(s.resolved))
	}
	s.overlay.Clear()
	s.store.Restore(s.snapshot)
	s.resolved = map[Key]resolved{}
	return nil
}

// beginSave validates the overlay and marks the session busy.
func (s *Session) beginSave() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return ErrBusy
	}
	if !s.store.Loaded() {
		return ErrNotLoaded
	}
	if err := s.overlay.validate(s.validate); err != nil {
		return err
	}
	s.saving = true
	return nil
}

func (s *Session) endSave() {
	s.mu.Lock()
	s.saving = false
	s.mu.Unlock()
}

// Save issues the pending edits against the server in order. On failure
// the overlay is kept and a PERSISTENCE error lists the operations already
// committed; saving again converges. On success edit mode ends and the
// chapter is reloaded.
func (s *Session) Save(ctx context.Context) (SaveReport, error) {
	if !s.HasPendingChanges() {
		return SaveReport{}, nil
	}
	if err := s.beginSave(); err != nil {
		return SaveReport{}, err
	}
	defer s.endSave()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	chapterID := s.store.ChapterID()
	saveID := s.beginJournal(ctx, chapterID, SaveKindChapter)
	r := &reconciler{
		p:        s.p,
		base:     &s.snapshot,
		o:        s.overlay,
		resolved: maps.Clone(s.resolved),
		images:   s.images,
		journal:  s.journal,
		saveID:   saveID,
		logger:   s.logger,
	}
	err := r.run(ctx)
	s.finishJournal(ctx, saveID, err)
	if err != nil {
		s.mu.Lock()
		s.resolved = r.resolved
		s.mu.Unlock()
		s.logger.Error("save failed", "chapter_id", chapterID, "committed", len(r.committed), "error", err)
		return SaveReport{Ops: r.committed}, err
	}
	s.logger.Info("chapter saved", "chapter_id", chapterID, "operations", len(r.committed))

	reloadIDs := s.reloadImageIDs(r)
	s.mu.Lock()
	s.overlay.Clear()
	s.resolved = map[Key]resolved{}
	s.editMode = false
	s.mu.Unlock()

	if err := s.reload(context.WithoutCancel(ctx), chapterID, reloadIDs); err != nil {
		return SaveReport{Ops: r.committed}, err
	}
	return SaveReport{Ops: r.committed}, nil
}

// reloadImageIDs lists the sections whose images should be fetched again
// after a save: the ones loaded before plus sections created with images.
func (s *Session) reloadImageIDs(r *reconciler) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for id := range s.snapshot.Images {
		ids = append(ids, id)
	}
	for _, res := range r.resolved {
		if res.section == "" {
			continue
		}
		if sid, ok := res.section.ID(); ok {
			ids = append(ids, sid)
		} else if parent, ok := r.resolved[res.section]; ok {
			ids = append(ids, parent.id)
		}
	}
	return ids
}

func (s *Session) reload(ctx context.Context, chapterID int64, imageSections []int64) error {
	sections, err := s.store.fetchSections(ctx, chapterID)
	if err != nil {
		s.mu.Lock()
		s.store.Reset()
		s.resetLocked()
		s.mu.Unlock()
		s.logger.Error("failed to reload chapter after save", "chapter_id", chapterID, "error", err)
		return errors.Wrapf(err, errors.CodeFetch, "reload chapter %d after save", chapterID)
	}

	images := map[int64][]content.Image{}
	present := map[int64]bool{}
	for _, sec := range sections {
		present[sec.ID] = true
	}
	for _, sid := range imageSections {
		if !present[sid] {
			continue
		}
		if _, done := images[sid]; done {
			continue
		}
		imgs, err := s.store.fetchImages(ctx, sid)
		if err != nil {
			s.logger.Warn("failed to reload images after save", "section_id", sid, "error", err)
			continue
		}
		images[sid] = imgs
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Restore(Snapshot{ChapterID: chapterID, Sections: sections, Images: images})
	s.resetLocked()
	return nil
}

// SaveAsDraft sends the chapter with pending edits applied to a new draft
// chapter. The open chapter is not modified and the overlay is cleared on
// success.
func (s *Session) SaveAsDraft(ctx context.Context) (content.DraftChapter, error) {
	if err := s.beginSave(); err != nil {
		return content.DraftChapter{}, err
	}
	defer s.endSave()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Drafts carry every image, so fetch the ones not loaded yet.
	s.mu.Lock()
	var missing []int64
	for _, sec := range s.snapshot.Sections {
		if !s.snapshot.imagesLoaded(sec.ID) {
			missing = append(missing, sec.ID)
		}
	}
	s.mu.Unlock()
	for _, sid := range missing {
		imgs, err := s.store.fetchImages(ctx, sid)
		if err != nil {
			return content.DraftChapter{}, err
		}
		s.mu.Lock()
		s.installImagesLocked(sid, imgs)
		s.mu.Unlock()
	}

	s.mu.Lock()
	active, _ := s.overlay.compose(&s.store.state)
	chapterID := s.store.ChapterID()
	s.mu.Unlock()

	sections, err := composeDraft(active, s.images)
	if err != nil {
		return content.DraftChapter{}, errors.Wrap(err, errors.CodeValidation, "prepare draft")
	}

	saveID := s.beginJournal(ctx, chapterID, SaveKindDraft)
	draft, err := s.p.SaveAsDraft(ctx, chapterID, sections, s.user.ID)
	if err != nil {
		err = errors.Wrapf(err, errors.CodePersistence, "save chapter %d as draft", chapterID).WithDetails([]Op{})
		s.finishJournal(ctx, saveID, err)
		s.logger.Error("save as draft failed", "chapter_id", chapterID, "error", err)
		return content.DraftChapter{}, err
	}
	s.finishJournal(ctx, saveID, nil)
	s.logger.Info("chapter saved as draft", "chapter_id", chapterID, "draft_id", draft.ID)

	s.mu.Lock()
	if len(s.resolved) > 0 {
		s.logger.Warn("saved as draft after a partial save; reload to see the server state",
			"created", len(s.resolved))
	}
	s.overlay.Clear()
	s.store.Restore(s.snapshot)
	s.resolved = map[Key]resolved{}
	s.mu.Unlock()
	return draft, nil
}

// Publish copies a draft chapter into destinationChapterID. Publishing into
// the open chapter reloads it and requires no pending edits.
func (s *Session) Publish(ctx context.Context, draftID, destinationChapterID int64) error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return ErrBusy
	}
	open := s.store.Loaded() && s.store.ChapterID() == destinationChapterID
	if open && s.pendingLocked() {
		s.mu.Unlock()
		return ErrUnsaved
	}
	s.mu.Unlock()

	if !s.user.CanManageContent {
		return errors.Forbidden("your account cannot publish drafts")
	}
	if err := s.p.PublishDraft(ctx, draftID, destinationChapterID); err != nil {
		s.logger.Error("publish failed", "draft_id", draftID, "chapter_id", destinationChapterID, "error", err)
		return errors.Wrapf(err, errors.CodePersistence, "publish draft %d", draftID)
	}
	s.logger.Info("draft published", "draft_id", draftID, "chapter_id", destinationChapterID)
	if open {
		return s.Load(ctx, destinationChapterID)
	}
	return nil
}

// GenerateSummary asks the AI provider for a summary of a section's body and
// records it as a summary edit stamped with the provider and prompt.
func (s *Session) GenerateSummary(ctx context.Context, key Key) (string, error) {
	s.mu.Lock()
	if err := s.mutateLocked(); err != nil {
		s.mu.Unlock()
		return "", err
	}
	it, ok := s.itemLocked(key)
	s.mu.Unlock()
	if !ok {
		return "", errors.NotFoundf("section %s not found", key)
	}
	text := strings.TrimSpace(content.BodyMarkdown(it.Section.Body))
	if text == "" {
		return "", errors.Validation("section has no body to summarize")
	}

	res, err := s.gen.Summarize(ctx, text)
	if err != nil {
		s.logger.Error("summary generation failed", "section", key, "error", err)
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutateLocked(); err != nil {
		return "", err
	}
	s.overlay.MarkPendingProvenance(key, res.Provider, res.Prompt)
	if err := s.overlay.RecordFieldChange(key, FieldSummary, res.Text); err != nil {
		s.overlay.takePending(key)
		return "", err
	}
	return res.Text, nil
}

// RateSummary records like/dislike feedback on an AI-generated summary.
func (s *Session) RateSummary(key Key, feedback content.Feedback) error {
	switch feedback {
	case content.FeedbackNone, content.FeedbackLike, content.FeedbackDislike:
	default:
		return errors.Validationf("unknown feedback %q", feedback)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutateLocked(); err != nil {
		return err
	}
	prov := s.overlay.Provenance(key)
	if prov == nil || prov.Prompt == "" {
		return errors.Validation("summary was not generated by AI")
	}
	prov.Feedback = feedback
	return s.overlay.SetProvenance(key, prov)
}

// DescribeImage asks the AI provider for an image description and records
// it as a description edit.
func (s *Session) DescribeImage(ctx context.Context, section Key, ref ImageRef) (string, error) {
	s.mu.Lock()
	if err := s.mutateLocked(); err != nil {
		s.mu.Unlock()
		return "", err
	}
	it, ok := s.itemLocked(section)
	s.mu.Unlock()
	if !ok {
		return "", errors.NotFoundf("section %s not found", section)
	}
	var img *Image
	for i := range it.Images {
		if it.Images[i].Ref == ref {
			img = &it.Images[i]
		}
	}
	if img == nil {
		return "", errors.NotFoundf("%s not found in section %s", ref, section)
	}
	if len(img.Content) == 0 {
		return "", errors.Validationf("%s has no content", ref)
	}

	res, err := s.gen.DescribeImage(ctx, img.Content, img.ContentType)
	if err != nil {
		s.logger.Error("image description failed", "section", section, "image", ref.String(), "error", err)
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutateLocked(); err != nil {
		return "", err
	}
	if err := s.overlay.SetImageDescription(section, ref, res.Text); err != nil {
		return "", err
	}
	return res.Text, nil
}

// Speak synthesizes a section's summary, or its body when there is no
// summary. It does not require edit mode.
func (s *Session) Speak(ctx context.Context, key Key) (media.Audio, error) {
	it, ok := s.Item(key)
	if !ok {
		return media.Audio{}, errors.NotFoundf("section %s not found", key)
	}
	text := strings.TrimSpace(it.Section.Summary)
	if text == "" {
		text = strings.TrimSpace(content.BodyMarkdown(it.Section.Body))
	}
	if text == "" {
		return media.Audio{}, errors.Validation("section has no text to speak")
	}
	audio, err := s.gen.Speak(ctx, text)
	if err != nil {
		s.logger.Error("speech synthesis failed", "section", key, "error", err)
		return media.Audio{}, err
	}
	return audio, nil
}

func (s *Session) beginJournal(ctx context.Context, chapterID int64, kind string) int64 {
	if s.journal == nil {
		return 0
	}
	saveID, err := s.journal.BeginSave(context.WithoutCancel(ctx), chapterID, kind)
	if err != nil {
		s.logger.Warn("failed to journal save", "chapter_id", chapterID, "error", err)
	}
	return saveID
}

func (s *Session) finishJournal(ctx context.Context, saveID int64, saveErr error) {
	if s.journal == nil || saveID == 0 {
		return
	}
	if err := s.journal.FinishSave(context.WithoutCancel(ctx), saveID, saveErr); err != nil {
		s.logger.Warn("failed to journal save result", "save_id", saveID, "error", err)
	}
}

func indexOf(keys []Key, key Key) int {
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	return -1
}

func imageRefs(imgs []Image) []ImageRef {
	refs := make([]ImageRef, len(imgs))
	for i, img := range imgs {
		refs[i] = img.Ref
	}
	return refs
}
