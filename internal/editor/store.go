package editor

import (
	"context"
	"slices"
	"sort"

	"github.com/liaGregorio/GeoDUA-sub000/internal/content"
	"github.com/liaGregorio/GeoDUA-sub000/internal/errors"
)

// Persistence is the remote collaborator the editor loads from and saves to.
// *content.Client implements it.
type Persistence interface {
	ListSections(ctx context.Context, chapterID int64) ([]content.Section, error)
	CreateSection(ctx context.Context, in content.SectionInput) (content.Section, error)
	UpdateSection(ctx context.Context, id int64, patch content.SectionPatch) (content.Section, error)
	DeleteSection(ctx context.Context, id int64) error
	ListImages(ctx context.Context, sectionID int64) ([]content.Image, error)
	CreateImage(ctx context.Context, in content.ImageInput) (content.Image, error)
	UpdateImage(ctx context.Context, id int64, patch content.ImagePatch) (content.Image, error)
	DeleteImage(ctx context.Context, id int64) error
	SaveAsDraft(ctx context.Context, chapterID int64, sections []content.DraftSection, userID int64) (content.DraftChapter, error)
	PublishDraft(ctx context.Context, draftID, destinationChapterID int64) error
}

// Snapshot is a deep copy of one chapter's persisted sections and the images
// fetched so far. It is the diff baseline for the overlay.
type Snapshot struct {
	ChapterID int64
	Sections  []content.Section
	Images    map[int64][]content.Image
}

func (s *Snapshot) section(id int64) (content.Section, bool) {
	for _, sec := range s.Sections {
		if sec.ID == id {
			return sec, true
		}
	}
	return content.Section{}, false
}

func (s *Snapshot) image(id int64) (content.Image, bool) {
	for _, imgs := range s.Images {
		for _, img := range imgs {
			if img.ID == id {
				return img, true
			}
		}
	}
	return content.Image{}, false
}

func (s *Snapshot) imagesLoaded(sectionID int64) bool {
	_, ok := s.Images[sectionID]
	return ok
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		ChapterID: s.ChapterID,
		Sections:  make([]content.Section, len(s.Sections)),
		Images:    make(map[int64][]content.Image, len(s.Images)),
	}
	for i, sec := range s.Sections {
		out.Sections[i] = cloneSection(sec)
	}
	for id, imgs := range s.Images {
		out.Images[id] = cloneImages(imgs)
	}
	return out
}

func cloneSection(s content.Section) content.Section {
	if s.Provenance != nil {
		p := *s.Provenance
		s.Provenance = &p
	}
	return s
}

func cloneImages(imgs []content.Image) []content.Image {
	out := make([]content.Image, len(imgs))
	for i, img := range imgs {
		img.Content = slices.Clone(img.Content)
		out[i] = img
	}
	return out
}

// Store is the persisted-order view of one chapter. It changes only on load,
// lazy image fetches and restore; edits live in the Overlay.
type Store struct {
	p      Persistence
	loaded bool
	state  Snapshot
}

// NewStore creates an empty, unloaded store.
func NewStore(p Persistence) *Store {
	return &Store{p: p, state: Snapshot{Images: map[int64][]content.Image{}}}
}

// Load fetches a chapter's sections sorted by order, ties by id. On failure
// the store keeps its previous contents and a FETCH error is returned.
func (s *Store) Load(ctx context.Context, chapterID int64) ([]content.Section, error) {
	sections, err := s.fetchSections(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	s.state = Snapshot{
		ChapterID: chapterID,
		Sections:  sections,
		Images:    map[int64][]content.Image{},
	}
	s.loaded = true
	return s.Sections(), nil
}

func (s *Store) fetchSections(ctx context.Context, chapterID int64) ([]content.Section, error) {
	sections, err := s.p.ListSections(ctx, chapterID)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeFetch, "load sections for chapter %d", chapterID)
	}
	sortSections(sections)
	return sections, nil
}

func (s *Store) fetchImages(ctx context.Context, sectionID int64) ([]content.Image, error) {
	imgs, err := s.p.ListImages(ctx, sectionID)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeFetch, "load images for section %d", sectionID)
	}
	sortImages(imgs)
	return imgs, nil
}

func (s *Store) setImages(sectionID int64, imgs []content.Image) {
	if s.state.Images == nil {
		s.state.Images = map[int64][]content.Image{}
	}
	s.state.Images[sectionID] = imgs
}

// Loaded reports whether a chapter has been loaded.
func (s *Store) Loaded() bool { return s.loaded }

// ChapterID returns the loaded chapter.
func (s *Store) ChapterID() int64 { return s.state.ChapterID }

// Sections returns a copy of the persisted sections.
func (s *Store) Sections() []content.Section {
	out := make([]content.Section, len(s.state.Sections))
	for i, sec := range s.state.Sections {
		out[i] = cloneSection(sec)
	}
	return out
}

// Images returns a copy of a section's images and whether they were loaded.
func (s *Store) Images(sectionID int64) ([]content.Image, bool) {
	imgs, ok := s.state.Images[sectionID]
	if !ok {
		return nil, false
	}
	return cloneImages(imgs), true
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	return s.state.clone()
}

// Restore replaces the store's state wholesale.
func (s *Store) Restore(snap Snapshot) {
	s.state = snap.clone()
	s.loaded = true
}

// Reset empties the store. The host must load again before editing.
func (s *Store) Reset() {
	s.state = Snapshot{Images: map[int64][]content.Image{}}
	s.loaded = false
}

func sortSections(sections []content.Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		if sections[i].Order != sections[j].Order {
			return sections[i].Order < sections[j].Order
		}
		return sections[i].ID < sections[j].ID
	})
}

func sortImages(imgs []content.Image) {
	sort.SliceStable(imgs, func(i, j int) bool {
		if imgs[i].Order != imgs[j].Order {
			return imgs[i].Order < imgs[j].Order
		}
		return imgs[i].ID < imgs[j].ID
	})
}
