package editor

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liaGregorio/GeoDUA-sub000/internal/ai"
	"github.com/liaGregorio/GeoDUA-sub000/internal/content"
	"github.com/liaGregorio/GeoDUA-sub000/internal/errors"
	"github.com/liaGregorio/GeoDUA-sub000/internal/logger"
	"github.com/liaGregorio/GeoDUA-sub000/internal/media"
)

// call is one recorded Persistence call.
type call struct {
	Method       string
	ID           int64
	SectionIn    content.SectionInput
	SectionPatch content.SectionPatch
	ImageIn      content.ImageInput
	ImagePatch   content.ImagePatch
	Draft        []content.DraftSection
}

// fakeAPI is an in-memory Persistence that records every call.
type fakeAPI struct {
	mu       sync.Mutex
	sections map[int64]content.Section
	images   map[int64]content.Image
	nextID   int64
	calls    []call

	// failOn makes the next call to a method fail once.
	failOn map[string]error
	// gate, when set, blocks UpdateSection until closed or ctx ends.
	gate    chan struct{}
	entered chan struct{}
}

func newFakeAPI(sections ...content.Section) *fakeAPI {
	f := &fakeAPI{
		sections: map[int64]content.Section{},
		images:   map[int64]content.Image{},
		nextID:   100,
		failOn:   map[string]error{},
	}
	for _, s := range sections {
		if s.ChapterID == 0 {
			s.ChapterID = 7
		}
		if s.ExternalModelOrder == 0 {
			s.ExternalModelOrder = content.PlacementAfterBody
		}
		f.sections[s.ID] = s
	}
	return f
}

func (f *fakeAPI) addImage(img content.Image) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images[img.ID] = img
}

func (f *fakeAPI) failNext(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOn[method] = err
}

func (f *fakeAPI) record(c call) error {
	f.calls = append(f.calls, c)
	if err, ok := f.failOn[c.Method]; ok {
		delete(f.failOn, c.Method)
		return err
	}
	return nil
}

// writes returns the recorded calls that change server state.
func (f *fakeAPI) writes() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		switch c.Method {
		case "ListSections", "ListImages":
			continue
		}
		out = append(out, c)
	}
	return out
}

func (f *fakeAPI) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (f *fakeAPI) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *fakeAPI) ListSections(_ context.Context, chapterID int64) ([]content.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(call{Method: "ListSections", ID: chapterID}); err != nil {
		return nil, err
	}
	var out []content.Section
	for _, s := range f.sections {
		if s.ChapterID == chapterID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeAPI) CreateSection(_ context.Context, in content.SectionInput) (content.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(call{Method: "CreateSection", SectionIn: in}); err != nil {
		return content.Section{}, err
	}
	f.nextID++
	s := content.Section{
		ID:                 f.nextID,
		ChapterID:          in.ChapterID,
		Order:              in.Order,
		Title:              in.Title,
		Summary:            in.Summary,
		Body:               in.Body,
		ExternalModelLink:  in.ExternalModelLink,
		ExternalModelOrder: in.ExternalModelOrder,
		Provenance:         in.Provenance,
	}
	f.sections[s.ID] = s
	return s, nil
}

func (f *fakeAPI) UpdateSection(ctx context.Context, id int64, p content.SectionPatch) (content.Section, error) {
	if f.gate != nil {
		if f.entered != nil {
			select {
			case f.entered <- struct{}{}:
			default:
			}
		}
		select {
		case <-f.gate:
		case <-ctx.Done():
			f.mu.Lock()
			f.calls = append(f.calls, call{Method: "UpdateSection", ID: id, SectionPatch: p})
			f.mu.Unlock()
			return content.Section{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(call{Method: "UpdateSection", ID: id, SectionPatch: p}); err != nil {
		return content.Section{}, err
	}
	s, ok := f.sections[id]
	if !ok {
		return content.Section{}, errors.NotFoundf("section %d", id)
	}
	if p.Order != nil {
		s.Order = *p.Order
	}
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Summary != nil {
		s.Summary = *p.Summary
	}
	if p.Body != nil {
		s.Body = *p.Body
	}
	if p.ExternalModelLink != nil {
		s.ExternalModelLink = *p.ExternalModelLink
	}
	if p.ExternalModelOrder != nil {
		s.ExternalModelOrder = *p.ExternalModelOrder
	}
	if p.Provenance != nil {
		prov := *p.Provenance
		s.Provenance = &prov
	}
	f.sections[id] = s
	return s, nil
}

func (f *fakeAPI) DeleteSection(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(call{Method: "DeleteSection", ID: id}); err != nil {
		return err
	}
	if _, ok := f.sections[id]; !ok {
		return errors.NotFoundf("section %d", id)
	}
	delete(f.sections, id)
	return nil
}

func (f *fakeAPI) ListImages(_ context.Context, sectionID int64) ([]content.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(call{Method: "ListImages", ID: sectionID}); err != nil {
		return nil, err
	}
	var out []content.Image
	for _, img := range f.images {
		if img.SectionID == sectionID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateImage(_ context.Context, in content.ImageInput) (content.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(call{Method: "CreateImage", ImageIn: in}); err != nil {
		return content.Image{}, err
	}
	f.nextID++
	img := content.Image{
		ID:          f.nextID,
		SectionID:   in.SectionID,
		Content:     in.Content,
		ContentType: in.ContentType,
		Description: in.Description,
		Order:       in.Order,
	}
	f.images[img.ID] = img
	return img, nil
}

func (f *fakeAPI) UpdateImage(_ context.Context, id int64, p content.ImagePatch) (content.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(call{Method: "UpdateImage", ID: id, ImagePatch: p}); err != nil {
		return content.Image{}, err
	}
	img, ok := f.images[id]
	if !ok {
		return content.Image{}, errors.NotFoundf("image %d", id)
	}
	if p.Description != nil {
		img.Description = *p.Description
	}
	if p.Order != nil {
		img.Order = *p.Order
	}
	f.images[id] = img
	return img, nil
}

func (f *fakeAPI) DeleteImage(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(call{Method: "DeleteImage", ID: id}); err != nil {
		return err
	}
	if _, ok := f.images[id]; !ok {
		return errors.NotFoundf("image %d", id)
	}
	delete(f.images, id)
	return nil
}

func (f *fakeAPI) SaveAsDraft(_ context.Context, chapterID int64, sections []content.DraftSection, userID int64) (content.DraftChapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(call{Method: "SaveAsDraft", ID: chapterID, Draft: sections}); err != nil {
		return content.DraftChapter{}, err
	}
	f.nextID++
	return content.DraftChapter{ID: f.nextID, ChapterID: chapterID, UserID: userID, Sections: sections}, nil
}

func (f *fakeAPI) PublishDraft(_ context.Context, draftID, destinationChapterID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record(call{Method: "PublishDraft", ID: draftID})
}

// fakeAI is a Generator returning fixed text.
type fakeAI struct {
	summary     string
	description string
	err         error
}

func (a fakeAI) Summarize(context.Context, string) (ai.Result, error) {
	if a.err != nil {
		return ai.Result{}, a.err
	}
	return ai.Result{Text: a.summary, Provider: "fake", Model: "m", Prompt: "summarize please"}, nil
}

func (a fakeAI) DescribeImage(context.Context, []byte, string) (ai.Result, error) {
	if a.err != nil {
		return ai.Result{}, a.err
	}
	return ai.Result{Text: a.description, Provider: "fake", Model: "m", Prompt: "describe please"}, nil
}

func (a fakeAI) Speak(context.Context, string) (media.Audio, error) {
	if a.err != nil {
		return media.Audio{}, a.err
	}
	return media.Audio{Data: []byte{0, 0}, ContentType: "audio/L16;rate=24000"}, nil
}

// fakeJournal records journal calls in memory.
type fakeJournal struct {
	mu      sync.Mutex
	saves   int64
	ops     []Op
	failed  []Op
	results map[int64]error
}

func (j *fakeJournal) BeginSave(context.Context, int64, string) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.saves++
	return j.saves, nil
}

func (j *fakeJournal) RecordOp(_ context.Context, _ int64, op Op, opErr error) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if opErr != nil {
		j.failed = append(j.failed, op)
	} else {
		j.ops = append(j.ops, op)
	}
	return nil
}

func (j *fakeJournal) FinishSave(_ context.Context, saveID int64, saveErr error) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.results == nil {
		j.results = map[int64]error{}
	}
	j.results[saveID] = saveErr
	return nil
}

var manager = content.User{ID: 3, Name: "Ana", Role: "admin", CanManageContent: true}

// newTestSession loads chapter 7 from api and enters edit mode.
func newTestSession(t *testing.T, api *fakeAPI, opts ...func(*Options)) *Session {
	t.Helper()
	o := Options{
		Persistence: api,
		Logger:      logger.Discard(),
		User:        manager,
	}
	for _, fn := range opts {
		fn(&o)
	}
	s := NewSession(o)
	require.NoError(t, s.Load(context.Background(), 7))
	require.NoError(t, s.EnterEditMode())
	api.reset()
	return s
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func upload(t *testing.T, name string) media.Upload {
	return media.Upload{Name: name, Content: pngBytes(t), ContentType: "image/png"}
}

func orders(items []Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Section.Order
	}
	return out
}

func keys(items []Item) []Key {
	out := make([]Key, len(items))
	for i, it := range items {
		out[i] = it.Key
	}
	return out
}
