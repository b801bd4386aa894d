package editor

import (
	"sort"
	"strconv"

	"github.com/liaGregorio/GeoDUA-sub000/internal/content"
	"github.com/liaGregorio/GeoDUA-sub000/internal/errors"
	"github.com/liaGregorio/GeoDUA-sub000/internal/id"
)

// patch is the sparse edit of a persisted section. It exists only while at
// least one field or the provenance differs from the baseline.
type patch struct {
	fields     map[Field]string
	provenance *content.Provenance
}

// draft is a section that only exists locally; values holds every field.
type draft struct {
	key        Key
	seq        int
	values     map[Field]string
	provenance *content.Provenance
}

type tempImage struct {
	key         Key
	section     Key
	seq         int
	name        string
	content     []byte
	contentType string
	description string
	order       int
}

type imagePatch struct {
	description *string
	order       *int
}

func (p *imagePatch) empty() bool { return p.description == nil && p.order == nil }

// Overlay holds uncommitted edits on top of a baseline snapshot. It never
// writes to the baseline.
type Overlay struct {
	base *Snapshot
	seq  int

	patches         map[Key]*patch
	drafts          map[Key]*draft
	temps           map[Key]*tempImage
	imagePatches    map[int64]*imagePatch
	imageTombstones map[ImageRef]Key
	tombstones      map[Key]struct{}
	pending         map[Key]content.Provenance
}

// NewOverlay creates an empty overlay diffing against base.
func NewOverlay(base *Snapshot) *Overlay {
	o := &Overlay{base: base}
	o.Clear()
	return o
}

// Clear drops every pending edit.
func (o *Overlay) Clear() {
	o.patches = map[Key]*patch{}
	o.drafts = map[Key]*draft{}
	o.temps = map[Key]*tempImage{}
	o.imagePatches = map[int64]*imagePatch{}
	o.imageTombstones = map[ImageRef]Key{}
	o.tombstones = map[Key]struct{}{}
	o.pending = map[Key]content.Provenance{}
}

// HasPendingChanges reports whether any patch, draft, temporary image, image
// edit or tombstone exists.
func (o *Overlay) HasPendingChanges() bool {
	return len(o.patches) > 0 || len(o.drafts) > 0 || len(o.temps) > 0 ||
		len(o.imagePatches) > 0 || len(o.imageTombstones) > 0 || len(o.tombstones) > 0
}

// RecordFieldChange sets field on the section behind key. Drafts change in
// place. Persisted sections get a sparse patch; setting a field back to its
// baseline value removes it, and an emptied patch is dropped. A summary
// change consumes any pending AI provenance for key in the same step.
func (o *Overlay) RecordFieldChange(key Key, field Field, value string) error {
	if _, ok := ParseField(string(field)); !ok {
		return errors.Validationf("unknown field %q", field)
	}
	if _, gone := o.tombstones[key]; gone {
		return errors.Validationf("section %s is marked for removal", key)
	}

	if d, ok := o.drafts[key]; ok {
		d.values[field] = value
		if field == FieldSummary {
			prov, generated := o.takePending(key)
			switch {
			case value == "":
				d.provenance = nil
			case generated:
				d.provenance = &prov
			}
		}
		return nil
	}

	base, err := o.baseSection(key)
	if err != nil {
		return err
	}
	p := o.patches[key]
	if p == nil {
		p = &patch{fields: map[Field]string{}}
	}
	if field.equal(value, field.valueOf(base)) {
		delete(p.fields, field)
	} else {
		p.fields[field] = value
	}
	if field == FieldSummary {
		prov, generated := o.takePending(key)
		_, changed := p.fields[FieldSummary]
		switch {
		case !changed:
			// Back to the stored summary: a generated provenance goes with
			// it, feedback on the stored one stays.
			if !sameSource(p.provenance, base.Provenance) {
				p.provenance = nil
			}
		case generated:
			p.provenance = &prov
		}
	}
	o.storePatch(key, base, p)
	return nil
}

// MarkPendingProvenance records that the next summary change for key comes
// from an AI provider.
func (o *Overlay) MarkPendingProvenance(key Key, provider, prompt string) {
	o.pending[key] = content.Provenance{Provider: provider, Prompt: prompt}
}

func (o *Overlay) takePending(key Key) (content.Provenance, bool) {
	prov, ok := o.pending[key]
	delete(o.pending, key)
	return prov, ok
}

// SetProvenance replaces the summary provenance of a section.
func (o *Overlay) SetProvenance(key Key, prov *content.Provenance) error {
	if d, ok := o.drafts[key]; ok {
		d.provenance = copyProvenance(prov)
		return nil
	}
	base, err := o.baseSection(key)
	if err != nil {
		return err
	}
	p := o.patches[key]
	if p == nil {
		p = &patch{fields: map[Field]string{}}
	}
	p.provenance = copyProvenance(prov)
	o.storePatch(key, base, p)
	return nil
}

// Provenance returns the effective summary provenance of a section.
func (o *Overlay) Provenance(key Key) *content.Provenance {
	if d, ok := o.drafts[key]; ok {
		return copyProvenance(d.provenance)
	}
	if p := o.patches[key]; p != nil && p.provenance != nil {
		return copyProvenance(p.provenance)
	}
	if base, err := o.baseSection(key); err == nil {
		return copyProvenance(base.Provenance)
	}
	return nil
}

func (o *Overlay) storePatch(key Key, base content.Section, p *patch) {
	if p.provenance != nil && provenanceEqual(p.provenance, base.Provenance) {
		p.provenance = nil
	}
	if len(p.fields) == 0 && p.provenance == nil {
		delete(o.patches, key)
		return
	}
	o.patches[key] = p
}

func (o *Overlay) baseSection(key Key) (content.Section, error) {
	sid, ok := key.ID()
	if !ok {
		return content.Section{}, errors.NotFoundf("section %s not found", key)
	}
	base, ok := o.base.section(sid)
	if !ok {
		return content.Section{}, errors.NotFoundf("section %s not found", key)
	}
	return base, nil
}

// CreateDraftSection adds an empty draft at order and returns its key.
func (o *Overlay) CreateDraftSection(order int) Key {
	key := Key(id.MustGenerate(id.SectionPrefix))
	o.seq++
	o.drafts[key] = &draft{
		key: key,
		seq: o.seq,
		values: map[Field]string{
			FieldTitle:              "",
			FieldSummary:            "",
			FieldBody:               "",
			FieldExternalModelLink:  "",
			FieldExternalModelOrder: strconv.Itoa(int(content.PlacementAfterBody)),
			FieldOrder:              strconv.Itoa(order),
		},
	}
	return key
}

// RemoveDraftSection deletes a draft with its temporary images and image
// tombstones. It reports whether key was a draft.
func (o *Overlay) RemoveDraftSection(key Key) bool {
	if _, ok := o.drafts[key]; !ok {
		return false
	}
	delete(o.drafts, key)
	delete(o.pending, key)
	for k, t := range o.temps {
		if t.section == key {
			delete(o.temps, k)
		}
	}
	for ref, section := range o.imageTombstones {
		if section == key {
			delete(o.imageTombstones, ref)
		}
	}
	return true
}

// DiscardPatch clears the patch of a persisted section.
func (o *Overlay) DiscardPatch(key Key) {
	delete(o.patches, key)
	delete(o.pending, key)
}

// TombstoneSection marks a persisted section for deletion on save.
func (o *Overlay) TombstoneSection(key Key) error {
	if _, err := o.baseSection(key); err != nil {
		return err
	}
	o.tombstones[key] = struct{}{}
	delete(o.pending, key)
	return nil
}

// AddTempImage holds a new image for a section until save.
func (o *Overlay) AddTempImage(section Key, name string, data []byte, contentType string, order int) Key {
	key := Key(id.MustGenerate(id.ImagePrefix))
	o.seq++
	o.temps[key] = &tempImage{
		key:         key,
		section:     section,
		seq:         o.seq,
		name:        name,
		content:     data,
		contentType: contentType,
		order:       order,
	}
	return key
}

// MarkImageForRemoval tombstones an image. Persisted images are deleted on
// save; temporary ones are dropped without any remote call.
func (o *Overlay) MarkImageForRemoval(section Key, ref ImageRef) error {
	if err := o.checkImage(section, ref); err != nil {
		return err
	}
	o.imageTombstones[ref] = section
	return nil
}

// SetImageDescription changes an image's description.
func (o *Overlay) SetImageDescription(section Key, ref ImageRef, description string) error {
	if err := o.checkImage(section, ref); err != nil {
		return err
	}
	if !ref.Persisted() {
		o.temps[ref.TempKey].description = description
		return nil
	}
	base, _ := o.base.image(ref.ID)
	ip := o.imagePatch(ref.ID)
	if description == base.Description {
		ip.description = nil
	} else {
		ip.description = &description
	}
	o.storeImagePatch(ref.ID, ip)
	return nil
}

func (o *Overlay) setImageOrder(ref ImageRef, order int) {
	if !ref.Persisted() {
		if t, ok := o.temps[ref.TempKey]; ok {
			t.order = order
		}
		return
	}
	base, ok := o.base.image(ref.ID)
	if !ok {
		return
	}
	ip := o.imagePatch(ref.ID)
	if order == base.Order {
		ip.order = nil
	} else {
		ip.order = &order
	}
	o.storeImagePatch(ref.ID, ip)
}

func (o *Overlay) imagePatch(imageID int64) *imagePatch {
	if ip := o.imagePatches[imageID]; ip != nil {
		return ip
	}
	return &imagePatch{}
}

func (o *Overlay) storeImagePatch(imageID int64, ip *imagePatch) {
	if ip.empty() {
		delete(o.imagePatches, imageID)
		return
	}
	o.imagePatches[imageID] = ip
}

func (o *Overlay) checkImage(section Key, ref ImageRef) error {
	if _, gone := o.imageTombstones[ref]; gone {
		return errors.Validationf("%s is already marked for removal", ref)
	}
	if !ref.Persisted() {
		t, ok := o.temps[ref.TempKey]
		if !ok || t.section != section {
			return errors.NotFoundf("%s not found in section %s", ref, section)
		}
		return nil
	}
	img, ok := o.base.image(ref.ID)
	sid, _ := section.ID()
	if !ok || img.SectionID != sid {
		return errors.NotFoundf("%s not found in section %s", ref, section)
	}
	return nil
}

// State returns the editing state of a section.
func (o *Overlay) State(key Key) State {
	if _, gone := o.tombstones[key]; gone {
		return StateTombstoned
	}
	if _, ok := o.drafts[key]; ok {
		return StateDraft
	}
	if _, ok := o.patches[key]; ok || o.hasImageChanges(key) {
		return StateDirty
	}
	return StateClean
}

func (o *Overlay) hasImageChanges(key Key) bool {
	for _, t := range o.temps {
		if t.section == key {
			return true
		}
	}
	for _, section := range o.imageTombstones {
		if section == key {
			return true
		}
	}
	sid, ok := key.ID()
	if !ok {
		return false
	}
	for imageID := range o.imagePatches {
		if img, ok := o.base.image(imageID); ok && img.SectionID == sid {
			return true
		}
	}
	return false
}

// rawValue returns the text of a field as the user last entered it.
func (o *Overlay) rawValue(key Key, field Field) string {
	if d, ok := o.drafts[key]; ok {
		return d.values[field]
	}
	if p := o.patches[key]; p != nil {
		if v, ok := p.fields[field]; ok {
			return v
		}
	}
	base, _ := o.baseSection(key)
	return field.valueOf(base)
}

// compose applies the overlay to view and returns the visible sections in
// current order plus the tombstoned ones.
func (o *Overlay) compose(view *Snapshot) (active, removed []Item) {
	for _, base := range view.Sections {
		key := KeyOf(base.ID)
		sec := cloneSection(base)
		if p := o.patches[key]; p != nil {
			for f, v := range p.fields {
				f.apply(&sec, v)
			}
			if p.provenance != nil {
				sec.Provenance = copyProvenance(p.provenance)
			}
		}
		imgs, loaded := o.composeImages(view, key, base.ID)
		item := Item{Key: key, State: o.State(key), Section: sec, Images: imgs, ImagesLoaded: loaded}
		if item.State == StateTombstoned {
			removed = append(removed, item)
			continue
		}
		active = append(active, item)
	}

	for _, d := range o.sortedDrafts() {
		sec := content.Section{ChapterID: view.ChapterID, ExternalModelOrder: content.PlacementAfterBody}
		for f, v := range d.values {
			f.apply(&sec, v)
		}
		sec.Provenance = copyProvenance(d.provenance)
		imgs, _ := o.composeImages(view, d.key, 0)
		active = append(active, Item{Key: d.key, State: StateDraft, Section: sec, Images: imgs, ImagesLoaded: true})
	}

	o.sortItems(active)
	return active, removed
}

func (o *Overlay) composeImages(view *Snapshot, key Key, sectionID int64) ([]Image, bool) {
	var out []Image
	loaded := true
	if sectionID > 0 {
		var imgs []content.Image
		imgs, loaded = view.Images[sectionID]
		for _, img := range imgs {
			ref := ImageRef{ID: img.ID}
			if _, gone := o.imageTombstones[ref]; gone {
				continue
			}
			im := Image{
				Ref:         ref,
				Content:     img.Content,
				ContentType: img.ContentType,
				Description: img.Description,
				Order:       img.Order,
			}
			if ip := o.imagePatches[img.ID]; ip != nil {
				if ip.description != nil {
					im.Description = *ip.description
				}
				if ip.order != nil {
					im.Order = *ip.order
				}
				im.Dirty = true
			}
			out = append(out, im)
		}
	}
	for _, t := range o.tempsOf(key) {
		if _, gone := o.imageTombstones[ImageRef{TempKey: t.key}]; gone {
			continue
		}
		out = append(out, Image{
			Ref:         ImageRef{TempKey: t.key},
			Name:        t.name,
			Content:     t.content,
			ContentType: t.contentType,
			Description: t.description,
			Order:       t.order,
			Temporary:   true,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		if out[i].Temporary != out[j].Temporary {
			return !out[i].Temporary
		}
		if !out[i].Temporary {
			return out[i].Ref.ID < out[j].Ref.ID
		}
		return o.temps[out[i].Ref.TempKey].seq < o.temps[out[j].Ref.TempKey].seq
	})
	return out, loaded
}

func (o *Overlay) sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Section.Order != b.Section.Order {
			return a.Section.Order < b.Section.Order
		}
		aDraft, bDraft := a.State == StateDraft, b.State == StateDraft
		if aDraft != bDraft {
			return !aDraft
		}
		if !aDraft {
			return a.Section.ID < b.Section.ID
		}
		return o.drafts[a.Key].seq < o.drafts[b.Key].seq
	})
}

func (o *Overlay) sortedDrafts() []*draft {
	out := make([]*draft, 0, len(o.drafts))
	for _, d := range o.drafts {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (o *Overlay) tempsOf(section Key) []*tempImage {
	var out []*tempImage
	for _, t := range o.temps {
		if t.section == section {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func copyProvenance(p *content.Provenance) *content.Provenance {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func sameSource(a, b *content.Provenance) bool {
	return a != nil && b != nil && a.Provider == b.Provider && a.Prompt == b.Prompt
}

func provenanceEqual(a, b *content.Provenance) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
