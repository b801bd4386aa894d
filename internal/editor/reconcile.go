package editor

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/liaGregorio/GeoDUA-sub000/internal/content"
	"github.com/liaGregorio/GeoDUA-sub000/internal/errors"
	"github.com/liaGregorio/GeoDUA-sub000/internal/media"
	"github.com/liaGregorio/GeoDUA-sub000/internal/validation"
)

// OpKind names a remote operation issued by a save.
type OpKind string

const (
	OpUpdateSection OpKind = "update_section"
	OpCreateSection OpKind = "create_section"
	OpDeleteSection OpKind = "delete_section"
	OpUpdateImage   OpKind = "update_image"
	OpCreateImage   OpKind = "create_image"
	OpDeleteImage   OpKind = "delete_image"
)

// Op is one remote operation of a save.
type Op struct {
	Kind   OpKind
	Key    Key
	ID     int64
	Fields []string
}

func (op Op) String() string {
	var b strings.Builder
	b.WriteString(string(op.Kind))
	if op.ID > 0 {
		b.WriteString(" #")
		b.WriteString(strconv.FormatInt(op.ID, 10))
	} else if op.Key != "" {
		b.WriteString(" ")
		b.WriteString(string(op.Key))
	}
	if len(op.Fields) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(op.Fields, ", "))
		b.WriteString(")")
	}
	return b.String()
}

// Journal records save attempts and the outcome of each remote operation.
type Journal interface {
	BeginSave(ctx context.Context, chapterID int64, kind string) (int64, error)
	RecordOp(ctx context.Context, saveID int64, op Op, opErr error) error
	FinishSave(ctx context.Context, saveID int64, saveErr error) error
}

// Save kinds passed to Journal.BeginSave.
const (
	SaveKindChapter = "chapter"
	SaveKindDraft   = "draft"
)

// SaveReport lists the operations a successful save issued.
type SaveReport struct {
	Ops []Op
}

// CommittedOps returns the operations that completed before a save failed.
func CommittedOps(err error) []Op {
	var e *errors.Error
	if errors.As(err, &e) && e.Code == errors.CodePersistence {
		if ops, ok := e.Details.([]Op); ok {
			return ops
		}
	}
	return nil
}

// resolved remembers a local item created remotely during a failed save so
// the retry updates it instead of creating a duplicate.
type resolved struct {
	id      int64
	section Key
}

// sectionForm is the validated text form of a section.
type sectionForm struct {
	Order              string `json:"order" validate:"required,position"`
	ExternalModelLink  string `json:"externalModelLink" validate:"omitempty,url"`
	ExternalModelOrder string `json:"externalModelOrder" validate:"required,oneof=1 2"`
}

// validate checks every draft and patched section and returns a VALIDATION
// error keyed "<section key>.<field>".
func (o *Overlay) validate(v *validation.Validator) error {
	var keys []Key
	for key := range o.drafts {
		keys = append(keys, key)
	}
	for key := range o.patches {
		if _, gone := o.tombstones[key]; !gone {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	details := map[string]string{}
	for _, key := range keys {
		form := sectionForm{
			Order:              strings.TrimSpace(o.rawValue(key, FieldOrder)),
			ExternalModelLink:  strings.TrimSpace(o.rawValue(key, FieldExternalModelLink)),
			ExternalModelOrder: strings.TrimSpace(o.rawValue(key, FieldExternalModelOrder)),
		}
		for field, msg := range v.Fields(form) {
			details[string(key)+"."+field] = msg
		}
	}
	if len(details) > 0 {
		return errors.ValidationWithDetails("section fields are invalid", details)
	}
	return nil
}

// reconciler issues the remote operations of one save, in order, stopping
// at the first failure.
type reconciler struct {
	p         Persistence
	base      *Snapshot
	o         *Overlay
	resolved  map[Key]resolved
	images    media.CompressOptions
	journal   Journal
	saveID    int64
	logger    *slog.Logger
	committed []Op
}

func (r *reconciler) run(ctx context.Context) error {
	active, removed := r.o.compose(r.base)

	// Section patches.
	for _, it := range active {
		if it.State == StateDraft {
			continue
		}
		p := r.o.patches[it.Key]
		if p == nil {
			continue
		}
		base, _ := r.base.section(it.Section.ID)
		sp, fields := diffSection(base, p)
		if sp.Empty() {
			continue
		}
		sectionID := it.Section.ID
		op := Op{Kind: OpUpdateSection, Key: it.Key, ID: sectionID, Fields: fields}
		if err := r.exec(ctx, &op, func() (int64, error) {
			_, err := r.p.UpdateSection(ctx, sectionID, sp)
			return sectionID, err
		}); err != nil {
			return err
		}
	}

	// Image description and order patches.
	for _, it := range active {
		if it.State == StateDraft {
			continue
		}
		for _, img := range it.Images {
			if img.Temporary || !img.Dirty {
				continue
			}
			ip, fields := r.diffImage(img.Ref.ID)
			if ip.Empty() {
				continue
			}
			imageID := img.Ref.ID
			op := Op{Kind: OpUpdateImage, Key: it.Key, ID: imageID, Fields: fields}
			if err := r.exec(ctx, &op, func() (int64, error) {
				_, err := r.p.UpdateImage(ctx, imageID, ip)
				return imageID, err
			}); err != nil {
				return err
			}
		}
	}

	// New images of persisted sections.
	for _, it := range active {
		if it.State == StateDraft {
			continue
		}
		if err := r.createImages(ctx, it); err != nil {
			return err
		}
	}

	if err := r.deleteImages(ctx); err != nil {
		return err
	}
	if err := r.deleteSections(ctx, removed); err != nil {
		return err
	}

	// Drafts, then their images under the new id.
	for _, it := range active {
		if it.State != StateDraft {
			continue
		}
		if err := r.createDraft(ctx, &it); err != nil {
			return err
		}
		if err := r.createImages(ctx, it); err != nil {
			return err
		}
	}
	return nil
}

func (r *reconciler) createDraft(ctx context.Context, it *Item) error {
	if prev, ok := r.resolved[it.Key]; ok {
		sp := fullPatch(it.Section)
		op := Op{Kind: OpUpdateSection, Key: it.Key, ID: prev.id, Fields: allFieldNames()}
		if err := r.exec(ctx, &op, func() (int64, error) {
			_, err := r.p.UpdateSection(ctx, prev.id, sp)
			return prev.id, err
		}); err != nil {
			return err
		}
		it.Section.ID = prev.id
		return nil
	}

	in := sectionInput(r.base.ChapterID, it.Section)
	op := Op{Kind: OpCreateSection, Key: it.Key, Fields: allFieldNames()}
	err := r.exec(ctx, &op, func() (int64, error) {
		created, err := r.p.CreateSection(ctx, in)
		return created.ID, err
	})
	if err != nil {
		return err
	}
	r.resolved[it.Key] = resolved{id: op.ID}
	it.Section.ID = op.ID
	return nil
}

// createImages creates the temporary images of a section whose server id is
// known.
func (r *reconciler) createImages(ctx context.Context, it Item) error {
	for _, img := range it.Images {
		if !img.Temporary {
			continue
		}
		key := img.Ref.TempKey
		description, order := img.Description, img.Order

		if prev, ok := r.resolved[key]; ok {
			patch := content.ImagePatch{Description: &description, Order: &order}
			op := Op{Kind: OpUpdateImage, Key: key, ID: prev.id, Fields: []string{"description", "order"}}
			if err := r.exec(ctx, &op, func() (int64, error) {
				_, err := r.p.UpdateImage(ctx, prev.id, patch)
				return prev.id, err
			}); err != nil {
				return err
			}
			continue
		}

		data, contentType, err := media.Compress(img.Content, img.ContentType, r.images)
		if err != nil {
			return r.fail(Op{Kind: OpCreateImage, Key: key}, err)
		}
		in := content.ImageInput{
			SectionID:   it.Section.ID,
			Content:     data,
			ContentType: contentType,
			Description: description,
			Order:       order,
		}
		op := Op{Kind: OpCreateImage, Key: key}
		if err := r.exec(ctx, &op, func() (int64, error) {
			created, err := r.p.CreateImage(ctx, in)
			return created.ID, err
		}); err != nil {
			return err
		}
		r.resolved[key] = resolved{id: op.ID, section: it.Key}
	}
	return nil
}

// deleteImages deletes tombstoned persisted images, and images created by an
// earlier failed attempt that were removed since.
func (r *reconciler) deleteImages(ctx context.Context) error {
	var ids []int64
	for ref, section := range r.o.imageTombstones {
		if _, gone := r.o.tombstones[section]; gone {
			continue
		}
		switch {
		case ref.Persisted():
			ids = append(ids, ref.ID)
		default:
			if prev, ok := r.resolved[ref.TempKey]; ok {
				ids = append(ids, prev.id)
			}
		}
	}
	for key, prev := range r.resolved {
		if prev.section == "" {
			continue
		}
		if _, ok := r.o.temps[key]; ok {
			continue
		}
		if _, ok := r.o.drafts[prev.section]; !ok && !r.isPersisted(prev.section) {
			continue
		}
		ids = append(ids, prev.id)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	for _, imageID := range ids {
		op := Op{Kind: OpDeleteImage, ID: imageID}
		if err := r.exec(ctx, &op, func() (int64, error) {
			return imageID, ignoreNotFound(r.p.DeleteImage(ctx, imageID))
		}); err != nil {
			return err
		}
	}
	return nil
}

// deleteSections deletes tombstoned sections and drafts created by an earlier
// failed attempt that were removed since.
func (r *reconciler) deleteSections(ctx context.Context, removed []Item) error {
	type target struct {
		key Key
		id  int64
	}
	var targets []target
	for _, it := range removed {
		targets = append(targets, target{key: it.Key, id: it.Section.ID})
	}
	var orphans []target
	for key, prev := range r.resolved {
		if prev.section != "" {
			continue
		}
		if _, ok := r.o.drafts[key]; !ok {
			orphans = append(orphans, target{key: key, id: prev.id})
		}
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].id < orphans[j].id })
	targets = append(targets, orphans...)

	for _, t := range targets {
		sectionID := t.id
		op := Op{Kind: OpDeleteSection, Key: t.key, ID: sectionID}
		if err := r.exec(ctx, &op, func() (int64, error) {
			return sectionID, ignoreNotFound(r.p.DeleteSection(ctx, sectionID))
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *reconciler) isPersisted(key Key) bool {
	sid, ok := key.ID()
	if !ok {
		return false
	}
	_, ok = r.base.section(sid)
	return ok
}

func (r *reconciler) diffImage(imageID int64) (content.ImagePatch, []string) {
	var out content.ImagePatch
	var fields []string
	ip := r.o.imagePatches[imageID]
	base, ok := r.base.image(imageID)
	if ip == nil || !ok {
		return out, nil
	}
	if ip.description != nil && *ip.description != base.Description {
		d := *ip.description
		out.Description = &d
		fields = append(fields, "description")
	}
	if ip.order != nil && *ip.order != base.Order {
		n := *ip.order
		out.Order = &n
		fields = append(fields, "order")
	}
	return out, fields
}

// exec runs one remote operation, journals it and records it as committed.
// fn returns the server id the operation touched or created.
func (r *reconciler) exec(ctx context.Context, op *Op, fn func() (int64, error)) error {
	id, err := fn()
	if err == nil && id > 0 {
		op.ID = id
	}
	if r.journal != nil {
		if jerr := r.journal.RecordOp(context.WithoutCancel(ctx), r.saveID, *op, err); jerr != nil {
			r.logger.Warn("failed to journal save operation", "op", op.String(), "error", jerr)
		}
	}
	if err != nil {
		return r.fail(*op, err)
	}
	r.logger.Debug("save operation committed", "op", op.String())
	r.committed = append(r.committed, *op)
	return nil
}

func (r *reconciler) fail(op Op, err error) error {
	return errors.Wrapf(err, errors.CodePersistence, "%s failed", op).WithDetails(slices.Clone(r.committed))
}

func ignoreNotFound(err error) error {
	if errors.Is(err, errors.ErrNotFound) {
		return nil
	}
	return err
}

// diffSection builds the update body for a patch, skipping fields equal to
// the baseline.
func diffSection(base content.Section, p *patch) (content.SectionPatch, []string) {
	var out content.SectionPatch
	var fields []string
	for _, f := range Fields {
		v, ok := p.fields[f]
		if !ok || f.equal(v, f.valueOf(base)) {
			continue
		}
		if setPatchField(&out, f, v) {
			fields = append(fields, string(f))
		}
	}
	if p.provenance != nil && !provenanceEqual(p.provenance, base.Provenance) {
		out.Provenance = copyProvenance(p.provenance)
		fields = append(fields, "provenance")
	}
	return out, fields
}

func setPatchField(out *content.SectionPatch, f Field, v string) bool {
	switch f {
	case FieldTitle:
		out.Title = &v
	case FieldSummary:
		out.Summary = &v
	case FieldBody:
		out.Body = &v
	case FieldExternalModelLink:
		out.ExternalModelLink = &v
	case FieldExternalModelOrder:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return false
		}
		placement := content.ModelPlacement(n)
		out.ExternalModelOrder = &placement
	case FieldOrder:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return false
		}
		out.Order = &n
	default:
		return false
	}
	return true
}

func fullPatch(s content.Section) content.SectionPatch {
	order, placement := s.Order, s.ExternalModelOrder
	title, summary, body, link := s.Title, s.Summary, s.Body, s.ExternalModelLink
	return content.SectionPatch{
		Order:              &order,
		Title:              &title,
		Summary:            &summary,
		Body:               &body,
		ExternalModelLink:  &link,
		ExternalModelOrder: &placement,
		Provenance:         copyProvenance(s.Provenance),
	}
}

func sectionInput(chapterID int64, s content.Section) content.SectionInput {
	return content.SectionInput{
		ChapterID:          chapterID,
		Order:              s.Order,
		Title:              s.Title,
		Summary:            s.Summary,
		Body:               s.Body,
		ExternalModelLink:  s.ExternalModelLink,
		ExternalModelOrder: s.ExternalModelOrder,
		Provenance:         copyProvenance(s.Provenance),
	}
}

func allFieldNames() []string {
	out := make([]string, len(Fields))
	for i, f := range Fields {
		out[i] = string(f)
	}
	return out
}

// composeDraft turns the visible sections into the body of a save-as-draft
// call. Temporary images are compressed and embedded.
func composeDraft(active []Item, opts media.CompressOptions) ([]content.DraftSection, error) {
	out := make([]content.DraftSection, 0, len(active))
	for _, it := range active {
		ds := content.DraftSection{
			SourceID:           it.Section.ID,
			Order:              it.Section.Order,
			Title:              it.Section.Title,
			Summary:            it.Section.Summary,
			Body:               it.Section.Body,
			ExternalModelLink:  it.Section.ExternalModelLink,
			ExternalModelOrder: it.Section.ExternalModelOrder,
			Provenance:         copyProvenance(it.Section.Provenance),
			Images:             []content.DraftImage{},
		}
		for _, img := range it.Images {
			di := content.DraftImage{
				ID:          img.Ref.ID,
				Content:     img.Content,
				ContentType: img.ContentType,
				Description: img.Description,
				Order:       img.Order,
			}
			if img.Temporary {
				data, contentType, err := media.Compress(img.Content, img.ContentType, opts)
				if err != nil {
					return nil, fmt.Errorf("compress %s: %w", img.Ref, err)
				}
				di.Content, di.ContentType = data, contentType
			}
			ds.Images = append(ds.Images, di)
		}
		out = append(out, ds)
	}
	return out, nil
}
