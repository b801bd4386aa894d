package editor

import (
	"strconv"
	"strings"

	"github.com/liaGregorio/GeoDUA-sub000/internal/content"
	"github.com/liaGregorio/GeoDUA-sub000/internal/id"
)

// Key identifies a section or image in the editor. Persisted items use their
// decimal server id; items that only exist locally use a temporary token.
type Key string

// KeyOf returns the key of a persisted item.
func KeyOf(id int64) Key {
	return Key(strconv.FormatInt(id, 10))
}

// ID returns the server id behind a persisted key.
func (k Key) ID() (int64, bool) {
	n, err := strconv.ParseInt(string(k), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Temporary reports whether k was handed out locally.
func (k Key) Temporary() bool {
	return id.HasPrefix(string(k), id.SectionPrefix) || id.HasPrefix(string(k), id.ImagePrefix)
}

// State is the editing state of one section.
type State int

const (
	StateClean State = iota
	StateDirty
	StateDraft
	StateTombstoned
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateDraft:
		return "draft"
	case StateTombstoned:
		return "tombstoned"
	default:
		return "unknown"
	}
}

// Field names an editable section field.
type Field string

const (
	FieldTitle              Field = "title"
	FieldSummary            Field = "summary"
	FieldBody               Field = "body"
	FieldExternalModelLink  Field = "externalModelLink"
	FieldExternalModelOrder Field = "externalModelOrder"
	FieldOrder              Field = "order"
)

// Fields lists every editable field in form order.
var Fields = []Field{FieldTitle, FieldSummary, FieldBody, FieldExternalModelLink, FieldExternalModelOrder, FieldOrder}

// ParseField resolves a field name as typed by a user.
func ParseField(name string) (Field, bool) {
	for _, f := range Fields {
		if strings.EqualFold(string(f), strings.TrimSpace(name)) {
			return f, true
		}
	}
	return "", false
}

func (f Field) numeric() bool {
	return f == FieldOrder || f == FieldExternalModelOrder
}

// equal compares two raw values, numerically for numeric fields, so "02" and
// "2" are the same order.
func (f Field) equal(a, b string) bool {
	if f.numeric() {
		x, errX := strconv.Atoi(strings.TrimSpace(a))
		y, errY := strconv.Atoi(strings.TrimSpace(b))
		if errX == nil && errY == nil {
			return x == y
		}
		return strings.TrimSpace(a) == strings.TrimSpace(b)
	}
	return a == b
}

// valueOf reads f from a section as its raw text form.
func (f Field) valueOf(s content.Section) string {
	switch f {
	case FieldTitle:
		return s.Title
	case FieldSummary:
		return s.Summary
	case FieldBody:
		return s.Body
	case FieldExternalModelLink:
		return s.ExternalModelLink
	case FieldExternalModelOrder:
		return strconv.Itoa(int(s.ExternalModelOrder))
	case FieldOrder:
		return strconv.Itoa(s.Order)
	default:
		return ""
	}
}

// apply writes value into s. Unparsable numbers leave s unchanged and report
// false; validation rejects them before a save.
func (f Field) apply(s *content.Section, value string) bool {
	switch f {
	case FieldTitle:
		s.Title = value
	case FieldSummary:
		s.Summary = value
	case FieldBody:
		s.Body = value
	case FieldExternalModelLink:
		s.ExternalModelLink = value
	case FieldExternalModelOrder:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return false
		}
		s.ExternalModelOrder = content.ModelPlacement(n)
	case FieldOrder:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return false
		}
		s.Order = n
	default:
		return false
	}
	return true
}

// ImageRef points at an image that is either persisted (ID) or only held in
// the overlay (TempKey).
type ImageRef struct {
	ID      int64
	TempKey Key
}

// Persisted reports whether the image exists on the server.
func (r ImageRef) Persisted() bool { return r.ID > 0 }

func (r ImageRef) String() string {
	if r.Persisted() {
		return "image " + strconv.FormatInt(r.ID, 10)
	}
	return "image " + string(r.TempKey)
}

// Image is an image as shown by the editor: persisted or temporary, with
// pending description and order edits applied.
type Image struct {
	Ref         ImageRef
	Name        string
	Content     []byte
	ContentType string
	Description string
	Order       int
	Temporary   bool
	Dirty       bool
}

// Item is a section as shown by the editor, with overlay edits applied.
type Item struct {
	Key     Key
	State   State
	Section content.Section
	Images  []Image
	// ImagesLoaded is false until the section's persisted images are fetched.
	ImagesLoaded bool
}
