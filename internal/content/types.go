package content

import (
	"strconv"
	"time"
)

// ModelPlacement says where a section's external 3D model is shown. The API
// stores it as a number.
type ModelPlacement int

const (
	PlacementAfterBody      ModelPlacement = 1
	PlacementAfterAllImages ModelPlacement = 2
)

// String returns the label used in the UI.
func (p ModelPlacement) String() string {
	switch p {
	case PlacementAfterBody:
		return "after-body"
	case PlacementAfterAllImages:
		return "after-all-images"
	default:
		return strconv.Itoa(int(p))
	}
}

// Feedback is the like/dislike signal on an AI-generated summary.
type Feedback string

const (
	FeedbackNone    Feedback = ""
	FeedbackLike    Feedback = "like"
	FeedbackDislike Feedback = "dislike"
)

// Provenance records which AI provider and prompt produced a summary.
type Provenance struct {
	Provider string   `json:"provider"`
	Prompt   string   `json:"prompt"`
	Feedback Feedback `json:"feedback,omitempty"`
}

// Section mirrors /api/sections resources.
type Section struct {
	ID                 int64          `json:"id"`
	ChapterID          int64          `json:"chapterId"`
	Order              int            `json:"order"`
	Title              string         `json:"title,omitempty"`
	Summary            string         `json:"summary,omitempty"`
	Body               string         `json:"body"`
	ExternalModelLink  string         `json:"externalModelLink,omitempty"`
	ExternalModelOrder ModelPlacement `json:"externalModelOrder"`
	Provenance         *Provenance    `json:"provenance,omitempty"`
}

// SectionInput is the body of a create call.
type SectionInput struct {
	ChapterID          int64          `json:"chapterId"`
	Order              int            `json:"order"`
	Title              string         `json:"title,omitempty"`
	Summary            string         `json:"summary,omitempty"`
	Body               string         `json:"body"`
	ExternalModelLink  string         `json:"externalModelLink,omitempty"`
	ExternalModelOrder ModelPlacement `json:"externalModelOrder"`
	Provenance         *Provenance    `json:"provenance,omitempty"`
}

// SectionPatch carries only the fields that changed. Nil fields are omitted
// from the request body.
type SectionPatch struct {
	Order              *int            `json:"order,omitempty"`
	Title              *string         `json:"title,omitempty"`
	Summary            *string         `json:"summary,omitempty"`
	Body               *string         `json:"body,omitempty"`
	ExternalModelLink  *string         `json:"externalModelLink,omitempty"`
	ExternalModelOrder *ModelPlacement `json:"externalModelOrder,omitempty"`
	Provenance         *Provenance     `json:"provenance,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SectionPatch) Empty() bool {
	return p.Order == nil && p.Title == nil && p.Summary == nil && p.Body == nil &&
		p.ExternalModelLink == nil && p.ExternalModelOrder == nil && p.Provenance == nil
}

// Image mirrors /api/images resources. Content is base64 on the wire.
type Image struct {
	ID          int64  `json:"id"`
	SectionID   int64  `json:"sectionId"`
	Content     []byte `json:"content,omitempty"`
	ContentType string `json:"contentType"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}

// ImageInput is the body of an image create call.
type ImageInput struct {
	SectionID   int64  `json:"sectionId"`
	Content     []byte `json:"content"`
	ContentType string `json:"contentType"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}

// ImagePatch carries only the image fields that changed.
type ImagePatch struct {
	Description *string `json:"description,omitempty"`
	Order       *int    `json:"order,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ImagePatch) Empty() bool {
	return p.Description == nil && p.Order == nil
}

// DraftImage is an image embedded in a composed draft section.
type DraftImage struct {
	ID          int64  `json:"id,omitempty"`
	Content     []byte `json:"content,omitempty"`
	ContentType string `json:"contentType"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}

// DraftSection is a section as composed from the store and the edit overlay.
// SourceID is zero for sections that only exist in the draft.
type DraftSection struct {
	SourceID           int64          `json:"sourceId,omitempty"`
	Order              int            `json:"order"`
	Title              string         `json:"title,omitempty"`
	Summary            string         `json:"summary,omitempty"`
	Body               string         `json:"body"`
	ExternalModelLink  string         `json:"externalModelLink,omitempty"`
	ExternalModelOrder ModelPlacement `json:"externalModelOrder"`
	Provenance         *Provenance    `json:"provenance,omitempty"`
	Images             []DraftImage   `json:"images"`
}

// DraftChapter is a chapter-scoped side document holding unpublished edits.
type DraftChapter struct {
	ID        int64          `json:"id"`
	ChapterID int64          `json:"chapterId"`
	UserID    int64          `json:"userId"`
	Sections  []DraftSection `json:"sections"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Chapter mirrors /api/chapters/{id}.
type Chapter struct {
	ID     int64  `json:"id"`
	BookID int64  `json:"bookId"`
	Title  string `json:"title"`
	Order  int    `json:"order"`
}

// User is the authenticated account.
type User struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Role             string `json:"role"`
	CanManageContent bool   `json:"canManageContent"`
}

// Visit is one navigation-history entry reported to the API.
type Visit struct {
	ChapterID int64     `json:"chapterId"`
	BookID    int64     `json:"bookId,omitempty"`
	Title     string    `json:"title,omitempty"`
	At        time.Time `json:"at"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type publishRequest struct {
	ChapterID int64 `json:"chapterId"`
}

type draftRequest struct {
	UserID   int64          `json:"userId"`
	Sections []DraftSection `json:"sections"`
}
