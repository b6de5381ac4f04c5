package annotation

import (
	"errors"
	"strings"
	"time"
)

// DefaultCap is the number of live comments a board accepts.
const DefaultCap = 10

// Status of a comment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusValidated Status = "validated"
)

// Point is a position on the preview surface, relative to its top-left corner.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Comment is a requirement pinned to a point of a preview page.
type Comment struct {
	ID          int64     `json:"id,string"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Position    Point     `json:"position"`
	Status      Status    `json:"status"`
	Page        string    `json:"page"`
	Attachment  string    `json:"attachment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Draft is the comment being written in the modal.
type Draft struct {
	Position  Point  `json:"position"`
	EditingID int64  `json:"editing_id,string,omitempty"`
	Title     string `json:"title"`
	Desc      string `json:"description"`
}

// Editing reports whether the draft edits an existing comment.
func (d *Draft) Editing() bool {
	return d.EditingID != 0
}

var (
	ErrModeOff         = errors.New("annotation: annotation mode is off")
	ErrCapReached      = errors.New("annotation: comment limit reached")
	ErrNoDraft         = errors.New("annotation: no draft open")
	ErrEmptyField      = errors.New("annotation: title and description are required")
	ErrNotFound        = errors.New("annotation: comment not found")
	ErrNothingToReview = errors.New("annotation: no comments to submit")
)

// Board holds the comments of one preview session.
type Board struct {
	cap         int
	nextID      func() int64
	enabled     bool
	page        string
	comments    []Comment
	draft       *Draft
	selected    []int64
	highlighted int64
	submitted   bool
	attachment  string
}

// Option configures a Board.
type Option func(*Board)

// WithCap overrides DefaultCap.
func WithCap(n int) Option {
	return func(b *Board) {
		if n > 0 {
			b.cap = n
		}
	}
}

// WithAttachment tags every new comment with a reference attachment.
func WithAttachment(name string) Option {
	return func(b *Board) { b.attachment = name }
}

// NewBoard creates an empty board starting on page. nextID must return ids
// that are never reused.
func NewBoard(page string, nextID func() int64, opts ...Option) *Board {
	b := &Board{cap: DefaultCap, nextID: nextID, page: page}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Board) Cap() int           { return b.cap }
func (b *Board) Enabled() bool      { return b.enabled }
func (b *Board) Page() string       { return b.page }
func (b *Board) Len() int           { return len(b.comments) }
func (b *Board) Submitted() bool    { return b.submitted }
func (b *Board) Highlighted() int64 { return b.highlighted }

// SetEnabled toggles annotation mode. Toggling clears the highlight.
func (b *Board) SetEnabled(on bool) {
	b.enabled = on
	b.highlighted = 0
}

// SetPage switches the active preview page and clears the highlight.
func (b *Board) SetPage(page string) {
	b.page = page
	b.highlighted = 0
}

// Highlight marks a comment as hovered.
func (b *Board) Highlight(id int64) error {
	if b.index(id) < 0 {
		return ErrNotFound
	}
	b.highlighted = id
	return nil
}

// Click opens a new draft at p. It fails when annotation mode is off or the
// board is full.
func (b *Board) Click(p Point) error {
	if !b.enabled {
		return ErrModeOff
	}
	if len(b.comments) >= b.cap {
		return ErrCapReached
	}
	b.draft = &Draft{Position: p}
	return nil
}

// Edit opens a draft prefilled with an existing comment.
func (b *Board) Edit(id int64) error {
	i := b.index(id)
	if i < 0 {
		return ErrNotFound
	}
	c := b.comments[i]
	b.draft = &Draft{Position: c.Position, EditingID: id, Title: c.Title, Desc: c.Description}
	return nil
}

// Draft returns the open draft, if any.
func (b *Board) Draft() (Draft, bool) {
	if b.draft == nil {
		return Draft{}, false
	}
	return *b.draft, true
}

// CancelDraft closes the modal without saving.
func (b *Board) CancelDraft() {
	b.draft = nil
}

// Confirm saves the open draft. Title and description must be non-blank; on
// that error the draft stays open. An edit merges title and description into
// the existing comment and keeps its status. The draft is closed afterwards,
// so a repeated confirm fails with ErrNoDraft.
func (b *Board) Confirm(title, description string) (Comment, error) {
	if b.draft == nil {
		return Comment{}, ErrNoDraft
	}
	b.draft.Title, b.draft.Desc = title, description
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" {
		return Comment{}, ErrEmptyField
	}
	d := *b.draft
	b.draft = nil

	if d.Editing() {
		i := b.index(d.EditingID)
		if i < 0 {
			return Comment{}, ErrNotFound
		}
		b.comments[i].Title = title
		b.comments[i].Description = description
		return b.comments[i], nil
	}

	if len(b.comments) >= b.cap {
		return Comment{}, ErrCapReached
	}
	c := Comment{
		ID:          b.nextID(),
		Title:       title,
		Description: description,
		Position:    d.Position,
		Status:      StatusPending,
		Page:        b.page,
		Attachment:  b.attachment,
		CreatedAt:   time.Now(),
	}
	b.comments = append(b.comments, c)
	return c, nil
}

// Validate signs a comment off. Validating twice is harmless.
func (b *Board) Validate(id int64) (Comment, error) {
	i := b.index(id)
	if i < 0 {
		return Comment{}, ErrNotFound
	}
	b.comments[i].Status = StatusValidated
	return b.comments[i], nil
}

// Delete removes a comment and drops it from the selection.
func (b *Board) Delete(id int64) error {
	i := b.index(id)
	if i < 0 {
		return ErrNotFound
	}
	b.comments = append(b.comments[:i], b.comments[i+1:]...)
	b.selected = removeID(b.selected, id)
	if b.highlighted == id {
		b.highlighted = 0
	}
	if b.draft != nil && b.draft.EditingID == id {
		b.draft = nil
	}
	return nil
}

// ToggleSelect adds or removes a comment from the selection and reports
// whether it is selected afterwards.
func (b *Board) ToggleSelect(id int64) (bool, error) {
	if b.index(id) < 0 {
		return false, ErrNotFound
	}
	for _, s := range b.selected {
		if s == id {
			b.selected = removeID(b.selected, id)
			return false, nil
		}
	}
	b.selected = append(b.selected, id)
	return true, nil
}

// Selected returns the selected ids in selection order.
func (b *Board) Selected() []int64 {
	return append([]int64(nil), b.selected...)
}

// Comments returns every comment in creation order.
func (b *Board) Comments() []Comment {
	return append([]Comment(nil), b.comments...)
}

// Markers returns the comments drawn over the active page. Nothing is drawn
// while annotation mode is off.
func (b *Board) Markers() []Comment {
	if !b.enabled {
		return nil
	}
	var out []Comment
	for _, c := range b.comments {
		if c.Page == b.page {
			out = append(out, c)
		}
	}
	return out
}

// ValidatedCount counts validated comments.
func (b *Board) ValidatedCount() int {
	n := 0
	for _, c := range b.comments {
		if c.Status == StatusValidated {
			n++
		}
	}
	return n
}

// SubmitForReview sends the requirements for review. It needs at least one
// comment and stays submitted afterwards.
func (b *Board) SubmitForReview() error {
	if len(b.comments) == 0 {
		return ErrNothingToReview
	}
	b.submitted = true
	return nil
}

func (b *Board) index(id int64) int {
	for i, c := range b.comments {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
