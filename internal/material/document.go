// Package material is the in-memory model of an authored material: an
// ordered list of typed elements plus document metadata. It has no UI
// coupling; the editor, renderer and student runtime all work through it.
package material

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Metadata is the document-level part of the persisted shape.
type Metadata struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Type        string `json:"type" validate:"max=64"`
	Subject     string `json:"subject" validate:"max=64"`
	Language    string `json:"language" validate:"max=32"`
	AgeGroup    string `json:"ageGroup" validate:"max=32"`
	Status      Status `json:"status" validate:"required,oneof=draft published"`
}

// Grid placement for new elements.
const (
	gridColumns = 3
	gridOriginX = 50
	gridOriginY = 50
	gridStrideX = 250
	gridStrideY = 150
)

// Document is the unit of persistence. Element order is z-order.
type Document struct {
	Metadata

	elements []*Element
	selected string
	// elements of kinds this build does not know, re-emitted on save
	passthrough []json.RawMessage
}

func New(meta Metadata) *Document {
	if meta.Status == "" {
		meta.Status = StatusDraft
	}
	return &Document{Metadata: meta}
}

func (d *Document) Len() int {
	return len(d.elements)
}

// Elements returns copies of the elements in z-order.
func (d *Document) Elements() []Element {
	out := make([]Element, 0, len(d.elements))
	for _, el := range d.elements {
		out = append(out, *el)
	}
	return out
}

func (d *Document) Element(id string) (Element, bool) {
	if el := d.find(id); el != nil {
		return *el, true
	}
	return Element{}, false
}

// Index returns the z-order position of id, or -1.
func (d *Document) Index(id string) int {
	for i, el := range d.elements {
		if el.ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) find(id string) *Element {
	if i := d.Index(id); i >= 0 {
		return d.elements[i]
	}
	return nil
}

// FullSurfaceElement returns the element currently holding full-surface
// layout, if any.
func (d *Document) FullSurfaceElement() (Element, bool) {
	for _, el := range d.elements {
		if el.fullSurface {
			return *el, true
		}
	}
	return Element{}, false
}

// CanAdd reports whether AddElement(kind) would succeed. The editor uses it to
// disable creation controls.
func (d *Document) CanAdd(kind Kind) bool {
	if !kind.Valid() {
		return false
	}
	if ClaimsFullSurface(kind, d.Subject) {
		_, taken := d.FullSurfaceElement()
		return !taken
	}
	return true
}

// AddElement appends a new element of kind with default content. Normal
// elements are tiled on a row-major grid seeded by the current element count;
// a full-surface element gets zero position and size.
func (d *Document) AddElement(kind Kind) (Element, error) {
	if !kind.Valid() {
		return Element{}, ErrUnknownKind
	}
	el := &Element{
		ID:      uuid.NewString(),
		Kind:    kind,
		Content: DefaultContent(kind),
	}
	if ClaimsFullSurface(kind, d.Subject) {
		if _, taken := d.FullSurfaceElement(); taken {
			return Element{}, ErrFullSurfaceTaken
		}
		el.fullSurface = true
	} else {
		el.Position = gridSlot(len(d.elements))
		el.Size = kind.DefaultSize()
	}
	d.elements = append(d.elements, el)
	return *el, nil
}

func gridSlot(n int) geometry.Point {
	col := n % gridColumns
	row := n / gridColumns
	return geometry.Pt(
		float64(gridOriginX+col*gridStrideX),
		float64(gridOriginY+row*gridStrideY),
	)
}

// InsertElement puts el at z-order index (clamped to the valid range). A
// missing or already used id is replaced with a fresh one, and a second
// full-surface claimant is laid out as a normal element. The stored element
// is returned.
func (d *Document) InsertElement(index int, el Element) Element {
	if !el.Kind.Valid() {
		return Element{}
	}
	cp := el.Clone()
	if cp.ID == "" || d.find(cp.ID) != nil {
		cp.ID = uuid.NewString()
	}
	if cp.Content == nil || cp.Content.Kind() != cp.Kind {
		cp.Content = DefaultContent(cp.Kind)
	}
	cp.fullSurface = false
	if ClaimsFullSurface(cp.Kind, d.Subject) {
		if _, taken := d.FullSurfaceElement(); !taken {
			cp.fullSurface = true
		}
	}
	if !cp.fullSurface {
		if cp.Size.Empty() {
			cp.Size = cp.Kind.DefaultSize()
		}
		cp.Size = clampSize(cp.Size)
		cp.Position = cp.Position.ClampMin()
	}
	index = max(0, min(index, len(d.elements)))
	d.elements = append(d.elements, nil)
	copy(d.elements[index+1:], d.elements[index:])
	d.elements[index] = &cp
	return cp
}

// UpdateElement shallow-merges patch into the element's content. Unknown keys
// are preserved. A stale id is ignored.
func (d *Document) UpdateElement(id string, patch map[string]any) error {
	el := d.find(id)
	if el == nil {
		return nil
	}
	c, err := MergeContent(el.Content, patch)
	if err != nil {
		return err
	}
	el.Content = c
	return nil
}

// SetContent replaces the content of id when the kinds agree.
func (d *Document) SetContent(id string, c Content) {
	el := d.find(id)
	if el == nil || c == nil || c.Kind() != el.Kind {
		return
	}
	el.Content = CloneContent(c)
}

// DeleteElement removes id and clears the selection if it pointed at it.
func (d *Document) DeleteElement(id string) {
	i := d.Index(id)
	if i < 0 {
		return
	}
	d.elements = append(d.elements[:i], d.elements[i+1:]...)
	if d.selected == id {
		d.selected = ""
	}
}

// MoveElement places id at p, clamped to non-negative coordinates. There is
// no upper bound; elements may overflow the visible surface.
func (d *Document) MoveElement(id string, p geometry.Point) {
	if el := d.find(id); el != nil {
		el.Position = p.ClampMin()
	}
}

// ResizeElement sets the size of id, clamped to MinWidth x MinHeight.
func (d *Document) ResizeElement(id string, s geometry.Size) {
	if el := d.find(id); el != nil {
		el.Size = clampSize(s)
	}
}

func (d *Document) Select(id string) {
	if id == "" || d.find(id) != nil {
		d.selected = id
	}
}

func (d *Document) Selected() string {
	return d.selected
}

// Publish moves a draft to published. Publishing twice is harmless.
func (d *Document) Publish() {
	d.Status = StatusPublished
}

// Normalize enforces the full-surface rule on data that did not come through
// AddElement: the first claimant in z-order keeps full-surface layout and any
// later claimant is laid out as a normal element.
func (d *Document) Normalize() {
	owner := false
	for _, el := range d.elements {
		el.fullSurface = false
		if !owner && ClaimsFullSurface(el.Kind, d.Subject) {
			el.fullSurface = true
			owner = true
			continue
		}
		if el.Size.Empty() {
			el.Size = el.Kind.DefaultSize()
		}
		el.Size = clampSize(el.Size)
		el.Position = el.Position.ClampMin()
	}
}

// SetSubject changes the subject and re-evaluates full-surface ownership,
// since drawing-canvas elements only claim the surface in art documents.
func (d *Document) SetSubject(subject string) {
	d.Subject = subject
	d.Normalize()
}
