// Package interaction turns pointer events into document mutations. A
// Controller owns the single active interaction and is the only writer of
// element geometry and drawing strokes while a gesture is in progress.
package interaction

import (
	"github.com/sirupsen/logrus"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/drawing"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
)

// Surfaces resolves the drawing surface owned by an element.
type Surfaces interface {
	Surface(elementID string) (*drawing.Surface, bool)
}

type Config struct {
	// Document-space rectangle a full-surface element is stretched over.
	Surface    geometry.Rect
	HandleSize float64
	BrushColor string
	BrushSize  float64
	Logger     *logrus.Logger
}

// GestureKind says what a finished gesture changed.
type GestureKind int

const (
	GestureMove GestureKind = iota + 1
	GestureResize
	GestureStroke
)

// Gesture describes a finished interaction so the caller can record it for
// undo. Before is the element at pointer-down, After at pointer-up.
type Gesture struct {
	Kind   GestureKind
	Before material.Element
	After  material.Element
}

type Controller struct {
	config   Config
	log      *logrus.Logger
	doc      *material.Document
	surfaces Surfaces

	state  State
	tool   Tool
	before material.Element
}

func New(doc *material.Document, surfaces Surfaces, config Config) *Controller {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.HandleSize <= 0 {
		config.HandleSize = 12
	}
	if config.BrushColor == "" {
		config.BrushColor = "#000000"
	}
	if config.BrushSize <= 0 {
		config.BrushSize = 5
	}
	return &Controller{
		config:   config,
		log:      config.Logger,
		doc:      doc,
		surfaces: surfaces,
		state:    Idle{},
	}
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Document() *material.Document {
	return c.doc
}

// SetDocument switches to another document. An active gesture on the old
// one is finished first and returned.
func (c *Controller) SetDocument(doc *material.Document) *Gesture {
	g := c.finish()
	c.doc = doc
	return g
}

func (c *Controller) SetSurface(r geometry.Rect) {
	c.config.Surface = r
}

func (c *Controller) Tool() Tool {
	return c.tool
}

func (c *Controller) SelectTool(t Tool) {
	c.tool = t
}

func (c *Controller) Brush() (string, float64) {
	return c.config.BrushColor, c.config.BrushSize
}

// SetBrush changes color and size for the next stroke. Empty color or a
// non-positive size keep the current value.
func (c *Controller) SetBrush(color string, size float64) {
	if color != "" {
		c.config.BrushColor = color
	}
	if size > 0 {
		c.config.BrushSize = size
	}
}

// Bounds is where el is laid out in document space.
func (c *Controller) Bounds(el material.Element) geometry.Rect {
	if el.FullSurface() {
		return c.config.Surface
	}
	return el.Bounds()
}

// HandleAt returns the element whose resize handle is under p, topmost
// first. A handle covered by the body of a higher element cannot be hit.
// Full-surface elements have no handle.
func (c *Controller) HandleAt(p geometry.Point) (material.Element, bool) {
	els := c.doc.Elements()
	for i := len(els) - 1; i >= 0; i-- {
		el := els[i]
		if !el.FullSurface() && el.Bounds().Corner(c.config.HandleSize).Contains(p) {
			return el, true
		}
		if c.Bounds(el).Contains(p) {
			break
		}
	}
	return material.Element{}, false
}

// ElementAt returns the topmost element whose body is under p.
func (c *Controller) ElementAt(p geometry.Point) (material.Element, bool) {
	els := c.doc.Elements()
	for i := len(els) - 1; i >= 0; i-- {
		if c.Bounds(els[i]).Contains(p) {
			return els[i], true
		}
	}
	return material.Element{}, false
}

// PointerDown starts a gesture at p in document space. A resize handle is
// tested before any element body. A press on a drawing surface always
// paints and never drags. A press on empty space clears the selection. An
// active gesture is finished first and returned.
func (c *Controller) PointerDown(p geometry.Point) *Gesture {
	g := c.finish()

	if h, ok := c.HandleAt(p); ok {
		c.doc.Select(h.ID)
		c.before = h.Clone()
		c.state = Resizing{ElementID: h.ID, StartSize: h.Size, StartPointer: p}
		return g
	}
	el, ok := c.ElementAt(p)
	if !ok {
		c.doc.Select("")
		return g
	}
	c.doc.Select(el.ID)
	if el.Kind.IsDrawing() {
		c.startPainting(el, p)
		return g
	}
	c.before = el.Clone()
	c.state = Dragging{ElementID: el.ID, Offset: p.Sub(el.Position)}
	return g
}

// startPainting stays idle when the element has no mounted surface yet.
func (c *Controller) startPainting(el material.Element, p geometry.Point) {
	s, ok := c.surfaces.Surface(el.ID)
	if !ok {
		return
	}
	st := Painting{
		ElementID: el.ID,
		Color:     c.config.BrushColor,
		Size:      c.config.BrushSize,
		Eraser:    c.tool == ToolEraser,
	}
	s.BeginStroke(c.toSurface(el, s, p), st.Color, st.Size, st.Eraser)
	c.before = el.Clone()
	c.state = st
}

func (c *Controller) toSurface(el material.Element, s *drawing.Surface, p geometry.Point) geometry.Point {
	return geometry.ToSurface(p, c.Bounds(el), s.Size())
}

// PointerMove advances the active gesture. It is a no-op while idle.
func (c *Controller) PointerMove(p geometry.Point) {
	switch st := c.state.(type) {
	case Dragging:
		c.doc.MoveElement(st.ElementID, p.Sub(st.Offset))
	case Resizing:
		c.doc.ResizeElement(st.ElementID, st.StartSize.Add(p.Sub(st.StartPointer)))
	case Painting:
		el, ok := c.doc.Element(st.ElementID)
		if !ok {
			return
		}
		if s, ok := c.surfaces.Surface(st.ElementID); ok {
			s.ExtendStroke(c.toSurface(el, s, p))
		}
	}
}

// PointerUp ends whatever is active and returns to Idle. It is safe to call
// in any state, including after the pointer left the surface.
func (c *Controller) PointerUp() *Gesture {
	return c.finish()
}

// Cancel is called when the editor is left mid-gesture. The gesture is
// finalized, not dropped.
func (c *Controller) Cancel() *Gesture {
	return c.finish()
}

func (c *Controller) finish() *Gesture {
	st := c.state
	c.state = Idle{}
	before := c.before
	c.before = material.Element{}

	var kind GestureKind
	switch st := st.(type) {
	case Idle:
		return nil
	case Dragging:
		kind = GestureMove
	case Resizing:
		kind = GestureResize
	case Painting:
		kind = GestureStroke
		if !c.commitStroke(st.ElementID) {
			return nil
		}
	}

	after, ok := c.doc.Element(ElementID(st))
	if !ok {
		return nil
	}
	return &Gesture{Kind: kind, Before: before, After: after.Clone()}
}

// commitStroke closes the stroke and persists the whole surface into the
// element so at most the stroke in flight can be lost.
func (c *Controller) commitStroke(id string) bool {
	s, ok := c.surfaces.Surface(id)
	if !ok {
		return false
	}
	s.EndStroke()
	if _, ok := c.doc.Element(id); !ok {
		return false
	}
	uri, err := s.Snapshot()
	if err != nil {
		c.log.WithFields(logrus.Fields{"element": id}).Warnf("Error snapshotting canvas: %v", err)
		return false
	}
	if err := c.doc.UpdateElement(id, map[string]any{"canvasData": uri}); err != nil {
		c.log.WithFields(logrus.Fields{"element": id}).Warnf("Error storing canvas: %v", err)
		return false
	}
	return true
}
