package interaction

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/drawing"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
)

func newController(subject string) (*Controller, *material.Document, *drawing.Registry) {
	logger, _ := test.NewNullLogger()
	doc := material.New(material.Metadata{Title: "x", Subject: subject})
	reg := drawing.NewRegistry(drawing.RegistryConfig{Width: 80, Height: 60, Logger: logger})
	c := New(doc, reg, Config{
		Surface:    geometry.R(0, 0, 400, 300),
		HandleSize: 12,
		Logger:     logger,
	})
	return c, doc, reg
}

func TestDragMovesByPointerDelta(t *testing.T) {
	c, doc, _ := newController("English")
	el, _ := doc.AddElement(material.KindText)
	doc.MoveElement(el.ID, geometry.Pt(20, 20))

	c.PointerDown(geometry.Pt(30, 30))
	require.Equal(t, Dragging{ElementID: el.ID, Offset: geometry.Pt(10, 10)}, c.State())
	assert.Equal(t, el.ID, doc.Selected())

	c.PointerMove(geometry.Pt(60, 20))
	got, _ := doc.Element(el.ID)
	assert.Equal(t, geometry.Pt(50, 10), got.Position)

	c.PointerMove(geometry.Pt(60, -10))
	got, _ = doc.Element(el.ID)
	assert.Equal(t, geometry.Pt(50, 0), got.Position)

	g := c.PointerUp()
	require.NotNil(t, g)
	assert.Equal(t, GestureMove, g.Kind)
	assert.Equal(t, geometry.Pt(20, 20), g.Before.Position)
	assert.Equal(t, geometry.Pt(50, 0), g.After.Position)
	assert.Equal(t, Idle{}, c.State())
}

func TestResizeHandleTakesPrecedence(t *testing.T) {
	c, doc, _ := newController("English")
	b, _ := doc.AddElement(material.KindImage)
	doc.MoveElement(b.ID, geometry.Pt(150, 50))
	// a is on top and its handle sits over b's body
	a, _ := doc.AddElement(material.KindText)
	doc.MoveElement(a.ID, geometry.Pt(0, 0))

	c.PointerDown(geometry.Pt(195, 95))
	require.Equal(t, Resizing{ElementID: a.ID, StartSize: geometry.Sz(200, 100), StartPointer: geometry.Pt(195, 95)}, c.State())

	c.PointerMove(geometry.Pt(195-200, 95-100))
	got, _ := doc.Element(a.ID)
	assert.Equal(t, geometry.Sz(50, 30), got.Size)

	c.PointerMove(geometry.Pt(215, 105))
	got, _ = doc.Element(a.ID)
	assert.Equal(t, geometry.Sz(220, 110), got.Size)

	g := c.PointerUp()
	require.NotNil(t, g)
	assert.Equal(t, GestureResize, g.Kind)
	assert.Equal(t, geometry.Sz(200, 100), g.Before.Size)
	assert.Equal(t, geometry.Sz(220, 110), g.After.Size)
}

func TestCoveredHandleCannotBeGrabbed(t *testing.T) {
	c, doc, reg := newController("English")
	a, _ := doc.AddElement(material.KindText)
	doc.MoveElement(a.ID, geometry.Pt(0, 0))
	b, _ := doc.AddElement(material.KindImage)
	doc.MoveElement(b.ID, geometry.Pt(150, 50))

	c.PointerDown(geometry.Pt(195, 95))
	assert.Equal(t, Dragging{ElementID: b.ID, Offset: geometry.Pt(45, 45)}, c.State())
	c.PointerUp()

	task, _ := doc.AddElement(material.KindDrawingTask)
	doc.MoveElement(task.ID, geometry.Pt(100, 40))
	reg.Mount(doc)

	c.PointerDown(geometry.Pt(195, 95))
	st, ok := c.State().(Painting)
	require.True(t, ok, "got %s", c.State().Name())
	assert.Equal(t, task.ID, st.ElementID)
	c.PointerUp()

	got, _ := doc.Element(a.ID)
	assert.Equal(t, geometry.Sz(200, 100), got.Size)
}

func TestPressOnEmptySpaceDeselects(t *testing.T) {
	c, doc, _ := newController("English")
	el, _ := doc.AddElement(material.KindText)
	doc.Select(el.ID)

	assert.Nil(t, c.PointerDown(geometry.Pt(5, 5)))
	assert.Equal(t, Idle{}, c.State())
	assert.Empty(t, doc.Selected())
}

func TestPaintingOnFullSurface(t *testing.T) {
	c, doc, reg := newController("Art")
	text, _ := doc.AddElement(material.KindText)
	canvas, _ := doc.AddElement(material.KindDrawingCanvas)
	// the canvas is on top of everything, so even a press over the text paints
	doc.Select(text.ID)
	reg.Mount(doc)
	s, _ := reg.Surface(canvas.ID)
	s.Clear()

	c.PointerDown(geometry.Pt(60, 60))
	require.Equal(t, Painting{ElementID: canvas.ID, Color: "#000000", Size: 5}, c.State())

	c.PointerMove(geometry.Pt(300, 60))
	// (200, 60) on screen is (40, 12) in the 80x60 backing buffer
	assert.Equal(t, uint8(255), s.Image().RGBAAt(40, 12).A)

	g := c.PointerUp()
	require.NotNil(t, g)
	assert.Equal(t, GestureStroke, g.Kind)
	assert.Equal(t, Idle{}, c.State())
	assert.False(t, s.Stroking())

	el, _ := doc.Element(canvas.ID)
	data := el.Content.(*material.DrawingContent).CanvasData
	assert.Contains(t, data, "data:image/png;base64,")
	assert.Empty(t, g.Before.Content.(*material.DrawingContent).CanvasData)
	assert.Equal(t, data, g.After.Content.(*material.DrawingContent).CanvasData)

	// the stored snapshot reproduces the surface
	fresh := drawing.NewSurface(80, 60)
	require.NoError(t, fresh.Restore(data))
	assert.Equal(t, s.Image().Pix, fresh.Image().Pix)
}

func TestInlineCanvasNeverDrags(t *testing.T) {
	c, doc, reg := newController("Science")
	canvas, _ := doc.AddElement(material.KindDrawingCanvas)
	require.False(t, canvas.FullSurface())
	reg.Mount(doc)

	c.SelectTool(ToolEraser)
	c.SetBrush("#ff0000", 9)
	c.PointerDown(geometry.Pt(100, 100))
	assert.Equal(t, Painting{ElementID: canvas.ID, Color: "#ff0000", Size: 9, Eraser: true}, c.State())

	// tool changes apply to the next stroke
	c.SelectTool(ToolBrush)
	assert.True(t, c.State().(Painting).Eraser)
	c.PointerUp()

	// the handle of a drawing element still resizes it
	corner := canvas.Bounds().Max().Sub(geometry.Pt(2, 2))
	c.PointerDown(corner)
	assert.IsType(t, Resizing{}, c.State())
}

func TestCanvasWithoutSurfaceStaysIdle(t *testing.T) {
	c, doc, _ := newController("Science")
	canvas, _ := doc.AddElement(material.KindDrawingCanvas)

	c.PointerDown(geometry.Pt(100, 100))
	assert.Equal(t, Idle{}, c.State())
	assert.Equal(t, canvas.ID, doc.Selected())
}

func TestCancelFinalizes(t *testing.T) {
	c, doc, reg := newController("Art")
	canvas, _ := doc.AddElement(material.KindDrawingCanvas)
	reg.Mount(doc)

	c.PointerDown(geometry.Pt(10, 10))
	c.PointerMove(geometry.Pt(100, 100))
	g := c.Cancel()
	require.NotNil(t, g)
	assert.Equal(t, Idle{}, c.State())

	el, _ := doc.Element(canvas.ID)
	assert.NotEmpty(t, el.Content.(*material.DrawingContent).CanvasData)

	assert.Nil(t, c.Cancel())
}

func TestPointerUpAfterLeavingSurface(t *testing.T) {
	c, doc, _ := newController("English")
	el, _ := doc.AddElement(material.KindText)

	c.PointerDown(el.Position.Add(geometry.Pt(5, 5)))
	c.PointerMove(geometry.Pt(-500, -900))
	c.PointerUp()

	assert.Equal(t, Idle{}, c.State())
	got, _ := doc.Element(el.ID)
	assert.Equal(t, geometry.Pt(0, 0), got.Position)
}

func TestElementDeletedMidDrag(t *testing.T) {
	c, doc, _ := newController("English")
	el, _ := doc.AddElement(material.KindText)

	c.PointerDown(el.Position.Add(geometry.Pt(5, 5)))
	doc.DeleteElement(el.ID)
	c.PointerMove(geometry.Pt(300, 300))

	assert.Nil(t, c.PointerUp())
	assert.Equal(t, Idle{}, c.State())
	assert.Equal(t, 0, doc.Len())
}

func TestSetDocumentFinishesGesture(t *testing.T) {
	c, doc, _ := newController("English")
	el, _ := doc.AddElement(material.KindText)
	c.PointerDown(el.Position.Add(geometry.Pt(5, 5)))

	g := c.SetDocument(material.New(material.Metadata{Title: "other"}))
	require.NotNil(t, g)
	assert.Equal(t, el.ID, g.After.ID)
	assert.Equal(t, Idle{}, c.State())
	assert.Equal(t, "other", c.Document().Title)
}

func TestControllerStateMachine(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		subject := rapid.SampledFrom([]string{"Art", "Science"}).Draw(t, "subject")
		c, doc, reg := newController(subject)
		kinds := []material.Kind{material.KindText, material.KindImage, material.KindDrawingCanvas, material.KindPuzzleMatching}
		for i := rapid.IntRange(1, 5).Draw(t, "elements"); i > 0; i-- {
			_, _ = doc.AddElement(rapid.SampledFrom(kinds).Draw(t, "kind"))
		}
		reg.Mount(doc)

		point := func(t *rapid.T) geometry.Point {
			return geometry.Pt(
				rapid.Float64Range(-200, 1000).Draw(t, "x"),
				rapid.Float64Range(-200, 800).Draw(t, "y"),
			)
		}

		t.Repeat(map[string]func(*rapid.T){
			"down": func(t *rapid.T) {
				c.PointerDown(point(t))
			},
			"move": func(t *rapid.T) {
				c.PointerMove(point(t))
			},
			"up": func(t *rapid.T) {
				c.PointerUp()
				if _, ok := c.State().(Idle); !ok {
					t.Fatalf("state after pointer-up: %s", c.State().Name())
				}
			},
			"cancel": func(t *rapid.T) {
				c.Cancel()
				if _, ok := c.State().(Idle); !ok {
					t.Fatalf("state after cancel: %s", c.State().Name())
				}
			},
			"tool": func(t *rapid.T) {
				c.SelectTool(rapid.SampledFrom([]Tool{ToolBrush, ToolEraser}).Draw(t, "tool"))
			},
			"delete": func(t *rapid.T) {
				els := doc.Elements()
				if len(els) == 0 {
					t.Skip("no elements")
				}
				doc.DeleteElement(rapid.SampledFrom(els).Draw(t, "victim").ID)
			},
			"": func(t *rapid.T) {
				switch st := c.State().(type) {
				case Idle, Dragging, Resizing, Painting:
				default:
					t.Fatalf("unexpected state %T", st)
				}
				for _, el := range doc.Elements() {
					if el.FullSurface() {
						continue
					}
					if el.Size.Width < material.MinWidth || el.Size.Height < material.MinHeight {
						t.Fatalf("element %s undersized: %v", el.ID, el.Size)
					}
					if el.Position.X < 0 || el.Position.Y < 0 {
						t.Fatalf("element %s at negative position %v", el.ID, el.Position)
					}
				}
				if _, ok := c.State().(Painting); ok {
					if s, ok := reg.Surface(ElementID(c.State())); ok && !s.Stroking() {
						t.Fatalf("painting without an open stroke")
					}
				}
			},
		})
	})
}
