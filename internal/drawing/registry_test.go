package drawing

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
)

func newTestRegistry(t *testing.T) (*Registry, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	return NewRegistry(RegistryConfig{Width: 80, Height: 60, Logger: logger}), hook
}

func TestMountDrawsOutlines(t *testing.T) {
	r, _ := newTestRegistry(t)
	doc := material.New(material.Metadata{Title: "x", Subject: "Maths"})
	task, err := doc.AddElement(material.KindDrawingTask)
	require.NoError(t, err)
	canvas, err := doc.AddElement(material.KindDrawingCanvas)
	require.NoError(t, err)
	_, err = doc.AddElement(material.KindText)
	require.NoError(t, err)

	r.Mount(doc)
	require.Equal(t, 2, r.Len())

	s, ok := r.Surface(task.ID)
	require.True(t, ok)
	assert.Equal(t, geometry.Sz(80, 60), s.Size())
	assert.Equal(t, "house", s.Outline())

	s, ok = r.Surface(canvas.ID)
	require.True(t, ok)
	assert.Equal(t, canvas.Size, s.Size())
	assert.Equal(t, "rectangle", s.Outline())

	// surfaces are independent buffers
	other, _ := r.Surface(task.ID)
	assert.NotSame(t, s.Image(), other.Image())

	doc.DeleteElement(canvas.ID)
	r.Mount(doc)
	_, ok = r.Surface(canvas.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestMountRescalesWhenLayoutChanges(t *testing.T) {
	r, _ := newTestRegistry(t)
	doc := material.New(material.Metadata{Title: "x", Subject: "Science"})
	painted, _ := doc.AddElement(material.KindDrawingCanvas)
	r.Mount(doc)

	s, _ := r.Surface(painted.ID)
	require.Equal(t, geometry.Sz(400, 300), s.Size())
	s.BeginStroke(geometry.Pt(0, 0), "#ff0000", 1, false)
	s.EndStroke()
	s.dc.SetRGB(1, 0, 0)
	s.dc.DrawRectangle(0, 0, 400, 300)
	s.dc.Fill()

	doc.SetSubject("Art")
	r.Mount(doc)
	full, _ := r.Surface(painted.ID)
	assert.NotSame(t, s, full)
	assert.Equal(t, geometry.Sz(80, 60), full.Size())
	px := full.Image().RGBAAt(40, 30)
	assert.InDelta(t, 255, px.R, 1)
	assert.InDelta(t, 255, px.A, 1)

	// unchanged layout keeps the same surface
	r.Mount(doc)
	again, _ := r.Surface(painted.ID)
	assert.Same(t, full, again)
}

func TestMountRedrawsGuideWhenLayoutChanges(t *testing.T) {
	r, _ := newTestRegistry(t)
	doc := material.New(material.Metadata{Title: "x", Subject: "Science"})
	canvas, _ := doc.AddElement(material.KindDrawingCanvas)
	r.Mount(doc)

	doc.SetSubject("Art")
	r.Mount(doc)
	s, _ := r.Surface(canvas.ID)
	assert.Equal(t, geometry.Sz(80, 60), s.Size())
	assert.Equal(t, "rectangle", s.Outline())

	doc.SetSubject("Science")
	r.Mount(doc)
	s, _ = r.Surface(canvas.ID)
	assert.Equal(t, geometry.Sz(400, 300), s.Size())
	assert.Equal(t, "rectangle", s.Outline())
}

func TestDecodeAndApply(t *testing.T) {
	r, hook := newTestRegistry(t)

	src := NewSurface(80, 60)
	src.dc.SetRGB(0, 0, 1)
	src.dc.DrawRectangle(10, 10, 20, 20)
	src.dc.Fill()
	uri, err := src.Snapshot()
	require.NoError(t, err)

	doc := material.New(material.Metadata{Title: "x", Subject: "Art"})
	good, _ := doc.AddElement(material.KindDrawingCanvas)
	bad := doc.InsertElement(doc.Len(), material.Element{Kind: material.KindDrawingTask})
	require.NoError(t, doc.UpdateElement(good.ID, map[string]any{"canvasData": uri}))
	require.NoError(t, doc.UpdateElement(bad.ID, map[string]any{"canvasData": "data:image/png;base64,AAAA"}))

	r.Mount(doc)
	s, _ := r.Surface(good.ID)
	assert.Zero(t, opaquePixels(s.Image()))

	results, err := r.Decode(doc)(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	r.Apply(results)

	assert.Equal(t, src.Image().Pix, s.Image().Pix)

	fallback, _ := r.Surface(bad.ID)
	assert.Equal(t, "house", fallback.Outline())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, bad.ID, hook.LastEntry().Data["element"])

	// nothing left to decode
	results, err = r.Decode(doc)(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestApplyKeepsStrokesMadeWhileDecoding(t *testing.T) {
	r, _ := newTestRegistry(t)

	src := NewSurface(80, 60)
	src.dc.SetRGB(1, 0, 0)
	src.dc.DrawRectangle(0, 0, 80, 60)
	src.dc.Fill()
	uri, err := src.Snapshot()
	require.NoError(t, err)

	doc := material.New(material.Metadata{Title: "x", Subject: "Art"})
	el, _ := doc.AddElement(material.KindDrawingCanvas)
	require.NoError(t, doc.UpdateElement(el.ID, map[string]any{"canvasData": uri}))

	r.Mount(doc)
	decode := r.Decode(doc)

	s, _ := r.Surface(el.ID)
	s.BeginStroke(geometry.Pt(0, 0), "#00ff00", 4, false)
	s.ExtendStroke(geometry.Pt(10, 10))
	s.EndStroke()
	before := append([]uint8(nil), s.Image().Pix...)

	results, err := decode(context.Background())
	require.NoError(t, err)
	r.Apply(results)
	assert.Equal(t, before, s.Image().Pix)
}

func TestDecodeCancelled(t *testing.T) {
	r, _ := newTestRegistry(t)
	doc := material.New(material.Metadata{Title: "x", Subject: "Art"})
	el, _ := doc.AddElement(material.KindDrawingCanvas)
	require.NoError(t, doc.UpdateElement(el.ID, map[string]any{"canvasData": "data:image/png;base64,AAAA"}))
	r.Mount(doc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Decode(doc)(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
