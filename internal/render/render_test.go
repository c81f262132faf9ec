package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/drawing"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/interaction"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/player"
)

var surface = geometry.R(0, 0, 800, 600)

func TestEveryKindHasADescriber(t *testing.T) {
	for _, k := range material.Kinds {
		_, ok := describers[k]
		assert.True(t, ok, k)
		assert.NotEmpty(t, describe(material.DefaultContent(k)), k)
	}
}

func TestBuildEditor(t *testing.T) {
	doc := material.New(material.Metadata{Title: "Colours", Subject: "Art"})
	text, _ := doc.AddElement(material.KindText)
	canvas, _ := doc.AddElement(material.KindDrawingCanvas)
	doc.Select(text.ID)

	tree := Build(doc, interaction.Dragging{ElementID: text.ID}, Options{
		Mode:       ModeEditor,
		Surface:    surface,
		HandleSize: 12,
	})
	assert.Equal(t, "dragging", tree.State)
	assert.Equal(t, "Colours", tree.Title)
	require.Len(t, tree.Nodes, 2)

	n := tree.Nodes[0]
	assert.Equal(t, text.ID, n.ElementID)
	assert.Equal(t, "Text", n.Title)
	assert.Equal(t, []string{"Enter text here"}, n.Lines)
	assert.True(t, n.Selected)
	assert.True(t, n.Active)
	assert.Equal(t, geometry.R(238, 138, 12, 12), n.Handle)

	n = tree.Nodes[1]
	assert.Equal(t, canvas.ID, n.ElementID)
	assert.True(t, n.FullSurface)
	assert.True(t, n.Raster)
	assert.Equal(t, surface, n.Bounds)
	assert.True(t, n.Handle.Empty())
}

func TestBuildViewer(t *testing.T) {
	doc := material.New(material.Metadata{Title: "Animals"})
	el, _ := doc.AddElement(material.KindPuzzleMatching)
	doc.Select(el.ID)

	logger, _ := test.NewNullLogger()
	p := player.New(doc, player.Config{Logger: logger})
	tree := Build(doc, nil, Options{Mode: ModeViewer, Surface: surface, HandleSize: 12, Boards: p})

	require.Len(t, tree.Nodes, 1)
	n := tree.Nodes[0]
	assert.False(t, n.Selected)
	assert.True(t, n.Handle.Empty())
	require.Len(t, n.Pieces, 6)
	assert.Equal(t, PieceSlot, n.Pieces[0].Kind)
	assert.Equal(t, PieceItem, n.Pieces[5].Kind)
}

func TestBuildDoesNotMutate(t *testing.T) {
	doc := material.New(material.Metadata{Title: "x"})
	_, _ = doc.AddElement(material.KindQuizQuestion)
	before, err := material.Encode(doc)
	require.NoError(t, err)

	Build(doc, interaction.Idle{}, Options{Surface: surface, HandleSize: 12})
	after, err := material.Encode(doc)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

type surfaceMap map[string]*drawing.Surface

func (m surfaceMap) Surface(id string) (*drawing.Surface, bool) {
	s, ok := m[id]
	return s, ok
}

func TestRasterize(t *testing.T) {
	doc := material.New(material.Metadata{Title: "x", Subject: "Art"})
	canvas, _ := doc.AddElement(material.KindDrawingCanvas)
	text, _ := doc.AddElement(material.KindText)
	doc.MoveElement(text.ID, geometry.Pt(900, 700))

	s := drawing.NewSurface(80, 60)
	s.BeginStroke(geometry.Pt(0, 30), "#ff0000", 10, false)
	s.ExtendStroke(geometry.Pt(80, 30))
	s.EndStroke()

	tree := Build(doc, nil, Options{Mode: ModeViewer, Surface: surface})
	img, err := Rasterize(tree, surfaceMap{canvas.ID: s})
	require.NoError(t, err)

	// the text element overflows the surface and is still exported
	assert.Equal(t, 900+200+exportPadding, img.Bounds().Dx())
	assert.Equal(t, 700+100+exportPadding, img.Bounds().Dy())

	// the 80x60 stroke is stretched 10x over the 800x600 surface
	r, g, b, _ := img.At(400, 300).RGBA()
	assert.InDelta(t, 0xffff, r, 0x200)
	assert.InDelta(t, 0, g, 0x200)
	assert.InDelta(t, 0, b, 0x200)
}

func TestExportPNG(t *testing.T) {
	doc := material.New(material.Metadata{Title: "x"})
	_, _ = doc.AddElement(material.KindPuzzleSequencing)
	tree := Build(doc, nil, Options{Mode: ModeEditor, Surface: surface, HandleSize: 12})

	path := filepath.Join(t.TempDir(), "material.png")
	require.NoError(t, ExportPNG(path, tree, nil))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, Extent(tree).Size(), geometry.Sz(float64(img.Bounds().Dx()), float64(img.Bounds().Dy())))
}
