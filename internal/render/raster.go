package render

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/drawing"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
)

// Surfaces resolves the raster of a drawing element.
type Surfaces interface {
	Surface(elementID string) (*drawing.Surface, bool)
}

const (
	exportPadding = 20
	fontSize      = 12.0
	lineHeight    = 16.0
)

var (
	borderColor   = color.Black
	selectedColor = color.RGBA{R: 0x1e, G: 0x88, B: 0xe5, A: 0xff}
	flashColor    = color.RGBA{R: 0xe5, G: 0x39, B: 0x35, A: 0xff}
	placedColor   = color.RGBA{R: 0x43, G: 0xa0, B: 0x47, A: 0xff}
)

// Extent is the document-space area Rasterize draws: the surface plus every
// element that overflows it, with padding on the right and bottom.
func Extent(tree Tree) geometry.Rect {
	maxX, maxY := tree.Surface.Max().X, tree.Surface.Max().Y
	for _, n := range tree.Nodes {
		maxX = math.Max(maxX, n.Bounds.Max().X)
		maxY = math.Max(maxY, n.Bounds.Max().Y)
	}
	return geometry.R(0, 0, math.Ceil(maxX)+exportPadding, math.Ceil(maxY)+exportPadding)
}

// Rasterize draws tree at one pixel per document unit.
func Rasterize(tree Tree, surfaces Surfaces) (image.Image, error) {
	ext := Extent(tree)
	dc := gg.NewContext(int(ext.Width), int(ext.Height))
	dc.SetColor(color.White)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parse font")
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	for _, n := range tree.Nodes {
		drawNode(dc, tree.Mode, n, surfaces)
	}
	return dc.Image(), nil
}

// ExportPNG rasterizes tree and writes it to filename.
func ExportPNG(filename string, tree Tree, surfaces Surfaces) error {
	img, err := Rasterize(tree, surfaces)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(filename, img); err != nil {
		return errors.Wrapf(err, "save %s", filename)
	}
	return nil
}

func drawNode(dc *gg.Context, mode Mode, n Node, surfaces Surfaces) {
	b := n.Bounds
	if b.Empty() {
		return
	}

	if n.Raster && surfaces != nil {
		if s, ok := surfaces.Surface(n.ElementID); ok {
			drawSurface(dc, s, b)
		}
	}

	dc.SetLineWidth(1)
	dc.SetColor(borderColor)
	if n.Selected || n.Active {
		dc.SetLineWidth(2)
		dc.SetColor(selectedColor)
	}
	if !(n.FullSurface && mode == ModeViewer) {
		dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
		dc.Stroke()
	}

	dc.SetColor(borderColor)
	y := b.Y + lineHeight
	dc.DrawString(n.Title, b.X+4, y)
	if len(n.Pieces) > 0 {
		drawPieces(dc, n.Pieces)
	} else {
		for _, line := range n.Lines {
			y += lineHeight
			if y > b.Max().Y {
				break
			}
			dc.DrawString(line, b.X+4, y)
		}
	}

	if !n.Handle.Empty() {
		dc.SetColor(selectedColor)
		dc.DrawRectangle(n.Handle.X, n.Handle.Y, n.Handle.Width, n.Handle.Height)
		dc.Fill()
	}
}

// drawSurface stretches the raster over bounds, the same per-axis scale the
// pointer mapping uses.
func drawSurface(dc *gg.Context, s *drawing.Surface, b geometry.Rect) {
	size := s.Size()
	dc.Push()
	dc.Translate(b.X, b.Y)
	dc.Scale(b.Width/size.Width, b.Height/size.Height)
	dc.DrawImage(s.Image(), 0, 0)
	dc.Pop()
}

func drawPieces(dc *gg.Context, pieces []Piece) {
	for _, p := range pieces {
		r := p.Bounds
		switch {
		case p.Flashing:
			dc.SetColor(flashColor)
		case p.Placed:
			dc.SetColor(placedColor)
		default:
			dc.SetColor(borderColor)
		}
		dc.SetLineWidth(1)
		if p.Kind == PieceSlot {
			dc.SetDash(4, 3)
		}
		dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		dc.Stroke()
		dc.SetDash()
		dc.DrawStringAnchored(p.Label, r.Center().X, r.Center().Y, 0.5, 0.5)
	}
}
