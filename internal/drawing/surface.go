// Package drawing owns the raster behind drawing elements: freehand paint and
// erase strokes, snapshots to a portable data URI and the outline guides drawn
// on an empty surface.
package drawing

import (
	"image"
	"math"

	"github.com/fogleman/gg"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
)

// Surface is the raster of one drawing element. It is not safe for
// concurrent use; every call is expected to come from the editor event loop.
type Surface struct {
	img *image.RGBA
	dc  *gg.Context

	// scratch receives eraser coverage before it is cut out of img
	scratch *image.RGBA
	mask    *gg.Context

	stroke  *stroke
	painted bool
	outline string
}

type stroke struct {
	color  string
	size   float64
	eraser bool
	last   geometry.Point
}

// NewSurface returns a transparent surface of the given backing resolution.
func NewSurface(width, height int) *Surface {
	width, height = max(width, 1), max(height, 1)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	return &Surface{
		img: img,
		dc:  gg.NewContextForRGBA(img),
	}
}

// Size is the backing resolution in pixels.
func (s *Surface) Size() geometry.Size {
	b := s.img.Bounds()
	return geometry.Sz(float64(b.Dx()), float64(b.Dy()))
}

// Image exposes the live buffer. Callers must not keep it across strokes.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Painted reports whether a stroke has been started since the surface was
// created or last restored.
func (s *Surface) Painted() bool {
	return s.painted
}

// Outline names the guide drawn on the surface, empty if none was drawn.
func (s *Surface) Outline() string {
	return s.outline
}

func (s *Surface) Stroking() bool {
	return s.stroke != nil
}

// BeginStroke seeds a path at p in surface coordinates. Nothing is rendered
// until the path is extended. A stroke already in progress is dropped.
func (s *Surface) BeginStroke(p geometry.Point, color string, size float64, eraser bool) {
	if size <= 0 {
		size = 1
	}
	s.stroke = &stroke{color: color, size: size, eraser: eraser, last: p}
	s.painted = true
}

// ExtendStroke renders the segment from the previous point to p.
func (s *Surface) ExtendStroke(p geometry.Point) {
	st := s.stroke
	if st == nil {
		return
	}
	if st.eraser {
		s.erase(st.last, p, st.size)
	} else {
		s.paint(st.last, p, st.color, st.size)
	}
	st.last = p
}

// EndStroke finishes the current stroke and reports whether one was active.
func (s *Surface) EndStroke() bool {
	active := s.stroke != nil
	s.stroke = nil
	return active
}

func (s *Surface) paint(a, b geometry.Point, color string, size float64) {
	s.dc.SetHexColor(color)
	s.dc.SetLineWidth(size)
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.SetLineJoin(gg.LineJoinRound)
	s.dc.DrawLine(a.X, a.Y, b.X, b.Y)
	s.dc.Stroke()
}

// erase removes coverage along the segment. gg only composites source-over,
// so the segment is rendered into scratch and the result is applied as a
// destination-out: every channel of the premultiplied destination is scaled
// by the inverse of the mask alpha.
func (s *Surface) erase(a, b geometry.Point, size float64) {
	if s.scratch == nil {
		s.scratch = image.NewRGBA(s.img.Bounds())
		s.mask = gg.NewContextForRGBA(s.scratch)
	}
	s.mask.SetRGBA(1, 1, 1, 1)
	s.mask.SetLineWidth(size)
	s.mask.SetLineCap(gg.LineCapRound)
	s.mask.SetLineJoin(gg.LineJoinRound)
	s.mask.DrawLine(a.X, a.Y, b.X, b.Y)
	s.mask.Stroke()

	pad := size/2 + 2
	r := image.Rect(
		int(math.Floor(math.Min(a.X, b.X)-pad)),
		int(math.Floor(math.Min(a.Y, b.Y)-pad)),
		int(math.Ceil(math.Max(a.X, b.X)+pad)),
		int(math.Ceil(math.Max(a.Y, b.Y)+pad)),
	).Intersect(s.img.Bounds())

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			mi := s.scratch.PixOffset(x, y)
			m := uint32(s.scratch.Pix[mi+3])
			if m == 0 {
				continue
			}
			di := s.img.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				s.img.Pix[di+c] = uint8(uint32(s.img.Pix[di+c]) * (255 - m) / 255)
			}
			s.scratch.Pix[mi], s.scratch.Pix[mi+1], s.scratch.Pix[mi+2], s.scratch.Pix[mi+3] = 0, 0, 0, 0
		}
	}
}

// Clear makes every pixel transparent and forgets the outline.
func (s *Surface) Clear() {
	clear(s.img.Pix)
	s.outline = ""
}

// DrawOutline draws the guide matching instructions and returns its name.
func (s *Surface) DrawOutline(instructions string) string {
	o := OutlineFor(instructions)
	s.dc.Push()
	s.dc.SetHexColor(outlineColor)
	s.dc.SetLineWidth(outlineWidth)
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.SetLineJoin(gg.LineJoinRound)
	size := s.Size()
	o.draw(s.dc, size.Width, size.Height)
	s.dc.Pop()
	s.outline = o.Name
	return o.Name
}

// load replaces the buffer contents with img, which must match the backing
// resolution.
func (s *Surface) load(img *image.RGBA) {
	copy(s.img.Pix, img.Pix)
	s.outline = ""
}
