package drawing

import (
	"math"
	"strings"

	"github.com/fogleman/gg"
)

const (
	outlineColor = "#9e9e9e"
	outlineWidth = 3
)

// Outline is a procedural coloring guide drawn onto an empty surface.
type Outline struct {
	Name    string
	Keyword string
	draw    func(dc *gg.Context, w, h float64)
}

// outlines is matched in order against the instructions; the first keyword
// contained in them wins.
var outlines = []Outline{
	{Name: "flag", Keyword: "flag", draw: drawFlag},
	{Name: "lion", Keyword: "lion", draw: drawLion},
	{Name: "house", Keyword: "house", draw: drawHouse},
	{Name: "tree", Keyword: "tree", draw: drawTree},
	{Name: "car", Keyword: "car", draw: drawCar},
	{Name: "sun", Keyword: "sun", draw: drawSun},
	{Name: "fish", Keyword: "fish", draw: drawFish},
	{Name: "flower", Keyword: "flower", draw: drawFlower},
}

var fallbackOutline = Outline{Name: "rectangle", draw: drawRectangle}

// OutlineFor picks the guide for instructions with a case-insensitive
// substring match, falling back to a centered rectangle.
func OutlineFor(instructions string) Outline {
	text := strings.ToLower(instructions)
	for _, o := range outlines {
		if strings.Contains(text, o.Keyword) {
			return o
		}
	}
	return fallbackOutline
}

func drawRectangle(dc *gg.Context, w, h float64) {
	dc.DrawRectangle(w*0.25, h*0.25, w*0.5, h*0.5)
	dc.Stroke()
}

func drawFlag(dc *gg.Context, w, h float64) {
	poleX := w * 0.2
	dc.DrawLine(poleX, h*0.1, poleX, h*0.9)
	dc.Stroke()

	top, fh, fw := h*0.15, h*0.4, w*0.55
	dc.DrawRectangle(poleX, top, fw, fh)
	dc.Stroke()
	for i := 1; i < 3; i++ {
		y := top + fh*float64(i)/3
		dc.DrawLine(poleX, y, poleX+fw, y)
		dc.Stroke()
	}
}

func drawLion(dc *gg.Context, w, h float64) {
	cx, cy := w/2, h/2
	r := math.Min(w, h) * 0.18

	// mane
	const tufts = 12
	for i := 0; i < tufts; i++ {
		a := 2 * math.Pi * float64(i) / tufts
		dc.DrawCircle(cx+math.Cos(a)*r*1.5, cy+math.Sin(a)*r*1.5, r*0.5)
		dc.Stroke()
	}
	dc.DrawCircle(cx, cy, r)
	dc.Stroke()

	dc.DrawCircle(cx-r*0.4, cy-r*0.25, r*0.1)
	dc.DrawCircle(cx+r*0.4, cy-r*0.25, r*0.1)
	dc.Stroke()
	dc.DrawEllipticalArc(cx, cy+r*0.3, r*0.4, r*0.25, 0, math.Pi)
	dc.Stroke()
}

func drawHouse(dc *gg.Context, w, h float64) {
	left, right := w*0.25, w*0.75
	wallTop, floor := h*0.45, h*0.85
	dc.DrawRectangle(left, wallTop, right-left, floor-wallTop)
	dc.Stroke()

	dc.MoveTo(left-w*0.05, wallTop)
	dc.LineTo(w/2, h*0.15)
	dc.LineTo(right+w*0.05, wallTop)
	dc.ClosePath()
	dc.Stroke()

	dw, dh := w*0.1, h*0.22
	dc.DrawRectangle(w/2-dw/2, floor-dh, dw, dh)
	dc.Stroke()
	dc.DrawRectangle(left+w*0.06, wallTop+h*0.08, w*0.1, h*0.1)
	dc.DrawRectangle(right-w*0.16, wallTop+h*0.08, w*0.1, h*0.1)
	dc.Stroke()
}

func drawTree(dc *gg.Context, w, h float64) {
	tw := w * 0.08
	dc.DrawRectangle(w/2-tw/2, h*0.55, tw, h*0.35)
	dc.Stroke()

	r := math.Min(w, h) * 0.18
	dc.DrawCircle(w/2, h*0.35, r)
	dc.DrawCircle(w/2-r*0.9, h*0.45, r*0.8)
	dc.DrawCircle(w/2+r*0.9, h*0.45, r*0.8)
	dc.Stroke()
}

func drawCar(dc *gg.Context, w, h float64) {
	body := h * 0.6
	dc.DrawRectangle(w*0.15, body-h*0.12, w*0.7, h*0.15)
	dc.Stroke()

	dc.MoveTo(w*0.3, body-h*0.12)
	dc.LineTo(w*0.38, body-h*0.28)
	dc.LineTo(w*0.62, body-h*0.28)
	dc.LineTo(w*0.7, body-h*0.12)
	dc.Stroke()

	r := math.Min(w, h) * 0.07
	dc.DrawCircle(w*0.3, body+h*0.04, r)
	dc.DrawCircle(w*0.7, body+h*0.04, r)
	dc.Stroke()
}

func drawSun(dc *gg.Context, w, h float64) {
	cx, cy := w/2, h/2
	r := math.Min(w, h) * 0.2
	dc.DrawCircle(cx, cy, r)
	dc.Stroke()

	const rays = 12
	for i := 0; i < rays; i++ {
		a := 2 * math.Pi * float64(i) / rays
		dc.DrawLine(cx+math.Cos(a)*r*1.2, cy+math.Sin(a)*r*1.2, cx+math.Cos(a)*r*1.7, cy+math.Sin(a)*r*1.7)
		dc.Stroke()
	}
}

func drawFish(dc *gg.Context, w, h float64) {
	cx, cy := w*0.45, h/2
	rx, ry := w*0.22, h*0.15
	dc.DrawEllipse(cx, cy, rx, ry)
	dc.Stroke()

	dc.MoveTo(cx+rx, cy)
	dc.LineTo(cx+rx+w*0.12, cy-ry)
	dc.LineTo(cx+rx+w*0.12, cy+ry)
	dc.ClosePath()
	dc.Stroke()

	dc.DrawCircle(cx-rx*0.55, cy-ry*0.2, math.Min(w, h)*0.015)
	dc.Stroke()
}

func drawFlower(dc *gg.Context, w, h float64) {
	cx, cy := w/2, h*0.4
	r := math.Min(w, h) * 0.07

	dc.DrawLine(cx, cy+r, cx, h*0.9)
	dc.Stroke()

	const petals = 6
	for i := 0; i < petals; i++ {
		a := 2 * math.Pi * float64(i) / petals
		dc.DrawCircle(cx+math.Cos(a)*r*2, cy+math.Sin(a)*r*2, r)
		dc.Stroke()
	}
	dc.DrawCircle(cx, cy, r)
	dc.Stroke()
}
