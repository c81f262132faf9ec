// Package geometry holds the coordinate types shared by the editor, the
// drawing surfaces and the puzzle runtime, plus the conversions between
// on-screen pointer positions and the pixel space of a backing buffer.
package geometry

import "math"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// ClampMin returns p with both coordinates raised to at least 0.
func (p Point) ClampMin() Point {
	return Point{X: math.Max(p.X, 0), Y: math.Max(p.Y, 0)}
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func Sz(w, h float64) Size {
	return Size{Width: w, Height: h}
}

func (s Size) Add(p Point) Size {
	return Size{Width: s.Width + p.X, Height: s.Height + p.Y}
}

func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

func RectAt(p Point, s Size) Rect {
	return Rect{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

func (r Rect) Min() Point  { return Point{X: r.X, Y: r.Y} }
func (r Rect) Max() Point  { return Point{X: r.X + r.Width, Y: r.Y + r.Height} }
func (r Rect) Size() Size  { return Size{Width: r.Width, Height: r.Height} }
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside r. The right and bottom edges are
// inclusive so a pointer released exactly on a border still hits.
func (r Rect) Contains(p Point) bool {
	if r.Empty() {
		return false
	}
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Corner returns the square of side n sitting inside the bottom-right
// corner of r. Resize handles are hit-tested against it.
func (r Rect) Corner(n float64) Rect {
	return Rect{X: r.X + r.Width - n, Y: r.Y + r.Height - n, Width: n, Height: n}
}

// ToSurface converts a pointer position into the pixel space of a buffer
// whose on-screen footprint is bounds and whose backing resolution is
// backing. Each axis is scaled on its own because a surface is usually
// stretched non-uniformly to fit its box.
func ToSurface(pointer Point, bounds Rect, backing Size) Point {
	if bounds.Empty() {
		return Point{}
	}
	scaleX := backing.Width / bounds.Width
	scaleY := backing.Height / bounds.Height
	return Point{
		X: (pointer.X - bounds.X) * scaleX,
		Y: (pointer.Y - bounds.Y) * scaleY,
	}
}

// FromSurface is the inverse of ToSurface.
func FromSurface(p Point, bounds Rect, backing Size) Point {
	if backing.Empty() {
		return bounds.Min()
	}
	return Point{
		X: bounds.X + p.X*bounds.Width/backing.Width,
		Y: bounds.Y + p.Y*bounds.Height/backing.Height,
	}
}
