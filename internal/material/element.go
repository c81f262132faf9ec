package material

import (
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
)

// Element is one placed piece of content. Position is the top-left corner in
// document space.
type Element struct {
	ID       string
	Kind     Kind
	Position geometry.Point
	Size     geometry.Size
	Content  Content

	fullSurface bool
}

// FullSurface reports whether the element covers the whole surface, in which
// case Position and Size are ignored by the renderer.
func (e Element) FullSurface() bool {
	return e.fullSurface
}

func (e Element) Bounds() geometry.Rect {
	return geometry.RectAt(e.Position, e.Size)
}

// Clone returns a copy that shares no content with e.
func (e Element) Clone() Element {
	cp := e
	if e.Content != nil {
		cp.Content = CloneContent(e.Content)
	}
	return cp
}

func clampSize(s geometry.Size) geometry.Size {
	if s.Width < MinWidth {
		s.Width = MinWidth
	}
	if s.Height < MinHeight {
		s.Height = MinHeight
	}
	return s
}
