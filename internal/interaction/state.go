package interaction

import "github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"

// State is the one active interaction. It is always exactly one of Idle,
// Dragging, Resizing or Painting.
type State interface {
	Name() string
	isState()
}

type Idle struct{}

// Dragging moves an element. Offset is the pointer position relative to the
// element origin at pointer-down, so the element does not jump.
type Dragging struct {
	ElementID string
	Offset    geometry.Point
}

type Resizing struct {
	ElementID    string
	StartSize    geometry.Size
	StartPointer geometry.Point
}

// Painting feeds a stroke into the element's drawing surface. The brush is
// captured at pointer-down; tool changes apply to the next stroke.
type Painting struct {
	ElementID string
	Color     string
	Size      float64
	Eraser    bool
}

func (Idle) Name() string     { return "idle" }
func (Dragging) Name() string { return "dragging" }
func (Resizing) Name() string { return "resizing" }
func (Painting) Name() string { return "painting" }

func (Idle) isState()     {}
func (Dragging) isState() {}
func (Resizing) isState() {}
func (Painting) isState() {}

// ElementID returns the element the state acts on, empty when idle.
func ElementID(s State) string {
	switch s := s.(type) {
	case Dragging:
		return s.ElementID
	case Resizing:
		return s.ElementID
	case Painting:
		return s.ElementID
	}
	return ""
}

type Tool int

const (
	ToolBrush Tool = iota
	ToolEraser
)

func (t Tool) String() string {
	switch t {
	case ToolBrush:
		return "brush"
	case ToolEraser:
		return "eraser"
	default:
		return "unknown"
	}
}
