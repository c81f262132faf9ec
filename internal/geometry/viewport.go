package geometry

// Viewport maps a grid of terminal cells onto a window of document space.
// Screen is measured in cells, Window in document pixels; panning moves the
// window and leaves the screen where it is.
type Viewport struct {
	Screen Rect
	Window Rect
}

// NewViewport builds a viewport for a cols x rows screen where each cell
// covers cellW x cellH document pixels.
func NewViewport(cols, rows int, cellW, cellH float64) Viewport {
	return Viewport{
		Screen: R(0, 0, float64(cols), float64(rows)),
		Window: R(0, 0, float64(cols)*cellW, float64(rows)*cellH),
	}
}

// ToDocument maps the cell at (col, row) to document coordinates.
func (v Viewport) ToDocument(col, row int) Point {
	p := ToSurface(Pt(float64(col), float64(row)), v.Screen, v.Window.Size())
	return p.Add(v.Window.Min())
}

// ToCell maps a document point back to the cell that displays it.
func (v Viewport) ToCell(p Point) (int, int) {
	q := FromSurface(p.Sub(v.Window.Min()), v.Screen, v.Window.Size())
	return int(q.X), int(q.Y)
}

// CellSize reports how many document pixels one cell covers on each axis.
func (v Viewport) CellSize() Size {
	if v.Screen.Empty() {
		return Size{}
	}
	return Size{
		Width:  v.Window.Width / v.Screen.Width,
		Height: v.Window.Height / v.Screen.Height,
	}
}

// Pan shifts the window by whole cells. The window never moves above or left
// of the document origin.
func (v Viewport) Pan(dCols, dRows int) Viewport {
	cell := v.CellSize()
	v.Window.X += float64(dCols) * cell.Width
	v.Window.Y += float64(dRows) * cell.Height
	if v.Window.X < 0 {
		v.Window.X = 0
	}
	if v.Window.Y < 0 {
		v.Window.Y = 0
	}
	return v
}

// Resize keeps the current pan offset and cell scale while changing the
// number of visible cells.
func (v Viewport) Resize(cols, rows int) Viewport {
	cell := v.CellSize()
	if cell.Empty() {
		return v
	}
	v.Screen = R(0, 0, float64(cols), float64(rows))
	v.Window.Width = float64(cols) * cell.Width
	v.Window.Height = float64(rows) * cell.Height
	return v
}
