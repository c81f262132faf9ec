package main

import (
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
)

func (m *model) handleNavigation(key string, speed int) {
	if m.zPanMode {
		m.handlePan(key, speed)
		return
	}
	m.nudgeSelected(key, speed)
}

func (m *model) handlePan(key string, speed int) {
	step := panStep * speed
	switch key {
	case "h", "left", "H", "shift+left":
		m.buf.viewport = m.buf.viewport.Pan(-step, 0)
	case "l", "right", "L", "shift+right":
		m.buf.viewport = m.buf.viewport.Pan(step, 0)
	case "k", "up", "K", "shift+up":
		m.buf.viewport = m.buf.viewport.Pan(0, -step)
	case "j", "down", "J", "shift+down":
		m.buf.viewport = m.buf.viewport.Pan(0, step)
	}
}

// nudgeSelected moves the selected element by whole cells.
func (m *model) nudgeSelected(key string, speed int) {
	el, ok := m.buf.doc.Element(m.buf.doc.Selected())
	if !ok || el.FullSurface() {
		return
	}
	cell := m.buf.viewport.CellSize()
	var d geometry.Point
	switch key {
	case "h", "left", "H", "shift+left":
		d.X = -cell.Width
	case "l", "right", "L", "shift+right":
		d.X = cell.Width
	case "k", "up", "K", "shift+up":
		d.Y = -cell.Height
	case "j", "down", "J", "shift+down":
		d.Y = cell.Height
	}
	d.X *= float64(speed)
	d.Y *= float64(speed)
	m.buf.doc.MoveElement(el.ID, el.Position.Add(d))
	after, _ := m.buf.doc.Element(el.ID)
	if after.Position != el.Position {
		m.recordAction(Action{Type: ActionMoveElement, Before: el.Clone(), After: after.Clone()})
	}
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

// cellPoint maps a terminal cell to the document point at its center.
func (m *model) cellPoint(col, row int) geometry.Point {
	cell := m.buf.viewport.CellSize()
	return m.buf.viewport.ToDocument(col, row).Add(geometry.Pt(cell.Width/2, cell.Height/2))
}
