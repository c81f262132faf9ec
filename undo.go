package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/interaction"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
)

func (m *model) recordAction(action Action) {
	m.buf.undoStack = append(m.buf.undoStack, action)
	m.buf.redoStack = m.buf.redoStack[:0]
	m.buf.dirty = true
}

// recordGesture turns a finished pointer gesture into an undo entry.
func (m *model) recordGesture(g *interaction.Gesture) {
	if g == nil {
		return
	}
	var t ActionType
	switch g.Kind {
	case interaction.GestureMove:
		if g.Before.Position == g.After.Position {
			return
		}
		t = ActionMoveElement
	case interaction.GestureResize:
		if g.Before.Size == g.After.Size {
			return
		}
		t = ActionResizeElement
	case interaction.GestureStroke:
		t = ActionStroke
	default:
		return
	}
	m.recordAction(Action{Type: t, Before: g.Before, After: g.After})
}

func (m *model) undo() tea.Cmd {
	if len(m.buf.undoStack) == 0 {
		return nil
	}
	m.recordGesture(m.ctrl.Cancel())

	last := len(m.buf.undoStack) - 1
	action := m.buf.undoStack[last]
	m.buf.undoStack = m.buf.undoStack[:last]

	doc := m.buf.doc
	switch action.Type {
	case ActionAddElement:
		doc.DeleteElement(action.After.ID)
	case ActionDeleteElement:
		doc.InsertElement(action.Index, action.Before)
	case ActionMoveElement:
		doc.MoveElement(action.Before.ID, action.Before.Position)
	case ActionResizeElement:
		doc.ResizeElement(action.Before.ID, action.Before.Size)
	case ActionStroke, ActionUpdateElement:
		doc.SetContent(action.Before.ID, action.Before.Content)
		m.restoreSurface(action.Before)
	}

	m.buf.redoStack = append(m.buf.redoStack, action)
	m.buf.dirty = true
	return m.mountSurfaces()
}

func (m *model) redo() tea.Cmd {
	if len(m.buf.redoStack) == 0 {
		return nil
	}
	m.recordGesture(m.ctrl.Cancel())

	last := len(m.buf.redoStack) - 1
	action := m.buf.redoStack[last]
	m.buf.redoStack = m.buf.redoStack[:last]

	doc := m.buf.doc
	switch action.Type {
	case ActionAddElement:
		doc.InsertElement(action.Index, action.After)
	case ActionDeleteElement:
		doc.DeleteElement(action.Before.ID)
	case ActionMoveElement:
		doc.MoveElement(action.After.ID, action.After.Position)
	case ActionResizeElement:
		doc.ResizeElement(action.After.ID, action.After.Size)
	case ActionStroke, ActionUpdateElement:
		doc.SetContent(action.After.ID, action.After.Content)
		m.restoreSurface(action.After)
	}

	m.buf.undoStack = append(m.buf.undoStack, action)
	m.buf.dirty = true
	return m.mountSurfaces()
}

// restoreSurface puts the raster of a drawing element back to the snapshot
// stored in el, or to its outline guide when el has none.
func (m *model) restoreSurface(el material.Element) {
	c, ok := el.Content.(*material.DrawingContent)
	if !ok {
		return
	}
	s, ok := m.registry.Surface(el.ID)
	if !ok {
		return
	}
	if c.CanvasData != "" {
		if err := s.Restore(c.CanvasData); err == nil {
			return
		}
	}
	s.Clear()
	s.DrawOutline(c.Instructions)
}
