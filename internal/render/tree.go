// Package render turns a document and the current interaction into a flat
// visual tree, and rasterizes that tree for export. Build has no side
// effects; the terminal view and the PNG exporter both draw from its output.
package render

import (
	"fmt"
	"strings"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/interaction"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/puzzle"
)

type Mode int

const (
	ModeEditor Mode = iota
	ModeViewer
)

func (m Mode) String() string {
	if m == ModeViewer {
		return "viewer"
	}
	return "editor"
}

type PieceKind int

const (
	PieceItem PieceKind = iota
	PieceSlot
)

// Piece is a draggable item or a drop slot of a puzzle shown in viewer mode.
type Piece struct {
	Kind     PieceKind
	ID       string
	Label    string
	Bounds   geometry.Rect
	Placed   bool
	Flashing bool
	Dragged  bool
}

type Node struct {
	ElementID   string
	Kind        material.Kind
	Bounds      geometry.Rect
	Title       string
	Lines       []string
	FullSurface bool
	// Raster is set for elements that own a drawing surface.
	Raster   bool
	Selected bool
	// Active marks the element the current interaction acts on.
	Active bool
	Handle geometry.Rect
	Pieces []Piece
}

type Tree struct {
	Mode    Mode
	Title   string
	Surface geometry.Rect
	State   string
	Nodes   []Node
}

// Boards looks up the puzzle board of an element in the student runtime.
type Boards interface {
	Board(elementID string) (*puzzle.Board, bool)
}

type Options struct {
	Mode Mode
	// Document-space rectangle full-surface elements are stretched over.
	Surface    geometry.Rect
	HandleSize float64
	// Boards is consulted in viewer mode; nil shows puzzles as text.
	Boards Boards
}

// Build produces the visual tree in z-order. Editor mode shows selection
// and resize handles; viewer mode omits both.
func Build(doc *material.Document, state interaction.State, opts Options) Tree {
	if state == nil {
		state = interaction.Idle{}
	}
	tree := Tree{
		Mode:    opts.Mode,
		Title:   doc.Title,
		Surface: opts.Surface,
		State:   state.Name(),
	}
	active := interaction.ElementID(state)
	for _, el := range doc.Elements() {
		n := Node{
			ElementID:   el.ID,
			Kind:        el.Kind,
			Bounds:      el.Bounds(),
			Title:       el.Kind.Label(),
			Lines:       describe(el.Content),
			FullSurface: el.FullSurface(),
			Raster:      el.Kind.IsDrawing(),
		}
		if n.FullSurface {
			n.Bounds = opts.Surface
		}
		if opts.Mode == ModeEditor {
			n.Selected = el.ID == doc.Selected()
			n.Active = el.ID == active
			if !n.FullSurface && opts.HandleSize > 0 {
				n.Handle = n.Bounds.Corner(opts.HandleSize)
			}
		}
		if opts.Mode == ModeViewer && opts.Boards != nil {
			if b, ok := opts.Boards.Board(el.ID); ok {
				n.Pieces = pieces(b)
			}
		}
		tree.Nodes = append(tree.Nodes, n)
	}
	return tree
}

func pieces(b *puzzle.Board) []Piece {
	dragged, _ := b.Dragging()
	var out []Piece
	for _, s := range b.Slots() {
		out = append(out, Piece{
			Kind:     PieceSlot,
			ID:       s.ID,
			Label:    s.Label,
			Bounds:   s.Rect,
			Placed:   s.Filled != "",
			Flashing: !s.FlashUntil.IsZero(),
		})
	}
	// items after slots so a seated item is drawn over its slot
	for _, it := range b.Items() {
		out = append(out, Piece{
			Kind:    PieceItem,
			ID:      it.ID,
			Label:   it.Label,
			Bounds:  it.Rect,
			Placed:  it.Placed,
			Dragged: it.ID == dragged,
		})
	}
	return out
}

// describers renders the body text of each kind.
var describers = map[material.Kind]func(material.Content) []string{
	material.KindText: func(c material.Content) []string {
		return strings.Split(c.(*material.TextContent).Text, "\n")
	},
	material.KindImage: func(c material.Content) []string {
		img := c.(*material.ImageContent)
		return nonEmpty(img.Alt, img.Src)
	},
	material.KindAudio: func(c material.Content) []string {
		a := c.(*material.AudioContent)
		return nonEmpty("♪ "+a.Title, a.Src)
	},
	material.KindQuizQuestion: func(c material.Content) []string {
		q := c.(*material.QuizContent)
		lines := []string{q.Question}
		for i, o := range q.Options {
			lines = append(lines, fmt.Sprintf("%c) %s", 'A'+i, o))
		}
		return lines
	},
	material.KindCulturalContent: func(c material.Content) []string {
		cc := c.(*material.CulturalContent)
		return nonEmpty(cc.Title, cc.Culture, cc.Description)
	},
	material.KindDrawingCanvas: describeDrawing,
	material.KindDrawingTask:   describeDrawing,
	material.KindAudioTask: func(c material.Content) []string {
		a := c.(*material.AudioTaskContent)
		lines := []string{a.Instructions}
		if a.RecordedAudio != "" {
			lines = append(lines, "● recorded")
		}
		return lines
	},
	material.KindImageTask: func(c material.Content) []string {
		it := c.(*material.ImageTaskContent)
		return nonEmpty(it.Instructions, it.ImageURL)
	},
	material.KindPuzzleMatching:   describePuzzle,
	material.KindPuzzleSequencing: describePuzzle,
	material.KindPuzzlePattern:    describePuzzle,
	material.KindPuzzleMemory:     describePuzzle,
	material.KindPuzzleMath:       describePuzzle,
	material.KindPuzzleWord:       describePuzzle,
}

func describe(c material.Content) []string {
	if c == nil {
		return nil
	}
	if f, ok := describers[c.Kind()]; ok {
		return f(c)
	}
	return nil
}

func describeDrawing(c material.Content) []string {
	return []string{c.(*material.DrawingContent).Instructions}
}

func describePuzzle(c material.Content) []string {
	src := c.(material.PairingSource)
	lines := []string{src.Prompt()}
	if pc, ok := c.(*material.PatternContent); ok {
		lines = append(lines, strings.Join(pc.Sequence, " "))
	}
	for _, p := range src.Pairings() {
		if p.Target == "" {
			lines = append(lines, p.Item)
			continue
		}
		lines = append(lines, p.Item+" → "+p.Target)
	}
	return lines
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
