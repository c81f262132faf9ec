// Package player is the student-facing runtime of a published material. It
// builds a puzzle board for every puzzle element and routes pointer and
// touch input to the board under it.
package player

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/puzzle"
)

type Config struct {
	FlashDuration time.Duration
	Now           func() time.Time
	Logger        *logrus.Logger
	// OnComplete is called once per puzzle element when it is solved.
	OnComplete func(elementID string)
}

type Player struct {
	config Config
	log    *logrus.Logger
	doc    *material.Document

	boards map[string]*puzzle.Board
	// puzzle element ids in z-order
	order  []string
	active string
}

func New(doc *material.Document, config Config) *Player {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	p := &Player{
		config: config,
		log:    config.Logger,
		doc:    doc,
		boards: make(map[string]*puzzle.Board),
	}
	for _, el := range doc.Elements() {
		src, ok := el.Content.(material.PairingSource)
		if !ok || !el.Kind.IsPuzzle() {
			continue
		}
		id := el.ID
		p.boards[id] = puzzle.NewBoard(src.Pairings(), el.Bounds(), puzzle.Config{
			FlashDuration: config.FlashDuration,
			Now:           config.Now,
			OnComplete:    func() { p.completed(id) },
		})
		p.order = append(p.order, id)
	}
	return p
}

func (p *Player) completed(id string) {
	p.log.WithFields(logrus.Fields{
		"document": p.doc.ID,
		"element":  id,
	}).Info("Puzzle completed")
	if p.config.OnComplete != nil {
		p.config.OnComplete(id)
	}
}

func (p *Player) Document() *material.Document {
	return p.doc
}

func (p *Player) Board(elementID string) (*puzzle.Board, bool) {
	b, ok := p.boards[elementID]
	return b, ok
}

// Boards returns the puzzle element ids in z-order.
func (p *Player) Boards() []string {
	return append([]string(nil), p.order...)
}

// Progress counts solved puzzles.
func (p *Player) Progress() (solved, total int) {
	for _, b := range p.boards {
		if b.Completed() {
			solved++
		}
	}
	return solved, len(p.boards)
}

func (p *Player) boardAt(pt geometry.Point) (string, *puzzle.Board) {
	for i := len(p.order) - 1; i >= 0; i-- {
		b := p.boards[p.order[i]]
		if b.Bounds().Contains(pt) {
			return p.order[i], b
		}
	}
	return "", nil
}

func (p *Player) PointerDown(pt geometry.Point) bool {
	id, b := p.boardAt(pt)
	if b == nil || !b.BeginDrag(pt) {
		return false
	}
	p.active = id
	return true
}

func (p *Player) PointerMove(pt geometry.Point) {
	if b, ok := p.boards[p.active]; ok {
		b.Move(pt)
	}
}

// PointerUp drops the dragged item. Only the board the drag started on
// evaluates it.
func (p *Player) PointerUp(pt geometry.Point) puzzle.Outcome {
	b, ok := p.boards[p.active]
	p.active = ""
	if !ok {
		return puzzle.OutcomeNone
	}
	return b.EndDrag(pt)
}

func (p *Player) TouchStart(touchID int, pt geometry.Point) bool {
	id, b := p.boardAt(pt)
	if b == nil || !b.TouchStart(touchID, pt) {
		return false
	}
	p.active = id
	return true
}

func (p *Player) TouchMove(touchID int, pt geometry.Point) {
	if b, ok := p.boards[p.active]; ok {
		b.TouchMove(touchID, pt)
	}
}

func (p *Player) TouchEnd(touchID int, pt geometry.Point) puzzle.Outcome {
	b, ok := p.boards[p.active]
	if !ok {
		return puzzle.OutcomeNone
	}
	out := b.TouchEnd(touchID, pt)
	if _, dragging := b.Dragging(); !dragging {
		p.active = ""
	}
	return out
}

// Cancel puts back any item in flight, e.g. when the viewer is closed.
func (p *Player) Cancel() {
	if b, ok := p.boards[p.active]; ok {
		b.CancelDrag()
	}
	p.active = ""
}

// Tick advances error flashes on every board.
func (p *Player) Tick(now time.Time) bool {
	changed := false
	for _, b := range p.boards {
		if b.Tick(now) {
			changed = true
		}
	}
	return changed
}
