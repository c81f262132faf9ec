// Package puzzle evaluates drag-and-drop pair puzzles. Matching is by pairing
// identity only; the text shown on items and slots is never compared.
package puzzle

import (
	"sort"
	"time"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
)

const DefaultFlashDuration = time.Second

// Item is a draggable piece. Home is its last valid position; Rect is where
// it is drawn right now.
type Item struct {
	ID     string
	Label  string
	Home   geometry.Rect
	Rect   geometry.Rect
	Placed bool
}

// Slot is a drop target. FlashUntil is non-zero while the slot shows the
// error affordance of a wrong drop.
type Slot struct {
	ID         string
	Label      string
	Rect       geometry.Rect
	Filled     string
	FlashUntil time.Time
}

type Outcome int

const (
	// OutcomeNone means nothing was evaluated: no slot under the drop point,
	// a filled slot, or a finished puzzle.
	OutcomeNone Outcome = iota
	OutcomeCorrect
	OutcomeIncorrect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	default:
		return "none"
	}
}

type Config struct {
	FlashDuration time.Duration
	Now           func() time.Time
	// OnComplete runs once, right after the last slot is filled.
	OnComplete func()
}

type Board struct {
	config Config
	bounds geometry.Rect
	items  []*Item
	slots  []*Slot

	matched   int
	completed bool
	drag      *drag
}

type drag struct {
	item    *Item
	offset  geometry.Point
	touch   bool
	touchID int
}

// NewBoard lays the pairings out inside bounds: items in a column on the
// left, one slot per pairing with a target in a column on the right.
func NewBoard(pairings []material.Pairing, bounds geometry.Rect, config Config) *Board {
	if config.FlashDuration <= 0 {
		config.FlashDuration = DefaultFlashDuration
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	b := &Board{config: config, bounds: bounds}
	for _, p := range pairings {
		b.items = append(b.items, &Item{ID: p.ID, Label: p.Item})
		if p.Target != "" {
			b.slots = append(b.slots, &Slot{ID: p.ID, Label: p.Target})
		}
	}
	sort.SliceStable(b.slots, func(i, j int) bool { return b.slots[i].Label < b.slots[j].Label })
	b.layout()
	return b
}

const (
	boardPadding = 10
	headerHeight = 30
)

func (b *Board) layout() {
	rows := max(len(b.items), len(b.slots), 1)
	inner := geometry.R(
		b.bounds.X+boardPadding,
		b.bounds.Y+headerHeight,
		max(b.bounds.Width-2*boardPadding, 0),
		max(b.bounds.Height-headerHeight-boardPadding, 0),
	)
	rowH := inner.Height / float64(rows)
	colW := inner.Width * 0.4
	for i, it := range b.items {
		it.Home = geometry.R(inner.X, inner.Y+float64(i)*rowH, colW, rowH-boardPadding/2)
		it.Rect = it.Home
	}
	for i, s := range b.slots {
		s.Rect = geometry.R(inner.X+inner.Width-colW, inner.Y+float64(i)*rowH, colW, rowH-boardPadding/2)
	}
}

func (b *Board) Bounds() geometry.Rect { return b.bounds }

// Items returns copies of the items in layout order.
func (b *Board) Items() []Item {
	out := make([]Item, len(b.items))
	for i, it := range b.items {
		out[i] = *it
	}
	return out
}

func (b *Board) Slots() []Slot {
	out := make([]Slot, len(b.slots))
	for i, s := range b.slots {
		out[i] = *s
	}
	return out
}

// Total is the number of slots, the matches needed to complete.
func (b *Board) Total() int   { return len(b.slots) }
func (b *Board) Matched() int { return b.matched }

func (b *Board) Completed() bool { return b.completed }

func (b *Board) Dragging() (string, bool) {
	if b.drag == nil {
		return "", false
	}
	return b.drag.item.ID, true
}

// Flashing reports whether slot is showing the error affordance.
func (b *Board) Flashing(slotID string) bool {
	s := b.slot(slotID)
	return s != nil && !s.FlashUntil.IsZero()
}

func (b *Board) item(id string) *Item {
	for _, it := range b.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func (b *Board) slot(id string) *Slot {
	for _, s := range b.slots {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Evaluate drops item on slot. A correct match seats the item inside the
// slot for good and may complete the puzzle. A wrong one flashes the slot
// and sends the item back to its last valid position.
func (b *Board) Evaluate(itemID, slotID string) Outcome {
	it, s := b.item(itemID), b.slot(slotID)
	if b.completed || it == nil || it.Placed || s == nil || s.Filled != "" {
		if it != nil && !it.Placed {
			it.Rect = it.Home
		}
		return OutcomeNone
	}
	if it.ID != s.ID {
		s.FlashUntil = b.config.Now().Add(b.config.FlashDuration)
		it.Rect = it.Home
		return OutcomeIncorrect
	}

	it.Placed = true
	it.Home = seat(it.Rect.Size(), s.Rect)
	it.Rect = it.Home
	s.Filled = it.ID
	s.FlashUntil = time.Time{}
	b.matched++
	if b.matched == len(b.slots) {
		b.completed = true
		if b.config.OnComplete != nil {
			b.config.OnComplete()
		}
	}
	return OutcomeCorrect
}

// seat centers an item of size inside slot, shrinking it to fit.
func seat(size geometry.Size, slot geometry.Rect) geometry.Rect {
	w, h := min(size.Width, slot.Width), min(size.Height, slot.Height)
	c := slot.Center()
	return geometry.R(c.X-w/2, c.Y-h/2, w, h)
}

// Tick clears error flashes that have run their course and reports whether
// anything changed.
func (b *Board) Tick(now time.Time) bool {
	changed := false
	for _, s := range b.slots {
		if !s.FlashUntil.IsZero() && !now.Before(s.FlashUntil) {
			s.FlashUntil = time.Time{}
			changed = true
		}
	}
	return changed
}

// ItemAt returns the topmost draggable item under p.
func (b *Board) ItemAt(p geometry.Point) (string, bool) {
	for i := len(b.items) - 1; i >= 0; i-- {
		it := b.items[i]
		if !it.Placed && it.Rect.Contains(p) {
			return it.ID, true
		}
	}
	return "", false
}

// SlotAt returns the slot under p.
func (b *Board) SlotAt(p geometry.Point) (string, bool) {
	for _, s := range b.slots {
		if s.Rect.Contains(p) {
			return s.ID, true
		}
	}
	return "", false
}

// BeginDrag picks up the item under p with the mouse.
func (b *Board) BeginDrag(p geometry.Point) bool {
	return b.begin(p, false, 0)
}

func (b *Board) Move(p geometry.Point) {
	if b.drag != nil && !b.drag.touch {
		b.move(p)
	}
}

// EndDrag drops the dragged item at p.
func (b *Board) EndDrag(p geometry.Point) Outcome {
	if b.drag == nil || b.drag.touch {
		return OutcomeNone
	}
	return b.drop(p)
}

// TouchStart picks up the item under p for touch identifier id.
func (b *Board) TouchStart(id int, p geometry.Point) bool {
	return b.begin(p, true, id)
}

func (b *Board) TouchMove(id int, p geometry.Point) {
	if b.ownsTouch(id) {
		b.move(p)
	}
}

// TouchEnd evaluates against whatever slot lies under the point the touch
// ended on.
func (b *Board) TouchEnd(id int, p geometry.Point) Outcome {
	if !b.ownsTouch(id) {
		return OutcomeNone
	}
	return b.drop(p)
}

// CancelDrag puts a dragged item back without evaluating it.
func (b *Board) CancelDrag() {
	if b.drag == nil {
		return
	}
	b.drag.item.Rect = b.drag.item.Home
	b.drag = nil
}

func (b *Board) ownsTouch(id int) bool {
	return b.drag != nil && b.drag.touch && b.drag.touchID == id
}

func (b *Board) begin(p geometry.Point, touch bool, id int) bool {
	if b.completed || b.drag != nil {
		return false
	}
	itemID, ok := b.ItemAt(p)
	if !ok {
		return false
	}
	it := b.item(itemID)
	b.drag = &drag{item: it, offset: p.Sub(it.Rect.Min()), touch: touch, touchID: id}
	return true
}

func (b *Board) move(p geometry.Point) {
	it := b.drag.item
	it.Rect = geometry.RectAt(p.Sub(b.drag.offset), it.Rect.Size())
}

func (b *Board) drop(p geometry.Point) Outcome {
	b.move(p)
	it := b.drag.item
	b.drag = nil
	slotID, ok := b.SlotAt(p)
	if !ok {
		it.Rect = it.Home
		return OutcomeNone
	}
	return b.Evaluate(it.ID, slotID)
}
