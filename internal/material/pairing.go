package material

import "strconv"

// Pairing links a draggable item to the target it belongs on. ID is the
// identity compared at drop time; Item and Target are display text only.
// A pairing with an empty Target is a distractor with no slot.
type Pairing struct {
	ID     string
	Item   string
	Target string
}

// PairingSource is implemented by every puzzle content variant.
type PairingSource interface {
	Content
	Prompt() string
	Pairings() []Pairing
}

func (c *MatchingContent) Prompt() string   { return c.Instructions }
func (c *SequencingContent) Prompt() string { return c.Instructions }
func (c *PatternContent) Prompt() string    { return c.Instructions }
func (c *MemoryContent) Prompt() string     { return c.Instructions }
func (c *MathContent) Prompt() string       { return c.Instructions }
func (c *WordContent) Prompt() string       { return c.Instructions }

func (c *MatchingContent) Pairings() []Pairing {
	out := make([]Pairing, 0, len(c.Pairs))
	for _, p := range c.Pairs {
		out = append(out, Pairing{ID: p.ID, Item: p.Left, Target: p.Right})
	}
	return out
}

// Pairings places each step on the slot numbered by its order.
func (c *SequencingContent) Pairings() []Pairing {
	out := make([]Pairing, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, Pairing{ID: it.ID, Item: it.Label, Target: strconv.Itoa(it.Order)})
	}
	return out
}

// Pairings yields one slot for the blank in the sequence; every option other
// than the answer is a distractor.
func (c *PatternContent) Pairings() []Pairing {
	out := make([]Pairing, 0, len(c.Options))
	for _, o := range c.Options {
		p := Pairing{ID: o.ID, Item: o.Label}
		if o.ID == c.AnswerID {
			p.Target = "?"
		}
		out = append(out, p)
	}
	return out
}

func (c *MemoryContent) Pairings() []Pairing {
	out := make([]Pairing, 0, len(c.Pairs))
	for _, p := range c.Pairs {
		out = append(out, Pairing{ID: p.ID, Item: p.Front, Target: p.Back})
	}
	return out
}

func (c *MathContent) Pairings() []Pairing {
	out := make([]Pairing, 0, len(c.Problems))
	for _, p := range c.Problems {
		out = append(out, Pairing{ID: p.ID, Item: p.Answer, Target: p.Question})
	}
	return out
}

func (c *WordContent) Pairings() []Pairing {
	out := make([]Pairing, 0, len(c.Words))
	for _, w := range c.Words {
		out = append(out, Pairing{ID: w.ID, Item: w.Word, Target: w.Hint})
	}
	return out
}
