package material

import (
	"encoding/json"
	"reflect"

	"github.com/pkg/errors"
)

// Content is the kind-specific payload of an element. Every kind has one
// concrete variant; keys a variant does not know are carried along untouched
// so template-authored fields survive a load/save cycle.
type Content interface {
	Kind() Kind
	extraFields() map[string]any
	setExtraFields(map[string]any)
}

type extras struct {
	fields map[string]any
}

func (e *extras) extraFields() map[string]any     { return e.fields }
func (e *extras) setExtraFields(m map[string]any) { e.fields = m }

type TextContent struct {
	extras
	Text     string  `json:"text"`
	FontSize float64 `json:"fontSize"`
	Color    string  `json:"color"`
}

type ImageContent struct {
	extras
	Src string `json:"src"`
	Alt string `json:"alt"`
}

type AudioContent struct {
	extras
	Src   string `json:"src"`
	Title string `json:"title"`
}

type QuizContent struct {
	extras
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

type CulturalContent struct {
	extras
	Title       string `json:"title"`
	Description string `json:"description"`
	Culture     string `json:"culture"`
}

// DrawingContent backs both drawing-canvas and drawing-task elements.
// CanvasData is a data URI holding the last stroke-complete snapshot.
type DrawingContent struct {
	extras
	kind         Kind
	Instructions string  `json:"instructions"`
	CanvasData   string  `json:"canvasData"`
	BrushColor   string  `json:"brushColor"`
	BrushSize    float64 `json:"brushSize"`
}

type AudioTaskContent struct {
	extras
	Instructions  string `json:"instructions"`
	RecordedAudio string `json:"recordedAudio"`
}

type ImageTaskContent struct {
	extras
	Instructions string `json:"instructions"`
	ImageURL     string `json:"imageUrl"`
}

type MatchPair struct {
	ID    string `json:"id"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

type MatchingContent struct {
	extras
	Instructions string      `json:"instructions"`
	Pairs        []MatchPair `json:"pairs"`
}

type SequenceItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Order int    `json:"order"`
}

type SequencingContent struct {
	extras
	Instructions string         `json:"instructions"`
	Items        []SequenceItem `json:"items"`
}

type PatternOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type PatternContent struct {
	extras
	Instructions string          `json:"instructions"`
	Sequence     []string        `json:"sequence"`
	Options      []PatternOption `json:"options"`
	AnswerID     string          `json:"answerId"`
}

type MemoryPair struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

type MemoryContent struct {
	extras
	Instructions string       `json:"instructions"`
	Pairs        []MemoryPair `json:"pairs"`
}

type MathProblem struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type MathContent struct {
	extras
	Instructions string        `json:"instructions"`
	Problems     []MathProblem `json:"problems"`
}

type WordItem struct {
	ID   string `json:"id"`
	Word string `json:"word"`
	Hint string `json:"hint"`
}

type WordContent struct {
	extras
	Instructions string     `json:"instructions"`
	Words        []WordItem `json:"words"`
}

func (*TextContent) Kind() Kind       { return KindText }
func (*ImageContent) Kind() Kind      { return KindImage }
func (*AudioContent) Kind() Kind      { return KindAudio }
func (*QuizContent) Kind() Kind       { return KindQuizQuestion }
func (*CulturalContent) Kind() Kind   { return KindCulturalContent }
func (c *DrawingContent) Kind() Kind  { return c.kind }
func (*AudioTaskContent) Kind() Kind  { return KindAudioTask }
func (*ImageTaskContent) Kind() Kind  { return KindImageTask }
func (*MatchingContent) Kind() Kind   { return KindPuzzleMatching }
func (*SequencingContent) Kind() Kind { return KindPuzzleSequencing }
func (*PatternContent) Kind() Kind    { return KindPuzzlePattern }
func (*MemoryContent) Kind() Kind     { return KindPuzzleMemory }
func (*MathContent) Kind() Kind       { return KindPuzzleMath }
func (*WordContent) Kind() Kind       { return KindPuzzleWord }

var contentFactories = map[Kind]func() Content{
	KindText: func() Content {
		return &TextContent{Text: "Enter text here", FontSize: 16, Color: "#000000"}
	},
	KindImage: func() Content {
		return &ImageContent{Alt: "Image"}
	},
	KindAudio: func() Content {
		return &AudioContent{Title: "Audio"}
	},
	KindQuizQuestion: func() Content {
		return &QuizContent{
			Question: "Enter your question",
			Options:  []string{"Option A", "Option B", "Option C"},
		}
	},
	KindCulturalContent: func() Content {
		return &CulturalContent{Title: "Cultural Content"}
	},
	KindDrawingCanvas: func() Content {
		return &DrawingContent{
			kind:         KindDrawingCanvas,
			Instructions: "Draw something beautiful",
			BrushColor:   "#000000",
			BrushSize:    5,
		}
	},
	KindDrawingTask: func() Content {
		return &DrawingContent{
			kind:         KindDrawingTask,
			Instructions: "Draw a house",
			BrushColor:   "#000000",
			BrushSize:    5,
		}
	},
	KindAudioTask: func() Content {
		return &AudioTaskContent{Instructions: "Record your answer"}
	},
	KindImageTask: func() Content {
		return &ImageTaskContent{Instructions: "Look at the picture"}
	},
	KindPuzzleMatching: func() Content {
		return &MatchingContent{
			Instructions: "Match each animal to its name",
			Pairs: []MatchPair{
				{ID: "dog", Left: "🐶", Right: "Dog"},
				{ID: "cat", Left: "🐱", Right: "Cat"},
				{ID: "cow", Left: "🐮", Right: "Cow"},
			},
		}
	},
	KindPuzzleSequencing: func() Content {
		return &SequencingContent{
			Instructions: "Put the steps in order",
			Items: []SequenceItem{
				{ID: "seed", Label: "Plant the seed", Order: 1},
				{ID: "water", Label: "Water the plant", Order: 2},
				{ID: "grow", Label: "Watch it grow", Order: 3},
			},
		}
	},
	KindPuzzlePattern: func() Content {
		return &PatternContent{
			Instructions: "What comes next?",
			Sequence:     []string{"🔴", "🔵", "🔴", "🔵", "?"},
			Options: []PatternOption{
				{ID: "red", Label: "🔴"},
				{ID: "blue", Label: "🔵"},
			},
			AnswerID: "red",
		}
	},
	KindPuzzleMemory: func() Content {
		return &MemoryContent{
			Instructions: "Find the matching cards",
			Pairs: []MemoryPair{
				{ID: "sun", Front: "☀️", Back: "Sun"},
				{ID: "moon", Front: "🌙", Back: "Moon"},
				{ID: "star", Front: "⭐", Back: "Star"},
			},
		}
	},
	KindPuzzleMath: func() Content {
		return &MathContent{
			Instructions: "Drag the answer to each sum",
			Problems: []MathProblem{
				{ID: "sum-1", Question: "1 + 1", Answer: "2"},
				{ID: "sum-2", Question: "2 + 2", Answer: "4"},
			},
		}
	},
	KindPuzzleWord: func() Content {
		return &WordContent{
			Instructions: "Match the word to the picture",
			Words: []WordItem{
				{ID: "cat", Word: "CAT", Hint: "🐱"},
				{ID: "sun", Word: "SUN", Hint: "☀️"},
			},
		}
	},
}

// DefaultContent returns a fresh default payload for kind, or nil when the
// kind is unknown.
func DefaultContent(kind Kind) Content {
	f, ok := contentFactories[kind]
	if !ok {
		return nil
	}
	return f()
}

// EncodeContent flattens c into the free-form map stored in documents.
func EncodeContent(c Content) (map[string]any, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s content", c.Kind())
	}
	m := make(map[string]any)
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrapf(err, "encode %s content", c.Kind())
	}
	for k, v := range c.extraFields() {
		if _, known := m[k]; !known {
			m[k] = v
		}
	}
	return m, nil
}

// DecodeContent builds the variant for kind from raw. Top-level fields
// missing from raw take their default value; a field raw does carry replaces
// the default whole, so list entries never inherit from default entries. Keys
// the variant does not declare are kept as extras.
func DecodeContent(kind Kind, raw map[string]any) (Content, error) {
	def := DefaultContent(kind)
	if def == nil {
		return nil, errors.Wrapf(ErrUnknownKind, "kind %q", kind)
	}
	if len(raw) == 0 {
		return def, nil
	}
	merged, err := EncodeContent(def)
	if err != nil {
		return nil, err
	}
	for k, v := range raw {
		merged[k] = v
	}
	b, err := json.Marshal(merged)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s content", kind)
	}
	c := zeroContent(def)
	if err := json.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "decode %s content", kind)
	}
	known, err := knownKeys(c)
	if err != nil {
		return nil, err
	}
	var extra map[string]any
	for k, v := range raw {
		if _, ok := known[k]; ok {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	c.setExtraFields(extra)
	return c, nil
}

// MergeContent shallow-merges patch over c and returns the resulting variant.
// c is left unchanged.
func MergeContent(c Content, patch map[string]any) (Content, error) {
	m, err := EncodeContent(c)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		m[k] = v
	}
	return DecodeContent(c.Kind(), m)
}

// CloneContent returns a deep copy of c.
func CloneContent(c Content) Content {
	m, err := EncodeContent(c)
	if err != nil {
		return DefaultContent(c.Kind())
	}
	cp, err := DecodeContent(c.Kind(), m)
	if err != nil {
		return DefaultContent(c.Kind())
	}
	return cp
}

// zeroContent returns an empty variant of the same type as c.
func zeroContent(c Content) Content {
	z := reflect.New(reflect.TypeOf(c).Elem()).Interface().(Content)
	if d, ok := z.(*DrawingContent); ok {
		d.kind = c.Kind()
	}
	return z
}

func knownKeys(c Content) (map[string]struct{}, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s content", c.Kind())
	}
	m := make(map[string]json.RawMessage)
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrapf(err, "encode %s content", c.Kind())
	}
	keys := make(map[string]struct{}, len(m))
	for k := range m {
		keys[k] = struct{}{}
	}
	return keys, nil
}
