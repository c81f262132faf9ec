package material

import (
	"strings"
	"unicode"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
)

// Kind identifies the content type of an element. The set is closed.
type Kind string

const (
	KindText             Kind = "text"
	KindImage            Kind = "image"
	KindAudio            Kind = "audio"
	KindQuizQuestion     Kind = "quiz-question"
	KindCulturalContent  Kind = "cultural-content"
	KindDrawingCanvas    Kind = "drawing-canvas"
	KindDrawingTask      Kind = "drawing-task"
	KindAudioTask        Kind = "audio-task"
	KindImageTask        Kind = "image-task"
	KindPuzzleMatching   Kind = "puzzle-matching"
	KindPuzzleSequencing Kind = "puzzle-sequencing"
	KindPuzzlePattern    Kind = "puzzle-pattern"
	KindPuzzleMemory     Kind = "puzzle-memory"
	KindPuzzleMath       Kind = "puzzle-math"
	KindPuzzleWord       Kind = "puzzle-word"
)

// Kinds lists every kind in toolbar order.
var Kinds = []Kind{
	KindText,
	KindImage,
	KindAudio,
	KindQuizQuestion,
	KindCulturalContent,
	KindDrawingCanvas,
	KindDrawingTask,
	KindAudioTask,
	KindImageTask,
	KindPuzzleMatching,
	KindPuzzleSequencing,
	KindPuzzlePattern,
	KindPuzzleMemory,
	KindPuzzleMath,
	KindPuzzleWord,
}

const (
	MinWidth  = 50
	MinHeight = 30
)

var defaultSizes = map[Kind]geometry.Size{
	KindText:             {Width: 200, Height: 100},
	KindImage:            {Width: 200, Height: 150},
	KindAudio:            {Width: 250, Height: 80},
	KindQuizQuestion:     {Width: 300, Height: 200},
	KindCulturalContent:  {Width: 300, Height: 200},
	KindDrawingCanvas:    {Width: 400, Height: 300},
	KindDrawingTask:      {Width: 400, Height: 300},
	KindAudioTask:        {Width: 300, Height: 200},
	KindImageTask:        {Width: 300, Height: 200},
	KindPuzzleMatching:   {Width: 400, Height: 300},
	KindPuzzleSequencing: {Width: 400, Height: 300},
	KindPuzzlePattern:    {Width: 400, Height: 300},
	KindPuzzleMemory:     {Width: 400, Height: 300},
	KindPuzzleMath:       {Width: 400, Height: 300},
	KindPuzzleWord:       {Width: 400, Height: 300},
}

// LegacySize is used for stored elements that carry no size at all.
var LegacySize = geometry.Size{Width: 200, Height: 100}

func (k Kind) Valid() bool {
	_, ok := defaultSizes[k]
	return ok
}

// DefaultSize is the size given to a freshly added element of kind k.
func (k Kind) DefaultSize() geometry.Size {
	if s, ok := defaultSizes[k]; ok {
		return s
	}
	return LegacySize
}

func (k Kind) IsPuzzle() bool {
	return strings.HasPrefix(string(k), "puzzle-")
}

// IsDrawing reports whether elements of this kind own a raster surface.
func (k Kind) IsDrawing() bool {
	return k == KindDrawingCanvas || k == KindDrawingTask
}

// Label is the human readable toolbar name.
func (k Kind) Label() string {
	words := strings.FieldsFunc(string(k), func(r rune) bool { return r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ClaimsFullSurface reports whether an element of kind k takes over the whole
// editing surface in a document about subject.
func ClaimsFullSurface(k Kind, subject string) bool {
	switch k {
	case KindDrawingTask:
		return true
	case KindDrawingCanvas:
		return IsArtSubject(subject)
	}
	return false
}

// IsArtSubject matches "art" or "arts" as a whole word, case-insensitively.
func IsArtSubject(subject string) bool {
	words := strings.FieldsFunc(strings.ToLower(subject), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if w == "art" || w == "arts" {
			return true
		}
	}
	return false
}
