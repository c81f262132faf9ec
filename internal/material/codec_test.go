package material

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
)

func TestDocumentRoundTrip(t *testing.T) {
	doc := New(Metadata{Title: "Farm animals", Subject: "English", Language: "en", AgeGroup: "3-5"})
	text, _ := doc.AddElement(KindText)
	puzzle, _ := doc.AddElement(KindPuzzleMatching)
	require.NoError(t, doc.UpdateElement(text.ID, map[string]any{"text": "Hello", "custom": "kept"}))
	doc.MoveElement(puzzle.ID, geometry.Pt(10, 20))

	b, err := Encode(doc)
	require.NoError(t, err)

	got, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, doc.Metadata, got.Metadata)
	require.Equal(t, 2, got.Len())

	el, ok := got.Element(text.ID)
	require.True(t, ok)
	assert.Equal(t, "Hello", el.Content.(*TextContent).Text)
	m, err := EncodeContent(el.Content)
	require.NoError(t, err)
	assert.Equal(t, "kept", m["custom"])

	el, ok = got.Element(puzzle.ID)
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(10, 20), el.Position)
	assert.Equal(t, KindPuzzleMatching.DefaultSize(), el.Size)
}

func TestDecodeLegacyElements(t *testing.T) {
	const legacy = `{
		"title": "Old",
		"elements": [
			{"id": "a", "type": "text", "content": {"text": "hi"}},
			{"type": "image", "content": {}},
			{"id": "a", "type": "audio"}
		]
	}`
	doc, err := Decode([]byte(legacy))
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, doc.Status)

	els := doc.Elements()
	require.Len(t, els, 3)
	for _, el := range els {
		assert.Equal(t, geometry.Point{}, el.Position)
		assert.Equal(t, LegacySize, el.Size)
		assert.NotEmpty(t, el.ID)
	}
	assert.Equal(t, "a", els[0].ID)
	assert.NotEqual(t, "a", els[2].ID)

	text := els[0].Content.(*TextContent)
	assert.Equal(t, "hi", text.Text)
	assert.Equal(t, float64(16), text.FontSize)
}

func TestDecodeKeepsUnknownKinds(t *testing.T) {
	const src = `{
		"title": "Future",
		"status": "published",
		"elements": [
			{"id": "v", "type": "video", "content": {"src": "clip.mp4"}},
			{"id": "t", "type": "text", "position": {"x": 5, "y": 6}, "size": {"width": 100, "height": 40}}
		]
	}`
	doc, err := Decode([]byte(src))
	require.NoError(t, err)
	require.Equal(t, 1, doc.Len())

	b, err := Encode(doc)
	require.NoError(t, err)

	var out struct {
		Elements []map[string]any `json:"elements"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	require.Len(t, out.Elements, 2)
	assert.Equal(t, "t", out.Elements[0]["id"])
	assert.Equal(t, "video", out.Elements[1]["type"])
	assert.Equal(t, "clip.mp4", out.Elements[1]["content"].(map[string]any)["src"])
}

func TestDecodeEnforcesSingleFullSurface(t *testing.T) {
	const src = `{
		"title": "Draw",
		"subject": "Art",
		"elements": [
			{"id": "one", "type": "drawing-canvas"},
			{"id": "two", "type": "drawing-task", "position": {"x": -10, "y": 20}, "size": {"width": 10, "height": 10}}
		]
	}`
	doc, err := Decode([]byte(src))
	require.NoError(t, err)

	owner, ok := doc.FullSurfaceElement()
	require.True(t, ok)
	assert.Equal(t, "one", owner.ID)

	two, _ := doc.Element("two")
	assert.False(t, two.FullSurface())
	assert.Equal(t, geometry.Pt(0, 20), two.Position)
	assert.Equal(t, geometry.Sz(MinWidth, MinHeight), two.Size)
	assert.NoError(t, doc.Validate())
}

func TestDecodeRejectsMalformedContent(t *testing.T) {
	const src = `{"title": "x", "elements": [{"id": "a", "type": "text", "content": {"fontSize": "big"}}]}`
	_, err := Decode([]byte(src))
	assert.Error(t, err)
}

func TestDecodeContentListsReplaceDefaults(t *testing.T) {
	c, err := DecodeContent(KindPuzzleMatching, map[string]any{
		"pairs": []any{
			map[string]any{"id": "sun", "left": "☀️"},
			map[string]any{"left": "A", "right": "a"},
		},
	})
	require.NoError(t, err)
	m := c.(*MatchingContent)
	assert.Equal(t, []MatchPair{
		{ID: "sun", Left: "☀️"},
		{Left: "A", Right: "a"},
	}, m.Pairs)
	assert.Equal(t, "Match each animal to its name", m.Instructions)

	c, err = DecodeContent(KindPuzzleSequencing, map[string]any{
		"items": []any{map[string]any{"label": "Wake up"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []SequenceItem{{Label: "Wake up"}}, c.(*SequencingContent).Items)

	c, err = DecodeContent(KindDrawingTask, map[string]any{"canvasData": ""})
	require.NoError(t, err)
	assert.Equal(t, KindDrawingTask, c.Kind())
	assert.Equal(t, "Draw a house", c.(*DrawingContent).Instructions)
}

func TestElementCodec(t *testing.T) {
	doc := New(Metadata{Title: "x"})
	el, _ := doc.AddElement(KindPuzzleWord)

	b, err := EncodeElement(el)
	require.NoError(t, err)
	got, err := DecodeElement(b)
	require.NoError(t, err)

	assert.Equal(t, el.ID, got.ID)
	assert.Equal(t, el.Kind, got.Kind)
	assert.Equal(t, el.Position, got.Position)
	assert.Equal(t, el.Size, got.Size)
	assert.Equal(t, el.Content, got.Content)
}

func TestFromTemplate(t *testing.T) {
	tpl := Template{
		ID:      "tpl-1",
		Title:   "Counting",
		Subject: "Maths",
		Content: TemplateContent{Elements: []json.RawMessage{
			json.RawMessage(`{"id": "fixed", "type": "text", "content": {"text": "Count"}}`),
			json.RawMessage(`{"type": "puzzle-math"}`),
			json.RawMessage(`{"type": "hologram"}`),
			json.RawMessage(`{"type": "image", "position": {"x": 7, "y": 8}, "size": {"width": 60, "height": 60}}`),
		}},
	}

	a, err := FromTemplate(tpl)
	require.NoError(t, err)
	b, err := FromTemplate(tpl)
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, a.Status)
	assert.Equal(t, "Counting", a.Title)
	assert.Empty(t, a.ID)

	els := a.Elements()
	require.Len(t, els, 3)
	assert.NotEqual(t, "fixed", els[0].ID)
	assert.Equal(t, geometry.Pt(50, 50), els[0].Position)
	assert.Equal(t, geometry.Pt(150, 100), els[1].Position)
	assert.Equal(t, LegacySize, els[1].Size)
	assert.Equal(t, geometry.Pt(7, 8), els[2].Position)
	assert.Equal(t, geometry.Sz(60, 60), els[2].Size)

	for i, el := range b.Elements() {
		assert.NotEqual(t, els[i].ID, el.ID)
	}

	// documents made from the same template do not share content
	require.NoError(t, a.UpdateElement(els[0].ID, map[string]any{"text": "changed"}))
	assert.Equal(t, "Count", b.Elements()[0].Content.(*TextContent).Text)
}

func TestValidate(t *testing.T) {
	doc := New(Metadata{Title: "ok"})
	_, _ = doc.AddElement(KindText)
	require.NoError(t, doc.Validate())

	bad := New(Metadata{Status: "archived"})
	err := bad.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Error
	}
	assert.Equal(t, "this field is required", fields["title"])
	assert.Contains(t, fields["status"], "draft published")
}
