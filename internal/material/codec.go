package material

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
)

type documentJSON struct {
	Metadata
	Elements []json.RawMessage `json:"elements"`
}

type elementJSON struct {
	ID       string          `json:"id"`
	Type     Kind            `json:"type"`
	Position *geometry.Point `json:"position,omitempty"`
	Size     *geometry.Size  `json:"size,omitempty"`
	Content  map[string]any  `json:"content"`
}

func (d *Document) MarshalJSON() ([]byte, error) {
	out := documentJSON{
		Metadata: d.Metadata,
		Elements: make([]json.RawMessage, 0, len(d.elements)+len(d.passthrough)),
	}
	for _, el := range d.elements {
		content, err := EncodeContent(el.Content)
		if err != nil {
			return nil, errors.Wrapf(err, "element %s", el.ID)
		}
		pos, size := el.Position, el.Size
		b, err := json.Marshal(elementJSON{
			ID:       el.ID,
			Type:     el.Kind,
			Position: &pos,
			Size:     &size,
			Content:  content,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "element %s", el.ID)
		}
		out.Elements = append(out.Elements, b)
	}
	out.Elements = append(out.Elements, d.passthrough...)
	return json.Marshal(out)
}

// UnmarshalJSON accepts older documents: elements without position or size
// get {0,0} and 200x100, elements without a usable id get a fresh one, and
// elements of unknown kinds are kept verbatim for the next save.
func (d *Document) UnmarshalJSON(b []byte) error {
	var in documentJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return errors.Wrap(err, "decode document")
	}
	doc := Document{Metadata: in.Metadata}
	if doc.Status == "" {
		doc.Status = StatusDraft
	}
	seen := make(map[string]struct{}, len(in.Elements))
	for i, raw := range in.Elements {
		var ej elementJSON
		if err := json.Unmarshal(raw, &ej); err != nil {
			return errors.Wrapf(err, "decode element %d", i)
		}
		if !ej.Type.Valid() {
			doc.passthrough = append(doc.passthrough, raw)
			continue
		}
		content, err := DecodeContent(ej.Type, ej.Content)
		if err != nil {
			return errors.Wrapf(err, "decode element %d", i)
		}
		el := &Element{
			ID:      ej.ID,
			Kind:    ej.Type,
			Size:    LegacySize,
			Content: content,
		}
		if _, dup := seen[el.ID]; el.ID == "" || dup {
			el.ID = uuid.NewString()
		}
		seen[el.ID] = struct{}{}
		if ej.Position != nil {
			el.Position = *ej.Position
		}
		if ej.Size != nil {
			el.Size = *ej.Size
		}
		doc.elements = append(doc.elements, el)
	}
	doc.Normalize()
	*d = doc
	return nil
}

// Decode parses a persisted document.
func Decode(b []byte) (*Document, error) {
	d := new(Document)
	if err := json.Unmarshal(b, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Encode renders d in the persisted shape.
func Encode(d *Document) ([]byte, error) {
	return json.Marshal(d)
}

// EncodeElement renders a single element in its persisted shape. The editor
// uses it for the clipboard.
func EncodeElement(el Element) ([]byte, error) {
	content, err := EncodeContent(el.Content)
	if err != nil {
		return nil, err
	}
	pos, size := el.Position, el.Size
	return json.Marshal(elementJSON{ID: el.ID, Type: el.Kind, Position: &pos, Size: &size, Content: content})
}

// DecodeElement is the inverse of EncodeElement.
func DecodeElement(b []byte) (Element, error) {
	var ej elementJSON
	if err := json.Unmarshal(b, &ej); err != nil {
		return Element{}, errors.Wrap(err, "decode element")
	}
	content, err := DecodeContent(ej.Type, ej.Content)
	if err != nil {
		return Element{}, err
	}
	el := Element{ID: ej.ID, Kind: ej.Type, Size: LegacySize, Content: content}
	if ej.Position != nil {
		el.Position = *ej.Position
	}
	if ej.Size != nil {
		el.Size = *ej.Size
	}
	return el, nil
}
