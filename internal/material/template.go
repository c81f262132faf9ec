package material

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
)

// Template is a stored starting point for a new document.
type Template struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Subject     string          `json:"subject"`
	Language    string          `json:"language"`
	AgeGroup    string          `json:"ageGroup"`
	Content     TemplateContent `json:"content"`
}

type TemplateContent struct {
	Elements []json.RawMessage `json:"elements"`
}

// FromTemplate deep-copies a template into a new draft document. Every
// element gets a fresh id; missing positions are staggered from (50,50) and
// missing sizes default to 200x100. Elements of unknown kinds are dropped.
func FromTemplate(t Template) (*Document, error) {
	doc := New(Metadata{
		Title:       t.Title,
		Description: t.Description,
		Type:        t.Type,
		Subject:     t.Subject,
		Language:    t.Language,
		AgeGroup:    t.AgeGroup,
		Status:      StatusDraft,
	})
	for i, raw := range t.Content.Elements {
		var ej elementJSON
		if err := json.Unmarshal(raw, &ej); err != nil {
			return nil, errors.Wrapf(err, "template %s element %d", t.ID, i)
		}
		if !ej.Type.Valid() {
			continue
		}
		content, err := DecodeContent(ej.Type, ej.Content)
		if err != nil {
			return nil, errors.Wrapf(err, "template %s element %d", t.ID, i)
		}
		el := &Element{
			ID:       uuid.NewString(),
			Kind:     ej.Type,
			Position: geometry.Pt(float64(50+i*100), float64(50+i*50)),
			Size:     LegacySize,
			Content:  content,
		}
		if ej.Position != nil {
			el.Position = *ej.Position
		}
		if ej.Size != nil {
			el.Size = *ej.Size
		}
		doc.elements = append(doc.elements, el)
	}
	doc.Normalize()
	return doc, nil
}
