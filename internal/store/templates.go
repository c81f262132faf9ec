package store

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
)

// builtinTemplates ship with the editor so a fresh store has something to
// start from.
var builtinTemplates = []material.Template{
	{
		ID:          "farm-animals",
		Title:       "Farm Animals",
		Description: "Match each farm animal to its name",
		Type:        "worksheet",
		Subject:     "English",
		Language:    "en",
		AgeGroup:    "3-5",
		Content: material.TemplateContent{Elements: []json.RawMessage{
			json.RawMessage(`{"type":"text","content":{"text":"Farm Animals","fontSize":24}}`),
			json.RawMessage(`{"type":"puzzle-matching"}`),
			json.RawMessage(`{"type":"audio-task","content":{"instructions":"Say the name of your favourite animal"}}`),
		}},
	},
	{
		ID:          "colour-the-flag",
		Title:       "Colour the Flag",
		Description: "Colour in our national flag",
		Type:        "activity",
		Subject:     "Art",
		Language:    "en",
		AgeGroup:    "4-6",
		Content: material.TemplateContent{Elements: []json.RawMessage{
			json.RawMessage(`{"type":"drawing-canvas","content":{"instructions":"Colour the flag","brushColor":"#2e7d32"}}`),
		}},
	},
	{
		ID:          "counting",
		Title:       "Counting Fun",
		Description: "Simple sums and a sequencing story",
		Type:        "worksheet",
		Subject:     "Maths",
		Language:    "en",
		AgeGroup:    "5-6",
		Content: material.TemplateContent{Elements: []json.RawMessage{
			json.RawMessage(`{"type":"puzzle-math"}`),
			json.RawMessage(`{"type":"puzzle-sequencing","position":{"x":500,"y":50}}`),
			json.RawMessage(`{"type":"puzzle-pattern","position":{"x":50,"y":400}}`),
		}},
	},
}

// SeedTemplates stores the built-in templates that are not in the store yet.
func (s *Store) SeedTemplates(ctx context.Context) error {
	for _, t := range builtinTemplates {
		_, err := s.Template(ctx, t.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.PutTemplate(ctx, t); err != nil {
			return err
		}
		s.log.WithFields(logrus.Fields{"template": t.ID}).Debug("Template seeded")
	}
	return nil
}
