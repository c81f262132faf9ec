package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	logger, _ := test.NewNullLogger()
	s, err := Open(Config{InMemory: true, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	doc := material.New(material.Metadata{Title: "Shapes", Subject: "Maths"})
	el, _ := doc.AddElement(material.KindText)
	doc.MoveElement(el.ID, geometry.Pt(12, 34))

	require.NoError(t, s.Save(ctx, doc))
	require.NotEmpty(t, doc.ID)

	got, err := s.Load(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Metadata, got.Metadata)
	loaded, ok := got.Element(el.ID)
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(12, 34), loaded.Position)

	// saving again keeps the id
	id := doc.ID
	doc.Title = "Shapes and colours"
	require.NoError(t, s.Save(ctx, doc))
	assert.Equal(t, id, doc.ID)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, Summary{ID: id, Title: "Shapes and colours", Subject: "Maths", Status: material.StatusDraft}, list[0])
}

func TestSaveRejectsInvalidDocument(t *testing.T) {
	s := newStore(t)
	doc := material.New(material.Metadata{})

	err := s.Save(context.Background(), doc)
	var verr *material.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, doc.ID)
}

func TestLoadMissing(t *testing.T) {
	s := newStore(t)
	_, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Template(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	doc := material.New(material.Metadata{Title: "x"})
	require.NoError(t, s.Save(ctx, doc))

	require.NoError(t, s.Delete(ctx, doc.ID))
	_, err := s.Load(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLargeCanvasIsCompressed(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	doc := material.New(material.Metadata{Title: "Art", Subject: "Art"})
	el, _ := doc.AddElement(material.KindDrawingCanvas)
	big := make([]byte, 200_000)
	for i := range big {
		big[i] = 'A'
	}
	require.NoError(t, doc.UpdateElement(el.ID, map[string]any{"canvasData": "data:image/png;base64," + string(big)}))
	require.NoError(t, s.Save(ctx, doc))

	var compressed int64
	require.NoError(t, s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixDocument + doc.ID))
		if err != nil {
			return err
		}
		compressed = item.ValueSize()
		return nil
	}))
	assert.Less(t, compressed, int64(10_000))

	got, err := s.Load(ctx, doc.ID)
	require.NoError(t, err)
	loaded, _ := got.Element(el.ID)
	assert.Len(t, loaded.Content.(*material.DrawingContent).CanvasData, len("data:image/png;base64,")+200_000)
}

func TestTemplates(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SeedTemplates(ctx))
	// seeding twice does not overwrite
	custom := builtinTemplates[0]
	custom.Title = "Edited"
	require.NoError(t, s.PutTemplate(ctx, custom))
	require.NoError(t, s.SeedTemplates(ctx))

	got, err := s.Template(ctx, custom.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited", got.Title)

	all, err := s.Templates(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(builtinTemplates))

	assert.Error(t, s.PutTemplate(ctx, material.Template{Title: "no id"}))
}

func TestBuiltinTemplatesInstantiate(t *testing.T) {
	for _, tpl := range builtinTemplates {
		t.Run(tpl.ID, func(t *testing.T) {
			raw, err := json.Marshal(tpl)
			require.NoError(t, err)
			var back material.Template
			require.NoError(t, json.Unmarshal(raw, &back))

			doc, err := material.FromTemplate(back)
			require.NoError(t, err)
			assert.Equal(t, len(tpl.Content.Elements), doc.Len())
			assert.NoError(t, doc.Validate())
		})
	}
}

func TestCancelledContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Save(ctx, material.New(material.Metadata{Title: "x"})), context.Canceled)
	_, err := s.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
