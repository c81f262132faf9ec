package main

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pkg/errors"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
)

// clipboardIO is the copy/paste collaborator. The editor falls back to an
// in-process buffer when the system clipboard is unavailable.
type clipboardIO interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct {
	fallback string
}

func (c *systemClipboard) ReadAll() (string, error) {
	text, err := readClipboardText()
	if err != nil || strings.TrimSpace(text) == "" {
		if c.fallback != "" {
			return c.fallback, nil
		}
		return "", err
	}
	return text, nil
}

func (c *systemClipboard) WriteAll(text string) error {
	c.fallback = text
	if clipboard.Unsupported {
		return nil
	}
	return clipboard.WriteAll(text)
}

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

// pasteOffset shifts a pasted element so it does not cover its source.
var pasteOffset = geometry.Pt(20, 20)

func (m *model) copySelected() error {
	el, ok := m.buf.doc.Element(m.buf.doc.Selected())
	if !ok {
		return errors.New("nothing selected")
	}
	b, err := material.EncodeElement(el)
	if err != nil {
		return err
	}
	return m.clip.WriteAll(string(b))
}

func (m *model) paste() (material.Element, error) {
	text, err := m.clip.ReadAll()
	if err != nil {
		return material.Element{}, errors.Wrap(err, "read clipboard")
	}
	el, err := material.DecodeElement([]byte(cleanClipboardText(text)))
	if err != nil {
		return material.Element{}, errors.Wrap(err, "clipboard does not hold an element")
	}
	el.ID = ""
	el.Position = el.Position.Add(pasteOffset)
	doc := m.buf.doc
	stored := doc.InsertElement(doc.Len(), el)
	if stored.ID == "" {
		return material.Element{}, material.ErrUnknownKind
	}
	doc.Select(stored.ID)
	m.recordAction(Action{Type: ActionAddElement, After: stored.Clone(), Index: doc.Len() - 1})
	return stored, nil
}

func cleanClipboardText(text string) string {
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' || r >= 32 {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}
