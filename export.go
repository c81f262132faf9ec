package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/render"
)

// exportTree is the tree exported files are drawn from: the material as a
// student sees it, without selection or handles.
func (m *model) exportTree() render.Tree {
	return render.Build(m.buf.doc, nil, render.Options{
		Mode:    render.ModeViewer,
		Surface: m.surfaceRect(),
	})
}

func (m *model) exportPNG(name string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(name), ".png") {
		name += ".png"
	}
	path, err := m.cfg.Export.ExportPath(name)
	if err != nil {
		return "", err
	}
	if err := render.ExportPNG(path, m.exportTree(), m.registry); err != nil {
		return "", err
	}
	return path, nil
}

// exportVisualTXT writes the whole material as it would appear in the
// terminal, sized to fit every element.
func (m *model) exportVisualTXT(name string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(name), ".txt") {
		name += ".txt"
	}
	path, err := m.cfg.Export.ExportPath(name)
	if err != nil {
		return "", err
	}
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	tree := m.exportTree()
	ext := render.Extent(tree)
	cw, ch := float64(m.cfg.Editor.CellWidth), float64(m.cfg.Editor.CellHeight)
	cols := int(ext.Width/cw) + 1
	rows := int(ext.Height/ch) + 1
	vp := geometry.NewViewport(cols, rows, cw, ch)

	for _, line := range drawTree(tree, vp, cols, rows, m.registry) {
		if _, err := fmt.Fprintln(file, strings.TrimRight(line, " ")); err != nil {
			return "", err
		}
	}
	return path, nil
}
