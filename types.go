package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/audio"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/config"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/drawing"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/interaction"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/player"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/render"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/store"
)

// Buffer is one open document with its history and scroll position.
type Buffer struct {
	doc       *material.Document
	undoStack []Action
	redoStack []Action
	viewport  geometry.Viewport
	dirty     bool
}

type model struct {
	cfg      *config.Config
	log      *logrus.Logger
	store    *store.Store
	session  *audio.Session
	clip     clipboardIO
	registry *drawing.Registry
	ctrl     *interaction.Controller
	player   *player.Player

	buf    Buffer
	width  int
	height int

	mode       Mode
	view       render.Mode
	help       bool
	helpScroll int
	zPanMode   bool

	inputOp        InputOperation
	input          string
	choices        []choice
	selectedChoice int
	confirmAction  ConfirmAction
	// stored material the delete confirmation refers to
	deleteID string

	errorMessage   string
	successMessage string

	// bumped when another document is opened so late decodes are dropped
	docGen    int
	recording string
	quitting  bool
	startup   tea.Cmd
}

// choice is one entry of the open/template picker.
type choice struct {
	ID    string
	Label string
}

// Action is one undoable edit. Before and After hold the element on either
// side of the edit; Index is its z-order position for add and delete.
type Action struct {
	Type   ActionType
	Before material.Element
	After  material.Element
	Index  int
}
