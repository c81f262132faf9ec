package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeInput
	ModeConfirm
)

type InputOperation int

const (
	InputOpen InputOperation = iota
	InputTemplate
	InputExportPNG
	InputExportTXT
	InputTitle
	InputSubject
)

type ConfirmAction int

const (
	ConfirmDeleteElement ConfirmAction = iota
	ConfirmQuit
	ConfirmNewDocument
	ConfirmDeleteMaterial
)

type ActionType int

const (
	ActionAddElement ActionType = iota
	ActionDeleteElement
	ActionMoveElement
	ActionResizeElement
	ActionStroke
	ActionUpdateElement
)

const (
	statusLines = 1
	// pan step in cells, doubled with shift
	panStep = 4
)

// addKeys maps toolbar keys to element kinds, in material.Kinds order.
var addKeys = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "!", "@", "#", "$", "%"}

const untitled = "Untitled material"
