package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/audio"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/config"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/drawing"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/interaction"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/player"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/puzzle"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/render"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, logFile, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer logFile.Close()

	st, err := store.Open(store.Config{Path: cfg.Store.Path, InMemory: cfg.Store.InMemory, Logger: logger})
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()
	if err := st.SeedTemplates(context.Background()); err != nil {
		logger.WithError(err).Warn("Error seeding templates")
	}

	device := audio.PCMSource{
		Path: cfg.Audio.Source,
		Format: audio.Format{
			SampleRate:    cfg.Audio.SampleRate,
			Channels:      cfg.Audio.Channels,
			BitsPerSample: cfg.Audio.BitsPerSample,
		},
	}
	m := newModel(cfg, logger, st, audio.NewSession(device, audio.Config{Logger: logger}), &systemClipboard{})
	if len(os.Args) > 1 {
		m.startup = m.openDocument(os.Args[1])
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		logger.WithError(err).Error("Editor exited")
		log.Fatal(err)
	}
}

type decodedMsg struct {
	gen     int
	results []drawing.Decoded
	err     error
}

type recordedMsg struct {
	elementID string
	uri       string
	err       error
}

type tickMsg time.Time

const tickInterval = 100 * time.Millisecond

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func newModel(cfg *config.Config, logger *logrus.Logger, st *store.Store, session *audio.Session, clip clipboardIO) model {
	ed := cfg.Editor
	doc := material.New(material.Metadata{Title: untitled})
	registry := drawing.NewRegistry(drawing.RegistryConfig{
		Width:  ed.SurfaceWidth,
		Height: ed.SurfaceHeight,
		Logger: logger,
	})
	m := model{
		cfg:      cfg,
		log:      logger,
		store:    st,
		session:  session,
		clip:     clip,
		registry: registry,
		buf: Buffer{
			doc:      doc,
			viewport: geometry.NewViewport(80, 24-statusLines, float64(ed.CellWidth), float64(ed.CellHeight)),
		},
	}
	m.ctrl = interaction.New(doc, registry, interaction.Config{
		Surface:    m.surfaceRect(),
		HandleSize: m.handleSize(),
		BrushColor: ed.BrushColor,
		BrushSize:  float64(ed.BrushSize),
		Logger:     logger,
	})
	return m
}

func (m model) surfaceRect() geometry.Rect {
	return geometry.R(0, 0, float64(m.cfg.Editor.SurfaceWidth), float64(m.cfg.Editor.SurfaceHeight))
}

// handleSize is at least one cell so the handle can be hit with the mouse.
func (m model) handleSize() float64 {
	ed := m.cfg.Editor
	return float64(max(ed.HandleSize, ed.CellWidth, ed.CellHeight))
}

func (m model) tree() render.Tree {
	opts := render.Options{
		Mode:       m.view,
		Surface:    m.surfaceRect(),
		HandleSize: m.handleSize(),
	}
	if m.player != nil {
		opts.Boards = m.player
	}
	return render.Build(m.buf.doc, m.ctrl.State(), opts)
}

func (m model) Init() tea.Cmd {
	return m.startup
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		rows := max(msg.Height-statusLines, 1)
		m.buf.viewport = m.buf.viewport.Resize(max(msg.Width, 1), rows)
		return m, nil

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case decodedMsg:
		if msg.gen != m.docGen {
			return m, nil
		}
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("Error decoding canvas snapshots")
			return m, nil
		}
		m.registry.Apply(msg.results)
		return m, nil

	case recordedMsg:
		m.attachRecording(msg)
		return m, nil

	case tickMsg:
		if m.view != render.ModeViewer || m.player == nil {
			return m, nil
		}
		m.player.Tick(time.Time(msg))
		return m, tick()
	}
	return m, nil
}

func (m *model) clearMessages() {
	m.errorMessage = ""
	m.successMessage = ""
}

// mountSurfaces gives every drawing element a surface and decodes stored
// snapshots off the event loop.
func (m *model) mountSurfaces() tea.Cmd {
	m.registry.Mount(m.buf.doc)
	decode := m.registry.Decode(m.buf.doc)
	gen := m.docGen
	return func() tea.Msg {
		results, err := decode(context.Background())
		return decodedMsg{gen: gen, results: results, err: err}
	}
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.mode != ModeNormal || m.help {
		return nil
	}
	p := m.cellPoint(msg.X, msg.Y)
	viewer := m.view == render.ModeViewer

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || msg.Y >= m.height-statusLines {
			return nil
		}
		m.clearMessages()
		if viewer {
			m.player.PointerDown(p)
			return nil
		}
		m.recordGesture(m.ctrl.PointerDown(p))
	case tea.MouseActionMotion:
		if viewer {
			m.player.PointerMove(p)
			return nil
		}
		m.ctrl.PointerMove(p)
	case tea.MouseActionRelease:
		if viewer {
			m.reportOutcome(m.player.PointerUp(p))
			return nil
		}
		m.recordGesture(m.ctrl.PointerUp())
	}
	return nil
}

func (m *model) reportOutcome(out puzzle.Outcome) {
	switch out {
	case puzzle.OutcomeCorrect:
		solved, total := m.player.Progress()
		if total > 0 && solved == total {
			m.successMessage = "Well done! Every puzzle is solved"
			return
		}
		m.successMessage = "Correct!"
	case puzzle.OutcomeIncorrect:
		m.errorMessage = "Try again"
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.help {
		switch msg.String() {
		case "esc", "?", "q":
			m.help = false
			m.helpScroll = 0
		case "j", "down":
			m.helpScroll = min(m.helpScroll+1, max(len(helpLines)-1, 0))
		case "k", "up":
			m.helpScroll = max(m.helpScroll-1, 0)
		}
		return m, nil
	}

	switch m.mode {
	case ModeInput:
		return m.handleInputKey(msg)
	case ModeConfirm:
		return m.handleConfirmKey(msg)
	}

	key := msg.String()
	switch key {
	case "ctrl+c":
		return m, m.quit()
	case "q":
		if m.buf.dirty && m.cfg.Editor.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmQuit
			return m, nil
		}
		return m, m.quit()
	case "?":
		m.help = true
		return m, nil
	case "z":
		m.zPanMode = !m.zPanMode
		return m, nil
	case "v":
		m.clearMessages()
		return m, m.toggleViewer()
	case "esc":
		m.clearMessages()
		m.zPanMode = false
		if m.view == render.ModeViewer {
			m.player.Cancel()
			return m, nil
		}
		m.recordGesture(m.ctrl.Cancel())
		m.buf.doc.Select("")
		return m, nil
	case "h", "left", "H", "shift+left", "l", "right", "L", "shift+right",
		"k", "up", "K", "shift+up", "j", "down", "J", "shift+down":
		if m.view == render.ModeViewer {
			m.handlePan(key, m.getMoveSpeed(key))
			return m, nil
		}
		m.handleNavigation(key, m.getMoveSpeed(key))
		return m, nil
	}

	if m.view == render.ModeViewer {
		return m, nil
	}
	m.zPanMode = false
	m.clearMessages()

	for i, k := range addKeys {
		if key == k {
			return m, m.addElement(material.Kinds[i])
		}
	}

	switch key {
	case "d":
		if _, ok := m.buf.doc.Element(m.buf.doc.Selected()); !ok {
			m.errorMessage = "Nothing selected"
			return m, nil
		}
		if m.cfg.Editor.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmDeleteElement
			return m, nil
		}
		return m, m.deleteSelected()
	case "u":
		return m, m.undo()
	case "U":
		return m, m.redo()
	case "b":
		m.ctrl.SelectTool(interaction.ToolBrush)
	case "x":
		m.ctrl.SelectTool(interaction.ToolEraser)
	case "[", "]":
		_, size := m.ctrl.Brush()
		if key == "[" {
			size = max(size-1, 1)
		} else {
			size = min(size+1, maxBrushSize)
		}
		m.ctrl.SetBrush("", size)
	case "c":
		if err := m.copySelected(); err != nil {
			m.errorMessage = fmt.Sprintf("Error copying: %s", err)
		} else {
			m.successMessage = "Copied element"
		}
	case "p":
		if _, err := m.paste(); err != nil {
			m.errorMessage = fmt.Sprintf("Error pasting: %s", err)
			return m, nil
		}
		return m, m.mountSurfaces()
	case "r":
		return m, m.toggleRecording()
	case "s":
		m.save()
	case "P":
		m.buf.doc.Publish()
		m.buf.dirty = true
		m.successMessage = "Published, press s to save"
	case "n":
		if m.buf.dirty && m.cfg.Editor.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmNewDocument
			return m, nil
		}
		return m, m.newDocument()
	case "o":
		m.startPicker(InputOpen)
	case "t":
		m.startPicker(InputTemplate)
	case "e":
		m.startInput(InputExportPNG, slug(m.buf.doc.Title))
	case "E":
		m.startInput(InputExportTXT, slug(m.buf.doc.Title))
	case "T":
		m.startInput(InputTitle, m.buf.doc.Title)
	case "M":
		m.startInput(InputSubject, m.buf.doc.Subject)
	}
	return m, nil
}

const maxBrushSize = 50

func slug(title string) string {
	s := strings.ToLower(strings.Join(strings.Fields(title), "-"))
	if s == "" {
		return "material"
	}
	return s
}

func (m *model) startInput(op InputOperation, initial string) {
	m.mode = ModeInput
	m.inputOp = op
	m.input = initial
	m.choices = nil
	m.selectedChoice = -1
}

// startPicker lists stored documents or templates for the open prompts.
func (m *model) startPicker(op InputOperation) {
	m.startInput(op, "")
	ctx := context.Background()
	switch op {
	case InputOpen:
		docs, err := m.store.List(ctx)
		if err != nil {
			m.errorMessage = fmt.Sprintf("Error listing materials: %s", err)
			return
		}
		for _, d := range docs {
			m.choices = append(m.choices, choice{ID: d.ID, Label: fmt.Sprintf("%s [%s, %s]", d.Title, d.Subject, d.Status)})
		}
	case InputTemplate:
		ts, err := m.store.Templates(ctx)
		if err != nil {
			m.errorMessage = fmt.Sprintf("Error listing templates: %s", err)
			return
		}
		for _, t := range ts {
			m.choices = append(m.choices, choice{ID: t.ID, Label: t.Title})
		}
	}
	if len(m.choices) > 0 {
		m.selectedChoice = 0
		m.input = m.choices[0].ID
	}
}

func (m model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = ModeNormal
		m.input = ""
		m.choices = nil
		return m, nil
	case tea.KeyCtrlD:
		if m.inputOp != InputOpen || m.selectedChoice < 0 {
			return m, nil
		}
		m.deleteID = m.choices[m.selectedChoice].ID
		m.input = ""
		m.choices = nil
		m.mode = ModeConfirm
		m.confirmAction = ConfirmDeleteMaterial
		return m, nil
	case tea.KeyUp, tea.KeyDown:
		if len(m.choices) == 0 {
			return m, nil
		}
		n := len(m.choices)
		if msg.Type == tea.KeyUp {
			m.selectedChoice = (m.selectedChoice - 1 + n) % n
		} else {
			m.selectedChoice = (m.selectedChoice + 1) % n
		}
		m.input = m.choices[m.selectedChoice].ID
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
		m.selectedChoice = -1
		return m, nil
	case tea.KeySpace:
		m.input += " "
		return m, nil
	case tea.KeyRunes:
		m.input += string(msg.Runes)
		m.selectedChoice = -1
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input)
		op := m.inputOp
		m.mode = ModeNormal
		m.input = ""
		m.choices = nil
		return m, m.submitInput(op, value)
	}
	return m, nil
}

func (m *model) submitInput(op InputOperation, value string) tea.Cmd {
	m.clearMessages()
	switch op {
	case InputOpen:
		if value == "" {
			return nil
		}
		return m.openDocument(value)
	case InputTemplate:
		if value == "" {
			return nil
		}
		return m.openTemplate(value)
	case InputExportPNG, InputExportTXT:
		if value == "" {
			m.errorMessage = "Please enter a filename"
			return nil
		}
		export := m.exportPNG
		if op == InputExportTXT {
			export = m.exportVisualTXT
		}
		path, err := export(value)
		if err != nil {
			m.errorMessage = fmt.Sprintf("Error exporting: %s", err)
			return nil
		}
		m.successMessage = fmt.Sprintf("Exported to %s", path)
	case InputTitle:
		m.buf.doc.Title = value
		m.buf.dirty = true
	case InputSubject:
		m.recordGesture(m.ctrl.Cancel())
		m.buf.doc.SetSubject(value)
		m.buf.dirty = true
		return m.mountSurfaces()
	}
	return nil
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmDeleteElement:
			return m, m.deleteSelected()
		case ConfirmQuit:
			return m, m.quit()
		case ConfirmNewDocument:
			return m, m.newDocument()
		case ConfirmDeleteMaterial:
			m.deleteMaterial(m.deleteID)
		}
		m.deleteID = ""
	case "n", "N", "esc":
		m.mode = ModeNormal
		m.deleteID = ""
	}
	return m, nil
}

func (m *model) addElement(kind material.Kind) tea.Cmd {
	doc := m.buf.doc
	if !doc.CanAdd(kind) {
		m.errorMessage = fmt.Sprintf("Cannot add %s: %s", kind.Label(), material.ErrFullSurfaceTaken)
		return nil
	}
	m.recordGesture(m.ctrl.Cancel())
	el, err := doc.AddElement(kind)
	if err != nil {
		m.errorMessage = fmt.Sprintf("Cannot add %s: %s", kind.Label(), err)
		return nil
	}
	doc.Select(el.ID)
	m.recordAction(Action{Type: ActionAddElement, After: el.Clone(), Index: doc.Len() - 1})
	return m.mountSurfaces()
}

func (m *model) deleteSelected() tea.Cmd {
	m.recordGesture(m.ctrl.Cancel())
	doc := m.buf.doc
	el, ok := doc.Element(doc.Selected())
	if !ok {
		return nil
	}
	if el.ID == m.recording {
		m.errorMessage = "Stop recording first"
		return nil
	}
	idx := doc.Index(el.ID)
	doc.DeleteElement(el.ID)
	m.recordAction(Action{Type: ActionDeleteElement, Before: el.Clone(), Index: idx})
	return m.mountSurfaces()
}

func (m *model) save() {
	m.recordGesture(m.ctrl.Cancel())
	doc := m.buf.doc
	if err := m.store.Save(context.Background(), doc); err != nil {
		var verr *material.ValidationError
		if errors.As(err, &verr) && len(verr.Fields) > 0 {
			f := verr.Fields[0]
			m.errorMessage = fmt.Sprintf("Cannot save: %s %s", f.Field, f.Error)
			return
		}
		m.errorMessage = fmt.Sprintf("Error saving: %s", err)
		return
	}
	m.buf.dirty = false
	m.successMessage = fmt.Sprintf("Saved %s (%s)", doc.Title, doc.ID)
}

// deleteMaterial removes a stored material. The open document keeps its
// contents but is saved under a new id next time if it was the one removed.
func (m *model) deleteMaterial(id string) {
	m.clearMessages()
	if err := m.store.Delete(context.Background(), id); err != nil {
		m.errorMessage = fmt.Sprintf("Error deleting material: %s", err)
		return
	}
	if m.buf.doc.ID == id {
		m.buf.doc.ID = ""
		m.buf.dirty = true
	}
	m.successMessage = fmt.Sprintf("Deleted material %s", id)
}

func (m *model) openDocument(id string) tea.Cmd {
	doc, err := m.store.Load(context.Background(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			m.errorMessage = fmt.Sprintf("No material with id %s", id)
		} else {
			m.errorMessage = fmt.Sprintf("Error opening material: %s", err)
		}
		return nil
	}
	cmd := m.setDocument(doc)
	m.successMessage = fmt.Sprintf("Opened %s", doc.Title)
	return cmd
}

// openTemplate starts a new material from a template. When the template
// cannot be used the editor says so and continues with an empty material.
func (m *model) openTemplate(id string) tea.Cmd {
	t, err := m.store.Template(context.Background(), id)
	var doc *material.Document
	if err == nil {
		doc, err = material.FromTemplate(t)
	}
	if err != nil {
		m.log.WithFields(logrus.Fields{"template": id}).Warnf("Error instantiating template: %v", err)
		cmd := m.setDocument(material.New(material.Metadata{Title: untitled}))
		m.errorMessage = fmt.Sprintf("Template %s is unavailable, starting with an empty material", id)
		return cmd
	}
	cmd := m.setDocument(doc)
	m.buf.dirty = true
	m.successMessage = fmt.Sprintf("New material from %s", t.Title)
	return cmd
}

func (m *model) newDocument() tea.Cmd {
	return m.setDocument(material.New(material.Metadata{Title: untitled}))
}

// setDocument replaces the open document. Any gesture on the old one is
// finished and its history is dropped.
func (m *model) setDocument(doc *material.Document) tea.Cmd {
	if m.recording != "" {
		m.errorMessage = "Stop recording first"
		return nil
	}
	m.ctrl.SetDocument(doc)
	m.registry.Reset()
	m.docGen++
	m.buf = Buffer{doc: doc, viewport: m.buf.viewport}
	if m.view == render.ModeViewer {
		m.player = m.newPlayer()
	}
	return m.mountSurfaces()
}

func (m *model) newPlayer() *player.Player {
	return player.New(m.buf.doc, player.Config{
		FlashDuration: m.cfg.Puzzle.FlashDuration,
		Logger:        m.log,
	})
}

func (m *model) toggleViewer() tea.Cmd {
	if m.view == render.ModeViewer {
		m.player.Cancel()
		m.player = nil
		m.view = render.ModeEditor
		return nil
	}
	m.recordGesture(m.ctrl.Cancel())
	m.player = m.newPlayer()
	m.view = render.ModeViewer
	return tick()
}

func (m *model) toggleRecording() tea.Cmd {
	if m.recording != "" {
		id := m.recording
		m.recording = ""
		session := m.session
		return func() tea.Msg {
			uri, err := session.Stop(context.Background())
			return recordedMsg{elementID: id, uri: uri, err: err}
		}
	}
	el, ok := m.buf.doc.Element(m.buf.doc.Selected())
	if !ok || el.Kind != material.KindAudioTask {
		m.errorMessage = "Select an audio task to record"
		return nil
	}
	if err := m.session.Start(context.Background()); err != nil {
		if errors.Is(err, audio.ErrDeviceUnavailable) {
			m.errorMessage = "No microphone available"
		} else {
			m.errorMessage = fmt.Sprintf("Error recording: %s", err)
		}
		m.log.WithFields(logrus.Fields{"element": el.ID}).Warnf("Error starting capture: %v", err)
		return nil
	}
	m.recording = el.ID
	m.successMessage = "Recording, press r to stop"
	return nil
}

func (m *model) attachRecording(msg recordedMsg) {
	if msg.err != nil {
		m.errorMessage = fmt.Sprintf("Error recording: %s", msg.err)
		return
	}
	doc := m.buf.doc
	before, ok := doc.Element(msg.elementID)
	if !ok {
		return
	}
	before = before.Clone()
	if err := audio.Attach(doc, msg.elementID, msg.uri); err != nil {
		m.errorMessage = fmt.Sprintf("Error storing recording: %s", err)
		return
	}
	after, _ := doc.Element(msg.elementID)
	m.recordAction(Action{Type: ActionUpdateElement, Before: before, After: after.Clone()})
	m.successMessage = "Recording saved"
}

// quit finalizes whatever is in progress before leaving: the active gesture
// is committed and a running recording is kept.
func (m *model) quit() tea.Cmd {
	m.recordGesture(m.ctrl.Cancel())
	if m.player != nil {
		m.player.Cancel()
	}
	if m.recording != "" {
		uri, err := m.session.Stop(context.Background())
		m.attachRecording(recordedMsg{elementID: m.recording, uri: uri, err: err})
		m.recording = ""
	}
	m.quitting = true
	return tea.Quit
}
