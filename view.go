package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/drawing"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/geometry"
	"github.com/chihwayi/ecd-materials-generator-sub001/internal/render"
)

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("24"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	pickerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// cellRect is a node's footprint in terminal cells.
type cellRect struct {
	x, y, w, h int
}

func toCells(vp geometry.Viewport, b geometry.Rect) cellRect {
	x0, y0 := vp.ToCell(b.Min())
	x1, y1 := vp.ToCell(b.Max())
	return cellRect{x: x0, y: y0, w: max(x1-x0, 3), h: max(y1-y0, 3)}
}

// drawTree draws every node of tree into a cols x rows grid of runes.
func drawTree(tree render.Tree, vp geometry.Viewport, cols, rows int, surfaces render.Surfaces) []string {
	grid := make([][]rune, rows)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", cols))
	}
	for _, n := range tree.Nodes {
		r := toCells(vp, n.Bounds)
		if n.Raster && surfaces != nil {
			if s, ok := surfaces.Surface(n.ElementID); ok {
				drawRaster(grid, r, s)
			}
		}
		drawBoxAt(grid, r, n.Selected || n.Active)
		drawTitle(grid, r, n.Title)
		if !n.Raster && len(n.Pieces) == 0 {
			drawLines(grid, r, n.Lines)
		}
		if n.Raster && len(n.Lines) > 0 {
			drawLines(grid, cellRect{x: r.x, y: r.y + r.h - 3, w: r.w, h: 3}, n.Lines[:1])
		}
		for _, p := range n.Pieces {
			drawPiece(grid, vp, p)
		}
		if !n.Handle.Empty() {
			hx, hy := vp.ToCell(n.Handle.Center())
			setCell(grid, hx, hy, '◢')
		}
	}
	lines := make([]string, rows)
	for y := range grid {
		lines[y] = string(grid[y])
	}
	return lines
}

func setCell(grid [][]rune, x, y int, r rune) {
	if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) {
		grid[y][x] = r
	}
}

func drawBoxAt(grid [][]rune, r cellRect, isSelected bool) {
	var corner, horizontal, vertical rune
	if isSelected {
		corner = '#'
		horizontal = '#'
		vertical = '#'
	} else {
		corner = '+'
		horizontal = '-'
		vertical = '|'
	}

	for y := r.y; y < r.y+r.h; y++ {
		for x := r.x; x < r.x+r.w; x++ {
			switch {
			case (y == r.y || y == r.y+r.h-1) && (x == r.x || x == r.x+r.w-1):
				setCell(grid, x, y, corner)
			case y == r.y || y == r.y+r.h-1:
				setCell(grid, x, y, horizontal)
			case x == r.x || x == r.x+r.w-1:
				setCell(grid, x, y, vertical)
			}
		}
	}
}

func drawTitle(grid [][]rune, r cellRect, title string) {
	writeClipped(grid, r.x+2, r.y, " "+title+" ", r.x+r.w-2)
}

// drawLines fills the inside of r with text, clipped to the border.
func drawLines(grid [][]rune, r cellRect, lines []string) {
	for i, line := range lines {
		y := r.y + 1 + i
		if y >= r.y+r.h-1 {
			break
		}
		writeClipped(grid, r.x+1, y, line, r.x+r.w-1)
	}
}

func writeClipped(grid [][]rune, x, y int, text string, limit int) {
	for _, ch := range text {
		if x >= limit {
			return
		}
		setCell(grid, x, y, ch)
		x++
	}
}

// drawRaster shades each inner cell by the coverage of the surface pixel
// under its center.
func drawRaster(grid [][]rune, r cellRect, s *drawing.Surface) {
	img := s.Image()
	b := img.Bounds()
	innerW, innerH := r.w-2, r.h-2
	if innerW <= 0 || innerH <= 0 {
		return
	}
	for cy := 0; cy < innerH; cy++ {
		for cx := 0; cx < innerW; cx++ {
			px := b.Min.X + (2*cx+1)*b.Dx()/(2*innerW)
			py := b.Min.Y + (2*cy+1)*b.Dy()/(2*innerH)
			a := img.RGBAAt(px, py).A
			switch {
			case a > 192:
				setCell(grid, r.x+1+cx, r.y+1+cy, '█')
			case a > 64:
				setCell(grid, r.x+1+cx, r.y+1+cy, '▒')
			case a > 0:
				setCell(grid, r.x+1+cx, r.y+1+cy, '░')
			}
		}
	}
}

func drawPiece(grid [][]rune, vp geometry.Viewport, p render.Piece) {
	r := toCells(vp, p.Bounds)
	switch {
	case p.Flashing:
		drawBoxAt(grid, r, true)
	case p.Kind == render.PieceSlot && p.Placed:
		return
	default:
		drawBoxAt(grid, r, p.Dragged)
	}
	writeClipped(grid, r.x+1, r.y+r.h/2, p.Label, r.x+r.w-1)
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	if m.help {
		return m.helpView()
	}

	cols := max(m.width, 1)
	rows := max(m.height-statusLines, 1)

	var result strings.Builder
	if m.mode == ModeInput && len(m.choices) > 0 {
		result.WriteString(m.pickerView(cols, rows))
	} else {
		tree := m.tree()
		result.WriteString(strings.Join(drawTree(tree, m.buf.viewport, cols, rows, m.registry), "\n"))
	}
	result.WriteString("\n")
	result.WriteString(m.statusLine(cols))
	return result.String()
}

func (m model) pickerView(cols, rows int) string {
	var b strings.Builder
	title := "Open a saved material (ctrl+d deletes):"
	if m.inputOp == InputTemplate {
		title = "Start from a template:"
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("─", cols) + "\n")

	maxItems := max(rows-4, 1)
	start := 0
	if m.selectedChoice >= maxItems {
		start = m.selectedChoice - maxItems + 1
	}
	end := min(start+maxItems, len(m.choices))
	for i := start; i < end; i++ {
		c := m.choices[i]
		line := fmt.Sprintf("  %s  (%s)", c.Label, c.ID)
		if i == m.selectedChoice {
			line = pickerStyle.Render("> " + line[2:])
		}
		b.WriteString(line + "\n")
	}
	for i := end - start; i < maxItems; i++ {
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat("─", cols))
	return b.String()
}

func (m model) statusLine(cols int) string {
	var status string
	switch m.mode {
	case ModeInput:
		status = fmt.Sprintf("%s: %s█  (Enter to confirm, Esc to cancel)", m.inputPrompt(), m.input)
	case ModeConfirm:
		status = m.confirmPrompt() + " (y/n)"
	default:
		status = m.normalStatus()
	}
	line := statusStyle.Width(cols).Render(status)
	switch {
	case m.errorMessage != "":
		return errorStyle.Render(m.errorMessage) + "  " + line
	case m.successMessage != "":
		return successStyle.Render(m.successMessage) + "  " + line
	}
	return line
}

func (m model) normalStatus() string {
	doc := m.buf.doc
	title := doc.Title
	if m.buf.dirty {
		title += "*"
	}
	if m.view == render.ModeViewer {
		solved, total := m.player.Progress()
		return fmt.Sprintf("VIEW | %s | puzzles %d/%d | v: back to editor, ?: help", title, solved, total)
	}
	color, size := m.ctrl.Brush()
	pan := ""
	if m.zPanMode {
		pan = " | PAN"
	}
	rec := ""
	if m.recording != "" {
		rec = " | ● REC"
	}
	return fmt.Sprintf("EDIT | %s [%s] | %s | %s %s %.0fpx%s%s | ?: help",
		title, doc.Subject, m.ctrl.State().Name(), m.ctrl.Tool(), color, size, pan, rec)
}

func (m model) inputPrompt() string {
	switch m.inputOp {
	case InputOpen:
		return "Material id"
	case InputTemplate:
		return "Template id"
	case InputExportPNG:
		return "Export PNG as"
	case InputExportTXT:
		return "Export text as"
	case InputTitle:
		return "Title"
	case InputSubject:
		return "Subject"
	default:
		return "Input"
	}
}

func (m model) confirmPrompt() string {
	switch m.confirmAction {
	case ConfirmDeleteElement:
		return "Delete the selected element?"
	case ConfirmQuit:
		return "Quit with unsaved changes?"
	case ConfirmNewDocument:
		return "Discard unsaved changes and start a new material?"
	case ConfirmDeleteMaterial:
		return fmt.Sprintf("Delete stored material %s?", m.deleteID)
	default:
		return "Are you sure?"
	}
}

var helpLines = []string{
	"Materials Editor Help",
	"=====================",
	"",
	"Mouse:",
	"  press/drag       Select and move an element, paint on a drawing",
	"  drag ◢           Resize an element",
	"  press empty      Clear selection",
	"",
	"Elements:",
	"  1-9 0 ! @ # $ %  Add text, image, audio, quiz, cultural, canvas,",
	"                   drawing task, audio task, image task, matching,",
	"                   sequencing, pattern, memory, math, word",
	"  d                Delete selected element",
	"  c / p            Copy selected element / paste",
	"  h/j/k/l, arrows  Nudge selected element (Shift: 2x)",
	"  r                Start/stop recording on a selected audio task",
	"",
	"Drawing:",
	"  b / x            Brush / eraser",
	"  [ / ]            Smaller / larger brush",
	"",
	"View:",
	"  z                Toggle pan mode (arrows then pan)",
	"  v                Toggle student viewer",
	"",
	"Material:",
	"  T / M            Set title / subject",
	"  P                Publish",
	"  n                New material",
	"  s                Save",
	"  o                Open a saved material (ctrl+d deletes the highlighted one)",
	"  t                Start from a template",
	"  e / E            Export PNG / text",
	"",
	"General:",
	"  u / U            Undo / redo",
	"  Esc              Clear selection, cancel prompt",
	"  ?                Toggle this help screen",
	"  q / Ctrl+C       Quit",
}

func (m model) helpView() string {
	visibleHeight := max(m.height-1, 1)
	start := min(m.helpScroll, max(len(helpLines)-visibleHeight, 0))
	end := min(start+visibleHeight, len(helpLines))

	result := helpStyle.Render(strings.Join(helpLines[start:end], "\n"))
	status := fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close", start+1, end, len(helpLines))
	return result + "\n" + status
}
