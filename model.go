package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const doubleClickWindow = 400 * time.Millisecond

// uiMode is the state of the shell around the editor session.
type uiMode int

const (
	uiNormal uiMode = iota
	uiFileInput
	uiConfirm
)

type model struct {
	session *EditorSession
	canvas  *Canvas
	cfg     *Config

	width      int
	height     int
	ui         uiMode
	help       bool
	helpScroll int

	newNodeType NodeType
	lastPointer Point

	fileOp            FileOperation
	filename          string
	fileList          []string
	selectedFileIndex int
	confirmAction     ConfirmAction
	pendingPath       string

	panelOpen    bool
	panelFocus   bool
	panelField   int
	panelEditing bool
	panelBuffer  string

	lastClick     time.Time
	lastClickCell cellPos
	now           func() time.Time

	errorMessage   string
	successMessage string
}

func newModel(s *EditorSession, cfg *Config) model {
	return model{
		session:           s,
		canvas:            NewCanvas(),
		cfg:               cfg,
		newNodeType:       cfg.NodeType(),
		selectedFileIndex: -1,
		now:               time.Now,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m *model) setError(err error) {
	m.errorMessage = err.Error()
	m.successMessage = ""
}

func (m *model) setSuccess(msg string) {
	m.successMessage = msg
	m.errorMessage = ""
}

func (m *model) clearMessages() {
	m.errorMessage = ""
	m.successMessage = ""
}

// canvasSize is the cell area left for the diagram after the status line
// and the properties panel.
func (m *model) canvasSize() (int, int) {
	w, h := m.width, m.height-1
	if m.panelOpen {
		w -= panelWidth
	}
	return max(w, 1), max(h, 1)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.help || m.ui != uiNormal {
		return m, nil
	}
	w, h := m.canvasSize()
	inside := msg.X < w && msg.Y < h

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.canvas.Pan(0, -2)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.canvas.Pan(0, 2)
		return m, nil
	}

	p := m.canvas.ScreenPoint(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionMotion:
		m.lastPointer = p
		m.session.PointerMove(p)
	case tea.MouseActionRelease:
		// Releases finish gestures wherever they happen.
		if err := m.session.PointerUp(); err != nil {
			m.setError(err)
		}
	case tea.MouseActionPress:
		if !inside {
			return m, nil
		}
		m.lastPointer = p
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.pointerPress(p, cellPos{msg.X, msg.Y})
		case tea.MouseButtonRight:
			if err := m.session.PointerDown(p); err != nil {
				m.setError(err)
			}
			if err := m.session.PointerUp(); err != nil {
				m.setError(err)
				return m, nil
			}
			m.session.EditSelected()
		}
	}
	return m, nil
}

// pointerPress turns a second left press on the same cell within the
// double-click window into a double click.
func (m *model) pointerPress(p Point, at cellPos) {
	now := m.now()
	double := at == m.lastClickCell && now.Sub(m.lastClick) <= doubleClickWindow
	m.lastClick, m.lastClickCell = now, at
	m.clearMessages()

	if double && m.session.DoubleClick(p) {
		m.lastClick = time.Time{}
		return
	}
	if err := m.session.PointerDown(p); err != nil {
		m.setError(err)
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.help {
		switch msg.String() {
		case "?", "esc", "q":
			m.help = false
			m.helpScroll = 0
		case "j", "down":
			m.helpScroll++
		case "k", "up":
			if m.helpScroll > 0 {
				m.helpScroll--
			}
		}
		return m, nil
	}

	switch m.ui {
	case uiConfirm:
		return m.handleConfirmKey(msg)
	case uiFileInput:
		return m.handleFileKey(msg)
	}

	if m.session.Mode() == ModeEditingText {
		m.handleEditKey(msg)
		return m, nil
	}
	if m.panelOpen && m.panelFocus && m.handlePanelKey(msg) {
		return m, nil
	}
	return m.handleNormalKey(msg)
}

func (m *model) handleEditKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter:
		m.session.CommitEdit()
	case tea.KeyEscape:
		m.session.CancelEdit()
	case tea.KeyBackspace:
		m.session.Backspace()
	case tea.KeyCtrlV:
		text, err := pasteText()
		if err != nil {
			m.setError(fmt.Errorf("paste: %w", err))
			return
		}
		m.session.TypeString(text)
	case tea.KeyLeft, tea.KeyRight, tea.KeyEnd, tea.KeyHome:
		m.session.CollapseSelection()
	case tea.KeySpace:
		m.session.TypeRune(' ')
	case tea.KeyRunes:
		m.session.TypeString(string(msg.Runes))
	}
}

func (m model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEscape {
		m.session.CancelConnection()
		m.session.ClearSelection()
		m.clearMessages()
		return m, nil
	}

	key := msg.String()
	if m.handlePan(key) {
		return m, nil
	}

	switch key {
	case "ctrl+c", "q":
		if !m.cfg.Confirmations {
			return m, tea.Quit
		}
		m.ask(ConfirmQuit)
	case "?":
		m.help = true
	case "a":
		n := m.session.AddNode(m.newNodeType, "")
		m.session.Select(NodeRef(n.ID))
		m.setSuccess(fmt.Sprintf("Added %s node %s", n.Type, n.ID))
	case "A":
		p := m.lastPointer.Div(m.session.Scale())
		g := m.session.GridSize()
		n := m.session.AddNodeAt(Point{snapToGrid(p.X, g), snapToGrid(p.Y, g)}, m.newNodeType, "")
		m.session.Select(NodeRef(n.ID))
		m.setSuccess(fmt.Sprintf("Added %s node %s", n.Type, n.ID))
	case "t":
		m.newNodeType = m.newNodeType.Next()
		m.setSuccess("New nodes: " + string(m.newNodeType))
	case "d", "delete", "backspace":
		sel, ok := m.session.CurrentSelection()
		if !ok {
			m.setError(ErrNothingSelected)
			return m, nil
		}
		if sel.Kind == EntityNode && m.cfg.Confirmations {
			m.ask(ConfirmDeleteNode)
			return m, nil
		}
		m.session.DeleteSelected()
	case "C":
		if m.session.Diagram().Empty() {
			return m, nil
		}
		if !m.cfg.Confirmations {
			m.session.ClearAll()
			return m, nil
		}
		m.ask(ConfirmClearAll)
	case "e":
		if !m.session.EditSelected() {
			m.setError(ErrNothingSelected)
		}
	case "c":
		sel, ok := m.session.CurrentSelection()
		if !ok || sel.Kind != EntityNode {
			m.setError(fmt.Errorf("select a node to connect from: %w", ErrNothingSelected))
			return m, nil
		}
		m.session.StartConnectionFrom(sel.ID, SideRight)
		m.setSuccess("Click a connector on the target node")
	case "+", "=":
		m.session.ZoomIn()
	case "-", "_":
		m.session.ZoomOut()
	case "0":
		m.session.ResetZoom()
		m.canvas.ResetPan()
	case "f":
		m.centerOnSelection()
	case "s":
		m.openFilePrompt(FileOpExportJSON)
	case "S":
		m.openFilePrompt(FileOpExportPNG)
	case "o":
		m.openFilePrompt(FileOpImport)
	case "y":
		var buf bytes.Buffer
		if err := m.session.ExportJSON(&buf); err != nil {
			m.setError(err)
			return m, nil
		}
		if err := writeClipboard(buf.String()); err != nil {
			m.setError(fmt.Errorf("copy: %w", err))
			return m, nil
		}
		m.setSuccess("Copied diagram JSON to clipboard")
	case "tab":
		switch {
		case !m.panelOpen:
			m.panelOpen, m.panelFocus, m.panelField = true, true, 0
		case !m.panelFocus:
			m.panelFocus = true
		default:
			m.panelOpen, m.panelFocus = false, false
		}
	}
	return m, nil
}

func (m *model) ask(action ConfirmAction) {
	m.ui = uiConfirm
	m.confirmAction = action
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.ui = uiNormal
		switch m.confirmAction {
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmClearAll:
			m.session.ClearAll()
			m.setSuccess("Cleared diagram")
		case ConfirmDeleteNode:
			m.session.DeleteSelected()
		case ConfirmOverwriteFile:
			m.runFileOp(m.pendingPath)
		}
		m.confirmAction = ConfirmNone
	case "n", "N", "esc":
		if m.confirmAction == ConfirmOverwriteFile {
			m.ui = uiFileInput
		} else {
			m.ui = uiNormal
		}
		m.confirmAction = ConfirmNone
	}
	return m, nil
}

func (m *model) openFilePrompt(op FileOperation) {
	m.ui = uiFileInput
	m.fileOp = op
	m.clearMessages()
	m.fileList = nil
	m.selectedFileIndex = -1
	switch op {
	case FileOpExportJSON:
		m.filename = jsonExportName
	case FileOpExportPNG:
		m.filename = pngExportName
	case FileOpImport:
		m.filename = ""
		m.fileList = listJSONFiles(m.cfg.SaveDirectory)
		if len(m.fileList) > 0 {
			m.selectedFileIndex = 0
			m.filename = m.fileList[0]
		}
	}
}

func (m model) handleFileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.ui = uiNormal
		m.filename = ""
		m.errorMessage = ""
	case tea.KeyUp, tea.KeyDown:
		if m.fileOp != FileOpImport || len(m.fileList) == 0 {
			return m, nil
		}
		step := 1
		if msg.Type == tea.KeyUp {
			step = len(m.fileList) - 1
		}
		m.selectedFileIndex = (max(m.selectedFileIndex, 0) + step) % len(m.fileList)
		m.filename = m.fileList[m.selectedFileIndex]
	case tea.KeyEnter:
		name := strings.TrimSpace(m.filename)
		if name == "" {
			m.errorMessage = "Please enter a filename"
			return m, nil
		}
		ext := ".json"
		if m.fileOp == FileOpExportPNG {
			ext = ".png"
		}
		path, err := m.cfg.GetSavePath(withExt(name, ext))
		if err != nil {
			m.setError(err)
			return m, nil
		}
		if m.fileOp != FileOpImport && m.cfg.Confirmations && fileExists(path) {
			m.pendingPath = path
			m.ask(ConfirmOverwriteFile)
			return m, nil
		}
		m.runFileOp(path)
	case tea.KeyBackspace:
		if r := []rune(m.filename); len(r) > 0 {
			m.filename = string(r[:len(r)-1])
		}
	case tea.KeyRunes:
		m.filename += string(msg.Runes)
	}
	return m, nil
}

// runFileOp performs the pending file operation. Failures keep the prompt
// open so the user can retry with another name.
func (m *model) runFileOp(path string) {
	var err error
	switch m.fileOp {
	case FileOpExportJSON:
		err = saveJSON(m.session, path)
	case FileOpExportPNG:
		err = savePNG(m.session, path)
	case FileOpImport:
		err = loadJSON(m.session, path)
	}
	if err != nil {
		m.ui = uiFileInput
		m.setError(err)
		return
	}

	m.ui = uiNormal
	m.filename = ""
	abs, _ := filepath.Abs(path)
	switch m.fileOp {
	case FileOpImport:
		m.canvas.ResetPan()
		m.setSuccess("Loaded " + abs)
	default:
		m.setSuccess("Saved to " + abs)
	}
}

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Background(lipgloss.Color("236")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Background(lipgloss.Color("236"))
)

func (m model) View() string {
	if m.help {
		return m.helpView()
	}
	w, h := m.canvasSize()
	body := m.canvas.Render(m.session.Tree(), w, h)
	if m.panelOpen {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.panelView(h))
	}
	return body + "\n" + m.statusLine()
}

func (m model) statusLine() string {
	var line string
	switch m.ui {
	case uiConfirm:
		line = "Mode: CONFIRM | " + m.confirmMessage()
	case uiFileInput:
		op := map[FileOperation]string{
			FileOpImport:     "Import JSON",
			FileOpExportJSON: "Export JSON",
			FileOpExportPNG:  "Export PNG",
		}[m.fileOp]
		line = fmt.Sprintf("Mode: FILE | %s filename: %s", op, m.filename)
		if m.fileOp == FileOpImport && len(m.fileList) > 0 {
			line += fmt.Sprintf(" (%d/%d) | ↑/↓=browse", m.selectedFileIndex+1, len(m.fileList))
		}
		line += " | Enter=confirm, Esc=cancel"
	default:
		line = fmt.Sprintf("Mode: %s | Zoom: %.0f%% | New: %s", m.session.Mode(), m.session.Scale()*100, m.newNodeType)
		if src, ok := m.session.PendingConnection(); ok {
			line += fmt.Sprintf(" | Connecting from node %s (%s)", src.NodeID, src.Side)
		}
		if sel, ok := m.session.CurrentSelection(); ok {
			line += fmt.Sprintf(" | Selected: %s %s", sel.Kind, sel.ID)
		}
		if m.session.Mode() == ModeEditingText {
			line += " | Enter=commit, Esc=cancel, Ctrl+V=paste"
		}
	}

	status := statusStyle.Render(line)
	switch {
	case m.errorMessage != "":
		status += errorStyle.Render(" | ERROR: " + m.errorMessage)
	case m.successMessage != "":
		status += okStyle.Render(" | " + m.successMessage)
	case m.ui == uiNormal:
		status += statusStyle.Render(" | ? for help | q to quit")
	}
	return status
}

func (m model) confirmMessage() string {
	switch m.confirmAction {
	case ConfirmQuit:
		return "Quit? Unsaved changes will be lost. (y/n)"
	case ConfirmClearAll:
		return "Clear the whole diagram? This cannot be undone. (y/n)"
	case ConfirmDeleteNode:
		return "Delete the selected node and its connections? (y/n)"
	case ConfirmOverwriteFile:
		return fmt.Sprintf("File %s already exists. Overwrite? (y/n)", filepath.Base(m.pendingPath))
	}
	return ""
}

var helpLines = []string{
	"flowchart help",
	"==============",
	"",
	"Mouse:",
	"  click            Select a node or connection, empty space clears",
	"  drag node        Move it (snaps to the grid)",
	"  drag connector   Draw a connection to another node's connector",
	"  double-click     Edit node text or connection label",
	"  right-click      Edit the entity under the pointer",
	"  wheel            Scroll",
	"",
	"Nodes and connections:",
	"  a                Add a node at the next free slot",
	"  A                Add a node at the pointer",
	"  t                Cycle the type of new nodes",
	"  e                Edit the selected node or connection",
	"  c                Connect from the selected node, then click a connector",
	"  d/Delete         Delete the selection (node deletes its connections)",
	"  C                Clear the whole diagram",
	"",
	"While editing:",
	"  Enter            Commit (empty node text is rejected)",
	"  Esc              Cancel and restore the original text",
	"  Backspace        Delete",
	"  Ctrl+V           Paste",
	"",
	"View:",
	"  +/-/0            Zoom in, out, reset",
	"  h/j/k/l, arrows  Pan (Shift pans faster)",
	"  f                Center on the selected node",
	"  Tab              Properties panel",
	"",
	"Files:",
	"  s                Export JSON",
	"  S                Export PNG",
	"  o                Import JSON",
	"  y                Copy the diagram JSON to the clipboard",
	"",
	"  ?                Toggle this help",
	"  q/Ctrl+C         Quit",
}

func (m model) helpView() string {
	visible := max(m.height-1, 1)
	start := min(m.helpScroll, max(len(helpLines)-visible, 0))
	end := min(start+visible, len(helpLines))
	return strings.Join(helpLines[start:end], "\n") +
		fmt.Sprintf("\nHelp (%d-%d of %d lines) | j/k to scroll, Esc to close", start+1, end, len(helpLines))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
