package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestModel(t *testing.T, cfg *Config) (model, *testClock) {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := NewEditorSession(NewVisualTree(), WithRasterizer(NewGGRasterizer()))
	m := newModel(s, cfg)
	clock := &testClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m.now = clock.now
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, clock
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(model)
	require.True(t, ok)
	return nm
}

func keys(t *testing.T, m model, ks ...string) model {
	t.Helper()
	for _, k := range ks {
		m = update(t, m, keyMsg(k))
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func release(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone}
}

func TestModelAddNodeAndCycleType(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m = keys(t, m, "a", "t", "a")
	nodes := m.session.Diagram().Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, NodeProcess, nodes[0].Type)
	assert.Equal(t, NodeDecision, nodes[1].Type)
	sel, _ := m.session.CurrentSelection()
	assert.Equal(t, NodeRef(nodes[1].ID), sel)
	assert.Contains(t, m.View(), "Mode: IDLE")
}

func TestModelDefaultNodeTypeFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultNodeType = "input"
	m, _ := newTestModel(t, cfg)

	m = keys(t, m, "a")
	assert.Equal(t, NodeInput, m.session.Diagram().Nodes()[0].Type)
}

func TestModelDoubleClickEditsNode(t *testing.T) {
	m, clock := newTestModel(t, nil)
	m = keys(t, m, "a")

	// The first node sits at (260,100); cell (40,8) is on its label.
	m = update(t, m, press(40, 8))
	m = update(t, m, release(40, 8))
	clock.advance(150 * time.Millisecond)
	m = update(t, m, press(40, 8))
	m = update(t, m, release(40, 8))
	require.Equal(t, ModeEditingText, m.session.Mode())

	m = keys(t, m, "Hi", " ", "there", "enter")
	n, _ := m.session.Diagram().Node("1")
	assert.Equal(t, "Hi there", n.Text)
}

func TestModelSlowClicksDoNotEdit(t *testing.T) {
	m, clock := newTestModel(t, nil)
	m = keys(t, m, "a")

	m = update(t, m, press(40, 8))
	m = update(t, m, release(40, 8))
	clock.advance(time.Second)
	m = update(t, m, press(40, 8))
	m = update(t, m, release(40, 8))
	assert.Equal(t, ModeIdle, m.session.Mode())
}

func TestModelDragWithMouse(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = keys(t, m, "a")

	m = update(t, m, press(40, 8))
	m = update(t, m, tea.MouseMsg{X: 50, Y: 14, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = update(t, m, release(50, 14))

	// Ten columns and six rows are (80,96) diagram units.
	n, _ := m.session.Diagram().Node("1")
	assert.Equal(t, Point{340, 200}, n.Position)
	assert.Equal(t, ModeIdle, m.session.Mode())
}

func TestModelKeyboardConnection(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = keys(t, m, "a", "a", "c")
	require.Equal(t, ModeConnecting, m.session.Mode())
	assert.Contains(t, m.View(), "Connecting from node 2")

	// Left connector of node 1 at (260,130) is cell (32,7).
	m = update(t, m, press(32, 7))
	m = update(t, m, release(32, 7))

	conns := m.session.Diagram().Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, "2", conns[0].SourceID)
	assert.Equal(t, "1", conns[0].TargetID)
	assert.Equal(t, SideLeft, conns[0].TargetSide)
}

func TestModelRightClickReportsConnectError(t *testing.T) {
	m, _ := newTestModel(t, nil)
	a := m.session.AddNodeAt(Point{0, 0}, NodeProcess, "A")
	require.NoError(t, m.session.PointerDown(ConnectorAnchor(a, SideRight, 1)))
	require.Equal(t, ModeConnecting, m.session.Mode())
	m.session.connect.target = &ConnectorRef{NodeID: "99", Side: SideLeft}

	m = update(t, m, tea.MouseMsg{X: 5, Y: 20, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	assert.Contains(t, m.errorMessage, ErrUnknownNode.Error())
	assert.Equal(t, ModeIdle, m.session.Mode())
	assert.Empty(t, m.session.Diagram().Connections())
}

func TestModelEscapeCancelsConnection(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = keys(t, m, "a", "c", "esc")
	assert.Equal(t, ModeIdle, m.session.Mode())
	_, ok := m.session.CurrentSelection()
	assert.False(t, ok)
}

func TestModelConfirmations(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = keys(t, m, "a", "a", "d")
	require.Equal(t, uiConfirm, m.ui)
	assert.Contains(t, m.View(), "Delete the selected node")

	m = keys(t, m, "n")
	assert.Equal(t, uiNormal, m.ui)
	assert.Len(t, m.session.Diagram().Nodes(), 2)

	m = keys(t, m, "d", "y")
	assert.Len(t, m.session.Diagram().Nodes(), 1)

	m = keys(t, m, "C", "y")
	assert.True(t, m.session.Diagram().Empty())

	m = keys(t, m, "q")
	require.Equal(t, uiConfirm, m.ui)
	_, cmd := m.Update(keyMsg("y"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModelWithoutConfirmations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Confirmations = false
	m, _ := newTestModel(t, cfg)

	m = keys(t, m, "a", "d")
	assert.Equal(t, uiNormal, m.ui)
	assert.True(t, m.session.Diagram().Empty())

	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
}

func TestModelEditSelectedAndCancel(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = keys(t, m, "e")
	assert.NotEmpty(t, m.errorMessage)

	m = keys(t, m, "a", "e", "Gone", "esc")
	assert.Equal(t, ModeIdle, m.session.Mode())
	n, _ := m.session.Diagram().Node("1")
	assert.Equal(t, defaultNodeText, n.Text)
}

func TestModelPropertiesPanel(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = keys(t, m, "a", "tab")
	require.True(t, m.panelOpen)
	assert.Contains(t, m.View(), "Node 1")

	m = keys(t, m, "down", "enter", "!", "enter")
	n, _ := m.session.Diagram().Node("1")
	assert.Equal(t, "New Node!", n.Text)

	m = keys(t, m, "down", "enter", "backspace", "backspace", "backspace", "42", "enter")
	n, _ = m.session.Diagram().Node("1")
	assert.Equal(t, 42.0, n.Position.X)

	m = keys(t, m, "k", "k", "l")
	n, _ = m.session.Diagram().Node("1")
	assert.Equal(t, NodeDecision, n.Type)

	m = keys(t, m, "tab")
	assert.False(t, m.panelFocus)
}

func TestModelZoomAndHelp(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = keys(t, m, "+", "+")
	assert.Equal(t, 1.2, m.session.Scale())
	assert.Contains(t, m.View(), "Zoom: 120%")

	m = keys(t, m, "0", "?")
	assert.Equal(t, 1.0, m.session.Scale())
	assert.True(t, strings.HasPrefix(m.View(), "flowchart help"))
	m = keys(t, m, "esc")
	assert.False(t, m.help)
}

func TestModelFileRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SaveDirectory = t.TempDir()
	m, _ := newTestModel(t, cfg)

	m = keys(t, m, "a", "a", "s")
	require.Equal(t, uiFileInput, m.ui)
	assert.Equal(t, jsonExportName, m.filename)
	m = keys(t, m, "enter")
	assert.Equal(t, uiNormal, m.ui)
	_, err := os.Stat(filepath.Join(cfg.SaveDirectory, jsonExportName))
	require.NoError(t, err)

	m = keys(t, m, "s", "enter")
	require.Equal(t, uiConfirm, m.ui, "existing files ask before overwrite")
	m = keys(t, m, "y")
	assert.Equal(t, uiNormal, m.ui)

	m = keys(t, m, "S", "enter")
	_, err = os.Stat(filepath.Join(cfg.SaveDirectory, pngExportName))
	require.NoError(t, err)

	m.session.ClearAll()
	m = keys(t, m, "o")
	assert.Equal(t, []string{jsonExportName}, m.fileList)
	m = keys(t, m, "enter")
	assert.Len(t, m.session.Diagram().Nodes(), 2)
	assert.Contains(t, m.successMessage, "Loaded")
}

func TestModelImportErrorKeepsPrompt(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SaveDirectory = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.SaveDirectory, "bad.json"), []byte(`{"nodes": 1}`), 0o644))
	m, _ := newTestModel(t, cfg)
	m = keys(t, m, "a")

	m = keys(t, m, "o", "enter")
	assert.Equal(t, uiFileInput, m.ui)
	assert.Contains(t, m.errorMessage, "malformed")
	assert.Len(t, m.session.Diagram().Nodes(), 1)
}
