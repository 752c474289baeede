package main

import (
	"bytes"
	"image/png"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, opts ...SessionOption) *EditorSession {
	t.Helper()
	return NewEditorSession(NewVisualTree(), opts...)
}

func TestNewEditorSessionDefaults(t *testing.T) {
	s := NewEditorSession(nil)
	require.NotNil(t, s.Tree())
	assert.Equal(t, ModeIdle, s.Mode())
	assert.Equal(t, 1.0, s.Scale())
	assert.Equal(t, float64(defaultGridSize), s.GridSize())
	assert.True(t, s.Diagram().Empty())
	assert.NotEmpty(t, s.id)
}

func TestSessionLogsWithSessionID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := newTestSession(t, WithLogger(logger))

	a := s.AddNode(NodeProcess, "A")
	_, err := s.Connect(a.ID, a.ID, SideRight, SideLeft, "")
	require.ErrorIs(t, err, ErrSelfLoop)

	out := buf.String()
	assert.Contains(t, out, "session="+s.id)
	assert.Contains(t, out, "node added")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "connection rejected")
}

func TestZoomBounds(t *testing.T) {
	s := newTestSession(t)

	s.ZoomIn()
	assert.Equal(t, 1.1, s.Scale())
	for i := 0; i < 20; i++ {
		s.ZoomIn()
	}
	assert.Equal(t, float64(maxScale), s.Scale())

	for i := 0; i < 30; i++ {
		s.ZoomOut()
	}
	assert.Equal(t, float64(minScale), s.Scale())
	s.ZoomIn()
	assert.Equal(t, 0.6, s.Scale())

	s.ResetZoom()
	assert.Equal(t, 1.0, s.Scale())
	assert.Equal(t, 1.0, s.Tree().Scale())
}

func TestZoomKeepsStoredCoordinates(t *testing.T) {
	s := newTestSession(t)
	a := s.AddNodeAt(Point{0, 0}, NodeProcess, "A")
	b := s.AddNodeAt(Point{400, 0}, NodeProcess, "B")
	conn, err := s.Connect(a.ID, b.ID, SideRight, SideLeft, "")
	require.NoError(t, err)

	s.ZoomIn()
	s.ZoomIn()

	got, _ := s.Diagram().Node(a.ID)
	assert.Equal(t, Point{0, 0}, got.Position)
	v, ok := s.Tree().Connection(conn.ID)
	require.True(t, ok)
	assert.True(t, v.Curve.Start.Eq(Point{120, 30}, 1e-9))
}

func TestDeleteSelectedNodeCascades(t *testing.T) {
	s := newTestSession(t)
	a := s.AddNode(NodeProcess, "A")
	b := s.AddNode(NodeProcess, "B")
	conn, err := s.Connect(a.ID, b.ID, SideRight, SideLeft, "yes")
	require.NoError(t, err)

	s.Select(NodeRef(a.ID))
	s.DeleteSelected()

	assert.Empty(t, s.Diagram().Connections())
	_, ok := s.Tree().Connection(conn.ID)
	assert.False(t, ok)
	_, ok = s.Tree().Label(conn.ID)
	assert.False(t, ok)
	_, ok = s.CurrentSelection()
	assert.False(t, ok)
}

func TestDeleteSelectedConnection(t *testing.T) {
	s := newTestSession(t)
	a := s.AddNode(NodeProcess, "A")
	b := s.AddNode(NodeProcess, "B")
	conn, _ := s.Connect(a.ID, b.ID, SideRight, SideLeft, "")

	s.Select(ConnectionRef(conn.ID))
	s.DeleteSelected()
	assert.Empty(t, s.Diagram().Connections())
	assert.Len(t, s.Diagram().Nodes(), 2)

	s.DeleteSelected()
	assert.Len(t, s.Diagram().Nodes(), 2, "nothing selected is a no-op")
}

func TestDeleteNodeClearsSelectedConnection(t *testing.T) {
	s := newTestSession(t)
	a := s.AddNode(NodeProcess, "A")
	b := s.AddNode(NodeProcess, "B")
	conn, _ := s.Connect(a.ID, b.ID, SideRight, SideLeft, "")

	s.Select(ConnectionRef(conn.ID))
	s.DeleteNode(b.ID)
	_, ok := s.CurrentSelection()
	assert.False(t, ok)
	assert.True(t, s.Tree().Selected().IsZero())
}

func TestClearAllResetsEverything(t *testing.T) {
	s := newTestSession(t)
	a := s.AddNode(NodeProcess, "A")
	b := s.AddNode(NodeProcess, "B")
	_, err := s.Connect(a.ID, b.ID, SideRight, SideLeft, "")
	require.NoError(t, err)
	s.Select(NodeRef(a.ID))
	require.True(t, s.StartEdit(NodeRef(b.ID)))

	s.ClearAll()
	assert.True(t, s.Diagram().Empty())
	assert.True(t, s.Tree().Empty())
	assert.Equal(t, ModeIdle, s.Mode())

	n := s.AddNode(NodeProcess, "")
	assert.Equal(t, "1", n.ID)
}

func TestExportPNG(t *testing.T) {
	s := newTestSession(t)
	s.AddNode(NodeStart, "Begin")
	var buf bytes.Buffer
	assert.ErrorIs(t, s.ExportPNG(&buf), ErrRasterizerUnavailable)

	s = newTestSession(t, WithRasterizer(NewGGRasterizer()))
	assert.ErrorIs(t, s.ExportPNG(&buf), ErrNothingToExport)

	a := s.AddNode(NodeStart, "Begin")
	b := s.AddNode(NodeDecision, "Ok?")
	_, err := s.Connect(a.ID, b.ID, SideRight, SideLeft, "next")
	require.NoError(t, err)

	require.NoError(t, s.ExportPNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)
}

func TestExportJSONIndented(t *testing.T) {
	s := newTestSession(t)
	s.AddNode(NodeProcess, "A")

	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \"nodes\": ["))
}
