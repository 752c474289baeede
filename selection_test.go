package main

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectUnknownClears(t *testing.T) {
	s := newTestSession(t)
	n := s.AddNode(NodeProcess, "A")

	s.Select(NodeRef(n.ID))
	s.Select(NodeRef("missing"))
	_, ok := s.CurrentSelection()
	assert.False(t, ok)
	assert.True(t, s.Properties().Empty())
}

func TestNodeProperties(t *testing.T) {
	s := newTestSession(t)
	n := s.AddNodeAt(Point{40, 60.5}, NodeDecision, "Ok?")
	s.Select(NodeRef(n.ID))

	view := s.Properties()
	assert.Equal(t, "Node "+n.ID, view.Title)

	want := map[string]string{"type": "decision", "text": "Ok?", "x": "40", "y": "60.5"}
	for name, value := range want {
		f, ok := view.Field(name)
		require.True(t, ok, name)
		assert.Equal(t, value, f.Value, name)
		assert.False(t, f.ReadOnly, name)
	}
	typ, _ := view.Field("type")
	assert.Equal(t, []string{"process", "decision", "start", "input"}, typ.Options)
}

func TestConnectionProperties(t *testing.T) {
	s := newTestSession(t)
	a := s.AddNode(NodeProcess, "A")
	b := s.AddNode(NodeProcess, "B")
	conn, _ := s.Connect(a.ID, b.ID, SideRight, SideLeft, "yes")
	s.Select(ConnectionRef(conn.ID))

	view := s.Properties()
	assert.Equal(t, "Connection "+conn.ID, view.Title)
	src, _ := view.Field("source")
	assert.Equal(t, "Node "+a.ID, src.Value)
	assert.True(t, src.ReadOnly)
	dst, _ := view.Field("target")
	assert.Equal(t, "Node "+b.ID, dst.Value)

	assert.ErrorIs(t, s.SetProperty("source", b.ID), ErrReadOnlyProperty)
	assert.ErrorIs(t, s.SetProperty("x", "1"), ErrUnknownProperty)

	require.NoError(t, s.SetProperty("label", "  no "))
	got, _ := s.Diagram().Connection(conn.ID)
	assert.Equal(t, "no", got.Label)
	l, _ := s.Tree().Label(conn.ID)
	assert.Equal(t, "no", l.Text)
}

func TestSetNodePropertyWritesThrough(t *testing.T) {
	s := newTestSession(t)
	a := s.AddNodeAt(Point{0, 0}, NodeProcess, "A")
	b := s.AddNodeAt(Point{400, 0}, NodeProcess, "B")
	conn, _ := s.Connect(a.ID, b.ID, SideRight, SideLeft, "")
	s.Select(NodeRef(a.ID))

	require.NoError(t, s.SetProperty("x", "13"))
	require.NoError(t, s.SetProperty("y", " 27 "))
	got, _ := s.Diagram().Node(a.ID)
	assert.Equal(t, Point{13, 27}, got.Position, "property edits are not snapped")
	v, _ := s.Tree().Connection(conn.ID)
	assert.Equal(t, Point{133, 57}, v.Curve.Start)

	require.NoError(t, s.SetProperty("type", "Start"))
	got, _ = s.Diagram().Node(a.ID)
	assert.Equal(t, NodeStart, got.Type)

	require.NoError(t, s.SetProperty("text", "Begin"))
	nv, _ := s.Tree().Node(a.ID)
	assert.Equal(t, "Begin", nv.Text)
}

func TestSetNodePropertyErrors(t *testing.T) {
	s := newTestSession(t)
	assert.ErrorIs(t, s.SetProperty("x", "1"), ErrNothingSelected)

	n := s.AddNode(NodeProcess, "Step 1")
	s.Select(NodeRef(n.ID))

	assert.ErrorIs(t, s.SetProperty("text", "   "), ErrEmptyText)
	assert.ErrorIs(t, s.SetProperty("type", "hexagon"), ErrInvalidNodeType)
	assert.ErrorIs(t, s.SetProperty("colour", "red"), ErrUnknownProperty)

	err := s.SetProperty("x", "left")
	assert.ErrorIs(t, err, strconv.ErrSyntax)

	for _, v := range []string{"NaN", "Inf", "-Inf", "+inf"} {
		assert.ErrorIs(t, s.SetProperty("x", v), ErrInvalidCoordinate, v)
		assert.ErrorIs(t, s.SetProperty("y", v), ErrInvalidCoordinate, v)
	}
	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(&buf))

	got, _ := s.Diagram().Node(n.ID)
	assert.Equal(t, n.Position, got.Position)
	assert.Equal(t, "Step 1", got.Text)
	assert.Equal(t, NodeProcess, got.Type)
}

func TestSelectionSwitchMovesHighlight(t *testing.T) {
	s := newTestSession(t)
	a := s.AddNode(NodeProcess, "A")
	b := s.AddNode(NodeProcess, "B")

	s.Select(NodeRef(a.ID))
	s.Select(NodeRef(b.ID))
	assert.Equal(t, NodeRef(b.ID), s.Tree().Selected())

	s.ClearSelection()
	assert.True(t, s.Tree().Selected().IsZero())
}
