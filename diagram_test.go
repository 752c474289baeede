package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNodeDefaults(t *testing.T) {
	d := NewDiagram()
	n := d.CreateNode(nil, "", "")

	assert.Equal(t, "1", n.ID)
	assert.Equal(t, NodeProcess, n.Type)
	assert.Equal(t, defaultNodeText, n.Text)

	n = d.CreateNode(nil, "hexagon", "Check")
	assert.Equal(t, "2", n.ID)
	assert.Equal(t, NodeProcess, n.Type)
	assert.Equal(t, "Check", n.Text)
}

func TestPlacementDoesNotStack(t *testing.T) {
	d := NewDiagram()
	a := d.CreateNode(nil, NodeProcess, "")
	b := d.CreateNode(nil, NodeProcess, "")
	c := d.CreateNode(nil, NodeProcess, "")

	assert.Equal(t, Point{260, 100}, a.Position)
	assert.Equal(t, Point{a.Position.X + placementStepX, 100}, b.Position)
	assert.Equal(t, Point{b.Position.X + placementStepX, 100}, c.Position)

	// 1860 is the last slot on the first row; the next one wraps.
	for d.Cursor().X < 1860 {
		d.CreateNode(nil, NodeProcess, "")
	}
	wrapped := d.CreateNode(nil, NodeProcess, "")
	assert.Equal(t, Point{placementStartX, 100 + placementRowY}, wrapped.Position)
}

func TestExplicitPositionKeepsCursor(t *testing.T) {
	d := NewDiagram()
	p := Point{500, 500}
	n := d.CreateNode(&p, NodeStart, "Begin")

	assert.Equal(t, p, n.Position)
	assert.Equal(t, Point{placementStartX, placementStartY}, d.Cursor())
}

func TestCreateConnection(t *testing.T) {
	d := NewDiagram()
	a := d.CreateNode(nil, NodeProcess, "A")
	b := d.CreateNode(nil, NodeProcess, "B")

	conn, err := d.CreateConnection(a.ID, b.ID, SideNone, SideNone, "")
	require.NoError(t, err)
	assert.Equal(t, "1", conn.ID)
	assert.Equal(t, SideRight, conn.SourceSide)
	assert.Equal(t, SideLeft, conn.TargetSide)

	conn, err = d.CreateConnection(b.ID, a.ID, SideBottom, SideTop, "back")
	require.NoError(t, err)
	assert.Equal(t, "2", conn.ID)
	assert.Equal(t, "back", conn.Label)
}

func TestCreateConnectionRejects(t *testing.T) {
	d := NewDiagram()
	a := d.CreateNode(nil, NodeProcess, "A")

	_, err := d.CreateConnection(a.ID, a.ID, SideRight, SideLeft, "")
	assert.ErrorIs(t, err, ErrSelfLoop)

	_, err = d.CreateConnection(a.ID, "99", SideRight, SideLeft, "")
	assert.ErrorIs(t, err, ErrUnknownNode)

	_, err = d.CreateConnection("99", a.ID, SideRight, SideLeft, "")
	assert.ErrorIs(t, err, ErrUnknownNode)

	assert.Empty(t, d.Connections())
	_, nextConn := d.Counters()
	assert.Equal(t, 1, nextConn, "rejected connections must not consume ids")
}

func TestDeleteNodeCascades(t *testing.T) {
	d := NewDiagram()
	a := d.CreateNode(nil, NodeProcess, "A")
	b := d.CreateNode(nil, NodeProcess, "B")
	c := d.CreateNode(nil, NodeProcess, "C")
	ab, _ := d.CreateConnection(a.ID, b.ID, SideRight, SideLeft, "")
	bc, _ := d.CreateConnection(b.ID, c.ID, SideRight, SideLeft, "")
	ca, _ := d.CreateConnection(c.ID, a.ID, SideBottom, SideBottom, "")

	removed := d.DeleteNode(b.ID)
	assert.ElementsMatch(t, []string{ab.ID, bc.ID}, removed)

	conns := d.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, ca.ID, conns[0].ID)
	_, ok := d.Node(b.ID)
	assert.False(t, ok)

	assert.Nil(t, d.DeleteNode("missing"))
}

func TestDeleteConnection(t *testing.T) {
	d := NewDiagram()
	a := d.CreateNode(nil, NodeProcess, "A")
	b := d.CreateNode(nil, NodeProcess, "B")
	conn, _ := d.CreateConnection(a.ID, b.ID, SideRight, SideLeft, "")

	assert.True(t, d.DeleteConnection(conn.ID))
	assert.False(t, d.DeleteConnection(conn.ID))
	assert.Len(t, d.Nodes(), 2)
}

func TestClearResetsCounters(t *testing.T) {
	d := NewDiagram()
	a := d.CreateNode(nil, NodeProcess, "A")
	b := d.CreateNode(nil, NodeProcess, "B")
	_, err := d.CreateConnection(a.ID, b.ID, SideRight, SideLeft, "")
	require.NoError(t, err)

	d.Clear()
	assert.True(t, d.Empty())
	assert.Equal(t, Point{placementStartX, placementStartY}, d.Cursor())

	a = d.CreateNode(nil, NodeProcess, "A")
	b = d.CreateNode(nil, NodeProcess, "B")
	conn, err := d.CreateConnection(a.ID, b.ID, SideRight, SideLeft, "")
	require.NoError(t, err)
	assert.Equal(t, "1", a.ID)
	assert.Equal(t, "1", conn.ID)
	assert.Equal(t, Point{260, 100}, a.Position)
}

func TestUpdatesIgnoreUnknownIDs(t *testing.T) {
	d := NewDiagram()
	n := d.CreateNode(nil, NodeProcess, "A")

	assert.False(t, d.UpdateNodePosition("9", 1, 2))
	assert.False(t, d.UpdateNodeText("9", "x"))
	assert.False(t, d.UpdateNodeType("9", NodeStart))
	assert.False(t, d.UpdateNodeType(n.ID, "bogus"))
	assert.False(t, d.UpdateConnectionLabel("9", "x"))

	assert.True(t, d.UpdateNodePosition(n.ID, 1, 2))
	got, _ := d.Node(n.ID)
	assert.Equal(t, Point{1, 2}, got.Position)
}

func TestAccessorsReturnCopies(t *testing.T) {
	d := NewDiagram()
	d.CreateNode(nil, NodeProcess, "A")

	nodes := d.Nodes()
	nodes[0].Text = "changed"
	got, _ := d.Node("1")
	assert.Equal(t, "A", got.Text)
}
