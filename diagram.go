package main

import (
	"fmt"
	"strconv"
	"strings"
)

// Diagram is the graph store: nodes, connections, id counters and the
// placement cursor used for nodes created without a position.
type Diagram struct {
	nodes            []Node
	connections      []Connection
	nextNodeID       int
	nextConnectionID int
	cursor           Point
}

func NewDiagram() *Diagram {
	d := &Diagram{}
	d.Clear()
	return d
}

// Clear empties the diagram and resets the counters and placement cursor.
// Callers are expected to confirm with the user first.
func (d *Diagram) Clear() {
	d.nodes = make([]Node, 0)
	d.connections = make([]Connection, 0)
	d.nextNodeID = 1
	d.nextConnectionID = 1
	d.cursor = Point{placementStartX, placementStartY}
}

func (d *Diagram) nextPosition() Point {
	x := d.cursor.X + placementStepX
	y := d.cursor.Y
	if x > placementMaxX {
		x = placementStartX
		y += placementRowY
	}
	d.cursor = Point{x, y}
	return d.cursor
}

// CreateNode adds a node. A nil position takes the next placement slot; an
// empty type or blank text falls back to the defaults.
func (d *Diagram) CreateNode(pos *Point, typ NodeType, text string) Node {
	if !typ.Valid() {
		typ = NodeProcess
	}
	if strings.TrimSpace(text) == "" {
		text = defaultNodeText
	}
	var p Point
	if pos != nil {
		p = *pos
	} else {
		p = d.nextPosition()
	}

	for d.nodeIndex(strconv.Itoa(d.nextNodeID)) >= 0 {
		d.nextNodeID++
	}
	node := Node{
		ID:       strconv.Itoa(d.nextNodeID),
		Type:     typ,
		Text:     text,
		Position: p,
	}
	d.nextNodeID++
	d.nodes = append(d.nodes, node)
	return node
}

// CreateConnection links two existing, distinct nodes. Missing sides default
// to right/left.
func (d *Diagram) CreateConnection(sourceID, targetID string, sourceSide, targetSide Side, label string) (Connection, error) {
	if sourceID == targetID {
		return Connection{}, fmt.Errorf("connect %s: %w", sourceID, ErrSelfLoop)
	}
	if d.nodeIndex(sourceID) < 0 {
		return Connection{}, fmt.Errorf("connect source %s: %w", sourceID, ErrUnknownNode)
	}
	if d.nodeIndex(targetID) < 0 {
		return Connection{}, fmt.Errorf("connect target %s: %w", targetID, ErrUnknownNode)
	}
	if !sourceSide.Valid() {
		sourceSide = SideRight
	}
	if !targetSide.Valid() {
		targetSide = SideLeft
	}

	for d.connectionIndex(strconv.Itoa(d.nextConnectionID)) >= 0 {
		d.nextConnectionID++
	}
	conn := Connection{
		ID:         strconv.Itoa(d.nextConnectionID),
		SourceID:   sourceID,
		TargetID:   targetID,
		SourceSide: sourceSide,
		TargetSide: targetSide,
		Label:      label,
	}
	d.nextConnectionID++
	d.connections = append(d.connections, conn)
	return conn, nil
}

// DeleteNode removes the node together with every connection that touches
// it and returns the ids of the removed connections.
func (d *Diagram) DeleteNode(id string) []string {
	idx := d.nodeIndex(id)
	if idx < 0 {
		return nil
	}
	d.nodes = append(d.nodes[:idx], d.nodes[idx+1:]...)

	var removed []string
	kept := make([]Connection, 0, len(d.connections))
	for _, conn := range d.connections {
		if conn.Touches(id) {
			removed = append(removed, conn.ID)
			continue
		}
		kept = append(kept, conn)
	}
	d.connections = kept
	return removed
}

func (d *Diagram) DeleteConnection(id string) bool {
	idx := d.connectionIndex(id)
	if idx < 0 {
		return false
	}
	d.connections = append(d.connections[:idx], d.connections[idx+1:]...)
	return true
}

func (d *Diagram) UpdateNodePosition(id string, x, y float64) bool {
	idx := d.nodeIndex(id)
	if idx < 0 {
		return false
	}
	d.nodes[idx].Position = Point{x, y}
	return true
}

func (d *Diagram) UpdateNodeText(id, text string) bool {
	idx := d.nodeIndex(id)
	if idx < 0 {
		return false
	}
	d.nodes[idx].Text = text
	return true
}

func (d *Diagram) UpdateNodeType(id string, typ NodeType) bool {
	idx := d.nodeIndex(id)
	if idx < 0 || !typ.Valid() {
		return false
	}
	d.nodes[idx].Type = typ
	return true
}

func (d *Diagram) UpdateConnectionLabel(id, label string) bool {
	idx := d.connectionIndex(id)
	if idx < 0 {
		return false
	}
	d.connections[idx].Label = label
	return true
}

func (d *Diagram) Node(id string) (Node, bool) {
	idx := d.nodeIndex(id)
	if idx < 0 {
		return Node{}, false
	}
	return d.nodes[idx], true
}

func (d *Diagram) Connection(id string) (Connection, bool) {
	idx := d.connectionIndex(id)
	if idx < 0 {
		return Connection{}, false
	}
	return d.connections[idx], true
}

// Nodes returns a copy of the nodes in insertion order.
func (d *Diagram) Nodes() []Node {
	out := make([]Node, len(d.nodes))
	copy(out, d.nodes)
	return out
}

// Connections returns a copy of the connections in insertion order.
func (d *Diagram) Connections() []Connection {
	out := make([]Connection, len(d.connections))
	copy(out, d.connections)
	return out
}

func (d *Diagram) ConnectionsOf(nodeID string) []Connection {
	var out []Connection
	for _, conn := range d.connections {
		if conn.Touches(nodeID) {
			out = append(out, conn)
		}
	}
	return out
}

// Counters returns the next node and connection ids.
func (d *Diagram) Counters() (int, int) {
	return d.nextNodeID, d.nextConnectionID
}

func (d *Diagram) Cursor() Point {
	return d.cursor
}

func (d *Diagram) Empty() bool {
	return len(d.nodes) == 0 && len(d.connections) == 0
}

// restoreLastNodeID and restoreLastConnectionID overwrite the id assigned to
// the most recently created entity. Only the codec uses them, on a diagram it
// is still building.
func (d *Diagram) restoreLastNodeID(id string) {
	if n := len(d.nodes); n > 0 {
		d.nodes[n-1].ID = id
	}
}

func (d *Diagram) restoreLastConnectionID(id string) {
	if n := len(d.connections); n > 0 {
		d.connections[n-1].ID = id
	}
}

func (d *Diagram) setCounters(nextNode, nextConnection int) {
	d.nextNodeID = nextNode
	d.nextConnectionID = nextConnection
}

func (d *Diagram) setCursor(p Point) {
	d.cursor = p
}

func (d *Diagram) nodeIndex(id string) int {
	for i := range d.nodes {
		if d.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Diagram) connectionIndex(id string) int {
	for i := range d.connections {
		if d.connections[i].ID == id {
			return i
		}
	}
	return -1
}
