package main

// Surface is the visual tree the renderer drives. It receives update
// instructions only and never reads the diagram.
type Surface interface {
	Reset()
	SetScale(scale float64)
	UpsertNode(v NodeView)
	RemoveNode(id string)
	UpsertConnection(v ConnectionView)
	RemoveConnection(id string)
	UpsertLabel(v LabelView)
	RemoveLabel(connectionID string)
	SetSelected(ref EntityRef)
	SetProvisional(curve *Cubic)
	SetHighlight(ref *ConnectorRef)
}

type NodeView struct {
	ID      string
	Type    NodeType
	Text    string
	Rect    Rect
	Editing bool
}

type ConnectionView struct {
	ID         string
	SourceID   string
	TargetID   string
	TargetSide Side
	Curve      Cubic
}

type LabelView struct {
	ConnectionID string
	Text         string
	At           Point
	Editing      bool
}

// Renderer translates diagram mutations into Surface instructions. Geometry
// is recomputed from the diagram on every call; the renderer keeps nothing
// but the surface and the current scale.
type Renderer struct {
	surface Surface
	scale   float64
}

func NewRenderer(s Surface) *Renderer {
	return &Renderer{surface: s, scale: 1}
}

// Rebuild discards the visual tree and redraws the whole diagram.
func (r *Renderer) Rebuild(d *Diagram) {
	r.surface.Reset()
	r.surface.SetScale(r.scale)
	for _, n := range d.nodes {
		r.surface.UpsertNode(nodeView(n))
	}
	for _, c := range d.connections {
		r.ConnectionAdded(d, c.ID)
	}
}

func (r *Renderer) SetScale(d *Diagram, scale float64) {
	r.scale = scale
	r.surface.SetScale(scale)
	for _, c := range d.connections {
		r.ConnectionAdded(d, c.ID)
	}
}

func (r *Renderer) NodeAdded(d *Diagram, id string) {
	r.NodeChanged(d, id)
}

// NodeChanged refreshes the node view and every curve and label attached to it.
func (r *Renderer) NodeChanged(d *Diagram, id string) {
	n, ok := d.Node(id)
	if !ok {
		return
	}
	r.surface.UpsertNode(nodeView(n))
	for _, c := range d.ConnectionsOf(id) {
		r.ConnectionAdded(d, c.ID)
	}
}

// NodeRemoved drops the node view and the views of its cascaded connections.
func (r *Renderer) NodeRemoved(id string, connectionIDs []string) {
	for _, cid := range connectionIDs {
		r.ConnectionRemoved(cid)
	}
	r.surface.RemoveNode(id)
}

// ConnectionAdded creates or updates the path of a connection and its label.
func (r *Renderer) ConnectionAdded(d *Diagram, id string) {
	conn, ok := d.Connection(id)
	if !ok {
		return
	}
	curve, ok := connectionCurve(d, conn, r.scale)
	if !ok {
		return
	}
	r.surface.UpsertConnection(ConnectionView{
		ID:         conn.ID,
		SourceID:   conn.SourceID,
		TargetID:   conn.TargetID,
		TargetSide: conn.TargetSide,
		Curve:      curve,
	})
	r.labelFor(conn, curve, conn.Label, false)
}

func (r *Renderer) ConnectionRemoved(id string) {
	r.surface.RemoveLabel(id)
	r.surface.RemoveConnection(id)
}

// LabelChanged syncs the label element with the stored label: an empty label
// has no element.
func (r *Renderer) LabelChanged(d *Diagram, id string) {
	r.ConnectionAdded(d, id)
}

// EditingNode shows buf in place of the node text while it is being edited.
func (r *Renderer) EditingNode(d *Diagram, id, buf string) {
	n, ok := d.Node(id)
	if !ok {
		return
	}
	v := nodeView(n)
	v.Text = buf
	v.Editing = true
	r.surface.UpsertNode(v)
}

// EditingLabel shows an editable label element for the connection, even when
// the stored label is empty.
func (r *Renderer) EditingLabel(d *Diagram, id, buf string) {
	conn, ok := d.Connection(id)
	if !ok {
		return
	}
	curve, ok := connectionCurve(d, conn, r.scale)
	if !ok {
		return
	}
	r.labelFor(conn, curve, buf, true)
}

func (r *Renderer) Selected(ref EntityRef) {
	r.surface.SetSelected(ref)
}

func (r *Renderer) Provisional(curve *Cubic) {
	r.surface.SetProvisional(curve)
}

func (r *Renderer) Highlight(ref *ConnectorRef) {
	r.surface.SetHighlight(ref)
}

func (r *Renderer) labelFor(conn Connection, curve Cubic, text string, editing bool) {
	if text == "" && !editing {
		r.surface.RemoveLabel(conn.ID)
		return
	}
	r.surface.UpsertLabel(LabelView{
		ConnectionID: conn.ID,
		Text:         text,
		At:           curve.MidpointAtLength(),
		Editing:      editing,
	})
}

func nodeView(n Node) NodeView {
	return NodeView{ID: n.ID, Type: n.Type, Text: n.Text, Rect: NodeRect(n)}
}
