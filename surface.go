package main

import "math"

// VisualTree is the retained visual state of the editor. Both the terminal
// canvas and the PNG snapshot renderer draw from it.
type VisualTree struct {
	scale       float64
	nodes       map[string]NodeView
	nodeOrder   []string
	conns       map[string]ConnectionView
	connOrder   []string
	labels      map[string]LabelView
	selected    EntityRef
	provisional *Cubic
	highlight   *ConnectorRef
}

func NewVisualTree() *VisualTree {
	t := &VisualTree{}
	t.Reset()
	return t
}

func (t *VisualTree) Reset() {
	t.scale = 1
	t.nodes = make(map[string]NodeView)
	t.nodeOrder = t.nodeOrder[:0]
	t.conns = make(map[string]ConnectionView)
	t.connOrder = t.connOrder[:0]
	t.labels = make(map[string]LabelView)
	t.selected = EntityRef{}
	t.provisional = nil
	t.highlight = nil
}

func (t *VisualTree) SetScale(scale float64) { t.scale = scale }

func (t *VisualTree) UpsertNode(v NodeView) {
	if _, ok := t.nodes[v.ID]; !ok {
		t.nodeOrder = append(t.nodeOrder, v.ID)
	}
	t.nodes[v.ID] = v
}

func (t *VisualTree) RemoveNode(id string) {
	if _, ok := t.nodes[id]; !ok {
		return
	}
	delete(t.nodes, id)
	t.nodeOrder = removeID(t.nodeOrder, id)
}

func (t *VisualTree) UpsertConnection(v ConnectionView) {
	if _, ok := t.conns[v.ID]; !ok {
		t.connOrder = append(t.connOrder, v.ID)
	}
	t.conns[v.ID] = v
}

func (t *VisualTree) RemoveConnection(id string) {
	if _, ok := t.conns[id]; !ok {
		return
	}
	delete(t.conns, id)
	t.connOrder = removeID(t.connOrder, id)
}

func (t *VisualTree) UpsertLabel(v LabelView) { t.labels[v.ConnectionID] = v }
func (t *VisualTree) RemoveLabel(id string) { delete(t.labels, id) }
func (t *VisualTree) SetSelected(ref EntityRef) { t.selected = ref }

func (t *VisualTree) SetProvisional(curve *Cubic) {
	if curve == nil {
		t.provisional = nil
		return
	}
	c := *curve
	t.provisional = &c
}

func (t *VisualTree) SetHighlight(ref *ConnectorRef) {
	if ref == nil {
		t.highlight = nil
		return
	}
	h := *ref
	t.highlight = &h
}

func (t *VisualTree) Scale() float64 { return t.scale }

// Nodes returns node views in drawing order.
func (t *VisualTree) Nodes() []NodeView {
	out := make([]NodeView, 0, len(t.nodeOrder))
	for _, id := range t.nodeOrder {
		out = append(out, t.nodes[id])
	}
	return out
}

func (t *VisualTree) Connections() []ConnectionView {
	out := make([]ConnectionView, 0, len(t.connOrder))
	for _, id := range t.connOrder {
		out = append(out, t.conns[id])
	}
	return out
}

// Labels returns label views in connection order.
func (t *VisualTree) Labels() []LabelView {
	out := make([]LabelView, 0, len(t.labels))
	for _, id := range t.connOrder {
		if l, ok := t.labels[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

func (t *VisualTree) Node(id string) (NodeView, bool) {
	v, ok := t.nodes[id]
	return v, ok
}

func (t *VisualTree) Connection(id string) (ConnectionView, bool) {
	v, ok := t.conns[id]
	return v, ok
}

func (t *VisualTree) Label(connectionID string) (LabelView, bool) {
	v, ok := t.labels[connectionID]
	return v, ok
}

func (t *VisualTree) Selected() EntityRef { return t.selected }
func (t *VisualTree) Provisional() *Cubic { return t.provisional }
func (t *VisualTree) Highlight() *ConnectorRef { return t.highlight }
func (t *VisualTree) Empty() bool { return len(t.nodes) == 0 && len(t.conns) == 0 }

// Bounds is the diagram-space box covering every node, curve and label.
func (t *VisualTree) Bounds() (Rect, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(r Rect) {
		minX = math.Min(minX, r.X)
		minY = math.Min(minY, r.Y)
		maxX = math.Max(maxX, r.X+r.W)
		maxY = math.Max(maxY, r.Y+r.H)
	}
	for _, n := range t.nodes {
		grow(n.Rect)
	}
	for _, c := range t.conns {
		grow(c.Curve.Bounds())
	}
	for _, l := range t.labels {
		grow(labelRect(l.Text, l.At))
	}
	if math.IsInf(minX, 1) {
		return Rect{}, false
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, true
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
