package main

type HitKind int

const (
	HitEmpty HitKind = iota
	HitNodeBody
	HitConnector
	HitConnectionPath
	HitLabel
)

func (k HitKind) String() string {
	switch k {
	case HitNodeBody:
		return "node"
	case HitConnector:
		return "connector"
	case HitConnectionPath:
		return "path"
	case HitLabel:
		return "label"
	default:
		return "empty"
	}
}

// Hit is the result of hit-testing a diagram-space point. Target names the
// node or connection under the point; Side is set for connectors.
type Hit struct {
	Kind   HitKind
	Target EntityRef
	Side   Side
}

// HitTest resolves the topmost element under p (diagram units). Connectors win
// over everything, then connection labels, node bodies in reverse drawing
// order, and finally connection paths.
func HitTest(d *Diagram, p Point) Hit {
	nodes := d.nodes
	for i := len(nodes) - 1; i >= 0; i-- {
		for _, side := range sides {
			if dist(p, ConnectorAnchor(nodes[i], side, 1)) <= connectorRadius {
				return Hit{Kind: HitConnector, Target: NodeRef(nodes[i].ID), Side: side}
			}
		}
	}

	for i := len(d.connections) - 1; i >= 0; i-- {
		conn := d.connections[i]
		if conn.Label == "" {
			continue
		}
		curve, ok := connectionCurve(d, conn, 1)
		if !ok {
			continue
		}
		if labelRect(conn.Label, curve.MidpointAtLength()).Contains(p) {
			return Hit{Kind: HitLabel, Target: ConnectionRef(conn.ID)}
		}
	}

	for i := len(nodes) - 1; i >= 0; i-- {
		r := NodeRect(nodes[i])
		if !r.Contains(p) {
			continue
		}
		if labelRect(nodes[i].Text, r.Center()).Contains(p) {
			return Hit{Kind: HitLabel, Target: NodeRef(nodes[i].ID)}
		}
		return Hit{Kind: HitNodeBody, Target: NodeRef(nodes[i].ID)}
	}

	for i := len(d.connections) - 1; i >= 0; i-- {
		curve, ok := connectionCurve(d, d.connections[i], 1)
		if ok && curve.DistanceTo(p) <= pathTolerance {
			return Hit{Kind: HitConnectionPath, Target: ConnectionRef(d.connections[i].ID)}
		}
	}

	return Hit{Kind: HitEmpty}
}

// labelRect is the box a label of the given text occupies when centered on c.
func labelRect(text string, c Point) Rect {
	w := float64(len([]rune(text)))*textUnit + textUnit
	h := 2 * textUnit
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// connectionCurve computes the current curve of a stored connection.
func connectionCurve(d *Diagram, conn Connection, scale float64) (Cubic, bool) {
	src, ok := d.Node(conn.SourceID)
	if !ok {
		return Cubic{}, false
	}
	dst, ok := d.Node(conn.TargetID)
	if !ok {
		return Cubic{}, false
	}
	return CurvePath(
		ConnectorAnchor(src, conn.SourceSide, scale),
		ConnectorAnchor(dst, conn.TargetSide, scale),
		conn.SourceSide, conn.TargetSide,
	), true
}

// nearestConnector returns the connector of any node other than exclude that
// lies closest to p within radius.
func nearestConnector(d *Diagram, p Point, exclude string, radius float64) (ConnectorRef, bool) {
	best := radius
	var ref ConnectorRef
	found := false
	for _, n := range d.nodes {
		if n.ID == exclude {
			continue
		}
		for _, side := range sides {
			if dd := dist(p, ConnectorAnchor(n, side, 1)); dd <= best {
				best = dd
				ref = ConnectorRef{NodeID: n.ID, Side: side}
				found = true
			}
		}
	}
	return ref, found
}
