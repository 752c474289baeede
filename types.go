package main

type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }
func (p Point) Div(f float64) Point { return Point{p.X / f, p.Y / f} }
func (p Point) Eq(q Point, eps float64) bool {
	return abs(p.X-q.X) <= eps && abs(p.Y-q.Y) <= eps
}

type Size struct {
	W, H float64
}

type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

func (r Rect) Center() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}

type Node struct {
	ID       string
	Type     NodeType
	Text     string
	Position Point
}

type Connection struct {
	ID         string
	SourceID   string
	TargetID   string
	SourceSide Side
	TargetSide Side
	Label      string
}

// Touches reports whether the connection has nodeID as an endpoint.
func (c Connection) Touches(nodeID string) bool {
	return c.SourceID == nodeID || c.TargetID == nodeID
}

type EntityKind int

const (
	EntityNone EntityKind = iota
	EntityNode
	EntityConnection
)

func (k EntityKind) String() string {
	switch k {
	case EntityNode:
		return "node"
	case EntityConnection:
		return "connection"
	default:
		return "none"
	}
}

// EntityRef points at a node or a connection by id.
type EntityRef struct {
	Kind EntityKind
	ID   string
}

func NodeRef(id string) EntityRef { return EntityRef{Kind: EntityNode, ID: id} }
func ConnectionRef(id string) EntityRef { return EntityRef{Kind: EntityConnection, ID: id} }

func (r EntityRef) IsZero() bool { return r.Kind == EntityNone }

// ConnectorRef identifies one connector of one node.
type ConnectorRef struct {
	NodeID string
	Side   Side
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
