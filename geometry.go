package main

import (
	"math"
	"unicode/utf8"
)

// NodeSize is the authoritative size of a node in diagram units. Width grows
// with the label so long texts stay inside the border.
func NodeSize(n Node) Size {
	w := float64(utf8.RuneCountInString(n.Text))*textUnit + textPadding
	if w < minNodeWidth {
		w = minNodeWidth
	}
	return Size{W: w, H: nodeHeight}
}

func NodeRect(n Node) Rect {
	s := NodeSize(n)
	return Rect{X: n.Position.X, Y: n.Position.Y, W: s.W, H: s.H}
}

// Normal is the outward unit vector of a side.
func (s Side) Normal() Point {
	switch s {
	case SideTop:
		return Point{0, -1}
	case SideRight:
		return Point{1, 0}
	case SideBottom:
		return Point{0, 1}
	case SideLeft:
		return Point{-1, 0}
	}
	return Point{}
}

func (s Side) Opposite() Side {
	switch s {
	case SideTop:
		return SideBottom
	case SideRight:
		return SideLeft
	case SideBottom:
		return SideTop
	case SideLeft:
		return SideRight
	}
	return SideNone
}

// ConnectorAnchor returns the midpoint of the given side of the node, measured
// on the scaled box and converted back to unscaled diagram coordinates.
func ConnectorAnchor(n Node, side Side, scale float64) Point {
	if scale <= 0 {
		scale = 1
	}
	r := NodeRect(n)
	sx, sy, sw, sh := r.X*scale, r.Y*scale, r.W*scale, r.H*scale

	var p Point
	switch side {
	case SideTop:
		p = Point{sx + sw/2, sy}
	case SideBottom:
		p = Point{sx + sw/2, sy + sh}
	case SideLeft:
		p = Point{sx, sy + sh/2}
	default:
		p = Point{sx + sw, sy + sh/2}
	}
	return p.Div(scale)
}

// Cubic is a cubic Bezier curve.
type Cubic struct {
	Start, C1, C2, End Point
}

// CurvePath builds the connector curve between two anchors. Control points
// leave each anchor along the outward normal of its side so the curve meets
// node edges head-on.
func CurvePath(src, dst Point, srcSide, dstSide Side) Cubic {
	dx := abs(dst.X - src.X)
	dy := abs(dst.Y - src.Y)
	offset := clamp(math.Min(dx, dy)*0.5, controlOffsetMin, controlOffsetMax)

	return Cubic{
		Start: src,
		C1:    src.Add(srcSide.Normal().Scale(offset)),
		C2:    dst.Add(dstSide.Normal().Scale(offset)),
		End:   dst,
	}
}

func (c Cubic) PointAt(t float64) Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	d := 3 * mt * t * t
	e := t * t * t
	return Point{
		X: a*c.Start.X + b*c.C1.X + d*c.C2.X + e*c.End.X,
		Y: a*c.Start.Y + b*c.C1.Y + d*c.C2.Y + e*c.End.Y,
	}
}

// Flatten samples the curve into n+1 points.
func (c Cubic) Flatten(n int) []Point {
	if n < 1 {
		n = 1
	}
	pts := make([]Point, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = c.PointAt(float64(i) / float64(n))
	}
	return pts
}

func (c Cubic) Length() float64 {
	pts := c.Flatten(curveSegments)
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += dist(pts[i-1], pts[i])
	}
	return total
}

// MidpointAtLength returns the point at half the arc length. Degenerate
// curves return Start.
func (c Cubic) MidpointAtLength() Point {
	pts := c.Flatten(curveSegments)
	lengths := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		lengths[i] = lengths[i-1] + dist(pts[i-1], pts[i])
	}
	total := lengths[len(lengths)-1]
	if total < 1e-9 {
		return c.Start
	}

	half := total / 2
	for i := 1; i < len(pts); i++ {
		if lengths[i] < half {
			continue
		}
		seg := lengths[i] - lengths[i-1]
		if seg < 1e-12 {
			return pts[i]
		}
		f := (half - lengths[i-1]) / seg
		return pts[i-1].Add(pts[i].Sub(pts[i-1]).Scale(f))
	}
	return c.End
}

// DistanceTo is the distance from p to the flattened curve.
func (c Cubic) DistanceTo(p Point) float64 {
	pts := c.Flatten(curveSegments)
	best := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		if d := distToSegment(p, pts[i-1], pts[i]); d < best {
			best = d
		}
	}
	return best
}

// Bounds returns the bounding box of the flattened curve.
func (c Cubic) Bounds() Rect {
	pts := c.Flatten(curveSegments)
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func distToSegment(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return dist(p, a)
	}
	t := clamp(((p.X-a.X)*ab.X+(p.Y-a.Y)*ab.Y)/l2, 0, 1)
	return dist(p, a.Add(ab.Scale(t)))
}

// snapToGrid rounds v to the nearest multiple of grid. A non-positive grid
// disables snapping.
func snapToGrid(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}
