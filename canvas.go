package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Diagram units covered by one terminal cell at scale 1.
const (
	cellWidth  = 8.0
	cellHeight = 16.0
)

type cellStyle int

const (
	styleNone cellStyle = iota
	styleEdge
	styleEdgeSelected
	styleProvisional
	styleProcess
	styleDecision
	styleStart
	styleInput
	styleSelected
	styleText
	styleLabel
	styleEditing
	styleConnector
	styleHighlight
)

var cellStyles = map[cellStyle]lipgloss.Style{
	styleNone:         lipgloss.NewStyle(),
	styleEdge:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	styleEdgeSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
	styleProvisional:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Faint(true),
	styleProcess:      lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	styleDecision:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	styleStart:        lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
	styleInput:        lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
	styleSelected:     lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
	styleText:         lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	styleLabel:        lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Italic(true),
	styleEditing:      lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("229")),
	styleConnector:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	styleHighlight:    lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
}

var nodeBorders = map[NodeType]lipgloss.Border{
	NodeProcess:  lipgloss.NormalBorder(),
	NodeDecision: lipgloss.DoubleBorder(),
	NodeStart:    lipgloss.RoundedBorder(),
	NodeInput:    lipgloss.ThickBorder(),
}

var nodeStyles = map[NodeType]cellStyle{
	NodeProcess:  styleProcess,
	NodeDecision: styleDecision,
	NodeStart:    styleStart,
	NodeInput:    styleInput,
}

type cell struct {
	r     rune
	style cellStyle
}

type cellPos struct{ col, row int }

// box is a node's footprint in cells, borders included.
type box struct{ c0, r0, c1, r1 int }

func (b box) midCol() int { return (b.c0 + b.c1) / 2 }
func (b box) midRow() int { return (b.r0 + b.r1) / 2 }

func (b box) contains(col, row int) bool {
	return col >= b.c0 && col <= b.c1 && row >= b.r0 && row <= b.r1
}

// Canvas rasterizes the visual tree into terminal cells. It remembers where
// it drew connectors so that clicks on those cells land exactly on the
// anchor.
type Canvas struct {
	panX, panY int
	width      int
	height     int
	grid       [][]cell
	scale      float64
	connectors map[cellPos]Point
}

func NewCanvas() *Canvas {
	return &Canvas{scale: 1, connectors: make(map[cellPos]Point)}
}

// ScreenPoint converts a terminal cell to the screen-space point the session
// expects (diagram units times scale).
func (c *Canvas) ScreenPoint(col, row int) Point {
	if p, ok := c.connectors[cellPos{col, row}]; ok {
		return p
	}
	return Point{
		X: (float64(col+c.panX) + 0.5) * cellWidth,
		Y: (float64(row+c.panY) + 0.5) * cellHeight,
	}
}

func (c *Canvas) toCell(p Point) (int, int) {
	return int(math.Floor(p.X*c.scale/cellWidth)) - c.panX,
		int(math.Floor(p.Y*c.scale/cellHeight)) - c.panY
}

func (c *Canvas) boxOf(r Rect) box {
	c0, r0 := c.toCell(Point{r.X, r.Y})
	c1, r1 := c.toCell(Point{r.X + r.W - 0.01, r.Y + r.H - 0.01})
	if c1-c0 < 2 {
		c1 = c0 + 2
	}
	if r1-r0 < 2 {
		r1 = r0 + 2
	}
	return box{c0, r0, c1, r1}
}

func (c *Canvas) set(col, row int, r rune, st cellStyle) {
	if row < 0 || row >= c.height || col < 0 || col >= c.width {
		return
	}
	c.grid[row][col] = cell{r, st}
}

func (c *Canvas) empty(col, row int) bool {
	if row < 0 || row >= c.height || col < 0 || col >= c.width {
		return false
	}
	return c.grid[row][col].r == ' '
}

// Render draws the tree into a width x height block of styled lines.
func (c *Canvas) Render(tree *VisualTree, width, height int) string {
	c.width, c.height = max(width, 1), max(height, 1)
	c.scale = tree.Scale()
	if c.scale <= 0 {
		c.scale = 1
	}
	c.connectors = make(map[cellPos]Point)
	c.grid = make([][]cell, c.height)
	for y := range c.grid {
		row := make([]cell, c.width)
		for x := range row {
			row[x] = cell{' ', styleNone}
		}
		c.grid[y] = row
	}

	boxes := make(map[string]box)
	for _, n := range tree.Nodes() {
		boxes[n.ID] = c.boxOf(n.Rect)
	}
	selected := tree.Selected()

	for _, conn := range tree.Connections() {
		st := styleEdge
		if selected == ConnectionRef(conn.ID) {
			st = styleEdgeSelected
		}
		c.drawCurve(conn.Curve, boxes, st)
	}
	if p := tree.Provisional(); p != nil {
		c.drawCurve(*p, boxes, styleProvisional)
	}

	for _, n := range tree.Nodes() {
		c.drawNode(n, boxes[n.ID], selected == NodeRef(n.ID))
	}
	if h := tree.Highlight(); h != nil {
		if b, ok := boxes[h.NodeID]; ok {
			col, row := connectorCell(b, h.Side)
			c.set(col, row, '◉', styleHighlight)
		}
	}

	for _, conn := range tree.Connections() {
		if b, ok := boxes[conn.TargetID]; ok {
			c.drawArrowhead(b, conn.TargetSide, selected == ConnectionRef(conn.ID))
		}
	}
	for _, l := range tree.Labels() {
		c.drawLabel(l)
	}

	return c.String()
}

func (c *Canvas) drawCurve(curve Cubic, boxes map[string]box, st cellStyle) {
	n := int(curve.Length()*c.scale/4) + 16
	for _, p := range curve.Flatten(n) {
		col, row := c.toCell(p)
		inside := false
		for _, b := range boxes {
			if b.contains(col, row) {
				inside = true
				break
			}
		}
		if !inside {
			c.set(col, row, '·', st)
		}
	}
}

func (c *Canvas) drawArrowhead(b box, side Side, selected bool) {
	st := styleEdge
	if selected {
		st = styleEdgeSelected
	}
	switch side {
	case SideTop:
		c.set(b.midCol(), b.r0-1, '▼', st)
	case SideBottom:
		c.set(b.midCol(), b.r1+1, '▲', st)
	case SideRight:
		c.set(b.c1+1, b.midRow(), '◀', st)
	default:
		c.set(b.c0-1, b.midRow(), '▶', st)
	}
}

func (c *Canvas) drawNode(n NodeView, b box, selected bool) {
	border := nodeBorders[n.Type]
	st := nodeStyles[n.Type]
	if selected {
		st = styleSelected
	}
	glyph := func(s string) rune {
		r := []rune(s)
		if len(r) == 0 {
			return ' '
		}
		return r[0]
	}

	for row := b.r0; row <= b.r1; row++ {
		for col := b.c0; col <= b.c1; col++ {
			var r rune
			switch {
			case row == b.r0 && col == b.c0:
				r = glyph(border.TopLeft)
			case row == b.r0 && col == b.c1:
				r = glyph(border.TopRight)
			case row == b.r1 && col == b.c0:
				r = glyph(border.BottomLeft)
			case row == b.r1 && col == b.c1:
				r = glyph(border.BottomRight)
			case row == b.r0:
				r = glyph(border.Top)
			case row == b.r1:
				r = glyph(border.Bottom)
			case col == b.c0:
				r = glyph(border.Left)
			case col == b.c1:
				r = glyph(border.Right)
			default:
				r = ' '
			}
			c.set(col, row, r, st)
		}
	}

	for _, side := range sides {
		col, row := connectorCell(b, side)
		c.set(col, row, '•', styleConnector)
		anchor := anchorOf(n.Rect, side).Scale(c.scale)
		c.connectors[cellPos{col, row}] = anchor
	}

	text, textStyle := n.Text, styleText
	if n.Editing {
		text, textStyle = n.Text+"█", styleEditing
	}
	c.drawCentered(text, b.midRow(), b.c0+1, b.c1-1, textStyle)
}

func (c *Canvas) drawLabel(l LabelView) {
	col, row := c.toCell(l.At)
	text, st := l.Text, styleLabel
	if l.Editing {
		text, st = l.Text+"█", styleEditing
	}
	w := len([]rune(text))
	c.drawCentered(text, row, col-w/2, col-w/2+w-1, st)
}

// drawCentered writes text centered between columns lo and hi on row,
// truncating with an ellipsis when it does not fit.
func (c *Canvas) drawCentered(text string, row, lo, hi int, st cellStyle) {
	avail := hi - lo + 1
	if avail <= 0 {
		return
	}
	runes := []rune(text)
	if len(runes) > avail {
		runes = append(runes[:max(avail-1, 0)], '…')
	}
	start := lo + (avail-len(runes))/2
	for i, r := range runes {
		c.set(start+i, row, r, st)
	}
}

// String joins the grid into lines, one lipgloss render per style run.
func (c *Canvas) String() string {
	var out strings.Builder
	for y, row := range c.grid {
		if y > 0 {
			out.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].style == row[start].style {
				continue
			}
			run := make([]rune, 0, x-start)
			for _, cl := range row[start:x] {
				run = append(run, cl.r)
			}
			if row[start].style == styleNone {
				out.WriteString(string(run))
			} else {
				out.WriteString(cellStyles[row[start].style].Render(string(run)))
			}
			start = x
		}
	}
	return out.String()
}

func (c *Canvas) Pan(dx, dy int) {
	c.panX += dx
	c.panY += dy
}

func (c *Canvas) PanOffset() (int, int) { return c.panX, c.panY }

func (c *Canvas) ResetPan() { c.panX, c.panY = 0, 0 }

func connectorCell(b box, side Side) (int, int) {
	switch side {
	case SideTop:
		return b.midCol(), b.r0
	case SideBottom:
		return b.midCol(), b.r1
	case SideLeft:
		return b.c0, b.midRow()
	default:
		return b.c1, b.midRow()
	}
}

// anchorOf is the diagram-space midpoint of one side of r.
func anchorOf(r Rect, side Side) Point {
	c := r.Center()
	switch side {
	case SideTop:
		return Point{c.X, r.Y}
	case SideBottom:
		return Point{c.X, r.Y + r.H}
	case SideLeft:
		return Point{r.X, c.Y}
	default:
		return Point{r.X + r.W, c.Y}
	}
}
