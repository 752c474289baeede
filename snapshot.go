package main

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// Rasterizer turns the visual tree into an image for PNG export.
type Rasterizer interface {
	Rasterize(tree *VisualTree) (image.Image, error)
}

// GGRasterizer draws the visual tree with gg. Selection, the provisional
// curve and connector highlights are interaction state and are not drawn.
type GGRasterizer struct {
	Padding  float64
	FontSize float64
}

func NewGGRasterizer() *GGRasterizer {
	return &GGRasterizer{Padding: 40, FontSize: 13}
}

var (
	inkColor   = color.RGBA{0x33, 0x33, 0x33, 0xff}
	labelColor = color.RGBA{0x55, 0x55, 0x55, 0xff}
	nodeFills  = map[NodeType]color.RGBA{
		NodeProcess:  {0xe3, 0xf2, 0xfd, 0xff},
		NodeDecision: {0xff, 0xf3, 0xe0, 0xff},
		NodeStart:    {0xe8, 0xf5, 0xe9, 0xff},
		NodeInput:    {0xf3, 0xe5, 0xf5, 0xff},
	}
)

func (r *GGRasterizer) Rasterize(tree *VisualTree) (image.Image, error) {
	bounds, ok := tree.Bounds()
	if !ok {
		return nil, ErrNothingToExport
	}
	scale := tree.Scale()
	if scale <= 0 {
		scale = 1
	}

	minX := bounds.X - r.Padding
	minY := bounds.Y - r.Padding
	width := int(math.Ceil((bounds.W + 2*r.Padding) * scale))
	height := int(math.Ceil((bounds.H + 2*r.Padding) * scale))

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    r.FontSize * scale,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	dc.Scale(scale, scale)
	dc.Translate(-minX, -minY)

	for _, c := range tree.Connections() {
		drawCurvePNG(dc, c.Curve)
	}
	for _, n := range tree.Nodes() {
		drawNodePNG(dc, n)
	}
	for _, l := range tree.Labels() {
		drawLabelPNG(dc, l)
	}
	return dc.Image(), nil
}

func drawCurvePNG(dc *gg.Context, c Cubic) {
	dc.SetLineWidth(2)
	dc.SetColor(inkColor)
	dc.MoveTo(c.Start.X, c.Start.Y)
	dc.CubicTo(c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.End.X, c.End.Y)
	dc.Stroke()

	pts := c.Flatten(curveSegments)
	from := pts[len(pts)-2]
	drawArrowheadPNG(dc, from, c.End)
}

func drawArrowheadPNG(dc *gg.Context, from, tip Point) {
	dx, dy := tip.X-from.X, tip.Y-from.Y
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	const size, spread = 10.0, 0.5
	dc.MoveTo(tip.X, tip.Y)
	dc.LineTo(tip.X-size*dx+size*dy*spread, tip.Y-size*dy-size*dx*spread)
	dc.LineTo(tip.X-size*dx-size*dy*spread, tip.Y-size*dy+size*dx*spread)
	dc.ClosePath()
	dc.Fill()
}

func drawNodePNG(dc *gg.Context, n NodeView) {
	r := n.Rect
	switch n.Type {
	case NodeStart:
		dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, r.H/2)
	case NodeDecision:
		c := r.Center()
		dc.MoveTo(c.X, r.Y)
		dc.LineTo(r.X+r.W, c.Y)
		dc.LineTo(c.X, r.Y+r.H)
		dc.LineTo(r.X, c.Y)
		dc.ClosePath()
	case NodeInput:
		skew := r.H / 4
		dc.MoveTo(r.X+skew, r.Y)
		dc.LineTo(r.X+r.W, r.Y)
		dc.LineTo(r.X+r.W-skew, r.Y+r.H)
		dc.LineTo(r.X, r.Y+r.H)
		dc.ClosePath()
	default:
		dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 4)
	}
	dc.SetColor(nodeFills[n.Type])
	dc.FillPreserve()
	dc.SetColor(inkColor)
	dc.SetLineWidth(2)
	dc.Stroke()

	c := r.Center()
	dc.DrawStringAnchored(n.Text, c.X, c.Y, 0.5, 0.5)
}

func drawLabelPNG(dc *gg.Context, l LabelView) {
	box := labelRect(l.Text, l.At)
	dc.SetColor(color.White)
	dc.DrawRectangle(box.X, box.Y, box.W, box.H)
	dc.Fill()
	dc.SetColor(labelColor)
	dc.DrawStringAnchored(l.Text, l.At.X, l.At.Y, 0.5, 0.5)
}
