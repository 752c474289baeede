package main

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGGRasterizerSizesToContent(t *testing.T) {
	s := newTestSession(t)
	a := s.AddNodeAt(Point{0, 0}, NodeStart, "Begin")
	b := s.AddNodeAt(Point{400, 0}, NodeProcess, "Do work")
	_, err := s.Connect(a.ID, b.ID, SideRight, SideLeft, "next")
	require.NoError(t, err)

	r := NewGGRasterizer()
	img, err := r.Rasterize(s.Tree())
	require.NoError(t, err)

	bounds, ok := s.Tree().Bounds()
	require.True(t, ok)
	assert.Equal(t, int(math.Ceil(bounds.W+2*r.Padding)), img.Bounds().Dx())
	assert.Equal(t, int(math.Ceil(bounds.H+2*r.Padding)), img.Bounds().Dy())

	// Top-left corner is padding: plain white.
	cr, cg, cb, _ := img.At(1, 1).RGBA()
	wr, wg, wb, _ := color.White.RGBA()
	assert.Equal(t, [3]uint32{wr, wg, wb}, [3]uint32{cr, cg, cb})
}

func TestGGRasterizerScalesWithZoom(t *testing.T) {
	s := newTestSession(t)
	s.AddNodeAt(Point{0, 0}, NodeDecision, "Ok?")
	r := NewGGRasterizer()

	small, err := r.Rasterize(s.Tree())
	require.NoError(t, err)
	s.ZoomIn()
	s.ZoomIn()
	large, err := r.Rasterize(s.Tree())
	require.NoError(t, err)

	assert.Greater(t, large.Bounds().Dx(), small.Bounds().Dx())
}

func TestGGRasterizerEmptyTree(t *testing.T) {
	_, err := NewGGRasterizer().Rasterize(NewVisualTree())
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestGGRasterizerAllNodeTypes(t *testing.T) {
	s := newTestSession(t)
	for _, typ := range nodeTypes {
		s.AddNode(typ, string(typ))
	}
	img, err := NewGGRasterizer().Rasterize(s.Tree())
	require.NoError(t, err)
	assert.False(t, img.Bounds().Empty())
}
