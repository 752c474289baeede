package main

import (
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
)

// EditorSession owns one diagram and all transient editing state around it:
// interaction mode, selection and zoom. Every host event goes through it.
type EditorSession struct {
	id         string
	diagram    *Diagram
	tree       *VisualTree
	renderer   *Renderer
	rasterizer Rasterizer
	logger     *slog.Logger

	mode      Mode
	drag      dragState
	connect   connectState
	edit      editState
	selection EntityRef

	scale      float64
	gridSize   float64
	snapRadius float64
}

type dragState struct {
	nodeID string
	offset Point
}

type connectState struct {
	sourceID   string
	sourceSide Side
	preview    Point
	target     *ConnectorRef
	fromMenu   bool
}

type SessionOption func(*EditorSession)

func WithLogger(l *slog.Logger) SessionOption {
	return func(s *EditorSession) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRasterizer sets the snapshot renderer used for PNG export. Without one
// ExportPNG fails with ErrRasterizerUnavailable.
func WithRasterizer(r Rasterizer) SessionOption {
	return func(s *EditorSession) { s.rasterizer = r }
}

func WithGridSize(size float64) SessionOption {
	return func(s *EditorSession) { s.gridSize = size }
}

func WithSnapRadius(radius float64) SessionOption {
	return func(s *EditorSession) {
		if radius > 0 {
			s.snapRadius = radius
		}
	}
}

func NewEditorSession(tree *VisualTree, opts ...SessionOption) *EditorSession {
	if tree == nil {
		tree = NewVisualTree()
	}
	s := &EditorSession{
		id:         uuid.NewString(),
		diagram:    NewDiagram(),
		tree:       tree,
		renderer:   NewRenderer(tree),
		logger:     discardLogger(),
		scale:      1,
		gridSize:   defaultGridSize,
		snapRadius: defaultSnapRadius,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id)
	s.renderer.Rebuild(s.diagram)
	return s
}

func (s *EditorSession) Diagram() *Diagram { return s.diagram }
func (s *EditorSession) Tree() *VisualTree { return s.tree }
func (s *EditorSession) Mode() Mode { return s.mode }
func (s *EditorSession) Scale() float64 { return s.scale }
func (s *EditorSession) GridSize() float64 { return s.gridSize }
func (s *EditorSession) Logger() *slog.Logger { return s.logger }

// AddNode creates a node in the next free placement slot.
func (s *EditorSession) AddNode(typ NodeType, text string) Node {
	n := s.diagram.CreateNode(nil, typ, text)
	s.renderer.NodeAdded(s.diagram, n.ID)
	s.logger.Debug("node added", "node", n.ID, "type", n.Type, "x", n.Position.X, "y", n.Position.Y)
	return n
}

// AddNodeAt creates a node at an explicit diagram position.
func (s *EditorSession) AddNodeAt(p Point, typ NodeType, text string) Node {
	n := s.diagram.CreateNode(&p, typ, text)
	s.renderer.NodeAdded(s.diagram, n.ID)
	s.logger.Debug("node added", "node", n.ID, "type", n.Type, "x", p.X, "y", p.Y)
	return n
}

// Connect creates a connection and draws it.
func (s *EditorSession) Connect(sourceID, targetID string, sourceSide, targetSide Side, label string) (Connection, error) {
	conn, err := s.diagram.CreateConnection(sourceID, targetID, sourceSide, targetSide, label)
	if err != nil {
		s.logger.Warn("connection rejected", "source", sourceID, "target", targetID, "error", err)
		return Connection{}, err
	}
	s.renderer.ConnectionAdded(s.diagram, conn.ID)
	s.logger.Debug("connection added", "connection", conn.ID, "source", sourceID, "target", targetID)
	return conn, nil
}

func (s *EditorSession) DeleteNode(id string) {
	if _, ok := s.diagram.Node(id); !ok {
		return
	}
	switch s.mode {
	case ModeEditingText:
		s.CancelEdit()
	case ModeConnecting:
		if s.connect.sourceID == id {
			s.endConnecting()
		} else if s.connect.target != nil && s.connect.target.NodeID == id {
			s.connect.target = nil
			s.renderer.Highlight(nil)
		}
	}
	removed := s.diagram.DeleteNode(id)
	s.renderer.NodeRemoved(id, removed)
	s.dropStaleSelection()
	s.logger.Debug("node deleted", "node", id, "connections", len(removed))
}

func (s *EditorSession) DeleteConnection(id string) {
	if s.mode == ModeEditingText && s.edit.target == ConnectionRef(id) {
		s.CancelEdit()
	}
	if !s.diagram.DeleteConnection(id) {
		return
	}
	s.renderer.ConnectionRemoved(id)
	s.dropStaleSelection()
	s.logger.Debug("connection deleted", "connection", id)
}

// DeleteSelected removes the selected node (with its connections) or
// connection. Nothing selected is a no-op.
func (s *EditorSession) DeleteSelected() {
	sel := s.selection
	switch sel.Kind {
	case EntityNode:
		s.DeleteNode(sel.ID)
	case EntityConnection:
		s.DeleteConnection(sel.ID)
	}
	s.ClearSelection()
}

// ClearAll wipes the diagram. The host asks for confirmation before calling.
func (s *EditorSession) ClearAll() {
	s.resetInteraction()
	s.diagram.Clear()
	s.selection = EntityRef{}
	s.renderer.Rebuild(s.diagram)
	s.logger.Info("diagram cleared")
}

func (s *EditorSession) ZoomIn() { s.setScale(s.scale + scaleStep) }
func (s *EditorSession) ZoomOut() { s.setScale(s.scale - scaleStep) }
func (s *EditorSession) ResetZoom() { s.setScale(1) }

func (s *EditorSession) setScale(scale float64) {
	scale = clamp(math.Round(scale*10)/10, minScale, maxScale)
	if scale == s.scale {
		return
	}
	s.scale = scale
	s.renderer.SetScale(s.diagram, scale)
	s.logger.Debug("zoom", "scale", scale)
}

// ExportJSON writes the diagram document.
func (s *EditorSession) ExportJSON(w io.Writer) error {
	if err := EncodeDocument(w, s.diagram); err != nil {
		s.logger.Error("json export failed", "error", err)
		return err
	}
	return nil
}

// ImportJSON replaces the diagram with the decoded document. On any error the
// current diagram stays untouched.
func (s *EditorSession) ImportJSON(r io.Reader) error {
	d, err := DecodeDocument(r)
	if err != nil {
		s.logger.Error("json import failed", "error", err)
		return err
	}
	s.resetInteraction()
	s.diagram = d
	s.selection = EntityRef{}
	s.renderer.Rebuild(d)
	s.logger.Info("diagram imported", "nodes", len(d.nodes), "connections", len(d.connections))
	return nil
}

// ExportPNG rasterizes the visual tree and writes it as PNG.
func (s *EditorSession) ExportPNG(w io.Writer) error {
	if s.rasterizer == nil {
		s.logger.Error("png export failed", "error", ErrRasterizerUnavailable)
		return ErrRasterizerUnavailable
	}
	if s.tree.Empty() {
		return ErrNothingToExport
	}
	img, err := s.rasterizer.Rasterize(s.tree)
	if err != nil {
		s.logger.Error("png export failed", "error", err)
		return fmt.Errorf("rasterize: %w", err)
	}
	return png.Encode(w, img)
}

// moveNode is the single entry point for position changes, shared by drag
// and the property view.
func (s *EditorSession) moveNode(id string, x, y float64) {
	if !s.diagram.UpdateNodePosition(id, x, y) {
		return
	}
	s.renderer.NodeChanged(s.diagram, id)
}

func (s *EditorSession) setNodeText(id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	if s.diagram.UpdateNodeText(id, text) {
		s.renderer.NodeChanged(s.diagram, id)
	}
	return nil
}

func (s *EditorSession) setNodeType(id string, typ NodeType) error {
	if !typ.Valid() {
		return fmt.Errorf("%q: %w", typ, ErrInvalidNodeType)
	}
	if s.diagram.UpdateNodeType(id, typ) {
		s.renderer.NodeChanged(s.diagram, id)
	}
	return nil
}

func (s *EditorSession) setConnectionLabel(id, label string) {
	if s.diagram.UpdateConnectionLabel(id, label) {
		s.renderer.LabelChanged(s.diagram, id)
	}
}

// resetInteraction abandons any drag, pending connection or text edit.
func (s *EditorSession) resetInteraction() {
	switch s.mode {
	case ModeConnecting:
		s.endConnecting()
	case ModeEditingText:
		s.CancelEdit()
	}
	s.mode = ModeIdle
	s.drag = dragState{}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
