package main

// Pointer coordinates handed to the session are in screen space, that is
// diagram units multiplied by the current scale.

// PointerDown dispatches on the hit under p. It only returns an error when a
// click completes a connection started from the keyboard and the store
// rejects it.
func (s *EditorSession) PointerDown(p Point) error {
	dp := p.Div(s.scale)
	hit := HitTest(s.diagram, dp)

	switch s.mode {
	case ModeEditingText:
		if hit.Kind == HitLabel && hit.Target == s.edit.target {
			return nil
		}
		s.CommitEdit()
		return nil
	case ModeConnecting:
		if !s.connect.fromMenu {
			return nil
		}
		s.trackConnector(dp)
		return s.finishConnecting()
	case ModeDragging:
		return nil
	}

	switch hit.Kind {
	case HitConnector:
		s.beginConnecting(hit.Target.ID, hit.Side, dp, false)
	case HitNodeBody:
		s.beginDrag(hit.Target.ID, p)
	case HitLabel:
		if hit.Target.Kind == EntityNode {
			s.beginDrag(hit.Target.ID, p)
			return nil
		}
		s.Select(hit.Target)
	case HitConnectionPath:
		s.Select(hit.Target)
	default:
		s.ClearSelection()
	}
	return nil
}

// PointerMove drives a drag or the provisional connection curve.
func (s *EditorSession) PointerMove(p Point) {
	switch s.mode {
	case ModeDragging:
		pos := p.Sub(s.drag.offset).Div(s.scale)
		s.moveNode(s.drag.nodeID, snapToGrid(pos.X, s.gridSize), snapToGrid(pos.Y, s.gridSize))
	case ModeConnecting:
		s.trackConnector(p.Div(s.scale))
	}
}

// PointerUp ends a drag or a connection gesture wherever the pointer is.
// A connection started from the keyboard stays pending until a connector is
// clicked or it is cancelled.
func (s *EditorSession) PointerUp() error {
	switch s.mode {
	case ModeDragging:
		s.logger.Debug("drag finished", "node", s.drag.nodeID)
		s.drag = dragState{}
		s.mode = ModeIdle
	case ModeConnecting:
		if s.connect.fromMenu && s.connect.target == nil {
			return nil
		}
		return s.finishConnecting()
	}
	return nil
}

// DoubleClick starts editing the node or connection label under p. It is
// ignored while another edit is active.
func (s *EditorSession) DoubleClick(p Point) bool {
	switch s.mode {
	case ModeEditingText, ModeConnecting:
		return false
	case ModeDragging:
		s.drag = dragState{}
		s.mode = ModeIdle
	}
	hit := HitTest(s.diagram, p.Div(s.scale))
	switch {
	case hit.Kind == HitLabel, hit.Kind == HitNodeBody && hit.Target.Kind == EntityNode:
		return s.StartEdit(hit.Target)
	}
	return false
}

// EditSelected starts editing the selected entity, as the context menu does.
func (s *EditorSession) EditSelected() bool {
	return s.StartEdit(s.selection)
}

// StartConnectionFrom begins a pending connection from a node connector
// without a pointer gesture. The next click on another node's connector
// completes it.
func (s *EditorSession) StartConnectionFrom(nodeID string, side Side) bool {
	if s.mode != ModeIdle {
		return false
	}
	n, ok := s.diagram.Node(nodeID)
	if !ok {
		return false
	}
	if !side.Valid() {
		side = SideRight
	}
	s.beginConnecting(nodeID, side, ConnectorAnchor(n, side, s.scale), true)
	return true
}

// CancelConnection drops a pending connection.
func (s *EditorSession) CancelConnection() {
	if s.mode == ModeConnecting {
		s.endConnecting()
	}
}

// PendingConnection reports the source of an in-progress connection.
func (s *EditorSession) PendingConnection() (ConnectorRef, bool) {
	if s.mode != ModeConnecting {
		return ConnectorRef{}, false
	}
	return ConnectorRef{NodeID: s.connect.sourceID, Side: s.connect.sourceSide}, true
}

func (s *EditorSession) beginDrag(nodeID string, p Point) {
	n, ok := s.diagram.Node(nodeID)
	if !ok {
		return
	}
	s.Select(NodeRef(nodeID))
	s.drag = dragState{nodeID: nodeID, offset: p.Sub(n.Position.Scale(s.scale))}
	s.mode = ModeDragging
}

func (s *EditorSession) beginConnecting(nodeID string, side Side, at Point, fromMenu bool) {
	s.connect = connectState{
		sourceID:   nodeID,
		sourceSide: side,
		preview:    at,
		fromMenu:   fromMenu,
	}
	s.mode = ModeConnecting
	s.updateProvisional()
	s.logger.Debug("connection started", "node", nodeID, "side", side)
}

// trackConnector moves the preview end to dp and highlights the nearest
// connector of any other node within the snap radius.
func (s *EditorSession) trackConnector(dp Point) {
	s.connect.preview = dp
	s.connect.target = nil
	if ref, ok := nearestConnector(s.diagram, dp, s.connect.sourceID, s.snapRadius); ok {
		s.connect.target = &ref
	}
	s.updateProvisional()
}

func (s *EditorSession) updateProvisional() {
	src, ok := s.diagram.Node(s.connect.sourceID)
	if !ok {
		s.endConnecting()
		return
	}
	side := s.connect.sourceSide
	curve := CurvePath(ConnectorAnchor(src, side, s.scale), s.connect.preview, side, side.Opposite())
	s.renderer.Provisional(&curve)
	s.renderer.Highlight(s.connect.target)
}

func (s *EditorSession) finishConnecting() error {
	c := s.connect
	s.endConnecting()
	if c.target == nil {
		s.logger.Debug("connection dropped", "node", c.sourceID)
		return nil
	}
	_, err := s.Connect(c.sourceID, c.target.NodeID, c.sourceSide, c.target.Side, "")
	return err
}

// endConnecting clears the provisional curve and highlight and returns to
// Idle.
func (s *EditorSession) endConnecting() {
	s.renderer.Provisional(nil)
	s.renderer.Highlight(nil)
	s.connect = connectState{}
	s.mode = ModeIdle
}
