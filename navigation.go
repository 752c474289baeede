package main

// handlePan scrolls the viewport. Shifted keys move twice as far.
func (m *model) handlePan(key string) bool {
	speed := m.panSpeed(key)
	switch key {
	case "h", "left", "H", "shift+left":
		m.canvas.Pan(-speed, 0)
	case "l", "right", "L", "shift+right":
		m.canvas.Pan(speed, 0)
	case "k", "up", "K", "shift+up":
		m.canvas.Pan(0, -speed)
	case "j", "down", "J", "shift+down":
		m.canvas.Pan(0, speed)
	default:
		return false
	}
	return true
}

func (m *model) panSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 8
	default:
		return 2
	}
}

// centerOnSelection scrolls so the selected node sits in the middle of the
// canvas area.
func (m *model) centerOnSelection() {
	sel, ok := m.session.CurrentSelection()
	if !ok || sel.Kind != EntityNode {
		return
	}
	n, ok := m.session.Diagram().Node(sel.ID)
	if !ok {
		return
	}
	w, h := m.canvasSize()
	c := NodeRect(n).Center().Scale(m.session.Scale())
	m.canvas.ResetPan()
	m.canvas.Pan(int(c.X/cellWidth)-w/2, int(c.Y/cellHeight)-h/2)
}
