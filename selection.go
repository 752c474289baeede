package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Select makes ref the single selected entity. Unknown entities clear the
// selection.
func (s *EditorSession) Select(ref EntityRef) {
	if !s.exists(ref) {
		ref = EntityRef{}
	}
	if ref == s.selection {
		return
	}
	s.selection = ref
	s.renderer.Selected(ref)
}

func (s *EditorSession) ClearSelection() {
	s.Select(EntityRef{})
}

func (s *EditorSession) CurrentSelection() (EntityRef, bool) {
	return s.selection, !s.selection.IsZero()
}

func (s *EditorSession) exists(ref EntityRef) bool {
	switch ref.Kind {
	case EntityNode:
		_, ok := s.diagram.Node(ref.ID)
		return ok
	case EntityConnection:
		_, ok := s.diagram.Connection(ref.ID)
		return ok
	}
	return false
}

func (s *EditorSession) dropStaleSelection() {
	if !s.selection.IsZero() && !s.exists(s.selection) {
		s.ClearSelection()
	}
}

// PropertyField is one row of the property view.
type PropertyField struct {
	Name     string
	Label    string
	Value    string
	ReadOnly bool
	Options  []string
}

// PropertyView is the projection of the current selection shown in the
// properties panel. It is rebuilt on every read.
type PropertyView struct {
	Target EntityRef
	Title  string
	Fields []PropertyField
}

func (v PropertyView) Field(name string) (PropertyField, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return PropertyField{}, false
}

func (v PropertyView) Empty() bool { return v.Target.IsZero() }

func (s *EditorSession) Properties() PropertyView {
	switch s.selection.Kind {
	case EntityNode:
		n, ok := s.diagram.Node(s.selection.ID)
		if !ok {
			break
		}
		options := make([]string, len(nodeTypes))
		for i, t := range nodeTypes {
			options[i] = string(t)
		}
		return PropertyView{
			Target: s.selection,
			Title:  "Node " + n.ID,
			Fields: []PropertyField{
				{Name: "type", Label: "Type", Value: string(n.Type), Options: options},
				{Name: "text", Label: "Text", Value: n.Text},
				{Name: "x", Label: "X", Value: formatCoord(n.Position.X)},
				{Name: "y", Label: "Y", Value: formatCoord(n.Position.Y)},
			},
		}
	case EntityConnection:
		c, ok := s.diagram.Connection(s.selection.ID)
		if !ok {
			break
		}
		return PropertyView{
			Target: s.selection,
			Title:  "Connection " + c.ID,
			Fields: []PropertyField{
				{Name: "label", Label: "Label", Value: c.Label},
				{Name: "source", Label: "From", Value: "Node " + c.SourceID, ReadOnly: true},
				{Name: "target", Label: "To", Value: "Node " + c.TargetID, ReadOnly: true},
			},
		}
	}
	return PropertyView{}
}

// SetProperty writes a property of the selected entity through the same
// paths direct manipulation uses.
func (s *EditorSession) SetProperty(field, value string) error {
	sel, ok := s.CurrentSelection()
	if !ok {
		return ErrNothingSelected
	}

	if sel.Kind == EntityConnection {
		switch field {
		case "label":
			s.setConnectionLabel(sel.ID, strings.TrimSpace(value))
			return nil
		case "source", "target":
			return fmt.Errorf("%s: %w", field, ErrReadOnlyProperty)
		}
		return fmt.Errorf("%s: %w", field, ErrUnknownProperty)
	}

	n, ok := s.diagram.Node(sel.ID)
	if !ok {
		return ErrNothingSelected
	}
	switch field {
	case "type":
		return s.setNodeType(sel.ID, NodeType(strings.ToLower(strings.TrimSpace(value))))
	case "text":
		return s.setNodeText(sel.ID, value)
	case "x", "y":
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: %w", field, ErrInvalidCoordinate)
		}
		if field == "x" {
			s.moveNode(sel.ID, v, n.Position.Y)
		} else {
			s.moveNode(sel.ID, n.Position.X, v)
		}
		return nil
	}
	return fmt.Errorf("%s: %w", field, ErrUnknownProperty)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
