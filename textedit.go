package main

import (
	"strings"
	"unicode"
)

type editState struct {
	target    EntityRef
	original  string
	buf       []rune
	selectAll bool
}

// StartEdit puts the label of a node or connection into edit mode with all of
// its text selected. Only one edit may be active.
func (s *EditorSession) StartEdit(ref EntityRef) bool {
	if s.mode != ModeIdle {
		return false
	}
	var original string
	switch ref.Kind {
	case EntityNode:
		n, ok := s.diagram.Node(ref.ID)
		if !ok {
			return false
		}
		original = n.Text
	case EntityConnection:
		c, ok := s.diagram.Connection(ref.ID)
		if !ok {
			return false
		}
		original = c.Label
	default:
		return false
	}

	s.Select(ref)
	s.edit = editState{
		target:    ref,
		original:  original,
		buf:       []rune(original),
		selectAll: true,
	}
	s.mode = ModeEditingText
	s.renderEdit()
	s.logger.Debug("edit started", "target", ref.Kind.String(), "id", ref.ID)
	return true
}

// EditBuffer returns the entity being edited and the current buffer.
func (s *EditorSession) EditBuffer() (EntityRef, string, bool) {
	if s.mode != ModeEditingText {
		return EntityRef{}, "", false
	}
	return s.edit.target, string(s.edit.buf), true
}

// EditSelectsAll reports whether the next keystroke replaces the whole buffer.
func (s *EditorSession) EditSelectsAll() bool {
	return s.mode == ModeEditingText && s.edit.selectAll
}

func (s *EditorSession) TypeRune(r rune) {
	s.TypeString(string(r))
}

// TypeString inserts text at the end of the buffer, replacing it when all
// text is selected. Control characters are dropped.
func (s *EditorSession) TypeString(text string) {
	if s.mode != ModeEditingText {
		return
	}
	if s.edit.selectAll {
		s.edit.buf = s.edit.buf[:0]
		s.edit.selectAll = false
	}
	for _, r := range text {
		if unicode.IsControl(r) {
			continue
		}
		s.edit.buf = append(s.edit.buf, r)
	}
	s.renderEdit()
}

// Backspace deletes the last rune, or everything when all text is selected.
func (s *EditorSession) Backspace() {
	if s.mode != ModeEditingText {
		return
	}
	switch {
	case s.edit.selectAll:
		s.edit.buf = s.edit.buf[:0]
		s.edit.selectAll = false
	case len(s.edit.buf) > 0:
		s.edit.buf = s.edit.buf[:len(s.edit.buf)-1]
	}
	s.renderEdit()
}

// CollapseSelection keeps the buffer but stops the next keystroke from
// replacing it.
func (s *EditorSession) CollapseSelection() {
	if s.mode == ModeEditingText {
		s.edit.selectAll = false
	}
}

// CommitEdit writes the trimmed buffer back. An empty node text is rejected
// and the original is kept; connection labels may become empty.
func (s *EditorSession) CommitEdit() {
	if s.mode != ModeEditingText {
		return
	}
	e := s.edit
	s.edit = editState{}
	s.mode = ModeIdle

	text := strings.TrimSpace(string(e.buf))
	switch e.target.Kind {
	case EntityNode:
		if err := s.setNodeText(e.target.ID, text); err != nil {
			s.renderer.NodeChanged(s.diagram, e.target.ID)
			s.logger.Debug("empty node text reverted", "node", e.target.ID, "text", e.original)
			return
		}
	case EntityConnection:
		s.setConnectionLabel(e.target.ID, text)
	}
	s.logger.Debug("edit committed", "target", e.target.Kind.String(), "id", e.target.ID)
}

// CancelEdit restores the original text verbatim.
func (s *EditorSession) CancelEdit() {
	if s.mode != ModeEditingText {
		return
	}
	e := s.edit
	s.edit = editState{}
	s.mode = ModeIdle
	switch e.target.Kind {
	case EntityNode:
		s.renderer.NodeChanged(s.diagram, e.target.ID)
	case EntityConnection:
		s.renderer.LabelChanged(s.diagram, e.target.ID)
	}
	s.logger.Debug("edit cancelled", "target", e.target.Kind.String(), "id", e.target.ID)
}

func (s *EditorSession) renderEdit() {
	buf := string(s.edit.buf)
	switch s.edit.target.Kind {
	case EntityNode:
		s.renderer.EditingNode(s.diagram, s.edit.target.ID, buf)
	case EntityConnection:
		s.renderer.EditingLabel(s.diagram, s.edit.target.ID, buf)
	}
}
