package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const panelWidth = 32

var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("63")).
	Padding(0, 1).
	Width(panelWidth - 2)

var (
	panelTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	panelLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	panelCursorStyle = lipgloss.NewStyle().Reverse(true)
	panelROStyle     = lipgloss.NewStyle().Faint(true)
)

// panelView renders the property projection of the current selection.
func (m model) panelView(height int) string {
	view := m.session.Properties()
	var b strings.Builder
	if view.Empty() {
		b.WriteString(panelTitleStyle.Render("Properties"))
		b.WriteString("\n\n")
		b.WriteString(panelLabelStyle.Render("Nothing selected"))
	} else {
		b.WriteString(panelTitleStyle.Render(view.Title))
		b.WriteString("\n")
		for i, f := range view.Fields {
			value := f.Value
			if m.panelEditing && i == m.panelField {
				value = m.panelBuffer + "█"
			}
			if len(f.Options) > 0 {
				value = "‹ " + value + " ›"
			}
			line := fmt.Sprintf("%s %s", panelLabelStyle.Render(f.Label+":"), value)
			switch {
			case m.panelFocus && i == m.panelField:
				line = panelCursorStyle.Render(f.Label+": ") + value
			case f.ReadOnly:
				line = panelROStyle.Render(f.Label + ": " + value)
			}
			b.WriteString("\n")
			b.WriteString(line)
		}
		if m.panelFocus {
			b.WriteString("\n\n")
			b.WriteString(panelLabelStyle.Render("↑/↓ field  Enter edit  ←/→ type  Tab close"))
		}
	}
	return panelStyle.Height(max(height-2, 1)).Render(b.String())
}

// handlePanelKey edits the selection through the property projection. It
// reports whether the key was consumed.
func (m *model) handlePanelKey(msg tea.KeyMsg) bool {
	view := m.session.Properties()
	if view.Empty() {
		m.panelEditing = false
		if msg.String() == "tab" || msg.Type == tea.KeyEscape {
			m.panelFocus = false
			return true
		}
		return false
	}
	if m.panelField >= len(view.Fields) {
		m.panelField = 0
	}
	field := view.Fields[m.panelField]

	if m.panelEditing {
		switch msg.Type {
		case tea.KeyEnter:
			m.panelEditing = false
			if err := m.session.SetProperty(field.Name, m.panelBuffer); err != nil {
				m.setError(err)
			}
		case tea.KeyEscape:
			m.panelEditing = false
		case tea.KeyBackspace:
			if r := []rune(m.panelBuffer); len(r) > 0 {
				m.panelBuffer = string(r[:len(r)-1])
			}
		case tea.KeySpace:
			m.panelBuffer += " "
		case tea.KeyRunes:
			m.panelBuffer += string(msg.Runes)
		}
		return true
	}

	switch msg.String() {
	case "tab", "esc":
		m.panelFocus = false
	case "up", "k":
		m.panelField = (m.panelField + len(view.Fields) - 1) % len(view.Fields)
	case "down", "j":
		m.panelField = (m.panelField + 1) % len(view.Fields)
	case "left", "right", "h", "l":
		if len(field.Options) > 0 {
			m.cycleOption(field, msg.String() == "right" || msg.String() == "l")
		}
	case "enter":
		switch {
		case field.ReadOnly:
			m.setError(fmt.Errorf("%s: %w", field.Label, ErrReadOnlyProperty))
		case len(field.Options) > 0:
			m.cycleOption(field, true)
		default:
			m.panelEditing = true
			m.panelBuffer = field.Value
		}
	default:
		return false
	}
	return true
}

func (m *model) cycleOption(f PropertyField, forward bool) {
	idx := 0
	for i, o := range f.Options {
		if o == f.Value {
			idx = i
		}
	}
	if forward {
		idx = (idx + 1) % len(f.Options)
	} else {
		idx = (idx + len(f.Options) - 1) % len(f.Options)
	}
	if err := m.session.SetProperty(f.Name, f.Options[idx]); err != nil {
		m.setError(err)
	}
}
