package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/neuroanim/internal/cell"
	"github.com/san-kum/neuroanim/internal/codec"
)

// RenderTree draws the section hierarchy of a model, one section per line
// with its length, mean diameter and segment count.
func RenderTree(m *cell.Model) string {
	if m == nil || m.Len() == 0 {
		return Subtle.Render("(no sections)") + "\n"
	}

	var b strings.Builder
	var walk func(id int, prefix string, last, root bool)
	walk = func(id int, prefix string, last, root bool) {
		s, ok := m.Section(id)
		if !ok {
			return
		}

		branch, next := "", ""
		if !root {
			branch, next = "├─ ", "│  "
			if last {
				branch, next = "└─ ", "   "
			}
		}

		kind := codec.RecordKind(s.Type)
		style, ok := typeStyles[kind]
		if !ok {
			style = lipgloss.NewStyle()
		}
		detail := fmt.Sprintf("  L=%.1fµm d=%.2fµm nseg=%d", s.Geometry.Length, s.Geometry.MeanDiameter(), s.NSeg)
		b.WriteString(Subtle.Render(prefix+branch) + style.Render(s.Name) + Subtle.Render(detail) + "\n")

		for i, child := range s.Children {
			walk(child, prefix+next, i == len(s.Children)-1, false)
		}
	}

	for _, s := range m.Sections() {
		if s.Parent < 0 {
			walk(s.ID, "", true, true)
		}
	}
	return b.String()
}
