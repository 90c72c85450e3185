// Package report renders per-tree labelled output for gigit.
package report

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/jayteealao/gigit/internal/tree"
)

// Colors
var (
	ColorBackend  = lipgloss.Color("196") // Red
	ColorFrontend = lipgloss.Color("42")  // Green
	ColorWarning  = lipgloss.Color("214") // Orange
	ColorText     = lipgloss.Color("15")  // White
	ColorMuted    = lipgloss.Color("240") // Dark gray
)

// styles holds the lipgloss styles bound to one renderer.
type styles struct {
	backend  lipgloss.Style
	frontend lipgloss.Style
	warning  lipgloss.Style
	muted    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, color bool) styles {
	if !color {
		plain := r.NewStyle()
		return styles{backend: plain, frontend: plain, warning: plain, muted: plain}
	}

	return styles{
		backend: r.NewStyle().
			Background(ColorBackend).
			Foreground(ColorText),
		frontend: r.NewStyle().
			Background(ColorFrontend).
			Foreground(ColorText),
		warning: r.NewStyle().
			Foreground(ColorWarning).
			Bold(true),
		muted: r.NewStyle().
			Foreground(ColorMuted),
	}
}

// forLabel returns the banner style for a tree.
func (s styles) forLabel(l tree.Label) lipgloss.Style {
	if l == tree.Frontend {
		return s.frontend
	}
	return s.backend
}
