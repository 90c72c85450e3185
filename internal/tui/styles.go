// Package tui provides the terminal dashboard for gigit.
package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/jayteealao/gigit/internal/tree"
)

// Colors
var (
	ColorPrimary   = lipgloss.Color("39")  // Blue
	ColorSecondary = lipgloss.Color("245") // Gray
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorDanger    = lipgloss.Color("196") // Red
	ColorMuted     = lipgloss.Color("240") // Dark gray
)

// Styles for the TUI
var (
	// Title style for the header
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(0, 1)

	// Normal item style
	NormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	// Tree label styles, matching the report banners
	BackendStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorDanger)

	FrontendStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)

	// Status styles
	StatusClean = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	StatusDirty = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StatusError = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)

	StatusInactive = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Help bar style
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Padding(1, 0)

	// Detail label style
	LabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary).
			Width(14)

	// Detail value style
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	// Error style
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)
)

// Tree statuses shown in the dashboard.
const (
	StatusNameClean    = "clean"
	StatusNameDirty    = "dirty"
	StatusNameDiverged = "diverged"
	StatusNameDetached = "detached"
	StatusNameError    = "error"
)

// GetLabelStyle returns the style for a tree label.
func GetLabelStyle(l tree.Label) lipgloss.Style {
	if l == tree.Frontend {
		return FrontendStyle
	}
	return BackendStyle
}

// GetStatusStyle returns the appropriate style for a given status.
func GetStatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusNameClean:
		return StatusClean
	case StatusNameDirty, StatusNameDiverged:
		return StatusDirty
	case StatusNameError:
		return StatusError
	case StatusNameDetached:
		return StatusInactive
	default:
		return NormalStyle
	}
}

// GetStatusIcon returns an icon for the given status.
func GetStatusIcon(status string) string {
	switch status {
	case StatusNameClean:
		return "●"
	case StatusNameDirty:
		return "◐"
	case StatusNameDiverged:
		return "⇅"
	case StatusNameDetached:
		return "○"
	case StatusNameError:
		return "✗"
	default:
		return "?"
	}
}
