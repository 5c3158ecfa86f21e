// Package ui provides terminal styling for oops.
package ui

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	ColorGreen  = lipgloss.Color("#22C55E")
	ColorRed    = lipgloss.Color("#F43F5E")
	ColorYellow = lipgloss.Color("#EAB308")
	ColorCyan   = lipgloss.Color("#22D3EE")
	ColorGray   = lipgloss.Color("#71717A")
	ColorPurple = lipgloss.Color("#8B5CF6")
)

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorPurple)
	WarningStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)
)

// Foreground color helpers.
var (
	Green   = paint(ColorGreen)
	Red     = paint(ColorRed)
	Yellow  = paint(ColorYellow)
	Cyan    = paint(ColorCyan)
	HiBlack = paint(ColorGray)
)

func paint(c lipgloss.Color) func(string) string {
	style := lipgloss.NewStyle().Foreground(c)
	return func(s string) string {
		return style.Render(s)
	}
}
