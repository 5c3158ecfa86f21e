package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/truncate"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultCellWidth bounds a cell when the terminal width is unknown.
const DefaultCellWidth = 48

var titleCaser = cases.Title(language.English)

// Title title-cases a heading.
func Title(s string) string {
	return titleCaser.String(s)
}

// Truncate cuts s to width cells, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(width), "…")
}

// Table renders rows under title-cased headers. Cells longer than
// cellWidth are truncated.
func Table(headers []string, rows [][]string, cellWidth int) string {
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}

	titled := make([]string, len(headers))
	for i, h := range headers {
		titled[i] = Title(h)
	}

	cut := make([][]string, len(rows))
	for i, row := range rows {
		cut[i] = make([]string, len(row))
		for j, cell := range row {
			cut[i][j] = Truncate(cell, cellWidth)
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorPurple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(ColorPurple).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(titled...).
		Rows(cut...)

	return t.String()
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the width of the terminal on f, or fallback.
func Width(f *os.File, fallback int) int {
	if f == nil {
		return fallback
	}
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}
