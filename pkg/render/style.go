package render

import (
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/flowtail/flowtail/pkg/engine"
)

// Theme holds the lipgloss styles and symbols used by the streaming
// renderer.
type Theme struct {
	Header  lipgloss.Style
	Stdout  lipgloss.Style
	Stderr  lipgloss.Style
	System  lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
	Notice  lipgloss.Style
	Footer  lipgloss.Style

	SymbolRunning     string
	SymbolCompleted   string
	SymbolFailed      string
	SymbolInterrupted string
}

// DefaultTheme returns the colored Unicode theme.
func DefaultTheme() Theme {
	return Theme{
		Header:  lipgloss.NewStyle().Bold(true),
		Stdout:  lipgloss.NewStyle(),
		Stderr:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		System:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Notice:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Footer:  lipgloss.NewStyle().Faint(true),

		SymbolRunning:     "▸",
		SymbolCompleted:   "✓",
		SymbolFailed:      "✗",
		SymbolInterrupted: "◌",
	}
}

// MonochromeTheme returns an uncolored ASCII-only theme for non-TTY
// output and NO_COLOR environments.
func MonochromeTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Header:  plain,
		Stdout:  plain,
		Stderr:  plain,
		System:  plain,
		Success: plain,
		Failure: plain,
		Notice:  plain,
		Footer:  plain,

		SymbolRunning:     ">",
		SymbolCompleted:   "ok",
		SymbolFailed:      "x",
		SymbolInterrupted: "?",
	}
}

// statusSymbol returns the theme symbol for a node status.
func (t Theme) statusSymbol(s engine.NodeStatus) string {
	switch s {
	case engine.StatusCompleted:
		return t.SymbolCompleted
	case engine.StatusFailed:
		return t.SymbolFailed
	case engine.StatusInterrupted:
		return t.SymbolInterrupted
	}
	return t.SymbolRunning
}

// statusStyle returns the theme style for a node status.
func (t Theme) statusStyle(s engine.NodeStatus) lipgloss.Style {
	switch s {
	case engine.StatusCompleted:
		return t.Success
	case engine.StatusFailed, engine.StatusInterrupted:
		return t.Failure
	}
	return t.Header
}

var titler = cases.Title(language.English)

// statusLabel renders a status for display, e.g. "Completed".
func statusLabel(s engine.NodeStatus) string {
	return titler.String(string(s))
}
