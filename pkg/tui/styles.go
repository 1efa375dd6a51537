package tui

import "github.com/charmbracelet/lipgloss"

// styles holds the compiled lipgloss styles for the dashboard.
type styles struct {
	Title       lipgloss.Style
	NodeList    lipgloss.Style
	DetailBox   lipgloss.Style
	DetailHead  lipgloss.Style
	Selected    lipgloss.Style
	Unselected  lipgloss.Style
	Duration    lipgloss.Style
	StatusBar   lipgloss.Style
	PendingIcon lipgloss.Style
	RunningIcon lipgloss.Style
	SuccessIcon lipgloss.Style
	ErrorIcon   lipgloss.Style
	Notice      lipgloss.Style

	SpinnerFrames []string
	IconSuccess   string
	IconFailed    string
	IconPending   string
	IconSelect    string
}

func defaultStyles() styles {
	border := lipgloss.RoundedBorder()
	return styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("57")).Padding(0, 1),
		NodeList:    lipgloss.NewStyle().Border(border).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		DetailBox:   lipgloss.NewStyle().Border(border).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		DetailHead:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("80")),
		Selected:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("57")),
		Unselected:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Duration:    lipgloss.NewStyle().Faint(true),
		StatusBar:   lipgloss.NewStyle().Faint(true),
		PendingIcon: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		RunningIcon: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		SuccessIcon: lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
		ErrorIcon:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Notice:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),

		SpinnerFrames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		IconSuccess:   "✓",
		IconFailed:    "✗",
		IconPending:   "◌",
		IconSelect:    "▶",
	}
}
